// Package preview renders a line-drawing SVG of a solid seen along a
// projection direction, with hidden edges drawn in a second color.
package preview

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	svg "github.com/ajstarks/svgo"
	"github.com/philipparndt/gobox/pkg/geometry"
	"github.com/philipparndt/gobox/pkg/solid"
)

// Options controls the preview drawing
type Options struct {
	ProjectionDir geometry.Vector3
	Focus         float64
	ShowAxes      bool
	ShowHidden    bool
	StrokeColor   RGB
	HiddenColor   RGB
	Width         int
	Height        int
	MarginLeft    int
	MarginTop     int
	// StrokeWidth in model units; zero derives one pixel from the fit scale
	StrokeWidth float64
}

// DefaultOptions returns the drawing defaults used when a caller only
// provides the camera and colors.
func DefaultOptions() Options {
	return Options{
		ProjectionDir: geometry.NewVector3(-1.75, 1.1, 5),
		ShowAxes:      true,
		ShowHidden:    true,
		StrokeColor:   RGB{0, 0, 0},
		HiddenColor:   RGB{160, 160, 160},
		Width:         800,
		Height:        240,
		MarginLeft:    200,
		MarginTop:     20,
	}
}

type segment struct {
	x1, y1, x2, y2 float64
}

// WriteFile renders the solid to path, replacing any existing file
func WriteFile(path string, s *solid.Solid, opts Options) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := Render(file, s, opts); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// Render writes the SVG drawing of s to w
func Render(w io.Writer, s *solid.Solid, opts Options) error {
	if opts.Width <= 0 || opts.Height <= 0 {
		return fmt.Errorf("preview: invalid canvas %dx%d", opts.Width, opts.Height)
	}

	proj, err := NewProjector(opts.ProjectionDir, opts.Focus)
	if err != nil {
		return err
	}

	visible, hidden := classifyEdges(s, proj)

	minX, minY := math.MaxFloat64, math.MaxFloat64
	maxX, maxY := -math.MaxFloat64, -math.MaxFloat64
	for _, seg := range append(append([]segment{}, visible...), hidden...) {
		minX = math.Min(minX, math.Min(seg.x1, seg.x2))
		maxX = math.Max(maxX, math.Max(seg.x1, seg.x2))
		minY = math.Min(minY, math.Min(seg.y1, seg.y2))
		maxY = math.Max(maxY, math.Max(seg.y1, seg.y2))
	}

	unitScale := fitScale(maxX-minX, maxY-minY, opts.Width, opts.Height)
	xTranslate := -minX + float64(opts.MarginLeft)/unitScale
	yTranslate := -maxY - float64(opts.MarginTop)/unitScale

	strokeWidth := opts.StrokeWidth
	if strokeWidth <= 0 {
		strokeWidth = 1.0 / unitScale
	}

	canvas := svg.New(w)
	canvas.Start(opts.Width, opts.Height)

	canvas.Gtransform(fmt.Sprintf("scale(%s, %s) translate(%s,%s)",
		num(unitScale), num(-unitScale), num(xTranslate), num(yTranslate)))
	canvas.Gstyle(fmt.Sprintf("stroke-width:%s;fill:none", num(strokeWidth)))

	if opts.ShowHidden && len(hidden) > 0 {
		dash := num(5 * strokeWidth)
		canvas.Gstyle(fmt.Sprintf("stroke:%s;fill:none;stroke-dasharray:%s,%s", opts.HiddenColor, dash, dash))
		for _, seg := range hidden {
			canvas.Path(seg.path())
		}
		canvas.Gend()
	}

	canvas.Gstyle(fmt.Sprintf("stroke:%s;fill:none", opts.StrokeColor))
	for _, seg := range visible {
		canvas.Path(seg.path())
	}
	canvas.Gend()

	canvas.Gend()
	canvas.Gend()

	if opts.ShowAxes {
		drawAxes(canvas, proj, opts.Height)
	}

	canvas.End()
	return nil
}

// classifyEdges splits the solid's edges into visible and hidden segments.
// On a convex solid an edge is visible when either adjacent face is turned
// toward the viewer.
func classifyEdges(s *solid.Solid, proj *Projector) (visible, hidden []segment) {
	facing := make([]bool, len(s.Faces))
	for i, face := range s.Faces {
		facing[i] = proj.FacesViewer(s.Vertices[face.Loop[0]], face.Normal)
	}

	for i, edge := range s.Edges {
		x1, y1 := proj.Project(s.Vertices[edge.A])
		x2, y2 := proj.Project(s.Vertices[edge.B])
		seg := segment{x1, y1, x2, y2}

		a, b := s.EdgeFaces(i)
		if facing[a] || facing[b] {
			visible = append(visible, seg)
		} else {
			hidden = append(hidden, seg)
		}
	}
	return visible, hidden
}

// fitScale scales the drawing to 75% of the canvas along its tighter axis
func fitScale(xLen, yLen float64, width, height int) float64 {
	scale := math.MaxFloat64
	if xLen > 0 {
		scale = math.Min(scale, float64(width)/xLen*0.75)
	}
	if yLen > 0 {
		scale = math.Min(scale, float64(height)/yLen*0.75)
	}
	if scale == math.MaxFloat64 {
		return 1
	}
	return scale
}

func drawAxes(canvas *svg.SVG, proj *Projector, height int) {
	const length = 30.0

	canvas.Gtransform(fmt.Sprintf("translate(20,%d)", height-30))
	for _, axis := range []struct {
		label string
		dir   geometry.Vector3
	}{
		{"X", geometry.NewVector3(1, 0, 0)},
		{"Y", geometry.NewVector3(0, 1, 0)},
		{"Z", geometry.NewVector3(0, 0, 1)},
	} {
		dx, dy := proj.Direction(axis.dir)
		x := int(math.Round(dx * length))
		y := int(math.Round(-dy * length))
		canvas.Line(0, 0, x, y, "stroke-width:1;stroke:#000000")
		canvas.Text(x+5, y, axis.label, "font-size:10px;stroke:#000000")
	}
	canvas.Gend()
}

func (s segment) path() string {
	var b strings.Builder
	b.WriteString("M")
	b.WriteString(num(s.x1))
	b.WriteString(",")
	b.WriteString(num(s.y1))
	b.WriteString(" L")
	b.WriteString(num(s.x2))
	b.WriteString(",")
	b.WriteString(num(s.y2))
	return b.String()
}

func num(f float64) string {
	return strconv.FormatFloat(math.Round(f*1e4)/1e4, 'f', -1, 64)
}
