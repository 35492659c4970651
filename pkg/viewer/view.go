// Package viewer is an interactive orbit view of a solid for the desktop
// front end. Drag rotates, scrolling zooms.
package viewer

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	"github.com/philipparndt/gobox/pkg/geometry"
	"github.com/philipparndt/gobox/pkg/solid"
)

var background = color.RGBA{R: 245, G: 245, B: 245, A: 255}

// SolidView draws a shaded solid with its edges outlined
type SolidView struct {
	widget.BaseWidget

	mu        sync.Mutex
	solid     *solid.Solid
	camera    *Camera
	faceColor color.RGBA
	edgeColor color.RGBA

	raster *canvas.Raster
}

// NewSolidView creates an empty view
func NewSolidView() *SolidView {
	v := &SolidView{
		faceColor: color.RGBA{R: 0, G: 249, B: 0, A: 255},
		edgeColor: color.RGBA{R: 0, G: 17, B: 249, A: 255},
	}
	v.raster = canvas.NewRaster(v.Draw)
	v.ExtendBaseWidget(v)
	return v
}

// SetSolid replaces the displayed solid. The camera is reframed only when
// the bounding box changes.
func (v *SolidView) SetSolid(s *solid.Solid, face, edge color.RGBA) {
	v.mu.Lock()
	reframe := v.solid == nil || s == nil || v.solid.BoundingBox() != s.BoundingBox()
	v.solid = s
	v.faceColor = face
	v.edgeColor = edge
	if reframe && s != nil {
		v.camera = NewCamera(s.BoundingBox())
	}
	v.mu.Unlock()

	v.Refresh()
}

// Draw renders the view at the given pixel size
func (v *SolidView) Draw(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: background}, image.Point{}, draw.Src)

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.solid == nil || v.camera == nil || w <= 0 || h <= 0 {
		return img
	}

	width, height := float64(w), float64(h)
	zbuffer := make([]float64, w*h)
	for i := range zbuffer {
		zbuffer[i] = math.MaxFloat64
	}

	eye := v.camera.Eye()
	for fi, face := range v.solid.Faces {
		if !v.facesEye(fi, eye) {
			continue
		}

		toEye := eye.Sub(v.solid.Vertices[face.Loop[0]]).Normalize()
		col := shade(v.faceColor, 0.35+0.65*face.Normal.Dot(toEye))

		loop := face.Loop
		for i := 1; i+1 < len(loop); i++ {
			var tri [3][3]float64
			for k, vi := range []int{loop[0], loop[i], loop[i+1]} {
				x, y, z := v.camera.Project(v.solid.Vertices[vi], width, height)
				tri[k] = [3]float64{x, y, z}
			}
			fillTriangleWithDepth(img, zbuffer, tri, col)
		}
	}

	for i, e := range v.solid.Edges {
		f1, f2 := v.solid.EdgeFaces(i)
		if !v.facesEye(f1, eye) && !v.facesEye(f2, eye) {
			continue
		}

		x1, y1, _ := v.camera.Project(v.solid.Vertices[e.A], width, height)
		x2, y2, _ := v.camera.Project(v.solid.Vertices[e.B], width, height)
		drawLine(img, int(math.Round(x1)), int(math.Round(y1)), int(math.Round(x2)), int(math.Round(y2)), v.edgeColor)
	}

	return img
}

func (v *SolidView) facesEye(face int, eye geometry.Vector3) bool {
	f := v.solid.Faces[face]
	return f.Normal.Dot(eye.Sub(v.solid.Vertices[f.Loop[0]])) > 0
}

// Dragged rotates the camera
func (v *SolidView) Dragged(event *fyne.DragEvent) {
	v.mu.Lock()
	if v.camera != nil {
		v.camera.Rotate(-float64(event.Dragged.DX)*0.01, float64(event.Dragged.DY)*0.01)
	}
	v.mu.Unlock()

	v.raster.Refresh()
}

// DragEnd implements fyne.Draggable
func (v *SolidView) DragEnd() {}

// Scrolled zooms the camera
func (v *SolidView) Scrolled(event *fyne.ScrollEvent) {
	v.mu.Lock()
	if v.camera != nil {
		v.camera.Zoom(-float64(event.Scrolled.DY) * 0.001)
	}
	v.mu.Unlock()

	v.raster.Refresh()
}

// CreateRenderer implements fyne.Widget
func (v *SolidView) CreateRenderer() fyne.WidgetRenderer {
	return &solidViewRenderer{view: v}
}

type solidViewRenderer struct {
	view *SolidView
}

func (r *solidViewRenderer) Layout(size fyne.Size) {
	r.view.raster.Resize(size)
}

func (r *solidViewRenderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 300)
}

func (r *solidViewRenderer) Refresh() {
	r.view.raster.Refresh()
}

func (r *solidViewRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.view.raster}
}

func (r *solidViewRenderer) Destroy() {}
