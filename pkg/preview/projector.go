package preview

import (
	"errors"
	"math"

	"github.com/philipparndt/gobox/pkg/geometry"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrDegenerateProjection is returned for a zero projection direction
var ErrDegenerateProjection = errors.New("preview: projection direction has zero length")

// Projector flattens model space onto the view plane. The view axis points
// from the model toward the viewer. A positive focus places the eye on that
// axis at distance focus and projects in perspective; otherwise the
// projection is parallel.
type Projector struct {
	xDir, yDir, zDir r3.Vec
	focus            float64
}

// NewProjector builds the view basis for a projection direction
func NewProjector(dir geometry.Vector3, focus float64) (*Projector, error) {
	z := toVec(dir)
	if n := r3.Norm(z); n == 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return nil, ErrDegenerateProjection
	}
	z = r3.Unit(z)
	x := referenceX(z)

	return &Projector{
		xDir:  x,
		yDir:  r3.Cross(z, x),
		zDir:  z,
		focus: focus,
	}, nil
}

// referenceX picks the horizontal view axis perpendicular to z by zeroing
// the smallest component of z, so the result is stable for axis-aligned views.
func referenceX(z r3.Vec) r3.Vec {
	a, b, c := math.Abs(z.X), math.Abs(z.Y), math.Abs(z.Z)

	var d r3.Vec
	switch {
	case b <= a && b <= c:
		if a > c {
			d = r3.Vec{X: -z.Z, Y: 0, Z: z.X}
		} else {
			d = r3.Vec{X: z.Z, Y: 0, Z: -z.X}
		}
	case a <= b && a <= c:
		if b > c {
			d = r3.Vec{X: 0, Y: -z.Z, Z: z.Y}
		} else {
			d = r3.Vec{X: 0, Y: z.Z, Z: -z.Y}
		}
	default:
		if a > b {
			d = r3.Vec{X: -z.Y, Y: z.X, Z: 0}
		} else {
			d = r3.Vec{X: z.Y, Y: -z.X, Z: 0}
		}
	}
	return r3.Unit(d)
}

// Perspective reports whether the projection uses the focus distance
func (p *Projector) Perspective() bool {
	return p.focus > 0
}

// Project maps a model point to view-plane coordinates, y up
func (p *Projector) Project(point geometry.Vector3) (float64, float64) {
	v := toVec(point)
	x, y := r3.Dot(v, p.xDir), r3.Dot(v, p.yDir)
	if !p.Perspective() {
		return x, y
	}

	// points at or behind the eye are pinned just in front of it
	depth := p.focus - r3.Dot(v, p.zDir)
	if depth < 1e-6*p.focus {
		depth = 1e-6 * p.focus
	}
	scale := p.focus / depth
	return x * scale, y * scale
}

// Direction maps a model direction onto the view plane without perspective
func (p *Projector) Direction(dir geometry.Vector3) (float64, float64) {
	v := toVec(dir)
	return r3.Dot(v, p.xDir), r3.Dot(v, p.yDir)
}

// FacesViewer reports whether a plane through point with the given outward
// normal is turned toward the viewer.
func (p *Projector) FacesViewer(point, normal geometry.Vector3) bool {
	n := toVec(normal)
	if !p.Perspective() {
		return r3.Dot(n, p.zDir) > 1e-12
	}
	eye := r3.Scale(p.focus, p.zDir)
	return r3.Dot(n, r3.Sub(eye, toVec(point))) > 1e-12
}

func toVec(v geometry.Vector3) r3.Vec {
	return r3.Vec{X: v.X, Y: v.Y, Z: v.Z}
}
