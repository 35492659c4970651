package solid

import (
	"errors"
	"fmt"
	"math"

	"github.com/philipparndt/gobox/pkg/geometry"
)

// ErrDegenerate is returned for box dimensions that do not describe a volume
var ErrDegenerate = errors.New("solid: degenerate dimensions")

// Box builds an axis-aligned box centered at the origin on the XY workplane:
// length runs along X, width along Y and height along Z.
func Box(length, width, height float64) (*Solid, error) {
	for _, d := range []float64{length, width, height} {
		if !(d > 0) || math.IsInf(d, 0) {
			return nil, fmt.Errorf("%w: %gx%gx%g", ErrDegenerate, length, width, height)
		}
	}

	hx, hy, hz := length/2, width/2, height/2

	vertices := []geometry.Vector3{
		{X: -hx, Y: -hy, Z: -hz},
		{X: hx, Y: -hy, Z: -hz},
		{X: hx, Y: hy, Z: -hz},
		{X: -hx, Y: hy, Z: -hz},
		{X: -hx, Y: -hy, Z: hz},
		{X: hx, Y: -hy, Z: hz},
		{X: hx, Y: hy, Z: hz},
		{X: -hx, Y: hy, Z: hz},
	}

	faces := []Face{
		{Normal: geometry.NewVector3(0, 0, -1), Loop: []int{0, 3, 2, 1}},
		{Normal: geometry.NewVector3(0, 0, 1), Loop: []int{4, 5, 6, 7}},
		{Normal: geometry.NewVector3(0, -1, 0), Loop: []int{0, 1, 5, 4}},
		{Normal: geometry.NewVector3(1, 0, 0), Loop: []int{1, 2, 6, 5}},
		{Normal: geometry.NewVector3(0, 1, 0), Loop: []int{2, 3, 7, 6}},
		{Normal: geometry.NewVector3(-1, 0, 0), Loop: []int{3, 0, 4, 7}},
	}

	return New(vertices, faces)
}
