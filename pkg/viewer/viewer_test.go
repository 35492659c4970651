package viewer

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/philipparndt/gobox/pkg/geometry"
	"github.com/philipparndt/gobox/pkg/solid"
)

func TestCameraProjectsTargetToCenter(t *testing.T) {
	bbox := geometry.NewBoundingBox()
	bbox.Extend(geometry.NewVector3(-5, -15, -5))
	bbox.Extend(geometry.NewVector3(5, 15, 5))

	cam := NewCamera(bbox)
	x, y, depth := cam.Project(cam.Target, 400, 300)

	if math.Abs(x-200) > 1e-9 || math.Abs(y-150) > 1e-9 {
		t.Errorf("Project failed: expected (200, 150), got (%f, %f)", x, y)
	}
	if math.Abs(depth-cam.Distance) > 1e-9 {
		t.Errorf("Project failed: expected depth %f, got %f", cam.Distance, depth)
	}
}

func TestCameraRotateClampsPitch(t *testing.T) {
	cam := &Camera{Distance: 10, FOV: math.Pi / 4}
	cam.Rotate(0, 10)

	if cam.Pitch != maxPitch {
		t.Errorf("Rotate failed: expected pitch %f, got %f", maxPitch, cam.Pitch)
	}
	if eye := cam.Eye(); eye.Z <= 0 {
		t.Errorf("Eye failed: expected camera above target, got %v", eye)
	}
}

func TestCameraZoom(t *testing.T) {
	cam := &Camera{Distance: 10}
	cam.Zoom(0.5)
	if cam.Distance != 15 {
		t.Errorf("Zoom failed: expected 15, got %f", cam.Distance)
	}
	cam.Zoom(-10)
	if cam.Distance != 0.1 {
		t.Errorf("Zoom failed: expected clamp to 0.1, got %f", cam.Distance)
	}
}

func TestFillTriangleWithDepth(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	zbuffer := make([]float64, 100)
	for i := range zbuffer {
		zbuffer[i] = math.MaxFloat64
	}

	red := color.RGBA{R: 255, A: 255}
	blue := color.RGBA{B: 255, A: 255}
	fillTriangleWithDepth(img, zbuffer, [3][3]float64{{0, 0, 5}, {10, 0, 5}, {0, 10, 5}}, red)
	fillTriangleWithDepth(img, zbuffer, [3][3]float64{{0, 0, 9}, {10, 0, 9}, {0, 10, 9}}, blue)

	if got := img.RGBAAt(1, 1); got != red {
		t.Errorf("depth test failed: expected nearer red, got %v", got)
	}
	if got := img.RGBAAt(9, 9); got.A != 0 {
		t.Errorf("fill failed: expected pixel outside triangle untouched, got %v", got)
	}
}

func TestDrawEmptyView(t *testing.T) {
	v := &SolidView{}
	img := v.Draw(20, 10).(*image.RGBA)

	if got := img.RGBAAt(10, 5); got != background {
		t.Errorf("Draw failed: expected background, got %v", got)
	}
}

func TestDrawSolid(t *testing.T) {
	box, err := solid.Box(10, 30, 10)
	if err != nil {
		t.Fatalf("Box failed: %v", err)
	}

	v := &SolidView{}
	v.solid = box
	v.camera = NewCamera(box.BoundingBox())
	v.faceColor = color.RGBA{G: 249, A: 255}
	v.edgeColor = color.RGBA{G: 100, A: 255}

	img := v.Draw(200, 200).(*image.RGBA)
	center := img.RGBAAt(100, 100)
	if center == background || center.G == 0 {
		t.Errorf("Draw failed: expected shaded face at center, got %v", center)
	}
	if corner := img.RGBAAt(0, 0); corner != background {
		t.Errorf("Draw failed: expected background in corner, got %v", corner)
	}
}

func TestShade(t *testing.T) {
	c := color.RGBA{R: 200, G: 100, B: 50, A: 255}
	if got := shade(c, 0.5); got != (color.RGBA{R: 100, G: 50, B: 25, A: 255}) {
		t.Errorf("shade failed: got %v", got)
	}
	if got := shade(c, 2); got != c {
		t.Errorf("shade failed: expected clamp, got %v", got)
	}
}
