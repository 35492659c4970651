package viewer

import (
	"math"

	"github.com/philipparndt/gobox/pkg/geometry"
)

const maxPitch = math.Pi/2 - 0.1

// Camera orbits a target point at a fixed distance
type Camera struct {
	Target   geometry.Vector3
	Distance float64
	Yaw      float64 // around the vertical (Z) axis
	Pitch    float64 // above the XY plane
	FOV      float64 // vertical field of view in radians
}

// NewCamera frames a bounding box from an elevated corner view
func NewCamera(bbox geometry.BoundingBox) *Camera {
	distance := bbox.Diagonal() * 1.8
	if distance <= 0 {
		distance = 1
	}

	return &Camera{
		Target:   bbox.Center(),
		Distance: distance,
		Yaw:      -math.Pi / 4,
		Pitch:    math.Pi / 6,
		FOV:      math.Pi / 4,
	}
}

// Eye returns the camera position
func (c *Camera) Eye() geometry.Vector3 {
	cp := math.Cos(c.Pitch)
	offset := geometry.NewVector3(
		c.Distance*cp*math.Cos(c.Yaw),
		c.Distance*cp*math.Sin(c.Yaw),
		c.Distance*math.Sin(c.Pitch),
	)
	return c.Target.Add(offset)
}

// Rotate changes yaw and pitch; pitch stays short of the poles
func (c *Camera) Rotate(deltaYaw, deltaPitch float64) {
	c.Yaw += deltaYaw
	c.Pitch = math.Max(-maxPitch, math.Min(maxPitch, c.Pitch+deltaPitch))
}

// Zoom scales the distance by (1 + delta)
func (c *Camera) Zoom(delta float64) {
	c.Distance = math.Max(0.1, c.Distance*(1+delta))
}

// basis returns the view axes: right, up and forward
func (c *Camera) basis() (geometry.Vector3, geometry.Vector3, geometry.Vector3) {
	forward := c.Target.Sub(c.Eye()).Normalize()
	right := forward.Cross(geometry.NewVector3(0, 0, 1)).Normalize()
	up := right.Cross(forward)
	return right, up, forward
}

// Project maps a point to pixel coordinates and view depth
func (c *Camera) Project(point geometry.Vector3, width, height float64) (float64, float64, float64) {
	right, up, forward := c.basis()

	rel := point.Sub(c.Eye())
	depth := math.Max(rel.Dot(forward), 0.01)

	scale := (height / 2) / math.Tan(c.FOV/2)
	x := width/2 + rel.Dot(right)*scale/depth
	y := height/2 - rel.Dot(up)*scale/depth
	return x, y, depth
}
