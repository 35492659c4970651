package viewer

import (
	"image"
	"image/color"
	"math"
)

// fillTriangleWithDepth rasterizes a triangle, keeping pixels nearer than
// what the z-buffer already holds
func fillTriangleWithDepth(img *image.RGBA, zbuffer []float64, p [3][3]float64, col color.RGBA) {
	bounds := img.Bounds()
	width := bounds.Dx()

	minX := int(math.Max(0, math.Floor(math.Min(p[0][0], math.Min(p[1][0], p[2][0])))))
	maxX := int(math.Min(float64(bounds.Max.X-1), math.Ceil(math.Max(p[0][0], math.Max(p[1][0], p[2][0])))))
	minY := int(math.Max(0, math.Floor(math.Min(p[0][1], math.Min(p[1][1], p[2][1])))))
	maxY := int(math.Min(float64(bounds.Max.Y-1), math.Ceil(math.Max(p[0][1], math.Max(p[1][1], p[2][1])))))

	area := edge(p[0], p[1], p[2][0], p[2][1])
	if math.Abs(area) < 1e-9 {
		return
	}

	for y := minY; y <= maxY; y++ {
		fy := float64(y) + 0.5
		for x := minX; x <= maxX; x++ {
			fx := float64(x) + 0.5

			w0 := edge(p[1], p[2], fx, fy) / area
			w1 := edge(p[2], p[0], fx, fy) / area
			w2 := edge(p[0], p[1], fx, fy) / area
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}

			z := w0*p[0][2] + w1*p[1][2] + w2*p[2][2]
			idx := y*width + x
			if z < zbuffer[idx] {
				zbuffer[idx] = z
				img.SetRGBA(x, y, col)
			}
		}
	}
}

func edge(a, b [3]float64, x, y float64) float64 {
	return (b[0]-a[0])*(y-a[1]) - (b[1]-a[1])*(x-a[0])
}

// drawLine draws a line with Bresenham's algorithm
func drawLine(img *image.RGBA, x1, y1, x2, y2 int, col color.RGBA) {
	dx := abs(x2 - x1)
	dy := -abs(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}

	err := dx + dy
	for {
		if image.Pt(x1, y1).In(img.Bounds()) {
			img.SetRGBA(x1, y1, col)
		}
		if x1 == x2 && y1 == y2 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x1 += sx
		}
		if e2 <= dx {
			err += dx
			y1 += sy
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// shade scales a color by a light intensity in [0, 1]
func shade(c color.RGBA, intensity float64) color.RGBA {
	intensity = math.Max(0, math.Min(1, intensity))
	return color.RGBA{
		R: uint8(float64(c.R) * intensity),
		G: uint8(float64(c.G) * intensity),
		B: uint8(float64(c.B) * intensity),
		A: 255,
	}
}
