package analysis

import (
	"fmt"
	"math"

	"github.com/philipparndt/gobox/pkg/geometry"
	"github.com/philipparndt/gobox/pkg/step"
	"github.com/philipparndt/gobox/pkg/stl"
)

// MeasurementResult summarizes an exported model
type MeasurementResult struct {
	BoundingBox   geometry.BoundingBox
	Dimensions    geometry.Vector3
	Volume        float64
	SurfaceArea   float64
	TriangleCount int
	EdgeCount     int
	MinEdgeLength float64
	MaxEdgeLength float64
	AvgEdgeLength float64
}

// AnalyzeModel measures a triangle mesh. Edge statistics count every
// triangle side, so shared edges appear twice.
func AnalyzeModel(model *stl.Model) *MeasurementResult {
	result := &MeasurementResult{
		BoundingBox:   model.BoundingBox(),
		SurfaceArea:   model.SurfaceArea(),
		Volume:        model.Volume(),
		TriangleCount: model.TriangleCount(),
	}
	result.Dimensions = result.BoundingBox.Size()

	minLength := math.MaxFloat64
	maxLength := 0.0
	totalLength := 0.0

	for _, triangle := range model.Triangles {
		for _, length := range []float64{
			triangle.V1.Distance(triangle.V2),
			triangle.V2.Distance(triangle.V3),
			triangle.V3.Distance(triangle.V1),
		} {
			totalLength += length
			minLength = math.Min(minLength, length)
			maxLength = math.Max(maxLength, length)
			result.EdgeCount++
		}
	}

	if result.EdgeCount > 0 {
		result.MinEdgeLength = minLength
		result.MaxEdgeLength = maxLength
		result.AvgEdgeLength = totalLength / float64(result.EdgeCount)
	}

	return result
}

// StepSummary is the topology of a parsed STEP solid
type StepSummary struct {
	BoundingBox geometry.BoundingBox
	Dimensions  geometry.Vector3
	Faces       int
	Edges       int
	Vertices    int
}

// AnalyzeStep counts the BREP entities of a STEP model
func AnalyzeStep(model *step.Model) (*StepSummary, error) {
	bbox, err := model.BoundingBox()
	if err != nil {
		return nil, err
	}

	return &StepSummary{
		BoundingBox: bbox,
		Dimensions:  bbox.Size(),
		Faces:       model.Count("ADVANCED_FACE"),
		Edges:       model.Count("EDGE_CURVE"),
		Vertices:    model.Count("VERTEX_POINT"),
	}, nil
}

// FormatVector formats a 3D vector
func FormatVector(v geometry.Vector3) string {
	return fmt.Sprintf("(%.6f, %.6f, %.6f)", v.X, v.Y, v.Z)
}
