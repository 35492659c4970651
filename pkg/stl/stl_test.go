package stl

import (
	"bytes"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/philipparndt/gobox/pkg/geometry"
)

func cube() *Model {
	model := NewModel("cube")
	n := geometry.NewVector3(0, 0, 1)
	model.AddTriangle(geometry.NewTriangle(n, geometry.NewVector3(-5, -15, 5), geometry.NewVector3(5, -15, 5), geometry.NewVector3(5, 15, 5)))
	model.AddTriangle(geometry.NewTriangle(n.Mul(-1), geometry.NewVector3(-5, -15, -5), geometry.NewVector3(5, 15, -5), geometry.NewVector3(5, -15, -5)))
	return model
}

func TestBinaryRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, cube(), false); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if buf.Len() != 84+2*50 {
		t.Errorf("Binary size failed: expected %d, got %d", 84+2*50, buf.Len())
	}

	model, err := ParseReader(&buf)
	if err != nil {
		t.Fatalf("ParseReader failed: %v", err)
	}

	if model.TriangleCount() != 2 {
		t.Errorf("TriangleCount failed: expected 2, got %d", model.TriangleCount())
	}
	expected := geometry.NewVector3(10, 30, 10)
	if size := model.BoundingBox().Size(); size != expected {
		t.Errorf("Size failed: expected %v, got %v", expected, size)
	}
	if model.Triangles[1].Normal != geometry.NewVector3(0, 0, -1) {
		t.Errorf("Normal failed: expected (0, 0, -1), got %v", model.Triangles[1].Normal)
	}
}

func TestASCIIRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, cube(), true); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if !strings.HasPrefix(buf.String(), "solid cube\n") {
		t.Errorf("ASCII header failed: got %q", buf.String()[:20])
	}

	model, err := ParseReader(&buf)
	if err != nil {
		t.Fatalf("ParseReader failed: %v", err)
	}

	if model.Name != "cube" {
		t.Errorf("Name failed: expected cube, got %q", model.Name)
	}
	if model.TriangleCount() != 2 {
		t.Errorf("TriangleCount failed: expected 2, got %d", model.TriangleCount())
	}
	if model.Triangles[0].V2 != geometry.NewVector3(5, -15, 5) {
		t.Errorf("Vertex failed: expected (5, -15, 5), got %v", model.Triangles[0].V2)
	}
}

func TestBinaryHeaderStartingWithSolid(t *testing.T) {
	var buf bytes.Buffer
	model := cube()
	model.Name = "x"
	if err := Write(&buf, model, false); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	data := buf.Bytes()
	copy(data, "solid exported by another tool")

	parsed, err := ParseReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ParseReader failed: %v", err)
	}
	if parsed.TriangleCount() != 2 {
		t.Errorf("TriangleCount failed: expected 2, got %d", parsed.TriangleCount())
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := ParseReader(strings.NewReader("not a mesh")); err == nil {
		t.Errorf("ParseReader failed: expected error for garbage input")
	}
	if _, err := ParseReader(strings.NewReader("solid x\n facet normal 0 0 1\n")); err == nil {
		t.Errorf("ParseReader failed: expected error for truncated ASCII input")
	}
}

func TestWriteFileAndParse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.stl")
	if err := WriteFile(path, cube(), false); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	model, err := Parse(path)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if area := model.SurfaceArea(); math.Abs(area-300) > 1e-9 {
		t.Errorf("SurfaceArea failed: expected 300, got %v", area)
	}
}
