// Package export is the boundary to the geometry engine: it builds solids
// and writes them as mesh files and SVG previews.
package export

import (
	"context"
	"fmt"

	"github.com/philipparndt/gobox/pkg/openscad"
	"github.com/philipparndt/gobox/pkg/preview"
	"github.com/philipparndt/gobox/pkg/solid"
	"github.com/philipparndt/gobox/pkg/step"
	"github.com/philipparndt/gobox/pkg/stl"
)

// Engine builds and serializes solids. Every export overwrites path.
type Engine interface {
	Name() string
	Box(length, width, height float64) (*solid.Solid, error)
	ExportMesh(ctx context.Context, s *solid.Solid, format Format, path string) error
	ExportPreview(ctx context.Context, s *solid.Solid, opts preview.Options, path string) error
}

// NewEngine returns the engine registered under name
func NewEngine(name string, asciiSTL bool) (Engine, error) {
	switch name {
	case "", "builtin":
		return &Builtin{ASCII: asciiSTL}, nil
	case "openscad":
		return &OpenSCAD{Builtin: Builtin{ASCII: asciiSTL}}, nil
	default:
		return nil, fmt.Errorf("export: unknown engine %q", name)
	}
}

// Builtin writes STL, STEP and SVG in-process
type Builtin struct {
	ASCII bool
}

func (b *Builtin) Name() string {
	return "builtin"
}

func (b *Builtin) Box(length, width, height float64) (*solid.Solid, error) {
	return solid.Box(length, width, height)
}

func (b *Builtin) ExportMesh(ctx context.Context, s *solid.Solid, format Format, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	switch format {
	case FormatSTL:
		return stl.WriteFile(path, stl.FromTriangles("model", s.Triangles()), b.ASCII)
	case FormatSTEP:
		return step.WriteFile(path, s, "model")
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func (b *Builtin) ExportPreview(ctx context.Context, s *solid.Solid, opts preview.Options, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return preview.WriteFile(path, s, opts)
}

// OpenSCAD meshes through the external openscad binary. It can only write
// STL; previews are drawn in-process.
type OpenSCAD struct {
	Builtin
}

func (o *OpenSCAD) Name() string {
	return "openscad"
}

// ExportMesh renders the solid's bounding box, which is exact for boxes
func (o *OpenSCAD) ExportMesh(ctx context.Context, s *solid.Solid, format Format, path string) error {
	if format != FormatSTL {
		return fmt.Errorf("%w: openscad engine cannot write %q", ErrUnsupportedFormat, format)
	}

	size := s.BoundingBox().Size()
	renderer := openscad.NewRenderer(".")
	return renderer.RenderSourceToSTL(ctx, openscad.BoxSource(size.X, size.Y, size.Z), path)
}
