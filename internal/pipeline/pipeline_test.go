package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/philipparndt/gobox/internal/controls"
	"github.com/philipparndt/gobox/pkg/export"
	"github.com/philipparndt/gobox/pkg/geometry"
	"github.com/philipparndt/gobox/pkg/preview"
	"github.com/philipparndt/gobox/pkg/solid"
	"github.com/philipparndt/gobox/pkg/step"
	"github.com/philipparndt/gobox/pkg/stl"
)

// recordingEngine wraps the builtin engine and records every call
type recordingEngine struct {
	export.Builtin
	calls       []string
	dims        [3]float64
	previewOpts preview.Options
	skipMesh    bool
	meshErr     error
}

func (e *recordingEngine) Box(length, width, height float64) (*solid.Solid, error) {
	e.calls = append(e.calls, "box")
	e.dims = [3]float64{length, width, height}
	return e.Builtin.Box(length, width, height)
}

func (e *recordingEngine) ExportMesh(ctx context.Context, s *solid.Solid, format export.Format, path string) error {
	e.calls = append(e.calls, "mesh:"+filepath.Base(path))
	if e.meshErr != nil {
		return e.meshErr
	}
	if e.skipMesh {
		return nil
	}
	return e.Builtin.ExportMesh(ctx, s, format, path)
}

func (e *recordingEngine) ExportPreview(ctx context.Context, s *solid.Solid, opts preview.Options, path string) error {
	e.calls = append(e.calls, "preview:"+filepath.Base(path))
	e.previewOpts = opts
	return e.Builtin.ExportPreview(ctx, s, opts, path)
}

func TestRunOrderAndOptions(t *testing.T) {
	engine := &recordingEngine{}
	p := New(engine, t.TempDir())

	result, err := p.Run(context.Background(), controls.Defaults())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	defer result.Release()

	expected := []string{"box", "mesh:model.stl", "preview:preview.svg"}
	if len(engine.calls) != len(expected) {
		t.Fatalf("calls failed: expected %v, got %v", expected, engine.calls)
	}
	for i := range expected {
		if engine.calls[i] != expected[i] {
			t.Errorf("call %d failed: expected %s, got %s", i, expected[i], engine.calls[i])
		}
	}

	if engine.dims != [3]float64{10, 30, 10} {
		t.Errorf("dims failed: expected [10 30 10], got %v", engine.dims)
	}

	opts := engine.previewOpts
	if opts.StrokeColor != (preview.RGB{R: 0, G: 249, B: 0}) {
		t.Errorf("StrokeColor failed: expected (0,249,0), got %v", opts.StrokeColor)
	}
	if opts.HiddenColor != (preview.RGB{R: 0, G: 17, B: 249}) {
		t.Errorf("HiddenColor failed: expected (0,17,249), got %v", opts.HiddenColor)
	}
	if opts.ProjectionDir != geometry.NewVector3(1, -1, -0.5) {
		t.Errorf("ProjectionDir failed: expected (1,-1,-0.5), got %v", opts.ProjectionDir)
	}
	if opts.Focus != 50 || !opts.ShowAxes {
		t.Errorf("Focus/ShowAxes failed: got %v/%v", opts.Focus, opts.ShowAxes)
	}
}

func TestRunSuccess(t *testing.T) {
	tick := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		now := tick
		tick = tick.Add(1700 * time.Millisecond)
		return now
	}

	cfg := controls.Defaults()
	cfg.File.Name = "crate"
	cfg.File.Format = export.FormatSTEP

	p := New(&export.Builtin{}, t.TempDir(), WithClock(clock))
	result, err := p.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	defer result.Release()

	notices := result.Notices()
	if len(notices) != 1 || notices[0].Kind != NoticeSuccess {
		t.Fatalf("Notices failed: expected one success, got %v", notices)
	}
	if notices[0].Message != "Rendered in 1 seconds" || notices[0].Icon != "✅" {
		t.Errorf("Notices failed: got %q %q", notices[0].Icon, notices[0].Message)
	}

	download, ok := result.Download()
	if !ok {
		t.Fatalf("Download failed: expected a download")
	}
	if download.Label != "Download step" || download.FileName != "crate.step" || download.MIME != "model/step" {
		t.Errorf("Download failed: got %+v", download)
	}
	if filepath.Base(download.Path) != "model.step" {
		t.Errorf("Download path failed: expected model.step, got %s", download.Path)
	}
}

func TestRunSilentMeshFailure(t *testing.T) {
	engine := &recordingEngine{skipMesh: true}
	p := New(engine, t.TempDir())

	result, err := p.Run(context.Background(), controls.Defaults())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	defer result.Release()

	if !errors.Is(result.MeshErr, ErrMeshMissing) {
		t.Errorf("MeshErr failed: expected ErrMeshMissing, got %v", result.MeshErr)
	}
	if _, ok := result.Download(); ok {
		t.Errorf("Download failed: expected no download for a missing mesh")
	}

	notices := result.Notices()
	if len(notices) != 1 || notices[0].Kind != NoticeError || notices[0].Message != MeshErrorMessage {
		t.Errorf("Notices failed: expected mesh error, got %v", notices)
	}
	if notices[0].Icon != "🚨" {
		t.Errorf("Notices failed: expected 🚨, got %s", notices[0].Icon)
	}

	if _, err := os.Stat(result.PreviewPath); err != nil {
		t.Errorf("preview failed: expected preview despite mesh failure: %v", err)
	}
}

func TestRunExplicitMeshError(t *testing.T) {
	cfg := controls.Defaults()
	cfg.File.Format = export.FormatSTEP

	engine, err := export.NewEngine("openscad", false)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	result, err := New(engine, t.TempDir()).Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	defer result.Release()

	if !errors.Is(result.MeshErr, export.ErrUnsupportedFormat) {
		t.Errorf("MeshErr failed: expected ErrUnsupportedFormat, got %v", result.MeshErr)
	}
	if _, ok := result.Download(); ok {
		t.Errorf("Download failed: expected none")
	}
}

func TestRunRenderOff(t *testing.T) {
	base := t.TempDir()
	engine := &recordingEngine{}

	cfg := controls.Defaults()
	cfg.Render = false

	result, err := New(engine, base).Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !result.Idle || len(result.Notices()) != 0 {
		t.Errorf("Run failed: expected idle result without notices, got %+v", result)
	}
	if len(engine.calls) != 0 {
		t.Errorf("Run failed: expected no engine calls, got %v", engine.calls)
	}

	entries, _ := os.ReadDir(base)
	if len(entries) != 0 {
		t.Errorf("Run failed: expected no files, got %d entries", len(entries))
	}
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	cfg := controls.Defaults()
	cfg.PrimaryColor = "zzzzzz"

	engine := &recordingEngine{}
	if _, err := New(engine, t.TempDir()).Run(context.Background(), cfg); !errors.Is(err, controls.ErrInvalidColor) {
		t.Errorf("Run failed: expected ErrInvalidColor, got %v", err)
	}
	if len(engine.calls) != 0 {
		t.Errorf("Run failed: expected no engine calls, got %v", engine.calls)
	}
}

func TestRunWorkspacesAreIsolated(t *testing.T) {
	p := New(&export.Builtin{}, t.TempDir())

	a, err := p.Run(context.Background(), controls.Defaults())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	b, err := p.Run(context.Background(), controls.Defaults())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if a.MeshPath == b.MeshPath {
		t.Errorf("workspaces failed: both runs wrote %s", a.MeshPath)
	}

	a.Release()
	if _, err := os.Stat(b.MeshPath); err != nil {
		t.Errorf("Release failed: releasing one run removed another: %v", err)
	}
	b.Release()
}

func TestRoundTrip(t *testing.T) {
	p := New(&export.Builtin{}, t.TempDir())
	expected := geometry.NewVector3(12, 7, 3)

	for _, format := range export.Formats {
		cfg := controls.Defaults()
		cfg.Box = controls.BoxParameters{Length: 12, Width: 7, Height: 3}
		cfg.File.Format = format

		result, err := p.Run(context.Background(), cfg)
		if err != nil {
			t.Fatalf("Run(%s) failed: %v", format, err)
		}

		info, err := os.Stat(result.MeshPath)
		if err != nil || info.Size() == 0 {
			t.Fatalf("%s export failed: missing or empty file", format)
		}

		var size geometry.Vector3
		switch format {
		case export.FormatSTL:
			model, err := stl.Parse(result.MeshPath)
			if err != nil {
				t.Fatalf("stl.Parse failed: %v", err)
			}
			size = model.BoundingBox().Size()
		case export.FormatSTEP:
			model, err := step.Parse(result.MeshPath)
			if err != nil {
				t.Fatalf("step.Parse failed: %v", err)
			}
			bbox, err := model.BoundingBox()
			if err != nil {
				t.Fatalf("BoundingBox failed: %v", err)
			}
			size = bbox.Size()
		}

		if !size.ApproxEqual(expected, 1e-6) {
			t.Errorf("%s round trip failed: expected %v, got %v", format, expected, size)
		}
		result.Release()
	}
}

func TestWithCanvas(t *testing.T) {
	p := New(&export.Builtin{}, "", WithCanvas(400, 300))

	opts, err := p.PreviewOptions(controls.Defaults())
	if err != nil {
		t.Fatalf("PreviewOptions failed: %v", err)
	}
	if opts.Width != 400 || opts.Height != 300 {
		t.Errorf("WithCanvas failed: expected 400x300, got %dx%d", opts.Width, opts.Height)
	}
}
