// Package pipeline runs one generation pass: build the box, export the
// mesh, draw the preview and describe the outcome for the user interface.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/philipparndt/gobox/internal/controls"
	"github.com/philipparndt/gobox/internal/workspace"
	"github.com/philipparndt/gobox/pkg/export"
	"github.com/philipparndt/gobox/pkg/geometry"
	"github.com/philipparndt/gobox/pkg/preview"
)

// File names inside a run's workspace
const (
	MeshBaseName = "model"
	PreviewName  = "preview.svg"
)

// ErrMeshMissing reports an export that returned without producing a file
var ErrMeshMissing = errors.New("mesh file was not generated")

// Pipeline runs generation passes against one engine
type Pipeline struct {
	engine export.Engine
	base   string
	width  int
	height int
	now    func() time.Time
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithCanvas sets the preview size in pixels
func WithCanvas(width, height int) Option {
	return func(p *Pipeline) {
		if width > 0 {
			p.width = width
		}
		if height > 0 {
			p.height = height
		}
	}
}

// WithClock replaces time.Now for elapsed time measurement
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

// New creates a pipeline writing workspaces below base
func New(engine export.Engine, base string, opts ...Option) *Pipeline {
	defaults := preview.DefaultOptions()
	p := &Pipeline{
		engine: engine,
		base:   base,
		width:  defaults.Width,
		height: defaults.Height,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Engine returns the engine used for generation
func (p *Pipeline) Engine() export.Engine {
	return p.engine
}

// PreviewOptions maps the camera and color controls onto drawing options
func (p *Pipeline) PreviewOptions(cfg controls.Config) (preview.Options, error) {
	stroke, err := preview.ParseHex(cfg.PrimaryColor)
	if err != nil {
		return preview.Options{}, fmt.Errorf("primary color: %w", err)
	}
	hidden, err := preview.ParseHex(cfg.SecondaryColor)
	if err != nil {
		return preview.Options{}, fmt.Errorf("secondary color: %w", err)
	}

	opts := preview.DefaultOptions()
	opts.ProjectionDir = geometry.NewVector3(cfg.Camera.Axis1, cfg.Camera.Axis2, cfg.Camera.Axis3)
	opts.Focus = cfg.Camera.Focus
	opts.ShowAxes = true
	opts.StrokeColor = stroke
	opts.HiddenColor = hidden
	opts.Width = p.width
	opts.Height = p.height
	return opts, nil
}

// Run executes one pass. With rendering disabled it returns an idle result
// and touches nothing. A mesh export failure is recorded on the result;
// generation and preview failures are returned as errors.
func (p *Pipeline) Run(ctx context.Context, cfg controls.Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !cfg.Render {
		return &Result{Idle: true, Config: cfg}, nil
	}

	opts, err := p.PreviewOptions(cfg)
	if err != nil {
		return nil, err
	}

	ws, err := workspace.New(p.base)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Config:      cfg,
		Workspace:   ws,
		MeshPath:    ws.Path(MeshBaseName + cfg.File.Format.Ext()),
		PreviewPath: ws.Path(PreviewName),
	}

	start := p.now()

	box, err := p.engine.Box(cfg.Box.Length, cfg.Box.Width, cfg.Box.Height)
	if err != nil {
		ws.Release()
		return nil, fmt.Errorf("failed to generate model: %w", err)
	}
	result.Solid = box

	if err := p.engine.ExportMesh(ctx, box, cfg.File.Format, result.MeshPath); err != nil {
		log.Printf("[pipeline] %s export failed: %v", cfg.File.Format, err)
		result.MeshErr = err
	}

	if err := p.engine.ExportPreview(ctx, box, opts, result.PreviewPath); err != nil {
		ws.Release()
		return nil, fmt.Errorf("failed to render preview: %w", err)
	}

	end := p.now()
	result.Elapsed = end.Sub(start)

	if result.MeshErr == nil {
		if _, err := os.Stat(result.MeshPath); err != nil {
			log.Printf("[pipeline] %s export produced no file", cfg.File.Format)
			result.MeshErr = ErrMeshMissing
		}
	}

	return result, nil
}
