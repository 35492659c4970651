package openscad

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrNotInstalled is returned when the openscad binary cannot be found
var ErrNotInstalled = errors.New("openscad not found in PATH, install it from https://openscad.org/")

// Renderer runs the OpenSCAD command line to turn .scad sources into meshes
type Renderer struct {
	binary  string
	workDir string
}

// NewRenderer creates a new OpenSCAD renderer working in workDir
func NewRenderer(workDir string) *Renderer {
	return &Renderer{
		binary:  "openscad",
		workDir: workDir,
	}
}

// Available reports whether the openscad binary is on PATH
func (r *Renderer) Available() bool {
	_, err := exec.LookPath(r.binary)
	return err == nil
}

// BoxSource returns a script for a box centered at the origin
func BoxSource(length, width, height float64) string {
	return fmt.Sprintf("cube([%s, %s, %s], center = true);\n",
		strconv.FormatFloat(length, 'g', -1, 64),
		strconv.FormatFloat(width, 'g', -1, 64),
		strconv.FormatFloat(height, 'g', -1, 64))
}

// RenderSourceToSTL writes source next to outputFile and renders it
func (r *Renderer) RenderSourceToSTL(ctx context.Context, source, outputFile string) error {
	scadFile := strings.TrimSuffix(outputFile, filepath.Ext(outputFile)) + ".scad"
	if err := os.WriteFile(scadFile, []byte(source), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", scadFile, err)
	}
	defer os.Remove(scadFile)

	return r.RenderToSTL(ctx, scadFile, outputFile)
}

// RenderToSTL renders an OpenSCAD file to STL format
func (r *Renderer) RenderToSTL(ctx context.Context, scadFile, outputFile string) error {
	absScadFile := scadFile
	if !filepath.IsAbs(scadFile) {
		absScadFile = filepath.Join(r.workDir, scadFile)
	}

	if !r.Available() {
		return ErrNotInstalled
	}

	cmd := exec.CommandContext(ctx, r.binary, "-o", outputFile, absScadFile)
	cmd.Dir = r.workDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var errMsg strings.Builder
		errMsg.WriteString(fmt.Sprintf("failed to render %s: %v\n", scadFile, err))
		if stderr.Len() > 0 {
			errMsg.WriteString("stderr: ")
			errMsg.WriteString(stderr.String())
		}
		if stdout.Len() > 0 {
			errMsg.WriteString("stdout: ")
			errMsg.WriteString(stdout.String())
		}
		return errors.New(errMsg.String())
	}

	return nil
}
