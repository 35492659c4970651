// Package controls holds the parameter groups collected from the user
// interface, with their defaults and input constraints.
package controls

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/philipparndt/gobox/pkg/export"
	"github.com/philipparndt/gobox/pkg/preview"
)

// MinDimension is the smallest accepted box dimension
const MinDimension = 1

// Default control values
const (
	DefaultLength = 10
	DefaultWidth  = 30
	DefaultHeight = 10

	DefaultAxis1 = 1.0
	DefaultAxis2 = -1.0
	DefaultAxis3 = -0.5
	DefaultFocus = 50

	DefaultName           = "model"
	DefaultPrimaryColor   = "#00f900"
	DefaultSecondaryColor = "#0011f9"
)

var (
	ErrBelowMinimum = errors.New("value below minimum")
	ErrInvalidColor = preview.ErrInvalidColor
)

// BoxParameters are the box dimensions
type BoxParameters struct {
	Length float64 `yaml:"length" json:"length"`
	Width  float64 `yaml:"width" json:"width"`
	Height float64 `yaml:"height" json:"height"`
}

// CameraParameters set the preview projection direction and focus
type CameraParameters struct {
	Axis1 float64 `yaml:"axis1" json:"axis1"`
	Axis2 float64 `yaml:"axis2" json:"axis2"`
	Axis3 float64 `yaml:"axis3" json:"axis3"`
	Focus float64 `yaml:"focus" json:"focus"`
}

// FileParameters name the download and pick its format
type FileParameters struct {
	Name   string        `yaml:"name" json:"name"`
	Format export.Format `yaml:"format" json:"format"`
}

// Config is one complete set of control values
type Config struct {
	Box            BoxParameters    `yaml:"parameters" json:"parameters"`
	Camera         CameraParameters `yaml:"camera" json:"camera"`
	File           FileParameters   `yaml:"file" json:"file"`
	Render         bool             `yaml:"render" json:"render"`
	PrimaryColor   string           `yaml:"primary_color" json:"primary_color"`
	SecondaryColor string           `yaml:"secondary_color" json:"secondary_color"`
}

// Defaults returns the values the controls start with
func Defaults() Config {
	return Config{
		Box: BoxParameters{
			Length: DefaultLength,
			Width:  DefaultWidth,
			Height: DefaultHeight,
		},
		Camera: CameraParameters{
			Axis1: DefaultAxis1,
			Axis2: DefaultAxis2,
			Axis3: DefaultAxis3,
			Focus: DefaultFocus,
		},
		File: FileParameters{
			Name:   DefaultName,
			Format: export.FormatSTL,
		},
		Render:         true,
		PrimaryColor:   DefaultPrimaryColor,
		SecondaryColor: DefaultSecondaryColor,
	}
}

// ParseFormat accepts one of the selectable file formats
func ParseFormat(s string) (export.Format, error) {
	return export.ParseFormat(s)
}

// Validate enforces the widget constraints. Camera values are passed
// through unchecked. Colors are only checked when rendering is enabled,
// matching the disabled color pickers.
func (c Config) Validate() error {
	dims := []struct {
		name  string
		value float64
	}{
		{"length", c.Box.Length},
		{"width", c.Box.Width},
		{"height", c.Box.Height},
	}
	for _, d := range dims {
		if math.IsNaN(d.value) || math.IsInf(d.value, 0) {
			return fmt.Errorf("%s: not a finite number", d.name)
		}
		if d.value < MinDimension {
			return fmt.Errorf("%s: %w %d (got %g)", d.name, ErrBelowMinimum, MinDimension, d.value)
		}
	}

	if _, err := ParseFormat(string(c.File.Format)); err != nil {
		return fmt.Errorf("format: %w", err)
	}

	if !c.Render {
		return nil
	}
	if _, err := preview.ParseHex(c.PrimaryColor); err != nil {
		return fmt.Errorf("primary color: %w", err)
	}
	if _, err := preview.ParseHex(c.SecondaryColor); err != nil {
		return fmt.Errorf("secondary color: %w", err)
	}
	return nil
}

// DownloadName returns "<name>.<format>". Path separators, quotes and
// control characters are dropped, and an empty name falls back to the
// default.
func (f FileParameters) DownloadName() string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == '"':
			return -1
		case r < 0x20 || r == 0x7f:
			return -1
		}
		return r
	}, f.Name)

	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." {
		name = DefaultName
	}
	return name + f.Format.Ext()
}
