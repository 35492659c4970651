package controls

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Form field names shared by the web form and FromValues
const (
	FieldLength         = "length"
	FieldWidth          = "width"
	FieldHeight         = "height"
	FieldAxis1          = "axis1"
	FieldAxis2          = "axis2"
	FieldAxis3          = "axis3"
	FieldFocus          = "focus"
	FieldName           = "name"
	FieldFormat         = "format"
	FieldRender         = "render"
	FieldPrimaryColor   = "primary_color"
	FieldSecondaryColor = "secondary_color"
)

// FromValues overlays submitted form values on the defaults. Absent fields
// keep their default. For repeated fields the last value wins, so a hidden
// "off" input followed by a checkbox encodes an unchecked box.
func FromValues(values url.Values) (Config, error) {
	cfg := Defaults()

	floats := []struct {
		field  string
		target *float64
	}{
		{FieldLength, &cfg.Box.Length},
		{FieldWidth, &cfg.Box.Width},
		{FieldHeight, &cfg.Box.Height},
		{FieldAxis1, &cfg.Camera.Axis1},
		{FieldAxis2, &cfg.Camera.Axis2},
		{FieldAxis3, &cfg.Camera.Axis3},
		{FieldFocus, &cfg.Camera.Focus},
	}
	for _, f := range floats {
		raw, ok := last(values, f.field)
		if !ok {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return cfg, fmt.Errorf("%s: invalid number %q", f.field, raw)
		}
		*f.target = v
	}

	if raw, ok := last(values, FieldName); ok {
		cfg.File.Name = raw
	}
	if raw, ok := last(values, FieldFormat); ok {
		format, err := ParseFormat(raw)
		if err != nil {
			return cfg, fmt.Errorf("format: %w", err)
		}
		cfg.File.Format = format
	}
	if raw, ok := last(values, FieldRender); ok {
		cfg.Render = parseBool(raw)
	}
	if raw, ok := last(values, FieldPrimaryColor); ok {
		cfg.PrimaryColor = raw
	}
	if raw, ok := last(values, FieldSecondaryColor); ok {
		cfg.SecondaryColor = raw
	}

	return cfg, nil
}

// Values encodes cfg as form values accepted by FromValues
func (c Config) Values() url.Values {
	format := func(v float64) string {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	render := "off"
	if c.Render {
		render = "on"
	}

	return url.Values{
		FieldLength:         {format(c.Box.Length)},
		FieldWidth:          {format(c.Box.Width)},
		FieldHeight:         {format(c.Box.Height)},
		FieldAxis1:          {format(c.Camera.Axis1)},
		FieldAxis2:          {format(c.Camera.Axis2)},
		FieldAxis3:          {format(c.Camera.Axis3)},
		FieldFocus:          {format(c.Camera.Focus)},
		FieldName:           {c.File.Name},
		FieldFormat:         {string(c.File.Format)},
		FieldRender:         {render},
		FieldPrimaryColor:   {c.PrimaryColor},
		FieldSecondaryColor: {c.SecondaryColor},
	}
}

// LoadFile reads a YAML parameter file. Keys left out keep their default.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Decode(data)
}

// Decode parses YAML parameters over the defaults and validates them
func Decode(data []byte) (Config, error) {
	cfg := Defaults()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse parameters: %w", err)
	}

	format, err := ParseFormat(string(cfg.File.Format))
	if err != nil {
		return Config{}, fmt.Errorf("format: %w", err)
	}
	cfg.File.Format = format

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func last(values url.Values, key string) (string, bool) {
	v := values[key]
	if len(v) == 0 {
		return "", false
	}
	return v[len(v)-1], true
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}
