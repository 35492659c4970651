package export

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedFormat is returned for formats outside Formats, or formats an
// engine cannot write
var ErrUnsupportedFormat = errors.New("export: unsupported format")

// Format is a mesh/BREP file format
type Format string

const (
	FormatSTL  Format = "stl"
	FormatSTEP Format = "step"
)

// Formats lists the selectable formats in display order
var Formats = []Format{FormatSTL, FormatSTEP}

// ParseFormat accepts a format name, case-insensitively
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// Ext returns the file extension including the dot
func (f Format) Ext() string {
	return "." + string(f)
}

// MIME returns the media type offered with downloads
func (f Format) MIME() string {
	return "model/" + string(f)
}

func (f Format) String() string {
	return string(f)
}
