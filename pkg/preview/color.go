package preview

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidColor is returned for strings that are not six hex digits
var ErrInvalidColor = errors.New("preview: invalid hex color")

// RGB is an 8-bit color triple
type RGB struct {
	R, G, B uint8
}

// ParseHex converts "#rrggbb" or "rrggbb" into an RGB triple.
// Each character pair is read as an independent base-16 byte.
func ParseHex(s string) (RGB, error) {
	hex := strings.TrimLeft(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return RGB{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}

	var c [3]uint8
	for i := range c {
		v, err := strconv.ParseUint(hex[2*i:2*i+2], 16, 8)
		if err != nil {
			return RGB{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}
		c[i] = uint8(v)
	}
	return RGB{R: c[0], G: c[1], B: c[2]}, nil
}

// Hex returns the color as "#rrggbb"
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c RGB) String() string {
	return fmt.Sprintf("rgb(%d,%d,%d)", c.R, c.G, c.B)
}
