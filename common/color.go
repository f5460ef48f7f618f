package common

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidHexColor is returned by ParseHexColor for anything other than #rrggbb.
var ErrInvalidHexColor = errors.New("invalid hex color: expected #rrggbb")

// ParseHexColor converts a "#rrggbb" string into an opaque RGBA color with components in [0, 1].
//
// Parameters:
//   - s: the color string, e.g. "#00ff00"
//
// Returns:
//   - [4]float32: the color as RGBA with alpha set to 1
//   - error: ErrInvalidHexColor if the string is malformed
func ParseHexColor(s string) ([4]float32, error) {
	hex, ok := strings.CutPrefix(s, "#")
	if !ok || len(hex) != 6 {
		return [4]float32{}, fmt.Errorf("%q: %w", s, ErrInvalidHexColor)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return [4]float32{}, fmt.Errorf("%q: %w", s, ErrInvalidHexColor)
	}
	return [4]float32{
		float32((v>>16)&0xff) / 255,
		float32((v>>8)&0xff) / 255,
		float32(v&0xff) / 255,
		1,
	}, nil
}

// FormatHexColor is the inverse of ParseHexColor; alpha is ignored.
func FormatHexColor(c [4]float32) string {
	to8 := func(f float32) uint8 {
		return uint8(Clamp(f, 0, 1)*255 + 0.5)
	}
	return fmt.Sprintf("#%02x%02x%02x", to8(c[0]), to8(c[1]), to8(c[2]))
}
