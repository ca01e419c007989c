package config

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// ParseColor accepts #rgb, #rrggbb, #rrggbbaa (the leading # is optional)
// and SVG 1.1 color names such as "orange" or "steelblue".
func ParseColor(raw string) (color.RGBA, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return color.RGBA{}, fmt.Errorf("empty color")
	}
	if named, ok := colornames.Map[s]; ok {
		return named, nil
	}
	hex := strings.TrimPrefix(s, "#")
	switch len(hex) {
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]}) + "ff"
	case 6:
		hex += "ff"
	case 8:
	default:
		return color.RGBA{}, fmt.Errorf("unknown color %q", raw)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("unknown color %q", raw)
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// MustColor parses a hex literal known at compile time.
func MustColor(raw string) color.RGBA {
	c, err := ParseColor(raw)
	if err != nil {
		panic(err)
	}
	return c
}
