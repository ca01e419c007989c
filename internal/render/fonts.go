package render

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

type variant int

const (
	variantRegular variant = iota
	variantBold
	variantMono
	variantMonoBold
	variantCount
)

func variantOf(s TextStyle) variant {
	switch {
	case s.Mono && s.Bold:
		return variantMonoBold
	case s.Mono:
		return variantMono
	case s.Bold:
		return variantBold
	}
	return variantRegular
}

type faceKey struct {
	v    variant
	size int
	dpi  float64
}

// Fonts holds the parsed font families and caches sized faces. A variant
// that failed to parse renders with basicfont.
type Fonts struct {
	families [variantCount]*truetype.Font

	mu    sync.Mutex
	faces map[faceKey]font.Face
}

var embedded = [variantCount][]byte{
	variantRegular:  goregular.TTF,
	variantBold:     gobold.TTF,
	variantMono:     gomono.TTF,
	variantMonoBold: gomonobold.TTF,
}

// DefaultFonts returns the embedded Go font families.
func DefaultFonts() *Fonts {
	f, _ := LoadFonts("", "")
	return f
}

// LoadFonts parses the embedded families and replaces regular and bold with
// the TrueType files at the given paths when set. The returned Fonts is always
// usable; the error lists overrides that could not be loaded.
func LoadFonts(regularPath, boldPath string) (*Fonts, error) {
	f := &Fonts{faces: map[faceKey]font.Face{}}
	var errs []error
	for v, data := range embedded {
		tt, err := truetype.Parse(data)
		if err != nil {
			errs = append(errs, fmt.Errorf("embedded font %d: %w", v, err))
			continue
		}
		f.families[v] = tt
	}
	for v, path := range map[variant]string{variantRegular: regularPath, variantBold: boldPath} {
		if path == "" {
			continue
		}
		tt, err := parseFontFile(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		f.families[v] = tt
	}
	return f, errors.Join(errs...)
}

func parseFontFile(path string) (*truetype.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("font %s: %w", path, err)
	}
	tt, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("font %s: %w", path, err)
	}
	return tt, nil
}

// Face returns the face for style at dpi.
func (f *Fonts) Face(style TextStyle, dpi float64) font.Face {
	size := style.Size
	if size <= 0 {
		size = DefaultTextSize
	}
	key := faceKey{v: variantOf(style), size: size, dpi: dpi}

	f.mu.Lock()
	defer f.mu.Unlock()
	if face, ok := f.faces[key]; ok {
		return face
	}
	tt := f.families[key.v]
	if tt == nil {
		return basicfont.Face7x13
	}
	face := truetype.NewFace(tt, &truetype.Options{Size: float64(size), DPI: dpi, Hinting: font.HintingNone})
	f.faces[key] = face
	return face
}

// Measure returns the metrics of text in style at dpi, in pixels.
func (f *Fonts) Measure(text string, style TextStyle, dpi float64) TextMetrics {
	face := f.Face(style, dpi)
	m := face.Metrics()
	return TextMetrics{
		Width:      toFloat(font.MeasureString(face, text)),
		Ascent:     toFloat(m.Ascent),
		Descent:    toFloat(m.Descent),
		LineHeight: toFloat(m.Height),
	}
}

const ellipsis = "…"

// Ellipsize shortens text until it fits max, appending an ellipsis when
// anything was cut. If not even the ellipsis fits, the result is empty.
func Ellipsize(face font.Face, text string, max fixed.Int26_6) string {
	if max <= 0 || font.MeasureString(face, text) <= max {
		return text
	}
	runes := []rune(text)
	for n := len(runes) - 1; n >= 0; n-- {
		s := string(runes[:n]) + ellipsis
		if font.MeasureString(face, s) <= max {
			return s
		}
	}
	return ""
}

func toFloat(v fixed.Int26_6) float64 { return float64(v) / 64 }

func toFixed(v float64) fixed.Int26_6 { return fixed.Int26_6(v * 64) }
