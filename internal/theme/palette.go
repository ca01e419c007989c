// Package theme holds the two color tables every panel paints with.
//
// A Palette is a plain value. Renderers receive it explicitly and never look
// colors up anywhere else, so a monochrome run can only ever produce colors
// from the Mono table.
package theme

import (
	"image/color"
	"reflect"

	"github.com/rook-computer/panelframe/internal/system"
)

// PillStyle colors one status row of the server panel.
type PillStyle struct {
	Fill  color.RGBA
	Edge  color.RGBA
	Glyph color.RGBA
	Label color.RGBA
}

// Palette maps semantic roles to concrete colors.
type Palette struct {
	Name string
	// Mono switches status indication from color to glyph shape and makes
	// icons draw an outline of width Outline.
	Mono    bool
	Outline float64

	Background    color.RGBA
	Text          color.RGBA
	TextSecondary color.RGBA
	TextMuted     color.RGBA
	TextFaint     color.RGBA
	Rule          color.RGBA
	RuleStrong    color.RGBA

	Accent        color.RGBA
	AccentLine    color.RGBA
	AccentAlt     color.RGBA
	Highlight     color.RGBA
	HighlightEdge color.RGBA

	Good         color.RGBA
	Warn         color.RGBA
	Critical     color.RGBA
	CriticalHalo color.RGBA

	Cold color.RGBA
	Warm color.RGBA
	Hot  color.RGBA

	Sunrise  color.RGBA
	Sunset   color.RGBA
	Upload   color.RGBA
	Download color.RGBA

	Sun        color.RGBA
	Cloud      color.RGBA
	CloudDark  color.RGBA
	CloudSnow  color.RGBA
	CloudStorm color.RGBA
	CloudEdge  color.RGBA
	Rain       color.RGBA
	Snow       color.RGBA
	Bolt       color.RGBA

	BarTrack color.RGBA
	BarEdge  color.RGBA

	PillOK      PillStyle
	PillFailed  PillStyle
	PillUnknown PillStyle
}

func rgb(hex uint32) color.RGBA {
	return color.RGBA{R: uint8(hex >> 16), G: uint8(hex >> 8), B: uint8(hex), A: 0xFF}
}

var (
	bg     = rgb(0x0D1B2A)
	blue   = rgb(0x4A90D9)
	blueA  = rgb(0x60A5FA)
	text1  = rgb(0xE8EDF2)
	text2  = rgb(0x7BA3C4)
	text3  = rgb(0x4A6A8A)
	text4  = rgb(0x1A2E42)
	gold   = rgb(0xFCD34D)
	orange = rgb(0xFB923C)
	green  = rgb(0x4ADE80)
	red    = rgb(0xF87171)

	white  = rgb(0xFFFFFF)
	black  = rgb(0x000000)
	dark   = rgb(0x222222)
	mid    = rgb(0x555555)
	light  = rgb(0xAAAAAA)
	vlight = rgb(0xDDDDDD)
)

// Color is the dark full-color table.
var Color = Palette{
	Name: "color",

	Background:    bg,
	Text:          text1,
	TextSecondary: text2,
	TextMuted:     text3,
	TextFaint:     text4,
	Rule:          text4,
	RuleStrong:    text4,

	Accent:        blue,
	AccentLine:    rgb(0x386DA4), // blue at 70% over the background
	AccentAlt:     blueA,
	Highlight:     rgb(0x15293F), // blueA at 10% over the background
	HighlightEdge: rgb(0x15293F),

	Good:         green,
	Warn:         orange,
	Critical:     red,
	CriticalHalo: rgb(0x48303C),

	Cold: rgb(0x93C5FD),
	Warm: orange,
	Hot:  red,

	Sunrise:  gold,
	Sunset:   orange,
	Upload:   blueA,
	Download: green,

	Sun:        gold,
	Cloud:      rgb(0x5A7A9A),
	CloudDark:  rgb(0x3A5A7A),
	CloudSnow:  rgb(0x7A9AB4),
	CloudStorm: rgb(0x2A3A4A),
	CloudEdge:  rgb(0x3A5A7A),
	Rain:       blueA,
	Snow:       rgb(0xE2E8F0),
	Bolt:       gold,

	BarTrack: text4,
	BarEdge:  text4,

	PillOK:      PillStyle{Fill: rgb(0x0A1E10), Edge: rgb(0x0A1E10), Glyph: green, Label: green},
	PillFailed:  PillStyle{Fill: rgb(0x1E0A0A), Edge: rgb(0x1E0A0A), Glyph: red, Label: red},
	PillUnknown: PillStyle{Fill: rgb(0x0F1820), Edge: rgb(0x0F1820), Glyph: text3, Label: text3},
}

// Mono is the black-on-white table for e-paper.
var Mono = Palette{
	Name:    "mono",
	Mono:    true,
	Outline: 1,

	Background:    white,
	Text:          black,
	TextSecondary: dark,
	TextMuted:     mid,
	TextFaint:     light,
	Rule:          vlight,
	RuleStrong:    light,

	Accent:        black,
	AccentLine:    black,
	AccentAlt:     dark,
	Highlight:     vlight,
	HighlightEdge: dark,

	Good:         black,
	Warn:         black,
	Critical:     black,
	CriticalHalo: vlight,

	Cold: black,
	Warm: black,
	Hot:  black,

	Sunrise:  dark,
	Sunset:   dark,
	Upload:   dark,
	Download: dark,

	Sun:        rgb(0x444444),
	Cloud:      light,
	CloudDark:  rgb(0x888888),
	CloudSnow:  rgb(0xBBBBBB),
	CloudStorm: rgb(0x888888),
	CloudEdge:  rgb(0x444444),
	Rain:       rgb(0x444444),
	Snow:       rgb(0xCCCCCC),
	Bolt:       rgb(0x333333),

	BarTrack: vlight,
	BarEdge:  light,

	PillOK:      PillStyle{Fill: white, Edge: light, Glyph: dark, Label: black},
	PillFailed:  PillStyle{Fill: vlight, Edge: dark, Glyph: black, Label: black},
	PillUnknown: PillStyle{Fill: white, Edge: vlight, Glyph: light, Label: black},
}

// Select returns the table for the monochrome flag.
func Select(mono bool) Palette {
	if mono {
		return Mono
	}
	return Color
}

// WithOverrides replaces the accent and background roles when set. Overrides
// apply to the color table only; the mono table stays black on white.
func (p Palette) WithOverrides(accent, background *color.RGBA) Palette {
	if p.Mono {
		return p
	}
	if accent != nil {
		p.Accent = *accent
		p.AccentLine = *accent
	}
	if background != nil {
		p.Background = *background
	}
	return p
}

// Temperature colors an outside temperature in °C.
func (p Palette) Temperature(c int) color.RGBA {
	switch {
	case c <= 0:
		return p.Cold
	case c >= 30:
		return p.Hot
	case c >= 22:
		return p.Warm
	}
	return p.Text
}

// Severity colors a utilisation percentage.
func (p Palette) Severity(pct float64) color.RGBA {
	switch {
	case pct >= 90:
		return p.Critical
	case pct >= 70:
		return p.Warn
	}
	return p.Good
}

// TempSeverity colors a CPU temperature in °C.
func (p Palette) TempSeverity(c float64) color.RGBA {
	switch {
	case c >= 80:
		return p.Critical
	case c >= 65:
		return p.Warn
	}
	return p.Good
}

// Latency colors a ping round trip. A nil latency means the host is offline.
func (p Palette) Latency(ms *float64) color.RGBA {
	switch {
	case ms == nil:
		return p.Critical
	case *ms < 50:
		return p.Good
	case *ms < 150:
		return p.Warn
	}
	return p.Critical
}

// BarFill colors the filled part of a progress bar.
func (p Palette) BarFill(pct float64) color.RGBA {
	if !p.Mono {
		return p.Severity(pct)
	}
	if pct < 70 {
		return p.Text
	}
	return p.TextSecondary
}

// Status returns the pill style for a check result.
func (p Palette) Status(s system.Status) PillStyle {
	switch s {
	case system.StatusRunning:
		return p.PillOK
	case system.StatusStopped:
		return p.PillFailed
	}
	return p.PillUnknown
}

// Aggregate colors the header indicator: good when every check passed,
// critical when any failed and warn otherwise.
func (p Palette) Aggregate(statuses []system.Status) color.RGBA {
	switch system.Summarize(statuses) {
	case system.StatusRunning:
		return p.Good
	case system.StatusStopped:
		return p.Critical
	}
	return p.Warn
}

// Colors lists every color of the palette, pill styles included.
func (p Palette) Colors() []color.RGBA {
	var out []color.RGBA
	collect(reflect.ValueOf(p), &out)
	return out
}

// Contains reports whether c is one of the palette's colors.
func (p Palette) Contains(c color.Color) bool {
	want := color.RGBAModel.Convert(c).(color.RGBA)
	for _, have := range p.Colors() {
		if have == want {
			return true
		}
	}
	return false
}

var rgbaType = reflect.TypeOf(color.RGBA{})

func collect(v reflect.Value, out *[]color.RGBA) {
	if v.Type() == rgbaType {
		*out = append(*out, v.Interface().(color.RGBA))
		return
	}
	if v.Kind() != reflect.Struct {
		return
	}
	for i := 0; i < v.NumField(); i++ {
		collect(v.Field(i), out)
	}
}
