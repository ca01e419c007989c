package panels

import (
	"image/color"
	"math"

	"github.com/rook-computer/panelframe/internal/render"
	"github.com/rook-computer/panelframe/internal/theme"
	"github.com/rook-computer/panelframe/internal/weather"
)

// cloud puffs as (dx, dy, radius) in units of the icon radius.
var puffs = [...][3]float64{
	{-0.35, -0.15, 0.40},
	{0.20, -0.45, 0.55},
	{0.75, -0.15, 0.40},
	{0.00, 0.10, 0.40},
}

// DrawIcon composes the shape for icon around (cx, cy) with base radius r.
func DrawIcon(c *render.Canvas, p theme.Palette, icon weather.Icon, cx, cy, r float64) {
	switch icon {
	case weather.IconSun:
		drawSun(c, p, cx, cy, r)
	case weather.IconSunCloud:
		drawSun(c, p, cx, cy, r)
		drawCloud(c, p, cx+0.3*r, cy+0.35*r, r, p.CloudDark)
	case weather.IconOvercast:
		drawCloud(c, p, cx, cy, r, p.CloudDark)
	case weather.IconRain:
		drawCloud(c, p, cx, cy, r, p.CloudDark)
		for _, dx := range []float64{-0.5, -0.1, 0.3, 0.65} {
			c.Line(cx+(dx+0.15)*r, cy+0.6*r, cx+dx*r, cy+1.2*r, render.Stroked(p.Rain, math.Max(r*0.10, 1.5)))
		}
	case weather.IconSnow:
		drawCloud(c, p, cx, cy, r, p.CloudSnow)
		for _, dx := range []float64{-0.45, 0, 0.45} {
			c.Circle(cx+dx*r, cy+0.9*r, r*0.12, render.Filled(p.Snow))
		}
	case weather.IconStorm:
		drawCloud(c, p, cx, cy, r, p.CloudStorm)
		c.Polyline([]render.Point{
			render.Pt(cx-0.15*r, cy+0.25*r),
			render.Pt(cx+0.20*r, cy+0.55*r),
			render.Pt(cx+0.05*r, cy+0.55*r),
			render.Pt(cx+0.35*r, cy+1.15*r),
		}, render.Stroked(p.Bolt, math.Max(r*0.12, 2)))
	default:
		drawCloud(c, p, cx, cy, r, p.Cloud)
	}
}

func drawSun(c *render.Canvas, p theme.Palette, cx, cy, r float64) {
	c.Circle(cx, cy, r*0.55, render.Filled(p.Sun))
	w := math.Max(r*0.12, 1.5)
	for deg := 0; deg < 360; deg += 45 {
		a := float64(deg) * math.Pi / 180
		cos, sin := math.Cos(a), math.Sin(a)
		c.Line(cx+r*0.72*cos, cy+r*0.72*sin, cx+r*1.05*cos, cy+r*1.05*sin, render.Stroked(p.Sun, w))
	}
}

// drawCloud paints the puffs; with an outline width they get an edge so the
// cloud stays visible on white.
func drawCloud(c *render.Canvas, p theme.Palette, cx, cy, r float64, fill color.RGBA) {
	s := render.Filled(fill)
	if p.Outline > 0 {
		s.Stroke = p.CloudEdge
		s.Width = p.Outline * 0.5
	}
	for _, f := range puffs {
		c.Circle(cx+f[0]*r, cy+f[1]*r, f[2]*r, s)
	}
}

// drawStatusGlyph marks a check result. Color palettes use a dot in the
// status color; mono palettes tell results apart by shape.
func drawStatusGlyph(c *render.Canvas, p theme.Palette, st theme.PillStyle, kind glyphKind, cx, cy, r float64) {
	if !p.Mono {
		c.Circle(cx, cy, r, render.Filled(st.Glyph))
		return
	}
	switch kind {
	case glyphOK:
		c.Circle(cx, cy, r*0.9, render.Filled(st.Glyph))
	case glyphFailed:
		d := r * 0.8
		w := math.Max(r*0.35, 1.2)
		c.Line(cx-d, cy-d, cx+d, cy+d, render.Stroked(st.Glyph, w))
		c.Line(cx-d, cy+d, cx+d, cy-d, render.Stroked(st.Glyph, w))
	default:
		c.Circle(cx, cy, r*0.8, render.Stroked(st.Glyph, math.Max(r*0.25, 1)))
	}
}

type glyphKind int

const (
	glyphUnknown glyphKind = iota
	glyphOK
	glyphFailed
)
