package panels

import (
	"math"

	"github.com/rook-computer/panelframe/internal/render"
	"github.com/rook-computer/panelframe/internal/system"
	"github.com/rook-computer/panelframe/internal/theme"
)

const (
	pillHeight = 20
	pillStep   = 30
	pillsTop   = 72
)

// drawBar paints a utilisation bar. At 90% and above the mono variant gets a
// dashed center line so a full bar still reads as critical.
func drawBar(c pen, p theme.Palette, x, y, w, h, pct float64) {
	pct = math.Max(0, math.Min(100, pct))
	fill := w * pct / 100
	if !p.Mono {
		c.Rect(x, y, w, h, render.Filled(p.BarTrack))
		c.Rect(x, y, math.Max(fill, 4), h, render.Filled(p.BarFill(pct)))
		return
	}
	c.Rect(x, y, w, h, render.Shape{Fill: p.BarTrack, Stroke: p.BarEdge, Width: 0.8})
	c.Rect(x, y, math.Max(fill, 3), h, render.Filled(p.BarFill(pct)))
	if pct >= 90 {
		mid := y + h/2
		c.Line(x+1, mid, x+fill-1, mid, render.Shape{Stroke: p.Background, Width: 1.5, Dash: []float64{4, 2}})
	}
}

func glyphFor(st system.Status) glyphKind {
	switch st {
	case system.StatusRunning:
		return glyphOK
	case system.StatusStopped:
		return glyphFailed
	}
	return glyphUnknown
}

// StatusLabel is the pill text for a check result.
func StatusLabel(st system.Status) string {
	switch st {
	case system.StatusRunning:
		return "OK"
	case system.StatusStopped:
		return "FEHLER"
	}
	return "?"
}

// drawPills renders one row per name in allow-list order and stops before a
// row would run past bottom.
func drawPills(c pen, p theme.Palette, names []string, results map[string]system.Status, x, w, bottom float64) {
	yd := float64(pillsTop)
	for _, name := range names {
		if yd+2+pillHeight > bottom {
			return
		}
		st := results[name]
		style := p.Status(st)
		failed := st == system.StatusStopped

		if p.Mono {
			c.RoundRect(x, yd+2, w, pillHeight, 4, render.Shape{Fill: style.Fill, Stroke: style.Edge, Width: 0.8})
			drawStatusGlyph(c.Canvas, p, style, glyphFor(st), x+12, yd+12, 5)
			c.text(x+24, yd+4, name, 12, p.Text, bold, mono, maxWidth(w-80))
			c.text(x+w-6, yd+5, StatusLabel(st), 10, style.Label, right, boldIf(failed))
		} else {
			c.RoundRect(x, yd+2, w, pillHeight, 4, render.Filled(style.Fill))
			c.Rect(x, yd+2, 3, pillHeight, render.Filled(style.Glyph))
			if failed {
				c.Circle(x+14, yd+12, 9, render.Filled(p.CriticalHalo))
			}
			drawStatusGlyph(c.Canvas, p, style, glyphFor(st), x+14, yd+12, 5)
			c.text(x+26, yd+4, name, 13, p.Text, bold, mono, maxWidth(w-80))
			c.text(x+w-6, yd+4, StatusLabel(st), 11, style.Label, right)
		}
		yd += pillStep
	}
}
