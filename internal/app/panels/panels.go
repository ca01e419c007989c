// Package panels renders the clock, weather and server panels onto canvases.
//
// Every panel splits into a data step, which talks to the outside world and
// degrades on failure, and a pure Draw function that turns the gathered data
// and a palette into a render.Canvas.
package panels

import (
	"context"
	"image/color"
	"time"

	"github.com/rook-computer/panelframe/internal/config"
	"github.com/rook-computer/panelframe/internal/render"
	"github.com/rook-computer/panelframe/internal/theme"
)

// Panel produces one canvas per run.
type Panel interface {
	Name() string
	FileName() string
	Render(ctx context.Context, s config.Settings) (*render.Canvas, error)
}

// Logger is the logger panels report degraded data sources to.
type Logger = render.Logger

type noopLogger struct{}

func (noopLogger) Infof(string, string, ...interface{})  {}
func (noopLogger) Errorf(string, string, ...interface{}) {}

func orNoop(l Logger) Logger {
	if l == nil {
		return noopLogger{}
	}
	return l
}

// Palette returns the palette a run paints with.
func Palette(s config.Settings) theme.Palette {
	return theme.Select(s.Mono).WithOverrides(s.Accent, s.Background)
}

func now(clock func() time.Time, s config.Settings) time.Time {
	if clock != nil {
		t := clock()
		if s.Location != nil {
			t = t.In(s.Location)
		}
		return t
	}
	return s.Now()
}

// pen wraps a canvas with the text shorthands every panel uses.
type pen struct {
	*render.Canvas
	p theme.Palette
}

func newPen(s config.Settings, p theme.Palette) pen {
	return pen{Canvas: render.NewCanvas(s.Width, s.Height, p.Background), p: p}
}

type textOpt func(*render.TextStyle)

func bold(st *render.TextStyle)   { st.Bold = true }
func mono(st *render.TextStyle)   { st.Mono = true }
func center(st *render.TextStyle) { st.Align = render.TextAlignCenter }
func right(st *render.TextStyle)  { st.Align = render.TextAlignRight }
func middle(st *render.TextStyle) { st.VAlign = render.VAlignMiddle }
func maxWidth(w float64) textOpt  { return func(st *render.TextStyle) { st.MaxWidth = w } }
func boldIf(b bool) textOpt       { return func(st *render.TextStyle) { st.Bold = st.Bold || b } }

// text draws s with its top edge at y unless an option says otherwise.
func (c pen) text(x, y float64, s string, size int, col color.Color, opts ...textOpt) {
	st := render.TextStyle{Color: col, Size: size, VAlign: render.VAlignTop}
	for _, o := range opts {
		o(&st)
	}
	c.Text(x, y, s, st)
}

// withUnit draws s like text and places unit right where s ends, shifted
// by dy.
func (c pen) withUnit(x, y float64, s string, size int, col color.Color, unit string, unitSize int, unitCol color.Color, dy float64, opts ...textOpt) {
	st := render.TextStyle{Color: col, Size: size, VAlign: render.VAlignTop}
	for _, o := range opts {
		o(&st)
	}
	c.TextWithSuffix(x, y, s, st, render.TextSpan{
		Text:  unit,
		Style: render.TextStyle{Color: unitCol, Size: unitSize, VAlign: render.VAlignTop},
		DY:    dy,
	})
}

func (c pen) rule(x1, y1, x2, y2, width float64, col color.Color) {
	c.Line(x1, y1, x2, y2, render.Stroked(col, width))
}
