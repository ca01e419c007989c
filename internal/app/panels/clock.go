package panels

import (
	"context"
	"strings"
	"time"

	"github.com/rook-computer/panelframe/internal/config"
	"github.com/rook-computer/panelframe/internal/render"
	"github.com/rook-computer/panelframe/internal/theme"
	"github.com/rook-computer/panelframe/internal/weather"
)

// Clock shows the time, the date and current outside conditions.
type Clock struct {
	// Source defaults to an Open-Meteo client built from the settings.
	Source weather.Source
	Log    Logger
	// Now overrides the wall clock.
	Now func() time.Time
}

func (c *Clock) Name() string     { return "clock" }
func (c *Clock) FileName() string { return "clock.png" }

func (c *Clock) Render(ctx context.Context, s config.Settings) (*render.Canvas, error) {
	log := orNoop(c.Log)
	src := c.Source
	if src == nil {
		src = weatherClient(s)
	}
	snap, err := weather.Get(ctx, src, weather.Query{
		Latitude:  s.Latitude,
		Longitude: s.Longitude,
		Timezone:  s.Timezone,
	})
	if err != nil {
		log.Errorf("clock", "weather unavailable, showing placeholder: %v", err)
	}
	return DrawClock(s, Palette(s), snap, now(c.Now, s)), nil
}

// DrawClock lays out the clock panel.
func DrawClock(s config.Settings, p theme.Palette, snap weather.Snapshot, t time.Time) *render.Canvas {
	c := newPen(s, p)
	W, H := c.W(), c.H()
	cx := W / 2

	c.rule(60, 4, W-60, 4, 2, p.AccentLine)
	c.rule(60, H-4, W-60, H-4, 2, p.AccentLine)

	c.text(cx, H*0.12, strings.ToUpper(Weekday(t)), 28, p.Accent, bold, center, middle)
	c.text(cx, H*0.24, LongDate(t), 17, p.TextMuted, center, middle)
	c.rule(W*0.2, H*0.31, W*0.8, H*0.31, 0.8, p.Rule)

	c.text(cx, H*0.54, t.Format("15:04"), 142, p.Text, bold, center, middle)
	c.rule(W*0.2, H*0.81, W*0.8, H*0.81, 0.8, p.Rule)

	band := H * 0.90
	tempColor := p.Text
	if snap.Available {
		tempColor = p.Temperature(snap.Temp)
	}
	c.text(W*0.22, band-14, "AUSSEN", 9, p.TextMuted, bold, center, middle)
	c.text(W*0.22, band+8, snap.Degrees(snap.Temp)+"°C", 38, tempColor, bold, center, middle)
	c.rule(W*0.38, band-22, W*0.38, band+22, 0.8, p.Rule)

	c.text(W*0.50, band-14, "GEFÜHLT", 9, p.TextMuted, bold, center, middle)
	c.text(W*0.50, band+8, snap.Degrees(snap.Feels)+"°C", 38, p.TextSecondary, bold, center, middle)
	c.rule(W*0.64, band-22, W*0.64, band+22, 0.8, p.Rule)

	c.text(W*0.80, band-14, "WETTER", 9, p.TextMuted, bold, center, middle)
	c.text(W*0.80, band+8, snap.Condition.Description, 16, p.TextSecondary, bold, center, middle, maxWidth(W*0.34))
	return c.Canvas
}

func weatherClient(s config.Settings) *weather.Client {
	return weather.NewClient(weather.WithBaseURL(s.WeatherURL), weather.WithTimeout(s.WeatherTimeout))
}
