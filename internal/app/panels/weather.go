package panels

import (
	"context"
	"image"
	"strconv"
	"strings"
	"time"

	"github.com/rook-computer/panelframe/internal/config"
	"github.com/rook-computer/panelframe/internal/render"
	"github.com/rook-computer/panelframe/internal/render/layout"
	"github.com/rook-computer/panelframe/internal/theme"
	"github.com/rook-computer/panelframe/internal/weather"
)

// ForecastColumns is the number of days in the forecast strip, today included.
const ForecastColumns = 5

// forecastDays is requested from the API; one more than shown so the strip
// stays full around midnight.
const forecastDays = 6

// Weather shows current conditions, sun times and a five-day forecast.
type Weather struct {
	Source weather.Source
	Log    Logger
	Now    func() time.Time
}

func (w *Weather) Name() string     { return "weather" }
func (w *Weather) FileName() string { return "weather.png" }

func (w *Weather) Render(ctx context.Context, s config.Settings) (*render.Canvas, error) {
	log := orNoop(w.Log)
	src := w.Source
	if src == nil {
		src = weatherClient(s)
	}
	snap, err := weather.Get(ctx, src, weather.Query{
		Latitude:  s.Latitude,
		Longitude: s.Longitude,
		Timezone:  s.Timezone,
		Days:      forecastDays,
	})
	if err != nil {
		log.Errorf("weather", "forecast unavailable, showing placeholder: %v", err)
	}
	return DrawWeather(s, Palette(s), snap, now(w.Now, s)), nil
}

// DrawWeather lays out the weather panel.
func DrawWeather(s config.Settings, p theme.Palette, snap weather.Snapshot, t time.Time) *render.Canvas {
	c := newPen(s, p)
	W, H := c.W(), c.H()

	c.text(28, 10, strings.ToUpper(s.City), 13, p.Accent, bold, maxWidth(W-220))
	c.text(28, 28, DayDate(t), 13, p.TextMuted)
	c.text(W-28, 8, t.Format("15:04"), 38, p.Text, bold, right)
	if p.Mono {
		c.rule(0, 44, W, 44, 0.8, p.Rule)
	}

	DrawIcon(c.Canvas, p, snap.Condition.Icon, 90, 140, 55)
	temp := snap.Degrees(snap.Temp)
	c.withUnit(180, 70, temp, 96, p.Text, "°C", 32, p.TextSecondary, -4, bold)
	c.text(180, 175, snap.Condition.Description, 17, p.TextSecondary, maxWidth(270))

	details := []struct{ label, value string }{
		{"Gefühlt", snap.Degrees(snap.Feels) + "°C"},
		{"Wind", snap.WindText()},
		{"Luftf.", snap.Percent(snap.Humidity)},
		{"Regen", snap.Percent(snap.RainChance)},
	}
	for i, cell := range layout.Grid(image.Pt(460, 60), 2, 2, 160, 52) {
		x, y := float64(cell.Min.X), float64(cell.Min.Y)
		c.rule(x, y+28, x+140, y+28, 0.8, p.Rule)
		c.text(x, y, details[i].label, 13, p.TextMuted)
		c.text(x+140, y, details[i].value, 18, p.Text, bold, right)
	}

	c.text(460, 175, "Auf: "+snap.SunriseText(), 16, p.Sunrise, bold)
	c.text(600, 175, "Unt: "+snap.SunsetText(), 16, p.Sunset, bold)
	c.text(460, 198, snap.DayLengthText(), 11, p.TextMuted)

	const divider = 232
	dividerWidth := 0.8
	dividerColor := p.Rule
	if p.Mono {
		dividerWidth, dividerColor = 1, p.RuleStrong
	}
	c.rule(32, divider, W-32, divider, dividerWidth, dividerColor)

	strip := image.Rect(32, divider, int(W)-32, int(H))
	for i, col := range layout.Columns(strip, ForecastColumns) {
		drawForecastDay(c, p, snap, t, i, col, H)
	}
	return c.Canvas
}

func drawForecastDay(c pen, p theme.Palette, snap weather.Snapshot, t time.Time, i int, col image.Rectangle, H float64) {
	const divider = 232
	xl := float64(col.Min.X)
	colW := float64(col.Dx())
	xc := xl + colW/2

	label := "HEUTE"
	labelColor := p.Accent
	if i > 0 {
		label = strings.ToUpper(WeekdayShort(t.AddDate(0, 0, i)))
		labelColor = p.TextMuted
	}
	if p.Mono {
		labelColor = p.Text
	}
	if i == 0 {
		box := render.Filled(p.Highlight)
		if p.Mono {
			box.Stroke, box.Width = p.HighlightEdge, 1.2
		}
		c.RoundRect(xl+4, divider+8, colW-8, H-divider-12, 6, box)
	} else {
		c.rule(xl+2, divider+8, xl+2, H-8, 0.6, p.Rule)
	}

	day := weather.Day{Condition: weather.Describe(-1)}
	hi, lo, rain := weather.Missing, weather.Missing, weather.Missing
	if i < len(snap.Days) && snap.Available {
		day = snap.Days[i]
		hi, lo, rain = strconv.Itoa(day.High), strconv.Itoa(day.Low), strconv.Itoa(day.RainChance)
	}

	c.text(xc, divider+14, label, 12, labelColor, bold, center)
	DrawIcon(c.Canvas, p, day.Condition.Icon, xc, divider+80, 22)
	c.text(xc-6, divider+122, hi+"°", 18, p.Text, bold, right)
	c.text(xc+6, divider+120, lo+"°", 14, p.TextFaint)

	rainColor := p.TextMuted
	if day.RainChance > 50 && !p.Mono {
		rainColor = p.AccentAlt
	}
	c.text(xc, divider+148, rain+"%", 12, rainColor, center)
}
