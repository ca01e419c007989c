// Package weather fetches current conditions and a daily forecast from the
// Open-Meteo API and reduces them to what the panels display.
package weather

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// NoData replaces the description when nothing could be fetched.
const NoData = "Keine Daten"

// Missing is shown in place of any value that is unavailable.
const Missing = "--"

// Query selects a location. Days is the number of forecast days including
// today; zero requests current conditions only.
type Query struct {
	Latitude  float64
	Longitude float64
	Timezone  string
	Days      int
}

// Source provides weather snapshots. *Client is the production source.
type Source interface {
	Fetch(ctx context.Context, q Query) (Snapshot, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, q Query) (Snapshot, error)

func (f SourceFunc) Fetch(ctx context.Context, q Query) (Snapshot, error) { return f(ctx, q) }

// Day is one column of the forecast strip.
type Day struct {
	Date       time.Time
	Condition  Condition
	High       int
	Low        int
	RainChance int
}

// Snapshot is one fetch worth of weather. Available is false for the
// placeholder produced when the fetch failed.
type Snapshot struct {
	Available bool

	Temp       int
	Feels      int
	Humidity   int
	Wind       float64
	RainChance int
	Condition  Condition

	Sunrise   time.Time
	Sunset    time.Time
	DayLength time.Duration

	Days []Day
}

// Placeholder is the snapshot rendered when a fetch fails.
func Placeholder() Snapshot {
	return Snapshot{
		Condition: Condition{Description: NoData, Icon: IconCloud},
	}
}

// Get fetches from src and substitutes the placeholder on any failure. The
// error is returned alongside so the caller can log it.
func Get(ctx context.Context, src Source, q Query) (Snapshot, error) {
	if src == nil {
		return Placeholder(), fmt.Errorf("weather: no source configured")
	}
	s, err := src.Fetch(ctx, q)
	if err != nil {
		return Placeholder(), err
	}
	return s, nil
}

// Degrees formats a whole-degree value, or Missing for the placeholder.
func (s Snapshot) Degrees(v int) string {
	if !s.Available {
		return Missing
	}
	return strconv.Itoa(v)
}

// Percent formats a percentage, or Missing for the placeholder.
func (s Snapshot) Percent(v int) string {
	if !s.Available {
		return Missing + "%"
	}
	return strconv.Itoa(v) + "%"
}

// WindText formats wind speed in km/h without decimals.
func (s Snapshot) WindText() string {
	if !s.Available {
		return Missing + " km/h"
	}
	return fmt.Sprintf("%.0f km/h", s.Wind)
}

// SunriseText returns HH:MM, or Missing when unknown.
func (s Snapshot) SunriseText() string { return clockText(s.Sunrise) }

// SunsetText returns HH:MM, or Missing when unknown.
func (s Snapshot) SunsetText() string { return clockText(s.Sunset) }

// DayLengthText formats the time between sunrise and sunset as "11h 4m".
func (s Snapshot) DayLengthText() string {
	if s.Sunrise.IsZero() || s.Sunset.IsZero() {
		return Missing
	}
	return FormatDayLength(s.DayLength)
}

func clockText(t time.Time) string {
	if t.IsZero() {
		return Missing + ":" + Missing
	}
	return t.Format("15:04")
}

// FormatDayLength renders whole minutes as "Xh Ym". Negative values clamp to zero.
func FormatDayLength(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	mins := int(d / time.Minute)
	return fmt.Sprintf("%dh %dm", mins/60, mins%60)
}
