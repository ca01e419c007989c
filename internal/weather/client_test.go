package weather

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const forecastFixture = `{
  "latitude": 52.52, "longitude": 13.419998,
  "current": {"time": "2026-10-19T14:00", "temperature_2m": 12.5, "apparent_temperature": 10.4,
              "relative_humidity_2m": 71, "windspeed_10m": 14.6, "weathercode": 61,
              "precipitation_probability": null},
  "daily": {
    "time": ["2026-10-19","2026-10-20","2026-10-21","2026-10-22","2026-10-23","2026-10-24"],
    "temperature_2m_max": [13.6, 11.2, 9.5, 10.1, 12.0, 12.4],
    "temperature_2m_min": [7.4, 6.1, 3.9, 4.2, 5.0, 6.6],
    "weathercode": [61, 3, 0, 2, 95, 42],
    "sunrise": ["2026-10-19T07:36","2026-10-20T07:38","2026-10-21T07:40","2026-10-22T07:42","2026-10-23T07:43","2026-10-24T07:45"],
    "sunset": ["2026-10-19T18:12","2026-10-20T18:10","2026-10-21T18:08","2026-10-22T18:06","2026-10-23T18:04","2026-10-24T18:02"],
    "precipitation_probability_max": [80, 35, null, 5, 60, 20]
  }
}`

func noWait() Limiter { return nil }

func TestFetchForecast(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("latitude") != "52.52" || q.Get("longitude") != "13.41" {
			t.Fatalf("coords=%s,%s", q.Get("latitude"), q.Get("longitude"))
		}
		if q.Get("timezone") != "Europe/Berlin" || q.Get("forecast_days") != "6" {
			t.Fatalf("query=%s", r.URL.RawQuery)
		}
		if !strings.Contains(q.Get("daily"), "sunrise") || !strings.Contains(q.Get("current"), "relative_humidity_2m") {
			t.Fatalf("fields=%s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, forecastFixture)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithLimiter(noWait()))
	s, err := c.Fetch(context.Background(), Query{Latitude: 52.52, Longitude: 13.41, Timezone: "Europe/Berlin", Days: 6})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !s.Available || s.Temp != 12 || s.Feels != 10 || s.Humidity != 71 {
		t.Fatalf("current=%+v", s)
	}
	if s.WindText() != "15 km/h" || s.Percent(s.RainChance) != "0%" {
		t.Fatalf("wind=%q rain=%q", s.WindText(), s.Percent(s.RainChance))
	}
	if s.Condition.Description != "Leichter Regen" || s.Condition.Icon != IconRain {
		t.Fatalf("condition=%+v", s.Condition)
	}
	if s.SunriseText() != "07:36" || s.SunsetText() != "18:12" || s.DayLengthText() != "10h 36m" {
		t.Fatalf("sun=%s %s %s", s.SunriseText(), s.SunsetText(), s.DayLengthText())
	}
	if len(s.Days) != 6 {
		t.Fatalf("days=%d", len(s.Days))
	}
	if d := s.Days[2]; d.High != 10 || d.Low != 4 || d.RainChance != 0 || d.Condition.Icon != IconSun {
		t.Fatalf("day2=%+v", d)
	}
	if d := s.Days[5]; d.Condition.Known || d.Condition.Description != UnknownDescription {
		t.Fatalf("day5=%+v", d)
	}
	if s.Days[1].Date.Weekday() != time.Tuesday {
		t.Fatalf("date=%v", s.Days[1].Date)
	}
}

func TestFetchCurrentOnly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("daily") != "" || q.Get("current") != "temperature_2m,apparent_temperature,weathercode" {
			t.Fatalf("query=%s", r.URL.RawQuery)
		}
		_, _ = io.WriteString(w, `{"current":{"temperature_2m":-0.4,"apparent_temperature":-4.6,"weathercode":73}}`)
	}))
	defer srv.Close()

	s, err := NewClient(WithBaseURL(srv.URL), WithLimiter(noWait())).Fetch(context.Background(), Query{})
	if err != nil {
		t.Fatal(err)
	}
	if s.Temp != 0 || s.Feels != -5 || s.Condition.Description != "Schnee" || len(s.Days) != 0 {
		t.Fatalf("snapshot=%+v", s)
	}
}

func TestFetchHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":true,"reason":"Latitude must be in range"}`)
	}))
	defer srv.Close()

	_, err := NewClient(WithBaseURL(srv.URL), WithLimiter(noWait())).Fetch(context.Background(), Query{Days: 6})
	var he *HTTPError
	if !errors.As(err, &he) || he.StatusCode != http.StatusBadRequest {
		t.Fatalf("want HTTPError, got %v", err)
	}
}

func TestFetchMalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"current":{}}`)
	}))
	defer srv.Close()

	if _, err := NewClient(WithBaseURL(srv.URL), WithLimiter(noWait())).Fetch(context.Background(), Query{}); err == nil {
		t.Fatal("expected error for missing current conditions")
	}
}

func TestTimeoutYieldsPlaceholder(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(WithBaseURL(srv.URL), WithLimiter(noWait()), WithTimeout(50*time.Millisecond))
	start := time.Now()
	s, err := Get(context.Background(), c, Query{Days: 6})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if time.Since(start) > 2*time.Second {
		t.Fatalf("timeout not honoured: %v", time.Since(start))
	}
	if s.Available || s.Condition.Description != NoData || s.Degrees(s.Temp) != Missing {
		t.Fatalf("placeholder=%+v", s)
	}
	if s.SunriseText() != "--:--" || s.DayLengthText() != Missing {
		t.Fatalf("sun=%s %s", s.SunriseText(), s.DayLengthText())
	}
}

func TestDescribeFallback(t *testing.T) {
	for _, code := range []int{-1, 4, 44, 96, 1000} {
		c := Describe(code)
		if c.Known || c.Description != UnknownDescription || c.Icon != IconCloud {
			t.Fatalf("Describe(%d)=%+v", code, c)
		}
	}
	if c := Describe(45); c.Description != "Nebel" || c.Icon != IconOvercast {
		t.Fatalf("Describe(45)=%+v", c)
	}
	if c := Describe(99); c.Icon != IconStorm {
		t.Fatalf("Describe(99)=%+v", c)
	}
}

func TestFormatDayLength(t *testing.T) {
	cases := map[time.Duration]string{
		11*time.Hour + 4*time.Minute:  "11h 4m",
		59 * time.Second:              "0h 0m",
		-time.Hour:                    "0h 0m",
		16*time.Hour + 50*time.Minute: "16h 50m",
	}
	for in, want := range cases {
		if got := FormatDayLength(in); got != want {
			t.Errorf("FormatDayLength(%v)=%q want %q", in, got, want)
		}
	}
}
