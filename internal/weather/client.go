package weather

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL      = "https://api.open-meteo.com/v1/forecast"
	defaultTimeout      = 10 * time.Second
	maxResponseBodySize = 1 << 20
	openMeteoTimeLayout = "2006-01-02T15:04"
	openMeteoDateLayout = "2006-01-02"
)

var (
	json = jsoniter.ConfigCompatibleWithStandardLibrary

	currentFields = []string{
		"temperature_2m", "apparent_temperature", "relative_humidity_2m",
		"windspeed_10m", "weathercode", "precipitation_probability",
	}
	currentOnlyFields = []string{"temperature_2m", "apparent_temperature", "weathercode"}
	dailyFields       = []string{
		"temperature_2m_max", "temperature_2m_min", "weathercode",
		"sunrise", "sunset", "precipitation_probability_max",
	}
)

// HTTPError reports a non-2xx answer from the weather API.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	msg := "weather: API status " + strconv.Itoa(e.StatusCode)
	if b := strings.TrimSpace(e.Body); b != "" {
		msg += ": " + b
	}
	return msg
}

// Limiter paces outgoing requests. *rate.Limiter satisfies it.
type Limiter interface {
	Wait(ctx context.Context) error
}

// Client queries Open-Meteo. Every Fetch makes exactly one request bounded by
// the client timeout.
type Client struct {
	baseURL string
	http    *http.Client
	limiter Limiter
	timeout time.Duration
}

type ClientOption func(*Client)

func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) { c.baseURL = baseURL }
}

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

func WithLimiter(l Limiter) ClientOption {
	return func(c *Client) { c.limiter = l }
}

func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.timeout = d }
}

func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		http:    &http.Client{},
		limiter: rate.NewLimiter(rate.Every(time.Second), 2),
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	c.baseURL = strings.TrimSpace(c.baseURL)
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	return c
}

// RequestURL builds the query URL for q.
func (c *Client) RequestURL(q Query) string {
	v := url.Values{}
	v.Set("latitude", strconv.FormatFloat(q.Latitude, 'f', -1, 64))
	v.Set("longitude", strconv.FormatFloat(q.Longitude, 'f', -1, 64))
	if q.Days > 0 {
		v.Set("current", strings.Join(currentFields, ","))
		v.Set("daily", strings.Join(dailyFields, ","))
		v.Set("forecast_days", strconv.Itoa(q.Days))
	} else {
		v.Set("current", strings.Join(currentOnlyFields, ","))
	}
	if q.Timezone != "" {
		v.Set("timezone", q.Timezone)
	}
	sep := "?"
	if strings.Contains(c.baseURL, "?") {
		sep = "&"
	}
	return c.baseURL + sep + v.Encode()
}

func (c *Client) Fetch(ctx context.Context, q Query) (Snapshot, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return Snapshot{}, fmt.Errorf("weather: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.RequestURL(q), nil)
	if err != nil {
		return Snapshot{}, fmt.Errorf("weather: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return Snapshot{}, fmt.Errorf("weather: execute request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return Snapshot{}, fmt.Errorf("weather: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Snapshot{}, &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	loc := time.UTC
	if q.Timezone != "" {
		if l, lerr := time.LoadLocation(q.Timezone); lerr == nil {
			loc = l
		}
	}
	return Decode(raw, loc)
}

type forecastResponse struct {
	Current struct {
		Temperature         *float64 `json:"temperature_2m"`
		ApparentTemperature *float64 `json:"apparent_temperature"`
		Humidity            *float64 `json:"relative_humidity_2m"`
		WindSpeed           *float64 `json:"windspeed_10m"`
		WeatherCode         *int     `json:"weathercode"`
		RainChance          *float64 `json:"precipitation_probability"`
	} `json:"current"`
	Daily struct {
		Time        []string   `json:"time"`
		High        []*float64 `json:"temperature_2m_max"`
		Low         []*float64 `json:"temperature_2m_min"`
		WeatherCode []*int     `json:"weathercode"`
		Sunrise     []string   `json:"sunrise"`
		Sunset      []string   `json:"sunset"`
		RainChance  []*float64 `json:"precipitation_probability_max"`
	} `json:"daily"`
}

// Decode turns an Open-Meteo forecast payload into a Snapshot. Timestamps in
// the payload are local to loc. The current temperature and weather code are
// required; everything else defaults to zero when absent.
func Decode(raw []byte, loc *time.Location) (Snapshot, error) {
	var r forecastResponse
	if err := json.Unmarshal(raw, &r); err != nil {
		return Snapshot{}, fmt.Errorf("weather: decode response: %w", err)
	}
	cur := r.Current
	if cur.Temperature == nil || cur.WeatherCode == nil {
		return Snapshot{}, fmt.Errorf("weather: response lacks current conditions")
	}

	s := Snapshot{
		Available:  true,
		Temp:       round(cur.Temperature),
		Feels:      round(cur.ApparentTemperature),
		Humidity:   round(cur.Humidity),
		Wind:       value(cur.WindSpeed),
		RainChance: round(cur.RainChance),
		Condition:  Describe(*cur.WeatherCode),
	}
	if s.Feels == 0 && cur.ApparentTemperature == nil {
		s.Feels = s.Temp
	}

	d := r.Daily
	if len(d.Sunrise) > 0 && len(d.Sunset) > 0 {
		rise, rerr := time.ParseInLocation(openMeteoTimeLayout, d.Sunrise[0], loc)
		set, serr := time.ParseInLocation(openMeteoTimeLayout, d.Sunset[0], loc)
		if rerr == nil && serr == nil {
			s.Sunrise, s.Sunset = rise, set
			s.DayLength = set.Sub(rise)
			if s.DayLength < 0 {
				s.DayLength = 0
			}
		}
	}
	for i, day := range d.Time {
		date, err := time.ParseInLocation(openMeteoDateLayout, day, loc)
		if err != nil {
			return Snapshot{}, fmt.Errorf("weather: daily time %q: %w", day, err)
		}
		entry := Day{
			Date:       date,
			High:       round(at(d.High, i)),
			Low:        round(at(d.Low, i)),
			RainChance: round(at(d.RainChance, i)),
			Condition:  Describe(-1),
		}
		if i < len(d.WeatherCode) && d.WeatherCode[i] != nil {
			entry.Condition = Describe(*d.WeatherCode[i])
		}
		s.Days = append(s.Days, entry)
	}
	return s, nil
}

func at(values []*float64, i int) *float64 {
	if i < len(values) {
		return values[i]
	}
	return nil
}

func value(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// round rounds half to even; nil counts as zero.
func round(v *float64) int {
	return int(math.RoundToEven(value(v)))
}
