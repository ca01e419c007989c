package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"golang.org/x/time/rate"
)

const (
	apiPrefix           = "/api/4/"
	defaultTimeout      = 5 * time.Second
	maxResponseBodySize = 4 << 20
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// UnreachableError reports that the monitoring endpoint did not answer at all.
type UnreachableError struct {
	Endpoint string
	Err      error
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("monitoring endpoint %s unreachable: %v", e.Endpoint, e.Err)
}

func (e *UnreachableError) Unwrap() error { return e.Err }

// IsUnreachable reports whether err carries an *UnreachableError.
func IsUnreachable(err error) bool {
	var ue *UnreachableError
	return errors.As(err, &ue)
}

// HTTPError reports a non-2xx answer for one Glances resource.
type HTTPError struct {
	URL        string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return "monitor: GET " + e.URL + ": status " + strconv.Itoa(e.StatusCode)
}

// Limiter paces outgoing requests. *rate.Limiter satisfies it.
type Limiter interface {
	Wait(ctx context.Context) error
}

// Glances reads metrics from the Glances REST API v4. Each resource is a
// separate request bounded by the timeout.
type Glances struct {
	baseURL string
	http    *http.Client
	limiter Limiter
	timeout time.Duration
}

type GlancesOption func(*Glances)

func WithHTTPClient(hc *http.Client) GlancesOption {
	return func(g *Glances) { g.http = hc }
}

func WithLimiter(l Limiter) GlancesOption {
	return func(g *Glances) { g.limiter = l }
}

func WithTimeout(d time.Duration) GlancesOption {
	return func(g *Glances) { g.timeout = d }
}

func NewGlances(baseURL string, opts ...GlancesOption) *Glances {
	g := &Glances{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{},
		limiter: rate.NewLimiter(rate.Every(50*time.Millisecond), 6),
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	if g.http == nil {
		g.http = &http.Client{}
	}
	return g
}

// Endpoint returns the configured base URL.
func (g *Glances) Endpoint() string { return g.baseURL }

type cpuResource struct {
	Total float64 `json:"total"`
}

type memResource struct {
	Percent float64 `json:"percent"`
	Used    uint64  `json:"used"`
	Total   uint64  `json:"total"`
}

type fsResource struct {
	MountPoint string  `json:"mnt_point"`
	Percent    float64 `json:"percent"`
	Used       uint64  `json:"used"`
	Size       uint64  `json:"size"`
}

// Glances 3 reported tx/rx per refresh; 4 adds explicit per-second rates.
type netResource struct {
	Interface string   `json:"interface_name"`
	Tx        *float64 `json:"tx"`
	Rx        *float64 `json:"rx"`
	SentRate  *float64 `json:"bytes_sent_rate_per_sec"`
	RecvRate  *float64 `json:"bytes_recv_rate_per_sec"`
}

type sensorResource struct {
	Label string   `json:"label"`
	Type  string   `json:"type"`
	Value *float64 `json:"value"`
}

// Collect fetches cpu and mem, which are required, then fs, network, sensors
// and uptime, which degrade to empty values when they fail.
func (g *Glances) Collect(ctx context.Context) (Metrics, error) {
	var m Metrics

	var cpu cpuResource
	if err := g.get(ctx, "cpu", &cpu); err != nil {
		return Metrics{}, err
	}
	var mem memResource
	if err := g.get(ctx, "mem", &mem); err != nil {
		return Metrics{}, err
	}
	m.CPUPercent = cpu.Total
	m.MemPercent = mem.Percent
	m.MemUsed = mem.Used
	m.MemTotal = mem.Total

	var fs []fsResource
	if err := g.get(ctx, "fs", &fs); err != nil {
		m.Missing = append(m.Missing, "fs")
	}
	for _, d := range fs {
		m.Disks = append(m.Disks, Disk{Mount: d.MountPoint, Percent: d.Percent, Used: d.Used, Total: d.Size})
	}

	var nets []netResource
	if err := g.get(ctx, "network", &nets); err != nil {
		m.Missing = append(m.Missing, "network")
	}
	for _, n := range nets {
		if n.Interface == "lo" {
			continue
		}
		m.UpBps += first(n.SentRate, n.Tx)
		m.DownBps += first(n.RecvRate, n.Rx)
	}

	var sensors []sensorResource
	if err := g.get(ctx, "sensors", &sensors); err != nil {
		m.Missing = append(m.Missing, "sensors")
	}
	readings := make([]Sensor, 0, len(sensors))
	for _, s := range sensors {
		if s.Value == nil {
			continue
		}
		readings = append(readings, Sensor{Label: s.Label, Type: s.Type, Value: *s.Value})
	}
	m.CPUTemp = PickCPUTemp(readings)

	var uptime string
	if err := g.get(ctx, "uptime", &uptime); err != nil {
		m.Missing = append(m.Missing, "uptime")
	}
	m.Uptime = FormatUptime(uptime)
	return m, nil
}

func first(values ...*float64) float64 {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return 0
}

func (g *Glances) get(ctx context.Context, resource string, out any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("monitor: %s: %w", resource, err)
		}
	}
	url := g.baseURL + apiPrefix + resource
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("monitor: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := g.http.Do(req)
	if err != nil {
		return &UnreachableError{Endpoint: g.baseURL, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return fmt.Errorf("monitor: read %s: %w", resource, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &HTTPError{URL: url, StatusCode: resp.StatusCode}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("monitor: decode %s: %w", resource, err)
	}
	return nil
}
