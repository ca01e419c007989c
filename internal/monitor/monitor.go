// Package monitor collects host metrics for the server panel, either from a
// Glances API or from the local machine.
package monitor

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

const gib = 1 << 30

// Collector returns one sample of host metrics.
type Collector interface {
	Collect(ctx context.Context) (Metrics, error)
}

// CollectorFunc adapts a function to Collector.
type CollectorFunc func(ctx context.Context) (Metrics, error)

func (f CollectorFunc) Collect(ctx context.Context) (Metrics, error) { return f(ctx) }

type Disk struct {
	Mount   string
	Percent float64
	Used    uint64
	Total   uint64
}

// Sensor is one temperature reading.
type Sensor struct {
	Label string
	Type  string
	Value float64
}

// Metrics is a snapshot of the monitored host. CPUTemp is nil when no
// suitable sensor exists. Missing names the optional categories that could
// not be read.
type Metrics struct {
	CPUPercent float64
	MemPercent float64
	MemUsed    uint64
	MemTotal   uint64
	CPUTemp    *float64
	Disks      []Disk
	UpBps      float64
	DownBps    float64
	Uptime     string
	Missing    []string
}

// PickCPUTemp prefers a sensor labelled "package" and falls back to the
// first per-core temperature.
func PickCPUTemp(sensors []Sensor) *float64 {
	for _, s := range sensors {
		if strings.Contains(strings.ToLower(s.Label), "package") {
			v := s.Value
			return &v
		}
	}
	for _, s := range sensors {
		if s.Type == "temperature_core" {
			v := s.Value
			return &v
		}
	}
	return nil
}

// FormatRate renders a byte rate with SI units, e.g. "1.2 MB/s".
func FormatRate(bps float64) string {
	if bps < 0 {
		bps = 0
	}
	return humanize.Bytes(uint64(bps)) + "/s"
}

// FormatGB renders bytes as GiB with one decimal, e.g. "7.6".
func FormatGB(b uint64) string {
	return strconv.FormatFloat(float64(b)/gib, 'f', 1, 64)
}

// FormatCapacity renders a disk size as "512G" below a thousand GiB and "1.8T" above.
func FormatCapacity(b uint64) string {
	g := float64(b) / gib
	if g < 1000 {
		return fmt.Sprintf("%.0fG", g)
	}
	return fmt.Sprintf("%.1fT", g/1000)
}

// FormatUptime shortens a Glances uptime string: "3 days, 4:05:06" becomes
// "3 days 4h" and "4:05:06" becomes "4h 05m". Anything else is returned trimmed.
func FormatUptime(raw string) string {
	s := strings.Trim(strings.TrimSpace(raw), `"`)
	if strings.Contains(s, "day") {
		days, rest, _ := strings.Cut(s, ",")
		hours, _, _ := strings.Cut(strings.TrimSpace(rest), ":")
		if hours == "" {
			hours = "0"
		}
		return strings.TrimSpace(days) + " " + hours + "h"
	}
	parts := strings.Split(s, ":")
	if len(parts) >= 2 {
		return parts[0] + "h " + parts[1] + "m"
	}
	return s
}

// FormatUptimeDuration renders a local uptime in the same shape as FormatUptime.
func FormatUptimeDuration(d time.Duration) string {
	days := int(d / (24 * time.Hour))
	d -= time.Duration(days) * 24 * time.Hour
	hours := int(d / time.Hour)
	mins := int((d % time.Hour) / time.Minute)
	switch {
	case days == 1:
		return fmt.Sprintf("1 day %dh", hours)
	case days > 1:
		return fmt.Sprintf("%d days %dh", days, hours)
	}
	return fmt.Sprintf("%dh %02dm", hours, mins)
}
