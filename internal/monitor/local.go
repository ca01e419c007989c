package monitor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/net"
	"github.com/shirou/gopsutil/v4/sensors"
)

const defaultSampleWindow = 500 * time.Millisecond

// Local samples the machine the program runs on. CPU load and network
// throughput are measured over Window.
type Local struct {
	Window time.Duration
}

func NewLocal() *Local { return &Local{Window: defaultSampleWindow} }

func (l *Local) Collect(ctx context.Context) (Metrics, error) {
	window := l.Window
	if window <= 0 {
		window = defaultSampleWindow
	}
	var m Metrics

	before, netErr := net.IOCountersWithContext(ctx, true)
	started := time.Now()

	pct, err := cpu.PercentWithContext(ctx, window, false)
	if err != nil || len(pct) == 0 {
		return Metrics{}, fmt.Errorf("monitor: local cpu: %w", errOrEmpty(err))
	}
	m.CPUPercent = pct[0]

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return Metrics{}, fmt.Errorf("monitor: local mem: %w", err)
	}
	m.MemPercent = vm.UsedPercent
	m.MemUsed = vm.Used
	m.MemTotal = vm.Total

	if netErr == nil {
		after, err := net.IOCountersWithContext(ctx, true)
		if err == nil {
			m.UpBps, m.DownBps = rates(before, after, time.Since(started))
		} else {
			netErr = err
		}
	}
	if netErr != nil {
		m.Missing = append(m.Missing, "network")
	}

	if disks, err := localDisks(ctx); err != nil {
		m.Missing = append(m.Missing, "fs")
	} else {
		m.Disks = disks
	}

	temps, err := sensors.TemperaturesWithContext(ctx)
	if err != nil && len(temps) == 0 {
		m.Missing = append(m.Missing, "sensors")
	}
	readings := make([]Sensor, 0, len(temps))
	for _, t := range temps {
		kind := ""
		if key := strings.ToLower(t.SensorKey); strings.Contains(key, "core") || strings.Contains(key, "k10temp") || strings.Contains(key, "cpu") {
			kind = "temperature_core"
		}
		readings = append(readings, Sensor{Label: t.SensorKey, Type: kind, Value: t.Temperature})
	}
	m.CPUTemp = PickCPUTemp(readings)

	if secs, err := host.UptimeWithContext(ctx); err != nil {
		m.Missing = append(m.Missing, "uptime")
	} else {
		m.Uptime = FormatUptimeDuration(time.Duration(secs) * time.Second)
	}
	return m, nil
}

func localDisks(ctx context.Context) ([]Disk, error) {
	parts, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var out []Disk
	for _, p := range parts {
		if seen[p.Device] {
			continue
		}
		usage, err := disk.UsageWithContext(ctx, p.Mountpoint)
		if err != nil || usage.Total == 0 {
			continue
		}
		seen[p.Device] = true
		out = append(out, Disk{Mount: p.Mountpoint, Percent: usage.UsedPercent, Used: usage.Used, Total: usage.Total})
	}
	return out, nil
}

// rates returns upload and download bytes per second between two counter
// samples, ignoring the loopback interface.
func rates(before, after []net.IOCountersStat, elapsed time.Duration) (up, down float64) {
	if elapsed <= 0 {
		return 0, 0
	}
	prev := make(map[string]net.IOCountersStat, len(before))
	for _, c := range before {
		prev[c.Name] = c
	}
	var sent, recv uint64
	for _, c := range after {
		if c.Name == "lo" {
			continue
		}
		p, ok := prev[c.Name]
		if !ok || c.BytesSent < p.BytesSent || c.BytesRecv < p.BytesRecv {
			continue
		}
		sent += c.BytesSent - p.BytesSent
		recv += c.BytesRecv - p.BytesRecv
	}
	secs := elapsed.Seconds()
	return float64(sent) / secs, float64(recv) / secs
}

func errOrEmpty(err error) error {
	if err != nil {
		return err
	}
	return fmt.Errorf("no samples")
}
