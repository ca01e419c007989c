package panels

import (
	"context"
	"fmt"
	"image"
	"strconv"
	"strings"
	"time"

	"github.com/rook-computer/panelframe/internal/config"
	"github.com/rook-computer/panelframe/internal/monitor"
	"github.com/rook-computer/panelframe/internal/render"
	"github.com/rook-computer/panelframe/internal/render/layout"
	"github.com/rook-computer/panelframe/internal/system"
	"github.com/rook-computer/panelframe/internal/theme"
)

// Column geometry of the server panel body.
const (
	serverHeader  = 44
	serverBodyTop = 50
	systemX       = 16
	systemW       = 228
	dockerX       = 278
	dockerW       = 240
	systemdX      = 550
	systemdW      = 222
	maxDisks      = 3
	qrSize        = 84
)

// Server shows host metrics, container and service health and network latency.
type Server struct {
	// Collector defaults to Glances at MONITOR_URL, or gopsutil when it is "local".
	Collector monitor.Collector
	// Remote runs the docker and systemctl checks. Built from the ssh
	// settings when nil.
	Remote system.Runner
	// Local runs ping and, without a key file, the ssh binary.
	Local system.Runner
	Log   Logger
	Now   func() time.Time
}

// ServerSnapshot is everything one server panel shows.
type ServerSnapshot struct {
	Metrics monitor.Metrics
	Docker  map[string]system.Status
	Systemd map[string]system.Status
	// PingMs is nil when the host did not answer.
	PingMs *float64
}

func (sv *Server) Name() string     { return "server" }
func (sv *Server) FileName() string { return "server.png" }

func (sv *Server) Render(ctx context.Context, s config.Settings) (*render.Canvas, error) {
	snap, err := sv.Gather(ctx, s)
	if err != nil {
		return nil, err
	}
	return DrawServer(s, Palette(s), snap, now(sv.Now, s)), nil
}

// Gather collects metrics, check results and latency. Only a metrics failure
// is fatal; checks and ping degrade to unknown and offline.
func (sv *Server) Gather(ctx context.Context, s config.Settings) (ServerSnapshot, error) {
	log := orNoop(sv.Log)
	collector := sv.Collector
	if collector == nil {
		collector = metricsCollector(s)
	}
	m, err := collector.Collect(ctx)
	if err != nil {
		return ServerSnapshot{}, fmt.Errorf("server panel: %w", err)
	}
	if len(m.Missing) > 0 {
		log.Errorf("server", "metrics incomplete, missing %s", strings.Join(m.Missing, ","))
	}

	local := sv.Local
	if local == nil {
		local = system.ShellRunner{}
	}
	snap := ServerSnapshot{
		Metrics: m,
		Docker:  system.AllUnknown(s.DockerAllow),
		Systemd: system.AllUnknown(s.SystemdAllow),
	}

	remote := sv.Remote
	if remote == nil {
		remote, err = system.NewRemote(s.SSH, local)
		switch {
		case err == system.ErrNoRemote:
			log.Infof("server", "SSH_HOST not set, container and service checks skipped")
		case err != nil:
			log.Errorf("server", "remote checks unavailable: %v", err)
		}
		if err != nil {
			remote = nil
		}
	}
	if remote != nil {
		if snap.Docker, err = system.CheckDocker(ctx, remote, s.DockerAllow); err != nil {
			log.Errorf("server", "%v", err)
		}
		if snap.Systemd, err = system.CheckSystemd(ctx, remote, s.SystemdAllow); err != nil {
			log.Errorf("server", "%v", err)
		}
	}

	if s.PingHost != "" {
		ms, err := system.Ping(ctx, local, s.PingHost, s.PingTimeout)
		if err != nil {
			log.Errorf("server", "%v", err)
		} else {
			snap.PingMs = &ms
		}
	}
	return snap, nil
}

func metricsCollector(s config.Settings) monitor.Collector {
	if s.MonitorURL == config.LocalMonitor {
		return monitor.NewLocal()
	}
	return monitor.NewGlances(s.MonitorURL, monitor.WithTimeout(s.MonitorTimeout))
}

// PingText is "42 ms" for a reply and "Offline" otherwise.
func PingText(ms *float64) string {
	if ms == nil {
		return "Offline"
	}
	return strconv.FormatFloat(*ms, 'f', -1, 64) + " ms"
}

// DrawServer lays out the server panel.
func DrawServer(s config.Settings, p theme.Palette, snap ServerSnapshot, t time.Time) *render.Canvas {
	c := newPen(s, p)
	W, H := c.W(), c.H()
	m := snap.Metrics

	c.rule(0, serverHeader, W, serverHeader, 0.8, p.Rule)
	statuses := orderedStatuses(snap.Docker, s.DockerAllow)
	statuses = append(statuses, orderedStatuses(snap.Systemd, s.SystemdAllow)...)
	drawAggregate(c, p, statuses, 18, 19)

	name := "SERVER  ·  " + strings.ToUpper(s.ServerName)
	c.text(34, 6, name, 13, p.Accent, bold, maxWidth(W/2-120))
	uptime := m.Uptime
	if uptime == "" {
		uptime = "--"
	}
	c.text(34, 24, "Uptime: "+uptime, 11, p.TextMuted)
	c.text(W-12, 4, t.Format("15:04"), 38, p.Text, bold, right)
	c.text(W/2, 6, s.PingHost, 10, p.TextMuted, center)
	c.text(W/2, 22, PingText(snap.PingMs), 16, p.Latency(snap.PingMs), bold, center)

	c.rule(262, serverHeader, 262, H-8, 0.8, p.Rule)
	c.rule(534, serverHeader, 534, H-8, 0.8, p.Rule)

	drawSystemColumn(c, p, m)

	c.text(dockerX, serverBodyTop, "DOCKER", 8, p.TextMuted, bold)
	drawPills(c, p, s.DockerAllow, snap.Docker, dockerX, dockerW, H-8)
	// The QR code sits at the bottom of the SYSTEMD column.
	systemdBottom := H - 8
	if s.QRURL != "" {
		systemdBottom -= qrSize + 8
	}
	c.text(systemdX, serverBodyTop, "SYSTEMD", 8, p.TextMuted, bold)
	drawPills(c, p, s.SystemdAllow, snap.Systemd, systemdX, systemdW, systemdBottom)

	drawQR(c, p, s.QRURL, image.Rect(systemdX, serverBodyTop, systemdX+systemdW, int(H)-8))
	return c.Canvas
}

func drawSystemColumn(c pen, p theme.Palette, m monitor.Metrics) {
	const valueX = systemX + systemW + 4
	x := float64(systemX)
	c.text(x, serverBodyTop, "SYSTEM", 8, p.TextMuted, bold)

	yd := 72.0
	c.text(x, yd, "CPU", 12, p.TextSecondary)
	c.text(valueX, yd-2, percentText(m.CPUPercent, 0), 20, p.Severity(m.CPUPercent), bold, right)
	yd += 22
	drawBar(c, p, x, yd-7, systemW, 7, m.CPUPercent)

	yd += 18
	c.text(x, yd, "RAM", 12, p.TextSecondary)
	c.text(valueX, yd-2, percentText(m.MemPercent, 0), 20, p.Severity(m.MemPercent), bold, right)
	yd += 22
	drawBar(c, p, x, yd-7, systemW, 7, m.MemPercent)
	yd += 14
	c.text(x, yd, monitor.FormatGB(m.MemUsed)+" GB / "+monitor.FormatGB(m.MemTotal)+" GB", 9, p.TextMuted)
	yd += 22

	if m.CPUTemp != nil {
		c.text(x, yd, "CPU Temp", 12, p.TextSecondary)
		c.text(valueX, yd+20, strconv.FormatFloat(*m.CPUTemp, 'f', 0, 64)+"°C", 26, p.TempSeverity(*m.CPUTemp), bold, right, middle)
		yd += 52
	}

	c.rule(x, yd-4, x+systemW, yd-4, 0.6, p.Rule)
	yd += 6
	c.text(x, yd, "Auf: "+monitor.FormatRate(m.UpBps), 11, p.Upload, bold)
	yd += 18
	c.text(x, yd, "Ab:  "+monitor.FormatRate(m.DownBps), 11, p.Download, bold)
	yd += 22

	if len(m.Disks) == 0 {
		return
	}
	c.rule(x, yd-4, x+systemW, yd-4, 0.6, p.Rule)
	yd += 6
	for i, d := range m.Disks {
		if i == maxDisks {
			break
		}
		c.text(x, yd, diskLabel(d.Mount), 10, p.TextSecondary, mono)
		c.text(valueX, yd-2, percentText(d.Percent, 1), 11, p.Severity(d.Percent), bold, right)
		yd += 18
		drawBar(c, p, x, yd-6, systemW, 6, d.Percent)
		yd += 12
		c.text(x, yd-6, monitor.FormatCapacity(d.Used)+" / "+monitor.FormatCapacity(d.Total), 9, p.TextMuted)
		yd += 20
	}
}

// diskLabel keeps the last twelve characters of a mount point.
func diskLabel(mount string) string {
	r := []rune(mount)
	if len(r) > 12 {
		r = r[len(r)-12:]
	}
	return string(r)
}

// percentText rounds to the given decimals and drops a trailing ".0".
func percentText(v float64, decimals int) string {
	s := strconv.FormatFloat(v, 'f', decimals, 64)
	s = strings.TrimSuffix(s, ".0")
	return s + "%"
}

func orderedStatuses(results map[string]system.Status, names []string) []system.Status {
	out := make([]system.Status, 0, len(names))
	for _, n := range names {
		out = append(out, results[n])
	}
	return out
}

func drawAggregate(c pen, p theme.Palette, statuses []system.Status, cx, cy float64) {
	agg := system.Summarize(statuses)
	if p.Mono {
		drawStatusGlyph(c.Canvas, p, p.Status(agg), glyphFor(agg), cx, cy, 7)
		return
	}
	if agg == system.StatusStopped {
		c.Circle(cx, cy, 13, render.Filled(p.CriticalHalo))
	}
	c.Circle(cx, cy, 7, render.Filled(p.Aggregate(statuses)))
}

func drawQR(c pen, p theme.Palette, url string, col image.Rectangle) {
	if url == "" {
		return
	}
	fg, bg := p.Background, p.Text
	if p.Mono {
		fg, bg = p.Text, p.Background
	}
	img, err := render.GenerateQRCodeImage(url, qrSize, fg, bg)
	if err != nil || img == nil {
		return
	}
	box := layout.AnchorBottomRight(layout.Inset(col, 4), qrSize, qrSize)
	c.Image(float64(box.Min.X), float64(box.Min.Y), float64(box.Dx()), float64(box.Dy()), img, render.ScaleModeFit)
}
