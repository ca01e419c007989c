package main

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rook-computer/panelframe/internal/monitor"
	"github.com/rook-computer/panelframe/internal/system"
	"github.com/rook-computer/panelframe/internal/weather"
)

const (
	simEndpoint = "http://glances.sim:61208"
	simHost     = "homelab.sim"
)

// simContainers is what the fixture docker host has, running unless stopped.
var simContainers = []string{"plex", "nginx", "homeassistant", "grafana", "pihole"}

type simWeather struct{ c *SimControl }

func (s simWeather) Fetch(ctx context.Context, q weather.Query) (weather.Snapshot, error) {
	if s.c.Faults().WeatherTimeout {
		return weather.Snapshot{}, context.DeadlineExceeded
	}
	loc, err := time.LoadLocation(q.Timezone)
	if err != nil {
		loc = time.UTC
	}
	now := time.Now().In(loc)
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	sunrise := day.Add(7*time.Hour + 31*time.Minute)
	sunset := day.Add(18*time.Hour + 10*time.Minute)

	codes := []int{2, 61, 3, 0, 80, 71}
	snap := weather.Snapshot{
		Available:  true,
		Temp:       12,
		Feels:      10,
		Humidity:   71,
		Wind:       14.4,
		RainChance: 20,
		Condition:  weather.Describe(codes[0]),
		Sunrise:    sunrise,
		Sunset:     sunset,
		DayLength:  sunset.Sub(sunrise),
	}
	for i := 0; i < q.Days; i++ {
		snap.Days = append(snap.Days, weather.Day{
			Date:       day.AddDate(0, 0, i),
			Condition:  weather.Describe(codes[i%len(codes)]),
			High:       14 - i,
			Low:        7 - i,
			RainChance: (i * 35) % 100,
		})
	}
	return snap, nil
}

type simMonitor struct{ c *SimControl }

func (s simMonitor) Collect(ctx context.Context) (monitor.Metrics, error) {
	if s.c.Faults().MonitorDown {
		return monitor.Metrics{}, &monitor.UnreachableError{Endpoint: simEndpoint, Err: errors.New("connect: connection refused")}
	}
	temp := 61.5
	return monitor.Metrics{
		CPUPercent: 23.4,
		MemPercent: 71.2,
		MemUsed:    8160437862,
		MemTotal:   16320875724,
		CPUTemp:    &temp,
		Disks: []monitor.Disk{
			{Mount: "/", Percent: 45.3, Used: 105 << 30, Total: 232 << 30},
			{Mount: "/srv/media", Percent: 91, Used: 1700 << 30, Total: 1860 << 30},
			{Mount: "/var/lib/docker", Percent: 62.8, Used: 290 << 30, Total: 464 << 30},
		},
		UpBps:   1200,
		DownBps: 2_400_000,
		Uptime:  monitor.FormatUptime("12 days, 4:05:06"),
	}, nil
}

// simRemote answers the docker and systemctl commands the server panel sends.
type simRemote struct{ c *SimControl }

func (s simRemote) Run(ctx context.Context, cmd string, args ...string) (string, string, error) {
	if s.c.Faults().SSHDown {
		return "", "", &system.RemoteError{Target: simHost, Err: errors.New("dial tcp: i/o timeout")}
	}
	switch {
	case cmd == "sudo" && len(args) > 0 && args[0] == "docker":
		var out strings.Builder
		for _, name := range simContainers {
			status := "Up 3 days"
			if s.c.stopped(name) {
				status = "Exited (1) 2 hours ago"
			}
			out.WriteString(name + ":" + status + "\n")
		}
		return out.String(), "", nil
	case cmd == "systemctl":
		var out strings.Builder
		anyInactive := false
		for _, unit := range args[1:] {
			if s.c.stopped(strings.TrimSuffix(unit, ".service")) {
				out.WriteString("failed\n")
				anyInactive = true
			} else {
				out.WriteString("active\n")
			}
		}
		if anyInactive {
			return out.String(), "", &system.CommandError{Command: system.ShellJoin(cmd, args...), ExitCode: 3}
		}
		return out.String(), "", nil
	}
	return "", "command not found", &system.CommandError{Command: system.ShellJoin(cmd, args...), ExitCode: 127}
}

// simLocal answers ping.
type simLocal struct{ c *SimControl }

func (s simLocal) Run(ctx context.Context, cmd string, args ...string) (string, string, error) {
	if cmd != "ping" {
		return "", "", &system.CommandError{Command: cmd, ExitCode: 127}
	}
	if s.c.Faults().PingOffline {
		return "", "", &system.CommandError{Command: system.ShellJoin(cmd, args...), ExitCode: 1}
	}
	return "64 bytes from 1.1.1.1: icmp_seq=1 ttl=57 time=23.4 ms\n", "", nil
}
