package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rook-computer/panelframe/internal/app"
	"github.com/rook-computer/panelframe/internal/app/panels"
)

// SimFaults selects which data sources misbehave on the next render.
type SimFaults struct {
	WeatherTimeout bool `json:"weatherTimeout"`
	MonitorDown    bool `json:"monitorDown"`
	SSHDown        bool `json:"sshDown"`
	PingOffline    bool `json:"pingOffline"`
	// StoppedUnits lists containers and services reported as not running.
	StoppedUnits []string `json:"stoppedUnits"`
}

var scenarios = map[string]SimFaults{
	"healthy":  {},
	"degraded": {WeatherTimeout: true, SSHDown: true, PingOffline: true},
	"outage":   {MonitorDown: true, StoppedUnits: []string{"nginx", "tailscaled"}},
}

// SimControl owns the fault state the fixture sources read on every call.
type SimControl struct {
	startupScenario string
	currentScenario atomic.Value // string

	faults struct {
		mu sync.RWMutex
		v  SimFaults
	}
}

func NewSimControl(startupScenario string) *SimControl {
	c := &SimControl{startupScenario: strings.TrimSpace(startupScenario)}
	if c.startupScenario == "" {
		c.startupScenario = "healthy"
	}
	c.currentScenario.Store(c.startupScenario)
	return c
}

// Registry returns the built-in panels backed by fixtures instead of the network.
func (c *SimControl) Registry(log app.Logger) app.Registry {
	return app.NewRegistry(
		&panels.Clock{Source: simWeather{c}, Log: log},
		&panels.Weather{Source: simWeather{c}, Log: log},
		&panels.Server{Collector: simMonitor{c}, Remote: simRemote{c}, Local: simLocal{c}, Log: log},
	)
}

func (c *SimControl) ApplyScenario(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		name = c.startupScenario
	}
	f, ok := scenarios[name]
	if !ok {
		return fmt.Errorf("unknown scenario %q", name)
	}
	c.SetFaults(f)
	c.currentScenario.Store(name)
	return nil
}

func (c *SimControl) Reset() error {
	return c.ApplyScenario(c.startupScenario)
}

func (c *SimControl) Faults() SimFaults {
	c.faults.mu.RLock()
	defer c.faults.mu.RUnlock()
	return c.faults.v
}

func (c *SimControl) SetFaults(v SimFaults) {
	c.faults.mu.Lock()
	c.faults.v = v
	c.faults.mu.Unlock()
}

func (c *SimControl) stopped(name string) bool {
	for _, n := range c.Faults().StoppedUnits {
		if n == name {
			return true
		}
	}
	return false
}

func registerSimEndpoints(handler http.Handler, control *SimControl, render func(ctx context.Context)) {
	mux, ok := handler.(*http.ServeMux)
	if !ok {
		// Only supported when the simulator uses the default mux.
		return
	}

	mux.HandleFunc("/sim/reset", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeSimError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		if err := control.Reset(); err != nil {
			writeSimError(w, http.StatusInternalServerError, err.Error())
			return
		}
		render(r.Context())
		writeSimJSON(w, http.StatusOK, map[string]any{"ok": true, "scenario": control.currentScenario.Load()})
	})

	mux.HandleFunc("/sim/scenario/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeSimError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		name := strings.TrimPrefix(r.URL.Path, "/sim/scenario/")
		name = strings.Trim(name, "/")
		if err := control.ApplyScenario(name); err != nil {
			writeSimError(w, http.StatusBadRequest, err.Error())
			return
		}
		render(r.Context())
		writeSimJSON(w, http.StatusOK, map[string]any{"ok": true, "scenario": control.currentScenario.Load()})
	})

	mux.HandleFunc("/sim/faults", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeSimJSON(w, http.StatusOK, control.Faults())
			return
		case http.MethodPost:
			var patch struct {
				WeatherTimeout *bool     `json:"weatherTimeout"`
				MonitorDown    *bool     `json:"monitorDown"`
				SSHDown        *bool     `json:"sshDown"`
				PingOffline    *bool     `json:"pingOffline"`
				StoppedUnits   *[]string `json:"stoppedUnits"`
			}
			if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
				writeSimError(w, http.StatusBadRequest, "invalid json")
				return
			}
			current := control.Faults()
			if patch.WeatherTimeout != nil {
				current.WeatherTimeout = *patch.WeatherTimeout
			}
			if patch.MonitorDown != nil {
				current.MonitorDown = *patch.MonitorDown
			}
			if patch.SSHDown != nil {
				current.SSHDown = *patch.SSHDown
			}
			if patch.PingOffline != nil {
				current.PingOffline = *patch.PingOffline
			}
			if patch.StoppedUnits != nil {
				current.StoppedUnits = *patch.StoppedUnits
			}
			control.SetFaults(current)
			writeSimJSON(w, http.StatusOK, current)
			return
		default:
			writeSimError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
	})
}

func writeSimJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSimError(w http.ResponseWriter, status int, message string) {
	writeSimJSON(w, status, map[string]any{"error": message})
}
