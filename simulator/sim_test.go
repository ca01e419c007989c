package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rook-computer/panelframe/internal/app"
	"github.com/rook-computer/panelframe/internal/config"
	"github.com/rook-computer/panelframe/internal/state"
)

func simSettings(t *testing.T) config.Settings {
	t.Helper()
	return config.Load(config.Chain(
		config.MapLookup(map[string]string{config.EnvOutputDir: t.TempDir()}),
		config.MapLookup(simDefaults),
	))
}

func runScenario(t *testing.T, name string) state.Report {
	t.Helper()
	control := NewSimControl(name)
	if err := control.ApplyScenario(name); err != nil {
		t.Fatalf("ApplyScenario: %v", err)
	}
	a := app.New(simSettings(t), control.Registry(app.NoopLogger{}), nil)
	return a.Run(context.Background())
}

func TestScenarios(t *testing.T) {
	for _, tc := range []struct {
		scenario string
		want     string
	}{
		{"healthy", "rendered,rendered,rendered"},
		{"degraded", "rendered,rendered,rendered"},
		{"outage", "rendered,rendered,failed"},
	} {
		r := runScenario(t, tc.scenario)
		var got []string
		for _, p := range r.Panels {
			got = append(got, string(p.Outcome))
		}
		if strings.Join(got, ",") != tc.want {
			t.Errorf("%s: outcomes = %v", tc.scenario, got)
		}
	}
}

func TestOutageNamesEndpoint(t *testing.T) {
	r := runScenario(t, "outage")
	if !strings.Contains(r.Panels[2].Error, simEndpoint) {
		t.Fatalf("error = %q", r.Panels[2].Error)
	}
}

func TestUnknownScenario(t *testing.T) {
	if err := NewSimControl("").ApplyScenario("flood"); err == nil {
		t.Fatal("expected error")
	}
}

func TestSimRemoteReportsStoppedUnits(t *testing.T) {
	c := NewSimControl("outage")
	if err := c.ApplyScenario("outage"); err != nil {
		t.Fatal(err)
	}
	out, _, _ := simRemote{c}.Run(context.Background(), "sudo", "docker", "ps", "-a")
	if !strings.Contains(out, "nginx:Exited") || !strings.Contains(out, "plex:Up") {
		t.Fatalf("docker ps = %q", out)
	}
	out, _, err := simRemote{c}.Run(context.Background(), "systemctl", "is-active", "sshd.service", "tailscaled.service")
	if out != "active\nfailed\n" || err == nil {
		t.Fatalf("systemctl = %q, %v", out, err)
	}
}

func TestFaultsEndpoint(t *testing.T) {
	c := NewSimControl("healthy")
	renders := 0
	mux := http.NewServeMux()
	registerSimEndpoints(mux, c, func(context.Context) { renders++ })

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sim/faults", strings.NewReader(`{"pingOffline":true}`)))
	if rec.Code != http.StatusOK || !c.Faults().PingOffline {
		t.Fatalf("faults = %d %+v", rec.Code, c.Faults())
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sim/scenario/outage", nil))
	if rec.Code != http.StatusOK || !c.Faults().MonitorDown || renders != 1 {
		t.Fatalf("scenario = %d %+v renders=%d", rec.Code, c.Faults(), renders)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sim/reset", nil))
	if rec.Code != http.StatusOK || c.Faults().MonitorDown {
		t.Fatalf("reset = %d %+v", rec.Code, c.Faults())
	}
}
