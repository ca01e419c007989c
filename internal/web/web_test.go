package web

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rook-computer/panelframe/internal/state"
)

func TestStatusBeforeFirstRun(t *testing.T) {
	mux := NewDefaultMux("", t.TempDir(), APIV1Config{Store: state.NewStore()})
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got statusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Phase != "idle" || got.Runs != 0 || got.Started != nil || len(got.Panels) != 0 {
		t.Fatalf("status = %+v", got)
	}
}

func TestRenderReportsPanels(t *testing.T) {
	out := t.TempDir()
	store := state.NewStore()
	render := func(ctx context.Context) state.Report {
		r := state.Report{Started: time.Now(), Panels: []state.PanelReport{
			{Name: "clock", Outcome: state.Rendered, Path: filepath.Join(out, "clock.png")},
			{Name: "server", Outcome: state.Failed, Error: "monitoring endpoint unreachable"},
			{Name: "nope", Outcome: state.Skipped},
		}}
		store.Finish(r)
		return r
	}
	mux := NewDefaultMux("", out, APIV1Config{Store: store, RenderFunc: render})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/render", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var got statusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Phase != "done" || got.Runs != 1 || got.Rendered != 1 || got.Failed != 1 || got.Skipped != 1 {
		t.Fatalf("status = %+v", got)
	}
	if got.Panels[0].URL != "/panels/clock.png" || got.Panels[1].URL != "" {
		t.Fatalf("panels = %+v", got.Panels)
	}
	if got.Panels[1].Error == "" {
		t.Fatal("failed panel has no error")
	}
}

func TestRenderIsSerialized(t *testing.T) {
	var active, maxActive int32
	render := func(ctx context.Context) state.Report {
		n := atomic.AddInt32(&active, 1)
		for {
			m := atomic.LoadInt32(&maxActive)
			if n <= m || atomic.CompareAndSwapInt32(&maxActive, m, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&active, -1)
		return state.Report{}
	}
	mux := NewDefaultMux("", t.TempDir(), APIV1Config{RenderFunc: render})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v1/render", nil))
		}()
	}
	wg.Wait()
	if maxActive != 1 {
		t.Fatalf("%d renders ran at once", maxActive)
	}
}

func TestRenderMethodAndConfig(t *testing.T) {
	mux := NewDefaultMux("", t.TempDir(), APIV1Config{})
	for _, tc := range []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/api/v1/render", http.StatusMethodNotAllowed},
		{http.MethodPost, "/api/v1/render", http.StatusNotImplemented},
		{http.MethodPost, "/api/v1/status", http.StatusMethodNotAllowed},
	} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		if rec.Code != tc.want {
			t.Errorf("%s %s = %d, want %d", tc.method, tc.path, rec.Code, tc.want)
		}
	}
}

func TestServesOutputAndUI(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")
	mux := NewDefaultMux("", out, APIV1Config{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panels/clock.png", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing output dir = %d", rec.Code)
	}

	if err := os.MkdirAll(out, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(out, "clock.png"), []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panels/clock.png", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "png" {
		t.Fatalf("clock.png = %d %q", rec.Code, rec.Body)
	}
	if rec.Header().Get("Cache-Control") != "no-store" {
		t.Fatalf("headers = %v", rec.Header())
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "/api/v1/status") {
		t.Fatalf("index = %d", rec.Code)
	}
}

func TestHTTPServerLifecycle(t *testing.T) {
	s := NewHTTPServer(ServerConfig{ListenAddr: "127.0.0.1:0", DevMode: true})
	s.Handler = NewDefaultMux("", t.TempDir(), APIV1Config{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	req, _ := http.NewRequest(http.MethodGet, "http://"+s.Addr+"/api/v1/status", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	body, _ := io.ReadAll(res.Body)
	res.Body.Close()
	if res.StatusCode != http.StatusOK || !strings.Contains(string(body), `"phase":"idle"`) {
		t.Fatalf("status = %d %s", res.StatusCode, body)
	}
	if res.Header.Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Fatalf("dev mode CORS missing: %v", res.Header)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := s.Start(ctx); err == nil {
		t.Fatal("restart after Stop succeeded")
	}
}

func TestServerConfigFrom(t *testing.T) {
	env := map[string]string{EnvListenAddr: "127.0.0.1:9000", EnvDevMode: "true"}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
	cfg, err := ServerConfigFrom(lookup, ":8080")
	if err != nil || cfg.ListenAddr != "127.0.0.1:9000" || !cfg.DevMode {
		t.Fatalf("cfg = %+v, %v", cfg, err)
	}

	env = map[string]string{EnvDevMode: "sometimes"}
	if _, err := ServerConfigFrom(lookup, ":8080"); err == nil {
		t.Fatal("expected error for a non-boolean dev flag")
	}

	cfg, err = ServerConfigFrom(func(string) (string, bool) { return "", false }, ":8080")
	if err != nil || cfg.ListenAddr != ":8080" || cfg.DevMode {
		t.Fatalf("defaults = %+v, %v", cfg, err)
	}
}
