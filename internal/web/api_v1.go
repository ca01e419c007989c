package web

import (
	"net/http"
	"path/filepath"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/rook-computer/panelframe/internal/state"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type panelStatus struct {
	Name       string `json:"name"`
	Outcome    string `json:"outcome"`
	URL        string `json:"url,omitempty"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"durationMs"`
}

type statusResponse struct {
	Phase      string        `json:"phase"`
	Runs       int           `json:"runs"`
	Started    *time.Time    `json:"started,omitempty"`
	DurationMs int64         `json:"durationMs"`
	Rendered   int           `json:"rendered"`
	Failed     int           `json:"failed"`
	Skipped    int           `json:"skipped"`
	Panels     []panelStatus `json:"panels"`
}

type apiV1 struct {
	cfg APIV1Config
	// renderMu serializes render requests.
	renderMu sync.Mutex
}

func newAPIV1(cfg APIV1Config) http.Handler {
	if cfg.Store == nil {
		cfg.Store = state.NewStore()
	}
	api := &apiV1{cfg: cfg}
	mux := http.NewServeMux()
	mux.HandleFunc("/status", api.handleStatus)
	mux.HandleFunc("/render", api.handleRender)
	return mux
}

func (api *apiV1) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, newStatusResponse(api.cfg.Store.Snapshot()))
}

func (api *apiV1) handleRender(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	if api.cfg.RenderFunc == nil {
		writeAPIError(w, http.StatusNotImplemented, "not_implemented", "render not configured")
		return
	}

	api.renderMu.Lock()
	report := api.cfg.RenderFunc(r.Context())
	api.renderMu.Unlock()

	s := api.cfg.Store.Snapshot()
	s.Last = report
	writeJSON(w, http.StatusOK, newStatusResponse(s))
}

func newStatusResponse(s state.State) statusResponse {
	rendered, failed, skipped := s.Last.Counts()
	resp := statusResponse{
		Phase:      s.Phase.String(),
		Runs:       s.Runs,
		DurationMs: s.Last.Duration.Milliseconds(),
		Rendered:   rendered,
		Failed:     failed,
		Skipped:    skipped,
		Panels:     []panelStatus{},
	}
	if !s.Last.Started.IsZero() {
		started := s.Last.Started
		resp.Started = &started
	}
	for _, p := range s.Last.Panels {
		ps := panelStatus{
			Name:       p.Name,
			Outcome:    string(p.Outcome),
			Error:      p.Error,
			DurationMs: p.Duration.Milliseconds(),
		}
		if p.Outcome == state.Rendered && p.Path != "" {
			ps.URL = "/panels/" + filepath.Base(p.Path)
		}
		resp.Panels = append(resp.Panels, ps)
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, apiError{Error: code, Message: message})
}
