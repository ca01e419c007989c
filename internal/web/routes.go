package web

import (
	"context"
	"net/http"
	"os"
	"path/filepath"

	"github.com/rook-computer/panelframe/internal/assets"
	"github.com/rook-computer/panelframe/internal/state"
)

// APIV1Config wires the API to the run state and the renderer.
type APIV1Config struct {
	Store *state.Store
	// RenderFunc runs the panel list once. POST /render answers 501 when nil.
	RenderFunc func(ctx context.Context) state.Report
}

// RegisterAPIV1 registers the public API routes under /api/v1/.
func RegisterAPIV1(mux *http.ServeMux, cfg APIV1Config) {
	mux.Handle("/api/v1/", http.StripPrefix("/api/v1", newAPIV1(cfg)))
}

// RegisterOutput serves rendered panels from outputDir under /panels/.
func RegisterOutput(mux *http.ServeMux, outputDir string) {
	mux.Handle("/panels/", http.StripPrefix("/panels", noCache(dirHandler(outputDir))))
}

// RegisterUI serves either the embedded preview page or a directory.
func RegisterUI(mux *http.ServeMux, staticDir string) {
	mux.Handle("/", StaticUIHandler(staticDir))
}

// NewDefaultMux builds the preview mux:
// - /api/v1/* for the API
// - /panels/* for the rendered images
// - / for the preview page
func NewDefaultMux(staticDir, outputDir string, cfg APIV1Config) *http.ServeMux {
	mux := http.NewServeMux()
	RegisterAPIV1(mux, cfg)
	RegisterOutput(mux, outputDir)
	RegisterUI(mux, staticDir)
	return mux
}

// StaticUIHandler serves staticDir when it is an existing directory and the
// embedded page otherwise.
func StaticUIHandler(staticDir string) http.Handler {
	if staticDir == "" {
		return cleanPath(http.FileServer(http.FS(assets.WebUI)))
	}
	return dirHandler(staticDir)
}

// dirHandler checks dir on every request; the output directory only appears
// after the first run.
func dirHandler(dir string) http.Handler {
	files := cleanPath(http.FileServer(http.Dir(dir)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if st, err := os.Stat(dir); err != nil || !st.IsDir() {
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	})
}

func cleanPath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.URL.Path = filepath.ToSlash(filepath.Clean("/" + r.URL.Path))
		next.ServeHTTP(w, r)
	})
}

// noCache keeps browsers from showing a panel from an earlier run.
func noCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
