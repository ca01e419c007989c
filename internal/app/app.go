// Package app renders the configured panel list once and records the outcome.
package app

import (
	"context"
	"fmt"
	"image"
	"runtime/debug"
	"time"

	"github.com/rook-computer/panelframe/internal/app/panels"
	"github.com/rook-computer/panelframe/internal/config"
	"github.com/rook-computer/panelframe/internal/render"
	"github.com/rook-computer/panelframe/internal/state"
)

// Registry maps panel names to renderers.
type Registry map[string]panels.Panel

// DefaultRegistry wires the three built-in panels to their live data sources.
func DefaultRegistry(log Logger) Registry {
	return NewRegistry(
		&panels.Clock{Log: log},
		&panels.Weather{Log: log},
		&panels.Server{Log: log},
	)
}

// NewRegistry indexes ps by name.
func NewRegistry(ps ...panels.Panel) Registry {
	r := make(Registry, len(ps))
	for _, p := range ps {
		r[p.Name()] = p
	}
	return r
}

// Display shows a finished panel image, e.g. on a framebuffer.
type Display interface {
	Show(img *image.RGBA)
}

type App struct {
	Settings config.Settings
	Registry Registry
	Store    *state.Store
	Logger   Logger
	// Fonts defaults to the configured font files over the embedded Go fonts.
	Fonts *render.Fonts
	// Display receives the image of DisplayPanel after it is written.
	Display      Display
	DisplayPanel string
}

func New(settings config.Settings, registry Registry, store *state.Store) *App {
	if store == nil {
		store = state.NewStore()
	}
	return &App{Settings: settings, Registry: registry, Store: store, Logger: NoopLogger{}}
}

// Run renders every enabled panel in order. A failing, panicking or unknown
// panel is recorded and the run continues with the next entry.
func (app *App) Run(ctx context.Context) state.Report {
	log := app.logger()
	app.Store.SetPhase(state.RENDERING)
	for _, w := range app.Settings.Warnings {
		log.Errorf("config", "%s", w)
	}
	opts := render.Options{
		Width:  app.Settings.Width,
		Height: app.Settings.Height,
		DPI:    float64(app.Settings.DPI),
		Fonts:  app.fonts(),
	}

	report := state.Report{Started: time.Now()}
	for _, name := range app.Settings.Panels {
		p, ok := app.Registry[name]
		if !ok {
			log.Infof("app", "unknown panel %q, skipped", name)
			report.Panels = append(report.Panels, state.PanelReport{Name: name, Outcome: state.Skipped})
			continue
		}
		report.Panels = append(report.Panels, app.renderPanel(ctx, p, opts))
	}
	report.Duration = time.Since(report.Started)

	rendered, failed, skipped := report.Counts()
	log.Infof("app", "run finished in %s: %d rendered, %d failed, %d skipped",
		report.Duration.Round(time.Millisecond), rendered, failed, skipped)
	app.Store.Finish(report)
	return report
}

func (app *App) renderPanel(ctx context.Context, p panels.Panel, opts render.Options) state.PanelReport {
	log := app.logger()
	start := time.Now()
	pr := state.PanelReport{Name: p.Name(), Path: app.Settings.OutputPath(p.FileName())}

	img, err := app.draw(ctx, p, pr.Path, opts)
	pr.Duration = time.Since(start)
	if err != nil {
		log.Errorf("app", "panel %s failed: %v", p.Name(), err)
		pr.Outcome = state.Failed
		pr.Error = err.Error()
		pr.Path = ""
		return pr
	}
	pr.Outcome = state.Rendered
	if app.Display != nil && app.DisplayPanel == p.Name() {
		app.Display.Show(img)
	}
	return pr
}

func (app *App) draw(ctx context.Context, p panels.Panel, path string, opts render.Options) (img *image.RGBA, err error) {
	defer func() {
		if r := recover(); r != nil {
			app.logger().Errorf("app", "panel %s panicked: %v\n%s", p.Name(), r, debug.Stack())
			img, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()
	c, err := p.Render(ctx, app.Settings)
	if err != nil {
		return nil, err
	}
	return render.RenderFile(path, c, opts, app.logger())
}

func (app *App) fonts() *render.Fonts {
	if app.Fonts != nil {
		return app.Fonts
	}
	f, err := render.LoadFonts(app.Settings.FontRegular, app.Settings.FontBold)
	if err != nil {
		app.logger().Errorf("render", "using embedded fonts: %v", err)
	}
	app.Fonts = f
	return f
}

func (app *App) logger() Logger {
	if app.Logger == nil {
		return NoopLogger{}
	}
	return app.Logger
}
