package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/rook-computer/panelframe/internal/app"
	"github.com/rook-computer/panelframe/internal/config"
	"github.com/rook-computer/panelframe/internal/state"
	"github.com/rook-computer/panelframe/internal/web"
)

// simDefaults fill in keys the environment does not set.
var simDefaults = map[string]string{
	config.EnvOutputDir:    "./sim-out",
	config.EnvDockerAllow:  "plex,nginx,homeassistant,grafana",
	config.EnvSystemdAllow: "sshd,docker,tailscaled,cron",
	config.EnvServerName:   "homelab-sim",
	config.EnvSSHHost:      "homelab.sim",
	config.EnvQRURL:        "http://homelab.sim:61208",
}

func main() {
	defaults, err := web.ServerConfigFrom(os.LookupEnv, ":8080")
	if err != nil {
		fmt.Println("server config error:", err)
		os.Exit(2)
	}

	listenAddr := flag.String("listen", defaults.ListenAddr, "http listen address; also configurable via "+web.EnvListenAddr)
	devMode := flag.Bool("dev", defaults.DevMode, "enable dev mode; also configurable via "+web.EnvDevMode)
	staticDir := flag.String("static-dir", "", "serve the preview UI from this directory (optional); when empty, the embedded page is served")
	scenario := flag.String("scenario", "healthy", "fixture scenario: healthy | degraded | outage")
	outDir := flag.String("out", "", "output directory (default "+simDefaults[config.EnvOutputDir]+" or OUTPUT_DIR)")
	mono := flag.Bool("eink", false, "render with the monochrome palette")
	serve := flag.Bool("serve", false, "keep running and serve a live preview")
	flag.Parse()

	overrides := map[string]string{}
	if *outDir != "" {
		overrides[config.EnvOutputDir] = filepath.Clean(*outDir)
	}
	if *mono {
		overrides[config.EnvEInk] = "true"
	}
	settings := config.Load(config.Chain(config.MapLookup(overrides), os.LookupEnv, config.MapLookup(simDefaults)))

	logger := app.NewConsoleLogger(os.Stdout)
	control := NewSimControl(strings.TrimSpace(*scenario))
	if err := control.ApplyScenario(*scenario); err != nil {
		fmt.Println("scenario init error:", err)
		os.Exit(2)
	}

	store := state.NewStore()
	a := app.New(settings, control.Registry(logger), store)
	a.Logger = logger

	processCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The preview API and the /sim endpoints share one renderer.
	var runMu sync.Mutex
	run := func(ctx context.Context) state.Report {
		runMu.Lock()
		defer runMu.Unlock()
		return a.Run(ctx)
	}

	run(processCtx)
	if !*serve {
		return
	}

	server := web.NewHTTPServer(web.ServerConfig{ListenAddr: *listenAddr, DevMode: *devMode})
	server.Logger = logger
	mux := web.NewDefaultMux(*staticDir, settings.OutputDir, web.APIV1Config{Store: store, RenderFunc: run})
	registerSimEndpoints(mux, control, func(ctx context.Context) { run(ctx) })
	server.Handler = mux

	if err := server.Start(processCtx); err != nil {
		fmt.Println("server start error:", err)
		os.Exit(1)
	}

	fmt.Println("panelframe simulator listening on", server.Addr)
	fmt.Println("Scenario:", control.currentScenario.Load())
	fmt.Println("Output:", settings.OutputDir)
	fmt.Println("Preview: http://" + server.Addr + "/")

	<-processCtx.Done()
	_ = server.Stop()
}
