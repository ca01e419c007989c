package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rook-computer/panelframe/internal/app"
	"github.com/rook-computer/panelframe/internal/config"
	"github.com/rook-computer/panelframe/internal/render"
	"github.com/rook-computer/panelframe/internal/state"
	"github.com/rook-computer/panelframe/internal/system"
)

const (
	envStdioLog    = "PANELFRAME_STDIO_LOG"
	defaultEnvFile = ".env"
)

func main() {
	os.Exit(run())
}

func run() int {
	configFile := flag.String("config", "", "YAML file with configuration keys; environment variables take precedence")
	envFile := flag.String("env-file", "", "KEY=VALUE file with configuration keys (default .env when present); environment variables take precedence")
	panelList := flag.String("panels", "", "comma-separated panels to render, overrides "+config.EnvPanels)
	strict := flag.Bool("strict", false, "exit non-zero when any panel fails")
	fbDevice := flag.String("fb", "", "also show a panel on this framebuffer device, e.g. /dev/fb0")
	fbPanel := flag.String("fb-panel", "", "panel shown on the framebuffer (default: first enabled panel)")
	logFile := flag.String("log-file", "", "append timestamped log lines to this file in addition to stderr")
	stdioLog := flag.String("stdio-log", "", "redirect stdout+stderr (including panics) to this file; also configurable via "+envStdioLog)
	flag.Parse()

	logPath := *stdioLog
	if logPath == "" {
		logPath = os.Getenv(envStdioLog)
	}
	if logPath != "" {
		if err := redirectStdIO(logPath); err != nil {
			fmt.Fprintln(os.Stderr, "stdio log redirect error:", err)
		}
	}

	var logger app.Logger = app.NewConsoleLogger(os.Stderr)
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintln(os.Stderr, "log file open error:", err)
		} else {
			defer f.Close()
			logger = app.Tee{logger, app.NewFileLogger(f)}
		}
	}

	envPath := *envFile
	if envPath == "" {
		if _, err := os.Stat(defaultEnvFile); err == nil {
			envPath = defaultEnvFile
		}
	}
	lookup, err := configLookup(*configFile, envPath, *panelList)
	if err != nil {
		logger.Errorf("config", "%v", err)
		return 2
	}
	settings := config.Load(lookup)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := app.New(settings, app.DefaultRegistry(logger), state.NewStore())
	a.Logger = logger

	if *fbDevice != "" {
		fb, err := render.OpenFramebuffer(*fbDevice, logger)
		if err != nil {
			logger.Errorf("fb", "%v", err)
		} else {
			defer fb.Close()
			defer system.GraphicsConsole(logger)()
			a.Display = fb
			a.DisplayPanel = *fbPanel
			if a.DisplayPanel == "" && len(settings.Panels) > 0 {
				a.DisplayPanel = settings.Panels[0]
			}
		}
	}

	report := a.Run(ctx)
	if *strict && report.HasFailures() {
		return 1
	}
	return 0
}

// configLookup layers the sources: command line, environment, env file, YAML file.
func configLookup(configFile, envFile, panelList string) (config.Lookup, error) {
	sources := []config.Lookup{}
	if strings.TrimSpace(panelList) != "" {
		sources = append(sources, config.MapLookup(map[string]string{config.EnvPanels: panelList}))
	}
	sources = append(sources, os.LookupEnv)
	if envFile != "" {
		l, err := config.ReadEnvFile(envFile)
		if err != nil {
			return nil, fmt.Errorf("env file: %w", err)
		}
		sources = append(sources, l)
	}
	if configFile != "" {
		l, err := config.ReadYAMLFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		sources = append(sources, l)
	}
	return config.Chain(sources...), nil
}
