package web

import (
	"fmt"
	"strconv"
)

const (
	EnvListenAddr = "PANELFRAME_LISTEN"
	EnvDevMode    = "PANELFRAME_DEV"
)

// ServerConfig contains settings for running the preview server.
type ServerConfig struct {
	ListenAddr string
	DevMode    bool
}

// ServerConfigFrom reads the listen address and dev flag through lookup,
// typically os.LookupEnv.
func ServerConfigFrom(lookup func(string) (string, bool), defaultListenAddr string) (ServerConfig, error) {
	cfg := ServerConfig{ListenAddr: defaultListenAddr}
	if v, ok := lookup(EnvListenAddr); ok && v != "" {
		cfg.ListenAddr = v
	}
	if raw, ok := lookup(EnvDevMode); ok && raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return ServerConfig{}, fmt.Errorf("%s must be a boolean (got %q): %w", EnvDevMode, raw, err)
		}
		cfg.DevMode = parsed
	}
	return cfg, nil
}
