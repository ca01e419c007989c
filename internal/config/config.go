package config

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

const (
	EnvWidth             = "PANEL_WIDTH"
	EnvHeight            = "PANEL_HEIGHT"
	EnvDPI               = "PANEL_DPI"
	EnvOutputDir         = "OUTPUT_DIR"
	EnvPanels            = "PANELS"
	EnvEInk              = "EINK"
	EnvLatitude          = "LATITUDE"
	EnvLongitude         = "LONGITUDE"
	EnvCity              = "CITY"
	EnvTimezone          = "TIMEZONE"
	EnvWeatherURL        = "WEATHER_URL"
	EnvWeatherTimeout    = "WEATHER_TIMEOUT"
	EnvMonitorURL        = "GLANCES_HOST"
	EnvMonitorTimeout    = "MONITOR_TIMEOUT"
	EnvServerName        = "SERVER_NAME"
	EnvSSHHost           = "SSH_HOST"
	EnvSSHUser           = "SSH_USER"
	EnvSSHPort           = "SSH_PORT"
	EnvSSHKey            = "SSH_KEY"
	EnvSSHKnownHosts     = "SSH_KNOWN_HOSTS"
	EnvSSHTimeout        = "SSH_TIMEOUT"
	EnvSSHConnectTimeout = "SSH_CONNECT_TIMEOUT"
	EnvPingHost          = "PING_HOST"
	EnvPingTimeout       = "PING_TIMEOUT"
	EnvDockerAllow       = "DOCKER_WHITELIST"
	EnvSystemdAllow      = "SYSTEMD_WHITELIST"
	EnvFontRegular       = "FONT_REGULAR"
	EnvFontBold          = "FONT_BOLD"
	EnvAccentColor       = "ACCENT_COLOR"
	EnvBackgroundColor   = "BACKGROUND_COLOR"
	EnvQRURL             = "SERVER_QR_URL"
)

// Defaults for every key. They match the values a fresh frame ships with.
const (
	DefaultWidth          = 800
	DefaultHeight         = 480
	DefaultDPI            = 100
	DefaultOutputDir      = "/mnt/usb/"
	DefaultPanels         = "clock,weather,server"
	DefaultLatitude       = 52.52
	DefaultLongitude      = 13.41
	DefaultCity           = "Berlin · DE"
	DefaultTimezone       = "Europe/Berlin"
	DefaultWeatherURL     = "https://api.open-meteo.com/v1/forecast"
	DefaultWeatherTimeout = 10 * time.Second
	DefaultMonitorURL     = "http://192.168.1.100:61208"
	DefaultMonitorTimeout = 5 * time.Second
	DefaultServerName     = "homelab-01"
	DefaultSSHPort        = 22
	DefaultSSHKnownHosts  = "~/.ssh/known_hosts"
	DefaultSSHTimeout     = 10 * time.Second
	DefaultSSHConnect     = 5 * time.Second
	DefaultPingHost       = "1.1.1.1"
	DefaultPingTimeout    = 5 * time.Second
)

// MaxDimension bounds PANEL_WIDTH and PANEL_HEIGHT; the rasterizer paints
// a supersampled bitmap of that size.
const MaxDimension = 8192

// LocalMonitor selects the in-process gopsutil collector instead of Glances.
const LocalMonitor = "local"

// SSHSettings describes the remote host whose containers and services are checked.
type SSHSettings struct {
	Host           string
	User           string
	Port           int
	KeyFile        string
	KnownHosts     string
	Timeout        time.Duration
	ConnectTimeout time.Duration
}

// Target returns user@host, or host when no user is configured.
func (s SSHSettings) Target() string {
	if s.User == "" {
		return s.Host
	}
	return s.User + "@" + s.Host
}

// Settings is the configuration of one run. It is built once by Load and
// must be treated as read-only by everything that receives it.
type Settings struct {
	Width     int
	Height    int
	DPI       int
	OutputDir string
	Panels    []string
	Mono      bool

	Latitude  float64
	Longitude float64
	City      string
	Timezone  string
	Location  *time.Location

	WeatherURL     string
	WeatherTimeout time.Duration

	MonitorURL     string
	MonitorTimeout time.Duration
	ServerName     string
	SSH            SSHSettings
	PingHost       string
	PingTimeout    time.Duration
	DockerAllow    []string
	SystemdAllow   []string
	QRURL          string

	FontRegular string
	FontBold    string

	// Accent and Background override the color palette when set.
	Accent     *color.RGBA
	Background *color.RGBA

	// Warnings lists every value that was rejected and replaced by its default.
	Warnings []string
}

// OutputPath joins the output directory and a panel file name.
func (s Settings) OutputPath(fileName string) string {
	return filepath.Join(s.OutputDir, fileName)
}

// Now returns the current time in the configured timezone.
func (s Settings) Now() time.Time {
	if s.Location == nil {
		return time.Now()
	}
	return time.Now().In(s.Location)
}

// Default returns the settings produced when no key is set.
func Default() Settings {
	return Load(func(string) (string, bool) { return "", false })
}

// FromEnv loads settings from the process environment only.
func FromEnv() Settings {
	return Load(os.LookupEnv)
}

// Load builds settings from lookup. Values that are missing or do not parse
// fall back to their default; Load never fails.
func Load(lookup Lookup) Settings {
	l := &loader{lookup: lookup}

	s := Settings{
		Width:     l.dimension(EnvWidth, DefaultWidth),
		Height:    l.dimension(EnvHeight, DefaultHeight),
		DPI:       l.positiveInt(EnvDPI, DefaultDPI),
		OutputDir: l.str(EnvOutputDir, DefaultOutputDir),
		Panels:    l.list(EnvPanels, DefaultPanels),
		Mono:      l.boolean(EnvEInk, false),

		Latitude:  l.coordinate(EnvLatitude, DefaultLatitude, 90),
		Longitude: l.coordinate(EnvLongitude, DefaultLongitude, 180),
		City:      l.str(EnvCity, DefaultCity),

		WeatherURL:     l.str(EnvWeatherURL, DefaultWeatherURL),
		WeatherTimeout: l.duration(EnvWeatherTimeout, DefaultWeatherTimeout),

		MonitorURL:     strings.TrimRight(l.str(EnvMonitorURL, DefaultMonitorURL), "/"),
		MonitorTimeout: l.duration(EnvMonitorTimeout, DefaultMonitorTimeout),
		ServerName:     l.str(EnvServerName, DefaultServerName),
		SSH: SSHSettings{
			Host:           l.str(EnvSSHHost, ""),
			User:           l.str(EnvSSHUser, ""),
			Port:           l.positiveInt(EnvSSHPort, DefaultSSHPort),
			KeyFile:        expandHome(l.str(EnvSSHKey, "")),
			KnownHosts:     expandHome(l.str(EnvSSHKnownHosts, DefaultSSHKnownHosts)),
			Timeout:        l.duration(EnvSSHTimeout, DefaultSSHTimeout),
			ConnectTimeout: l.duration(EnvSSHConnectTimeout, DefaultSSHConnect),
		},
		PingHost:     l.str(EnvPingHost, DefaultPingHost),
		PingTimeout:  l.duration(EnvPingTimeout, DefaultPingTimeout),
		DockerAllow:  l.list(EnvDockerAllow, ""),
		SystemdAllow: l.list(EnvSystemdAllow, ""),
		QRURL:        l.str(EnvQRURL, ""),

		FontRegular: expandHome(l.str(EnvFontRegular, "")),
		FontBold:    expandHome(l.str(EnvFontBold, "")),

		Accent:     l.color(EnvAccentColor),
		Background: l.color(EnvBackgroundColor),
	}

	s.Timezone, s.Location = l.location(EnvTimezone, DefaultTimezone)
	if s.OutputDir == "" {
		s.OutputDir = DefaultOutputDir
	}
	s.Warnings = l.warnings
	return s
}

type loader struct {
	lookup   Lookup
	warnings []string
}

func (l *loader) raw(key string) (string, bool) {
	if l.lookup == nil {
		return "", false
	}
	v, ok := l.lookup(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return "", false
	}
	return v, true
}

func (l *loader) warnf(key, raw string, reason string) {
	l.warnings = append(l.warnings, fmt.Sprintf("%s=%q ignored: %s", key, raw, reason))
}

func (l *loader) str(key, def string) string {
	if v, ok := l.raw(key); ok {
		return v
	}
	return def
}

func (l *loader) positiveInt(key string, def int) int {
	v, ok := l.raw(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		l.warnf(key, v, "not an integer")
		return def
	}
	if n <= 0 {
		l.warnf(key, v, "must be positive")
		return def
	}
	return n
}

func (l *loader) dimension(key string, def int) int {
	n := l.positiveInt(key, def)
	if n > MaxDimension {
		l.warnf(key, strconv.Itoa(n), fmt.Sprintf("larger than %d", MaxDimension))
		return def
	}
	return n
}

func (l *loader) coordinate(key string, def, limit float64) float64 {
	v, ok := l.raw(key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		l.warnf(key, v, "not a number")
		return def
	}
	if f < -limit || f > limit {
		l.warnf(key, v, fmt.Sprintf("outside ±%g", limit))
		return def
	}
	return f
}

func (l *loader) boolean(key string, def bool) bool {
	v, ok := l.raw(key)
	if !ok {
		return def
	}
	switch strings.ToLower(v) {
	case "yes", "on", "y":
		return true
	case "no", "off", "n":
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		l.warnf(key, v, "not a boolean")
		return def
	}
	return b
}

// maxSeconds keeps bare-number durations inside time.Duration.
const maxSeconds = float64(math.MaxInt64 / int64(time.Second))

// duration accepts Go durations ("750ms", "10s") or a bare number of seconds.
func (l *loader) duration(key string, def time.Duration) time.Duration {
	v, ok := l.raw(key)
	if !ok {
		return def
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		if math.IsNaN(secs) || math.IsInf(secs, 0) {
			l.warnf(key, v, "not a duration")
			return def
		}
		if secs <= 0 {
			l.warnf(key, v, "must be positive")
			return def
		}
		if secs > maxSeconds {
			l.warnf(key, v, "too long")
			return def
		}
		return time.Duration(secs * float64(time.Second))
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		l.warnf(key, v, "not a duration")
		return def
	}
	if d <= 0 {
		l.warnf(key, v, "must be positive")
		return def
	}
	return d
}

func (l *loader) list(key, def string) []string {
	if v, ok := l.raw(key); ok {
		return ParseList(v)
	}
	return ParseList(def)
}

func (l *loader) color(key string) *color.RGBA {
	v, ok := l.raw(key)
	if !ok {
		return nil
	}
	c, err := ParseColor(v)
	if err != nil {
		l.warnf(key, v, err.Error())
		return nil
	}
	return &c
}

func (l *loader) location(key, def string) (string, *time.Location) {
	if v, ok := l.raw(key); ok {
		if loc, err := time.LoadLocation(v); err == nil {
			return v, loc
		}
		l.warnf(key, v, "unknown timezone")
	}
	if loc, err := time.LoadLocation(def); err == nil {
		return def, loc
	}
	return time.Local.String(), time.Local
}

// ParseList splits a comma-separated list, trimming entries and dropping empty ones.
func ParseList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
