package config

import (
	"image/color"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestDefaultsWhenNothingIsSet(t *testing.T) {
	s := Default()
	if s.Width != DefaultWidth || s.Height != DefaultHeight || s.DPI != DefaultDPI {
		t.Fatalf("size=%dx%d@%d", s.Width, s.Height, s.DPI)
	}
	if s.OutputDir != DefaultOutputDir {
		t.Fatalf("output dir=%q", s.OutputDir)
	}
	if want := []string{"clock", "weather", "server"}; !reflect.DeepEqual(s.Panels, want) {
		t.Fatalf("panels=%v", s.Panels)
	}
	if s.Mono {
		t.Fatal("mono should default to false")
	}
	if s.MonitorURL != DefaultMonitorURL || s.PingHost != DefaultPingHost {
		t.Fatalf("monitor=%q ping=%q", s.MonitorURL, s.PingHost)
	}
	if s.DockerAllow != nil || s.SystemdAllow != nil {
		t.Fatalf("allow-lists should be empty: %v %v", s.DockerAllow, s.SystemdAllow)
	}
	if s.Accent != nil || s.Background != nil {
		t.Fatal("color overrides should be unset")
	}
	if len(s.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", s.Warnings)
	}
}

func TestMalformedValuesFallBackToDefaults(t *testing.T) {
	cases := []struct {
		key   string
		value string
		check func(Settings) bool
	}{
		{EnvWidth, "wide", func(s Settings) bool { return s.Width == DefaultWidth }},
		{EnvWidth, "-10", func(s Settings) bool { return s.Width == DefaultWidth }},
		{EnvHeight, "0", func(s Settings) bool { return s.Height == DefaultHeight }},
		{EnvWidth, "50000", func(s Settings) bool { return s.Width == DefaultWidth }},
		{EnvHeight, "8193", func(s Settings) bool { return s.Height == DefaultHeight }},
		{EnvDPI, "1.5", func(s Settings) bool { return s.DPI == DefaultDPI }},
		{EnvEInk, "maybe", func(s Settings) bool { return !s.Mono }},
		{EnvLatitude, "north", func(s Settings) bool { return s.Latitude == DefaultLatitude }},
		{EnvLongitude, "200", func(s Settings) bool { return s.Longitude == DefaultLongitude }},
		{EnvLatitude, "NaN", func(s Settings) bool { return s.Latitude == DefaultLatitude }},
		{EnvLongitude, "nan", func(s Settings) bool { return s.Longitude == DefaultLongitude }},
		{EnvLatitude, "-Inf", func(s Settings) bool { return s.Latitude == DefaultLatitude }},
		{EnvWeatherTimeout, "soon", func(s Settings) bool { return s.WeatherTimeout == DefaultWeatherTimeout }},
		{EnvPingTimeout, "-3", func(s Settings) bool { return s.PingTimeout == DefaultPingTimeout }},
		{EnvWeatherTimeout, "inf", func(s Settings) bool { return s.WeatherTimeout == DefaultWeatherTimeout }},
		{EnvPingTimeout, "NaN", func(s Settings) bool { return s.PingTimeout == DefaultPingTimeout }},
		{EnvMonitorTimeout, "1e300", func(s Settings) bool { return s.MonitorTimeout == DefaultMonitorTimeout }},
		{EnvSSHPort, "ssh", func(s Settings) bool { return s.SSH.Port == DefaultSSHPort }},
		{EnvTimezone, "Mars/Olympus", func(s Settings) bool { return s.Timezone == DefaultTimezone || s.Location == time.Local }},
		{EnvAccentColor, "#12", func(s Settings) bool { return s.Accent == nil }},
	}
	for _, tc := range cases {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			s := Load(MapLookup(map[string]string{tc.key: tc.value}))
			if !tc.check(s) {
				t.Fatalf("%s=%q did not fall back: %+v", tc.key, tc.value, s)
			}
			if len(s.Warnings) != 1 || !strings.HasPrefix(s.Warnings[0], tc.key) {
				t.Fatalf("warnings=%v", s.Warnings)
			}
		})
	}
}

func TestBlankValuesUseDefaultsSilently(t *testing.T) {
	s := Load(MapLookup(map[string]string{EnvWidth: "  ", EnvPanels: ""}))
	if s.Width != DefaultWidth || len(s.Panels) != 3 || len(s.Warnings) != 0 {
		t.Fatalf("width=%d panels=%v warnings=%v", s.Width, s.Panels, s.Warnings)
	}
}

func TestParsesValidValues(t *testing.T) {
	s := Load(MapLookup(map[string]string{
		EnvWidth:           "296",
		EnvHeight:          "152",
		EnvEInk:            "yes",
		EnvPanels:          " weather, ,clock,weather ",
		EnvDockerAllow:     "nginx, deluge,,",
		EnvWeatherTimeout:  "2.5",
		EnvSSHTimeout:      "750ms",
		EnvSSHHost:         "lars-server",
		EnvSSHUser:         "pi",
		EnvMonitorURL:      "http://nas:61208/",
		EnvAccentColor:     "orange",
		EnvBackgroundColor: "#0D1B2A",
	}))
	if s.Width != 296 || s.Height != 152 || !s.Mono {
		t.Fatalf("got %dx%d mono=%v", s.Width, s.Height, s.Mono)
	}
	if want := []string{"weather", "clock", "weather"}; !reflect.DeepEqual(s.Panels, want) {
		t.Fatalf("panels=%v", s.Panels)
	}
	if want := []string{"nginx", "deluge"}; !reflect.DeepEqual(s.DockerAllow, want) {
		t.Fatalf("docker=%v", s.DockerAllow)
	}
	if s.WeatherTimeout != 2500*time.Millisecond || s.SSH.Timeout != 750*time.Millisecond {
		t.Fatalf("timeouts=%v %v", s.WeatherTimeout, s.SSH.Timeout)
	}
	if s.SSH.Target() != "pi@lars-server" {
		t.Fatalf("target=%q", s.SSH.Target())
	}
	if s.MonitorURL != "http://nas:61208" {
		t.Fatalf("monitor=%q", s.MonitorURL)
	}
	if s.Accent == nil || *s.Accent != (color.RGBA{R: 0xFF, G: 0xA5, A: 0xFF}) {
		t.Fatalf("accent=%v", s.Accent)
	}
	if s.Background == nil || *s.Background != (color.RGBA{R: 0x0D, G: 0x1B, B: 0x2A, A: 0xFF}) {
		t.Fatalf("background=%v", s.Background)
	}
}

func TestParseColor(t *testing.T) {
	cases := map[string]color.RGBA{
		"#fff":      {R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF},
		"4A90D9":    {R: 0x4A, G: 0x90, B: 0xD9, A: 0xFF},
		"#4a90d980": {R: 0x4A, G: 0x90, B: 0xD9, A: 0x80},
		"Black":     {A: 0xFF},
	}
	for in, want := range cases {
		got, err := ParseColor(in)
		if err != nil {
			t.Fatalf("%q: %v", in, err)
		}
		if got != want {
			t.Fatalf("%q: got %v want %v", in, got, want)
		}
	}
	for _, bad := range []string{"", "#12345", "#gggggg", "blurple"} {
		if _, err := ParseColor(bad); err == nil {
			t.Fatalf("%q: expected error", bad)
		}
	}
}

func TestChainPrecedence(t *testing.T) {
	high := MapLookup(map[string]string{EnvCity: "Hamburg"})
	low := MapLookup(map[string]string{EnvCity: "Berlin", EnvServerName: "nas"})
	s := Load(Chain(high, nil, low))
	if s.City != "Hamburg" || s.ServerName != "nas" {
		t.Fatalf("city=%q server=%q", s.City, s.ServerName)
	}
}

func TestReadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := strings.Join([]string{
		"# frame config",
		"export SSH_HOST=lars-server",
		`CITY="Berlin · DE"`,
		"SYSTEMD_WHITELIST='sshd,ufw'",
		"EINK=true # testing",
		"",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	lookup, err := ReadEnvFile(path)
	if err != nil {
		t.Fatal(err)
	}
	s := Load(lookup)
	if s.SSH.Host != "lars-server" || s.City != "Berlin · DE" || !s.Mono {
		t.Fatalf("host=%q city=%q mono=%v", s.SSH.Host, s.City, s.Mono)
	}
	if want := []string{"sshd", "ufw"}; !reflect.DeepEqual(s.SystemdAllow, want) {
		t.Fatalf("systemd=%v", s.SystemdAllow)
	}
}

func TestReadEnvFileRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("just words\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadEnvFile(path); err == nil {
		t.Fatal("expected error")
	}
}

func TestReadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "panelframe.yaml")
	content := `
panel_width: 1200
eink: true
docker_whitelist:
  - nginx
  - portainer
latitude: 48.14
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	lookup, err := ReadYAMLFile(path)
	if err != nil {
		t.Fatal(err)
	}
	s := Load(lookup)
	if s.Width != 1200 || !s.Mono || s.Latitude != 48.14 {
		t.Fatalf("width=%d mono=%v lat=%v", s.Width, s.Mono, s.Latitude)
	}
	if want := []string{"nginx", "portainer"}; !reflect.DeepEqual(s.DockerAllow, want) {
		t.Fatalf("docker=%v", s.DockerAllow)
	}
}

func TestOutputPath(t *testing.T) {
	s := Load(MapLookup(map[string]string{EnvOutputDir: "/mnt/usb/"}))
	if got := s.OutputPath("clock.png"); got != filepath.Join("/mnt/usb", "clock.png") {
		t.Fatalf("path=%q", got)
	}
}
