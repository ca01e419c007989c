package theme

import (
	"image/color"
	"reflect"
	"testing"

	"github.com/rook-computer/panelframe/internal/system"
)

func TestEveryRoleIsDefinedInBothTables(t *testing.T) {
	for _, p := range []Palette{Color, Mono} {
		v := reflect.ValueOf(p)
		checkRoles(t, p.Name, v)
	}
}

func checkRoles(t *testing.T, prefix string, v reflect.Value) {
	t.Helper()
	for i := 0; i < v.NumField(); i++ {
		f := v.Field(i)
		name := prefix + "." + v.Type().Field(i).Name
		switch f.Type() {
		case rgbaType:
			if f.Interface().(color.RGBA).A == 0 {
				t.Errorf("%s is not set", name)
			}
		case reflect.TypeOf(PillStyle{}):
			checkRoles(t, name, f)
		}
	}
}

func TestSelect(t *testing.T) {
	if Select(true).Name != "mono" || Select(false).Name != "color" {
		t.Fatal("select returned the wrong table")
	}
}

func TestMonoColorsAreGrays(t *testing.T) {
	for _, c := range Mono.Colors() {
		if c.R != c.G || c.G != c.B {
			t.Fatalf("mono palette contains non-gray %v", c)
		}
	}
}

func TestTemperatureThresholds(t *testing.T) {
	cases := []struct {
		in   int
		want color.RGBA
	}{
		{-5, Color.Cold},
		{0, Color.Cold},
		{1, Color.Text},
		{21, Color.Text},
		{22, Color.Warm},
		{29, Color.Warm},
		{30, Color.Hot},
	}
	for _, tc := range cases {
		if got := Color.Temperature(tc.in); got != tc.want {
			t.Errorf("Temperature(%d)=%v want %v", tc.in, got, tc.want)
		}
		if got := Mono.Temperature(tc.in); got != Mono.Text {
			t.Errorf("mono Temperature(%d)=%v", tc.in, got)
		}
	}
}

func TestSeverityThresholds(t *testing.T) {
	if Color.Severity(69.9) != Color.Good || Color.Severity(70) != Color.Warn || Color.Severity(90) != Color.Critical {
		t.Fatal("utilisation thresholds")
	}
	if Color.TempSeverity(64) != Color.Good || Color.TempSeverity(65) != Color.Warn || Color.TempSeverity(80) != Color.Critical {
		t.Fatal("temperature thresholds")
	}
	if Mono.BarFill(10) != Mono.Text || Mono.BarFill(75) != Mono.TextSecondary {
		t.Fatal("mono bar fill")
	}
}

func TestLatencyBands(t *testing.T) {
	ms := func(v float64) *float64 { return &v }
	cases := []struct {
		in   *float64
		want color.RGBA
	}{
		{ms(42), Color.Good},
		{ms(49.9), Color.Good},
		{ms(50), Color.Warn},
		{ms(149), Color.Warn},
		{ms(150), Color.Critical},
		{nil, Color.Critical},
	}
	for _, tc := range cases {
		if got := Color.Latency(tc.in); got != tc.want {
			t.Errorf("Latency(%v)=%v want %v", tc.in, got, tc.want)
		}
	}
}

func TestStatusAndAggregate(t *testing.T) {
	if Color.Status(system.StatusRunning) != Color.PillOK ||
		Color.Status(system.StatusStopped) != Color.PillFailed ||
		Color.Status(system.StatusUnknown) != Color.PillUnknown {
		t.Fatal("status pills")
	}
	run, stop, unk := system.StatusRunning, system.StatusStopped, system.StatusUnknown
	if Color.Aggregate([]system.Status{run, run}) != Color.Good {
		t.Fatal("all running should be good")
	}
	if Color.Aggregate([]system.Status{run, unk, stop}) != Color.Critical {
		t.Fatal("any stopped should be critical")
	}
	if Color.Aggregate([]system.Status{run, unk}) != Color.Warn {
		t.Fatal("unknowns should be warn")
	}
}

func TestOverrides(t *testing.T) {
	accent := color.RGBA{R: 1, G: 2, B: 3, A: 0xFF}
	p := Color.WithOverrides(&accent, nil)
	if p.Accent != accent || p.Background != Color.Background {
		t.Fatalf("accent=%v bg=%v", p.Accent, p.Background)
	}
	if Color.Accent == accent {
		t.Fatal("override mutated the shared table")
	}
	if m := Mono.WithOverrides(&accent, &accent); m.Accent != Mono.Accent || m.Background != Mono.Background {
		t.Fatal("mono should ignore overrides")
	}
}

func TestContains(t *testing.T) {
	if !Mono.Contains(color.Black) || Mono.Contains(Color.Accent) {
		t.Fatal("contains")
	}
}
