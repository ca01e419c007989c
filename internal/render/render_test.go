package render

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

type recordingLogger struct{ lines []string }

func (l *recordingLogger) Infof(component, format string, args ...interface{}) {
	l.lines = append(l.lines, component+": "+format)
}
func (l *recordingLogger) Errorf(component, format string, args ...interface{}) {
	l.lines = append(l.lines, component+": "+format)
}

func sampleCanvas(w, h int) *Canvas {
	c := NewCanvas(w, h, color.RGBA{R: 0x0D, G: 0x1B, B: 0x2A, A: 0xFF})
	c.Rect(10, 10, 100, 40, Filled(color.RGBA{R: 0xFF, A: 0xFF}))
	c.RoundRect(120, 10, 100, 40, 8, Shape{Fill: color.White, Stroke: color.Black, Width: 2})
	c.Circle(300, 60, 30, Shape{Fill: color.RGBA{G: 0xFF, A: 0xFF}, Stroke: color.White, Width: 1})
	c.Line(0, 100, c.W(), 100, Shape{Stroke: color.White, Width: 2, Dash: []float64{6, 4}})
	c.Polygon([]Point{{400, 10}, {440, 80}, {360, 80}}, Filled(color.White))
	c.Text(c.W()/2, 200, "12:34", TextStyle{Color: color.White, Size: 60, Bold: true, Align: TextAlignCenter, VAlign: VAlignMiddle})
	c.Text(10, 300, strings.Repeat("sehr lange Beschriftung ", 10), TextStyle{Color: color.White, Size: 14, MaxWidth: 200})
	return c
}

func TestRasterizeExactSize(t *testing.T) {
	sizes := []image.Point{{800, 480}, {600, 448}, {1, 1}, {799, 481}}
	for _, sz := range sizes {
		img, err := Rasterize(sampleCanvas(800, 480), Options{Width: sz.X, Height: sz.Y, DPI: 100})
		if err != nil {
			t.Fatalf("%v: %v", sz, err)
		}
		if img.Bounds().Dx() != sz.X || img.Bounds().Dy() != sz.Y {
			t.Fatalf("want %v, got %v", sz, img.Bounds().Size())
		}
	}
}

func TestRasterizePaintsBackgroundAndShapes(t *testing.T) {
	bg := color.RGBA{R: 0x0D, G: 0x1B, B: 0x2A, A: 0xFF}
	img, err := Rasterize(sampleCanvas(800, 480), Options{DPI: 100})
	if err != nil {
		t.Fatal(err)
	}
	if got := img.RGBAAt(790, 470); !near(got, bg) {
		t.Fatalf("corner=%v want %v", got, bg)
	}
	if got := img.RGBAAt(60, 30); got.R < 0xF0 || got.G > 0x10 {
		t.Fatalf("filled rect=%v", got)
	}
	if got := img.RGBAAt(300, 60); got.G < 0xF0 || got.R > 0x10 {
		t.Fatalf("circle centre=%v", got)
	}
}

func near(a, b color.RGBA) bool {
	d := func(x, y uint8) bool { return x-y <= 1 || y-x <= 1 }
	return d(a.R, b.R) && d(a.G, b.G) && d(a.B, b.B)
}

func TestRasterizeRejectsInvalidSize(t *testing.T) {
	if _, err := Rasterize(NewCanvas(0, 480, color.White), Options{}); err == nil {
		t.Fatal("expected error for empty canvas")
	}
	if _, err := Rasterize(NewCanvas(800, 480, color.White), Options{Width: -1, Height: 10}); err == nil {
		t.Fatal("expected error for negative width")
	}
	if _, err := Rasterize(nil, Options{}); err == nil {
		t.Fatal("expected error for nil canvas")
	}
}

func TestEllipsize(t *testing.T) {
	face := basicfont.Face7x13
	if got := Ellipsize(face, "abcdefghij", fixed.I(70)); got != "abcdefghij" {
		t.Fatalf("fits: %q", got)
	}
	if got := Ellipsize(face, "abcdefghij", fixed.I(35)); got != "abcd…" {
		t.Fatalf("truncated: %q", got)
	}
	if got := Ellipsize(face, "abcdefghij", fixed.I(3)); got != "" {
		t.Fatalf("nothing fits: %q", got)
	}
	if got := Ellipsize(face, "abc", 0); got != "abc" {
		t.Fatalf("unbounded: %q", got)
	}
}

func TestMeasureScalesWithDPI(t *testing.T) {
	f := DefaultFonts()
	style := TextStyle{Size: 20, Bold: true}
	a := f.Measure("Montag", style, 72)
	b := f.Measure("Montag", style, 144)
	if a.Width <= 0 || b.Width < a.Width*1.9 || b.Width > a.Width*2.1 {
		t.Fatalf("widths %v %v", a.Width, b.Width)
	}
	if a.Ascent <= 0 || a.LineHeight < a.Ascent {
		t.Fatalf("metrics %+v", a)
	}
}

func TestLoadFontsFallsBackOnBadOverride(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "broken.ttf")
	if err := os.WriteFile(bad, []byte("not a font"), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := LoadFonts(bad, filepath.Join(t.TempDir(), "missing.ttf"))
	if err == nil || !strings.Contains(err.Error(), "broken.ttf") || !strings.Contains(err.Error(), "missing.ttf") {
		t.Fatalf("err=%v", err)
	}
	if m := f.Measure("Wetter", TextStyle{Size: 12}, 100); m.Width <= 0 {
		t.Fatalf("fallback font unusable: %+v", m)
	}
}

func TestRenderFileWritesPNG(t *testing.T) {
	log := &recordingLogger{}
	path := filepath.Join(t.TempDir(), "nested", "out", "clock.png")
	if _, err := RenderFile(path, sampleCanvas(800, 480), Options{Width: 800, Height: 480, DPI: 100}, log); err != nil {
		t.Fatal(err)
	}
	fh, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer fh.Close()
	cfg, err := png.DecodeConfig(fh)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 800 || cfg.Height != 480 {
		t.Fatalf("png %dx%d", cfg.Width, cfg.Height)
	}
	if len(log.lines) != 1 || !strings.HasPrefix(log.lines[0], "render: wrote") {
		t.Fatalf("log=%v", log.lines)
	}
}

func TestCanvasColorsAndTexts(t *testing.T) {
	c := NewCanvas(10, 10, color.White)
	c.Rect(0, 0, 1, 1, Shape{Fill: color.Black})
	c.Text(0, 0, "HEUTE", TextStyle{Color: color.Gray{Y: 0x55}})
	c.Image(0, 0, 1, 1, nil, ScaleModeFit)
	if len(c.Ops) != 2 {
		t.Fatalf("nil image must be skipped, ops=%d", len(c.Ops))
	}
	if got := len(c.Colors()); got != 3 {
		t.Fatalf("colors=%d", got)
	}
	if _, ok := c.FindText("HEUTE"); !ok {
		t.Fatal("text not found")
	}
}

func TestQRCodeImage(t *testing.T) {
	img, err := GenerateQRCodeImage("http://homelab-01:61208", 120, color.Black, color.White)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 120 {
		t.Fatalf("size=%v", img.Bounds())
	}
	if img, err := GenerateQRCodeImage("", 120, nil, nil); img != nil || err != nil {
		t.Fatal("empty payload must yield nothing")
	}
}

type fakeDevice struct {
	rect image.Rectangle
	set  map[image.Point]color.Color
}

func (d *fakeDevice) Bounds() image.Rectangle { return d.rect }
func (d *fakeDevice) Set(x, y int, c color.Color) {
	d.set[image.Pt(x, y)] = c
}

func TestBlitScalesToDevice(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 2))
	src.SetRGBA(3, 1, color.RGBA{R: 0xFF, A: 0xFF})
	dev := &fakeDevice{rect: image.Rect(0, 0, 8, 4), set: map[image.Point]color.Color{}}
	blitToFB(dev, src)
	if len(dev.set) != 32 {
		t.Fatalf("pixels=%d", len(dev.set))
	}
	if got := dev.set[image.Pt(7, 3)]; got != (color.RGBA{R: 0xFF, A: 0xFF}) {
		t.Fatalf("corner=%v", got)
	}
}

func TestSuffixStartsAtMeasuredEnd(t *testing.T) {
	value := TextStyle{Color: color.Black, Size: 40, Bold: true, VAlign: VAlignTop}
	unit := TextSpan{Text: "°C", Style: TextStyle{Color: color.RGBA{R: 0xFF, A: 0xFF}, Size: 20, VAlign: VAlignTop}}
	fonts := DefaultFonts()

	for _, text := range []string{"1", "-12", "--"} {
		c := NewCanvas(400, 100, color.White)
		c.TextWithSuffix(10, 10, text, value, unit)
		img, err := Rasterize(c, Options{DPI: 72, Supersample: 1, Fonts: fonts})
		if err != nil {
			t.Fatal(err)
		}
		end := 10 + fonts.Measure(text, value, 72).Width
		minX := -1
		for x := 0; x < 400 && minX < 0; x++ {
			for y := 0; y < 100; y++ {
				if px := img.RGBAAt(x, y); px.R > 0xC0 && px.G < 0x60 && px.B < 0x60 {
					minX = x
					break
				}
			}
		}
		if minX < 0 {
			t.Fatalf("%q: suffix not painted", text)
		}
		if float64(minX) < end-1 || float64(minX) > end+12 {
			t.Fatalf("%q: suffix at x=%d, text ends at %.1f", text, minX, end)
		}
	}
}
