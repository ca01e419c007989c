package render

import (
	"fmt"
	"image"
	"image/color"

	fb "github.com/gonutz/framebuffer"
)

// Framebuffer shows rendered panels on a Linux framebuffer device.
type Framebuffer struct {
	dev    *fb.Device
	Logger Logger
}

// OpenFramebuffer opens a device such as /dev/fb0.
func OpenFramebuffer(path string, log Logger) (*Framebuffer, error) {
	dev, err := fb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open framebuffer %s: %w", path, err)
	}
	if log != nil {
		b := dev.Bounds()
		log.Infof("fb", "framebuffer %s open, bounds=%dx%d", path, b.Dx(), b.Dy())
	}
	return &Framebuffer{dev: dev, Logger: log}, nil
}

func (f *Framebuffer) Close() error {
	if f == nil || f.dev == nil {
		return nil
	}
	f.dev.Close()
	f.dev = nil
	return nil
}

// Show scales img onto the whole device.
func (f *Framebuffer) Show(img *image.RGBA) {
	if f == nil || f.dev == nil || img == nil {
		return
	}
	blitToFB(f.dev, img)
	if f.Logger != nil {
		f.Logger.Infof("fb", "blit %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

type pixelSetter interface {
	Bounds() image.Rectangle
	Set(x, y int, c color.Color)
}

// blitToFB copies img to dev with nearest-neighbor sampling.
func blitToFB(dev pixelSetter, img *image.RGBA) {
	bounds := dev.Bounds()
	fbWidth, fbHeight := bounds.Dx(), bounds.Dy()
	src := img.Bounds()
	if fbWidth == 0 || fbHeight == 0 || src.Empty() {
		return
	}
	for y := 0; y < fbHeight; y++ {
		sy := src.Min.Y + (y*src.Dy())/fbHeight
		for x := 0; x < fbWidth; x++ {
			sx := src.Min.X + (x*src.Dx())/fbWidth
			pixel := img.RGBAAt(sx, sy)
			dev.Set(bounds.Min.X+x, bounds.Min.Y+y, color.RGBA{R: pixel.R, G: pixel.G, B: pixel.B, A: 0xFF})
		}
	}
}
