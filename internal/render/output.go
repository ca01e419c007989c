package render

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
)

// Logger is the subset of the application logger the render package uses.
type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

// WritePNG encodes img and writes it to path, creating the directory first.
// The file is written in place, not through a temporary file.
func WritePNG(path string, img image.Image, log Logger) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if log != nil {
		b := img.Bounds()
		log.Infof("render", "wrote %s (%dx%d)", path, b.Dx(), b.Dy())
	}
	return nil
}

// RenderFile rasterizes c and writes it to path.
func RenderFile(path string, c *Canvas, opts Options, log Logger) (*image.RGBA, error) {
	img, err := Rasterize(c, opts)
	if err != nil {
		return nil, err
	}
	if err := WritePNG(path, img, log); err != nil {
		return nil, err
	}
	return img, nil
}
