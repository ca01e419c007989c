// Package render turns a declarative Canvas into a bitmap of exact size and
// writes it to disk or a framebuffer.
//
// Coordinates are logical pixels with the origin at the top-left corner and
// y growing downwards.
package render

import (
	"image"
	"image/color"
)

type TextAlign int

const (
	TextAlignLeft TextAlign = iota
	TextAlignCenter
	TextAlignRight
)

// VerticalAlign selects which line of the text box sits on the y coordinate.
type VerticalAlign int

const (
	VAlignBaseline VerticalAlign = iota
	VAlignTop
	VAlignMiddle
	VAlignBottom
)

// TextStyle describes how to render text.
// For X, Align controls how x is interpreted; for Y, VAlign does.
type TextStyle struct {
	Color  color.Color
	Size   int // font size in points; 0 means DefaultTextSize
	Bold   bool
	Mono   bool
	Align  TextAlign
	VAlign VerticalAlign
	// MaxWidth truncates the text with an ellipsis when it would be wider.
	// Zero means unbounded.
	MaxWidth float64
}

const DefaultTextSize = 12

type TextMetrics struct {
	Width      float64
	Ascent     float64
	Descent    float64
	LineHeight float64
}

type ScaleMode int

const (
	ScaleModeFit ScaleMode = iota
	ScaleModeFill
	ScaleModeStretch
)

// Shape is the paint of a geometric op. A nil Fill or Stroke skips that part.
type Shape struct {
	Fill   color.Color
	Stroke color.Color
	Width  float64
	// Dash alternates on and off lengths for strokes.
	Dash []float64
}

// Filled returns a fill-only shape.
func Filled(c color.Color) Shape { return Shape{Fill: c} }

// Stroked returns an outline-only shape.
func Stroked(c color.Color, width float64) Shape { return Shape{Stroke: c, Width: width} }

type Point struct{ X, Y float64 }

func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Op is one drawing instruction.
type Op interface {
	colors() []color.Color
}

type RectOp struct {
	X, Y, W, H float64
	Radius     float64
	Style      Shape
}

type CircleOp struct {
	CX, CY, R float64
	Style     Shape
}

type PathOp struct {
	Points []Point
	Closed bool
	Style  Shape
}

type TextOp struct {
	X, Y  float64
	Text  string
	Style TextStyle
	// Suffix, when set, starts where Text ends after measuring.
	Suffix *TextSpan
}

// TextSpan is a run of text placed relative to the text it follows.
// DY shifts it vertically in canvas units; its Align is ignored.
type TextSpan struct {
	Text  string
	Style TextStyle
	DY    float64
}

type ImageOp struct {
	X, Y, W, H float64
	Image      image.Image
	Mode       ScaleMode
}

func (o RectOp) colors() []color.Color   { return o.Style.colors() }
func (o CircleOp) colors() []color.Color { return o.Style.colors() }
func (o PathOp) colors() []color.Color   { return o.Style.colors() }
func (o TextOp) colors() []color.Color {
	if o.Suffix != nil {
		return nonNil(o.Style.Color, o.Suffix.Style.Color)
	}
	return nonNil(o.Style.Color)
}
func (o ImageOp) colors() []color.Color  { return nil }

func (s Shape) colors() []color.Color { return nonNil(s.Fill, s.Stroke) }

func nonNil(cs ...color.Color) []color.Color {
	out := make([]color.Color, 0, len(cs))
	for _, c := range cs {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}

// Canvas is the ordered drawing list a panel produces. It is consumed once
// by Rasterize.
type Canvas struct {
	Width      int
	Height     int
	Background color.Color
	Ops        []Op
}

func NewCanvas(width, height int, background color.Color) *Canvas {
	return &Canvas{Width: width, Height: height, Background: background}
}

func (c *Canvas) W() float64 { return float64(c.Width) }
func (c *Canvas) H() float64 { return float64(c.Height) }

func (c *Canvas) Rect(x, y, w, h float64, s Shape) {
	c.Ops = append(c.Ops, RectOp{X: x, Y: y, W: w, H: h, Style: s})
}

func (c *Canvas) RoundRect(x, y, w, h, radius float64, s Shape) {
	c.Ops = append(c.Ops, RectOp{X: x, Y: y, W: w, H: h, Radius: radius, Style: s})
}

func (c *Canvas) Circle(cx, cy, r float64, s Shape) {
	c.Ops = append(c.Ops, CircleOp{CX: cx, CY: cy, R: r, Style: s})
}

func (c *Canvas) Line(x1, y1, x2, y2 float64, s Shape) {
	c.Ops = append(c.Ops, PathOp{Points: []Point{{x1, y1}, {x2, y2}}, Style: s})
}

func (c *Canvas) Polyline(points []Point, s Shape) {
	c.Ops = append(c.Ops, PathOp{Points: points, Style: s})
}

func (c *Canvas) Polygon(points []Point, s Shape) {
	c.Ops = append(c.Ops, PathOp{Points: points, Closed: true, Style: s})
}

func (c *Canvas) Text(x, y float64, text string, style TextStyle) {
	c.Ops = append(c.Ops, TextOp{X: x, Y: y, Text: text, Style: style})
}

// TextWithSuffix draws text followed by suffix, e.g. a value and its unit
// in a smaller size.
func (c *Canvas) TextWithSuffix(x, y float64, text string, style TextStyle, suffix TextSpan) {
	c.Ops = append(c.Ops, TextOp{X: x, Y: y, Text: text, Style: style, Suffix: &suffix})
}

func (c *Canvas) Image(x, y, w, h float64, img image.Image, mode ScaleMode) {
	if img == nil {
		return
	}
	c.Ops = append(c.Ops, ImageOp{X: x, Y: y, W: w, H: h, Image: img, Mode: mode})
}

// Colors lists every color the canvas paints with, background first.
func (c *Canvas) Colors() []color.Color {
	out := nonNil(c.Background)
	for _, op := range c.Ops {
		out = append(out, op.colors()...)
	}
	return out
}

// Texts returns the text ops in drawing order.
func (c *Canvas) Texts() []TextOp {
	var out []TextOp
	for _, op := range c.Ops {
		if t, ok := op.(TextOp); ok {
			out = append(out, t)
		}
	}
	return out
}

// FindText returns the first text op whose content equals s.
func (c *Canvas) FindText(s string) (TextOp, bool) {
	for _, t := range c.Texts() {
		if t.Text == s {
			return t, true
		}
	}
	return TextOp{}, false
}
