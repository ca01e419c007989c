package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/golang/freetype/raster"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// DefaultSupersample is the scale the canvas is painted at before it is
// resampled to the output size.
const DefaultSupersample = 2

// Options controls rasterization.
type Options struct {
	Width  int
	Height int
	// DPI sizes text: a font of n points is n*DPI/72 pixels tall.
	DPI         float64
	Supersample int
	Fonts       *Fonts
}

// Rasterize paints c and returns an image of exactly opts.Width × opts.Height.
// A zero Width or Height falls back to the canvas size.
func Rasterize(c *Canvas, opts Options) (*image.RGBA, error) {
	if c == nil {
		return nil, fmt.Errorf("render: nil canvas")
	}
	width, height := opts.Width, opts.Height
	if width == 0 {
		width = c.Width
	}
	if height == 0 {
		height = c.Height
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("render: invalid size %dx%d", width, height)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return nil, fmt.Errorf("render: invalid canvas size %dx%d", c.Width, c.Height)
	}
	ss := opts.Supersample
	if ss <= 0 {
		ss = DefaultSupersample
	}
	dpi := opts.DPI
	if dpi <= 0 {
		dpi = 72
	}
	fonts := opts.Fonts
	if fonts == nil {
		fonts = DefaultFonts()
	}

	// Canvas coordinates map onto the output size, then onto the supersampled
	// bitmap. Text keeps its point size relative to the output.
	sx := float64(width*ss) / c.W()
	sy := float64(height*ss) / c.H()
	big := image.NewRGBA(image.Rect(0, 0, width*ss, height*ss))
	bg := c.Background
	if bg == nil {
		bg = color.White
	}
	draw.Draw(big, big.Bounds(), &image.Uniform{C: bg}, image.Point{}, draw.Src)

	p := &painter{
		img:   big,
		ras:   raster.NewRasterizer(big.Bounds().Dx(), big.Bounds().Dy()),
		sx:    sx,
		sy:    sy,
		dpi:   dpi * float64(ss),
		fonts: fonts,
	}
	p.paint = raster.NewRGBAPainter(big)
	p.ras.UseNonZeroWinding = true

	for _, op := range c.Ops {
		p.draw(op)
	}

	out := image.NewRGBA(image.Rect(0, 0, width, height))
	if ss == 1 && sx == 1 && sy == 1 {
		draw.Draw(out, out.Bounds(), big, image.Point{}, draw.Src)
		return out, nil
	}
	xdraw.CatmullRom.Scale(out, out.Bounds(), big, big.Bounds(), xdraw.Src, nil)
	return out, nil
}

type painter struct {
	img    *image.RGBA
	ras    *raster.Rasterizer
	paint  *raster.RGBAPainter
	sx, sy float64
	dpi    float64
	fonts  *Fonts
}

func (p *painter) pt(x, y float64) fixed.Point26_6 {
	return fixed.Point26_6{X: toFixed(x * p.sx), Y: toFixed(y * p.sy)}
}

// lineScale converts a logical stroke width to bitmap pixels.
func (p *painter) lineScale() float64 { return (p.sx + p.sy) / 2 }

func (p *painter) draw(op Op) {
	switch o := op.(type) {
	case RectOp:
		path := p.roundRectPath(o.X, o.Y, o.W, o.H, o.Radius)
		p.shape(path, o.Style, true)
	case CircleOp:
		p.shape(p.circlePath(o.CX, o.CY, o.R), o.Style, true)
	case PathOp:
		if len(o.Points) < 2 {
			return
		}
		var path raster.Path
		path.Start(p.pt(o.Points[0].X, o.Points[0].Y))
		for _, q := range o.Points[1:] {
			path.Add1(p.pt(q.X, q.Y))
		}
		if o.Closed {
			path.Add1(p.pt(o.Points[0].X, o.Points[0].Y))
		}
		if len(o.Style.Dash) > 0 && o.Style.Stroke != nil {
			if o.Style.Fill != nil && o.Closed {
				p.fill(path, o.Style.Fill)
			}
			pts := o.Points
			if o.Closed {
				pts = append(append([]Point{}, pts...), pts[0])
			}
			p.stroke(p.dashPath(pts, o.Style.Dash), o.Style.Stroke, o.Style.Width)
			return
		}
		p.shape(path, o.Style, o.Closed)
	case TextOp:
		p.text(o)
	case ImageOp:
		p.image(o)
	}
}

func (p *painter) shape(path raster.Path, s Shape, closed bool) {
	if s.Fill != nil && closed {
		p.fill(path, s.Fill)
	}
	if s.Stroke != nil && s.Width > 0 {
		p.stroke(path, s.Stroke, s.Width)
	}
}

func (p *painter) fill(path raster.Path, c color.Color) {
	p.ras.Clear()
	p.ras.AddPath(path)
	p.paint.SetColor(c)
	p.ras.Rasterize(p.paint)
}

func (p *painter) stroke(path raster.Path, c color.Color, width float64) {
	w := width * p.lineScale()
	if w < 1 {
		w = 1
	}
	p.ras.Clear()
	p.ras.AddStroke(path, toFixed(w), raster.ButtCapper, raster.RoundJoiner)
	p.paint.SetColor(c)
	p.ras.Rasterize(p.paint)
}

// circlePath approximates a circle with eight quadratic segments.
func (p *painter) circlePath(cx, cy, r float64) raster.Path {
	const n = 8
	var path raster.Path
	k := r / math.Cos(math.Pi/n)
	path.Start(p.pt(cx+r, cy))
	for i := 1; i <= n; i++ {
		mid := float64(2*i-1) * math.Pi / n
		end := float64(2*i) * math.Pi / n
		path.Add2(
			p.pt(cx+k*math.Cos(mid), cy+k*math.Sin(mid)),
			p.pt(cx+r*math.Cos(end), cy+r*math.Sin(end)),
		)
	}
	return path
}

func (p *painter) roundRectPath(x, y, w, h, r float64) raster.Path {
	if w < 0 {
		x, w = x+w, -w
	}
	if h < 0 {
		y, h = y+h, -h
	}
	r = math.Max(0, math.Min(r, math.Min(w, h)/2))
	var path raster.Path
	if r == 0 {
		path.Start(p.pt(x, y))
		path.Add1(p.pt(x+w, y))
		path.Add1(p.pt(x+w, y+h))
		path.Add1(p.pt(x, y+h))
		path.Add1(p.pt(x, y))
		return path
	}
	path.Start(p.pt(x+r, y))
	path.Add1(p.pt(x+w-r, y))
	path.Add2(p.pt(x+w, y), p.pt(x+w, y+r))
	path.Add1(p.pt(x+w, y+h-r))
	path.Add2(p.pt(x+w, y+h), p.pt(x+w-r, y+h))
	path.Add1(p.pt(x+r, y+h))
	path.Add2(p.pt(x, y+h), p.pt(x, y+h-r))
	path.Add1(p.pt(x, y+r))
	path.Add2(p.pt(x, y), p.pt(x+r, y))
	return path
}

// dashPath splits a polyline into separate sub-paths following pattern.
func (p *painter) dashPath(points []Point, pattern []float64) raster.Path {
	var path raster.Path
	total := 0.0
	for _, d := range pattern {
		total += d
	}
	if total <= 0 {
		path.Start(p.pt(points[0].X, points[0].Y))
		for _, q := range points[1:] {
			path.Add1(p.pt(q.X, q.Y))
		}
		return path
	}
	idx, left, on := 0, pattern[0], true
	penDown := false
	for i := 1; i < len(points); i++ {
		a, b := points[i-1], points[i]
		seg := math.Hypot(b.X-a.X, b.Y-a.Y)
		pos := 0.0
		for pos < seg {
			step := math.Min(left, seg-pos)
			t0, t1 := pos/seg, (pos+step)/seg
			if on {
				if !penDown {
					path.Start(p.pt(a.X+(b.X-a.X)*t0, a.Y+(b.Y-a.Y)*t0))
					penDown = true
				}
				path.Add1(p.pt(a.X+(b.X-a.X)*t1, a.Y+(b.Y-a.Y)*t1))
			}
			pos += step
			left -= step
			if left <= 0 {
				idx = (idx + 1) % len(pattern)
				left = pattern[idx]
				on = !on
				penDown = false
			}
		}
	}
	return path
}

func (p *painter) text(o TextOp) {
	if o.Text == "" {
		return
	}
	end := p.drawText(o.Text, o.Style, o.X*p.sx, o.Y*p.sy)
	if sfx := o.Suffix; sfx != nil && sfx.Text != "" {
		st := sfx.Style
		st.Align = TextAlignLeft
		p.drawText(sfx.Text, st, end, (o.Y+sfx.DY)*p.sy)
	}
}

// drawText draws s at the bitmap position (x, y) and returns the x where
// the drawn text ends.
func (p *painter) drawText(s string, st TextStyle, x, y float64) float64 {
	face := p.fonts.Face(st, p.dpi)
	if st.MaxWidth > 0 {
		s = Ellipsize(face, s, toFixed(st.MaxWidth*p.sx))
	}
	width := toFloat(font.MeasureString(face, s))
	m := face.Metrics()
	ascent, descent := toFloat(m.Ascent), toFloat(m.Descent)

	switch st.Align {
	case TextAlignCenter:
		x -= width / 2
	case TextAlignRight:
		x -= width
	}
	switch st.VAlign {
	case VAlignTop:
		y += ascent
	case VAlignMiddle:
		y += (ascent - descent) / 2
	case VAlignBottom:
		y -= descent
	}
	c := st.Color
	if c == nil {
		c = color.Black
	}
	d := &font.Drawer{
		Dst:  p.img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.Point26_6{X: toFixed(x), Y: toFixed(y)},
	}
	d.DrawString(s)
	return x + width
}

func (p *painter) image(o ImageOp) {
	src := o.Image.Bounds()
	if src.Empty() {
		return
	}
	box := image.Rect(
		int(math.Round(o.X*p.sx)), int(math.Round(o.Y*p.sy)),
		int(math.Round((o.X+o.W)*p.sx)), int(math.Round((o.Y+o.H)*p.sy)),
	)
	dst := fitRect(box, src, o.Mode)
	if dst.Empty() {
		return
	}
	if o.Mode == ScaleModeFill {
		clip := box.Intersect(p.img.Bounds())
		tmp := image.NewRGBA(dst)
		xdraw.NearestNeighbor.Scale(tmp, dst, o.Image, src, xdraw.Over, nil)
		draw.Draw(p.img, clip, tmp, clip.Min, draw.Over)
		return
	}
	xdraw.NearestNeighbor.Scale(p.img, dst, o.Image, src, xdraw.Over, nil)
}

// fitRect places an image of size src into dst according to mode. Fit keeps
// the aspect ratio inside dst; Fill keeps it and covers dst.
func fitRect(dst, src image.Rectangle, mode ScaleMode) image.Rectangle {
	if mode == ScaleModeStretch {
		return dst
	}
	scaleX := float64(dst.Dx()) / float64(src.Dx())
	scaleY := float64(dst.Dy()) / float64(src.Dy())
	scale := math.Min(scaleX, scaleY)
	if mode == ScaleModeFill {
		scale = math.Max(scaleX, scaleY)
	}
	w := int(math.Round(float64(src.Dx()) * scale))
	h := int(math.Round(float64(src.Dy()) * scale))
	x := dst.Min.X + (dst.Dx()-w)/2
	y := dst.Min.Y + (dst.Dy()-h)/2
	return image.Rect(x, y, x+w, y+h)
}
