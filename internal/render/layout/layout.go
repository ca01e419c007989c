package layout

import "image"

// Inset shrinks rect by paddingPx on all sides.
func Inset(rect image.Rectangle, paddingPx int) image.Rectangle {
	return InsetXY(rect, paddingPx, paddingPx)
}

// InsetXY shrinks rect by dx on the left and right and dy on the top and bottom.
func InsetXY(rect image.Rectangle, dx, dy int) image.Rectangle {
	if dx <= 0 && dy <= 0 {
		return rect
	}
	rect = Normalize(rect)
	minX, minY := rect.Min.X+dx, rect.Min.Y+dy
	maxX, maxY := rect.Max.X-dx, rect.Max.Y-dy
	if minX > maxX || minY > maxY {
		// Over-inset collapses onto the center.
		c := image.Pt((rect.Min.X+rect.Max.X)/2, (rect.Min.Y+rect.Max.Y)/2)
		return image.Rectangle{Min: c, Max: c}
	}
	return image.Rect(minX, minY, maxX, maxY)
}

// Normalize ensures Min is <= Max on both axes.
func Normalize(rect image.Rectangle) image.Rectangle {
	if rect.Min.X > rect.Max.X {
		rect.Min.X, rect.Max.X = rect.Max.X, rect.Min.X
	}
	if rect.Min.Y > rect.Max.Y {
		rect.Min.Y, rect.Max.Y = rect.Max.Y, rect.Min.Y
	}
	return rect
}

// SplitVertical splits rect into left and right parts.
// leftWidthPx is clamped to [0, rect.Dx()].
func SplitVertical(rect image.Rectangle, leftWidthPx int) (left image.Rectangle, right image.Rectangle) {
	rect = Normalize(rect)
	leftWidthPx = clamp(leftWidthPx, 0, rect.Dx())
	left = image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+leftWidthPx, rect.Max.Y)
	right = image.Rect(rect.Min.X+leftWidthPx, rect.Min.Y, rect.Max.X, rect.Max.Y)
	return left, right
}

// SplitHorizontal splits rect into top and bottom parts.
// topHeightPx is clamped to [0, rect.Dy()].
func SplitHorizontal(rect image.Rectangle, topHeightPx int) (top image.Rectangle, bottom image.Rectangle) {
	rect = Normalize(rect)
	topHeightPx = clamp(topHeightPx, 0, rect.Dy())
	top = image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y+topHeightPx)
	bottom = image.Rect(rect.Min.X, rect.Min.Y+topHeightPx, rect.Max.X, rect.Max.Y)
	return top, bottom
}

// Columns divides rect into n columns of width rect.Dx()/n. Leftover pixels
// stay unused on the right so every column has the same width.
func Columns(rect image.Rectangle, n int) []image.Rectangle {
	if n <= 0 {
		return nil
	}
	rect = Normalize(rect)
	w := rect.Dx() / n
	out := make([]image.Rectangle, n)
	for i := range out {
		x := rect.Min.X + i*w
		out[i] = image.Rect(x, rect.Min.Y, x+w, rect.Max.Y)
	}
	return out
}

// Cuts splits rect at the given x offsets from its left edge, producing
// len(offsets)+1 columns.
func Cuts(rect image.Rectangle, offsets ...int) []image.Rectangle {
	rect = Normalize(rect)
	out := make([]image.Rectangle, 0, len(offsets)+1)
	rest := rect
	consumed := 0
	for _, off := range offsets {
		var left image.Rectangle
		left, rest = SplitVertical(rest, off-consumed)
		consumed += left.Dx()
		out = append(out, left)
	}
	return append(out, rest)
}

// Grid returns cols×rows cells of size cellW×cellH starting at origin,
// in row-major order.
func Grid(origin image.Point, cols, rows, cellW, cellH int) []image.Rectangle {
	if cols <= 0 || rows <= 0 {
		return nil
	}
	out := make([]image.Rectangle, 0, cols*rows)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			p0 := origin.Add(image.Pt(c*cellW, r*cellH))
			out = append(out, image.Rectangle{Min: p0, Max: p0.Add(image.Pt(cellW, cellH))})
		}
	}
	return out
}

// AnchorTopLeft returns a rectangle of size (widthPx,heightPx) placed in the top-left of rect.
func AnchorTopLeft(rect image.Rectangle, widthPx, heightPx int) image.Rectangle {
	rect = Normalize(rect)
	widthPx = clamp(widthPx, 0, rect.Dx())
	heightPx = clamp(heightPx, 0, rect.Dy())
	return image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+widthPx, rect.Min.Y+heightPx)
}

// AnchorBottomRight returns a rectangle of size (widthPx,heightPx) placed in the bottom-right of rect.
func AnchorBottomRight(rect image.Rectangle, widthPx, heightPx int) image.Rectangle {
	rect = Normalize(rect)
	widthPx = clamp(widthPx, 0, rect.Dx())
	heightPx = clamp(heightPx, 0, rect.Dy())
	return image.Rect(rect.Max.X-widthPx, rect.Max.Y-heightPx, rect.Max.X, rect.Max.Y)
}

// FitSquare returns the largest square that fits into rect, anchored at the top-left.
func FitSquare(rect image.Rectangle) image.Rectangle {
	rect = Normalize(rect)
	size := rect.Dx()
	if rect.Dy() < size {
		size = rect.Dy()
	}
	return AnchorTopLeft(rect, size, size)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
