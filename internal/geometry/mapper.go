// Package geometry converts between canvas pixel coordinates used by the
// editor and the percentage-based coordinates rendered on the storefront.
package geometry

import "math"

const (
	// MinElementWidth is the smallest width an element can be resized to.
	MinElementWidth = 50
	// MinElementHeight is the smallest height an element can be resized to.
	MinElementHeight = 20
	// MinReadableFontPx is the floor applied when scaling font sizes down.
	MinReadableFontPx = 8

	fallbackWidth  = 150
	fallbackHeight = 100
)

// Canvas describes the design surface an element lives on.
type Canvas struct {
	Width  int
	Height int
}

// Rect is an element's position and size in canvas pixels.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// DisplayRect is a rect expressed as percentages of the canvas, suitable for
// positioning over a responsive product image.
type DisplayRect struct {
	LeftPct   float64
	TopPct    float64
	WidthPct  float64
	HeightPct float64
}

// Field identifies which rect dimension an edit targets.
type Field string

const (
	FieldX      Field = "x"
	FieldY      Field = "y"
	FieldWidth  Field = "width"
	FieldHeight Field = "height"
)

// ToDisplay maps a canvas rect onto percentage coordinates.
func ToDisplay(rect Rect, canvas Canvas) DisplayRect {
	if canvas.Width <= 0 || canvas.Height <= 0 {
		return DisplayRect{}
	}
	return DisplayRect{
		LeftPct:   float64(rect.X) / float64(canvas.Width) * 100,
		TopPct:    float64(rect.Y) / float64(canvas.Height) * 100,
		WidthPct:  float64(rect.Width) / float64(canvas.Width) * 100,
		HeightPct: float64(rect.Height) / float64(canvas.Height) * 100,
	}
}

// ClampEdit bounds a proposed value for a single field so the element stays
// inside the canvas. Position edits account for the element's current size,
// and size edits account for the element's current position. A non-positive
// size proposal falls back to the stock size before clamping; when the
// remaining span is below the minimum, the minimum wins.
func ClampEdit(field Field, proposed int, rect Rect, canvas Canvas) int {
	switch field {
	case FieldX:
		return clampInt(proposed, 0, canvas.Width-rect.Width)
	case FieldY:
		return clampInt(proposed, 0, canvas.Height-rect.Height)
	case FieldWidth:
		if proposed <= 0 {
			proposed = fallbackWidth
		}
		return maxInt(MinElementWidth, minInt(canvas.Width-rect.X, proposed))
	case FieldHeight:
		if proposed <= 0 {
			proposed = fallbackHeight
		}
		return maxInt(MinElementHeight, minInt(canvas.Height-rect.Y, proposed))
	}
	return proposed
}

// ClampRect repairs a rect loaded from stored data so it is fully contained in
// the canvas. Position is clamped into the canvas first so the size bounds are
// computed against an in-range origin.
func ClampRect(rect Rect, canvas Canvas) Rect {
	repaired := rect
	repaired.X = clampInt(repaired.X, 0, maxInt(0, canvas.Width-1))
	repaired.Y = clampInt(repaired.Y, 0, maxInt(0, canvas.Height-1))
	repaired.Width = ClampEdit(FieldWidth, repaired.Width, repaired, canvas)
	repaired.Height = ClampEdit(FieldHeight, repaired.Height, repaired, canvas)
	repaired.X = ClampEdit(FieldX, repaired.X, repaired, canvas)
	repaired.Y = ClampEdit(FieldY, repaired.Y, repaired, canvas)
	return repaired
}

// ScaleFontSize shrinks a font size by the given display scale while keeping
// it readable.
func ScaleFontSize(fontSize int, scale float64) float64 {
	return math.Max(MinReadableFontPx, float64(fontSize)*scale)
}

func clampInt(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
