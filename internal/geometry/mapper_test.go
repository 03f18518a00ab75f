package geometry

import "testing"

var defaultCanvas = Canvas{Width: 1000, Height: 1000}

func TestToDisplay(t *testing.T) {
	display := ToDisplay(Rect{X: 300, Y: 300, Width: 200, Height: 50}, defaultCanvas)
	if display.LeftPct != 30 {
		t.Fatalf("expected left 30%%, got %f", display.LeftPct)
	}
	if display.TopPct != 30 {
		t.Fatalf("expected top 30%%, got %f", display.TopPct)
	}
	if display.WidthPct != 20 {
		t.Fatalf("expected width 20%%, got %f", display.WidthPct)
	}
	if display.HeightPct != 5 {
		t.Fatalf("expected height 5%%, got %f", display.HeightPct)
	}
}

func TestToDisplayDegenerateCanvas(t *testing.T) {
	display := ToDisplay(Rect{X: 10, Y: 10, Width: 50, Height: 50}, Canvas{})
	if display != (DisplayRect{}) {
		t.Fatalf("expected zero display rect, got %+v", display)
	}
}

func TestClampEditPosition(t *testing.T) {
	rect := Rect{X: 300, Y: 300, Width: 200, Height: 50}

	if got := ClampEdit(FieldX, -40, rect, defaultCanvas); got != 0 {
		t.Fatalf("expected x clamped to 0, got %d", got)
	}
	if got := ClampEdit(FieldX, 950, rect, defaultCanvas); got != 800 {
		t.Fatalf("expected x clamped to 800, got %d", got)
	}
	if got := ClampEdit(FieldY, 990, rect, defaultCanvas); got != 950 {
		t.Fatalf("expected y clamped to 950, got %d", got)
	}
	if got := ClampEdit(FieldY, 120, rect, defaultCanvas); got != 120 {
		t.Fatalf("expected y unchanged, got %d", got)
	}
}

func TestClampEditSize(t *testing.T) {
	rect := Rect{X: 900, Y: 0, Width: 200, Height: 50}

	// Width is bounded by the space remaining to the right of x.
	if got := ClampEdit(FieldWidth, 200, rect, defaultCanvas); got != 100 {
		t.Fatalf("expected width clamped to 100, got %d", got)
	}
	if got := ClampEdit(FieldWidth, 10, rect, defaultCanvas); got != MinElementWidth {
		t.Fatalf("expected width clamped to %d, got %d", MinElementWidth, got)
	}
	if got := ClampEdit(FieldHeight, 5, rect, defaultCanvas); got != MinElementHeight {
		t.Fatalf("expected height clamped to %d, got %d", MinElementHeight, got)
	}
	if got := ClampEdit(FieldHeight, 2000, rect, defaultCanvas); got != 1000 {
		t.Fatalf("expected height clamped to 1000, got %d", got)
	}
}

func TestClampEditFallbacks(t *testing.T) {
	rect := Rect{X: 300, Y: 300, Width: 200, Height: 50}

	// Only unusable proposals fall back to the stock dimensions.
	if got := ClampEdit(FieldWidth, 0, rect, defaultCanvas); got != fallbackWidth {
		t.Fatalf("expected fallback width %d, got %d", fallbackWidth, got)
	}
	if got := ClampEdit(FieldHeight, -10, rect, defaultCanvas); got != fallbackHeight {
		t.Fatalf("expected fallback height %d, got %d", fallbackHeight, got)
	}

	// When the element sits so close to the edge that even the minimum size
	// cannot fit, the minimum wins over the remaining span.
	edge := Rect{X: 980, Y: 990, Width: 200, Height: 50}
	if got := ClampEdit(FieldWidth, 300, edge, defaultCanvas); got != MinElementWidth {
		t.Fatalf("expected minimum width %d, got %d", MinElementWidth, got)
	}
	if got := ClampEdit(FieldHeight, 300, edge, defaultCanvas); got != MinElementHeight {
		t.Fatalf("expected minimum height %d, got %d", MinElementHeight, got)
	}
}

func TestClampRectRepairsStoredGeometry(t *testing.T) {
	tests := []struct {
		name string
		in   Rect
		want Rect
	}{
		{
			name: "in range untouched",
			in:   Rect{X: 300, Y: 300, Width: 200, Height: 50},
			want: Rect{X: 300, Y: 300, Width: 200, Height: 50},
		},
		{
			name: "negative origin",
			in:   Rect{X: -50, Y: -10, Width: 200, Height: 50},
			want: Rect{X: 0, Y: 0, Width: 200, Height: 50},
		},
		{
			name: "origin beyond canvas",
			in:   Rect{X: 1500, Y: 1200, Width: 200, Height: 50},
			want: Rect{X: 950, Y: 980, Width: 50, Height: 20},
		},
		{
			name: "oversize dimensions",
			in:   Rect{X: 100, Y: 100, Width: 2000, Height: 1500},
			want: Rect{X: 100, Y: 100, Width: 900, Height: 900},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ClampRect(tc.in, defaultCanvas)
			if got != tc.want {
				t.Fatalf("expected %+v, got %+v", tc.want, got)
			}
			if got.X+got.Width > defaultCanvas.Width {
				t.Fatalf("rect overflows canvas horizontally: %+v", got)
			}
			if got.Y+got.Height > defaultCanvas.Height {
				t.Fatalf("rect overflows canvas vertically: %+v", got)
			}
		})
	}
}

func TestClampRectIdempotent(t *testing.T) {
	in := Rect{X: 1500, Y: -40, Width: 5, Height: 9000}
	once := ClampRect(in, defaultCanvas)
	twice := ClampRect(once, defaultCanvas)
	if once != twice {
		t.Fatalf("expected idempotent clamp, got %+v then %+v", once, twice)
	}
}

func TestScaleFontSize(t *testing.T) {
	if got := ScaleFontSize(18, 1); got != 18 {
		t.Fatalf("expected 18, got %f", got)
	}
	if got := ScaleFontSize(18, 0.5); got != 9 {
		t.Fatalf("expected 9, got %f", got)
	}
	// Thumbnail scale bottoms out at the readable floor.
	if got := ScaleFontSize(18, 0.4); got != MinReadableFontPx {
		t.Fatalf("expected floor %d, got %f", MinReadableFontPx, got)
	}
}
