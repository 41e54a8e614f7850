package melon

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/vovakirdan/melon-smash/internal/core"
)

func TestClipSpan(t *testing.T) {
	tests := []struct {
		name   string
		c      int
		r      float64
		n      int
		lo, hi int
	}{
		{"inside", 10, 2, 80, 8, 12},
		{"fractional radius", 10, 1.2, 80, 8, 12},
		{"left edge", 1, 3, 80, 0, 4},
		{"right edge", 78, 3, 80, 75, 79},
		{"huge radius", 40, 1e12, 80, 0, 79},
		{"off screen", -50, 3, 80, 0, -47},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			lo, hi := clipSpan(tc.c, tc.r, tc.n)
			if lo != tc.lo || hi != tc.hi {
				t.Errorf("clipSpan(%d, %v, %d) = (%d, %d), expected (%d, %d)", tc.c, tc.r, tc.n, lo, hi, tc.lo, tc.hi)
			}
		})
	}
}

func TestViewDiscCoveringScreen(t *testing.T) {
	eye := mgl64.Vec3{0, 10, -10}
	v := newView(80, 24, eye, mgl64.Vec3{0, 10, 0}, 60, 500)
	screen := core.NewScreen(80, 24)

	// A melon right in front of the lens projects far past every edge.
	v.disc(screen, mgl64.Vec3{0, 10, -8}, 1e6, '@', 'O', core.ColorGreen, core.ColorBrightGreen)

	for _, pt := range [][2]int{{0, 0}, {79, 0}, {40, 12}, {0, 23}, {79, 23}} {
		if got := screen.Get(pt[0], pt[1]); got != '@' {
			t.Errorf("cell %v: got %q, expected the fill rune", pt, got)
		}
	}
}
