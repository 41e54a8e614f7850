// Package core provides fundamental types and utilities shared by the game
// and the platform. It has no Bubble Tea dependency so gameplay stays pure
// and testable.
package core

import "math"

// Rect represents an axis-aligned rectangle in screen cells.
type Rect struct {
	X, Y int // Top-left corner position
	W, H int // Width and height
}

// NewRect creates a new rectangle with the given position and dimensions.
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() int {
	return r.X + r.W
}

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.H
}

// Contains returns true if the point (x, y) is inside this rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// CenteredRect returns a w*h rectangle centred in a screen of sw*sh.
func CenteredRect(sw, sh, w, h int) Rect {
	return NewRect((sw-w)/2, (sh-h)/2, w, h)
}

// Clamp restricts a value to be within [min, max].
func Clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// ClampF restricts a float64 value to be within [min, max].
func ClampF(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// Min returns the smaller of two integers.
func Min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Lerp interpolates from a towards b by t. t is not clamped.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Smoothstep is the cubic Hermite ease 3t²-2t³ over t clamped to [0,1].
func Smoothstep(t float64) float64 {
	t = ClampF(t, 0, 1)
	return t * t * (3 - 2*t)
}

// EuclideanMod returns n mod m in [0, m).
func EuclideanMod(n, m float64) float64 {
	return math.Mod(math.Mod(n, m)+m, m)
}

// NormalizeAngle wraps an angle in radians into [-π, π).
func NormalizeAngle(a float64) float64 {
	return EuclideanMod(a+math.Pi, 2*math.Pi) - math.Pi
}

// RotateAngleTowards moves current towards target along the shortest arc,
// by at most maxDelta radians.
func RotateAngleTowards(current, target, maxDelta float64) float64 {
	delta := NormalizeAngle(target - current)
	if math.Abs(delta) <= maxDelta {
		return target
	}
	if delta < 0 {
		return current - maxDelta
	}
	return current + maxDelta
}

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180
}
