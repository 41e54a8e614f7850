package terrain

import (
	"math"
	"testing"
)

func TestFlatHeightAt(t *testing.T) {
	hf := Flat(16, 100, 3)

	tests := []struct {
		name     string
		x, z     float64
		expected float64
	}{
		{"origin", 0, 0, 3},
		{"corner", -50, -50, 3},
		{"far corner", 50, 50, 3},
		{"outside", 60, 0, -7},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := hf.HeightAt(tc.x, tc.z, -7); got != tc.expected {
				t.Errorf("HeightAt(%v, %v) = %v, expected %v", tc.x, tc.z, got, tc.expected)
			}
		})
	}
}

func TestHeightAtInterpolatesTriangles(t *testing.T) {
	// 2x2 samples over 10 units: only h10 is raised
	hf := FromSamples(2, 10, []float64{
		0, 4,
		0, 0,
	})

	tests := []struct {
		x, z, expected float64
	}{
		{-5, -5, 0},
		{5, -5, 4},
		{0, -5, 2},
		{0, 0, 2},  // on the diagonal
		{5, 5, 0},  // h11
		{5, 0, 2},  // upper triangle edge
		{-5, 5, 0}, // h01
	}
	for _, tc := range tests {
		if got := hf.HeightAt(tc.x, tc.z, math.NaN()); math.Abs(got-tc.expected) > 1e-9 {
			t.Errorf("HeightAt(%v, %v) = %v, expected %v", tc.x, tc.z, got, tc.expected)
		}
	}
}

func TestHeightAtContinuousAcrossCells(t *testing.T) {
	p := DefaultParams()
	p.Size = 48
	p.Extent = 150
	hf := New(p)

	step := hf.Step()
	for j := 1; j < hf.Size()-1; j += 7 {
		for i := 1; i < hf.Size()-1; i += 5 {
			edgeX := -hf.Extent()/2 + float64(i)*step
			z := -hf.Extent()/2 + (float64(j)+0.3)*step
			left := hf.HeightAt(edgeX-1e-7, z, 0)
			right := hf.HeightAt(edgeX+1e-7, z, 0)
			if math.Abs(left-right) > 1e-4 {
				t.Fatalf("discontinuity at x=%v z=%v: %v vs %v", edgeX, z, left, right)
			}
		}
	}
}

func TestNewDeterministic(t *testing.T) {
	p := DefaultParams()
	p.Size = 32
	a := New(p)
	b := New(p)

	for j := 0; j < a.Size(); j++ {
		for i := 0; i < a.Size(); i++ {
			if a.Sample(i, j) != b.Sample(i, j) {
				t.Fatalf("same seed produced different heights at (%d,%d)", i, j)
			}
		}
	}
	if a.MinHeight() > a.MaxHeight() {
		t.Errorf("MinHeight %v > MaxHeight %v", a.MinHeight(), a.MaxHeight())
	}
	if a.OffsetY() != -4 {
		t.Errorf("OffsetY = %v, expected -4", a.OffsetY())
	}
}

func TestNormalFlat(t *testing.T) {
	hf := Flat(8, 70, 0)
	nx, ny, nz := hf.Normal(0, 0)
	if math.Abs(nx) > 1e-9 || math.Abs(ny-1) > 1e-9 || math.Abs(nz) > 1e-9 {
		t.Errorf("Normal = (%v, %v, %v), expected (0, 1, 0)", nx, ny, nz)
	}
}
