// Package terrain provides the static heightfield the game is played on.
package terrain

import (
	"math"
	"math/rand"

	perlin "github.com/aquilax/go-perlin"
)

// Params describes how a heightfield is generated.
type Params struct {
	Size       int     // samples per side
	Extent     float64 // world units per side
	MinHeight  float64
	MaxHeight  float64
	Multiplier float64
	Octaves    int
	Seed       int64
}

// DefaultParams returns the field used by the game.
func DefaultParams() Params {
	return Params{
		Size:       192,
		Extent:     600,
		MinHeight:  -18,
		MaxHeight:  26,
		Multiplier: 1.1,
		Octaves:    4,
		Seed:       1,
	}
}

// HeightField is a square grid of heights centred on the world origin.
// Sample (i, j) sits at x = -Extent/2 + i*step, z = -Extent/2 + j*step.
type HeightField struct {
	size     int
	extent   float64
	step     float64
	offsetY  float64
	heights  []float64
	minWorld float64
	maxWorld float64
}

// New generates a heightfield from summed Perlin octaves. The field is
// lowered by the midpoint of the configured height range.
func New(p Params) *HeightField {
	if p.Size < 2 {
		p.Size = 2
	}
	if p.Octaves <= 0 {
		p.Octaves = 4
	}
	if p.Multiplier == 0 {
		p.Multiplier = 1
	}

	rng := rand.New(rand.NewSource(p.Seed))
	noise := perlin.NewPerlin(2, 2, 1, p.Seed)
	zSlice := rng.Float64() * 100
	hRange := p.MaxHeight - p.MinHeight

	n := p.Size * p.Size
	raw := make([]float64, n)
	quality := 1.0
	for octave := 0; octave < p.Octaves; octave++ {
		for i := 0; i < n; i++ {
			x := float64(i % p.Size)
			y := float64(i / p.Size)
			v := noise.Noise3D(x/quality, y/quality, zSlice) * quality * 1.75
			raw[i] += math.Abs(v)/255*hRange + p.MinHeight
		}
		quality *= 5
	}

	hf := &HeightField{
		size:     p.Size,
		extent:   p.Extent,
		step:     p.Extent / float64(p.Size-1),
		offsetY:  -(p.MaxHeight + p.MinHeight) / 2,
		heights:  make([]float64, n),
		minWorld: math.Inf(1),
		maxWorld: math.Inf(-1),
	}
	for i, v := range raw {
		h := v * p.Multiplier
		hf.heights[i] = h
		hf.minWorld = math.Min(hf.minWorld, h)
		hf.maxWorld = math.Max(hf.maxWorld, h)
	}
	return hf
}

// Flat builds a level field at height y. Used by tests and headless tools.
func Flat(size int, extent, y float64) *HeightField {
	if size < 2 {
		size = 2
	}
	hf := &HeightField{
		size:     size,
		extent:   extent,
		step:     extent / float64(size-1),
		heights:  make([]float64, size*size),
		minWorld: y,
		maxWorld: y,
	}
	for i := range hf.heights {
		hf.heights[i] = y
	}
	return hf
}

// FromSamples builds a field from row-major samples (z rows, x columns).
func FromSamples(size int, extent float64, samples []float64) *HeightField {
	hf := &HeightField{
		size:     size,
		extent:   extent,
		step:     extent / float64(size-1),
		heights:  append([]float64(nil), samples...),
		minWorld: math.Inf(1),
		maxWorld: math.Inf(-1),
	}
	for _, h := range hf.heights {
		hf.minWorld = math.Min(hf.minWorld, h)
		hf.maxWorld = math.Max(hf.maxWorld, h)
	}
	return hf
}

func (hf *HeightField) Size() int { return hf.size }
func (hf *HeightField) Extent() float64 { return hf.extent }
func (hf *HeightField) Step() float64 { return hf.step }
func (hf *HeightField) OffsetY() float64 { return hf.offsetY }
func (hf *HeightField) MinHeight() float64 { return hf.minWorld + hf.offsetY }
func (hf *HeightField) MaxHeight() float64 { return hf.maxWorld + hf.offsetY }

// Sample returns the world height of grid point (i, j).
func (hf *HeightField) Sample(i, j int) float64 {
	return hf.heights[j*hf.size+i] + hf.offsetY
}

// Contains reports whether (x, z) lies over the field.
func (hf *HeightField) Contains(x, z float64) bool {
	half := hf.extent / 2
	return x >= -half && x <= half && z >= -half && z <= half
}

// HeightAt returns the surface height under (x, z), or fallback when the
// point lies outside the field. Each grid cell is split into two triangles
// along its (i, j+1)-(i+1, j) diagonal.
func (hf *HeightField) HeightAt(x, z, fallback float64) float64 {
	if !hf.Contains(x, z) {
		return fallback
	}
	half := hf.extent / 2
	gx := (x + half) / hf.step
	gz := (z + half) / hf.step

	i := int(math.Floor(gx))
	j := int(math.Floor(gz))
	if i >= hf.size-1 {
		i = hf.size - 2
	}
	if j >= hf.size-1 {
		j = hf.size - 2
	}
	u := gx - float64(i)
	v := gz - float64(j)

	h00 := hf.Sample(i, j)
	h10 := hf.Sample(i+1, j)
	h01 := hf.Sample(i, j+1)
	h11 := hf.Sample(i+1, j+1)

	if u+v <= 1 {
		return h00 + (h10-h00)*u + (h01-h00)*v
	}
	return h11 + (h01-h11)*(1-u) + (h10-h11)*(1-v)
}

// Normal returns the approximate unit surface normal at (x, z).
func (hf *HeightField) Normal(x, z float64) (nx, ny, nz float64) {
	e := hf.step * 0.5
	hl := hf.HeightAt(x-e, z, 0)
	hr := hf.HeightAt(x+e, z, 0)
	hd := hf.HeightAt(x, z-e, 0)
	hu := hf.HeightAt(x, z+e, 0)
	nx = hl - hr
	ny = 2 * e
	nz = hd - hu
	l := math.Sqrt(nx*nx + ny*ny + nz*nz)
	return nx / l, ny / l, nz / l
}
