package melon

import (
	"github.com/go-gl/mathgl/mgl64"
)

// parkedPosition is where pooled pieces wait, far below the terrain.
var parkedPosition = mgl64.Vec3{0, -9999, 0}

// BrokenPiece is the visual left behind by a smashed melon.
type BrokenPiece struct {
	Serial   int
	Position mgl64.Vec3
	Yaw      float64
	Visible  bool

	pooled bool
}

func (b *BrokenPiece) park() {
	b.Visible = false
	b.Position = parkedPosition
	b.Yaw = 0
}

// BrokenPool is a free list of broken pieces. It grows without bound but
// never builds a piece while one is free.
type BrokenPool struct {
	free  []*BrokenPiece
	built int
}

func newBrokenPool(prewarm int) *BrokenPool {
	p := &BrokenPool{}
	for range prewarm {
		p.Release(p.build())
	}
	return p
}

func (p *BrokenPool) build() *BrokenPiece {
	p.built++
	b := &BrokenPiece{Serial: p.built}
	b.park()
	return b
}

// Acquire pops a free piece, building one only when the list is empty.
func (p *BrokenPool) Acquire() *BrokenPiece {
	if n := len(p.free); n > 0 {
		b := p.free[n-1]
		p.free = p.free[:n-1]
		b.pooled = false
		return b
	}
	return p.build()
}

// Release parks a piece and returns it to the free list. Releasing a piece
// that is already free is refused.
func (p *BrokenPool) Release(b *BrokenPiece) bool {
	if b == nil || b.pooled {
		return false
	}
	b.park()
	b.pooled = true
	p.free = append(p.free, b)
	return true
}

// Free is the number of pieces waiting for reuse.
func (p *BrokenPool) Free() int { return len(p.free) }

// Built is the number of pieces ever constructed.
func (p *BrokenPool) Built() int { return p.built }
