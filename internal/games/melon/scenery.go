package melon

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/vovakirdan/melon-smash/internal/config"
	"github.com/vovakirdan/melon-smash/internal/terrain"
)

// Tree placement around the play area.
const (
	treeScale      = 18
	treeRadius     = 20
	treeGap        = 6
	treeAttempts   = 30
	treeBaseOffset = 40
	treeEdgeMargin = 20
)

// Tree is a decoration outside the play bounds. It has no physics body.
type Tree struct {
	Position mgl64.Vec3
	Yaw      float64
	Radius   float64
}

// placeTrees scatters up to count trees in a ring just outside the
// bounds. A tree that finds no free spot is skipped.
func placeTrees(rng *rand.Rand, bounds config.BoundsConfig, ground *terrain.HeightField, count int) []Tree {
	area := math.Max(math.Max(math.Abs(bounds.MinX), math.Abs(bounds.MaxX)),
		math.Max(math.Abs(bounds.MinZ), math.Abs(bounds.MaxZ)))
	maxRadius := ground.Extent()*0.5 - treeEdgeMargin
	inner := math.Min(area+30, maxRadius-treeEdgeMargin)
	outer := inner + 30

	trees := make([]Tree, 0, count)
	for range count {
		yaw := rng.Float64() * 2 * math.Pi
		for range treeAttempts {
			angle := rng.Float64() * 2 * math.Pi
			r := inner + rng.Float64()*(outer-inner)
			x, z := math.Cos(angle)*r, math.Sin(angle)*r
			if math.Abs(x) > maxRadius || math.Abs(z) > maxRadius {
				continue
			}
			if !treeClear(trees, x, z) {
				continue
			}
			y := ground.HeightAt(x, z, ground.OffsetY()) + treeBaseOffset
			trees = append(trees, Tree{Position: mgl64.Vec3{x, y, z}, Yaw: yaw, Radius: treeRadius})
			break
		}
	}
	return trees
}

func treeClear(trees []Tree, x, z float64) bool {
	for _, t := range trees {
		dx, dz := t.Position.X()-x, t.Position.Z()-z
		need := t.Radius + treeRadius + treeGap
		if dx*dx+dz*dz <= need*need {
			return false
		}
	}
	return true
}
