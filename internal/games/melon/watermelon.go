package melon

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/vovakirdan/melon-smash/internal/config"
	"github.com/vovakirdan/melon-smash/internal/core"
	"github.com/vovakirdan/melon-smash/internal/physics"
	"github.com/vovakirdan/melon-smash/internal/terrain"
)

// evictEpsilon absorbs rounding in the summed tick deltas.
const evictEpsilon = 1e-9

// WholeBody is an intact melon registered with physics.
type WholeBody struct {
	Body physics.BodyID
	Pose physics.Pose
}

// Watermelon is one smashable target. It holds either a whole body or a
// broken piece, never both, and leaves the field once it has neither.
type Watermelon struct {
	ID     int
	Whole  *WholeBody
	Broken *BrokenPiece
	Radius float64

	OutOfBounds   float64
	BlinkElapsed  float64
	BlinkDuration float64
}

// Position is the centre of whichever representation is live.
func (m *Watermelon) Position() mgl64.Vec3 {
	switch {
	case m.Whole != nil:
		return m.Whole.Pose.Position
	case m.Broken != nil:
		return m.Broken.Position
	}
	return mgl64.Vec3{}
}

// Field owns every watermelon, its physics body and the broken pool.
// Nothing else adds, removes or moves melons.
type Field struct {
	wcfg       config.WatermelonConfig
	bcfg       config.BrokenConfig
	bounds     config.BoundsConfig
	evictAfter float64

	world     physics.World
	ground    *terrain.HeightField
	rng       *rand.Rand
	particles *Particles

	radius       float64
	brokenOffset float64

	melons []*Watermelon
	pool   *BrokenPool
	nextID int
}

type fieldDeps struct {
	world     physics.World
	ground    *terrain.HeightField
	rng       *rand.Rand
	particles *Particles
}

func newField(cfg config.MelonConfig, deps fieldDeps, radius, brokenOffset float64) *Field {
	return &Field{
		wcfg:         cfg.Watermelon,
		bcfg:         cfg.Broken,
		bounds:       cfg.Bounds,
		evictAfter:   cfg.Round.EvictionSeconds,
		world:        deps.world,
		ground:       deps.ground,
		rng:          deps.rng,
		particles:    deps.particles,
		radius:       radius,
		brokenOffset: brokenOffset,
		pool:         newBrokenPool(cfg.Broken.PoolPrewarm),
	}
}

// Melons returns the active set.
func (f *Field) Melons() []*Watermelon { return f.melons }

// Pool returns the broken piece pool.
func (f *Field) Pool() *BrokenPool { return f.pool }

// WholeCount is the number of intact melons.
func (f *Field) WholeCount() int {
	n := 0
	for _, m := range f.melons {
		if m.Whole != nil {
			n++
		}
	}
	return n
}

func (f *Field) groundAt(x, z, fallback float64) float64 {
	return f.ground.HeightAt(x, z, fallback)
}

// Spawn drops n new melons from the sky.
func (f *Field) Spawn(n int) {
	for range n {
		pos := f.findSpawn(f.radius)
		opts := physics.BodyOptions{
			Kind:           physics.Dynamic,
			Mass:           f.wcfg.Mass,
			LinearDamping:  f.wcfg.LinearDamping,
			AngularDamping: f.wcfg.AngularDamping,
			Restitution:    f.wcfg.Restitution,
			Friction:       f.wcfg.Friction,
			LinearSleep:    f.wcfg.SleepLinear,
			AngularSleep:   f.wcfg.SleepAngular,
		}
		pose := physics.NewPose(pos)
		f.nextID++
		f.melons = append(f.melons, &Watermelon{
			ID:     f.nextID,
			Whole:  &WholeBody{Body: f.world.AddSphereBody(pose, f.radius, opts), Pose: pose},
			Radius: f.radius,
		})
	}
}

// findSpawn tries random candidates until one clears every whole melon.
// When none does, the first candidate is used anyway.
func (f *Field) findSpawn(radius float64) mgl64.Vec3 {
	var first mgl64.Vec3
	for i := range f.wcfg.SpawnAttempts {
		c := f.spawnCandidate()
		if i == 0 {
			first = c
		}
		if f.spawnClear(c.X(), c.Z(), radius) {
			return c
		}
	}
	return first
}

func (f *Field) spawnCandidate() mgl64.Vec3 {
	rangeX := math.Abs(f.bounds.MaxX-f.bounds.MinX)*0.5 - f.wcfg.SpawnMargin
	rangeZ := math.Abs(f.bounds.MaxZ-f.bounds.MinZ)*0.5 - f.wcfg.SpawnMargin
	base := f.wcfg.SpawnBase
	x := base[0] + spread(f.rng, rangeX*2)
	z := base[2] + spread(f.rng, rangeZ*2)
	y := base[1] + f.wcfg.DropHeight + f.rng.Float64()*f.wcfg.DropJitter
	return mgl64.Vec3{x, y, z}
}

func (f *Field) spawnClear(x, z, radius float64) bool {
	for _, m := range f.melons {
		if m.Whole == nil {
			continue
		}
		p := m.Whole.Pose.Position
		dx := p.X() - x
		dz := p.Z() - z
		r := radius + m.Radius + f.wcfg.SpawnGap
		if dx*dx+dz*dz < r*r {
			return false
		}
	}
	return true
}

// Sync pulls each whole melon's pose from physics, then eases it toward
// resting on the terrain and pushes the correction back. Melons without a
// live body are skipped.
func (f *Field) Sync() {
	for _, m := range f.melons {
		if m.Whole == nil {
			continue
		}
		pose, err := f.world.ModelPose(m.Whole.Body)
		if err != nil {
			continue
		}
		m.Whole.Pose = pose

		p := pose.Position
		target := f.groundAt(p.X(), p.Z(), p.Y()) + m.Radius
		if math.Abs(p.Y()-target) < f.wcfg.ClampThreshold {
			continue
		}
		m.Whole.Pose.Position[1] = core.Lerp(p.Y(), target, f.wcfg.ClampFactor)
		f.world.SetPhysicsPose(m.Whole.Body, m.Whole.Pose) //nolint:errcheck
	}
}

// UpdateBounds accumulates time spent outside the play area and replaces
// melons that stayed out too long. It returns the evicted melons.
func (f *Field) UpdateBounds(dt float64) []*Watermelon {
	var evicted []*Watermelon
	for _, m := range f.melons {
		if m.Whole == nil {
			continue
		}
		p := m.Whole.Pose.Position
		if f.bounds.Contains(p.X(), p.Z()) {
			m.OutOfBounds = 0
			continue
		}
		m.OutOfBounds += dt
		if m.OutOfBounds >= f.evictAfter-evictEpsilon {
			evicted = append(evicted, m)
		}
	}
	for _, m := range evicted {
		f.remove(m)
		f.Spawn(1)
	}
	return evicted
}

// Break turns a whole melon into a broken piece at the contact point and
// drops a replacement. It returns false if the melon was not whole.
func (f *Field) Break(m *Watermelon, contact mgl64.Vec3) bool {
	if m.Whole == nil {
		return false
	}
	f.world.RemoveBody(m.Whole.Body) //nolint:errcheck
	m.Whole = nil
	f.particles.Spawn(contact)
	f.placeBroken(m, contact)
	f.Spawn(1)
	return true
}

func (f *Field) placeBroken(m *Watermelon, contact mgl64.Vec3) {
	if m.Broken != nil {
		f.pool.Release(m.Broken)
	}
	b := f.pool.Acquire()
	ground := f.groundAt(contact.X(), contact.Z(), contact.Y())
	b.Visible = true
	b.Position = mgl64.Vec3{contact.X(), ground + f.brokenOffset, contact.Z()}
	b.Yaw = f.rng.Float64() * 2 * math.Pi
	m.Broken = b
	m.BlinkElapsed = 0
	m.BlinkDuration = f.bcfg.BlinkDuration
}

// UpdateBroken advances every blink. Pieces whose time is up go back to
// the pool and their melon leaves the field. It returns how many were
// recycled.
func (f *Field) UpdateBroken(dt float64) int {
	recycled := 0
	for _, m := range f.melons {
		if m.Broken == nil {
			continue
		}
		m.BlinkElapsed += dt
		if m.BlinkElapsed >= m.BlinkDuration {
			if f.pool.Release(m.Broken) {
				recycled++
			}
			m.Broken = nil
			m.BlinkElapsed = 0
			m.BlinkDuration = 0
			continue
		}
		m.Broken.Visible = BlinkVisible(f.bcfg, m.BlinkElapsed, m.BlinkDuration)
	}
	if recycled > 0 {
		f.melons = dropSpent(f.melons)
	}
	return recycled
}

// BlinkVisible decides whether a broken piece is drawn. It stays solid for
// the grace period, then blinks with an interval that shrinks toward the
// end of its life.
func BlinkVisible(cfg config.BrokenConfig, elapsed, duration float64) bool {
	if elapsed < cfg.BlinkGrace {
		return true
	}
	since := elapsed - cfg.BlinkGrace
	interval := math.Max(
		cfg.BlinkInterval/math.Pow(cfg.BlinkAcceleration, since/duration),
		cfg.BlinkInterval*cfg.BlinkFloor,
	)
	return int(math.Floor(since/interval))%2 == 0
}

func dropSpent(ms []*Watermelon) []*Watermelon {
	kept := ms[:0]
	for _, m := range ms {
		if m.Whole != nil || m.Broken != nil {
			kept = append(kept, m)
		}
	}
	clear(ms[len(kept):])
	return kept
}

func (f *Field) remove(m *Watermelon) {
	if m.Whole != nil {
		f.world.RemoveBody(m.Whole.Body) //nolint:errcheck
		m.Whole = nil
	}
	if m.Broken != nil {
		f.pool.Release(m.Broken)
		m.Broken = nil
	}
	for i, x := range f.melons {
		if x == m {
			f.melons = append(f.melons[:i], f.melons[i+1:]...)
			return
		}
	}
}

// Clear removes every melon, returning broken pieces to the pool.
func (f *Field) Clear() {
	for _, m := range f.melons {
		if m.Whole != nil {
			f.world.RemoveBody(m.Whole.Body) //nolint:errcheck
			m.Whole = nil
		}
		if m.Broken != nil {
			f.pool.Release(m.Broken)
			m.Broken = nil
		}
	}
	f.melons = nil
}
