package melon

import (
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/vovakirdan/melon-smash/internal/config"
	"github.com/vovakirdan/melon-smash/internal/physics"
	"github.com/vovakirdan/melon-smash/internal/terrain"
)

func testField(t *testing.T) (*Field, *physics.SimpleWorld) {
	t.Helper()
	cfg := config.DefaultMelonConfig()
	world := physics.NewSimpleWorld(
		physics.WithGravity(mgl64.Vec3{0, cfg.Physics.Gravity, 0}),
		physics.WithFixedStep(cfg.Physics.FixedStep, cfg.Physics.MaxSubSteps),
	)
	ground := terrain.Flat(16, 600, 0)
	world.AddHeightFieldBody(ground)
	rng := rand.New(rand.NewSource(7))
	f := newField(cfg, fieldDeps{
		world:     world,
		ground:    ground,
		rng:       rng,
		particles: newParticles(cfg.Particles, rng),
	}, 8, 1.5)
	return f, world
}

func TestFieldSpawnInsideBoundsAndApart(t *testing.T) {
	f, world := testField(t)
	f.Spawn(5)

	if f.WholeCount() != 5 {
		t.Fatalf("WholeCount: got %d, expected 5", f.WholeCount())
	}
	ms := f.Melons()
	for i, m := range ms {
		p := m.Position()
		if !f.bounds.Contains(p.X(), p.Z()) {
			t.Errorf("melon %d spawned outside bounds at %v", m.ID, p)
		}
		if p.Y() < f.wcfg.SpawnBase[1]+f.wcfg.DropHeight {
			t.Errorf("melon %d should start in the sky, got y=%v", m.ID, p.Y())
		}
		if !world.HasBody(m.Whole.Body) {
			t.Errorf("melon %d has no physics body", m.ID)
		}
		for _, o := range ms[i+1:] {
			d := p.Sub(o.Position())
			d[1] = 0
			if d.Len() < m.Radius+o.Radius {
				t.Errorf("melons %d and %d overlap: distance %v", m.ID, o.ID, d.Len())
			}
		}
	}
}

func TestFieldSyncSettlesOnGround(t *testing.T) {
	f, world := testField(t)
	f.Spawn(1)
	for range 600 {
		world.Update(tick)
		f.Sync()
	}
	m := f.Melons()[0]
	if y := m.Position().Y(); y < m.Radius-0.2 || y > m.Radius+0.2 {
		t.Errorf("melon should rest on the ground at %v, got %v", m.Radius, y)
	}
}

func TestFieldBreakReplacesMelon(t *testing.T) {
	f, world := testField(t)
	f.Spawn(3)
	m := f.Melons()[0]
	body := m.Whole.Body
	contact := mgl64.Vec3{5, 3, 7}

	if !f.Break(m, contact) {
		t.Fatal("Break of a whole melon should succeed")
	}
	if world.HasBody(body) {
		t.Error("broken melon must lose its physics body")
	}
	if m.Whole != nil || m.Broken == nil {
		t.Fatal("melon should hold only a broken piece")
	}
	want := mgl64.Vec3{5, f.brokenOffset, 7}
	if !m.Broken.Position.ApproxEqualThreshold(want, 1e-9) {
		t.Errorf("broken position: got %v, expected %v", m.Broken.Position, want)
	}
	if f.WholeCount() != 3 {
		t.Errorf("a replacement should keep 3 whole melons, got %d", f.WholeCount())
	}
	if len(f.particles.Bursts()) != 1 {
		t.Errorf("expected one particle burst, got %d", len(f.particles.Bursts()))
	}
	if f.Break(m, contact) {
		t.Error("breaking a broken melon should be refused")
	}
}

func TestFieldBrokenRecycledAfterBlink(t *testing.T) {
	f, _ := testField(t)
	f.Spawn(1)
	m := f.Melons()[0]
	free := f.Pool().Free()
	f.Break(m, m.Position())
	if f.Pool().Free() != free-1 {
		t.Fatalf("break should take a piece from the pool: free %d, expected %d", f.Pool().Free(), free-1)
	}

	steps := int(f.bcfg.BlinkDuration/tick) + 2
	recycled := 0
	for range steps {
		recycled += f.UpdateBroken(tick)
	}
	if recycled != 1 {
		t.Errorf("recycled: got %d, expected 1", recycled)
	}
	if f.Pool().Free() != free {
		t.Errorf("pool free: got %d, expected %d", f.Pool().Free(), free)
	}
	for _, x := range f.Melons() {
		if x == m {
			t.Error("spent melon should leave the field")
		}
	}
	if f.Pool().Built() != f.bcfg.PoolPrewarm {
		t.Errorf("pool should not grow: built %d", f.Pool().Built())
	}
}

func TestFieldEvictionAfterThreeSeconds(t *testing.T) {
	f, world := testField(t)
	f.Spawn(1)
	m := f.Melons()[0]
	out := physics.NewPose(mgl64.Vec3{200, m.Radius, 0})
	m.Whole.Pose = out
	if err := world.SetPhysicsPose(m.Whole.Body, out); err != nil {
		t.Fatalf("SetPhysicsPose: %v", err)
	}

	ticks := 0
	for {
		ticks++
		if ev := f.UpdateBounds(tick); len(ev) > 0 {
			if ev[0] != m {
				t.Fatal("wrong melon evicted")
			}
			break
		}
		if ticks > 1000 {
			t.Fatal("melon was never evicted")
		}
	}
	if ticks != 180 {
		t.Errorf("eviction tick: got %d, expected 180", ticks)
	}
	if f.WholeCount() != 1 {
		t.Errorf("eviction should spawn a replacement, got %d whole", f.WholeCount())
	}
}

func TestFieldReturningResetsOutOfBounds(t *testing.T) {
	f, _ := testField(t)
	f.Spawn(1)
	m := f.Melons()[0]
	m.Whole.Pose.Position = mgl64.Vec3{200, m.Radius, 0}
	for range 60 {
		f.UpdateBounds(tick)
	}
	if m.OutOfBounds == 0 {
		t.Fatal("time outside should accumulate")
	}
	m.Whole.Pose.Position = mgl64.Vec3{0, m.Radius, 0}
	f.UpdateBounds(tick)
	if m.OutOfBounds != 0 {
		t.Errorf("coming back should reset the timer, got %v", m.OutOfBounds)
	}
}

func TestFieldClear(t *testing.T) {
	f, world := testField(t)
	f.Spawn(3)
	f.Break(f.Melons()[0], mgl64.Vec3{})
	before := world.BodyCount()
	f.Clear()

	if len(f.Melons()) != 0 {
		t.Errorf("melons after clear: got %d", len(f.Melons()))
	}
	if got := world.BodyCount(); got != before-3 {
		t.Errorf("bodies after clear: got %d, expected %d", got, before-3)
	}
	if f.Pool().Free() != f.Pool().Built() {
		t.Errorf("every piece should be back in the pool: free %d built %d", f.Pool().Free(), f.Pool().Built())
	}
}

func TestBlinkVisible(t *testing.T) {
	cfg := config.DefaultMelonConfig().Broken

	tests := []struct {
		name     string
		elapsed  float64
		expected bool
	}{
		{"start", 0, true},
		{"grace", cfg.BlinkGrace - 0.01, true},
		{"first on", cfg.BlinkGrace + 0.01, true},
		{"first off", cfg.BlinkGrace + cfg.BlinkInterval*1.05, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BlinkVisible(cfg, tt.elapsed, cfg.BlinkDuration)
			if got != tt.expected {
				t.Errorf("BlinkVisible(%v) = %v, expected %v", tt.elapsed, got, tt.expected)
			}
		})
	}
}

func TestBlinkSpeedsUp(t *testing.T) {
	cfg := config.DefaultMelonConfig().Broken
	toggles := func(from, to float64) int {
		n := 0
		prev := BlinkVisible(cfg, from, cfg.BlinkDuration)
		for e := from; e < to; e += 0.001 {
			v := BlinkVisible(cfg, e, cfg.BlinkDuration)
			if v != prev {
				n++
			}
			prev = v
		}
		return n
	}
	early := toggles(cfg.BlinkGrace, cfg.BlinkGrace+1)
	late := toggles(cfg.BlinkDuration-1, cfg.BlinkDuration)
	if late <= early {
		t.Errorf("blinking should speed up: early %d toggles, late %d", early, late)
	}
}

func TestBrokenPoolReuse(t *testing.T) {
	p := newBrokenPool(2)
	if p.Free() != 2 || p.Built() != 2 {
		t.Fatalf("prewarm: free %d built %d", p.Free(), p.Built())
	}
	a := p.Acquire()
	b := p.Acquire()
	c := p.Acquire()
	if p.Built() != 3 {
		t.Errorf("third acquire should build one piece, built %d", p.Built())
	}
	if !p.Release(a) {
		t.Error("release of a live piece should succeed")
	}
	if p.Release(a) {
		t.Error("double release should be refused")
	}
	if p.Release(nil) {
		t.Error("nil release should be refused")
	}
	if a.Visible || a.Position != parkedPosition {
		t.Errorf("released piece should be parked, got %+v", a)
	}
	if got := p.Acquire(); got != a {
		t.Error("acquire should reuse the freed piece")
	}
	_, _ = b, c
}
