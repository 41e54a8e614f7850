package melon

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/vovakirdan/melon-smash/internal/config"
)

func testPlayer() *Player {
	cfg := config.DefaultMelonConfig()
	return newPlayer(cfg.Player, cfg.Bounds, cfg.Player.HeroHeight)
}

func TestPlayerForwardMovesAlongFacing(t *testing.T) {
	p := testPlayer()
	start := p.Position
	moved, rotated, _ := p.move(tick, controls{forward: true})
	if !moved || rotated {
		t.Errorf("forward: got moved=%v rotated=%v", moved, rotated)
	}
	want := start.Add(mgl64.Vec3{0, 0, p.cfg.Speed * tick})
	if !p.Position.ApproxEqualThreshold(want, 1e-9) {
		t.Errorf("position after forward: got %v, expected %v", p.Position, want)
	}
}

func TestPlayerTurnSnaps(t *testing.T) {
	p := testPlayer()
	for range 7 {
		p.move(tick, controls{left: true})
	}
	step := p.cfg.TurnSnap * math.Pi / 180
	ratio := p.Angle / step
	if math.Abs(ratio-math.Round(ratio)) > 1e-9 {
		t.Errorf("angle %v is not a multiple of the snap step %v", p.Angle, step)
	}
	if p.Angle <= 0 {
		t.Errorf("turning left should increase the angle, got %v", p.Angle)
	}
}

func TestPlayerBackFlipsOnceAndWalksForward(t *testing.T) {
	p := testPlayer()
	start := p.Position

	p.move(tick, controls{back: true})
	if math.Abs(math.Abs(p.Angle)-math.Pi) > 1e-9 {
		t.Fatalf("back press should flip to face behind, got angle %v", p.Angle)
	}
	if !p.BackHolding() {
		t.Error("back press should set the holding flag")
	}
	flipped := p.Angle
	for range 10 {
		p.move(tick, controls{back: true})
	}
	if p.Angle != flipped {
		t.Errorf("holding back must not flip again: got %v, expected %v", p.Angle, flipped)
	}
	if p.Position.Z() >= start.Z() {
		t.Errorf("holding back should walk toward -z, got z=%v from %v", p.Position.Z(), start.Z())
	}

	_, _, released := p.move(tick, controls{})
	if !released {
		t.Error("releasing back should be reported")
	}
	if p.BackHolding() {
		t.Error("holding flag should clear on release")
	}
	if p.Angle != flipped {
		t.Error("release keeps the flipped facing")
	}
}

func TestPlayerClampedToBounds(t *testing.T) {
	p := testPlayer()
	for range 2000 {
		p.move(tick, controls{forward: true})
	}
	if p.Position.Z() != p.bounds.MaxZ {
		t.Errorf("z should clamp to %v, got %v", p.bounds.MaxZ, p.Position.Z())
	}
}

func TestPlayerLocomotion(t *testing.T) {
	p := testPlayer()
	s := testSwing()

	if got := p.Locomotion(s); got != LocomotionIdle {
		t.Errorf("got %v, expected idle", got)
	}
	p.move(tick, controls{forward: true})
	if got := p.Locomotion(s); got != LocomotionWalk {
		t.Errorf("got %v, expected walk", got)
	}
	s.Start()
	if got := p.Locomotion(s); got != LocomotionSwing {
		t.Errorf("got %v, expected swing", got)
	}
	p.stop()
	s.Reset()
	if got := p.Locomotion(s); got != LocomotionIdle {
		t.Errorf("got %v, expected idle after stop", got)
	}
}
