package melon

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/vovakirdan/melon-smash/internal/config"
	"github.com/vovakirdan/melon-smash/internal/core"
	"github.com/vovakirdan/melon-smash/internal/input"
)

// Locomotion is the avatar animation the player is showing.
type Locomotion int

const (
	LocomotionIdle Locomotion = iota
	LocomotionWalk
	LocomotionSwing
)

func (l Locomotion) String() string {
	switch l {
	case LocomotionWalk:
		return "walk"
	case LocomotionSwing:
		return "swing"
	default:
		return "idle"
	}
}

// controls is the movement input for one tick.
type controls struct {
	forward, back bool
	left, right   bool
}

// Player is the controllable hero.
type Player struct {
	cfg    config.PlayerConfig
	bounds config.BoundsConfig

	Position mgl64.Vec3
	Angle    float64 // facing; forward is (sin a, 0, cos a)
	Height   float64

	backEdge    input.Edge
	backHolding bool // facing flipped by a back press, walking forward
	lastMoving  bool
}

func newPlayer(cfg config.PlayerConfig, bounds config.BoundsConfig, height float64) *Player {
	p := &Player{cfg: cfg, bounds: bounds, Height: height}
	p.Place()
	return p
}

// Place puts the player at the start position facing +z.
func (p *Player) Place() {
	p.Position = mgl64.Vec3{p.cfg.Start[0], p.cfg.Start[1], p.cfg.Start[2]}
	p.Angle = 0
	p.backEdge.Reset()
	p.backHolding = false
	p.lastMoving = false
}

// Forward is the unit facing vector on the ground plane.
func (p *Player) Forward() mgl64.Vec3 {
	return mgl64.Vec3{math.Sin(p.Angle), 0, math.Cos(p.Angle)}
}

// Focus is the point the camera looks at: half way up the hero.
func (p *Player) Focus() mgl64.Vec3 {
	return p.Position.Add(mgl64.Vec3{0, p.Height * 0.5, 0})
}

// Rotation is the model rotation; the model faces its local -z.
func (p *Player) Rotation() mgl64.Quat {
	return mgl64.QuatRotate(p.Angle+math.Pi, mgl64.Vec3{0, 1, 0})
}

// BackHolding reports whether a back press flipped the facing and is
// still held. The camera keeps its heading while this is true.
func (p *Player) BackHolding() bool {
	return p.backHolding
}

// move applies one tick of input and reports what happened.
func (p *Player) move(dt float64, in controls) (moved, rotated, backReleased bool) {
	turn := core.DegToRad(p.cfg.TurnDegrees) * dt
	if in.left {
		p.Angle += turn
		rotated = true
	}
	if in.right {
		p.Angle -= turn
		rotated = true
	}
	if rotated {
		step := core.DegToRad(p.cfg.TurnSnap)
		if step > 0 {
			p.Angle = math.Round(p.Angle/step) * step
		}
		p.Angle = core.NormalizeAngle(p.Angle)
	}

	back := in.back && !in.forward
	rising, falling := p.backEdge.Sample(back)
	if rising {
		p.Angle = core.NormalizeAngle(p.Angle + math.Pi)
		p.backHolding = true
	}
	if falling {
		p.backHolding = false
		backReleased = true
	}

	fwd := p.Forward()
	if in.forward {
		p.Position = p.Position.Add(fwd.Mul(p.cfg.Speed * dt))
		moved = true
	}
	if in.back {
		dir := -1.0
		if p.backHolding {
			dir = 1
		}
		p.Position = p.Position.Add(fwd.Mul(dir * p.cfg.Speed * dt))
		moved = true
	}

	p.Position[0] = core.ClampF(p.Position[0], p.bounds.MinX, p.bounds.MaxX)
	p.Position[2] = core.ClampF(p.Position[2], p.bounds.MinZ, p.bounds.MaxZ)
	p.lastMoving = moved
	return moved, rotated, backReleased
}

// snap keeps the feet on the terrain.
func (p *Player) snap(groundAt func(x, z, fallback float64) float64) {
	p.Position[1] = groundAt(p.Position[0], p.Position[2], p.Position[1]) + p.cfg.GroundOffset
}

// stop forgets the last movement so the avatar idles.
func (p *Player) stop() {
	p.lastMoving = false
}

// Locomotion derives the animation from the swing and the last movement.
func (p *Player) Locomotion(s *Swing) Locomotion {
	if s.Holding() {
		return LocomotionSwing
	}
	if p.lastMoving {
		return LocomotionWalk
	}
	return LocomotionIdle
}
