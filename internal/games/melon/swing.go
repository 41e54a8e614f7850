package melon

import (
	"math"

	"github.com/vovakirdan/melon-smash/internal/config"
	"github.com/vovakirdan/melon-smash/internal/core"
)

// Swing is the bat swing state machine. Idle counts the cooldown down and
// relaxes the bat toward its rest angle; Swinging plays the two-phase curve.
type Swing struct {
	cfg config.SwingConfig

	swinging bool
	timer    float64
	cooldown float64
	hit      bool

	angle float64 // bat pivot rotation about its local x axis, radians
	hold  float64 // seconds before locomotion may take over again
	clip  float64 // reported length of the swing animation
}

// newSwing builds the state machine. clip is the length of the avatar's
// swing animation; zero or less falls back to the swing duration.
func newSwing(cfg config.SwingConfig, clip float64) *Swing {
	if clip <= 0 {
		clip = cfg.Duration
	}
	s := &Swing{cfg: cfg, clip: clip}
	s.Reset()
	return s
}

// Reset returns the bat to rest with no cooldown.
func (s *Swing) Reset() {
	s.swinging = false
	s.timer = 0
	s.cooldown = 0
	s.hit = false
	s.hold = 0
	s.angle = core.DegToRad(s.cfg.RestDegrees)
}

func (s *Swing) Swinging() bool { return s.swinging }
func (s *Swing) Timer() float64 { return s.timer }
func (s *Swing) Cooldown() float64 { return s.cooldown }
func (s *Swing) Hit() bool { return s.hit }
func (s *Swing) Angle() float64 { return s.angle }

// Holding reports whether the swing animation still owns the avatar.
func (s *Swing) Holding() bool {
	return s.swinging || s.hold > 0
}

// Progress is the clamped fraction of the current swing, 0 when idle.
func (s *Swing) Progress() float64 {
	if !s.swinging || s.cfg.Duration <= 0 {
		return 0
	}
	return math.Min(s.timer/s.cfg.Duration, 1)
}

// CanDealDamage is true only inside the damage window of a swing that has
// not hit anything yet.
func (s *Swing) CanDealDamage() bool {
	if !s.swinging || s.hit {
		return false
	}
	p := s.Progress()
	return p > s.cfg.DamageStart && p < s.cfg.DamageEnd
}

// Start begins a swing. It is rejected while a swing is running or the
// cooldown has not elapsed, leaving every field untouched.
func (s *Swing) Start() bool {
	if s.swinging || s.cooldown > 0 {
		return false
	}
	s.swinging = true
	s.timer = 0
	s.hit = false
	s.hold = s.clip
	return true
}

// MarkHit closes the damage window for the rest of this swing.
func (s *Swing) MarkHit() {
	s.hit = true
}

// Update advances the swing by dt. It reports whether a swing finished on
// this tick.
func (s *Swing) Update(dt float64) (finished bool) {
	if s.swinging {
		s.timer += dt
		p := s.Progress()
		s.angle = s.AngleAt(p)
		if p >= 1 {
			s.swinging = false
			s.cooldown = s.cfg.Cooldown
			return true
		}
		return false
	}
	s.cooldown = math.Max(0, s.cooldown-dt)
	rest := core.DegToRad(s.cfg.RestDegrees)
	s.angle = core.Lerp(s.angle, rest, math.Min(1, s.cfg.RelaxRate*dt))
	return false
}

// DecayHold counts the animation hold down. It runs even while the round
// is inactive.
func (s *Swing) DecayHold(dt float64) {
	s.hold = math.Max(0, s.hold-dt)
}

// Interrupt ends a running swing without arming the cooldown and drops the
// animation hold, so the bat relaxes and locomotion takes over at once.
// A hit already landed stays recorded.
func (s *Swing) Interrupt() {
	s.swinging = false
	s.timer = 0
	s.hold = 0
}

// Clip is the animation hold a new swing starts with.
func (s *Swing) Clip() float64 { return s.clip }

// AngleAt evaluates the swing curve: rest to upper eased over [0, split],
// then upper to lower over (split, 1].
func (s *Swing) AngleAt(progress float64) float64 {
	rest := core.DegToRad(s.cfg.RestDegrees)
	upper := core.DegToRad(s.cfg.UpperDegrees)
	lower := core.DegToRad(s.cfg.LowerDegrees)
	split := core.ClampF(s.cfg.Split, 0.05, 0.95)

	if progress <= split {
		return core.Lerp(rest, upper, core.Smoothstep(progress/split))
	}
	t := (progress - split) / math.Max(1-split, 1e-4)
	return core.Lerp(upper, lower, core.Smoothstep(t))
}
