package melon

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/vovakirdan/melon-smash/internal/config"
)

// Particle is one fragment of a smash burst.
type Particle struct {
	Position mgl64.Vec3
	Velocity mgl64.Vec3
}

// Burst is a group of particles fading out together.
type Burst struct {
	Particles []Particle
	Elapsed   float64
	Duration  float64

	startOpacity float64
}

// Opacity fades linearly to zero over the burst's lifetime.
func (b *Burst) Opacity() float64 {
	if b.Duration <= 0 {
		return 0
	}
	t := b.Elapsed / b.Duration
	if t >= 1 {
		return 0
	}
	return b.startOpacity * (1 - t)
}

// Finished reports whether the burst has run its course.
func (b *Burst) Finished() bool {
	return b.Elapsed >= b.Duration
}

// Particles owns every live burst.
type Particles struct {
	cfg    config.ParticleConfig
	rng    *rand.Rand
	bursts []*Burst
}

func newParticles(cfg config.ParticleConfig, rng *rand.Rand) *Particles {
	return &Particles{cfg: cfg, rng: rng}
}

// Spawn starts a burst at the given point with random outward velocities.
func (p *Particles) Spawn(at mgl64.Vec3) {
	b := &Burst{
		Particles:    make([]Particle, p.cfg.Count),
		Duration:     p.cfg.Lifetime,
		startOpacity: p.cfg.Opacity,
	}
	for i := range b.Particles {
		b.Particles[i] = Particle{
			Position: at,
			Velocity: mgl64.Vec3{
				spread(p.rng, p.cfg.Spread),
				p.cfg.MinUp + p.rng.Float64()*(p.cfg.MaxUp-p.cfg.MinUp),
				spread(p.rng, p.cfg.Spread),
			},
		}
	}
	p.bursts = append(p.bursts, b)
}

// Update integrates every particle and drops finished bursts.
func (p *Particles) Update(dt float64) {
	g := mgl64.Vec3{0, p.cfg.Gravity, 0}
	live := p.bursts[:0]
	for _, b := range p.bursts {
		b.Elapsed += dt
		if b.Finished() {
			continue
		}
		for i := range b.Particles {
			pt := &b.Particles[i]
			pt.Velocity = pt.Velocity.Add(g.Mul(dt))
			pt.Position = pt.Position.Add(pt.Velocity.Mul(dt))
		}
		live = append(live, b)
	}
	clear(p.bursts[len(live):])
	p.bursts = live
}

// Bursts returns the live bursts.
func (p *Particles) Bursts() []*Burst {
	return p.bursts
}

// Clear drops every burst.
func (p *Particles) Clear() {
	p.bursts = nil
}

// spread returns a uniform value in [-r/2, r/2).
func spread(rng *rand.Rand, r float64) float64 {
	return r * (rng.Float64() - 0.5)
}
