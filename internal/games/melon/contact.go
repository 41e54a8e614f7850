package melon

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/vovakirdan/melon-smash/internal/audio"
	"github.com/vovakirdan/melon-smash/internal/config"
	"github.com/vovakirdan/melon-smash/internal/physics"
)

// Bat is the animated bat and the kinematic box that shadows it for
// contact queries. The box follows the bat every tick; forces never move it.
type Bat struct {
	cfg   config.BatConfig
	pivot mgl64.Vec3 // in player space
	proxy physics.BodyID

	Pivot    mgl64.Vec3 // world space, updated by sync
	Rotation mgl64.Quat
	Proxy    physics.Pose
}

func newBat(cfg config.BatConfig, pivot mgl64.Vec3, world physics.World) *Bat {
	half := mgl64.Vec3{cfg.HitSize[0] / 2, cfg.HitSize[1] / 2, cfg.HitSize[2] / 2}
	opts := physics.DefaultBodyOptions(physics.Kinematic, 1)
	return &Bat{
		cfg:      cfg,
		pivot:    pivot,
		proxy:    world.AddBoxBody(physics.NewPose(mgl64.Vec3{}), half, opts),
		Rotation: mgl64.QuatIdent(),
	}
}

// ProxyBody is the physics body of the hit proxy.
func (b *Bat) ProxyBody() physics.BodyID { return b.proxy }

// sync moves the bat to the player's hands at the given swing angle and
// copies the result into the proxy body.
func (b *Bat) sync(world physics.World, p *Player, angle float64) {
	body := p.Rotation()
	b.Pivot = p.Position.Add(body.Rotate(b.pivot))
	b.Rotation = body.Mul(mgl64.QuatRotate(angle, mgl64.Vec3{1, 0, 0}))
	offset := b.Rotation.Rotate(mgl64.Vec3{0, 0, b.cfg.HitSize[2] * 0.5})
	b.Proxy = physics.Pose{Position: b.Pivot.Add(offset), Rotation: b.Rotation}
	world.SetPhysicsPose(b.proxy, b.Proxy) //nolint:errcheck
}

// Tip is the far end of the visible bat.
func (b *Bat) Tip() mgl64.Vec3 {
	return b.Pivot.Add(b.Rotation.Rotate(mgl64.Vec3{0, 0, b.cfg.Length}))
}

// resolveContacts breaks at most one melon per swing. It only runs inside
// the damage window; the first melon touching the proxy wins.
func (g *Game) resolveContacts() {
	if !g.swing.CanDealDamage() {
		return
	}
	proxy := g.bat.ProxyBody()
	for _, m := range g.field.Melons() {
		if m.Whole == nil || !g.world.HasBody(m.Whole.Body) {
			continue
		}
		hits := g.world.HitTest([]physics.BodyID{proxy, m.Whole.Body}, true)
		if len(hits) == 0 {
			continue
		}
		contact, ok := hits[0].PointOn(m.Whole.Body)
		if !ok {
			contact = m.Whole.Pose.Position
		}
		g.swing.MarkHit()
		g.audio.Play(audio.CueHit, g.cfg.Audio.HitVolume)
		g.smash(m, contact)
		return
	}
}
