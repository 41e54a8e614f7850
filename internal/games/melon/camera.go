package melon

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/vovakirdan/melon-smash/internal/config"
	"github.com/vovakirdan/melon-smash/internal/core"
)

// Camera trails the player. In follow mode its heading turns toward the
// player's facing at a bounded rate and both the eye and the look target
// are eased toward the desired pose. A manual orbit suspends following.
type Camera struct {
	cfg config.CameraConfig

	Position mgl64.Vec3
	Target   mgl64.Vec3

	angle       float64
	targetAngle float64
	follow      bool
}

func newCamera(cfg config.CameraConfig) *Camera {
	return &Camera{cfg: cfg, follow: true}
}

func (c *Camera) Following() bool { return c.follow }
func (c *Camera) Heading() float64 { return c.angle }
func (c *Camera) TargetHeading() float64 { return c.targetAngle }

// SetTargetHeading sets the heading the camera turns toward.
func (c *Camera) SetTargetHeading(a float64) {
	c.targetAngle = a
}

// desired returns the eye position for a focus point and heading.
func (c *Camera) desired(focus mgl64.Vec3, heading float64) mgl64.Vec3 {
	elev := core.DegToRad(c.cfg.ElevationDegrees)
	horizontal := math.Cos(elev) * c.cfg.Distance
	vertical := math.Sin(elev) * c.cfg.Distance
	return mgl64.Vec3{
		focus.X() - math.Sin(heading)*horizontal,
		focus.Y() + vertical,
		focus.Z() - math.Cos(heading)*horizontal,
	}
}

// PlaceBehind snaps the camera directly behind the focus point, looking
// along heading, and re-enables following.
func (c *Camera) PlaceBehind(focus mgl64.Vec3, heading float64) {
	c.angle = heading
	c.targetAngle = heading
	c.Position = c.desired(focus, heading)
	c.Target = focus
	c.follow = true
}

// Update eases the camera toward the follow pose. It does nothing while
// following is suspended.
func (c *Camera) Update(dt float64, focus mgl64.Vec3) {
	if !c.follow {
		return
	}
	c.angle = core.RotateAngleTowards(c.angle, c.targetAngle, c.cfg.AngleSpeed*dt)
	eye := c.desired(focus, c.angle)
	c.Position = lerpVec(c.Position, eye, c.cfg.PositionSmoothing*dt)
	c.Target = lerpVec(c.Target, focus, c.cfg.TargetSmoothing*dt)
}

// Orbit swings the eye around the look target by delta radians and
// suspends following.
func (c *Camera) Orbit(delta float64) {
	c.follow = false
	offset := c.Position.Sub(c.Target)
	rot := mgl64.QuatRotate(delta, mgl64.Vec3{0, 1, 0})
	c.Position = c.Target.Add(rot.Rotate(offset))
}

// Resume re-enables following. The current heading is derived from where
// the eye actually is so the camera does not jump.
func (c *Camera) Resume(playerPos mgl64.Vec3, playerAngle float64) {
	c.angle = c.headingFromPose(playerPos, playerAngle)
	c.targetAngle = playerAngle
	c.follow = true
}

func (c *Camera) headingFromPose(playerPos mgl64.Vec3, fallback float64) float64 {
	offset := c.Position.Sub(playerPos)
	if offset.LenSqr() < 1e-4 {
		return fallback
	}
	return math.Atan2(-offset.X(), -offset.Z())
}

func lerpVec(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}
