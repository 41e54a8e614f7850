// Package physics is the rigid-body port used by the gameplay core.
//
// World is the contract the game depends on: register and remove bodies,
// step the simulation, copy poses in both directions and query contact
// manifolds. SimpleWorld is the built-in backend.
package physics

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/vovakirdan/melon-smash/internal/terrain"
)

// ErrNoBody is returned for operations on an unknown or removed body.
var ErrNoBody = errors.New("physics: no such body")

// BodyID identifies a registered body. Zero is never a valid ID.
type BodyID uint32

// Kind selects how a body participates in the simulation.
type Kind int

const (
	// Dynamic bodies are moved by gravity and contacts.
	Dynamic Kind = iota
	// Kinematic bodies are posed by the caller and push dynamic bodies.
	Kinematic
	// Static bodies never move.
	Static
)

func (k Kind) String() string {
	switch k {
	case Dynamic:
		return "dynamic"
	case Kinematic:
		return "kinematic"
	case Static:
		return "static"
	default:
		return "unknown"
	}
}

// Pose is a rigid transform.
type Pose struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// NewPose returns a pose at p with identity rotation.
func NewPose(p mgl64.Vec3) Pose {
	return Pose{Position: p, Rotation: mgl64.QuatIdent()}
}

// BodyOptions are the material and motion settings of a body.
type BodyOptions struct {
	Kind           Kind
	Mass           float64
	LinearDamping  float64
	AngularDamping float64
	Restitution    float64
	Friction       float64
	LinearSleep    float64
	AngularSleep   float64
}

// DefaultBodyOptions mirrors the defaults of common rigid-body engines.
func DefaultBodyOptions(kind Kind, mass float64) BodyOptions {
	return BodyOptions{
		Kind:         kind,
		Mass:         mass,
		Friction:     0.5,
		LinearSleep:  0.8,
		AngularSleep: 1.0,
	}
}

// ContactPoint is one penetrating point of a manifold, on each body.
type ContactPoint struct {
	OnA   mgl64.Vec3
	OnB   mgl64.Vec3
	Depth float64
}

// Contact is a manifold between two bodies from the last step.
type Contact struct {
	A, B   BodyID
	Points []ContactPoint
}

// PointOn returns the first contact point on the given body.
func (c Contact) PointOn(id BodyID) (mgl64.Vec3, bool) {
	if len(c.Points) == 0 {
		return mgl64.Vec3{}, false
	}
	switch id {
	case c.A:
		return c.Points[0].OnA, true
	case c.B:
		return c.Points[0].OnB, true
	}
	return mgl64.Vec3{}, false
}

// World is the physics engine port.
type World interface {
	AddSphereBody(pose Pose, radius float64, opts BodyOptions) BodyID
	AddBoxBody(pose Pose, halfExtents mgl64.Vec3, opts BodyOptions) BodyID
	AddHeightFieldBody(hf *terrain.HeightField) BodyID
	RemoveBody(id BodyID) error
	HasBody(id BodyID) bool

	// Update advances the simulation by dt seconds.
	Update(dt float64)

	// SetPhysicsPose copies a model pose into the body and wakes it.
	SetPhysicsPose(id BodyID, pose Pose) error
	// ModelPose reads the body pose back for the model.
	ModelPose(id BodyID) (Pose, error)

	// HitTest returns manifolds from the last step whose bodies are both
	// in ids. Points are filled only when wantPoints is set.
	HitTest(ids []BodyID, wantPoints bool) []Contact
}
