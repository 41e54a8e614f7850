package physics

import (
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/vovakirdan/melon-smash/internal/terrain"
)

const (
	defaultFixedStep   = 1.0 / 60.0
	defaultMaxSubSteps = 10
	deactivationTime   = 2.0
	stepEpsilon        = 1e-9
)

type shapeKind int

const (
	shapeSphere shapeKind = iota
	shapeBox
	shapeHeightField
)

type body struct {
	id     BodyID
	shape  shapeKind
	radius float64
	half   mgl64.Vec3
	field  *terrain.HeightField

	opts    BodyOptions
	invMass float64

	pose   Pose
	linVel mgl64.Vec3
	angVel mgl64.Vec3

	asleep     bool
	sleepTimer float64
}

func (b *body) dynamic() bool {
	return b.opts.Kind == Dynamic
}

// SimpleWorld is a small fixed-step rigid-body simulation. It handles
// spheres against spheres, oriented boxes and heightfields, which is all
// the game registers. Box-box and box-heightfield pairs are ignored.
type SimpleWorld struct {
	gravity     mgl64.Vec3
	fixedStep   float64
	maxSubSteps int
	accumulator float64

	nextID    BodyID
	bodies    map[BodyID]*body
	order     []BodyID
	manifolds []Contact
}

// Option configures a SimpleWorld.
type Option func(*SimpleWorld)

// WithGravity overrides the default gravity of (0, -9.8, 0).
func WithGravity(g mgl64.Vec3) Option {
	return func(w *SimpleWorld) { w.gravity = g }
}

// WithFixedStep sets the internal step and the substep cap per Update.
func WithFixedStep(step float64, maxSubSteps int) Option {
	return func(w *SimpleWorld) {
		if step > 0 {
			w.fixedStep = step
		}
		if maxSubSteps > 0 {
			w.maxSubSteps = maxSubSteps
		}
	}
}

// NewSimpleWorld creates an empty world.
func NewSimpleWorld(opts ...Option) *SimpleWorld {
	w := &SimpleWorld{
		gravity:     mgl64.Vec3{0, -9.8, 0},
		fixedStep:   defaultFixedStep,
		maxSubSteps: defaultMaxSubSteps,
		bodies:      make(map[BodyID]*body),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *SimpleWorld) add(b *body) BodyID {
	w.nextID++
	b.id = w.nextID
	if b.pose.Rotation == (mgl64.Quat{}) {
		b.pose.Rotation = mgl64.QuatIdent()
	}
	if b.dynamic() && b.opts.Mass > 0 {
		b.invMass = 1 / b.opts.Mass
	}
	w.bodies[b.id] = b
	w.order = append(w.order, b.id)
	return b.id
}

// AddSphereBody registers a sphere.
func (w *SimpleWorld) AddSphereBody(pose Pose, radius float64, opts BodyOptions) BodyID {
	return w.add(&body{shape: shapeSphere, radius: radius, opts: opts, pose: pose})
}

// AddBoxBody registers an oriented box.
func (w *SimpleWorld) AddBoxBody(pose Pose, halfExtents mgl64.Vec3, opts BodyOptions) BodyID {
	return w.add(&body{shape: shapeBox, half: halfExtents, opts: opts, pose: pose})
}

// AddHeightFieldBody registers static terrain.
func (w *SimpleWorld) AddHeightFieldBody(hf *terrain.HeightField) BodyID {
	return w.add(&body{
		shape: shapeHeightField,
		field: hf,
		opts:  BodyOptions{Kind: Static, Friction: 1},
		pose:  NewPose(mgl64.Vec3{}),
	})
}

// RemoveBody unregisters a body and drops its manifolds.
func (w *SimpleWorld) RemoveBody(id BodyID) error {
	if _, ok := w.bodies[id]; !ok {
		return ErrNoBody
	}
	delete(w.bodies, id)
	w.order = slices.DeleteFunc(w.order, func(o BodyID) bool { return o == id })
	w.manifolds = slices.DeleteFunc(w.manifolds, func(c Contact) bool {
		return c.A == id || c.B == id
	})
	return nil
}

// HasBody reports whether id is registered.
func (w *SimpleWorld) HasBody(id BodyID) bool {
	_, ok := w.bodies[id]
	return ok
}

// BodyCount returns the number of registered bodies.
func (w *SimpleWorld) BodyCount() int {
	return len(w.bodies)
}

// SetPhysicsPose teleports a body and wakes it.
func (w *SimpleWorld) SetPhysicsPose(id BodyID, pose Pose) error {
	b, ok := w.bodies[id]
	if !ok {
		return ErrNoBody
	}
	b.pose = pose
	b.asleep = false
	b.sleepTimer = 0
	return nil
}

// ModelPose returns the current pose of a body.
func (w *SimpleWorld) ModelPose(id BodyID) (Pose, error) {
	b, ok := w.bodies[id]
	if !ok {
		return Pose{}, ErrNoBody
	}
	return b.pose, nil
}

// SetLinearVelocity sets the velocity of a body and wakes it.
func (w *SimpleWorld) SetLinearVelocity(id BodyID, v mgl64.Vec3) error {
	b, ok := w.bodies[id]
	if !ok {
		return ErrNoBody
	}
	b.linVel = v
	b.asleep = false
	b.sleepTimer = 0
	return nil
}

// Asleep reports whether a dynamic body is deactivated.
func (w *SimpleWorld) Asleep(id BodyID) bool {
	b, ok := w.bodies[id]
	return ok && b.asleep
}

// Update runs as many fixed steps as dt covers, up to the substep cap.
// Leftover time carries into the next call.
func (w *SimpleWorld) Update(dt float64) {
	if dt <= 0 {
		return
	}
	w.accumulator += dt
	steps := 0
	for w.accumulator+stepEpsilon >= w.fixedStep && steps < w.maxSubSteps {
		w.step(w.fixedStep)
		w.accumulator -= w.fixedStep
		steps++
	}
	if steps == w.maxSubSteps && w.accumulator > w.fixedStep {
		w.accumulator = 0
	}
	if w.accumulator < 0 {
		w.accumulator = 0
	}
}

func (w *SimpleWorld) step(h float64) {
	for _, id := range w.order {
		b := w.bodies[id]
		if !b.dynamic() || b.asleep {
			continue
		}
		b.linVel = b.linVel.Add(w.gravity.Mul(h))
		b.linVel = b.linVel.Mul(math.Pow(1-b.opts.LinearDamping, h))
		b.angVel = b.angVel.Mul(math.Pow(1-b.opts.AngularDamping, h))

		b.pose.Position = b.pose.Position.Add(b.linVel.Mul(h))
		b.pose.Rotation = integrateRotation(b.pose.Rotation, b.angVel, h)
	}

	w.manifolds = w.manifolds[:0]
	for i := 0; i < len(w.order); i++ {
		a := w.bodies[w.order[i]]
		for j := i + 1; j < len(w.order); j++ {
			b := w.bodies[w.order[j]]
			if !w.shouldCollide(a, b) {
				continue
			}
			c, ok := collide(a, b)
			if !ok {
				continue
			}
			w.manifolds = append(w.manifolds, Contact{
				A: a.id, B: b.id,
				Points: []ContactPoint{{OnA: c.onA, OnB: c.onB, Depth: c.depth}},
			})
			resolve(a, b, c)
		}
	}

	for _, id := range w.order {
		b := w.bodies[id]
		if !b.dynamic() || b.asleep {
			continue
		}
		if b.linVel.Len() < b.opts.LinearSleep && b.angVel.Len() < b.opts.AngularSleep {
			b.sleepTimer += h
			if b.sleepTimer >= deactivationTime {
				b.asleep = true
				b.linVel = mgl64.Vec3{}
				b.angVel = mgl64.Vec3{}
			}
		} else {
			b.sleepTimer = 0
		}
	}
}

func (w *SimpleWorld) shouldCollide(a, b *body) bool {
	switch {
	case !a.dynamic() && !b.dynamic():
		return false
	case a.dynamic() && b.dynamic():
		return !a.asleep || !b.asleep
	case a.opts.Kind == Kinematic || b.opts.Kind == Kinematic:
		return true
	}
	if a.dynamic() {
		return !a.asleep
	}
	return !b.asleep
}

// HitTest filters the manifolds of the last step.
func (w *SimpleWorld) HitTest(ids []BodyID, wantPoints bool) []Contact {
	var hits []Contact
	for _, m := range w.manifolds {
		if !slices.Contains(ids, m.A) || !slices.Contains(ids, m.B) {
			continue
		}
		hit := Contact{A: m.A, B: m.B}
		if wantPoints {
			hit.Points = append([]ContactPoint(nil), m.Points...)
		}
		hits = append(hits, hit)
	}
	return hits
}

func integrateRotation(q mgl64.Quat, w mgl64.Vec3, h float64) mgl64.Quat {
	if w.Len() == 0 {
		return q
	}
	spin := mgl64.Quat{W: 0, V: w}.Mul(q).Scale(0.5 * h)
	return q.Add(spin).Normalize()
}

var _ World = (*SimpleWorld)(nil)
