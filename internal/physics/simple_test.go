package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/vovakirdan/melon-smash/internal/terrain"
)

func restingOptions() BodyOptions {
	return BodyOptions{
		Kind:         Dynamic,
		Mass:         10,
		Friction:     1,
		LinearSleep:  0.01,
		AngularSleep: 0.01,
	}
}

func TestSphereSettlesOnGround(t *testing.T) {
	w := NewSimpleWorld()
	w.AddHeightFieldBody(terrain.Flat(8, 100, 0))
	id := w.AddSphereBody(NewPose(mgl64.Vec3{0, 10, 0}), 1, restingOptions())

	for i := 0; i < 360; i++ {
		w.Update(1.0 / 60.0)
	}

	pose, err := w.ModelPose(id)
	if err != nil {
		t.Fatalf("ModelPose: %v", err)
	}
	if math.Abs(pose.Position.Y()-1) > 0.05 {
		t.Errorf("resting height = %v, expected 1", pose.Position.Y())
	}
	if !w.Asleep(id) {
		t.Error("resting sphere should fall asleep")
	}

	// Re-posing wakes it
	if err := w.SetPhysicsPose(id, NewPose(mgl64.Vec3{0, 5, 0})); err != nil {
		t.Fatalf("SetPhysicsPose: %v", err)
	}
	if w.Asleep(id) {
		t.Error("SetPhysicsPose should wake the body")
	}
}

func TestFullDampingCancelsGravity(t *testing.T) {
	w := NewSimpleWorld()
	opts := restingOptions()
	opts.LinearDamping = 1
	opts.AngularDamping = 1
	id := w.AddSphereBody(NewPose(mgl64.Vec3{0, 50, 0}), 1, opts)

	for i := 0; i < 60; i++ {
		w.Update(1.0 / 60.0)
	}

	pose, _ := w.ModelPose(id)
	if pose.Position.Y() != 50 {
		t.Errorf("fully damped body moved to y=%v", pose.Position.Y())
	}
}

func TestHitTestBoxSphere(t *testing.T) {
	w := NewSimpleWorld(WithGravity(mgl64.Vec3{}))
	bat := w.AddBoxBody(NewPose(mgl64.Vec3{}), mgl64.Vec3{0.2, 0.2, 7.5}, BodyOptions{Kind: Kinematic, Mass: 1})
	melon := w.AddSphereBody(NewPose(mgl64.Vec3{0.8, 0, 3}), 1, restingOptions())
	other := w.AddSphereBody(NewPose(mgl64.Vec3{30, 0, 0}), 1, restingOptions())

	w.Update(1.0 / 60.0)

	hits := w.HitTest([]BodyID{bat, melon}, true)
	if len(hits) != 1 {
		t.Fatalf("HitTest returned %d manifolds, expected 1", len(hits))
	}
	p, ok := hits[0].PointOn(melon)
	if !ok {
		t.Fatal("manifold should carry a contact point")
	}
	// Closest point on the sphere faces the box
	if math.Abs(p.X()+0.2) > 1e-6 || math.Abs(p.Z()-3) > 1e-6 {
		t.Errorf("contact point on melon = %v", p)
	}

	if hits := w.HitTest([]BodyID{bat, melon}, false); len(hits) != 1 || hits[0].Points != nil {
		t.Errorf("HitTest without points = %+v", hits)
	}
	if hits := w.HitTest([]BodyID{bat, other}, true); len(hits) != 0 {
		t.Errorf("distant body reported %d manifolds", len(hits))
	}
}

func TestHitTestRotatedBox(t *testing.T) {
	w := NewSimpleWorld(WithGravity(mgl64.Vec3{}))
	// Box long axis rotated from z onto x
	rot := mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 1, 0})
	bat := w.AddBoxBody(Pose{Position: mgl64.Vec3{}, Rotation: rot}, mgl64.Vec3{0.2, 0.2, 7.5}, BodyOptions{Kind: Kinematic})
	melon := w.AddSphereBody(NewPose(mgl64.Vec3{6, 0, 0.5}), 1, restingOptions())

	w.Update(1.0 / 60.0)

	if hits := w.HitTest([]BodyID{bat, melon}, true); len(hits) != 1 {
		t.Errorf("rotated box should touch the sphere, got %d manifolds", len(hits))
	}
}

func TestSpheresSeparate(t *testing.T) {
	w := NewSimpleWorld(WithGravity(mgl64.Vec3{}))
	a := w.AddSphereBody(NewPose(mgl64.Vec3{0, 0, 0}), 1, restingOptions())
	b := w.AddSphereBody(NewPose(mgl64.Vec3{1, 0, 0}), 1, restingOptions())

	w.Update(1.0 / 60.0)

	pa, _ := w.ModelPose(a)
	pb, _ := w.ModelPose(b)
	if d := pb.Position.Sub(pa.Position).Len(); math.Abs(d-2) > 1e-9 {
		t.Errorf("separation = %v, expected 2", d)
	}
}

func TestRemoveBody(t *testing.T) {
	w := NewSimpleWorld()
	id := w.AddSphereBody(NewPose(mgl64.Vec3{}), 1, restingOptions())

	if err := w.RemoveBody(id); err != nil {
		t.Fatalf("RemoveBody: %v", err)
	}
	if w.HasBody(id) {
		t.Error("body should be gone")
	}
	if err := w.RemoveBody(id); !errors.Is(err, ErrNoBody) {
		t.Errorf("second RemoveBody = %v, expected ErrNoBody", err)
	}
	if _, err := w.ModelPose(id); !errors.Is(err, ErrNoBody) {
		t.Errorf("ModelPose after remove = %v, expected ErrNoBody", err)
	}
	if err := w.SetPhysicsPose(id, NewPose(mgl64.Vec3{})); !errors.Is(err, ErrNoBody) {
		t.Errorf("SetPhysicsPose after remove = %v, expected ErrNoBody", err)
	}
}

func TestUpdateSubsteps(t *testing.T) {
	w := NewSimpleWorld(WithFixedStep(0.01, 3))
	id := w.AddSphereBody(NewPose(mgl64.Vec3{}), 1, BodyOptions{Kind: Dynamic, Mass: 1})

	// Half a step does nothing yet
	w.Update(0.005)
	if p, _ := w.ModelPose(id); p.Position.Y() != 0 {
		t.Errorf("partial step moved body to %v", p.Position.Y())
	}
	w.Update(0.005)
	if p, _ := w.ModelPose(id); p.Position.Y() >= 0 {
		t.Error("accumulated step should move the body")
	}
}
