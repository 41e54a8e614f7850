package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// contact is a narrowphase result. normal points from a to b.
type contact struct {
	normal mgl64.Vec3
	depth  float64
	onA    mgl64.Vec3
	onB    mgl64.Vec3
}

func (c contact) flipped() contact {
	return contact{normal: c.normal.Mul(-1), depth: c.depth, onA: c.onB, onB: c.onA}
}

func collide(a, b *body) (contact, bool) {
	switch {
	case a.shape == shapeSphere && b.shape == shapeSphere:
		return sphereSphere(a, b)
	case a.shape == shapeBox && b.shape == shapeSphere:
		return boxSphere(a, b)
	case a.shape == shapeSphere && b.shape == shapeBox:
		c, ok := boxSphere(b, a)
		return c.flipped(), ok
	case a.shape == shapeHeightField && b.shape == shapeSphere:
		return fieldSphere(a, b)
	case a.shape == shapeSphere && b.shape == shapeHeightField:
		c, ok := fieldSphere(b, a)
		return c.flipped(), ok
	}
	return contact{}, false
}

func sphereSphere(a, b *body) (contact, bool) {
	d := b.pose.Position.Sub(a.pose.Position)
	dist := d.Len()
	sum := a.radius + b.radius
	if dist >= sum {
		return contact{}, false
	}
	n := mgl64.Vec3{0, 1, 0}
	if dist > 1e-9 {
		n = d.Mul(1 / dist)
	}
	return contact{
		normal: n,
		depth:  sum - dist,
		onA:    a.pose.Position.Add(n.Mul(a.radius)),
		onB:    b.pose.Position.Sub(n.Mul(b.radius)),
	}, true
}

// boxSphere tests an oriented box a against sphere b.
func boxSphere(a, b *body) (contact, bool) {
	inv := a.pose.Rotation.Inverse()
	local := inv.Rotate(b.pose.Position.Sub(a.pose.Position))

	closest := mgl64.Vec3{
		mgl64.Clamp(local[0], -a.half[0], a.half[0]),
		mgl64.Clamp(local[1], -a.half[1], a.half[1]),
		mgl64.Clamp(local[2], -a.half[2], a.half[2]),
	}
	d := local.Sub(closest)
	dist := d.Len()
	if dist >= b.radius {
		return contact{}, false
	}

	var nLocal mgl64.Vec3
	var depth float64
	if dist > 1e-9 {
		nLocal = d.Mul(1 / dist)
		depth = b.radius - dist
	} else {
		// Centre inside the box: push out through the nearest face
		axis, best := 0, math.Inf(1)
		for i := 0; i < 3; i++ {
			if pen := a.half[i] - math.Abs(local[i]); pen < best {
				axis, best = i, pen
			}
		}
		sign := 1.0
		if local[axis] < 0 {
			sign = -1
		}
		nLocal[axis] = sign
		closest[axis] = sign * a.half[axis]
		depth = best + b.radius
	}

	n := a.pose.Rotation.Rotate(nLocal)
	onA := a.pose.Position.Add(a.pose.Rotation.Rotate(closest))
	return contact{
		normal: n,
		depth:  depth,
		onA:    onA,
		onB:    b.pose.Position.Sub(n.Mul(b.radius)),
	}, true
}

// fieldSphere tests heightfield a against sphere b. Points outside the
// field never touch it.
func fieldSphere(a, b *body) (contact, bool) {
	p := b.pose.Position
	if !a.field.Contains(p[0], p[2]) {
		return contact{}, false
	}
	ground := a.field.HeightAt(p[0], p[2], 0)
	bottom := p[1] - b.radius
	if bottom >= ground {
		return contact{}, false
	}
	nx, ny, nz := a.field.Normal(p[0], p[2])
	surface := mgl64.Vec3{p[0], ground, p[2]}
	return contact{
		normal: mgl64.Vec3{nx, ny, nz},
		depth:  ground - bottom,
		onA:    surface,
		onB:    mgl64.Vec3{p[0], bottom, p[2]},
	}, true
}

// resolve separates a and b and removes approaching velocity along the
// contact normal. Non-dynamic bodies have infinite mass.
func resolve(a, b *body, c contact) {
	wa, wb := a.invMass, b.invMass
	if !a.dynamic() {
		wa = 0
	}
	if !b.dynamic() {
		wb = 0
	}
	total := wa + wb
	if total == 0 {
		return
	}

	n := c.normal
	// Terrain pushes straight up so resting bodies do not creep downhill
	if a.shape == shapeHeightField || b.shape == shapeHeightField {
		n = mgl64.Vec3{0, 1, 0}
		if b.shape == shapeHeightField {
			n = mgl64.Vec3{0, -1, 0}
		}
	}

	correction := n.Mul(c.depth / total)
	if wa > 0 {
		a.pose.Position = a.pose.Position.Sub(correction.Mul(wa))
		a.asleep = false
	}
	if wb > 0 {
		b.pose.Position = b.pose.Position.Add(correction.Mul(wb))
		b.asleep = false
	}

	rel := b.linVel.Sub(a.linVel)
	vn := rel.Dot(n)
	if vn >= 0 {
		return
	}
	e := math.Max(a.opts.Restitution, b.opts.Restitution)
	j := -(1 + e) * vn / total
	impulse := n.Mul(j)

	tangent := rel.Sub(n.Mul(vn))
	mu := math.Sqrt(math.Max(a.opts.Friction, 0) * math.Max(b.opts.Friction, 0))
	if tl := tangent.Len(); tl > 1e-9 {
		jt := math.Min(tl/total, mu*j)
		impulse = impulse.Sub(tangent.Mul(jt / tl))
	}

	if wa > 0 {
		a.linVel = a.linVel.Sub(impulse.Mul(wa))
	}
	if wb > 0 {
		b.linVel = b.linVel.Add(impulse.Mul(wb))
	}
}
