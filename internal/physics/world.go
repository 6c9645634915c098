// Package physics implements the rigid-body adapter consumed by the world
// loop: a body set addressed by generational handles, advanced by a fixed
// timestep under gravity. The integrator is semi-implicit Euler with
// multiplicative damping and an optional infinite ground plane; the adapter
// surface (insert/remove/query/impulse/step) is the contract, and a fuller
// solver can be substituted behind it.
package physics

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/vantage3d/vantage/internal/geom"
)

// ErrStaleHandle is returned when a handle refers to a removed body.
var ErrStaleHandle = errors.New("physics: stale body handle")

// Gravity is the constant world gravity vector.
var Gravity = mgl32.Vec3{0, -9.81, 0}

// Params are the integration parameters for one step.
type Params struct {
	Dt             float32 // fixed timestep in seconds
	LinearDamping  float32 // per-second velocity bleed, 0 = none
	AngularDamping float32
	GroundY        float32 // height of the infinite ground plane
	GroundEnabled  bool
}

// DefaultParams mirrors a 60 Hz step with light damping and a ground plane
// at y = 0.
func DefaultParams() Params {
	return Params{
		Dt:             1.0 / 60.0,
		LinearDamping:  0.05,
		AngularDamping: 0.05,
		GroundY:        0,
		GroundEnabled:  true,
	}
}

type body struct {
	iso         geom.Isometry
	linVel      mgl32.Vec3
	angVel      mgl32.Vec3
	halfExtents mgl32.Vec3
	dynamic     bool
	alive       bool
}

// World owns the rigid-body set. All bodies have unit mass and unit angular
// inertia; impulses translate directly into velocity changes.
type World struct {
	bodies      []body
	generations []uint32
	freeList    []uint32
	alive       int
	log         *zap.Logger
}

func NewWorld(log *zap.Logger) *World {
	return &World{
		bodies:      make([]body, 0, 64),
		generations: make([]uint32, 0, 64),
		freeList:    make([]uint32, 0, 16),
		log:         log,
	}
}

// InsertBody adds a body at the given pose. Dynamic bodies move under
// gravity and impulses; fixed bodies never move but can still be collided
// with once a collider is attached.
func (w *World) InsertBody(iso geom.Isometry, dynamic bool) BodyHandle {
	var idx uint32
	if n := len(w.freeList); n > 0 {
		idx = w.freeList[n-1]
		w.freeList = w.freeList[:n-1]
	} else {
		idx = uint32(len(w.bodies))
		w.bodies = append(w.bodies, body{})
		// Generations start at 1 so no valid handle is ever zero.
		w.generations = append(w.generations, 1)
	}
	w.bodies[idx] = body{iso: iso, dynamic: dynamic, alive: true}
	w.alive++
	h := newBodyHandle(idx, w.generations[idx])
	w.log.Debug("body inserted",
		zap.Uint32("index", idx),
		zap.Bool("dynamic", dynamic),
	)
	return h
}

// AttachCollider sets the cuboid collider half-extents for a body.
func (w *World) AttachCollider(h BodyHandle, halfExtents mgl32.Vec3) error {
	b := w.resolve(h)
	if b == nil {
		return ErrStaleHandle
	}
	b.halfExtents = halfExtents
	return nil
}

// RemoveBody detaches a body and its collider. Stale handles are a no-op.
func (w *World) RemoveBody(h BodyHandle) {
	idx := h.Index()
	if int(idx) >= len(w.bodies) || w.generations[idx] != h.Generation() || !w.bodies[idx].alive {
		return
	}
	w.bodies[idx].alive = false
	w.generations[idx]++
	w.freeList = append(w.freeList, idx)
	w.alive--
}

// Position returns the current pose of a body, or ok=false for a stale
// handle.
func (w *World) Position(h BodyHandle) (geom.Isometry, bool) {
	b := w.resolve(h)
	if b == nil {
		return geom.Isometry{}, false
	}
	return b.iso, true
}

// ApplyImpulse adds an instantaneous velocity change to a dynamic body.
// Stale handles and fixed bodies are no-ops.
func (w *World) ApplyImpulse(h BodyHandle, impulse mgl32.Vec3) {
	if b := w.resolve(h); b != nil && b.dynamic {
		b.linVel = b.linVel.Add(impulse)
	}
}

// ApplyTorqueImpulse adds an instantaneous angular velocity change to a
// dynamic body.
func (w *World) ApplyTorqueImpulse(h BodyHandle, torque mgl32.Vec3) {
	if b := w.resolve(h); b != nil && b.dynamic {
		b.angVel = b.angVel.Add(torque)
	}
}

// Len returns the number of live bodies.
func (w *World) Len() int { return w.alive }

// Step advances every dynamic body by one fixed timestep under the given
// gravity.
func (w *World) Step(gravity mgl32.Vec3, p Params) {
	for i := range w.bodies {
		b := &w.bodies[i]
		if !b.alive || !b.dynamic {
			continue
		}

		b.linVel = b.linVel.Add(gravity.Mul(p.Dt))
		if p.LinearDamping > 0 {
			b.linVel = b.linVel.Mul(damp(p.LinearDamping, p.Dt))
		}
		if p.AngularDamping > 0 {
			b.angVel = b.angVel.Mul(damp(p.AngularDamping, p.Dt))
		}

		b.iso.Translation = b.iso.Translation.Add(b.linVel.Mul(p.Dt))

		if speed := b.angVel.Len(); speed > 1e-9 {
			rot := mgl32.QuatRotate(speed*p.Dt, b.angVel.Mul(1/speed))
			b.iso.Rotation = rot.Mul(b.iso.Rotation).Normalize()
		}

		if p.GroundEnabled {
			w.resolveGround(b, p.GroundY)
		}
	}
}

// resolveGround clamps a body's collider onto the ground plane with zero
// restitution.
func (w *World) resolveGround(b *body, groundY float32) {
	bottom := b.iso.Translation.Y() - b.halfExtents.Y()
	if bottom >= groundY {
		return
	}
	b.iso.Translation[1] = groundY + b.halfExtents.Y()
	if b.linVel.Y() < 0 {
		b.linVel[1] = 0
	}
}

func (w *World) resolve(h BodyHandle) *body {
	idx := h.Index()
	if int(idx) >= len(w.bodies) {
		return nil
	}
	if w.generations[idx] != h.Generation() || !w.bodies[idx].alive {
		return nil
	}
	return &w.bodies[idx]
}

// damp converts a per-second damping coefficient into a per-step velocity
// multiplier.
func damp(coeff, dt float32) float32 {
	return float32(math.Exp(float64(-coeff * dt)))
}
