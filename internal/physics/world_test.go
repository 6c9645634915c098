package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/vantage3d/vantage/internal/geom"
)

func newTestWorld() *World {
	return NewWorld(zap.NewNop())
}

func noGroundParams() Params {
	p := DefaultParams()
	p.GroundEnabled = false
	return p
}

func TestDynamicBodyFallsUnderGravity(t *testing.T) {
	w := newTestWorld()
	h := w.InsertBody(geom.IdentityIsometry(), true)

	before, _ := w.Position(h)
	for i := 0; i < 10; i++ {
		w.Step(Gravity, noGroundParams())
	}
	after, ok := w.Position(h)
	if !ok {
		t.Fatal("handle became stale without removal")
	}
	if after.Translation.Y() >= before.Translation.Y() {
		t.Errorf("y = %v after 10 steps, want < %v", after.Translation.Y(), before.Translation.Y())
	}
}

func TestFixedBodyNeverMoves(t *testing.T) {
	w := newTestWorld()
	start := geom.Translate(mgl32.Vec3{1, 2, 3})
	h := w.InsertBody(start, false)

	w.ApplyImpulse(h, mgl32.Vec3{10, 10, 10})
	w.ApplyTorqueImpulse(h, mgl32.Vec3{0, 5, 0})
	for i := 0; i < 10; i++ {
		w.Step(Gravity, DefaultParams())
	}

	iso, ok := w.Position(h)
	if !ok {
		t.Fatal("handle became stale without removal")
	}
	if iso != start {
		t.Errorf("fixed body moved: %+v, want %+v", iso, start)
	}
}

func TestImpulseChangesVelocity(t *testing.T) {
	w := newTestWorld()
	h := w.InsertBody(geom.IdentityIsometry(), true)

	// Unit mass: the impulse is the velocity change. One step with zero
	// gravity moves the body by roughly v*dt (minus damping bleed).
	w.ApplyImpulse(h, mgl32.Vec3{6, 0, 0})
	p := noGroundParams()
	w.Step(mgl32.Vec3{}, p)

	iso, _ := w.Position(h)
	want := 6 * p.Dt * damp(p.LinearDamping, p.Dt)
	if diff := float64(iso.Translation.X() - want); math.Abs(diff) > 1e-5 {
		t.Errorf("x after impulse step = %v, want %v", iso.Translation.X(), want)
	}
}

func TestTorqueImpulseRotatesBody(t *testing.T) {
	w := newTestWorld()
	h := w.InsertBody(geom.IdentityIsometry(), true)

	w.ApplyTorqueImpulse(h, mgl32.Vec3{0, 2, 0})
	w.Step(mgl32.Vec3{}, noGroundParams())

	iso, _ := w.Position(h)
	if iso.Rotation == mgl32.QuatIdent() {
		t.Error("rotation unchanged after torque impulse")
	}
	// Rotation integration keeps the quaternion normalized.
	if n := iso.Rotation.Len(); math.Abs(float64(n-1)) > 1e-5 {
		t.Errorf("rotation norm = %v, want 1", n)
	}
}

func TestRemoveBodyInvalidatesHandle(t *testing.T) {
	w := newTestWorld()
	h := w.InsertBody(geom.IdentityIsometry(), true)

	w.RemoveBody(h)

	if _, ok := w.Position(h); ok {
		t.Error("Position ok = true for removed body")
	}
	if err := w.AttachCollider(h, mgl32.Vec3{1, 1, 1}); !errors.Is(err, ErrStaleHandle) {
		t.Errorf("AttachCollider error = %v, want ErrStaleHandle", err)
	}
	if w.Len() != 0 {
		t.Errorf("Len = %d, want 0", w.Len())
	}

	// Removing twice is a no-op.
	w.RemoveBody(h)
	if w.Len() != 0 {
		t.Errorf("Len after double remove = %d, want 0", w.Len())
	}
}

func TestSlotReuseRejectsOldGeneration(t *testing.T) {
	w := newTestWorld()
	old := w.InsertBody(geom.IdentityIsometry(), true)
	w.RemoveBody(old)

	fresh := w.InsertBody(geom.Translate(mgl32.Vec3{0, 7, 0}), true)
	if fresh.Index() != old.Index() {
		t.Fatalf("slot not reused: index %d, want %d", fresh.Index(), old.Index())
	}
	if fresh.Generation() == old.Generation() {
		t.Fatal("reused slot kept its generation")
	}

	if _, ok := w.Position(old); ok {
		t.Error("old handle resolves after slot reuse")
	}
	iso, ok := w.Position(fresh)
	if !ok || iso.Translation.Y() != 7 {
		t.Errorf("fresh handle: ok=%v iso=%+v", ok, iso)
	}
}

func TestHandleNeverZero(t *testing.T) {
	w := newTestWorld()
	h := w.InsertBody(geom.IdentityIsometry(), true)
	if h.IsZero() {
		t.Error("first inserted body produced the zero handle")
	}
}

func TestGroundPlaneClampsBody(t *testing.T) {
	w := newTestWorld()
	h := w.InsertBody(geom.Translate(mgl32.Vec3{0, 3, 0}), true)
	if err := w.AttachCollider(h, mgl32.Vec3{0.5, 0.5, 0.5}); err != nil {
		t.Fatal(err)
	}

	p := DefaultParams()
	for i := 0; i < 600; i++ {
		w.Step(Gravity, p)
	}

	iso, _ := w.Position(h)
	rest := p.GroundY + 0.5
	if diff := float64(iso.Translation.Y() - rest); math.Abs(diff) > 1e-4 {
		t.Errorf("resting y = %v, want %v", iso.Translation.Y(), rest)
	}
}

func TestDampingBleedsVelocity(t *testing.T) {
	w := newTestWorld()
	h := w.InsertBody(geom.IdentityIsometry(), true)

	w.ApplyImpulse(h, mgl32.Vec3{1, 0, 0})
	p := noGroundParams()
	p.LinearDamping = 5

	w.Step(mgl32.Vec3{}, p)
	first, _ := w.Position(h)
	w.Step(mgl32.Vec3{}, p)
	second, _ := w.Position(h)

	d1 := first.Translation.X()
	d2 := second.Translation.X() - first.Translation.X()
	if d2 >= d1 {
		t.Errorf("per-step displacement did not shrink: %v then %v", d1, d2)
	}
}
