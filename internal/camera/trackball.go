package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/vantage3d/vantage/internal/geom"
	"github.com/vantage3d/vantage/internal/input"
)

// Trackball is an interactive orbit camera. While a drag is in progress the
// rotation between the drag anchor and the current pointer position is held
// as an incremental quaternion; on release it is committed into the base
// orientation and recycled as momentum, which decays multiplicatively every
// idle frame.
type Trackball struct {
	root mgl32.Vec3 // point the camera orbits

	base    mgl32.Quat // committed orientation
	current mgl32.Quat // in-progress drag rotation, identity when idle

	momentum  mgl32.Quat
	magnitude float32
	damping   float32

	offset float32 // distance from root to the eye

	dragging bool
	anchor   mgl32.Vec2 // normalized pointer position at drag start
}

// NewTrackball creates a trackball orbiting root at the given offset
// distance, with the given per-frame momentum damping factor (e.g. 0.9).
func NewTrackball(root mgl32.Vec3, offset, damping float32) *Trackball {
	return &Trackball{
		root:     root,
		base:     mgl32.QuatIdent(),
		current:  mgl32.QuatIdent(),
		momentum: mgl32.QuatIdent(),
		damping:  damping,
		offset:   offset,
	}
}

func (c *Trackball) SetPosition(p mgl32.Vec3) { c.root = p }

// Orientation returns the full current orientation (drag composed onto the
// committed base).
func (c *Trackball) Orientation() mgl32.Quat {
	return c.current.Mul(c.base)
}

// Momentum returns the residual momentum magnitude.
func (c *Trackball) Momentum() float32 { return c.magnitude }

func (c *Trackball) MVP(extent geom.Extent) mgl32.Mat4 {
	rot := c.Orientation()
	eye := c.root.Add(rot.Rotate(mgl32.Vec3{0, 0, c.offset}))
	up := rot.Rotate(mgl32.Vec3{0, 1, 0})

	aspect := float32(extent.Width) / float32(extent.Height)
	proj := mgl32.Perspective(mgl32.DegToRad(perspectiveFovDeg), aspect, perspectiveNear, perspectiveFar)
	return proj.Mul4(mgl32.LookAtV(eye, c.root, up))
}

// HandleEvent advances the drag state machine.
func (c *Trackball) HandleEvent(extent geom.Extent, ev input.PointerEvent) {
	switch ev.Kind {
	case input.PointerDown:
		c.dragging = true
		c.anchor = normalizePointer(extent, ev.X, ev.Y)
		c.current = mgl32.QuatIdent()
	case input.PointerMove:
		if !c.dragging {
			return
		}
		pos := normalizePointer(extent, ev.X, ev.Y)
		c.current = rotationBetween(projectToTrackball(c.anchor), projectToTrackball(pos))
	case input.PointerUp:
		if !c.dragging {
			return
		}
		c.dragging = false
		c.base = c.current.Mul(c.base)
		c.momentum = c.current
		c.magnitude = 1.0
		c.current = mgl32.QuatIdent()
	}
}

// Update applies one frame of momentum when idle: blend identity toward the
// momentum rotation by the current magnitude, fold that into the base, then
// decay the magnitude. Produces an exponentially decaying flywheel after
// release.
func (c *Trackball) Update() {
	if c.dragging {
		return
	}
	blended := mgl32.QuatSlerp(mgl32.QuatIdent(), c.momentum, c.magnitude)
	c.base = blended.Mul(c.base)
	c.magnitude *= c.damping
}

// normalizePointer centers pixel coordinates on the viewport and scales by
// min(width, height), so trackball feel is aspect-ratio independent.
func normalizePointer(extent geom.Extent, x, y float32) mgl32.Vec2 {
	m := float32(extent.Width)
	if float32(extent.Height) < m {
		m = float32(extent.Height)
	}
	if m <= 0 {
		return mgl32.Vec2{}
	}
	return mgl32.Vec2{
		(x - float32(extent.Width)*0.5) / m,
		(y - float32(extent.Height)*0.5) / m,
	}
}

// projectToTrackball maps a normalized 2D pointer position onto a unit
// hemisphere: sphere surface near the center, hyperbolic sheet past
// r²/2 so the mapping has no singularity at the rim.
func projectToTrackball(p mgl32.Vec2) mgl32.Vec3 {
	const r2 = 1.0
	d := p.X()*p.X() + p.Y()*p.Y()
	var z float32
	if d <= r2/2 {
		z = float32(math.Sqrt(float64(r2 - d)))
	} else {
		z = (r2 / 2) / float32(math.Sqrt(float64(d)))
	}
	return mgl32.Vec3{p.X(), p.Y(), z}.Normalize()
}

// rotationBetween returns the shortest-arc rotation taking unit vector a to
// unit vector b. Identical and antiparallel inputs are degenerate and fall
// back to the identity rotation.
func rotationBetween(a, b mgl32.Vec3) mgl32.Quat {
	const eps = 1e-6
	d := a.Dot(b)
	if d > 1-eps || d < -1+eps {
		return mgl32.QuatIdent()
	}
	axis := a.Cross(b)
	if axis.Len() < eps {
		return mgl32.QuatIdent()
	}
	angle := float32(math.Acos(float64(mgl32.Clamp(d, -1, 1))))
	return mgl32.QuatRotate(angle, axis.Normalize())
}
