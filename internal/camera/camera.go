// Package camera provides the view/projection generators: fixed perspective
// and orthogonal cameras, plus the interactive trackball camera.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/vantage3d/vantage/internal/geom"
	"github.com/vantage3d/vantage/internal/input"
)

// Projection constants shared by the perspective-style cameras.
const (
	perspectiveFovDeg = 90.0
	perspectiveNear   = 0.1
	perspectiveFar    = 100.0

	orthoNear = 0.0
	orthoFar  = 10.0

	pitchLimitDeg = 89.0
)

// Camera generates a combined model-view-projection matrix for a viewport.
type Camera interface {
	MVP(extent geom.Extent) mgl32.Mat4
	SetPosition(p mgl32.Vec3)
}

// Interactive is a camera the user drives with pointer input. Update must be
// called once per frame regardless of input to advance momentum.
type Interactive interface {
	Camera
	HandleEvent(extent geom.Extent, ev input.PointerEvent)
	Update()
}

// pose is the shared position/orientation state of the yaw/pitch cameras.
//
// NOTE: front deliberately points backward from conventional camera-forward;
// the look-at target is position - front. Changing either side alone flips
// the view.
type pose struct {
	position mgl32.Vec3
	worldUp  mgl32.Vec3

	pitch float32 // radians, clamped to (-89°, 89°)
	yaw   float32 // radians, unbounded

	front mgl32.Vec3
	right mgl32.Vec3
	up    mgl32.Vec3
}

func newPose(position mgl32.Vec3) pose {
	p := pose{
		position: position,
		worldUp:  mgl32.Vec3{0, 1, 0},
		yaw:      mgl32.DegToRad(-90),
	}
	p.derive()
	return p
}

// derive recomputes the orthonormal front/right/up basis from pitch and yaw.
func (p *pose) derive() {
	sy, cy := sincos(p.yaw)
	sp, cp := sincos(p.pitch)
	p.front = mgl32.Vec3{cy * cp, sp, sy * cp}.Normalize()
	p.right = p.front.Cross(p.worldUp).Normalize()
	p.up = p.right.Cross(p.front).Normalize()
}

// rotate applies pitch/yaw deltas, clamping pitch short of the poles.
func (p *pose) rotate(dPitch, dYaw float32) {
	limit := mgl32.DegToRad(pitchLimitDeg)
	p.pitch += dPitch
	p.yaw += dYaw
	if p.pitch > limit {
		p.pitch = limit
	} else if p.pitch < -limit {
		p.pitch = -limit
	}
	p.derive()
}

func (p *pose) view() mgl32.Mat4 {
	return mgl32.LookAtV(p.position, p.position.Sub(p.front), p.worldUp)
}

// Perspective is a fixed-fov perspective camera.
type Perspective struct {
	pose
}

func NewPerspective(position mgl32.Vec3) *Perspective {
	return &Perspective{pose: newPose(position)}
}

func (c *Perspective) SetPosition(p mgl32.Vec3) { c.position = p }

// Rotate adjusts pitch and yaw by the given radian deltas.
func (c *Perspective) Rotate(dPitch, dYaw float32) { c.rotate(dPitch, dYaw) }

func (c *Perspective) MVP(extent geom.Extent) mgl32.Mat4 {
	aspect := float32(extent.Width) / float32(extent.Height)
	proj := mgl32.Perspective(mgl32.DegToRad(perspectiveFovDeg), aspect, perspectiveNear, perspectiveFar)
	return proj.Mul4(c.view())
}

// Orthogonal is an orthographic camera with extents matching the viewport.
type Orthogonal struct {
	pose
}

func NewOrthogonal(position mgl32.Vec3) *Orthogonal {
	return &Orthogonal{pose: newPose(position)}
}

func (c *Orthogonal) SetPosition(p mgl32.Vec3) { c.position = p }

// Rotate adjusts pitch and yaw by the given radian deltas.
func (c *Orthogonal) Rotate(dPitch, dYaw float32) { c.rotate(dPitch, dYaw) }

func (c *Orthogonal) MVP(extent geom.Extent) mgl32.Mat4 {
	hw := float32(extent.Width) * 0.5
	hh := float32(extent.Height) * 0.5
	proj := mgl32.Ortho(-hw, hw, -hh, hh, orthoNear, orthoFar)
	return proj.Mul4(c.view())
}

func sincos(x float32) (float32, float32) {
	s, c := math.Sincos(float64(x))
	return float32(s), float32(c)
}
