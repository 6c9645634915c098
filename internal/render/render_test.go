package render

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/vantage3d/vantage/internal/geom"
)

func TestNewOffscreen_RequiresSameDevice(t *testing.T) {
	devA := NewDevice("a")
	devB := NewDevice("b")

	if _, err := NewOffscreen(geom.Extent{Width: 8, Height: 8}, DefaultStages(), devA.NewQueue(), devB.NewAllocator()); err == nil {
		t.Fatal("NewOffscreen accepted a queue and allocator from different devices")
	}
	if _, err := NewOffscreen(geom.Extent{Width: 8, Height: 8}, DefaultStages(), devA.NewQueue(), devA.NewAllocator()); err != nil {
		t.Fatalf("NewOffscreen on one device: %v", err)
	}
}

func TestOffscreen_RendersCubeAtCenter(t *testing.T) {
	dev := NewDevice("software")
	r, err := NewOffscreen(geom.Extent{Width: 64, Height: 64}, DefaultStages(), dev.NewQueue(), dev.NewAllocator())
	if err != nil {
		t.Fatal(err)
	}

	proj := mgl32.Perspective(mgl32.DegToRad(90), 1, 0.1, 100)
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, -3}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	mvp := proj.Mul4(view)

	if err := r.Render([]geom.Mesh{geom.UnitCube()}, mvp); err != nil {
		t.Fatal(err)
	}

	img := r.Image()
	if img.Width != 64 || img.Height != 64 || len(img.Pixels) != 64*64*4 {
		t.Fatalf("image shape %dx%d with %d bytes", img.Width, img.Height, len(img.Pixels))
	}
	if img.At(32, 32)[3] != 255 {
		t.Error("center pixel not covered by the cube")
	}
	if img.At(0, 0)[3] != 0 {
		t.Error("corner pixel covered, expected background")
	}
}

func TestOffscreen_ClearsBetweenFrames(t *testing.T) {
	dev := NewDevice("software")
	r, err := NewOffscreen(geom.Extent{Width: 16, Height: 16}, DefaultStages(), dev.NewQueue(), dev.NewAllocator())
	if err != nil {
		t.Fatal(err)
	}

	mvp := mgl32.Ident4()
	if err := r.Render([]geom.Mesh{fullScreenQuad(0, [4]float32{1, 0, 0, 1})}, mvp); err != nil {
		t.Fatal(err)
	}
	if err := r.Render(nil, mvp); err != nil {
		t.Fatal(err)
	}

	img := r.Image()
	for i, b := range img.Pixels {
		if b != 0 {
			t.Fatalf("pixel byte %d = %d after empty frame, want 0", i, b)
		}
	}
}

func TestDepthTest_OrderIndependent(t *testing.T) {
	near := fullScreenQuad(-0.5, [4]float32{0, 1, 0, 1})
	far := fullScreenQuad(0.5, [4]float32{1, 0, 0, 1})

	for _, buffers := range [][]geom.Mesh{{far, near}, {near, far}} {
		fb := newFramebuffer(geom.Extent{Width: 8, Height: 8})
		fb.clear()
		for _, buf := range buffers {
			fb.drawMesh(buf, mgl32.Ident4())
		}
		px := fb.image().At(4, 4)
		if px != [4]uint8{0, 255, 0, 255} {
			t.Errorf("center pixel = %v, want the nearer green quad", px)
		}
	}
}

func TestProject_DropsVerticesBehindCamera(t *testing.T) {
	fb := newFramebuffer(geom.Extent{Width: 8, Height: 8})
	fb.clear()

	proj := mgl32.Perspective(mgl32.DegToRad(90), 1, 0.1, 100)
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, -3}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})

	// The quad sits behind the eye; no pixel may be written.
	behind := geom.Transform(fullScreenQuad(0, [4]float32{1, 1, 1, 1}), geom.Translate(mgl32.Vec3{0, 0, -10}))
	fb.drawMesh(behind, proj.Mul4(view))

	for i, b := range fb.color {
		if b != 0 {
			t.Fatalf("pixel byte %d = %d, want untouched framebuffer", i, b)
		}
	}
}

type stubTarget struct {
	extent   geom.Extent
	fail     bool
	frames   int
	lastSize geom.Extent
}

func (s *stubTarget) Extent() geom.Extent { return s.extent }

func (s *stubTarget) Present(img Image) error {
	if s.fail {
		return ErrTargetOutdated
	}
	s.frames++
	s.lastSize = geom.Extent{Width: img.Width, Height: img.Height}
	return nil
}

func TestInteractive_OutdatedTargetRecovers(t *testing.T) {
	dev := NewDevice("software")
	target := &stubTarget{extent: geom.Extent{Width: 32, Height: 32}, fail: true}

	r, err := NewInteractive(target, DefaultStages(), dev.NewQueue(), dev.NewAllocator())
	if err != nil {
		t.Fatal(err)
	}

	err = r.Render(nil, mgl32.Ident4())
	if !errors.Is(err, ErrTargetOutdated) {
		t.Fatalf("Render error = %v, want ErrTargetOutdated", err)
	}

	// Simulate a resize: the target recovers at a new extent and the
	// renderer rebuilds its framebuffer to match before the next frame.
	target.fail = false
	target.extent = geom.Extent{Width: 48, Height: 24}

	if err := r.Render(nil, mgl32.Ident4()); err != nil {
		t.Fatalf("Render after recovery: %v", err)
	}
	if target.frames != 1 {
		t.Errorf("presented frames = %d, want 1", target.frames)
	}
	if target.lastSize != (geom.Extent{Width: 48, Height: 24}) {
		t.Errorf("presented extent = %+v, want rebuilt 48x24", target.lastSize)
	}
}

// fullScreenQuad covers the whole of NDC at a fixed depth.
func fullScreenQuad(z float32, color [4]float32) geom.Mesh {
	v := func(x, y float32) geom.Vertex {
		return geom.Vertex{Loc: [3]float32{x, y, z}, Color: color}
	}
	return geom.Mesh{
		v(-1, -1), v(1, -1), v(1, 1),
		v(-1, -1), v(1, 1), v(-1, 1),
	}
}
