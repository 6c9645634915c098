package render

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/vantage3d/vantage/internal/geom"
)

// PresentTarget is the window-surface abstraction an interactive renderer
// draws to. Present may fail with ErrTargetOutdated when the surface was
// resized or invalidated since the last frame.
type PresentTarget interface {
	Extent() geom.Extent
	Present(img Image) error
}

// InteractiveRenderer rasterizes into a framebuffer sized to a present
// target and pushes each frame to it. A stale target marks the framebuffer
// for lazy rebuild; the failed frame is skipped, not fatal.
type InteractiveRenderer struct {
	target  PresentTarget
	fb      *framebuffer
	queue   *Queue
	alloc   *Allocator
	stages  ShaderStages
	rebuild bool
}

func NewInteractive(target PresentTarget, stages ShaderStages, queue *Queue, alloc *Allocator) (*InteractiveRenderer, error) {
	if err := checkSameDevice(queue, alloc); err != nil {
		return nil, err
	}
	return &InteractiveRenderer{
		target: target,
		fb:     newFramebuffer(target.Extent()),
		queue:  queue,
		alloc:  alloc,
		stages: stages,
	}, nil
}

func (r *InteractiveRenderer) Extent() geom.Extent { return r.fb.extent }

func (r *InteractiveRenderer) Render(buffers []geom.Mesh, mvp mgl32.Mat4) error {
	if r.rebuild {
		r.fb = newFramebuffer(r.target.Extent())
		r.rebuild = false
	}

	r.fb.clear()
	for _, buf := range buffers {
		r.fb.drawMesh(buf, mvp)
	}

	if err := r.target.Present(r.fb.image()); err != nil {
		r.rebuild = true
		return fmt.Errorf("present: %w", err)
	}
	return nil
}
