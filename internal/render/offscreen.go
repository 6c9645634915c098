package render

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/vantage3d/vantage/internal/geom"
)

// OffscreenRenderer rasterizes into a private framebuffer for readback.
// Each instance owns its target; many instances share one queue/allocator.
type OffscreenRenderer struct {
	fb     *framebuffer
	queue  *Queue
	alloc  *Allocator
	stages ShaderStages
}

func NewOffscreen(extent geom.Extent, stages ShaderStages, queue *Queue, alloc *Allocator) (*OffscreenRenderer, error) {
	if err := checkSameDevice(queue, alloc); err != nil {
		return nil, err
	}
	return &OffscreenRenderer{
		fb:     newFramebuffer(extent),
		queue:  queue,
		alloc:  alloc,
		stages: stages,
	}, nil
}

func (r *OffscreenRenderer) Extent() geom.Extent { return r.fb.extent }

// Render draws the given vertex buffers under one MVP. Submission is
// synchronous: when Render returns, the frame is complete.
func (r *OffscreenRenderer) Render(buffers []geom.Mesh, mvp mgl32.Mat4) error {
	r.fb.clear()
	for _, buf := range buffers {
		r.fb.drawMesh(buf, mvp)
	}
	return nil
}

// Image returns the pixels of the last completed frame. The returned slice
// is a copy and safe to retain.
func (r *OffscreenRenderer) Image() Image {
	return r.fb.image()
}
