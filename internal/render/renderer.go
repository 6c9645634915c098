package render

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/vantage3d/vantage/internal/geom"
)

// ErrTargetOutdated reports that the output target is stale (e.g. resized
// out from under the renderer). Recoverable: the renderer marks itself for
// rebuild and the caller skips the frame.
var ErrTargetOutdated = errors.New("render: target outdated")

// Image is a captured framebuffer in tightly packed RGBA8.
type Image struct {
	Width  uint32
	Height uint32
	Pixels []uint8
}

// At returns the RGBA value at (x, y).
func (img Image) At(x, y uint32) [4]uint8 {
	i := (y*img.Width + x) * 4
	return [4]uint8{img.Pixels[i], img.Pixels[i+1], img.Pixels[i+2], img.Pixels[i+3]}
}

// Renderer draws a set of vertex buffers under one MVP matrix.
type Renderer interface {
	Render(buffers []geom.Mesh, mvp mgl32.Mat4) error
}

// Offscreen is a renderer whose output is read back as data rather than
// presented. Image blocks until the most recent Render has completed.
type Offscreen interface {
	Renderer
	Image() Image
	Extent() geom.Extent
}
