package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/vantage3d/vantage/internal/geom"
)

// framebuffer is a CPU-side color + depth target.
type framebuffer struct {
	extent geom.Extent
	color  []uint8   // RGBA8, row-major
	depth  []float32 // NDC z, row-major
}

func newFramebuffer(extent geom.Extent) *framebuffer {
	n := int(extent.Width) * int(extent.Height)
	return &framebuffer{
		extent: extent,
		color:  make([]uint8, n*4),
		depth:  make([]float32, n),
	}
}

func (fb *framebuffer) clear() {
	for i := range fb.color {
		fb.color[i] = 0
	}
	for i := range fb.depth {
		fb.depth[i] = math.MaxFloat32
	}
}

func (fb *framebuffer) image() Image {
	pixels := make([]uint8, len(fb.color))
	copy(pixels, fb.color)
	return Image{Width: fb.extent.Width, Height: fb.extent.Height, Pixels: pixels}
}

// drawMesh rasterizes a triangle list through the MVP with depth testing and
// barycentric color interpolation. Triangles with any vertex behind the
// projection plane are dropped rather than clipped; the near plane of the
// projection makes that a sub-pixel approximation in practice.
func (fb *framebuffer) drawMesh(mesh geom.Mesh, mvp mgl32.Mat4) {
	for i := 0; i+2 < len(mesh); i += 3 {
		fb.drawTriangle(mesh[i], mesh[i+1], mesh[i+2], mvp)
	}
}

type screenVertex struct {
	x, y  float32
	z     float32 // NDC depth
	color [4]float32
}

func (fb *framebuffer) drawTriangle(a, b, c geom.Vertex, mvp mgl32.Mat4) {
	sa, ok := fb.project(a, mvp)
	if !ok {
		return
	}
	sb, ok := fb.project(b, mvp)
	if !ok {
		return
	}
	sc, ok := fb.project(c, mvp)
	if !ok {
		return
	}

	w := int(fb.extent.Width)
	h := int(fb.extent.Height)

	minX := clampInt(int(minf(sa.x, sb.x, sc.x)), 0, w-1)
	maxX := clampInt(int(maxf(sa.x, sb.x, sc.x))+1, 0, w-1)
	minY := clampInt(int(minf(sa.y, sb.y, sc.y)), 0, h-1)
	maxY := clampInt(int(maxf(sa.y, sb.y, sc.y))+1, 0, h-1)

	area := edge(sa, sb, sc.x, sc.y)
	if area == 0 {
		return
	}

	for py := minY; py <= maxY; py++ {
		for px := minX; px <= maxX; px++ {
			fx := float32(px) + 0.5
			fy := float32(py) + 0.5

			w0 := edge(sb, sc, fx, fy) / area
			w1 := edge(sc, sa, fx, fy) / area
			w2 := edge(sa, sb, fx, fy) / area
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}

			z := w0*sa.z + w1*sb.z + w2*sc.z
			if z < -1 || z > 1 {
				continue
			}
			idx := py*w + px
			if z >= fb.depth[idx] {
				continue
			}
			fb.depth[idx] = z

			for ch := 0; ch < 4; ch++ {
				v := w0*sa.color[ch] + w1*sb.color[ch] + w2*sc.color[ch]
				fb.color[idx*4+ch] = uint8(mgl32.Clamp(v, 0, 1) * 255)
			}
		}
	}
}

// project takes a vertex to screen space; ok is false when the vertex lies
// behind the projection plane.
func (fb *framebuffer) project(v geom.Vertex, mvp mgl32.Mat4) (screenVertex, bool) {
	clip := mvp.Mul4x1(mgl32.Vec4{v.Loc[0], v.Loc[1], v.Loc[2], 1})
	if clip.W() <= 0 {
		return screenVertex{}, false
	}
	inv := 1 / clip.W()
	ndcX := clip.X() * inv
	ndcY := clip.Y() * inv
	ndcZ := clip.Z() * inv
	return screenVertex{
		x:     (ndcX + 1) * 0.5 * float32(fb.extent.Width),
		y:     (1 - ndcY) * 0.5 * float32(fb.extent.Height),
		z:     ndcZ,
		color: v.Color,
	}, true
}

// edge is the signed area formula used for barycentric weights; the sign
// convention must match between the area and weight computations, which is
// why both sides go through this function.
func edge(a, b screenVertex, px, py float32) float32 {
	return (b.x-a.x)*(py-a.y) - (b.y-a.y)*(px-a.x)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minf(a, b, c float32) float32 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

func maxf(a, b, c float32) float32 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}
