package geom

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Cuboid builds a triangle-list box centered at loc with full dimensions
// dims. Faces keep the per-corner color pattern of the engine's debug
// palette so orientation is visible without lighting.
func Cuboid(loc mgl32.Vec3, dims mgl32.Vec3) Mesh {
	hx := dims.X() * 0.5
	hy := dims.Y() * 0.5
	hz := dims.Z() * 0.5

	x, y, z := loc.X(), loc.Y(), loc.Z()

	lbu := Vertex{Loc: [3]float32{x - hx, y - hy, z - hz}, Color: [4]float32{0.5, 0.9, 0.5, 1.0}}
	rbu := Vertex{Loc: [3]float32{x + hx, y - hy, z - hz}, Color: [4]float32{0.5, 0.5, 0.9, 1.0}}
	lfu := Vertex{Loc: [3]float32{x - hx, y - hy, z + hz}, Color: [4]float32{0.9, 0.5, 0.5, 1.0}}
	rfu := Vertex{Loc: [3]float32{x + hx, y - hy, z + hz}, Color: [4]float32{0.5, 0.9, 0.5, 1.0}}
	lbl := Vertex{Loc: [3]float32{x - hx, y + hy, z - hz}, Color: [4]float32{0.5, 0.5, 0.9, 1.0}}
	rbl := Vertex{Loc: [3]float32{x + hx, y + hy, z - hz}, Color: [4]float32{0.9, 0.5, 0.5, 1.0}}
	lfl := Vertex{Loc: [3]float32{x - hx, y + hy, z + hz}, Color: [4]float32{0.5, 0.5, 0.5, 1.0}}
	rfl := Vertex{Loc: [3]float32{x + hx, y + hy, z + hz}, Color: [4]float32{0.5, 0.5, 0.5, 1.0}}

	return Mesh{
		lbu, rbu, lfu, lfu, rfu, rbu, // bottom
		lbl, rbl, lfl, lfl, rfl, rbl, // top
		lfu, rfu, lfl, lfl, rfl, rfu, // front
		lbu, rbu, lbl, lbl, rbl, rbu, // back
		lbu, lfu, lbl, lbl, lfl, lfu, // left
		rbu, rfu, rbl, rbl, rfl, rfu, // right
	}
}

// UnitCube builds a cube of side 1 centered at the origin.
func UnitCube() Mesh {
	return Cuboid(mgl32.Vec3{}, mgl32.Vec3{1, 1, 1})
}

// FlatPolyline builds a ribbon of the given width along points, lying flat
// in the XZ plane (all normals +Y), with a single color for every segment.
func FlatPolyline(points []mgl32.Vec3, width float32, color [4]float32) Mesh {
	normals := make([]mgl32.Vec3, len(points))
	widths := make([]float32, len(points))
	for i := range points {
		normals[i] = mgl32.Vec3{0, 1, 0}
		widths[i] = width
	}
	colors := make([][4]float32, len(points)-1)
	for i := range colors {
		colors[i] = color
	}
	return Polyline(points, normals, widths, colors)
}

// Polyline builds a ribbon through points. Each point carries the surface
// normal at that point and the ribbon half-width there; each segment carries
// one color. Panics on malformed input, matching the builder's contract of
// being called with generated (not user) data.
func Polyline(points, normals []mgl32.Vec3, widths []float32, colors [][4]float32) Mesh {
	if len(points) < 2 {
		panic("polyline: not enough points")
	}
	if len(points) != len(normals) {
		panic("polyline: there must be exactly one normal per point")
	}
	if len(points) != len(widths) {
		panic("polyline: there must be exactly one width per point")
	}
	if len(points)-1 != len(colors) {
		panic("polyline: there must be exactly one color per segment")
	}

	// Direction of each segment.
	segDirs := make([]mgl32.Vec3, len(points)-1)
	for i := range segDirs {
		segDirs[i] = points[i+1].Sub(points[i])
	}

	// Direction at each point: the end points take their only segment's
	// direction, interior points average their two neighbors.
	pointDirs := make([]mgl32.Vec3, 0, len(points))
	pointDirs = append(pointDirs, segDirs[0])
	for i := 1; i < len(segDirs); i++ {
		pointDirs = append(pointDirs, segDirs[i-1].Add(segDirs[i]).Normalize())
	}
	pointDirs = append(pointDirs, segDirs[len(segDirs)-1])

	// Cross vectors along which the width is applied, then the two ribbon
	// edges.
	left := make([]mgl32.Vec3, len(points))
	right := make([]mgl32.Vec3, len(points))
	for i, p := range points {
		cross := pointDirs[i].Cross(normals[i]).Normalize()
		left[i] = p.Sub(cross.Mul(widths[i]))
		right[i] = p.Add(cross.Mul(widths[i]))
	}

	mesh := make(Mesh, 0, 6*(len(points)-1))
	for i := 0; i < len(points)-1; i++ {
		c := colors[i]
		l0, l1 := vertex(left[i], c), vertex(left[i+1], c)
		r0, r1 := vertex(right[i], c), vertex(right[i+1], c)
		mesh = append(mesh, l0, l1, r0, r0, l1, r1)
	}
	return mesh
}

func vertex(p mgl32.Vec3, color [4]float32) Vertex {
	return Vertex{Loc: [3]float32{p.X(), p.Y(), p.Z()}, Color: color}
}
