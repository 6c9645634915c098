package geom

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Vertex is one point of renderable geometry: position plus RGBA color.
// The layout matches what the vertex stage consumes, so a flattened []Vertex
// is directly uploadable.
type Vertex struct {
	Loc   [3]float32
	Color [4]float32
}

// Mesh is an untransformed triangle list (three vertices per triangle).
type Mesh []Vertex

// Extent is a viewport size in pixels.
type Extent struct {
	Width  uint32
	Height uint32
}

// Isometry is a rigid transform: rotation about the origin followed by
// translation. No scale, no shear.
type Isometry struct {
	Translation mgl32.Vec3
	Rotation    mgl32.Quat
}

// IdentityIsometry returns the identity transform.
func IdentityIsometry() Isometry {
	return Isometry{Rotation: mgl32.QuatIdent()}
}

// Translate returns an identity-rotation isometry at p.
func Translate(p mgl32.Vec3) Isometry {
	return Isometry{Translation: p, Rotation: mgl32.QuatIdent()}
}

// Apply transforms a point.
func (iso Isometry) Apply(p mgl32.Vec3) mgl32.Vec3 {
	return iso.Rotation.Rotate(p).Add(iso.Translation)
}

// Transform applies a rigid transform to every vertex of a mesh, returning
// a new mesh. The input is not modified.
func Transform(m Mesh, iso Isometry) Mesh {
	out := make(Mesh, len(m))
	for i, v := range m {
		p := iso.Apply(mgl32.Vec3{v.Loc[0], v.Loc[1], v.Loc[2]})
		out[i] = Vertex{
			Loc:   [3]float32{p.X(), p.Y(), p.Z()},
			Color: v.Color,
		}
	}
	return out
}

// HalfExtents returns the half-extents of the mesh's axis-aligned bounding
// box around its center, used to size colliders. Zero for an empty mesh.
func HalfExtents(m Mesh) mgl32.Vec3 {
	if len(m) == 0 {
		return mgl32.Vec3{}
	}
	min := m[0].Loc
	max := m[0].Loc
	for _, v := range m[1:] {
		for i := 0; i < 3; i++ {
			if v.Loc[i] < min[i] {
				min[i] = v.Loc[i]
			}
			if v.Loc[i] > max[i] {
				max[i] = v.Loc[i]
			}
		}
	}
	return mgl32.Vec3{
		(max[0] - min[0]) * 0.5,
		(max[1] - min[1]) * 0.5,
		(max[2] - min[2]) * 0.5,
	}
}
