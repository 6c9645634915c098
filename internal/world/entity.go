package world

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/vantage3d/vantage/internal/camera"
	"github.com/vantage3d/vantage/internal/geom"
	"github.com/vantage3d/vantage/internal/physics"
	"github.com/vantage3d/vantage/internal/render"
)

// PhysicsData requests a rigid body for an entity at creation. Collider
// half-extents are derived from the mesh bounding box. Dynamic bodies are
// moved by the simulation; fixed bodies never move but can be collided with.
type PhysicsData struct {
	Dynamic bool
}

// SensorSpec requests one sensor camera attached to an entity. A nil Camera
// gets a default perspective camera. The world allocates a dedicated
// offscreen renderer of the given extent for each sensor.
type SensorSpec struct {
	Camera camera.Camera
	Extent geom.Extent
}

// CreationData is everything needed to add an entity.
type CreationData struct {
	Mesh     geom.Mesh
	Isometry geom.Isometry
	Physics  *PhysicsData // nil means visual-only
	Sensors  []SensorSpec
	// Controller names the scripted controller driving this entity's body,
	// empty for none.
	Controller string
}

// sensor pairs a camera with its dedicated offscreen renderer.
type sensor struct {
	camera   camera.Camera
	renderer render.Offscreen
}

// Entity is one unit of simulated and rendered content. The mesh is the
// immutable untransformed geometry; the isometry is the current world
// transform. The physics handle, when present, is a non-owning reference
// into the physics adapter, which owns the body.
type Entity struct {
	mesh       geom.Mesh
	isometry   geom.Isometry
	body       physics.BodyHandle
	hasBody    bool
	dynamic    bool // which scene batch owns the geometry, fixed at creation
	sensors    []sensor
	controller string
}

// Isometry returns the entity's current world transform.
func (e *Entity) Isometry() geom.Isometry { return e.isometry }

// Position returns the entity's current translation.
func (e *Entity) Position() mgl32.Vec3 { return e.isometry.Translation }

// Sensors returns the number of attached sensor cameras.
func (e *Entity) Sensors() int { return len(e.sensors) }
