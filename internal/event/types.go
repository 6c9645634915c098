package event

import "github.com/vantage3d/vantage/internal/render"

// EntitySpawned fires after an entity is inserted into the world.
type EntitySpawned struct {
	ID      uint32
	Dynamic bool
}

// EntityRemoved fires after an entity and its physics body are released.
type EntityRemoved struct {
	ID uint32
}

// FrameCaptured fires for every sensor-camera readback completed in a step.
type FrameCaptured struct {
	EntityID    uint32
	CameraIndex int
	Tick        uint64
	Image       render.Image
}
