// Package world owns the entity population and drives the per-frame
// step/render cycle: physics, transform sync into the scene batches, input
// and scripted control, sensor capture, and the interactive camera.
package world

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/vantage3d/vantage/internal/camera"
	"github.com/vantage3d/vantage/internal/event"
	"github.com/vantage3d/vantage/internal/geom"
	"github.com/vantage3d/vantage/internal/input"
	"github.com/vantage3d/vantage/internal/physics"
	"github.com/vantage3d/vantage/internal/render"
	"github.com/vantage3d/vantage/internal/scene"
)

// Impulse scales for held movement keys, applied per step to the body of
// the tracked entity. Input drives the simulated body; the entity's
// transform only moves when the body does.
const (
	moveImpulse   = 0.25
	torqueImpulse = 0.10
)

// ControlHook lets scripted controllers inject impulses once per step.
// Returns ok=false when the named controller does not exist or failed.
type ControlHook func(name string, id uint32, pos mgl32.Vec3, dt float32) (impulse, torque mgl32.Vec3, ok bool)

// perWindow is the interactive on-screen state: at most one per world.
type perWindow struct {
	camera   camera.Interactive
	renderer *render.InteractiveRenderer
	tracked  uint32
	extent   geom.Extent
}

// GameWorld owns all entities, both scene batches, the physics adapter, the
// shared device resources, the accumulated input state, and at most one
// per-window interactive camera. Single-threaded: one logical frame is
// Step() then Render() on the same goroutine.
type GameWorld struct {
	entities map[uint32]*Entity

	// staticScene holds geometry that changes rarely (fixed bodies,
	// visual-only props); dynamicScene holds geometry resynced every frame.
	staticScene  *scene.Batch
	dynamicScene *scene.Batch

	physics *physics.World
	gravity mgl32.Vec3
	params  physics.Params

	queue  *render.Queue
	alloc  *render.Allocator
	stages render.ShaderStages

	window *perWindow
	keys   input.State

	controlHook ControlHook

	bus  *event.Bus
	tick uint64
	log  *zap.Logger
}

// Options configures world construction.
type Options struct {
	Gravity mgl32.Vec3
	Params  physics.Params
	Stages  render.ShaderStages
}

// DefaultOptions uses standard gravity, 60 Hz integration, and the flat
// color pipeline.
func DefaultOptions() Options {
	return Options{
		Gravity: physics.Gravity,
		Params:  physics.DefaultParams(),
		Stages:  render.DefaultStages(),
	}
}

// New constructs a world over shared device resources. A queue and
// allocator bound to different devices is a fatal precondition violation.
func New(queue *render.Queue, alloc *render.Allocator, opts Options, bus *event.Bus, log *zap.Logger) (*GameWorld, error) {
	if queue == nil || alloc == nil {
		return nil, fmt.Errorf("world: nil queue or allocator")
	}
	if queue.Device() != alloc.Device() {
		return nil, fmt.Errorf("world: queue device %s does not match allocator device %s",
			queue.Device(), alloc.Device())
	}
	return &GameWorld{
		entities:     make(map[uint32]*Entity, 64),
		staticScene:  scene.NewBatch(),
		dynamicScene: scene.NewBatch(),
		physics:      physics.NewWorld(log),
		gravity:      opts.Gravity,
		params:       opts.Params,
		queue:        queue,
		alloc:        alloc,
		stages:       opts.Stages,
		bus:          bus,
		log:          log,
	}, nil
}

// SetControlHook installs the scripted-controller hook.
func (w *GameWorld) SetControlHook(hook ControlHook) { w.controlHook = hook }

// AttachWindow installs the single interactive per-window camera, its
// renderer, and the id of the entity it tracks. The tracked id may refer to
// an entity that does not exist yet; tracking silently resumes when it does.
func (w *GameWorld) AttachWindow(cam camera.Interactive, target render.PresentTarget, tracked uint32) error {
	r, err := render.NewInteractive(target, w.stages, w.queue, w.alloc)
	if err != nil {
		return fmt.Errorf("world: interactive renderer: %w", err)
	}
	w.window = &perWindow{
		camera:   cam,
		renderer: r,
		tracked:  tracked,
		extent:   target.Extent(),
	}
	return nil
}

// Entity returns a live entity by id.
func (w *GameWorld) Entity(id uint32) (*Entity, bool) {
	e, ok := w.entities[id]
	return e, ok
}

// Len returns the number of live entities.
func (w *GameWorld) Len() int { return len(w.entities) }

// Tick returns the number of completed steps.
func (w *GameWorld) Tick() uint64 { return w.tick }

// AddEntity inserts an entity under the caller-assigned id. An existing
// entity with the same id is removed first, releasing its body and
// geometry. The entity's geometry is written into exactly one scene batch,
// chosen here and never migrated: dynamic iff dynamic physics was requested.
func (w *GameWorld) AddEntity(id uint32, data CreationData) error {
	if _, ok := w.entities[id]; ok {
		w.log.Warn("entity id reused, replacing", zap.Uint32("id", id))
		w.RemoveEntity(id)
	}

	e := &Entity{
		mesh:       data.Mesh,
		isometry:   data.Isometry,
		controller: data.Controller,
	}

	for i, spec := range data.Sensors {
		cam := spec.Camera
		if cam == nil {
			cam = camera.NewPerspective(data.Isometry.Translation)
		}
		r, err := render.NewOffscreen(spec.Extent, w.stages, w.queue, w.alloc)
		if err != nil {
			return fmt.Errorf("world: sensor %d for entity %d: %w", i, id, err)
		}
		e.sensors = append(e.sensors, sensor{camera: cam, renderer: r})
	}

	if data.Physics != nil {
		h := w.physics.InsertBody(data.Isometry, data.Physics.Dynamic)
		if err := w.physics.AttachCollider(h, geom.HalfExtents(data.Mesh)); err != nil {
			w.physics.RemoveBody(h)
			return fmt.Errorf("world: attach collider for entity %d: %w", id, err)
		}
		e.body = h
		e.hasBody = true
		e.dynamic = data.Physics.Dynamic
	}

	w.batchFor(e).AddObject(id, geom.Transform(data.Mesh, data.Isometry))
	w.entities[id] = e

	if w.bus != nil {
		event.Emit(w.bus, event.EntitySpawned{ID: id, Dynamic: e.dynamic})
	}
	return nil
}

// RemoveEntity destroys an entity: its body is detached from the physics
// adapter and its geometry removed from both batches (a cheap no-op for the
// batch that never held it). Unknown ids are a no-op.
func (w *GameWorld) RemoveEntity(id uint32) {
	e, ok := w.entities[id]
	if !ok {
		return
	}
	delete(w.entities, id)
	if e.hasBody {
		w.physics.RemoveBody(e.body)
	}
	w.staticScene.RemoveObject(id)
	w.dynamicScene.RemoveObject(id)

	if w.bus != nil {
		event.Emit(w.bus, event.EntityRemoved{ID: id})
	}
}

// HandleKey records a key transition into the accumulated input state.
func (w *GameWorld) HandleKey(ev input.KeyEvent) {
	w.keys.Apply(ev)
}

// HandlePointer forwards a pointer event to the interactive camera, if any.
func (w *GameWorld) HandlePointer(ev input.PointerEvent) {
	if w.window == nil {
		return
	}
	w.window.camera.HandleEvent(w.window.extent, ev)
}

// Step advances the world by one frame in strict order: physics, transform
// sync, control input, sensor capture, interactive camera update. Returns
// the pixel buffers captured from each entity's sensor cameras this frame,
// keyed by entity id.
func (w *GameWorld) Step() (map[uint32][]render.Image, error) {
	w.tick++

	// 1. Physics, exactly once, before any rendering.
	w.physics.Step(w.gravity, w.params)

	// 2. Sync authoritative transforms into the owning scene batch. Only
	// entities whose transform actually changed pay the re-transform cost.
	for id, e := range w.entities {
		iso := e.isometry
		if e.hasBody {
			if p, ok := w.physics.Position(e.body); ok {
				iso = p
			}
		}
		if iso != e.isometry {
			e.isometry = iso
			w.batchFor(e).AddObject(id, geom.Transform(e.mesh, iso))
		}
	}

	// 3. Held keys become impulses on the tracked entity's body. A missing
	// tracked id is a silent no-op.
	w.applyInput()

	// 3b. Scripted controllers.
	w.applyControllers()

	// 4. Sensor capture against this frame's finalized buffers.
	observations, err := w.captureSensors()
	if err != nil {
		return nil, err
	}

	// 5. Interactive camera follows its entity, then advances momentum.
	if w.window != nil {
		if e, ok := w.entities[w.window.tracked]; ok {
			w.window.camera.SetPosition(e.isometry.Translation)
		}
		w.window.camera.Update()
	}

	return observations, nil
}

func (w *GameWorld) applyInput() {
	if w.window == nil {
		return
	}
	e, ok := w.entities[w.window.tracked]
	if !ok || !e.hasBody {
		return
	}

	var imp, torque mgl32.Vec3
	if w.keys.Held(input.KeyW) {
		imp[2] -= moveImpulse
	}
	if w.keys.Held(input.KeyS) {
		imp[2] += moveImpulse
	}
	if w.keys.Held(input.KeyA) {
		imp[0] -= moveImpulse
	}
	if w.keys.Held(input.KeyD) {
		imp[0] += moveImpulse
	}
	if w.keys.Held(input.KeyQ) {
		imp[1] += moveImpulse
	}
	if w.keys.Held(input.KeyE) {
		imp[1] -= moveImpulse
	}
	if w.keys.Held(input.KeyLeft) {
		torque[1] += torqueImpulse
	}
	if w.keys.Held(input.KeyRight) {
		torque[1] -= torqueImpulse
	}
	if w.keys.Held(input.KeyUp) {
		torque[0] += torqueImpulse
	}
	if w.keys.Held(input.KeyDown) {
		torque[0] -= torqueImpulse
	}

	if imp != (mgl32.Vec3{}) {
		w.physics.ApplyImpulse(e.body, imp)
	}
	if torque != (mgl32.Vec3{}) {
		w.physics.ApplyTorqueImpulse(e.body, torque)
	}
}

func (w *GameWorld) applyControllers() {
	if w.controlHook == nil {
		return
	}
	for id, e := range w.entities {
		if e.controller == "" || !e.hasBody {
			continue
		}
		imp, torque, ok := w.controlHook(e.controller, id, e.isometry.Translation, w.params.Dt)
		if !ok {
			continue
		}
		if imp != (mgl32.Vec3{}) {
			w.physics.ApplyImpulse(e.body, imp)
		}
		if torque != (mgl32.Vec3{}) {
			w.physics.ApplyTorqueImpulse(e.body, torque)
		}
	}
}

func (w *GameWorld) captureSensors() (map[uint32][]render.Image, error) {
	observations := make(map[uint32][]render.Image)
	var buffers []geom.Mesh

	for id, e := range w.entities {
		if len(e.sensors) == 0 {
			continue
		}
		if buffers == nil {
			buffers = w.vertexBuffers()
		}
		for i, s := range e.sensors {
			s.camera.SetPosition(e.isometry.Translation)
			if err := s.renderer.Render(buffers, s.camera.MVP(s.renderer.Extent())); err != nil {
				if errors.Is(err, render.ErrTargetOutdated) {
					w.log.Debug("sensor target outdated, skipping frame",
						zap.Uint32("entity", id),
						zap.Int("camera", i),
					)
					continue
				}
				return nil, fmt.Errorf("world: sensor render entity %d camera %d: %w", id, i, err)
			}
			img := s.renderer.Image()
			observations[id] = append(observations[id], img)

			if w.bus != nil {
				event.Emit(w.bus, event.FrameCaptured{
					EntityID:    id,
					CameraIndex: i,
					Tick:        w.tick,
					Image:       img,
				})
			}
		}
	}
	return observations, nil
}

// Render issues one on-screen draw through the interactive camera.
// Decoupled from Step so headless observation capture needs no window.
// A stale present target is recoverable: the renderer rebuilds lazily and
// this frame is skipped. Any other render error is fatal to the caller.
func (w *GameWorld) Render() error {
	if w.window == nil {
		return nil
	}
	err := w.window.renderer.Render(w.vertexBuffers(), w.window.camera.MVP(w.window.extent))
	if err != nil {
		if errors.Is(err, render.ErrTargetOutdated) {
			w.log.Debug("present target outdated, skipping frame")
			return nil
		}
		return fmt.Errorf("world: interactive render: %w", err)
	}
	return nil
}

// batchFor returns the scene batch that owns this entity's geometry,
// decided once at creation.
func (w *GameWorld) batchFor(e *Entity) *scene.Batch {
	if e.dynamic {
		return w.dynamicScene
	}
	return w.staticScene
}

// vertexBuffers gathers the non-empty flattened buffers of both batches,
// rebuilding lazily as needed.
func (w *GameWorld) vertexBuffers() []geom.Mesh {
	buffers := make([]geom.Mesh, 0, 2)
	if b := w.staticScene.VertexBuffer(); b != nil {
		buffers = append(buffers, b)
	}
	if b := w.dynamicScene.VertexBuffer(); b != nil {
		buffers = append(buffers, b)
	}
	return buffers
}
