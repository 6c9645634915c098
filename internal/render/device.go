// Package render defines the renderer contract the world consumes and a
// software rasterizer backend that fulfills it: offscreen targets with
// blocking pixel readback for sensor capture, and a presentable target for
// the on-screen camera.
package render

import (
	"fmt"
	"sync/atomic"
)

var nextDeviceID atomic.Uint32

// Device identifies one logical rendering device. Queues and allocators are
// shared, non-owning handles onto a device; every renderer borrows them and
// none owns device-level resources.
type Device struct {
	id   uint32
	name string
}

func NewDevice(name string) *Device {
	return &Device{id: nextDeviceID.Add(1), name: name}
}

func (d *Device) Name() string { return d.name }

func (d *Device) String() string {
	return fmt.Sprintf("%s#%d", d.name, d.id)
}

// Queue is a submission queue bound to a device.
type Queue struct {
	dev *Device
}

func (d *Device) NewQueue() *Queue { return &Queue{dev: d} }

func (q *Queue) Device() *Device { return q.dev }

// Allocator is a memory allocator bound to a device.
type Allocator struct {
	dev *Device
}

func (d *Device) NewAllocator() *Allocator { return &Allocator{dev: d} }

func (a *Allocator) Device() *Device { return a.dev }

// checkSameDevice enforces the construction-time precondition that a queue
// and an allocator are bound to the same physical device.
func checkSameDevice(q *Queue, a *Allocator) error {
	if q == nil || a == nil {
		return fmt.Errorf("render: nil queue or allocator")
	}
	if q.Device() != a.Device() {
		return fmt.Errorf("render: queue bound to %s but allocator bound to %s", q.Device(), a.Device())
	}
	return nil
}

// ShaderStages names the vertex/fragment entry points a pipeline is built
// from. The core treats them as opaque.
type ShaderStages struct {
	Vertex   string
	Fragment string
}

// DefaultStages is the engine's flat vertex-color pipeline.
func DefaultStages() ShaderStages {
	return ShaderStages{Vertex: "main", Fragment: "main"}
}
