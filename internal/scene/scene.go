// Package scene maintains keyed geometry batches with a lazily rebuilt
// flattened vertex buffer.
package scene

import (
	"github.com/vantage3d/vantage/internal/geom"
)

// Batch maps a stable object key to that object's current vertex list and
// derives one contiguous vertex buffer over all of them. The buffer is
// rebuilt lazily on read: mutations only set a dirty flag, so any number of
// writes between two reads cost a single rebuild.
//
// Concatenation order follows map iteration order and is not stable across
// insertions and removals. Draw correctness must not depend on ordering
// across distinct objects; each object's own triangles stay contiguous.
type Batch struct {
	objects map[uint32]geom.Mesh
	buffer  geom.Mesh
	dirty   bool
}

func NewBatch() *Batch {
	return &Batch{
		objects: make(map[uint32]geom.Mesh, 64),
	}
}

// AddObject inserts or replaces an object's vertex list and marks the
// flattened buffer stale.
func (b *Batch) AddObject(key uint32, verts geom.Mesh) {
	b.objects[key] = verts
	b.dirty = true
}

// RemoveObject deletes an object if present. The buffer is only marked
// stale when something was actually removed.
func (b *Batch) RemoveObject(key uint32) {
	if _, ok := b.objects[key]; !ok {
		return
	}
	delete(b.objects, key)
	b.dirty = true
}

// Contains reports whether the batch holds geometry for key.
func (b *Batch) Contains(key uint32) bool {
	_, ok := b.objects[key]
	return ok
}

// Len returns the number of objects in the batch.
func (b *Batch) Len() int {
	return len(b.objects)
}

// VertexBuffer returns the flattened concatenation of all object vertex
// lists, rebuilding it first if any mutation happened since the last read.
// Returns nil when the batch is empty; callers treat that as "nothing to
// draw", not an error.
func (b *Batch) VertexBuffer() geom.Mesh {
	if b.dirty {
		b.buffer = flatten(b.objects)
		b.dirty = false
	}
	return b.buffer
}

func flatten(objects map[uint32]geom.Mesh) geom.Mesh {
	total := 0
	for _, verts := range objects {
		total += len(verts)
	}
	if total == 0 {
		return nil
	}
	buf := make(geom.Mesh, 0, total)
	for _, verts := range objects {
		buf = append(buf, verts...)
	}
	return buf
}
