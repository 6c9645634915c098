package physics

// BodyHandle encodes a 32-bit slot index in the lower bits and a 32-bit
// generation in the upper bits. Generation increments on removal to
// invalidate stale references held by entities.
type BodyHandle uint64

func newBodyHandle(index uint32, generation uint32) BodyHandle {
	return BodyHandle(uint64(generation)<<32 | uint64(index))
}

func (h BodyHandle) Index() uint32      { return uint32(h) }
func (h BodyHandle) Generation() uint32 { return uint32(h >> 32) }
func (h BodyHandle) IsZero() bool       { return h == 0 }
