// Package input defines the raw event types fed into the world and the
// accumulated held-key state threaded through the step loop. State is an
// explicit value owned by the world, not ambient global state.
package input

// Key identifies a movement-relevant key.
type Key int

const (
	KeyW Key = iota
	KeyA
	KeyS
	KeyD
	KeyQ
	KeyE
	KeyUp
	KeyDown
	KeyLeft
	KeyRight

	keyCount
)

// KeyEvent is a pressed/released transition for one key.
type KeyEvent struct {
	Key     Key
	Pressed bool
}

// PointerKind distinguishes pointer event types.
type PointerKind int

const (
	PointerDown PointerKind = iota
	PointerMove
	PointerUp
)

// PointerEvent is a raw pointer event in viewport pixel coordinates.
type PointerEvent struct {
	Kind PointerKind
	X, Y float32
}

// State is the held-key snapshot as of the last delivered events.
type State struct {
	held [keyCount]bool
}

// Apply records a key transition.
func (s *State) Apply(ev KeyEvent) {
	if ev.Key < 0 || ev.Key >= keyCount {
		return
	}
	s.held[ev.Key] = ev.Pressed
}

// Held reports whether a key is currently down.
func (s *State) Held(k Key) bool {
	if k < 0 || k >= keyCount {
		return false
	}
	return s.held[k]
}

// Reset releases all keys.
func (s *State) Reset() {
	s.held = [keyCount]bool{}
}
