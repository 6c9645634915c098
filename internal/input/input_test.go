package input

import "testing"

func TestStateTracksTransitions(t *testing.T) {
	var s State

	if s.Held(KeyW) {
		t.Fatal("fresh state reports KeyW held")
	}

	s.Apply(KeyEvent{Key: KeyW, Pressed: true})
	s.Apply(KeyEvent{Key: KeyLeft, Pressed: true})
	if !s.Held(KeyW) || !s.Held(KeyLeft) {
		t.Error("pressed keys not reported held")
	}
	if s.Held(KeyA) {
		t.Error("unpressed key reported held")
	}

	s.Apply(KeyEvent{Key: KeyW, Pressed: false})
	if s.Held(KeyW) {
		t.Error("released key still reported held")
	}
	if !s.Held(KeyLeft) {
		t.Error("release of one key cleared another")
	}
}

func TestStateIgnoresOutOfRangeKeys(t *testing.T) {
	var s State

	s.Apply(KeyEvent{Key: Key(-1), Pressed: true})
	s.Apply(KeyEvent{Key: keyCount, Pressed: true})

	if s.Held(Key(-1)) || s.Held(keyCount) {
		t.Error("out-of-range key reported held")
	}
}

func TestReset(t *testing.T) {
	var s State
	for k := KeyW; k < keyCount; k++ {
		s.Apply(KeyEvent{Key: k, Pressed: true})
	}

	s.Reset()
	for k := KeyW; k < keyCount; k++ {
		if s.Held(k) {
			t.Fatalf("key %d held after Reset", k)
		}
	}
}
