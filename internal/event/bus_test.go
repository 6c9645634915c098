package event

import "testing"

func TestEmitDeliversAfterSwap(t *testing.T) {
	b := NewBus()

	var got []uint32
	Subscribe(b, func(ev EntitySpawned) { got = append(got, ev.ID) })

	Emit(b, EntitySpawned{ID: 7, Dynamic: true})
	Emit(b, EntitySpawned{ID: 9})

	// Same tick: nothing delivered yet.
	b.DispatchAll()
	if len(got) != 0 {
		t.Fatalf("delivered %v before swap, want nothing", got)
	}

	b.SwapBuffers()
	b.DispatchAll()
	if len(got) != 2 || got[0] != 7 || got[1] != 9 {
		t.Fatalf("delivered %v, want [7 9] in emit order", got)
	}

	// Next tick: the buffer was drained, no redelivery.
	b.SwapBuffers()
	b.DispatchAll()
	if len(got) != 2 {
		t.Fatalf("redelivered events: %v", got)
	}
}

func TestHandlersAreTypeScoped(t *testing.T) {
	b := NewBus()

	spawned := 0
	removed := 0
	Subscribe(b, func(EntitySpawned) { spawned++ })
	Subscribe(b, func(EntityRemoved) { removed++ })

	Emit(b, EntityRemoved{ID: 3})
	b.SwapBuffers()
	b.DispatchAll()

	if spawned != 0 || removed != 1 {
		t.Errorf("spawned=%d removed=%d, want 0 and 1", spawned, removed)
	}
}

func TestMultipleSubscribersEachReceive(t *testing.T) {
	b := NewBus()

	calls := 0
	Subscribe(b, func(FrameCaptured) { calls++ })
	Subscribe(b, func(FrameCaptured) { calls++ })

	Emit(b, FrameCaptured{EntityID: 1, Tick: 42})
	b.SwapBuffers()
	b.DispatchAll()

	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestEmitDuringDispatchLandsNextTick(t *testing.T) {
	b := NewBus()

	var order []string
	Subscribe(b, func(ev EntitySpawned) {
		order = append(order, "spawned")
		// Cascading emit goes into the back buffer for the next tick.
		Emit(b, EntityRemoved{ID: ev.ID})
	})
	Subscribe(b, func(EntityRemoved) { order = append(order, "removed") })

	Emit(b, EntitySpawned{ID: 1})
	b.SwapBuffers()
	b.DispatchAll()
	if len(order) != 1 || order[0] != "spawned" {
		t.Fatalf("first tick delivered %v, want [spawned]", order)
	}

	b.SwapBuffers()
	b.DispatchAll()
	if len(order) != 2 || order[1] != "removed" {
		t.Fatalf("second tick delivered %v, want cascaded removal", order)
	}
}
