package events

import (
	"testing"
)

func TestBusStampsAndOrders(t *testing.T) {
	bus := NewBus("run-1", "build")
	var seen []Event
	bus.Subscribe(ObserverFunc(func(event Event) {
		seen = append(seen, event)
	}))

	bus.Publish(&CommandStarted{ProjectDir: "."})
	bus.Publish(&StageStarted{Base: Base{Stage: "load_config"}, Label: "Loading configuration"})
	bus.Publish(&StageCompleted{Base: Base{Stage: "load_config"}, Status: "ok"})

	if len(seen) != 3 {
		t.Fatalf("observed %d events, want 3", len(seen))
	}
	for i, event := range seen {
		meta := event.Meta()
		if meta.Seq != uint64(i+1) {
			t.Errorf("event %d has seq %d, want %d", i, meta.Seq, i+1)
		}
		if meta.RunID != "run-1" || meta.Command != "build" {
			t.Errorf("event %d not stamped: %+v", i, meta)
		}
		if meta.Time.IsZero() {
			t.Errorf("event %d has no timestamp", i)
		}
	}
	if seen[1].Type() != "StageStarted" {
		t.Errorf("type = %q", seen[1].Type())
	}
	if seen[1].Meta().Stage != "load_config" {
		t.Errorf("stage = %q", seen[1].Meta().Stage)
	}
}

func TestBusDeliversToAllObserversInSubscriptionOrder(t *testing.T) {
	bus := NewBus("run-2", "validate")
	var order []string
	bus.Subscribe(ObserverFunc(func(Event) { order = append(order, "first") }))
	bus.Subscribe(ObserverFunc(func(Event) { order = append(order, "second") }))

	bus.Publish(&Warning{Code: "w", Message: "m"})
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("delivery order = %v", order)
	}
}
