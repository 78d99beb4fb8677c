package events

import "time"

// Observer receives events synchronously in publish order. Observers must
// not mutate the context object model from within a callback.
type Observer interface {
	Observe(event Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(event Event)

// Observe implements Observer.
func (f ObserverFunc) Observe(event Event) { f(event) }

// Bus is a synchronous, in-process, ordered publish mechanism. Delivery
// order equals publish order; there is no buffering, no retry and no
// cross-run persistence. Subscribe before the run starts; the bus is not
// safe for concurrent publishing, which the single-publisher contract
// already rules out.
type Bus struct {
	observers []Observer
	runID     string
	command   string
	seq       uint64
}

// NewBus creates a bus for one run. Every published event is stamped with
// the run id and command name.
func NewBus(runID, command string) *Bus {
	return &Bus{runID: runID, command: command}
}

// Subscribe appends an observer. Observers are invoked in subscription
// order for every event.
func (b *Bus) Subscribe(observer Observer) {
	b.observers = append(b.observers, observer)
}

// Publish stamps the event with the next sequence number and run metadata
// and delivers it to every observer before returning.
func (b *Bus) Publish(event Event) {
	b.seq++
	meta := event.Meta()
	meta.Seq = b.seq
	meta.RunID = b.runID
	meta.Command = b.command
	if meta.Time.IsZero() {
		meta.Time = time.Now()
	}
	for _, observer := range b.observers {
		observer.Observe(event)
	}
}
