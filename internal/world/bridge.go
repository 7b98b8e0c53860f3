package world

import (
	"github.com/l1jgo/nodekit/internal/core/ecs"
	"github.com/l1jgo/nodekit/internal/core/event"
)

// Bridge republishes every component add/remove and node destruction in w
// as bus events, where tick systems pick them up on the following tick.
func Bridge(w *ecs.World, bus *event.Bus) (off func()) {
	return w.Observe(func(ev ecs.NodeEvent) {
		switch {
		case ev.Destroyed:
			event.Emit(bus, event.NodeDestroyed{Node: ev.Node.ID, Name: ev.Node.Name})
		case ev.Event.Add:
			event.Emit(bus, event.ComponentAttached{Node: ev.Node.ID, Key: ev.Event.Key})
		case ev.Event.Remove:
			event.Emit(bus, event.ComponentDetached{Node: ev.Node.ID, Key: ev.Event.Key})
		}
	})
}
