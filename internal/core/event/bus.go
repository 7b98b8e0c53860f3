package event

import (
	"reflect"
	"sync"
)

// Bus is a double-buffered event bus. Events emitted in tick N are delivered
// in tick N+1, in the order they were emitted, when EventDispatchSystem calls
// SwapBuffers and DispatchAll at tick start.
type Bus struct {
	mu       sync.Mutex // only protects handler registration
	front    []queued
	back     []queued
	handlers map[reflect.Type][]func(any)
}

type queued struct {
	typ reflect.Type
	ev  any
}

func NewBus() *Bus {
	return &Bus{
		front:    make([]queued, 0, 64),
		back:     make([]queued, 0, 64),
		handlers: make(map[reflect.Type][]func(any)),
	}
}

// Emit queues an event into the back buffer (readable next tick).
func Emit[T any](b *Bus, event T) {
	b.back = append(b.back, queued{typ: typeOf[T](), ev: event})
}

// Subscribe registers a typed handler for events of type T.
func Subscribe[T any](b *Bus, fn func(T)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := typeOf[T]()
	b.handlers[t] = append(b.handlers[t], func(ev any) { fn(ev.(T)) })
}

// SwapBuffers rotates back to front and empties the new back buffer.
func (b *Bus) SwapBuffers() {
	b.front, b.back = b.back, b.front[:0]
}

// DispatchAll delivers the front buffer to subscribed handlers. Events emitted
// by handlers land in the back buffer and wait for the next tick.
func (b *Bus) DispatchAll() {
	for _, q := range b.front {
		for _, h := range b.handlers[q.typ] {
			h(q.ev)
		}
	}
	b.front = b.front[:0]
}

// Pending returns the number of events waiting for the next swap.
func (b *Bus) Pending() int {
	return len(b.back)
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
