package ecs

import (
	"fmt"
	"reflect"
)

// Emitter is a keyed, synchronous listener table. Emit calls every listener
// registered under the key, in registration order, on the caller's goroutine.
//
// A listener is identified by the id passed to On; Off with the same key and id
// removes it. Off and On are safe to call from inside a listener: a listener
// removed mid-dispatch is not called for the rest of that dispatch, and one
// added mid-dispatch is first called on the next Emit. Not safe for concurrent use.
type Emitter[K comparable, E any] struct {
	listeners map[K][]*listenerEntry[E]
}

type listenerEntry[E any] struct {
	id      any
	fn      func(E)
	removed bool
}

func NewEmitter[K comparable, E any]() *Emitter[K, E] {
	return &Emitter[K, E]{
		listeners: make(map[K][]*listenerEntry[E]),
	}
}

// On registers fn under key. id is the handle Off matches on and must be a
// comparable value such as a pointer; On panics otherwise.
func (e *Emitter[K, E]) On(key K, id any, fn func(E)) {
	if id == nil || !reflect.ValueOf(id).Comparable() {
		panic(fmt.Sprintf("ecs: listener id of type %T is not comparable", id))
	}
	e.listeners[key] = append(e.listeners[key], &listenerEntry[E]{id: id, fn: fn})
}

// Off removes the first listener registered under key with the given id.
// It reports whether a listener was removed; removing twice is a no-op.
func (e *Emitter[K, E]) Off(key K, id any) bool {
	list := e.listeners[key]
	for i, l := range list {
		if !sameID(l.id, id) {
			continue
		}
		l.removed = true
		if len(list) == 1 {
			delete(e.listeners, key)
			return true
		}
		// Fresh slice: a dispatch in progress keeps ranging over the old one.
		next := make([]*listenerEntry[E], 0, len(list)-1)
		next = append(next, list[:i]...)
		next = append(next, list[i+1:]...)
		e.listeners[key] = next
		return true
	}
	return false
}

// Emit delivers ev to the listeners of key.
func (e *Emitter[K, E]) Emit(key K, ev E) {
	list := e.listeners[key]
	for _, l := range list {
		if l.removed {
			continue
		}
		l.fn(ev)
	}
}

// Count returns the number of listeners registered under key.
func (e *Emitter[K, E]) Count(key K) int {
	return len(e.listeners[key])
}

// sameID compares listener ids without panicking on non-comparable values.
func sameID(a, b any) bool {
	if reflect.TypeOf(a) != reflect.TypeOf(b) || !reflect.ValueOf(b).Comparable() {
		return false
	}
	return a == b
}
