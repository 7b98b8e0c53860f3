// Package tracker keeps a live reference to the component of one type on a
// node and reports when that component is attached or detached.
package tracker

import (
	"fmt"
	"reflect"

	"github.com/l1jgo/nodekit/internal/core/ecs"
)

// Registry is the part of a node's component registry a Tracker needs.
// *ecs.ObjectRegistry satisfies it.
type Registry interface {
	On(key ecs.TypeKey, l ecs.Listener)
	Off(key ecs.TypeKey, l ecs.Listener)
	Lookup(scope any, optional bool) (any, error)
}

// Tracker mirrors "the current component of type T" on one registry.
//
// The slot is set when a component of the tracked type is added and cleared
// when it is removed; reading it never queries the registry. onAttach runs after
// the slot is set, onDetach runs before it is cleared so the departing component
// is still readable. A second add without a remove replaces the slot and does
// not call onDetach for the replaced component.
//
// Callbacks run inside the registry's dispatch. A panicking callback is not
// recovered. Dispose must be called to unsubscribe; until then the registry
// keeps the tracker, and everything its callbacks capture, alive.
type Tracker[T any] struct {
	key      ecs.TypeKey
	current  T
	bound    bool
	onAttach func(T)
	onDetach func(T)
	registry Registry
}

// New tracks the component type T. Either callback may be nil.
//
// Nodes hold their components by pointer, so T must be a pointer or an
// interface type. New panics for any other T: New[Health] would share the key
// of *Health yet never match the stored value.
func New[T any](reg Registry, onAttach, onDetach func(T)) *Tracker[T] {
	return track(reg, ecs.KeyFor[T](), onAttach, onDetach)
}

// NewScoped tracks the type of scope, which is a reflect.Type, an ecs.TypeKey
// or a component instance. Use it when T is an interface and the concrete type
// comes from elsewhere.
func NewScoped[T any](reg Registry, scope any, onAttach, onDetach func(T)) *Tracker[T] {
	return track(reg, ecs.KeyOf(scope), onAttach, onDetach)
}

func track[T any](reg Registry, key ecs.TypeKey, onAttach, onDetach func(T)) *Tracker[T] {
	if typ := reflect.TypeOf((*T)(nil)).Elem(); typ.Kind() != reflect.Pointer && typ.Kind() != reflect.Interface {
		panic(fmt.Sprintf("tracker: cannot track %s by value, use *%s", typ, typ))
	}
	t := &Tracker[T]{
		key:      key,
		onAttach: onAttach,
		onDetach: onDetach,
		registry: reg,
	}
	// Subscribe before the lookup so nothing added in between is missed.
	reg.On(key, t)
	c, _ := reg.Lookup(key, true)
	if v, ok := c.(T); ok {
		t.current, t.bound = v, true
		if onAttach != nil {
			onAttach(v)
		}
	}
	return t
}

// HandleObjectEvent is called by the registry; it is not meant for direct use.
func (t *Tracker[T]) HandleObjectEvent(ev ecs.ObjectEvent) {
	if t.registry == nil || ev.Key != t.key {
		return
	}
	v, ok := ev.Object.(T)
	if !ok {
		return
	}
	switch {
	case ev.Add:
		t.current, t.bound = v, true
		if t.onAttach != nil {
			t.onAttach(v)
		}
	case ev.Remove:
		if t.onDetach != nil {
			t.onDetach(v)
		}
		t.clear()
	}
}

// Component returns the tracked component and whether one is present.
func (t *Tracker[T]) Component() (T, bool) {
	return t.current, t.bound
}

// Get returns the tracked component, or the zero T when none is present.
func (t *Tracker[T]) Get() T {
	return t.current
}

func (t *Tracker[T]) Bound() bool {
	return t.bound
}

func (t *Tracker[T]) Key() ecs.TypeKey {
	return t.key
}

// Dispose unsubscribes from the registry and drops the component and both
// callbacks. Calling it again does nothing.
func (t *Tracker[T]) Dispose() {
	if t.registry == nil {
		return
	}
	t.registry.Off(t.key, t)
	t.registry = nil
	t.onAttach = nil
	t.onDetach = nil
	t.clear()
}

func (t *Tracker[T]) clear() {
	var zero T
	t.current, t.bound = zero, false
}
