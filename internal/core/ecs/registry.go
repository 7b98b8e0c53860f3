package ecs

import (
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"
)

var (
	ErrNotFound     = errors.New("component not found")
	ErrDuplicate    = errors.New("component type already present")
	ErrNilComponent = errors.New("nil component")
)

// ObjectEvent is delivered to listeners when a component is added to or
// removed from a registry. Exactly one of Add and Remove is set.
type ObjectEvent struct {
	Key    TypeKey
	Object any
	Add    bool
	Remove bool
}

// Listener receives the lifecycle events of one component type.
// Listeners are compared by value in Off, so use pointer receivers. On panics
// for a listener whose dynamic type is not comparable.
type Listener interface {
	HandleObjectEvent(ev ObjectEvent)
}

// ObjectRegistry holds the components of one node, at most one per TypeKey,
// and dispatches add/remove events per key. Dispatch is synchronous: listeners
// run inside Add and Remove, before they return. Single goroutine only.
type ObjectRegistry struct {
	owner   EntityID
	objects map[TypeKey]*slot
	events  *Emitter[TypeKey, ObjectEvent]
	notify  func(ObjectEvent) // world-wide observer, may be nil
	log     *zap.Logger
}

// slot boxes a component so a re-add during dispatch is told apart from the
// entry being removed without comparing component values.
type slot struct {
	value any
}

func NewObjectRegistry(owner EntityID, log *zap.Logger) *ObjectRegistry {
	if log == nil {
		log = zap.NewNop()
	}
	return &ObjectRegistry{
		owner:   owner,
		objects: make(map[TypeKey]*slot, 8),
		events:  NewEmitter[TypeKey, ObjectEvent](),
		log:     log,
	}
}

// On subscribes l to add/remove events for key.
func (r *ObjectRegistry) On(key TypeKey, l Listener) {
	r.events.On(key, l, l.HandleObjectEvent)
}

// Off unsubscribes l from key. Safe to call repeatedly and from inside a dispatch.
func (r *ObjectRegistry) Off(key TypeKey, l Listener) {
	r.events.Off(key, l)
}

// OnFunc subscribes a plain function and returns the call that removes it.
func (r *ObjectRegistry) OnFunc(key TypeKey, fn func(ObjectEvent)) (off func()) {
	token := new(byte)
	r.events.On(key, token, fn)
	return func() { r.events.Off(key, token) }
}

// Listeners returns the number of subscriptions for key.
func (r *ObjectRegistry) Listeners(key TypeKey) int {
	return r.events.Count(key)
}

// Add stores c under its type key and notifies the key's listeners.
func (r *ObjectRegistry) Add(c any) error {
	if c == nil {
		return ErrNilComponent
	}
	key := KeyOf(c)
	if _, ok := r.objects[key]; ok {
		return fmt.Errorf("add %s to node %s: %w", key, r.owner, ErrDuplicate)
	}
	r.objects[key] = &slot{value: c}
	r.log.Debug("component added", zap.Stringer("node", r.owner), zap.String("type", string(key)))
	r.dispatch(ObjectEvent{Key: key, Object: c, Add: true})
	return nil
}

// Remove detaches the component of scope's type. Listeners are notified while
// the component is still registered, then it is dropped.
func (r *ObjectRegistry) Remove(scope any) (any, error) {
	key := KeyOf(scope)
	s, ok := r.objects[key]
	if !ok {
		return nil, fmt.Errorf("remove %s from node %s: %w", key, r.owner, ErrNotFound)
	}
	r.dispatch(ObjectEvent{Key: key, Object: s.value, Remove: true})
	// A listener may have re-added the type during dispatch; keep the newcomer.
	if cur, ok := r.objects[key]; ok && cur == s {
		delete(r.objects, key)
	}
	r.log.Debug("component removed", zap.Stringer("node", r.owner), zap.String("type", string(key)))
	return s.value, nil
}

// Lookup returns the component of scope's type. When absent it returns
// (nil, nil) if optional is set, otherwise an error wrapping ErrNotFound.
func (r *ObjectRegistry) Lookup(scope any, optional bool) (any, error) {
	key := KeyOf(scope)
	if s, ok := r.objects[key]; ok {
		return s.value, nil
	}
	if optional {
		return nil, nil
	}
	return nil, fmt.Errorf("lookup %s on node %s: %w", key, r.owner, ErrNotFound)
}

func (r *ObjectRegistry) Has(scope any) bool {
	_, ok := r.objects[KeyOf(scope)]
	return ok
}

func (r *ObjectRegistry) Len() int {
	return len(r.objects)
}

// Keys returns the registered type keys in sorted order.
func (r *ObjectRegistry) Keys() []TypeKey {
	keys := make([]TypeKey, 0, len(r.objects))
	for k := range r.objects {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Each calls fn for every component, ordered by key.
func (r *ObjectRegistry) Each(fn func(TypeKey, any)) {
	for _, k := range r.Keys() {
		if s, ok := r.objects[k]; ok {
			fn(k, s.value)
		}
	}
}

// Clear removes every component, emitting a remove event for each.
func (r *ObjectRegistry) Clear() {
	for _, k := range r.Keys() {
		if _, ok := r.objects[k]; ok {
			r.Remove(k)
		}
	}
}

func (r *ObjectRegistry) dispatch(ev ObjectEvent) {
	r.events.Emit(ev.Key, ev)
	if r.notify != nil {
		r.notify(ev)
	}
}

// Component returns r's component of type T, if present.
func Component[T any](r *ObjectRegistry) (T, bool) {
	c, _ := r.Lookup(KeyFor[T](), true)
	v, ok := c.(T)
	return v, ok
}
