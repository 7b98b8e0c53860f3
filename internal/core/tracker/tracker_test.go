package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l1jgo/nodekit/internal/core/ecs"
)

type health struct{ HP int }

type mana struct{ MP int }

type subscription struct {
	key ecs.TypeKey
	l   ecs.Listener
}

// fakeRegistry records subscriptions and hands events to listeners directly.
type fakeRegistry struct {
	objects map[ecs.TypeKey]any
	on      []subscription
	off     []subscription
	active  map[subscription]bool
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{
		objects: make(map[ecs.TypeKey]any),
		active:  make(map[subscription]bool),
	}
}

func (f *fakeRegistry) On(key ecs.TypeKey, l ecs.Listener) {
	s := subscription{key, l}
	f.on = append(f.on, s)
	f.active[s] = true
}

func (f *fakeRegistry) Off(key ecs.TypeKey, l ecs.Listener) {
	s := subscription{key, l}
	f.off = append(f.off, s)
	delete(f.active, s)
}

func (f *fakeRegistry) Lookup(scope any, optional bool) (any, error) {
	if c, ok := f.objects[ecs.KeyOf(scope)]; ok {
		return c, nil
	}
	if optional {
		return nil, nil
	}
	return nil, ecs.ErrNotFound
}

func (f *fakeRegistry) emit(ev ecs.ObjectEvent) {
	for s := range f.active {
		if s.key == ev.Key {
			s.l.HandleObjectEvent(ev)
		}
	}
}

type calls struct {
	attached []*health
	detached []*health
}

func (c *calls) attach(h *health) { c.attached = append(c.attached, h) }
func (c *calls) detach(h *health) { c.detached = append(c.detached, h) }

func TestNewWithExistingComponent(t *testing.T) {
	reg := newFakeRegistry()
	h := &health{HP: 10}
	reg.objects[ecs.KeyOf(h)] = h

	var c calls
	tr := New(reg, c.attach, c.detach)

	got, ok := tr.Component()
	require.True(t, ok)
	assert.Same(t, h, got)
	assert.Equal(t, []*health{h}, c.attached)
	assert.Empty(t, c.detached)
}

func TestNewWithoutComponent(t *testing.T) {
	reg := newFakeRegistry()
	var c calls
	tr := New(reg, c.attach, c.detach)

	assert.False(t, tr.Bound())
	assert.Nil(t, tr.Get())
	assert.Empty(t, c.attached)
	require.Len(t, reg.on, 1)
	assert.Equal(t, ecs.KeyFor[health](), reg.on[0].key)
	assert.Same(t, tr, reg.on[0].l)
}

func TestSubscribesBeforeLookup(t *testing.T) {
	reg := &orderRegistry{fakeRegistry: newFakeRegistry()}
	New[*health](reg, nil, nil)
	assert.Equal(t, []string{"on", "lookup"}, reg.order)
}

type orderRegistry struct {
	*fakeRegistry
	order []string
}

func (o *orderRegistry) On(key ecs.TypeKey, l ecs.Listener) {
	o.order = append(o.order, "on")
	o.fakeRegistry.On(key, l)
}

func (o *orderRegistry) Lookup(scope any, optional bool) (any, error) {
	o.order = append(o.order, "lookup")
	return o.fakeRegistry.Lookup(scope, optional)
}

func TestAddTransition(t *testing.T) {
	reg := newFakeRegistry()
	var c calls
	tr := New(reg, c.attach, c.detach)

	h := &health{HP: 3}
	reg.emit(ecs.ObjectEvent{Key: tr.Key(), Object: h, Add: true})

	assert.Same(t, h, tr.Get())
	assert.Equal(t, []*health{h}, c.attached)
	assert.Empty(t, c.detached)
}

func TestRemoveTransitionSeesCurrent(t *testing.T) {
	reg := newFakeRegistry()
	h := &health{HP: 3}
	reg.objects[ecs.KeyOf(h)] = h

	var tr *Tracker[*health]
	var seen []*health
	tr = New(reg, nil, func(d *health) {
		seen = append(seen, tr.Get())
		assert.Same(t, h, d)
	})

	reg.emit(ecs.ObjectEvent{Key: tr.Key(), Object: h, Remove: true})

	assert.Equal(t, []*health{h}, seen)
	assert.False(t, tr.Bound())
	assert.Nil(t, tr.Get())
}

func TestNilCallbacks(t *testing.T) {
	reg := newFakeRegistry()
	tr := New[*health](reg, nil, nil)
	h := &health{}

	assert.NotPanics(t, func() {
		reg.emit(ecs.ObjectEvent{Key: tr.Key(), Object: h, Add: true})
		reg.emit(ecs.ObjectEvent{Key: tr.Key(), Object: h, Remove: true})
	})
	assert.False(t, tr.Bound())
}

func TestDisposeUnsubscribes(t *testing.T) {
	reg := newFakeRegistry()
	h := &health{}
	reg.objects[ecs.KeyOf(h)] = h

	var c calls
	tr := New(reg, c.attach, c.detach)
	require.True(t, tr.Bound())

	tr.Dispose()

	require.Len(t, reg.off, 1)
	assert.Equal(t, reg.on[0], reg.off[0])
	assert.False(t, tr.Bound())
	assert.Nil(t, tr.Get())

	reg.emit(ecs.ObjectEvent{Key: tr.Key(), Object: &health{}, Add: true})
	assert.Len(t, c.attached, 1)
	assert.False(t, tr.Bound())

	// Even a direct stale delivery must not reach the old callbacks.
	tr.HandleObjectEvent(ecs.ObjectEvent{Key: tr.Key(), Object: h, Remove: true})
	assert.Empty(t, c.detached)
}

func TestDisposeTwice(t *testing.T) {
	reg := newFakeRegistry()
	tr := New[*health](reg, nil, nil)
	assert.NotPanics(t, func() {
		tr.Dispose()
		tr.Dispose()
	})
	assert.Len(t, reg.off, 1)
}

func TestTypeIsolation(t *testing.T) {
	reg := newFakeRegistry()
	var c calls
	tr := New(reg, c.attach, c.detach)

	m := &mana{MP: 5}
	tr.HandleObjectEvent(ecs.ObjectEvent{Key: ecs.KeyOf(m), Object: m, Add: true})
	tr.HandleObjectEvent(ecs.ObjectEvent{Key: ecs.KeyOf(m), Object: m, Remove: true})

	assert.False(t, tr.Bound())
	assert.Empty(t, c.attached)
	assert.Empty(t, c.detached)
}

func TestEventWithoutFlagIgnored(t *testing.T) {
	reg := newFakeRegistry()
	var c calls
	tr := New(reg, c.attach, c.detach)

	tr.HandleObjectEvent(ecs.ObjectEvent{Key: tr.Key(), Object: &health{}})
	assert.False(t, tr.Bound())
	assert.Empty(t, c.attached)
}

func TestSecondAddOverwrites(t *testing.T) {
	reg := newFakeRegistry()
	var c calls
	tr := New(reg, c.attach, c.detach)

	first, second := &health{HP: 1}, &health{HP: 2}
	reg.emit(ecs.ObjectEvent{Key: tr.Key(), Object: first, Add: true})
	reg.emit(ecs.ObjectEvent{Key: tr.Key(), Object: second, Add: true})

	assert.Same(t, second, tr.Get())
	assert.Equal(t, []*health{first, second}, c.attached)
	assert.Empty(t, c.detached)
}

func TestScopedByInstance(t *testing.T) {
	reg := newFakeRegistry()
	h := &health{HP: 7}
	reg.objects[ecs.KeyOf(h)] = h

	var got any
	tr := NewScoped[any](reg, health{}, func(c any) { got = c }, nil)

	assert.Equal(t, ecs.KeyFor[health](), tr.Key())
	assert.Same(t, h, got)
	assert.Same(t, h, tr.Get())
}

func TestCallbackPanicPropagates(t *testing.T) {
	reg := newFakeRegistry()
	tr := New(reg, func(*health) { panic("boom") }, nil)

	assert.PanicsWithValue(t, "boom", func() {
		reg.emit(ecs.ObjectEvent{Key: tr.Key(), Object: &health{}, Add: true})
	})
}

func TestLifecycleAgainstObjectRegistry(t *testing.T) {
	reg := ecs.NewObjectRegistry(ecs.NewEntityID(1, 0), nil)

	var c calls
	var currentAtDetach *health
	var tr *Tracker[*health]
	tr = New(reg, c.attach, func(h *health) {
		c.detach(h)
		currentAtDetach = tr.Get()
	})
	assert.False(t, tr.Bound())
	assert.Empty(t, c.attached)
	assert.Empty(t, c.detached)

	c1 := &health{HP: 1}
	require.NoError(t, reg.Add(c1))
	assert.Same(t, c1, tr.Get())
	assert.Equal(t, []*health{c1}, c.attached)

	_, err := reg.Remove(c1)
	require.NoError(t, err)
	assert.Equal(t, []*health{c1}, c.detached)
	assert.Same(t, c1, currentAtDetach)
	assert.False(t, tr.Bound())

	tr.Dispose()
	assert.Zero(t, reg.Listeners(tr.Key()))

	c2 := &health{HP: 2}
	require.NoError(t, reg.Add(c2))
	assert.False(t, tr.Bound())
	assert.Len(t, c.attached, 1)
}

func TestDisposeInsideCallback(t *testing.T) {
	reg := ecs.NewObjectRegistry(0, nil)

	var second int
	var first *Tracker[*health]
	first = New(reg, func(*health) { first.Dispose() }, nil)
	New(reg, func(*health) { second++ }, nil)

	require.NoError(t, reg.Add(&health{}))
	assert.Equal(t, 1, second)
	assert.False(t, first.Bound())
	assert.Equal(t, 1, reg.Listeners(ecs.KeyFor[health]()))
}

func TestValueTypeRejected(t *testing.T) {
	reg := ecs.NewObjectRegistry(0, nil)

	assert.PanicsWithValue(t, "tracker: cannot track tracker.health by value, use *tracker.health", func() {
		New(reg, func(health) {}, nil)
	})
	assert.Zero(t, reg.Listeners(ecs.KeyFor[health]()))

	var attached int
	tr := New(reg, func(*health) { attached++ }, nil)
	require.NoError(t, reg.Add(&health{HP: 1}))
	assert.True(t, tr.Bound())
	assert.Equal(t, 1, attached)
}
