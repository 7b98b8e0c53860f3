package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l1jgo/nodekit/internal/core/ecs"
)

type recorder struct {
	name string
	log  *[]string
}

func (r recorder) Dispose() { *r.log = append(*r.log, r.name) }

func TestGroupDisposesInReverse(t *testing.T) {
	var log []string
	var g Group
	g.Add(recorder{"a", &log})
	g.Add(recorder{"b", &log})
	require.Equal(t, 2, g.Len())

	g.Dispose()
	assert.Equal(t, []string{"b", "a"}, log)
	assert.Zero(t, g.Len())

	g.Dispose()
	assert.Len(t, log, 2)
}

func TestTrackAddsToGroup(t *testing.T) {
	reg := ecs.NewObjectRegistry(0, nil)
	var g Group

	h := Track[*health](&g, reg, nil, nil)
	m := Track[*mana](&g, reg, nil, nil)
	require.NoError(t, reg.Add(&health{HP: 1}))
	assert.True(t, h.Bound())
	assert.False(t, m.Bound())

	g.Dispose()
	assert.False(t, h.Bound())
	assert.Zero(t, reg.Listeners(ecs.KeyFor[health]()))
	assert.Zero(t, reg.Listeners(ecs.KeyFor[mana]()))
}

func TestGroupRemove(t *testing.T) {
	reg := ecs.NewObjectRegistry(0, nil)
	var g Group
	h := Track[*health](&g, reg, nil, nil)
	m := Track[*mana](&g, reg, nil, nil)

	assert.True(t, g.Remove(h))
	assert.False(t, g.Remove(h))
	assert.Equal(t, 1, g.Len())
	assert.Equal(t, 1, reg.Listeners(ecs.KeyFor[health]()), "removal does not dispose")

	h.Dispose()
	g.Dispose()
	assert.False(t, m.Bound())
	assert.Zero(t, reg.Listeners(ecs.KeyFor[mana]()))
}
