package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l1jgo/nodekit/internal/core/ecs"
)

const samplePrefabs = `
- name: player
  components:
    - type: Transform
      fields: {x: 1, y: 2}
    - type: Health
      fields: {hp: 100, max_hp: 100}
- name: marker
  note: bare transform
  components:
    - type: Transform
`

func TestLoadPrefabTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefabs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(samplePrefabs), 0o644))

	table, err := LoadPrefabTable(path)
	require.NoError(t, err)
	assert.Equal(t, 2, table.Count())
	assert.Equal(t, []string{"marker", "player"}, table.Names())

	p := table.Get("player")
	require.NotNil(t, p)
	require.Len(t, p.Components, 2)
	assert.Equal(t, ecs.TypeKey("Health"), p.Components[1].Type)
	assert.Equal(t, 100, p.Components[1].Fields["hp"])
	assert.Nil(t, table.Get("ghost"))
}

func TestParsePrefabTableRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"missing name":   "- components: []",
		"duplicate name": "- name: a\n- name: a",
		"untyped":        "- name: a\n  components:\n    - fields: {x: 1}",
		"duplicate type": "- name: a\n  components:\n    - type: Tag\n    - type: Tag",
		"not a list":     "name: a",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParsePrefabTable([]byte(raw))
			assert.Error(t, err)
		})
	}
}

func TestLoadPrefabTableMissingFile(t *testing.T) {
	_, err := LoadPrefabTable(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
