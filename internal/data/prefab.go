package data

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/l1jgo/nodekit/internal/core/ecs"
)

// PrefabComponent is one component of a prefab, built through the component catalog.
type PrefabComponent struct {
	Type   ecs.TypeKey    `yaml:"type"`
	Fields map[string]any `yaml:"fields"`
}

// Prefab is a named node template.
type Prefab struct {
	Name       string            `yaml:"name"`
	Components []PrefabComponent `yaml:"components"`
	Note       string            `yaml:"note"`
}

// PrefabTable indexes prefabs by name.
type PrefabTable struct {
	prefabs map[string]*Prefab
}

// LoadPrefabTable loads a prefab list such as data/prefabs.yaml.
func LoadPrefabTable(path string) (*PrefabTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prefab list: %w", err)
	}
	return ParsePrefabTable(raw)
}

// ParsePrefabTable builds a table from YAML. Names must be unique and a
// prefab may list each component type once.
func ParsePrefabTable(raw []byte) (*PrefabTable, error) {
	var entries []Prefab
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse prefab list: %w", err)
	}
	t := &PrefabTable{
		prefabs: make(map[string]*Prefab, len(entries)),
	}
	for i := range entries {
		p := &entries[i]
		if p.Name == "" {
			return nil, fmt.Errorf("prefab #%d: missing name", i)
		}
		if _, dup := t.prefabs[p.Name]; dup {
			return nil, fmt.Errorf("prefab %q: defined twice", p.Name)
		}
		seen := make(map[ecs.TypeKey]bool, len(p.Components))
		for _, c := range p.Components {
			if c.Type == "" {
				return nil, fmt.Errorf("prefab %q: component without type", p.Name)
			}
			if seen[c.Type] {
				return nil, fmt.Errorf("prefab %q: component %s listed twice", p.Name, c.Type)
			}
			seen[c.Type] = true
		}
		t.prefabs[p.Name] = p
	}
	return t, nil
}

// Get returns the prefab with the given name, or nil if none.
func (t *PrefabTable) Get(name string) *Prefab {
	return t.prefabs[name]
}

// Count returns the total number of prefabs loaded.
func (t *PrefabTable) Count() int {
	return len(t.prefabs)
}

// Names returns every prefab name, sorted.
func (t *PrefabTable) Names() []string {
	names := make([]string, 0, len(t.prefabs))
	for n := range t.prefabs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
