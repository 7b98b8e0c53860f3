package component

import (
	"errors"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/l1jgo/nodekit/internal/core/ecs"
)

var ErrUnknownType = errors.New("unknown component type")

// Factory returns a fresh, pointer-typed component.
type Factory func() any

// Catalog maps type keys to component factories so prefabs and scripts can
// build components by name.
type Catalog struct {
	factories map[ecs.TypeKey]Factory
}

func NewCatalog() *Catalog {
	return &Catalog{factories: make(map[ecs.TypeKey]Factory, 16)}
}

// Register adds T under its type key. Components are always built as *T.
func Register[T any](c *Catalog) {
	c.factories[ecs.KeyFor[T]()] = func() any { return new(T) }
}

// Builtin returns a catalog holding every component type in this package.
func Builtin() *Catalog {
	c := NewCatalog()
	Register[Transform](c)
	Register[Collider](c)
	Register[Health](c)
	Register[Renderable](c)
	Register[Script](c)
	Register[Tag](c)
	return c
}

func (c *Catalog) Has(key ecs.TypeKey) bool {
	_, ok := c.factories[key]
	return ok
}

// Keys returns the registered type keys, sorted.
func (c *Catalog) Keys() []ecs.TypeKey {
	keys := make([]ecs.TypeKey, 0, len(c.factories))
	for k := range c.factories {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Build creates a component of type key and fills it from fields, which use
// the component's yaml field names.
func (c *Catalog) Build(key ecs.TypeKey, fields map[string]any) (any, error) {
	f, ok := c.factories[key]
	if !ok {
		return nil, fmt.Errorf("build %q: %w", key, ErrUnknownType)
	}
	obj := f()
	if len(fields) == 0 {
		return obj, nil
	}
	raw, err := yaml.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode %s fields: %w", key, err)
	}
	if err := yaml.Unmarshal(raw, obj); err != nil {
		return nil, fmt.Errorf("decode %s fields: %w", key, err)
	}
	return obj, nil
}
