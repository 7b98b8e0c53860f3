package world

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/l1jgo/nodekit/internal/component"
	"github.com/l1jgo/nodekit/internal/core/ecs"
	"github.com/l1jgo/nodekit/internal/data"
)

// Spawner instantiates prefabs and catalog components into the world.
type Spawner struct {
	world   *ecs.World
	catalog *component.Catalog
	prefabs *data.PrefabTable
	log     *zap.Logger
}

func NewSpawner(w *ecs.World, catalog *component.Catalog, prefabs *data.PrefabTable, log *zap.Logger) *Spawner {
	return &Spawner{world: w, catalog: catalog, prefabs: prefabs, log: log}
}

func (s *Spawner) World() *ecs.World { return s.world }

// Spawn creates a node from the named prefab, attaching its components in
// listed order. On failure the half-built node is queued for destruction.
func (s *Spawner) Spawn(prefab string) (*ecs.Node, error) {
	p := s.prefabs.Get(prefab)
	if p == nil {
		return nil, fmt.Errorf("spawn %q: unknown prefab", prefab)
	}
	n := s.world.CreateNode(p.Name)
	for _, pc := range p.Components {
		if _, err := s.Attach(n, pc.Type, pc.Fields); err != nil {
			s.world.MarkForDestruction(n.ID)
			return nil, fmt.Errorf("spawn %q: %w", prefab, err)
		}
	}
	s.log.Debug("prefab spawned",
		zap.String("prefab", p.Name),
		zap.Stringer("node", n.ID),
		zap.Int("components", n.Components.Len()),
	)
	return n, nil
}

// Attach builds a component from the catalog and adds it to n.
func (s *Spawner) Attach(n *ecs.Node, key ecs.TypeKey, fields map[string]any) (any, error) {
	c, err := s.catalog.Build(key, fields)
	if err != nil {
		return nil, err
	}
	if err := n.Components.Add(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Detach removes the component stored under key from n.
func (s *Spawner) Detach(n *ecs.Node, key ecs.TypeKey) error {
	_, err := n.Components.Remove(key)
	return err
}
