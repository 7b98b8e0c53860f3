package event

import "github.com/l1jgo/nodekit/internal/core/ecs"

// Lifecycle events forwarded from node registries onto the bus.

type ComponentAttached struct {
	Node ecs.EntityID
	Key  ecs.TypeKey
}

type ComponentDetached struct {
	Node ecs.EntityID
	Key  ecs.TypeKey
}

type NodeDestroyed struct {
	Node ecs.EntityID
	Name string
}
