package system

import (
	"time"

	"github.com/l1jgo/nodekit/internal/core/ecs"
	coresys "github.com/l1jgo/nodekit/internal/core/system"
)

// CleanupSystem flushes the deferred node destruction queue at tick end.
// Destroying a node detaches its components, so trackers on it fire here.
// Phase 3 (Cleanup).
type CleanupSystem struct {
	world *ecs.World
}

func NewCleanupSystem(world *ecs.World) *CleanupSystem {
	return &CleanupSystem{world: world}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	s.world.FlushDestroyQueue()
}
