package system

import (
	"time"

	"go.uber.org/zap"

	coresys "github.com/l1jgo/nodekit/internal/core/system"
)

// TickHook is the scripting entry point called once per tick.
type TickHook interface {
	CallTick(tick uint64) error
}

// ScriptSystem runs the scenario's per-tick hook. A failing hook is logged and
// the tick carries on. Phase 1 (Update).
type ScriptSystem struct {
	hook TickHook
	log  *zap.Logger
	tick uint64
}

func NewScriptSystem(hook TickHook, log *zap.Logger) *ScriptSystem {
	return &ScriptSystem{hook: hook, log: log}
}

func (s *ScriptSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *ScriptSystem) Update(_ time.Duration) {
	s.tick++
	if err := s.hook.CallTick(s.tick); err != nil {
		s.log.Error("scenario tick failed", zap.Uint64("tick", s.tick), zap.Error(err))
	}
}
