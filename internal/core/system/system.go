package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhasePreUpdate Phase = iota // 0: deliver last tick's bus events
	PhaseUpdate                 // 1: scenario scripts
	PhasePersist                // 2: journal flush
	PhaseCleanup                // 3: destroy queued nodes
)

func (p Phase) String() string {
	switch p {
	case PhasePreUpdate:
		return "pre-update"
	case PhaseUpdate:
		return "update"
	case PhasePersist:
		return "persist"
	case PhaseCleanup:
		return "cleanup"
	}
	return "unknown"
}

// System is the interface every tick system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
