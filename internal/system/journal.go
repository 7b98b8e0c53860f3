package system

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/l1jgo/nodekit/internal/core/ecs"
	"github.com/l1jgo/nodekit/internal/core/event"
	coresys "github.com/l1jgo/nodekit/internal/core/system"
	"github.com/l1jgo/nodekit/internal/persist"
)

// JournalWriter stores a batch of lifecycle entries. *persist.JournalRepo implements it.
type JournalWriter interface {
	WriteBatch(ctx context.Context, entries []persist.JournalEntry) error
}

// JournalSystem collects lifecycle events from the bus and writes them out
// every interval ticks. Entries carry the tick the transition happened in;
// tick 0 covers everything before the first tick. Phase 2 (Persist).
type JournalSystem struct {
	writer    JournalWriter
	runID     uuid.UUID
	log       *zap.Logger
	interval  int
	tickCount int
	tick      uint64
	pending   []persist.JournalEntry
}

func NewJournalSystem(bus *event.Bus, writer JournalWriter, runID uuid.UUID, intervalTicks int, log *zap.Logger) *JournalSystem {
	s := &JournalSystem{
		writer:   writer,
		runID:    runID,
		log:      log,
		interval: intervalTicks,
		pending:  make([]persist.JournalEntry, 0, 64),
	}
	event.Subscribe(bus, func(ev event.ComponentAttached) {
		s.record(ev.Node, string(ev.Key), persist.KindAttach)
	})
	event.Subscribe(bus, func(ev event.ComponentDetached) {
		s.record(ev.Node, string(ev.Key), persist.KindDetach)
	})
	event.Subscribe(bus, func(ev event.NodeDestroyed) {
		s.record(ev.Node, "", persist.KindDestroy)
	})
	return s
}

func (s *JournalSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *JournalSystem) Update(_ time.Duration) {
	s.tick++
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Flush(ctx); err != nil {
		// Entries stay pending and go out with the next flush.
		s.log.Warn("journal flush failed", zap.Int("pending", len(s.pending)), zap.Error(err))
	}
}

// Flush writes every pending entry. On error nothing is dropped.
func (s *JournalSystem) Flush(ctx context.Context) error {
	if len(s.pending) == 0 {
		return nil
	}
	batch := s.pending
	if err := s.writer.WriteBatch(ctx, batch); err != nil {
		return err
	}
	s.log.Debug("journal flushed", zap.Int("entries", len(batch)), zap.Uint64("tick", s.tick))
	// The writer may hold on to batch; start a new buffer.
	s.pending = make([]persist.JournalEntry, 0, cap(batch))
	return nil
}

func (s *JournalSystem) Pending() int {
	return len(s.pending)
}

func (s *JournalSystem) record(node ecs.EntityID, key string, kind persist.JournalKind) {
	s.pending = append(s.pending, persist.JournalEntry{
		RunID:   s.runID,
		Tick:    s.tick,
		NodeID:  uint64(node),
		TypeKey: key,
		Kind:    kind,
	})
}
