package persist

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// JournalKind names a lifecycle transition.
type JournalKind string

const (
	KindAttach  JournalKind = "attach"
	KindDetach  JournalKind = "detach"
	KindDestroy JournalKind = "destroy"
)

// JournalEntry records one component lifecycle transition.
type JournalEntry struct {
	RunID   uuid.UUID
	Tick    uint64
	NodeID  uint64
	TypeKey string // empty for KindDestroy
	Kind    JournalKind
}

type JournalRepo struct {
	db *DB
}

func NewJournalRepo(db *DB) *JournalRepo {
	return &JournalRepo{db: db}
}

// WriteBatch inserts entries in a single transaction; either all land or none.
func (r *JournalRepo) WriteBatch(ctx context.Context, entries []JournalEntry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("journal begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, e := range entries {
		if _, err := tx.Exec(ctx,
			`INSERT INTO component_journal (run_id, tick, node_id, type_key, kind)
			 VALUES ($1, $2, $3, $4, $5)`,
			e.RunID.String(), int64(e.Tick), int64(e.NodeID), e.TypeKey, string(e.Kind),
		); err != nil {
			return fmt.Errorf("journal insert: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// CountRun returns how many entries a run has written.
func (r *JournalRepo) CountRun(ctx context.Context, runID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.Pool.QueryRow(ctx,
		`SELECT count(*) FROM component_journal WHERE run_id = $1`, runID.String(),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("journal count: %w", err)
	}
	return n, nil
}
