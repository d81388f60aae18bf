package persist

import (
	"context"
	"fmt"

	"github.com/l1jgo/lazytile/internal/content"
	"github.com/l1jgo/lazytile/internal/coord"
)

// Journal operations.
const (
	OpAdd    = "add"
	OpRemove = "remove"
)

// JournalEntry records one content mutation.
type JournalEntry struct {
	Op         string // OpAdd or OpRemove
	Coord      coord.Coord
	Descriptor content.Descriptor
	Source     string // feed session or "boot"
}

type JournalRepo struct {
	db      *DB
	content *ContentRepo
}

func NewJournalRepo(db *DB) *JournalRepo {
	return &JournalRepo{db: db, content: NewContentRepo(db)}
}

// Append writes a batch of entries and applies them to content_placements in
// a single transaction.
func (r *JournalRepo) Append(ctx context.Context, entries []JournalEntry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("journal begin: %w", err)
	}
	defer tx.Rollback(ctx)

	placements := r.content.inTx(tx)
	for _, e := range entries {
		if _, err := tx.Exec(ctx,
			`INSERT INTO content_journal (op, x, y, kind, variant, source)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			e.Op, e.Coord.X, e.Coord.Y, e.Descriptor.Kind, e.Descriptor.Variant, e.Source,
		); err != nil {
			return fmt.Errorf("journal insert: %w", err)
		}
		switch e.Op {
		case OpAdd:
			err = placements.Insert(ctx, e.Coord, e.Descriptor)
		case OpRemove:
			_, err = placements.Delete(ctx, e.Coord, e.Descriptor)
		default:
			err = fmt.Errorf("unknown op %q", e.Op)
		}
		if err != nil {
			return fmt.Errorf("journal apply: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// Trim keeps the newest keep journal rows and returns how many were deleted.
func (r *JournalRepo) Trim(ctx context.Context, keep int) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx,
		`DELETE FROM content_journal WHERE id <= (
			SELECT COALESCE(MAX(id), 0) - $1 FROM content_journal
		)`,
		keep,
	)
	if err != nil {
		return 0, fmt.Errorf("journal trim: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Count returns the number of journal rows.
func (r *JournalRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM content_journal`).Scan(&n)
	return n, err
}
