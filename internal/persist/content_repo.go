package persist

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/l1jgo/lazytile/internal/content"
	"github.com/l1jgo/lazytile/internal/coord"
)

// ContentRow is one persisted placement.
type ContentRow struct {
	Coord      coord.Coord
	Descriptor content.Descriptor
}

// execer is satisfied by both the pool and a transaction.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// ContentRepo stores placements added or removed at runtime so they survive
// a restart.
type ContentRepo struct {
	db *DB
	ex execer
}

func NewContentRepo(db *DB) *ContentRepo {
	return &ContentRepo{db: db, ex: db.Pool}
}

// inTx returns a repo whose writes run inside tx.
func (r *ContentRepo) inTx(tx pgx.Tx) *ContentRepo {
	return &ContentRepo{db: r.db, ex: tx}
}

// LoadAll returns every stored placement ordered by (x, y, kind, variant).
func (r *ContentRepo) LoadAll(ctx context.Context) ([]ContentRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT x, y, kind, variant FROM content_placements ORDER BY x, y, kind, variant`,
	)
	if err != nil {
		return nil, fmt.Errorf("query content: %w", err)
	}
	defer rows.Close()

	var out []ContentRow
	for rows.Next() {
		var row ContentRow
		if err := rows.Scan(&row.Coord.X, &row.Coord.Y, &row.Descriptor.Kind, &row.Descriptor.Variant); err != nil {
			return nil, fmt.Errorf("scan content: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Insert stores a placement. Storing one that exists is a no-op.
func (r *ContentRepo) Insert(ctx context.Context, c coord.Coord, d content.Descriptor) error {
	_, err := r.ex.Exec(ctx,
		`INSERT INTO content_placements (x, y, kind, variant) VALUES ($1, $2, $3, $4)
		 ON CONFLICT DO NOTHING`,
		c.X, c.Y, d.Kind, d.Variant,
	)
	if err != nil {
		return fmt.Errorf("insert content %s at %s: %w", d, c, err)
	}
	return nil
}

// Delete removes a placement and reports whether it existed.
func (r *ContentRepo) Delete(ctx context.Context, c coord.Coord, d content.Descriptor) (bool, error) {
	tag, err := r.ex.Exec(ctx,
		`DELETE FROM content_placements WHERE x = $1 AND y = $2 AND kind = $3 AND variant = $4`,
		c.X, c.Y, d.Kind, d.Variant,
	)
	if err != nil {
		return false, fmt.Errorf("delete content %s at %s: %w", d, c, err)
	}
	return tag.RowsAffected() > 0, nil
}
