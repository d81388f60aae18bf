package persist

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/l1jgo/lazytile/internal/config"
	"github.com/l1jgo/lazytile/internal/content"
	"github.com/l1jgo/lazytile/internal/coord"
	"go.uber.org/zap/zaptest"
)

// openTestDB connects to LAZYTILE_TEST_DSN and runs migrations on a clean
// schema. Tests are skipped when it is unset.
func openTestDB(t *testing.T) *DB {
	t.Helper()
	dsn := os.Getenv("LAZYTILE_TEST_DSN")
	if dsn == "" {
		t.Skip("LAZYTILE_TEST_DSN not set")
	}
	ctx := context.Background()
	db, err := NewDB(ctx, config.DatabaseConfig{
		DSN:             dsn,
		MaxOpenConns:    4,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Minute,
	}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(db.Close)
	version, err := RunMigrations(ctx, db)
	if err != nil {
		t.Fatal(err)
	}
	if version < 1 {
		t.Fatalf("schema version = %d after migrating", version)
	}
	if again, err := RunMigrations(ctx, db); err != nil || again != version {
		t.Fatalf("second run: version=%d err=%v, want %d", again, err, version)
	}
	if _, err := db.Pool.Exec(ctx, `TRUNCATE content_placements, content_journal`); err != nil {
		t.Fatal(err)
	}
	return db
}

func TestContentRepoRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewContentRepo(db)

	tree := content.Descriptor{Kind: "tree", Variant: "oak"}
	c := coord.Coord{X: -4, Y: 9}
	if err := repo.Insert(ctx, c, tree); err != nil {
		t.Fatal(err)
	}
	if err := repo.Insert(ctx, c, tree); err != nil {
		t.Fatal(err)
	}
	rows, err := repo.LoadAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].Coord != c || rows[0].Descriptor != tree {
		t.Fatalf("rows = %+v", rows)
	}
	ok, err := repo.Delete(ctx, c, tree)
	if err != nil || !ok {
		t.Fatalf("delete = %v, %v", ok, err)
	}
	ok, _ = repo.Delete(ctx, c, tree)
	if ok {
		t.Error("second delete should report nothing removed")
	}
}

func TestJournalAppendAndTrim(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	journal := NewJournalRepo(db)
	repo := NewContentRepo(db)

	d := content.Descriptor{Kind: "rock", Variant: "small"}
	err := journal.Append(ctx, []JournalEntry{
		{Op: OpAdd, Coord: coord.Coord{X: 1, Y: 1}, Descriptor: d, Source: "test"},
		{Op: OpAdd, Coord: coord.Coord{X: 2, Y: 2}, Descriptor: d, Source: "test"},
		{Op: OpRemove, Coord: coord.Coord{X: 1, Y: 1}, Descriptor: d, Source: "test"},
	})
	if err != nil {
		t.Fatal(err)
	}
	rows, _ := repo.LoadAll(ctx)
	if len(rows) != 1 || rows[0].Coord != (coord.Coord{X: 2, Y: 2}) {
		t.Fatalf("placements after journal = %+v", rows)
	}

	n, err := journal.Trim(ctx, 1)
	if err != nil || n != 2 {
		t.Fatalf("trim = %d, %v", n, err)
	}
	if c, _ := journal.Count(ctx); c != 1 {
		t.Errorf("count after trim = %d", c)
	}

	if err := journal.Append(ctx, []JournalEntry{{Op: "bogus", Descriptor: d}}); err == nil {
		t.Error("unknown op should fail the batch")
	}
}

func TestJournalAppendRollsBackPlacements(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	journal := NewJournalRepo(db)

	d := content.Descriptor{Kind: "sign", Variant: "north"}
	err := journal.Append(ctx, []JournalEntry{
		{Op: OpAdd, Coord: coord.Coord{X: 3, Y: 3}, Descriptor: d, Source: "test"},
		{Op: "bogus", Coord: coord.Coord{X: 4, Y: 4}, Descriptor: d, Source: "test"},
	})
	if err == nil {
		t.Fatal("a batch with an unknown op must fail")
	}
	rows, err := NewContentRepo(db).LoadAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 0 {
		t.Errorf("placements written by a failed batch: %+v", rows)
	}
	if c, _ := journal.Count(ctx); c != 0 {
		t.Errorf("journal rows written by a failed batch: %d", c)
	}
}
