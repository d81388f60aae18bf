package persist

import (
	"context"
	"embed"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrations embed.FS

// gooseLogger routes goose progress lines (one per applied migration)
// through zap.
type gooseLogger struct{ log *zap.SugaredLogger }

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.log.Infof(strings.TrimRight(format, "\n"), v...)
}

func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	l.log.Fatalf(strings.TrimRight(format, "\n"), v...)
}

// RunMigrations applies the pending content schema migrations and returns
// the schema version the database ends up at.
func RunMigrations(ctx context.Context, db *DB) (int64, error) {
	goose.SetLogger(gooseLogger{log: db.log.Named("migrate").Sugar()})
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return 0, fmt.Errorf("set dialect: %w", err)
	}

	sqlDB := stdlib.OpenDBFromPool(db.Pool)
	defer sqlDB.Close()

	before, err := goose.GetDBVersionContext(ctx, sqlDB)
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	if err := goose.UpContext(ctx, sqlDB, "migrations"); err != nil {
		return before, fmt.Errorf("run migrations from version %d: %w", before, err)
	}
	after, err := goose.GetDBVersionContext(ctx, sqlDB)
	if err != nil {
		return before, fmt.Errorf("read schema version: %w", err)
	}

	if after != before {
		db.log.Info("資料庫結構已更新", zap.Int64("from", before), zap.Int64("to", after))
	} else {
		db.log.Debug("資料庫結構已是最新", zap.Int64("version", after))
	}
	return after, nil
}
