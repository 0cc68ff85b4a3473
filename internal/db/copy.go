package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

// CopyFrom bulk-inserts rows into a table using the PostgreSQL COPY protocol.
func CopyFrom(ctx context.Context, pool Pool, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	n, err := pool.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, eris.Wrapf(err, "db: COPY INTO %s", table)
	}
	return n, nil
}

// ReplaceConfig selects the rows a ReplaceRows call owns.
type ReplaceConfig struct {
	Table    string   // target table
	Columns  []string // columns being copied
	ScopeCol string   // column identifying the owned rows (e.g. "inspection_id")
	ScopeVal any      // value of ScopeCol for the owned rows
}

// ReplaceRows deletes every row where ScopeCol = ScopeVal and copies rows in
// their place, in one transaction. An empty rows slice clears the scope.
func ReplaceRows(ctx context.Context, pool Pool, cfg ReplaceConfig, rows [][]any) (int64, error) {
	if len(cfg.Columns) == 0 {
		return 0, eris.New("db: replace: no columns specified")
	}
	if cfg.ScopeCol == "" {
		return 0, eris.New("db: replace: no scope column specified")
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "db: replace: begin tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	deleteSQL := fmt.Sprintf("DELETE FROM %s WHERE %s = $1",
		sanitizeTable(cfg.Table), pgx.Identifier{cfg.ScopeCol}.Sanitize())
	if _, err := tx.Exec(ctx, deleteSQL, cfg.ScopeVal); err != nil {
		return 0, eris.Wrapf(err, "db: replace: delete from %s", cfg.Table)
	}

	var n int64
	if len(rows) > 0 {
		n, err = tx.CopyFrom(ctx, pgx.Identifier{cfg.Table}, cfg.Columns, pgx.CopyFromRows(rows))
		if err != nil {
			return 0, eris.Wrapf(err, "db: replace: COPY INTO %s", cfg.Table)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "db: replace: commit tx")
	}
	return n, nil
}
