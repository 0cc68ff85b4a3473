package db

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

// SyncConfig describes a keyed table whose rows are synchronized from a batch.
type SyncConfig struct {
	Table   string   // target table
	Columns []string // columns present in every row
	Keys    []string // unique key columns, used for ON CONFLICT

	// ScopeCol, when set, makes the batch authoritative per scope: target
	// rows whose ScopeCol value occurs in the batch but whose key does not
	// are deleted. Must be one of Keys.
	ScopeCol string
}

// SyncResult counts the rows written and pruned by Sync.
type SyncResult struct {
	Upserted int64
	Pruned   int64
}

type syncSQL struct {
	stage string
	merge string
	prune string // empty without ScopeCol
}

func (cfg SyncConfig) validate() error {
	if len(cfg.Columns) == 0 {
		return eris.New("db: sync: no columns specified")
	}
	if len(cfg.Keys) == 0 {
		return eris.New("db: sync: no key columns specified")
	}
	for _, k := range cfg.Keys {
		if !slices.Contains(cfg.Columns, k) {
			return eris.Errorf("db: sync: key column %q not in columns", k)
		}
	}
	if cfg.ScopeCol != "" && !slices.Contains(cfg.Keys, cfg.ScopeCol) {
		return eris.Errorf("db: sync: scope column %q is not a key column", cfg.ScopeCol)
	}
	return nil
}

func (cfg SyncConfig) stagingTable() string {
	return "_sync_" + strings.ReplaceAll(cfg.Table, ".", "_")
}

func buildSyncSQL(cfg SyncConfig) syncSQL {
	target := sanitizeTable(cfg.Table)
	staging := pgx.Identifier{cfg.stagingTable()}.Sanitize()
	cols := columnList(cfg.Columns)
	keys := columnList(cfg.Keys)

	var set []string
	for _, c := range cfg.Columns {
		if slices.Contains(cfg.Keys, c) {
			continue
		}
		q := pgx.Identifier{c}.Sanitize()
		set = append(set, q+" = EXCLUDED."+q)
	}
	action := "DO NOTHING"
	if len(set) > 0 {
		action = "DO UPDATE SET " + strings.Join(set, ", ")
	}

	out := syncSQL{
		stage: fmt.Sprintf("CREATE TEMP TABLE %s (LIKE %s INCLUDING DEFAULTS) ON COMMIT DROP", staging, target),
		merge: fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s ON CONFLICT (%s) %s",
			target, cols, cols, staging, keys, action),
	}
	if cfg.ScopeCol != "" {
		scope := pgx.Identifier{cfg.ScopeCol}.Sanitize()
		out.prune = fmt.Sprintf("DELETE FROM %s WHERE %s IN (SELECT DISTINCT %s FROM %s) AND (%s) NOT IN (SELECT %s FROM %s)",
			target, scope, scope, staging, keys, keys, staging)
	}
	return out
}

// Sync stages rows in a temp table with COPY, merges them into the target
// with INSERT ... ON CONFLICT and, with ScopeCol set, prunes rows missing
// from the batch. Everything runs in one transaction.
func Sync(ctx context.Context, pool Pool, cfg SyncConfig, rows [][]any) (SyncResult, error) {
	if len(rows) == 0 {
		return SyncResult{}, nil
	}
	if err := cfg.validate(); err != nil {
		return SyncResult{}, err
	}
	stmts := buildSyncSQL(cfg)

	tx, err := pool.Begin(ctx)
	if err != nil {
		return SyncResult{}, eris.Wrap(err, "db: sync: begin tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, stmts.stage); err != nil {
		return SyncResult{}, eris.Wrapf(err, "db: sync: stage %s", cfg.Table)
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{cfg.stagingTable()}, cfg.Columns, pgx.CopyFromRows(rows)); err != nil {
		return SyncResult{}, eris.Wrapf(err, "db: sync: COPY into staging for %s", cfg.Table)
	}

	var res SyncResult
	tag, err := tx.Exec(ctx, stmts.merge)
	if err != nil {
		return SyncResult{}, eris.Wrapf(err, "db: sync: merge into %s", cfg.Table)
	}
	res.Upserted = tag.RowsAffected()

	if stmts.prune != "" {
		tag, err := tx.Exec(ctx, stmts.prune)
		if err != nil {
			return SyncResult{}, eris.Wrapf(err, "db: sync: prune %s", cfg.Table)
		}
		res.Pruned = tag.RowsAffected()
	}

	if err := tx.Commit(ctx); err != nil {
		return SyncResult{}, eris.Wrap(err, "db: sync: commit tx")
	}
	return res, nil
}
