package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

// UpsertConfig defines the parameters for a bulk upsert operation.
type UpsertConfig struct {
	Table         string   // target table (e.g., "ibge.municipalities")
	Columns       []string // all columns being inserted
	ConflictKeys  []string // columns forming the unique constraint
	UpdateCols    []string // columns to update on conflict; nil = all non-conflict columns
	SkipUnchanged bool     // only update rows whose non-key values actually differ
	Prune         bool     // delete target rows whose keys are absent from the batch
}

// UpsertResult reports what a bulk upsert did.
type UpsertResult struct {
	Upserted int64 // rows inserted or updated
	Pruned   int64 // rows deleted by prune mode
}

// BulkUpsert performs a bulk upsert via a temp table and INSERT ... ON CONFLICT.
// The whole batch runs in one transaction: either every row is reflected in
// the target table or, on failure, the table is left untouched.
//  1. Creates a temp table with the same columns
//  2. COPY rows into the temp table
//  3. INSERT INTO target SELECT ... FROM temp ON CONFLICT (keys) DO UPDATE SET ...
//  4. Optionally deletes target rows not present in the temp table
//  5. The temp table is dropped on commit
func BulkUpsert(ctx context.Context, pool Pool, cfg UpsertConfig, rows [][]any) (*UpsertResult, error) {
	if len(rows) == 0 {
		return &UpsertResult{}, nil
	}

	if len(cfg.Columns) == 0 {
		return nil, eris.New("db: upsert: no columns specified")
	}
	if len(cfg.ConflictKeys) == 0 {
		return nil, eris.New("db: upsert: no conflict keys specified")
	}

	updateCols := cfg.UpdateCols
	if updateCols == nil {
		conflictSet := make(map[string]bool, len(cfg.ConflictKeys))
		for _, k := range cfg.ConflictKeys {
			conflictSet[k] = true
		}
		for _, c := range cfg.Columns {
			if !conflictSet[c] {
				updateCols = append(updateCols, c)
			}
		}
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "db: upsert: begin tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	tempTable := fmt.Sprintf("_tmp_upsert_%s", strings.ReplaceAll(cfg.Table, ".", "_"))

	// Create temp table with same structure as target
	createSQL := fmt.Sprintf(
		"CREATE TEMP TABLE %s (LIKE %s INCLUDING DEFAULTS) ON COMMIT DROP",
		pgx.Identifier{tempTable}.Sanitize(),
		sanitizeTable(cfg.Table),
	)
	if _, err := tx.Exec(ctx, createSQL); err != nil {
		return nil, eris.Wrapf(err, "db: upsert: create temp table for %s", cfg.Table)
	}

	// COPY rows into temp table
	copySource := pgx.CopyFromRows(rows)
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{tempTable}, cfg.Columns, copySource); err != nil {
		return nil, eris.Wrapf(err, "db: upsert: COPY into temp table for %s", cfg.Table)
	}

	// Build INSERT ... ON CONFLICT ... DO UPDATE
	colList := quoteAndJoin(cfg.Columns)
	conflictList := quoteAndJoin(cfg.ConflictKeys)

	var setClauses []string
	for _, col := range updateCols {
		setClauses = append(setClauses, fmt.Sprintf("%s = EXCLUDED.%s", pgx.Identifier{col}.Sanitize(), pgx.Identifier{col}.Sanitize()))
	}

	upsertSQL := fmt.Sprintf(
		"INSERT INTO %s AS t (%s) SELECT %s FROM %s ON CONFLICT (%s) DO UPDATE SET %s",
		sanitizeTable(cfg.Table),
		colList,
		colList,
		pgx.Identifier{tempTable}.Sanitize(),
		conflictList,
		strings.Join(setClauses, ", "),
	)

	// Leave rows alone when nothing changed, so reruns are true no-ops.
	if cfg.SkipUnchanged && len(updateCols) > 0 {
		upsertSQL += fmt.Sprintf(
			" WHERE (%s) IS DISTINCT FROM (%s)",
			prefixAndJoin("t", updateCols),
			prefixAndJoin("EXCLUDED", updateCols),
		)
	}

	tag, err := tx.Exec(ctx, upsertSQL)
	if err != nil {
		return nil, eris.Wrapf(err, "db: upsert: INSERT ON CONFLICT for %s", cfg.Table)
	}
	result := &UpsertResult{Upserted: tag.RowsAffected()}

	if cfg.Prune {
		var preds []string
		for _, k := range cfg.ConflictKeys {
			preds = append(preds, fmt.Sprintf("s.%s = t.%s", pgx.Identifier{k}.Sanitize(), pgx.Identifier{k}.Sanitize()))
		}
		pruneSQL := fmt.Sprintf(
			"DELETE FROM %s t WHERE NOT EXISTS (SELECT 1 FROM %s s WHERE %s)",
			sanitizeTable(cfg.Table),
			pgx.Identifier{tempTable}.Sanitize(),
			strings.Join(preds, " AND "),
		)
		pruneTag, err := tx.Exec(ctx, pruneSQL)
		if err != nil {
			return nil, eris.Wrapf(err, "db: upsert: prune stale rows in %s", cfg.Table)
		}
		result.Pruned = pruneTag.RowsAffected()
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, eris.Wrap(err, "db: upsert: commit tx")
	}

	return result, nil
}

// sanitizeTable handles schema-qualified table names like "ibge.municipalities".
func sanitizeTable(table string) string {
	parts := strings.SplitN(table, ".", 2)
	if len(parts) == 2 {
		return pgx.Identifier{parts[0], parts[1]}.Sanitize()
	}
	return pgx.Identifier{table}.Sanitize()
}

// quoteAndJoin quotes each column name and joins with commas.
func quoteAndJoin(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = pgx.Identifier{c}.Sanitize()
	}
	return strings.Join(quoted, ", ")
}

// prefixAndJoin quotes each column with a table prefix and joins with commas.
func prefixAndJoin(prefix string, cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = prefix + "." + pgx.Identifier{c}.Sanitize()
	}
	return strings.Join(quoted, ", ")
}
