package ibge

import (
	"context"

	"github.com/opendata-br/ibgesync/internal/db"
)

// Columns is the persisted column set, in upsert order.
var Columns = []string{
	"municipality_id",
	"municipality_name",
	"state_code",
	"state_name",
	"region_code",
	"region_name",
	"display_name",
	"slug",
}

// Load upserts the final records into ibge.municipalities in one
// transaction, keyed by municipality_id. Existing rows are updated only when
// a value actually changed, so a rerun over identical data touches nothing.
// With prune enabled, rows absent from the batch are deleted in the same
// transaction; by default they are left untouched.
func Load(ctx context.Context, pool db.Pool, records []Record, prune bool) (*db.UpsertResult, error) {
	rows := make([][]any, len(records))
	for i, rec := range records {
		rows[i] = recordRow(rec)
	}

	return db.BulkUpsert(ctx, pool, db.UpsertConfig{
		Table:         Table,
		Columns:       Columns,
		ConflictKeys:  []string{"municipality_id"},
		SkipUnchanged: true,
		Prune:         prune,
	}, rows)
}

func recordRow(rec Record) []any {
	return []any{
		rec.MunicipalityID,
		rec.MunicipalityName,
		rec.StateCode,
		rec.StateName,
		rec.RegionCode,
		rec.RegionName,
		rec.DisplayName,
		rec.Slug,
	}
}
