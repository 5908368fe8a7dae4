package ibge

import (
	"context"
	"os"

	"github.com/rotisserie/eris"

	"github.com/opendata-br/ibgesync/internal/fetcher"
)

// LoadRegionTable reads the state_code,region_name enrichment CSV. The first
// row is treated as a header. Rows with fewer than two non-empty fields are
// ignored. An unreadable or effectively empty file is an error: the
// enrichment table is a hard prerequisite for a run.
func LoadRegionTable(path string) (RegionTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "enrichment: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	rowCh, errCh := fetcher.StreamCSV(context.Background(), f, fetcher.CSVOptions{
		HasHeader: true,
		TrimSpace: true,
		Comment:   '#',
	})

	table := make(RegionTable)
	for row := range rowCh {
		if len(row) < 2 || row[0] == "" || row[1] == "" {
			continue
		}
		table[NormalizeStateCode(row[0])] = row[1]
	}
	if err := <-errCh; err != nil {
		return nil, eris.Wrapf(err, "enrichment: parse %s", path)
	}

	if len(table) == 0 {
		return nil, eris.Errorf("enrichment: %s contains no usable state/region rows", path)
	}
	return table, nil
}

// EnrichResult holds the joined rows plus the unmatched-code count.
type EnrichResult struct {
	Records   []Record
	Unmatched int // rows whose state code had no enrichment entry
}

// Enrich left-joins records against the region table and computes the
// derived columns. Rows with an unmatched state code keep their place in the
// output with RegionName set to UnknownRegion; they are counted, not
// dropped. The function is pure: the same input always yields the same
// output rows.
func Enrich(records []Record, regions RegionTable) EnrichResult {
	res := EnrichResult{Records: make([]Record, len(records))}
	for i, rec := range records {
		if region, ok := regions[rec.StateCode]; ok {
			rec.RegionName = region
		} else {
			rec.RegionName = UnknownRegion
			res.Unmatched++
		}
		rec.DisplayName = DisplayName(rec.MunicipalityName, rec.StateCode)
		rec.Slug = Slug(rec.MunicipalityName)
		res.Records[i] = rec
	}
	return res
}
