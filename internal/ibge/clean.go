package ibge

import "strings"

// CleanResult holds the flattened rows plus data-quality counts.
type CleanResult struct {
	Records    []Record
	Dropped    int // rows missing a required field
	Duplicates int // rows collapsed into an earlier municipality id
}

// Clean flattens raw municipality records into Records, dropping rows that
// lack a municipality id, name, or state code. Whitespace is trimmed and
// state codes canonicalized. Duplicate municipality ids collapse to the
// last-seen value; output order follows first appearance of each id so the
// result is deterministic for a given input sequence.
func Clean(raws []RawMunicipality) CleanResult {
	var res CleanResult
	index := make(map[int64]int, len(raws))

	for _, raw := range raws {
		rec, ok := flatten(raw)
		if !ok {
			res.Dropped++
			continue
		}

		if at, seen := index[rec.MunicipalityID]; seen {
			res.Records[at] = rec
			res.Duplicates++
			continue
		}
		index[rec.MunicipalityID] = len(res.Records)
		res.Records = append(res.Records, rec)
	}

	return res
}

// flatten maps one raw record to a flat Record. Returns false when a
// required field (id, name, state code) is missing or blank.
func flatten(raw RawMunicipality) (Record, bool) {
	name := strings.TrimSpace(raw.Name)
	if raw.ID <= 0 || name == "" {
		return Record{}, false
	}

	state := raw.State()
	if state == nil {
		return Record{}, false
	}
	code := NormalizeStateCode(state.Code)
	if code == "" {
		return Record{}, false
	}

	rec := Record{
		MunicipalityID:   raw.ID,
		MunicipalityName: name,
		StateCode:        code,
		StateName:        strings.TrimSpace(state.Name),
	}
	if state.Region != nil {
		rec.RegionCode = NormalizeStateCode(state.Region.Code)
	}
	return rec, true
}
