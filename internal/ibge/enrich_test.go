package ibge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRegions(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "regioes.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadRegionTable(t *testing.T) {
	path := writeRegions(t, "state_code,region_name\nSP,Sudeste\nba , Nordeste\n")

	table, err := LoadRegionTable(path)
	require.NoError(t, err)
	assert.Equal(t, RegionTable{"SP": "Sudeste", "BA": "Nordeste"}, table)
}

func TestLoadRegionTable_SkipsMalformedRows(t *testing.T) {
	path := writeRegions(t, "state_code,region_name\nSP,Sudeste\n# comment\nXX\n,\nMG,Sudeste\n")

	table, err := LoadRegionTable(path)
	require.NoError(t, err)
	assert.Len(t, table, 2)
	assert.Equal(t, "Sudeste", table["MG"])
}

func TestLoadRegionTable_Missing(t *testing.T) {
	_, err := LoadRegionTable(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "enrichment: open")
}

func TestLoadRegionTable_HeaderOnly(t *testing.T) {
	path := writeRegions(t, "state_code,region_name\n")
	_, err := LoadRegionTable(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no usable state/region rows")
}

func TestEnrich_JoinAndSentinel(t *testing.T) {
	regions := RegionTable{"SP": "Sudeste"}
	in := []Record{
		{MunicipalityID: 1, MunicipalityName: "Guarulhos", StateCode: "SP", RegionCode: "SE"},
		{MunicipalityID: 2, MunicipalityName: "Atlântida", StateCode: "XX", RegionCode: "ZZ"},
	}

	res := Enrich(in, regions)
	require.Len(t, res.Records, 2)
	assert.Equal(t, 1, res.Unmatched)

	matched := res.Records[0]
	assert.Equal(t, "Sudeste", matched.RegionName)
	assert.Equal(t, "Guarulhos (SP)", matched.DisplayName)
	assert.Equal(t, "guarulhos", matched.Slug)

	// Unmatched rows are kept, flagged with the sentinel, and retain their
	// API-sourced region code.
	unmatched := res.Records[1]
	assert.Equal(t, UnknownRegion, unmatched.RegionName)
	assert.Equal(t, "ZZ", unmatched.RegionCode)
	assert.Equal(t, "atlantida", unmatched.Slug)
}

func TestEnrich_Deterministic(t *testing.T) {
	regions := RegionTable{"SP": "Sudeste"}
	in := []Record{{MunicipalityID: 1, MunicipalityName: "São Caetano do Sul", StateCode: "SP"}}

	a := Enrich(in, regions)
	b := Enrich(in, regions)
	assert.Equal(t, a, b)
	// Input slice is not mutated.
	assert.Equal(t, "", in[0].RegionName)
}

func TestEnrich_Empty(t *testing.T) {
	res := Enrich(nil, RegionTable{"SP": "Sudeste"})
	assert.Empty(t, res.Records)
	assert.Zero(t, res.Unmatched)
}
