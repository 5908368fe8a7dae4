package ibge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawRecord(id int64, name, uf string) RawMunicipality {
	return RawMunicipality{
		ID:   id,
		Name: name,
		Microregion: &Microregion{
			Mesoregion: &Mesoregion{
				State: &State{
					Code:   uf,
					Name:   "Estado " + uf,
					Region: &Region{Code: "SE", Name: "Sudeste"},
				},
			},
		},
	}
}

func TestClean_Flattens(t *testing.T) {
	raw := rawRecord(3550308, " São Paulo ", " sp ")
	raw.Microregion.Mesoregion.State.Name = " São Paulo "

	res := Clean([]RawMunicipality{raw})
	require.Len(t, res.Records, 1)

	rec := res.Records[0]
	assert.Equal(t, int64(3550308), rec.MunicipalityID)
	assert.Equal(t, "São Paulo", rec.MunicipalityName)
	assert.Equal(t, "SP", rec.StateCode)
	assert.Equal(t, "São Paulo", rec.StateName)
	assert.Equal(t, "SE", rec.RegionCode)
	assert.Zero(t, res.Dropped)
	assert.Zero(t, res.Duplicates)
}

func TestClean_DropsMissingRequiredFields(t *testing.T) {
	missingID := rawRecord(0, "A", "SP")
	missingName := rawRecord(1, "   ", "SP")
	missingState := RawMunicipality{ID: 2, Name: "B"}
	missingCode := rawRecord(3, "C", "  ")

	res := Clean([]RawMunicipality{missingID, missingName, missingState, missingCode, rawRecord(4, "D", "SP")})
	require.Len(t, res.Records, 1)
	assert.Equal(t, "D", res.Records[0].MunicipalityName)
	assert.Equal(t, 4, res.Dropped)
}

func TestClean_NilNestingLevels(t *testing.T) {
	noMeso := RawMunicipality{ID: 1, Name: "A", Microregion: &Microregion{}}
	noState := RawMunicipality{ID: 2, Name: "B", Microregion: &Microregion{Mesoregion: &Mesoregion{}}}

	res := Clean([]RawMunicipality{noMeso, noState})
	assert.Empty(t, res.Records)
	assert.Equal(t, 2, res.Dropped)
}

func TestClean_DuplicatesCollapseLastSeen(t *testing.T) {
	res := Clean([]RawMunicipality{
		rawRecord(1, "A", "SP"),
		rawRecord(2, "B", "RJ"),
		rawRecord(2, "B2", "RJ"),
	})
	require.Len(t, res.Records, 2)
	assert.Equal(t, 1, res.Duplicates)
	assert.Equal(t, "A", res.Records[0].MunicipalityName)
	assert.Equal(t, "B2", res.Records[1].MunicipalityName)
}

func TestClean_NoRegionInPayload(t *testing.T) {
	raw := rawRecord(1, "A", "SP")
	raw.Microregion.Mesoregion.State.Region = nil

	res := Clean([]RawMunicipality{raw})
	require.Len(t, res.Records, 1)
	assert.Equal(t, "", res.Records[0].RegionCode)
}

func TestClean_Empty(t *testing.T) {
	res := Clean(nil)
	assert.Empty(t, res.Records)
}
