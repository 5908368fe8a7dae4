package ibge

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRow(t *testing.T) {
	rec := Record{
		MunicipalityID:   3550308,
		MunicipalityName: "São Paulo",
		StateCode:        "SP",
		StateName:        "São Paulo",
		RegionCode:       "SE",
		RegionName:       "Sudeste",
		DisplayName:      "São Paulo (SP)",
		Slug:             "sao-paulo",
	}
	row := recordRow(rec)
	require.Len(t, row, len(Columns))
	assert.Equal(t, int64(3550308), row[0])
	assert.Equal(t, "São Paulo", row[1])
	assert.Equal(t, "SP", row[2])
	assert.Equal(t, "Sudeste", row[5])
	assert.Equal(t, "sao-paulo", row[7])
}

func TestLoad_UpsertsInOneTransaction(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TEMP TABLE").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_ibge_municipalities"}, Columns).WillReturnResult(2)
	mock.ExpectExec("ON CONFLICT").WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectCommit()

	records := []Record{
		{MunicipalityID: 1, MunicipalityName: "A", StateCode: "SP", RegionName: "Sudeste"},
		{MunicipalityID: 2, MunicipalityName: "B", StateCode: "XX", RegionName: UnknownRegion},
	}
	res, err := Load(context.Background(), mock, records, false)
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Upserted)
	assert.Equal(t, int64(0), res.Pruned)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoad_PruneDeletesStaleRows(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TEMP TABLE").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_ibge_municipalities"}, Columns).WillReturnResult(1)
	mock.ExpectExec("ON CONFLICT").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("DELETE FROM").WillReturnResult(pgxmock.NewResult("DELETE", 4))
	mock.ExpectCommit()

	res, err := Load(context.Background(), mock, []Record{{MunicipalityID: 1, MunicipalityName: "A"}}, true)
	require.NoError(t, err)
	assert.Equal(t, int64(4), res.Pruned)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoad_EmptyBatch(t *testing.T) {
	res, err := Load(context.Background(), nil, nil, false)
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.Upserted)
}
