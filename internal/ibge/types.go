// Package ibge models the IBGE municipality dataset and its flat, enriched form.
package ibge

// Table is the target table for loaded municipality rows.
const Table = "ibge.municipalities"

// UnknownRegion is the sentinel region name given to rows whose state code
// has no entry in the enrichment table.
const UnknownRegion = "unknown"

// RawMunicipality mirrors one element of the IBGE localidades/municipios
// payload. Only the fields the pipeline consumes are mapped; the nested
// pointers are nil when the API omits a level. Transient: discarded after
// flattening.
type RawMunicipality struct {
	ID          int64        `json:"id"`
	Name        string       `json:"nome"`
	Microregion *Microregion `json:"microrregiao"`
}

// Microregion is the first nesting level under a municipality.
type Microregion struct {
	ID         int64       `json:"id"`
	Name       string      `json:"nome"`
	Mesoregion *Mesoregion `json:"mesorregiao"`
}

// Mesoregion nests the state (UF) record.
type Mesoregion struct {
	ID    int64  `json:"id"`
	Name  string `json:"nome"`
	State *State `json:"UF"`
}

// State is the IBGE UF record.
type State struct {
	ID     int64   `json:"id"`
	Code   string  `json:"sigla"`
	Name   string  `json:"nome"`
	Region *Region `json:"regiao"`
}

// Region is the IBGE macro-region record.
type Region struct {
	ID   int64  `json:"id"`
	Code string `json:"sigla"`
	Name string `json:"nome"`
}

// State walks the nesting and returns the UF record, or nil if any level is
// missing.
func (m RawMunicipality) State() *State {
	if m.Microregion == nil || m.Microregion.Mesoregion == nil {
		return nil
	}
	return m.Microregion.Mesoregion.State
}

// Record is one flat municipality row as persisted in ibge.municipalities.
type Record struct {
	MunicipalityID   int64
	MunicipalityName string
	StateCode        string
	StateName        string
	RegionCode       string
	RegionName       string
	DisplayName      string
	Slug             string
}

// RegionTable maps a state code (UF sigla) to its canonical region name.
// Loaded once per run from the local enrichment file; read-only.
type RegionTable map[string]string
