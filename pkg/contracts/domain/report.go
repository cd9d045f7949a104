package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// Float is a float64 that encodes NaN and Inf as JSON null.
type Float float64

// MarshalJSON implements json.Marshaler
func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(v, 'f', -1, 64)), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (f *Float) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = Float(math.NaN())
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Float(v)
	return nil
}

// Snapshot is the latest-date row of one entity, used for the choropleth
type Snapshot struct {
	Location          string    `json:"location"`
	ISOCode           string    `json:"iso_code"`
	Date              time.Time `json:"date"`
	TotalCases        Float     `json:"total_cases"`
	TotalDeaths       Float     `json:"total_deaths"`
	TotalVaccinations Float     `json:"total_vaccinations"`
	DeathRate         Float     `json:"death_rate"`
}

// IsAggregate reports whether the snapshot belongs to an OWID pseudo-entity
// such as a continent or income group rather than a country.
func (s Snapshot) IsAggregate() bool {
	return len(s.ISOCode) > 5 && s.ISOCode[:5] == "OWID_"
}

// EntitySummary describes the trajectory of one entity over the cleaned dataset.
type EntitySummary struct {
	Location          string    `json:"location"`
	ISOCode           string    `json:"iso_code"`
	Rows              int       `json:"rows"`
	FirstDate         time.Time `json:"first_date"`
	LastDate          time.Time `json:"last_date"`
	TotalCases        Float     `json:"total_cases"`
	TotalDeaths       Float     `json:"total_deaths"`
	TotalVaccinations Float     `json:"total_vaccinations"`
	DeathRate         Float     `json:"death_rate"`
	PeakNewCases      Float     `json:"peak_new_cases"`
	PeakNewCasesDate  time.Time `json:"peak_new_cases_date"`
}

// MissingCount is the number of null cells of one column.
type MissingCount struct {
	Column  Column `json:"column"`
	Missing int    `json:"missing"`
}

// MissingReport counts nulls per column over a dataset.
type MissingReport struct {
	Rows    int            `json:"rows"`
	Columns []MissingCount `json:"columns"`
}

// Get returns the missing count for col, or -1 if col is not in the report.
func (m MissingReport) Get(col Column) int {
	for _, c := range m.Columns {
		if c.Column == col {
			return c.Missing
		}
	}
	return -1
}
