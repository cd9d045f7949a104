package domain

import (
	"math"
	"time"
)

// Column names a field of the OWID COVID-19 dataset
type Column string

// Schema columns read from the source CSV
const (
	ColLocation          Column = "location"
	ColDate              Column = "date"
	ColISOCode           Column = "iso_code"
	ColTotalCases        Column = "total_cases"
	ColTotalDeaths       Column = "total_deaths"
	ColNewCases          Column = "new_cases"
	ColNewDeaths         Column = "new_deaths"
	ColTotalVaccinations Column = "total_vaccinations"
)

// ColDeathRate is derived from total_deaths / total_cases
const ColDeathRate Column = "death_rate"

// DateLayout is the date format used by the source dataset
const DateLayout = "2006-01-02"

// KnownColumns lists every source column the loader picks up, in canonical order.
var KnownColumns = []Column{
	ColISOCode,
	ColLocation,
	ColDate,
	ColTotalCases,
	ColNewCases,
	ColTotalDeaths,
	ColNewDeaths,
	ColTotalVaccinations,
}

// IsNumeric reports whether the column holds a float value on Record.
func (c Column) IsNumeric() bool {
	switch c {
	case ColTotalCases, ColTotalDeaths, ColNewCases, ColNewDeaths, ColTotalVaccinations, ColDeathRate:
		return true
	}
	return false
}

// IsKnown reports whether the loader understands the column.
func (c Column) IsKnown() bool {
	if c == ColDeathRate {
		return true
	}
	for _, k := range KnownColumns {
		if k == c {
			return true
		}
	}
	return false
}

// Record is one (entity, date) observation.
// Missing numeric values are NaN.
type Record struct {
	Location string
	ISOCode  string
	RawDate  string
	Date     time.Time
	// Line is the 1-based source line, 0 for records built in memory
	Line int

	TotalCases        float64
	TotalDeaths       float64
	NewCases          float64
	NewDeaths         float64
	TotalVaccinations float64
	DeathRate         float64
}

// NewRecord returns a record with every numeric field missing.
func NewRecord(location, isoCode, rawDate string) Record {
	nan := math.NaN()
	return Record{
		Location:          location,
		ISOCode:           isoCode,
		RawDate:           rawDate,
		TotalCases:        nan,
		TotalDeaths:       nan,
		NewCases:          nan,
		NewDeaths:         nan,
		TotalVaccinations: nan,
		DeathRate:         nan,
	}
}

func (r *Record) field(col Column) *float64 {
	switch col {
	case ColTotalCases:
		return &r.TotalCases
	case ColTotalDeaths:
		return &r.TotalDeaths
	case ColNewCases:
		return &r.NewCases
	case ColNewDeaths:
		return &r.NewDeaths
	case ColTotalVaccinations:
		return &r.TotalVaccinations
	case ColDeathRate:
		return &r.DeathRate
	}
	return nil
}

// Value returns the numeric value of col. ok is false when col is not numeric.
func (r *Record) Value(col Column) (v float64, ok bool) {
	p := r.field(col)
	if p == nil {
		return math.NaN(), false
	}
	return *p, true
}

// SetValue sets the numeric value of col. It returns false when col is not numeric.
func (r *Record) SetValue(col Column, v float64) bool {
	p := r.field(col)
	if p == nil {
		return false
	}
	*p = v
	return true
}

// IsMissing reports whether col holds no value on this record.
func (r *Record) IsMissing(col Column) bool {
	switch col {
	case ColLocation:
		return r.Location == ""
	case ColISOCode:
		return r.ISOCode == ""
	case ColDate:
		return r.RawDate == "" && r.Date.IsZero()
	}
	v, ok := r.Value(col)
	return !ok || math.IsNaN(v)
}

// Dataset is an ordered, non-deduplicated collection of records.
// Columns lists the schema columns that were present in the source.
type Dataset struct {
	Columns []Column
	Records []Record
}

// HasColumn reports whether col was present in the source or has been derived.
func (d *Dataset) HasColumn(col Column) bool {
	for _, c := range d.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// AddColumn registers a derived column once.
func (d *Dataset) AddColumn(col Column) {
	if !d.HasColumn(col) {
		d.Columns = append(d.Columns, col)
	}
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	return len(d.Records)
}

// Entities returns distinct locations in first-seen order.
func (d *Dataset) Entities() []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range d.Records {
		if !seen[r.Location] {
			seen[r.Location] = true
			out = append(out, r.Location)
		}
	}
	return out
}

// ForEntity returns the records of one location, in dataset order.
func (d *Dataset) ForEntity(location string) []Record {
	var out []Record
	for _, r := range d.Records {
		if r.Location == location {
			out = append(out, r)
		}
	}
	return out
}
