package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecord_AllNumericMissing(t *testing.T) {
	r := NewRecord("Kenya", "KEN", "2021-01-01")

	for _, col := range []Column{ColTotalCases, ColTotalDeaths, ColNewCases, ColNewDeaths, ColTotalVaccinations, ColDeathRate} {
		assert.True(t, r.IsMissing(col), "column %s", col)
	}
	assert.False(t, r.IsMissing(ColLocation))
	assert.False(t, r.IsMissing(ColISOCode))
	assert.False(t, r.IsMissing(ColDate))
}

func TestRecord_ValueAndSetValue(t *testing.T) {
	r := NewRecord("India", "IND", "2021-01-01")

	require.True(t, r.SetValue(ColTotalCases, 100))
	v, ok := r.Value(ColTotalCases)
	assert.True(t, ok)
	assert.Equal(t, 100.0, v)
	assert.Equal(t, 100.0, r.TotalCases)

	assert.False(t, r.SetValue(ColLocation, 1))
	v, ok = r.Value(ColISOCode)
	assert.False(t, ok)
	assert.True(t, math.IsNaN(v))
}

func TestColumn_IsNumeric(t *testing.T) {
	tests := []struct {
		col  Column
		want bool
	}{
		{ColTotalCases, true},
		{ColDeathRate, true},
		{ColNewDeaths, true},
		{ColLocation, false},
		{ColDate, false},
		{Column("stringency_index"), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.col), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.col.IsNumeric())
		})
	}
}

func TestDataset_EntitiesAndForEntity(t *testing.T) {
	ds := &Dataset{
		Columns: []Column{ColLocation, ColDate},
		Records: []Record{
			NewRecord("Kenya", "KEN", "2021-01-01"),
			NewRecord("India", "IND", "2021-01-01"),
			NewRecord("Kenya", "KEN", "2021-01-02"),
		},
	}

	assert.Equal(t, []string{"Kenya", "India"}, ds.Entities())
	assert.Len(t, ds.ForEntity("Kenya"), 2)
	assert.Empty(t, ds.ForEntity("Peru"))

	ds.AddColumn(ColDeathRate)
	ds.AddColumn(ColDeathRate)
	assert.Equal(t, []Column{ColLocation, ColDate, ColDeathRate}, ds.Columns)
}

func TestFloat_JSON(t *testing.T) {
	s := Snapshot{Location: "Kenya", TotalCases: 10, DeathRate: Float(math.NaN())}

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"death_rate":null`)
	assert.Contains(t, string(data), `"total_cases":10`)

	var back Snapshot
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, math.IsNaN(float64(back.DeathRate)))
	assert.Equal(t, Float(10), back.TotalCases)
}

func TestSnapshot_IsAggregate(t *testing.T) {
	assert.True(t, Snapshot{ISOCode: "OWID_WRL"}.IsAggregate())
	assert.False(t, Snapshot{ISOCode: "KEN"}.IsAggregate())
	assert.False(t, Snapshot{ISOCode: ""}.IsAggregate())
}
