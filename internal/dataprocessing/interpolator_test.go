package dataprocessing

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "owidreport/internal/errors"
	"owidreport/pkg/contracts/domain"
)

func TestInterpolateLinear(t *testing.T) {
	tests := []struct {
		name   string
		in     []float64
		want   []float64
		filled int
	}{
		{name: "interior run", in: []float64{1, nan, nan, 4}, want: []float64{1, 2, 3, 4}, filled: 2},
		{name: "edges stay missing", in: []float64{nan, 2, nan, 6, nan}, want: []float64{nan, 2, 4, 6, nan}, filled: 1},
		{name: "no known values", in: []float64{nan, nan}, want: []float64{nan, nan}},
		{name: "single known value", in: []float64{nan, 5, nan}, want: []float64{nan, 5, nan}},
		{name: "nothing missing", in: []float64{3, 1, 2}, want: []float64{3, 1, 2}},
		{name: "decreasing neighbours", in: []float64{10, nan, 0}, want: []float64{10, 5, 0}, filled: 1},
		{name: "empty", in: []float64{}, want: []float64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := append([]float64(nil), tt.in...)
			assert.Equal(t, tt.filled, interpolateLinear(values))
			require.Len(t, values, len(tt.want))
			for i := range tt.want {
				if math.IsNaN(tt.want[i]) {
					assert.True(t, math.IsNaN(values[i]), "index %d", i)
					continue
				}
				assert.InDelta(t, tt.want[i], values[i], 1e-9, "index %d", i)
			}
		})
	}
}

func TestInterpolator_KnownValuesUnchanged(t *testing.T) {
	ds := dataset(
		record("Kenya", "2021-01-01", 100, 7),
		record("Kenya", "2021-01-02", nan, nan),
		record("Kenya", "2021-01-03", 130, 3),
		record("Kenya", "2021-01-04", nan, nan),
	)

	stats, err := NewInterpolator(ScopeEntity, nil).Interpolate(ds, []domain.Column{domain.ColTotalCases, domain.ColNewCases})
	require.NoError(t, err)

	assert.Equal(t, 100.0, ds.Records[0].TotalCases)
	assert.InDelta(t, 115.0, ds.Records[1].TotalCases, 1e-9)
	assert.Equal(t, 130.0, ds.Records[2].TotalCases)
	assert.True(t, math.IsNaN(ds.Records[3].TotalCases))
	assert.InDelta(t, 5.0, ds.Records[1].NewCases, 1e-9)

	assert.Equal(t, 1, stats.Filled[domain.ColTotalCases])
	assert.Equal(t, 1, stats.Remaining[domain.ColTotalCases])
	assert.Equal(t, 2, stats.TotalFilled())
	assert.Equal(t, map[string]int{"total_cases": 1, "new_cases": 1}, stats.FilledByName())
}

func TestInterpolator_Scope(t *testing.T) {
	build := func() *domain.Dataset {
		return dataset(
			record("Kenya", "2021-01-01", 10, nan),
			record("Kenya", "2021-01-02", nan, nan),
			record("India", "2021-01-01", nan, nan),
			record("India", "2021-01-02", 40, nan),
		)
	}

	entity := build()
	stats, err := NewInterpolator(ScopeEntity, nil).Interpolate(entity, []domain.Column{domain.ColTotalCases})
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Filled[domain.ColTotalCases], "no neighbours inside either entity")
	assert.True(t, math.IsNaN(entity.Records[1].TotalCases))
	assert.True(t, math.IsNaN(entity.Records[2].TotalCases))

	global := build()
	stats, err = NewInterpolator(ScopeGlobal, nil).Interpolate(global, []domain.Column{domain.ColTotalCases})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Filled[domain.ColTotalCases])
	assert.InDelta(t, 20.0, global.Records[1].TotalCases, 1e-9)
	assert.InDelta(t, 30.0, global.Records[2].TotalCases, 1e-9)
}

func TestInterpolator_InterleavedEntities(t *testing.T) {
	ds := dataset(
		record("Kenya", "2021-01-01", 10, nan),
		record("India", "2021-01-01", 1000, nan),
		record("Kenya", "2021-01-02", nan, nan),
		record("India", "2021-01-02", nan, nan),
		record("Kenya", "2021-01-03", 30, nan),
		record("India", "2021-01-03", 3000, nan),
	)

	_, err := NewInterpolator(ScopeEntity, nil).Interpolate(ds, []domain.Column{domain.ColTotalCases})
	require.NoError(t, err)
	assert.InDelta(t, 20.0, ds.Records[2].TotalCases, 1e-9)
	assert.InDelta(t, 2000.0, ds.Records[3].TotalCases, 1e-9)
}

func TestInterpolator_EntityScopeFollowsDates(t *testing.T) {
	dated := func(location, date string, cases float64) domain.Record {
		r := record(location, date, cases, nan)
		d, err := time.Parse(domain.DateLayout, date)
		require.NoError(t, err)
		r.Date = d
		return r
	}
	ds := dataset(
		dated("Kenya", "2021-01-03", 30),
		dated("Kenya", "2021-01-01", 10),
		dated("Kenya", "2021-01-02", nan),
	)

	stats, err := NewInterpolator(ScopeEntity, nil).Interpolate(ds, []domain.Column{domain.ColTotalCases})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalFilled())
	assert.InDelta(t, 20.0, ds.Records[2].TotalCases, 1e-9)
	assert.Equal(t, 30.0, ds.Records[0].TotalCases, "rows keep their position")

	global := dataset(
		dated("Kenya", "2021-01-03", 30),
		dated("Kenya", "2021-01-01", 10),
		dated("Kenya", "2021-01-02", nan),
	)
	stats, err = NewInterpolator(ScopeGlobal, nil).Interpolate(global, []domain.Column{domain.ColTotalCases})
	require.NoError(t, err)
	assert.Zero(t, stats.TotalFilled(), "trailing gap in source order stays missing")
	assert.True(t, math.IsNaN(global.Records[2].TotalCases))
}

func TestInterpolator_SkipsAbsentColumns(t *testing.T) {
	ds := dataset(record("Kenya", "2021-01-01", 1, 1))

	stats, err := NewInterpolator("", nil).Interpolate(ds, []domain.Column{domain.ColTotalVaccinations})
	require.NoError(t, err)
	assert.Equal(t, []domain.Column{domain.ColTotalVaccinations}, stats.Skipped)
}

func TestInterpolator_RejectsNonNumeric(t *testing.T) {
	_, err := NewInterpolator(ScopeEntity, nil).Interpolate(dataset(), []domain.Column{domain.ColLocation})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}

func TestParseScope(t *testing.T) {
	s, err := ParseScope("global")
	require.NoError(t, err)
	assert.Equal(t, ScopeGlobal, s)

	s, err = ParseScope("")
	require.NoError(t, err)
	assert.Equal(t, ScopeEntity, s)

	_, err = ParseScope("country")
	assert.Error(t, err)
}
