package dataprocessing

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "owidreport/internal/errors"
	"owidreport/pkg/contracts/domain"
)

func TestParseCSV(t *testing.T) {
	ds := parseSample(t, owidSample)

	assert.Equal(t, []domain.Column{
		domain.ColISOCode, domain.ColLocation, domain.ColDate,
		domain.ColTotalCases, domain.ColNewCases, domain.ColTotalDeaths,
		domain.ColNewDeaths, domain.ColTotalVaccinations,
	}, ds.Columns)
	require.Equal(t, 6, ds.Len())

	first := ds.Records[0]
	assert.Equal(t, "Kenya", first.Location)
	assert.Equal(t, "KEN", first.ISOCode)
	assert.Equal(t, "2021-01-01", first.RawDate)
	assert.True(t, first.Date.IsZero())
	assert.Equal(t, 100.0, first.TotalCases)
	assert.Equal(t, 2, first.Line)
	assert.True(t, math.IsNaN(first.TotalVaccinations))
	assert.True(t, math.IsNaN(first.DeathRate))

	gap := ds.Records[1]
	assert.True(t, gap.IsMissing(domain.ColTotalCases))
	assert.True(t, gap.IsMissing(domain.ColNewDeaths))
	assert.Equal(t, 3, gap.Line)

	assert.Equal(t, []string{"Kenya", "India", "Peru"}, ds.Entities())
}

func TestParseCSV_HeaderHandling(t *testing.T) {
	t.Run("byte order mark", func(t *testing.T) {
		ds := parseSample(t, "\ufefflocation,date,total_cases\nKenya,2021-01-01,5\n")
		assert.True(t, ds.HasColumn(domain.ColLocation))
		assert.Equal(t, "Kenya", ds.Records[0].Location)
		assert.Equal(t, 5.0, ds.Records[0].TotalCases)
	})

	t.Run("reordered and partial columns", func(t *testing.T) {
		ds := parseSample(t, "total_deaths,date,location\n3,2021-02-01,India\n")
		assert.Equal(t, []domain.Column{domain.ColTotalDeaths, domain.ColDate, domain.ColLocation}, ds.Columns)
		assert.False(t, ds.HasColumn(domain.ColTotalCases))
		assert.Equal(t, 3.0, ds.Records[0].TotalDeaths)
		assert.True(t, math.IsNaN(ds.Records[0].TotalCases))
	})

	t.Run("unparsable numbers are missing", func(t *testing.T) {
		ds := parseSample(t, "location,date,total_cases\nKenya,2021-01-01,n/a\n")
		assert.True(t, ds.Records[0].IsMissing(domain.ColTotalCases))
	})

	t.Run("header only", func(t *testing.T) {
		ds := parseSample(t, "location,date\n")
		assert.Equal(t, 0, ds.Len())
	})
}

func TestParseCSV_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "empty input", data: ""},
		{name: "ragged row", data: "location,date\nKenya\n"},
		{name: "bad quoting", data: "location,date\n\"Ken\"ya,2021-01-01\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCSV(context.Background(), strings.NewReader(tt.data))
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing), err.Error())
		})
	}
}

func TestLoader_Load(t *testing.T) {
	dir := t.TempDir()
	loader := NewLoader(nil)
	ctx := context.Background()

	good := filepath.Join(dir, "owid.csv")
	require.NoError(t, os.WriteFile(good, []byte(owidSample), 0644))
	ds, err := loader.Load(ctx, good)
	require.NoError(t, err)
	assert.Equal(t, 6, ds.Len())

	_, err = loader.Load(ctx, filepath.Join(dir, "absent.csv"))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing))

	wrongExt := filepath.Join(dir, "owid.txt")
	require.NoError(t, os.WriteFile(wrongExt, []byte(owidSample), 0644))
	_, err = loader.Load(ctx, wrongExt)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing))

	malformed := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(malformed, []byte("location,date\nKenya\n"), 0644))
	_, err = loader.Load(ctx, malformed)
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, malformed, appErr.Context["file"])
}
