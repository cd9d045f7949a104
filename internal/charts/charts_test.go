package charts

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"owidreport/internal/config"
	apperrors "owidreport/internal/errors"
	"owidreport/internal/shared/testutil"
	"owidreport/pkg/contracts/domain"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func day(d int) time.Time {
	return time.Date(2021, 1, d, 0, 0, 0, 0, time.UTC)
}

func rec(location string, d int, cases, deaths float64) domain.Record {
	r := domain.NewRecord(location, "ISO", day(d).Format(domain.DateLayout))
	r.Date = day(d)
	r.TotalCases = cases
	r.TotalDeaths = deaths
	r.NewCases = 1
	r.DeathRate = deaths / cases
	return r
}

func sample() *domain.Dataset {
	return &domain.Dataset{
		Columns: []domain.Column{
			domain.ColLocation, domain.ColDate, domain.ColTotalCases,
			domain.ColTotalDeaths, domain.ColNewCases, domain.ColDeathRate,
		},
		Records: []domain.Record{
			rec("Kenya", 1, 100, 5),
			rec("Kenya", 2, math.NaN(), 6),
			rec("Kenya", 3, 120, 7),
			rec("India", 1, 1000, 10),
			rec("India", 2, 1100, 11),
		},
	}
}

func snapshots() []domain.Snapshot {
	return []domain.Snapshot{
		{Location: "Kenya", ISOCode: "KEN", TotalCases: 120},
		{Location: "India", ISOCode: "IND", TotalCases: 1100},
		{Location: "World", ISOCode: "OWID_WRL", TotalCases: 5000},
		{Location: "Chile", ISOCode: "CHL", TotalCases: domain.Float(math.NaN())},
	}
}

func assertPNG(t *testing.T, path string) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(data), len(pngMagic))
	assert.Equal(t, pngMagic, data[:len(pngMagic)])
}

func TestSeriesRuns(t *testing.T) {
	runs := seriesRuns(sample().ForEntity("Kenya"), domain.ColTotalCases)
	require.Len(t, runs, 2, "NaN splits the line")
	assert.Equal(t, 100.0, runs[0][0].Y)
	assert.Equal(t, float64(day(1).Unix()), runs[0][0].X)
	assert.Equal(t, 120.0, runs[1][0].Y)

	assert.Empty(t, seriesRuns(nil, domain.ColTotalCases))
}

func TestRenderLineChart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "total_cases.png")
	series, err := RenderLineChart(sample(), []string{"Kenya", "India", "Peru"}, LineCharts[0], path, 6, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, series, "Peru has no rows")
	assertPNG(t, path)
}

func TestRenderLineChart_MissingColumn(t *testing.T) {
	lc := LineChart{Name: "vax", Metric: domain.ColTotalVaccinations}
	_, err := RenderLineChart(sample(), []string{"Kenya"}, lc, filepath.Join(t.TempDir(), "x.png"), 6, 3)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
}

func TestMapData(t *testing.T) {
	data, maxCases, unmatched := mapData(snapshots())
	require.Len(t, data, 2)
	assert.Equal(t, "Kenya", data[0].Name)
	assert.Equal(t, 1100.0, maxCases, "aggregates do not stretch the scale")
	assert.Empty(t, unmatched)
}

func TestMapData_RegionNamesByISOCode(t *testing.T) {
	snaps := []domain.Snapshot{
		{Location: "South Korea", ISOCode: "KOR", TotalCases: 30},
		{Location: "Democratic Republic of Congo", ISOCode: "COD", TotalCases: 20},
		{Location: "Czechia", ISOCode: "CZE", TotalCases: 10},
		{Location: "Kosovo", ISOCode: "OWID_KOS", TotalCases: 5},
		{Location: "Europe", ISOCode: "OWID_EUR", TotalCases: 900},
		{Location: "Gibraltar", ISOCode: "GIB", TotalCases: 4},
	}

	data, maxCases, unmatched := mapData(snaps)

	names := make([]string, len(data))
	for i, d := range data {
		names[i] = d.Name
	}
	assert.Equal(t, []string{"Korea", "Dem. Rep. Congo", "Czech Rep.", "Kosovo"}, names)
	assert.Equal(t, 30.0, maxCases)
	assert.Equal(t, []string{"GIB"}, unmatched, "countries off the map are reported, aggregates are not")
}

func TestRegionName(t *testing.T) {
	tests := []struct {
		iso  string
		want string
		ok   bool
	}{
		{"KOR", "Korea", true},
		{"LAO", "Lao PDR", true},
		{"SWZ", "Swaziland", true},
		{"USA", "United States", true},
		{"OWID_WRL", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.iso, func(t *testing.T) {
			got, ok := RegionName(tt.iso)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderChoropleth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.html")
	result, err := RenderChoropleth(snapshots(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Regions)
	assert.Empty(t, result.Unmatched)

	html, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(html), "Kenya")
	assert.Contains(t, string(html), "world")
	assert.NotContains(t, string(html), "OWID_WRL")
}

func TestRenderer_Render(t *testing.T) {
	paths := config.NewPaths(t.TempDir())

	var mu sync.Mutex
	observed := map[string]error{}
	r := NewRenderer(paths, Options{Width: 6, Height: 3}, nil).
		WithObserver(func(_ context.Context, chart string, err error) {
			mu.Lock()
			observed[chart] = err
			mu.Unlock()
		})

	manifest, err := r.Render(context.Background(), sample(), []string{"Kenya", "India"}, snapshots())
	require.NoError(t, err)

	var files []string
	for _, c := range manifest.Charts {
		files = append(files, c.File)
	}
	assert.Equal(t, []string{
		config.ChartTotalCases, config.ChartTotalDeaths, config.ChartNewCases,
		config.ChartDeathRate, config.ChartChoroplethHTML,
	}, files)
	assert.Equal(t, []string{"total_vaccinations"}, manifest.Skipped)

	for _, c := range manifest.Charts {
		assert.FileExists(t, c.Path)
		if c.Format == "png" {
			assertPNG(t, c.Path)
		}
	}
	assert.Len(t, observed, 5)

	chart, ok := manifest.Find(config.ChartDeathRate)
	require.True(t, ok)
	assert.Equal(t, KindLine, chart.Kind)
	assert.Equal(t, 2, chart.Series)
}

func TestRenderer_LogsLocationsOffTheMap(t *testing.T) {
	paths := config.NewPaths(t.TempDir())
	logger, handler := testutil.NewTestLogger(t)

	snaps := append(snapshots(), domain.Snapshot{Location: "Gibraltar", ISOCode: "GIB", TotalCases: 4})
	manifest, err := NewRenderer(paths, Options{Width: 4, Height: 2}, logger).
		Render(context.Background(), sample(), []string{"Kenya"}, snaps)
	require.NoError(t, err)

	chart, ok := manifest.Find(config.ChartChoroplethHTML)
	require.True(t, ok)
	assert.Equal(t, 2, chart.Series)

	testutil.AssertLogContains(t, handler, slog.LevelWarn, "Locations without a map region")
	rec, ok := handler.Find("Locations without a map region")
	require.True(t, ok)
	assert.Equal(t, []string{"GIB"}, rec.Attrs["iso_codes"])
}

func TestRenderer_ChoroplethCapture(t *testing.T) {
	paths := config.NewPaths(t.TempDir())

	r := NewRenderer(paths, Options{Width: 4, Height: 2, ChoroplethPNG: true}, nil)
	r.capture = func(_ context.Context, htmlPath, pngPath string, _ time.Duration) error {
		assert.FileExists(t, htmlPath)
		return os.WriteFile(pngPath, pngMagic, 0644)
	}

	manifest, err := r.Render(context.Background(), sample(), []string{"Kenya"}, snapshots())
	require.NoError(t, err)
	_, ok := manifest.Find(config.ChartChoroplethPNG)
	assert.True(t, ok)
}

func TestRenderer_CaptureFailureIsNotFatal(t *testing.T) {
	paths := config.NewPaths(t.TempDir())

	r := NewRenderer(paths, Options{Width: 4, Height: 2, ChoroplethPNG: true}, nil)
	r.capture = func(context.Context, string, string, time.Duration) error {
		return errors.New("chrome not found")
	}

	manifest, err := r.Render(context.Background(), sample(), []string{"Kenya"}, snapshots())
	require.NoError(t, err)
	_, ok := manifest.Find(config.ChartChoroplethPNG)
	assert.False(t, ok)
	_, ok = manifest.Find(config.ChartChoroplethHTML)
	assert.True(t, ok)
}

func TestRenderer_RequiredColumnMissing(t *testing.T) {
	ds := sample()
	ds.Columns = ds.Columns[:4]

	_, err := NewRenderer(config.NewPaths(t.TempDir()), Options{}, nil).
		Render(context.Background(), ds, []string{"Kenya"}, snapshots())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
}

func TestOptionsFromConfig(t *testing.T) {
	o := OptionsFromConfig(config.Default().Output)
	assert.Equal(t, 12.0, o.Width)
	assert.Equal(t, 6.0, o.Height)
	assert.False(t, o.ChoroplethPNG)
}
