package charts

import (
	"fmt"
	"math"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	apperrors "owidreport/internal/errors"
	"owidreport/pkg/contracts/domain"
)

// ChoroplethTitle is the heading of the world map
const ChoroplethTitle = "Global COVID-19 Total Cases by Country (Latest)"

// reds is a sequential white-to-dark-red scale
var reds = []string{"#fff5f0", "#fee0d2", "#fcbba1", "#fc9272", "#fb6a4a", "#ef3b2c", "#cb181d", "#a50f15", "#67000d"}

// mapData converts snapshots into map regions keyed by world map region
// name, looked up by ISO code. Rows without cases are left out; aggregates
// are left out unless the map has a region for them (Kosovo). Countries
// whose code has no region are returned in unmatched.
func mapData(snaps []domain.Snapshot) (data []opts.MapData, maxCases float64, unmatched []string) {
	data = make([]opts.MapData, 0, len(snaps))
	for _, s := range snaps {
		cases := float64(s.TotalCases)
		if math.IsNaN(cases) {
			continue
		}
		region, ok := RegionName(s.ISOCode)
		if !ok {
			if !s.IsAggregate() {
				unmatched = append(unmatched, s.ISOCode)
			}
			continue
		}
		data = append(data, opts.MapData{Name: region, Value: cases})
		if cases > maxCases {
			maxCases = cases
		}
	}
	return data, maxCases, unmatched
}

func buildChoropleth(snaps []domain.Snapshot) (*charts.Map, int, []string) {
	data, maxCases, unmatched := mapData(snaps)

	m := charts.NewMap()
	m.RegisterMapType("world")
	m.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: ChoroplethTitle,
			Width:     "1200px",
			Height:    "700px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    ChoroplethTitle,
			Subtitle: "Source: Our World in Data",
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "item",
		}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(maxCases),
			Text:       []string{"High", "Low"},
			InRange:    &opts.VisualMapInRange{Color: reds},
		}),
	)
	m.AddSeries("Total cases", data)
	return m, len(data), unmatched
}

// ChoroplethResult describes a rendered world map
type ChoroplethResult struct {
	Regions   int      // shaded regions
	Unmatched []string // ISO codes with no region on the map
}

// RenderChoropleth writes the world map of latest total cases as an HTML page.
func RenderChoropleth(snaps []domain.Snapshot, path string) (ChoroplethResult, error) {
	m, regions, unmatched := buildChoropleth(snaps)

	f, err := os.Create(path)
	if err != nil {
		return ChoroplethResult{}, apperrors.NewRenderError(fmt.Sprintf("failed to create %s", path), err)
	}
	defer f.Close()

	if err := m.Render(f); err != nil {
		return ChoroplethResult{}, apperrors.NewRenderError("failed to render choropleth", err)
	}
	return ChoroplethResult{Regions: regions, Unmatched: unmatched}, nil
}
