package charts

import (
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"owidreport/internal/config"
	apperrors "owidreport/internal/errors"
	"owidreport/pkg/contracts/domain"
)

// LineChart describes one time-series figure
type LineChart struct {
	Name     string
	Metric   domain.Column
	Title    string
	YLabel   string
	FileName string
	// Optional charts are skipped, not failed, when the metric column is absent
	Optional bool
}

// LineCharts are the time-series figures of the report, in display order
var LineCharts = []LineChart{
	{Name: "total_cases", Metric: domain.ColTotalCases, Title: "Total COVID-19 Cases Over Time", YLabel: "Total Cases", FileName: config.ChartTotalCases},
	{Name: "total_deaths", Metric: domain.ColTotalDeaths, Title: "Total COVID-19 Deaths Over Time", YLabel: "Total Deaths", FileName: config.ChartTotalDeaths},
	{Name: "new_cases", Metric: domain.ColNewCases, Title: "Daily New COVID-19 Cases", YLabel: "New Cases", FileName: config.ChartNewCases},
	{Name: "death_rate", Metric: domain.ColDeathRate, Title: "COVID-19 Death Rate Over Time", YLabel: "Death Rate", FileName: config.ChartDeathRate},
	{Name: "total_vaccinations", Metric: domain.ColTotalVaccinations, Title: "Total COVID-19 Vaccinations Over Time", YLabel: "Total Vaccinations", FileName: config.ChartTotalVaccinations, Optional: true},
}

// seriesRuns splits an entity's values into unbroken runs of known points.
// x is the date in Unix seconds.
func seriesRuns(records []domain.Record, metric domain.Column) []plotter.XYs {
	var runs []plotter.XYs
	var cur plotter.XYs
	for i := range records {
		v, _ := records[i].Value(metric)
		if math.IsNaN(v) || math.IsInf(v, 0) || records[i].Date.IsZero() {
			if len(cur) > 0 {
				runs = append(runs, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, plotter.XY{X: float64(records[i].Date.Unix()), Y: v})
	}
	if len(cur) > 0 {
		runs = append(runs, cur)
	}
	return runs
}

// buildLinePlot draws one line per entity; entities without data get no legend entry.
// It returns the plot and the number of entities drawn.
func buildLinePlot(ds *domain.Dataset, entities []string, lc LineChart) (*plot.Plot, int, error) {
	if !ds.HasColumn(lc.Metric) {
		return nil, 0, apperrors.NewColumnNotFoundError(string(lc.Metric))
	}

	p := plot.New()
	p.Title.Text = lc.Title
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.X.Label.Text = "Date"
	p.Y.Label.Text = lc.YLabel
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01"}
	p.Legend.Top = true
	p.Legend.Left = true
	p.Add(plotter.NewGrid())

	drawn := 0
	for i, entity := range entities {
		runs := seriesRuns(ds.ForEntity(entity), lc.Metric)
		for j, run := range runs {
			line, err := plotter.NewLine(run)
			if err != nil {
				return nil, 0, apperrors.NewRenderError(fmt.Sprintf("%s: line for %s", lc.Name, entity), err)
			}
			line.Color = plotutil.Color(i)
			line.Width = vg.Points(1.5)
			p.Add(line)
			if j == 0 {
				p.Legend.Add(entity, line)
			}
		}
		if len(runs) > 0 {
			drawn++
		}
	}
	return p, drawn, nil
}

// RenderLineChart draws lc and saves it as a PNG of width x height inches
func RenderLineChart(ds *domain.Dataset, entities []string, lc LineChart, path string, width, height float64) (int, error) {
	p, drawn, err := buildLinePlot(ds, entities, lc)
	if err != nil {
		return 0, err
	}
	if err := p.Save(vg.Length(width)*vg.Inch, vg.Length(height)*vg.Inch, path); err != nil {
		return 0, apperrors.NewRenderError(fmt.Sprintf("failed to save %s", path), err)
	}
	return drawn, nil
}
