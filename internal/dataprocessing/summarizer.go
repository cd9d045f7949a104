package dataprocessing

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"owidreport/pkg/contracts/domain"
)

// Summarizer condenses each entity's cleaned trajectory into one row
type Summarizer struct {
	logger *slog.Logger
}

// NewSummarizer creates a summarizer. A nil logger falls back to slog.Default.
func NewSummarizer(logger *slog.Logger) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizer{logger: logger.With(slog.String("component", "summarizer"))}
}

// Summarize builds one summary per entity that has rows, sorted by latest
// total cases descending (NaN last, then by location).
func (s *Summarizer) Summarize(ctx context.Context, ds *domain.Dataset, entities []string) []domain.EntitySummary {
	grouped := s.groupRecordsByEntity(ds)

	summaries := make([]domain.EntitySummary, 0, len(entities))
	for _, e := range entities {
		records := grouped[e]
		if len(records) == 0 {
			continue
		}
		summaries = append(summaries, s.generateEntitySummary(e, records))
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		a, b := float64(summaries[i].TotalCases), float64(summaries[j].TotalCases)
		switch {
		case math.IsNaN(a) && math.IsNaN(b):
			return summaries[i].Location < summaries[j].Location
		case math.IsNaN(a):
			return false
		case math.IsNaN(b):
			return true
		case a != b:
			return a > b
		}
		return summaries[i].Location < summaries[j].Location
	})

	for _, sum := range summaries {
		s.logger.InfoContext(ctx, "Entity summary",
			slog.String("location", sum.Location),
			slog.Int("rows", sum.Rows),
			slog.Float64("total_cases", float64(sum.TotalCases)),
			slog.Float64("total_deaths", float64(sum.TotalDeaths)),
			slog.Float64("peak_new_cases", float64(sum.PeakNewCases)))
	}

	return summaries
}

func (s *Summarizer) groupRecordsByEntity(ds *domain.Dataset) map[string][]domain.Record {
	out := make(map[string][]domain.Record)
	for _, r := range ds.Records {
		out[r.Location] = append(out[r.Location], r)
	}
	return out
}

func (s *Summarizer) generateEntitySummary(location string, records []domain.Record) domain.EntitySummary {
	first, last := 0, 0
	peak, peakIdx := math.NaN(), -1
	for i := range records {
		if records[i].Date.Before(records[first].Date) {
			first = i
		}
		// ties resolve to the later row, which carries the newer cumulative value
		if !records[i].Date.Before(records[last].Date) {
			last = i
		}
		if nc := records[i].NewCases; !math.IsNaN(nc) && (peakIdx < 0 || nc > peak) {
			peak, peakIdx = nc, i
		}
	}

	latest := records[last]
	sum := domain.EntitySummary{
		Location:          location,
		ISOCode:           latest.ISOCode,
		Rows:              len(records),
		FirstDate:         records[first].Date,
		LastDate:          latest.Date,
		TotalCases:        domain.Float(latest.TotalCases),
		TotalDeaths:       domain.Float(latest.TotalDeaths),
		TotalVaccinations: domain.Float(lastKnown(records, domain.ColTotalVaccinations)),
		DeathRate:         domain.Float(DeathRate(latest.TotalDeaths, latest.TotalCases)),
		PeakNewCases:      domain.Float(peak),
	}
	if peakIdx >= 0 {
		sum.PeakNewCasesDate = records[peakIdx].Date
	}
	return sum
}

// lastKnown returns the most recent non-missing value of col. Vaccination
// totals stop being reported long before case totals, so the latest row is
// usually empty.
func lastKnown(records []domain.Record, col domain.Column) float64 {
	best := -1
	for i := range records {
		if records[i].IsMissing(col) {
			continue
		}
		if best < 0 || !records[i].Date.Before(records[best].Date) {
			best = i
		}
	}
	if best < 0 {
		return math.NaN()
	}
	v, _ := records[best].Value(col)
	return v
}

// CountMissing counts nulls per column over ds, in column order
func CountMissing(ds *domain.Dataset) domain.MissingReport {
	report := domain.MissingReport{
		Rows:    ds.Len(),
		Columns: make([]domain.MissingCount, 0, len(ds.Columns)),
	}
	for _, col := range ds.Columns {
		n := 0
		for i := range ds.Records {
			if ds.Records[i].IsMissing(col) {
				n++
			}
		}
		report.Columns = append(report.Columns, domain.MissingCount{Column: col, Missing: n})
	}
	return report
}

// Head returns at most n leading records
func Head(ds *domain.Dataset, n int) []domain.Record {
	if n > ds.Len() {
		n = ds.Len()
	}
	return ds.Records[:n]
}
