package dataprocessing

import (
	"log/slog"
	"sort"
	"time"

	apperrors "owidreport/internal/errors"
	"owidreport/pkg/contracts/domain"
)

// LatestSnapshot picks, per location, the row with the greatest date; the
// first such row wins ties. It runs over the full dataset, so rows need not
// have been cleaned: unparsable dates are skipped. Snapshots lacking an ISO
// code or total_cases are dropped. The result is sorted by location.
func LatestSnapshot(ds *domain.Dataset) ([]domain.Snapshot, error) {
	for _, col := range []domain.Column{domain.ColLocation, domain.ColDate, domain.ColISOCode, domain.ColTotalCases} {
		if !ds.HasColumn(col) {
			return nil, apperrors.NewColumnNotFoundError(string(col))
		}
	}

	type pick struct {
		row  int
		date time.Time
	}
	latest := make(map[string]pick)
	var order []string
	skipped := 0
	for i := range ds.Records {
		r := &ds.Records[i]
		if r.Location == "" {
			continue
		}
		d := r.Date
		if d.IsZero() {
			parsed, err := parseDate(r.RawDate)
			if err != nil {
				skipped++
				continue
			}
			d = parsed
		}

		cur, seen := latest[r.Location]
		if !seen {
			order = append(order, r.Location)
		}
		if !seen || d.After(cur.date) {
			latest[r.Location] = pick{row: i, date: d}
		}
	}

	if skipped > 0 {
		slog.Warn("Skipped rows with unparsable dates while building snapshot",
			slog.Int("rows", skipped))
	}

	sort.Strings(order)
	out := make([]domain.Snapshot, 0, len(order))
	for _, loc := range order {
		p := latest[loc]
		r := &ds.Records[p.row]
		if r.ISOCode == "" || r.IsMissing(domain.ColTotalCases) {
			continue
		}
		out = append(out, domain.Snapshot{
			Location:          r.Location,
			ISOCode:           r.ISOCode,
			Date:              p.date,
			TotalCases:        domain.Float(r.TotalCases),
			TotalDeaths:       domain.Float(r.TotalDeaths),
			TotalVaccinations: domain.Float(r.TotalVaccinations),
			DeathRate:         domain.Float(DeathRate(r.TotalDeaths, r.TotalCases)),
		})
	}
	return out, nil
}

// Countries drops OWID aggregate pseudo-entities such as continents
func Countries(snaps []domain.Snapshot) []domain.Snapshot {
	out := make([]domain.Snapshot, 0, len(snaps))
	for _, s := range snaps {
		if !s.IsAggregate() {
			out = append(out, s)
		}
	}
	return out
}
