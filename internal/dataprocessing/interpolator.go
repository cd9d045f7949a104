package dataprocessing

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	apperrors "owidreport/internal/errors"
	"owidreport/pkg/contracts/domain"
)

// Scope decides which rows an interpolation may draw neighbours from
type Scope string

const (
	// ScopeEntity interpolates each location's rows independently
	ScopeEntity Scope = "entity"
	// ScopeGlobal interpolates down the whole table, across locations
	ScopeGlobal Scope = "global"
)

// ParseScope validates a configured scope name
func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case ScopeEntity, ScopeGlobal:
		return Scope(s), nil
	case "":
		return ScopeEntity, nil
	}
	return "", apperrors.NewAppValidationError(fmt.Sprintf("unknown interpolation scope %q", s))
}

// InterpolationStats reports per-column fill counts
type InterpolationStats struct {
	Filled    map[domain.Column]int `json:"filled"`
	Remaining map[domain.Column]int `json:"remaining"`
	Skipped   []domain.Column       `json:"skipped,omitempty"`
}

// TotalFilled sums Filled over all columns
func (s InterpolationStats) TotalFilled() int {
	n := 0
	for _, v := range s.Filled {
		n += v
	}
	return n
}

// FilledByName keys Filled by plain strings, for metrics attributes
func (s InterpolationStats) FilledByName() map[string]int {
	out := make(map[string]int, len(s.Filled))
	for k, v := range s.Filled {
		out[string(k)] = v
	}
	return out
}

// Interpolator fills interior gaps of numeric columns
type Interpolator struct {
	scope  Scope
	logger *slog.Logger
}

// NewInterpolator creates an interpolator for scope
func NewInterpolator(scope Scope, logger *slog.Logger) *Interpolator {
	if logger == nil {
		logger = slog.Default()
	}
	if scope == "" {
		scope = ScopeEntity
	}
	return &Interpolator{
		scope:  scope,
		logger: logger.With(slog.String("component", "interpolator")),
	}
}

// Scope returns the configured scope
func (in *Interpolator) Scope() Scope {
	return in.scope
}

// Interpolate fills missing values of cols in place by linear interpolation on
// row position. In entity scope each location's rows are walked in date order
// (source order among equal or unparsed dates); global scope keeps source order. Known values never change; leading and trailing gaps stay NaN.
// Columns absent from the dataset are skipped.
func (in *Interpolator) Interpolate(ds *domain.Dataset, cols []domain.Column) (InterpolationStats, error) {
	stats := InterpolationStats{
		Filled:    make(map[domain.Column]int),
		Remaining: make(map[domain.Column]int),
	}

	for _, col := range cols {
		if !col.IsNumeric() {
			return stats, apperrors.NewAppValidationError(fmt.Sprintf("%q is not a numeric column", col))
		}
	}

	groups := in.groups(ds)
	for _, col := range cols {
		if !ds.HasColumn(col) {
			stats.Skipped = append(stats.Skipped, col)
			in.logger.Debug("Column not present, skipping interpolation",
				slog.String("column", string(col)))
			continue
		}

		for _, idx := range groups {
			values := make([]float64, len(idx))
			for i, row := range idx {
				values[i], _ = ds.Records[row].Value(col)
			}
			if n := interpolateLinear(values); n > 0 {
				stats.Filled[col] += n
				for i, row := range idx {
					ds.Records[row].SetValue(col, values[i])
				}
			}
		}

		for i := range ds.Records {
			if ds.Records[i].IsMissing(col) {
				stats.Remaining[col]++
			}
		}
	}

	in.logger.Info("Interpolation complete",
		slog.String("scope", string(in.scope)),
		slog.Int("filled", stats.TotalFilled()),
		slog.Int("groups", len(groups)))

	return stats, nil
}

// groups returns the row indices each interpolation pass walks over
func (in *Interpolator) groups(ds *domain.Dataset) [][]int {
	if in.scope == ScopeGlobal {
		all := make([]int, ds.Len())
		for i := range all {
			all[i] = i
		}
		return [][]int{all}
	}

	var order []string
	byEntity := make(map[string][]int)
	for i, r := range ds.Records {
		if _, ok := byEntity[r.Location]; !ok {
			order = append(order, r.Location)
		}
		byEntity[r.Location] = append(byEntity[r.Location], i)
	}

	out := make([][]int, 0, len(order))
	for _, e := range order {
		idx := byEntity[e]
		sort.SliceStable(idx, func(a, b int) bool {
			return ds.Records[idx[a]].Date.Before(ds.Records[idx[b]].Date)
		})
		out = append(out, idx)
	}
	return out
}

// interpolateLinear fills NaN runs bounded by known values on both sides and
// returns how many were filled.
func interpolateLinear(values []float64) int {
	filled := 0
	prev := -1
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if prev >= 0 && i-prev > 1 {
			lo, hi := values[prev], v
			span := float64(i - prev)
			for k := prev + 1; k < i; k++ {
				values[k] = lo + (hi-lo)*float64(k-prev)/span
				filled++
			}
		}
		prev = i
	}
	return filled
}
