package operations

import (
	"time"

	"owidreport/internal/charts"
	"owidreport/internal/dataprocessing"
	"owidreport/pkg/contracts/domain"
)

// Report is everything one pipeline run produced
type Report struct {
	GeneratedAt   time.Time                         `json:"generated_at"`
	Duration      time.Duration                     `json:"duration_ns"`
	Source        string                            `json:"source"`
	Entities      []string                          `json:"entities"`
	Scope         string                            `json:"interpolation_scope"`
	Columns       []domain.Column                   `json:"columns"`
	RowsLoaded    int                               `json:"rows_loaded"`
	RowsKept      int                               `json:"rows_kept"`
	Missing       domain.MissingReport              `json:"missing"`
	Interpolation dataprocessing.InterpolationStats `json:"interpolation"`
	Snapshot      []domain.Snapshot                 `json:"snapshot"`
	Summaries     []domain.EntitySummary            `json:"summaries"`
	Manifest      *charts.Manifest                  `json:"charts"`
	Exports       []string                          `json:"exports"`
	Steps         []*StepState                      `json:"steps"`

	// Cleaned is the final table; it is not part of the JSON form.
	Cleaned *domain.Dataset `json:"-"`
}

// Step returns the state of the named step
func (r *Report) Step(name string) (*StepState, bool) {
	for _, s := range r.Steps {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}
