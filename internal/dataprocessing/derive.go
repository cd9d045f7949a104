package dataprocessing

import (
	"math"

	apperrors "owidreport/internal/errors"
	"owidreport/pkg/contracts/domain"
)

// DeriveDeathRate sets death_rate = total_deaths / total_cases on every record.
// Zero cases or a missing operand give NaN; the ratio is not clamped.
func DeriveDeathRate(ds *domain.Dataset) error {
	for _, col := range []domain.Column{domain.ColTotalDeaths, domain.ColTotalCases} {
		if !ds.HasColumn(col) {
			return apperrors.NewColumnNotFoundError(string(col))
		}
	}

	for i := range ds.Records {
		r := &ds.Records[i]
		r.DeathRate = DeathRate(r.TotalDeaths, r.TotalCases)
	}
	ds.AddColumn(domain.ColDeathRate)
	return nil
}

// DeathRate divides deaths by cases, NaN when cases is zero or either is missing.
func DeathRate(deaths, cases float64) float64 {
	if cases == 0 || math.IsNaN(cases) || math.IsNaN(deaths) {
		return math.NaN()
	}
	return deaths / cases
}
