// Package dataprocessing turns the raw OWID COVID-19 CSV into the cleaned,
// interpolated table the charts and exports are drawn from.
//
// # Architecture
//
// The package is organized into the pipeline stages, each usable on its own:
//
// 1. Loader: reads the CSV by header name into a domain.Dataset
// 2. Cleaner: filters to the configured locations, drops rows missing required fields, parses dates
// 3. Interpolator: fills interior gaps of numeric columns, per entity or across the table
// 4. DeriveDeathRate: adds total_deaths / total_cases
// 5. LatestSnapshot, Summarizer, CountMissing: report tables
//
// # Usage
//
//	ds, err := dataprocessing.NewLoader(logger).Load(ctx, "owid-covid-data.csv")
//	if err != nil {
//	    return err
//	}
//	clean, err := dataprocessing.NewCleaner(logger).Clean(ctx, ds,
//	    []string{"Kenya", "India"},
//	    []domain.Column{domain.ColDate, domain.ColTotalCases, domain.ColTotalDeaths})
//	stats, err := dataprocessing.NewInterpolator(dataprocessing.ScopeEntity, logger).
//	    Interpolate(clean, []domain.Column{domain.ColNewCases})
//	err = dataprocessing.DeriveDeathRate(clean)
//
// # Missing values
//
// Numeric nulls are NaN end to end. A division by zero is NaN, not an error.
//
// # Error Handling
//
// Unreadable or malformed input is an errors.ErrTypeParsing AppError. A
// column that a stage needs but the source lacks is ErrTypeNotFound, raised
// by that stage rather than checked upfront.
package dataprocessing
