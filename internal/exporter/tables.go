package exporter

import (
	"fmt"
	"log/slog"
	"time"

	"owidreport/internal/config"
	"owidreport/pkg/contracts/domain"
)

// table is a header plus rows of string, int, float64 or time.Time cells,
// shared by the CSV and workbook writers.
type table struct {
	headers []string
	rows    [][]interface{}
}

func datasetTable(ds *domain.Dataset) table {
	t := table{headers: make([]string, len(ds.Columns))}
	for i, c := range ds.Columns {
		t.headers[i] = string(c)
	}

	t.rows = make([][]interface{}, 0, ds.Len())
	for i := range ds.Records {
		r := &ds.Records[i]
		row := make([]interface{}, len(ds.Columns))
		for j, col := range ds.Columns {
			switch col {
			case domain.ColLocation:
				row[j] = r.Location
			case domain.ColISOCode:
				row[j] = r.ISOCode
			case domain.ColDate:
				if r.Date.IsZero() {
					row[j] = r.RawDate
				} else {
					row[j] = r.Date
				}
			default:
				v, _ := r.Value(col)
				row[j] = v
			}
		}
		t.rows = append(t.rows, row)
	}
	return t
}

func snapshotTable(snaps []domain.Snapshot) table {
	t := table{headers: []string{
		"location", "iso_code", "date", "total_cases", "total_deaths",
		"total_vaccinations", "death_rate", "aggregate",
	}}
	for _, s := range snaps {
		t.rows = append(t.rows, []interface{}{
			s.Location, s.ISOCode, s.Date,
			float64(s.TotalCases), float64(s.TotalDeaths),
			float64(s.TotalVaccinations), float64(s.DeathRate),
			fmt.Sprintf("%t", s.IsAggregate()),
		})
	}
	return t
}

func summaryTable(sums []domain.EntitySummary) table {
	t := table{headers: []string{
		"location", "iso_code", "rows", "first_date", "last_date",
		"total_cases", "total_deaths", "total_vaccinations", "death_rate",
		"peak_new_cases", "peak_new_cases_date",
	}}
	for _, s := range sums {
		t.rows = append(t.rows, []interface{}{
			s.Location, s.ISOCode, s.Rows, s.FirstDate, s.LastDate,
			float64(s.TotalCases), float64(s.TotalDeaths), float64(s.TotalVaccinations),
			float64(s.DeathRate), float64(s.PeakNewCases), s.PeakNewCasesDate,
		})
	}
	return t
}

func missingTable(report domain.MissingReport) table {
	t := table{headers: []string{"column", "missing", "rows"}}
	for _, c := range report.Columns {
		t.rows = append(t.rows, []interface{}{string(c.Column), c.Missing, report.Rows})
	}
	return t
}

func csvCell(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case int:
		return formatInt(val)
	case float64:
		return formatFloat(val)
	case time.Time:
		return formatDate(val)
	case nil:
		return ""
	}
	return fmt.Sprintf("%v", v)
}

// TableExporter writes the report tables as CSV files in the exports directory
type TableExporter struct {
	csvWriter *CSVWriter
	logger    *slog.Logger
}

// NewTableExporter creates a new table exporter
func NewTableExporter(paths *config.Paths, logger *slog.Logger) *TableExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &TableExporter{
		csvWriter: NewCSVWriter(paths, logger),
		logger:    logger,
	}
}

// ExportCleaned streams the cleaned dataset to cleaned_data.csv
func (e *TableExporter) ExportCleaned(ds *domain.Dataset) (string, error) {
	t := datasetTable(ds)
	sw, err := e.csvWriter.CreateStreamWriter(config.ExportCleanedCSV, t.headers)
	if err != nil {
		return "", err
	}

	for _, row := range t.rows {
		if err := sw.WriteRecord(csvRow(row)); err != nil {
			sw.Close()
			return "", err
		}
	}
	if err := sw.Close(); err != nil {
		return "", err
	}

	e.logger.Info("Cleaned dataset exported",
		slog.String("file", sw.Path()),
		slog.Int("rows", sw.Rows()))
	return sw.Path(), nil
}

// ExportSnapshot writes latest_snapshot.csv
func (e *TableExporter) ExportSnapshot(snaps []domain.Snapshot) (string, error) {
	return e.write(config.ExportSnapshotCSV, snapshotTable(snaps))
}

// ExportSummaries writes entity_summary.csv
func (e *TableExporter) ExportSummaries(sums []domain.EntitySummary) (string, error) {
	return e.write(config.ExportSummaryCSV, summaryTable(sums))
}

func (e *TableExporter) write(name string, t table) (string, error) {
	records := make([][]string, len(t.rows))
	for i, row := range t.rows {
		records[i] = csvRow(row)
	}
	return e.csvWriter.WriteSimpleCSV(name, t.headers, records)
}

func csvRow(row []interface{}) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = csvCell(v)
	}
	return out
}
