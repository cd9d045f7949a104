// Package exporter writes the report tables to disk.
//
// CSVWriter: CSV files with a UTF-8 BOM so Excel opens them correctly, either
// in one call or through a StreamWriter for large tables.
//
// TableExporter: cleaned dataset, latest snapshot and entity summaries as CSV.
//
// WorkbookExporter: the same tables plus the missing-value report as sheets of
// one Excel workbook.
//
// Missing values are written as empty cells.
//
// Example usage:
//
//	tables := exporter.NewTableExporter(paths, logger)
//	cleanedPath, err := tables.ExportCleaned(ds)
//
//	book := exporter.NewWorkbookExporter(paths, logger)
//	err = book.Export(exporter.WorkbookData{Cleaned: ds, Snapshot: snaps})
package exporter
