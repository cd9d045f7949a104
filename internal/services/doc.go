// Package services sits between the HTTP handlers and the pipeline output.
//
// ReportService holds the most recent operations.Report behind a RWMutex; the pipeline
// publishes into it and handlers only read. Until a report is published every
// accessor returns ErrReportNotReady. HealthService reports liveness and
// whether a report is available.
package services
