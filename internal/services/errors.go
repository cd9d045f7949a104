package services

import "errors"

// Report service errors
var (
	ErrReportNotReady = errors.New("report has not been generated yet")
	ErrChartNotFound  = errors.New("chart not found")
)
