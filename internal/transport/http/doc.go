// Package http exposes a published report over HTTP.
//
// Handlers are thin: they read from services.ReportService and render JSON
// with go-chi/render. Errors go through the shared ErrorHandler and come
// out as RFC 7807 problem details; a request made before the first report is
// published gets 503 with type /errors/report/not-ready.
//
// Routes:
//
//	GET /                  HTML overview of the report
//	GET /api/health        liveness and report state
//	GET /api/health/ready  503 until a report exists
//	GET /api/report        the whole report
//	GET /api/summary       per-entity summaries
//	GET /api/snapshot      latest row per entity (?countries=true drops aggregates)
//	GET /api/missing       null counts of the unfiltered dataset
//	GET /api/charts        chart manifest
//	GET /charts/{name}     a chart file listed in the manifest
package http
