// Package app wires the report generator together and manages its lifecycle.
//
// NewApplication resolves paths, initializes OpenTelemetry, builds the
// pipeline and the chi router. Generate runs the pipeline once and publishes
// the result; Serve then exposes it over HTTP until SIGINT, SIGTERM or
// context cancellation, after which the server is drained and telemetry is
// flushed.
//
// The router applies middleware in this order:
//
//	RequestID → RealIP → OTel → StructuredLogger → Recoverer → SecurityHeaders → RateLimit
//
// /metrics sits outside the group so scrapes are neither logged nor limited.
package app
