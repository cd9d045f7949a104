// Package operations runs the report pipeline.
//
// A Pipeline executes a fixed sequence of steps over one dataset:
//
//	load → inspect → snapshot → clean → interpolate → derive → summarize → export → render
//
// Each step runs inside its own span and records its duration in
// owid_stage_duration. The first failing step aborts the run and is returned
// wrapped in a StepError; the StepState list in the returned Report shows
// which steps completed. Steps run strictly in order; only rendering fans
// out internally.
package operations
