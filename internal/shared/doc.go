// Package shared holds helpers used across packages but owned by none.
//
// The testutil subpackage provides a buffered slog handler so tests can
// assert on what a component logged without parsing JSON.
package shared
