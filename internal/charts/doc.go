// Package charts renders the report figures: one PNG line chart per metric
// with a line per location (gonum/plot), and a world choropleth of the latest
// total cases (go-echarts HTML, optionally captured to PNG with headless
// Chrome).
//
// Renderer.Render draws every chart concurrently and returns a Manifest of
// the files written. Missing values break a line rather than being drawn as
// zero.
package charts
