package http

import (
	"errors"
	"html/template"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"owidreport/internal/charts"
	"owidreport/internal/services"
	"owidreport/pkg/contracts/domain"
)

var indexTemplate = template.Must(template.New("index").Funcs(template.FuncMap{
	"num":  formatNumber,
	"pct":  formatPercent,
	"date": formatDay,
}).Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>COVID-19 report</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 40px; }
        table { border-collapse: collapse; margin-bottom: 24px; }
        th, td { border: 1px solid #ccc; padding: 4px 10px; text-align: right; }
        th:first-child, td:first-child { text-align: left; }
        img { max-width: 100%; margin-bottom: 24px; }
    </style>
</head>
<body>
    <h1>COVID-19 report</h1>
    <p>Generated {{ .GeneratedAt.Format "2006-01-02 15:04:05 MST" }} from {{ .Source }}, {{ .RowsKept }} of {{ .RowsLoaded }} rows kept.</p>
    <h2>Insights</h2>
    <table>
        <tr><th>Location</th><th>Last date</th><th>Total cases</th><th>Total deaths</th><th>Vaccinations</th><th>Death rate</th><th>Peak new cases</th></tr>
        {{- range .Summaries }}
        <tr><td>{{ .Location }}</td><td>{{ date .LastDate }}</td><td>{{ num .TotalCases }}</td><td>{{ num .TotalDeaths }}</td><td>{{ num .TotalVaccinations }}</td><td>{{ pct .DeathRate }}</td><td>{{ num .PeakNewCases }} ({{ date .PeakNewCasesDate }})</td></tr>
        {{- end }}
    </table>
    <h2>Charts</h2>
    {{- range .Manifest.Charts }}
    <h3>{{ .Title }}</h3>
    {{- if eq .Format "png" }}
    <img src="/charts/{{ .File }}" alt="{{ .Title }}">
    {{- else }}
    <p><a href="/charts/{{ .File }}">Open {{ .Name }}</a></p>
    {{- end }}
    {{- end }}
    <p><a href="/api/report">JSON</a> | <a href="/metrics">Metrics</a></p>
</body>
</html>
`))

// ServeIndex renders the published report as an HTML page
func ServeIndex(service *services.ReportService, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := service.Current()
		if errors.Is(err, services.ErrReportNotReady) {
			http.Error(w, "Report has not been generated yet", http.StatusServiceUnavailable)
			return
		}
		if err != nil {
			http.Error(w, "Error loading report", http.StatusInternalServerError)
			return
		}
		if report.Manifest == nil {
			cp := *report
			cp.Manifest = &charts.Manifest{}
			report = &cp
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := indexTemplate.Execute(w, report); err != nil {
			logger.ErrorContext(r.Context(), "index render failed", slog.String("error", err.Error()))
		}
	}
}

func formatNumber(f domain.Float) string {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return strconv.FormatFloat(v, 'f', 0, 64)
}

func formatPercent(f domain.Float) string {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return strconv.FormatFloat(v*100, 'f', 2, 64) + "%"
}

func formatDay(t time.Time) string {
	if t.IsZero() {
		return "n/a"
	}
	return t.Format("2006-01-02")
}
