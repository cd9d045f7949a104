package http

import (
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "owidreport/internal/errors"
	"owidreport/internal/services"
)

// ReportHandler serves the published report as JSON
type ReportHandler struct {
	service      *services.ReportService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewReportHandler creates a new report handler
func NewReportHandler(service *services.ReportService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ReportHandler {
	return &ReportHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "report_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the report routes, mounted under /api
func (h *ReportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/report", h.GetReport)
	r.Get("/summary", h.GetSummary)
	r.Get("/snapshot", h.GetSnapshot)
	r.Get("/missing", h.GetMissing)
	r.Get("/charts", h.GetCharts)
	return r
}

// GetReport handles GET /api/report
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Current()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, r, report)
}

// GetSummary handles GET /api/summary
func (h *ReportHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	sums, err := h.service.Summaries()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"summaries": sums,
		"count":     len(sums),
	})
}

// GetSnapshot handles GET /api/snapshot?countries=true
func (h *ReportHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	countriesOnly := false
	if v := r.URL.Query().Get("countries"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.InvalidParameter("countries", "must be a boolean"))
			return
		}
		countriesOnly = b
	}

	snaps, err := h.service.Snapshot(countriesOnly)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"snapshot": snaps,
		"count":    len(snaps),
	})
}

// GetMissing handles GET /api/missing
func (h *ReportHandler) GetMissing(w http.ResponseWriter, r *http.Request) {
	missing, err := h.service.Missing()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, r, missing)
}

// GetCharts handles GET /api/charts
func (h *ReportHandler) GetCharts(w http.ResponseWriter, r *http.Request) {
	manifest, err := h.service.Charts()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, r, manifest)
}

// ServeChart handles GET /charts/{name}. Only files listed in the manifest
// are served, so the route never exposes other files in the output tree.
func (h *ReportHandler) ServeChart(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" || name != filepath.Base(name) {
		h.errorHandler.HandleError(w, r, apierrors.InvalidParameter("name", "must be a plain file name"))
		return
	}

	chart, err := h.service.Chart(name)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFile(w, r, chart.Path)
}

func (h *ReportHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrReportNotReady):
		err = apierrors.ErrReportNotReady
	case errors.Is(err, services.ErrChartNotFound):
		err = apierrors.NotFoundError("chart " + chi.URLParam(r, "name"))
	}
	h.errorHandler.HandleError(w, r, err)
}
