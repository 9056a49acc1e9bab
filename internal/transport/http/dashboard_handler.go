// Package http exposes the dashboard over a JSON API. Handlers are thin:
// validation and rendering here, everything else in the services layer.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"ecdash/internal/dataprocessing"
	apierrors "ecdash/internal/errors"
	"ecdash/internal/exporter"
	"ecdash/internal/registry"
	"ecdash/internal/services"
	"ecdash/pkg/contracts/domain"
)

// DashboardService is the service surface the handlers depend on.
type DashboardService interface {
	Load(ctx context.Context) (*services.Dataset, error)
	FilterEnvironment(ds *services.Dataset, school string) []domain.EnvironmentRecord
	FilterGrowth(ds *services.Dataset, school string) []domain.GrowthRecord
	Overview(ds *services.Dataset) services.Overview
	ValidSchool(school string) bool
	Registry() *registry.Registry
}

// DashboardHandler serves the dashboard API routes.
type DashboardHandler struct {
	service DashboardService
	logger  *slog.Logger
}

// NewDashboardHandler creates a dashboard handler.
func NewDashboardHandler(service DashboardService, logger *slog.Logger) *DashboardHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardHandler{service: service, logger: logger}
}

// Routes returns the API router.
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/schools", h.GetSchools)
	r.Get("/overview", h.GetOverview)
	r.Get("/environment", h.GetEnvironment)
	r.Get("/environment/summary", h.GetEnvironmentSummary)
	r.Get("/environment/export", h.ExportEnvironment)
	r.Get("/growth", h.GetGrowth)
	r.Get("/growth/summary", h.GetGrowthSummary)
	r.Get("/growth/export", h.ExportGrowth)

	return r
}

type schoolsResponse struct {
	Schools  []registry.School `json:"schools"`
	AllValue string            `json:"all_value"`
}

// GetSchools returns the registered schools and the all-schools selector
// value, in registry order.
func (h *DashboardHandler) GetSchools(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, schoolsResponse{
		Schools:  h.service.Registry().Schools(),
		AllValue: registry.AllSchools,
	})
}

type overviewResponse struct {
	services.Overview
	Warnings []dataprocessing.Warning `json:"warnings,omitempty"`
}

// GetOverview returns the headline metrics of the loaded dataset.
func (h *DashboardHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	ds, ok := h.loadDataset(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, overviewResponse{
		Overview: h.service.Overview(ds),
		Warnings: ds.Warnings,
	})
}

type environmentResponse struct {
	School   string                     `json:"school"`
	Count    int                        `json:"count"`
	Records  []domain.EnvironmentRecord `json:"records"`
	Warnings []dataprocessing.Warning   `json:"warnings,omitempty"`
}

// GetEnvironment returns the unified environment table, optionally filtered
// to one school.
func (h *DashboardHandler) GetEnvironment(w http.ResponseWriter, r *http.Request) {
	school, ok := h.schoolParam(w, r)
	if !ok {
		return
	}
	ds, ok := h.loadDataset(w, r)
	if !ok {
		return
	}

	records := h.service.FilterEnvironment(ds, school)
	render.JSON(w, r, environmentResponse{
		School:   selectionLabel(school),
		Count:    len(records),
		Records:  records,
		Warnings: ds.Warnings,
	})
}

type environmentSummaryResponse struct {
	Summary  []domain.EnvironmentSummary `json:"summary"`
	Warnings []dataprocessing.Warning    `json:"warnings,omitempty"`
}

// GetEnvironmentSummary returns the per-school environment means.
func (h *DashboardHandler) GetEnvironmentSummary(w http.ResponseWriter, r *http.Request) {
	ds, ok := h.loadDataset(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, environmentSummaryResponse{
		Summary:  ds.Environment.Summary,
		Warnings: ds.Warnings,
	})
}

type growthResponse struct {
	School   string                   `json:"school"`
	Count    int                      `json:"count"`
	Records  []domain.GrowthRecord    `json:"records"`
	Warnings []dataprocessing.Warning `json:"warnings,omitempty"`
}

// GetGrowth returns the unified growth table, optionally filtered to one
// school.
func (h *DashboardHandler) GetGrowth(w http.ResponseWriter, r *http.Request) {
	school, ok := h.schoolParam(w, r)
	if !ok {
		return
	}
	ds, ok := h.loadDataset(w, r)
	if !ok {
		return
	}

	records := h.service.FilterGrowth(ds, school)
	render.JSON(w, r, growthResponse{
		School:   selectionLabel(school),
		Count:    len(records),
		Records:  records,
		Warnings: ds.Warnings,
	})
}

type growthSummaryResponse struct {
	Summary  []domain.GrowthSummary   `json:"summary"`
	Warnings []dataprocessing.Warning `json:"warnings,omitempty"`
}

// GetGrowthSummary returns the per-target-EC growth means.
func (h *DashboardHandler) GetGrowthSummary(w http.ResponseWriter, r *http.Request) {
	ds, ok := h.loadDataset(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, growthSummaryResponse{
		Summary:  ds.Growth.Summary,
		Warnings: ds.Warnings,
	})
}

// ExportEnvironment streams the filtered environment table as a BOM-prefixed
// CSV download.
func (h *DashboardHandler) ExportEnvironment(w http.ResponseWriter, r *http.Request) {
	school, ok := h.schoolParam(w, r)
	if !ok {
		return
	}
	ds, ok := h.loadDataset(w, r)
	if !ok {
		return
	}

	records := h.service.FilterEnvironment(ds, school)
	filename := exporter.EnvironmentRawFilename(school)

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	setAttachment(w, filename)
	if err := exporter.WriteEnvironmentRawCSV(w, records); err != nil {
		h.logger.ErrorContext(r.Context(), "environment export failed",
			slog.String("error", err.Error()))
	}
}

// ExportGrowth streams the filtered growth table as an XLSX download.
func (h *DashboardHandler) ExportGrowth(w http.ResponseWriter, r *http.Request) {
	school, ok := h.schoolParam(w, r)
	if !ok {
		return
	}
	ds, ok := h.loadDataset(w, r)
	if !ok {
		return
	}

	records := h.service.FilterGrowth(ds, school)
	filename := exporter.GrowthRawFilename(school)

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	setAttachment(w, filename)
	if err := exporter.WriteGrowthRawXLSX(w, records); err != nil {
		h.logger.ErrorContext(r.Context(), "growth export failed",
			slog.String("error", err.Error()))
	}
}

// loadDataset loads the current dataset, rendering the mapped API error on
// failure.
func (h *DashboardHandler) loadDataset(w http.ResponseWriter, r *http.Request) (*services.Dataset, bool) {
	ds, err := h.service.Load(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "dataset load failed",
			slog.String("error", err.Error()))
		render.Render(w, r, apierrors.ToAPIError(err))
		return nil, false
	}
	return ds, true
}

// schoolParam reads and validates the school query parameter.
func (h *DashboardHandler) schoolParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	school := r.URL.Query().Get("school")
	if !h.service.ValidSchool(school) {
		render.Render(w, r, apierrors.ValidationError("school",
			fmt.Sprintf("unknown school: %s", school)))
		return "", false
	}
	return school, true
}

// selectionLabel maps an empty selection to the all-schools value.
func selectionLabel(school string) string {
	if school == "" {
		return registry.AllSchools
	}
	return school
}

// setAttachment sets the download filename. The plain filename parameter gets
// an ASCII fallback keeping the extension; the UTF-8 one carries the real
// Hangul name per RFC 5987.
func setAttachment(w http.ResponseWriter, filename string) {
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="export%s"; filename*=UTF-8''%s`,
			path.Ext(filename), url.PathEscape(filename)))
}
