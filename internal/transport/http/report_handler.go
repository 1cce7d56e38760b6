package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"sirius/internal/report"
	"sirius/internal/wizard"
)

// ReportHandler serves the report catalog.
type ReportHandler struct {
	reports *report.Registry
	logger  *slog.Logger
}

// NewReportHandler creates a new report catalog handler.
func NewReportHandler(reports *report.Registry, logger *slog.Logger) *ReportHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportHandler{
		reports: reports,
		logger:  logger.With(slog.String("handler", "reports")),
	}
}

// Routes mounts the report catalog endpoints.
func (h *ReportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListReports)
	r.Get("/{name}", h.GetReport)
	return r
}

// ReportDescriptor is the catalog entry for one report type.
type ReportDescriptor struct {
	Name            string          `json:"name"`
	DisplayName     string          `json:"displayName"`
	Description     string          `json:"description"`
	Category        string          `json:"category"`
	Columns         []wizard.Column `json:"columns"`
	PrimaryKeyField string          `json:"primaryKeyField"`
}

func describe(e report.Engine) ReportDescriptor {
	return ReportDescriptor{
		Name:            e.Name(),
		DisplayName:     e.DisplayName(),
		Description:     e.Description(),
		Category:        e.Category(),
		Columns:         e.Columns(),
		PrimaryKeyField: e.PrimaryKeyField(),
	}
}

// ListReports handles GET /api/reports.
func (h *ReportHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	engines := h.reports.List()
	descriptors := make([]ReportDescriptor, 0, len(engines))
	for _, e := range engines {
		descriptors = append(descriptors, describe(e))
	}
	render.JSON(w, r, map[string]any{"reports": descriptors, "count": len(descriptors)})
}

// GetReport handles GET /api/reports/{name}.
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	engine, err := h.reports.Get(chi.URLParam(r, "name"))
	if err != nil {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, map[string]any{"error": err.Error()})
		return
	}
	render.JSON(w, r, describe(engine))
}
