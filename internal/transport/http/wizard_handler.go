// Package http provides the REST transport for the wizard engine.
package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "sirius/internal/errors"
	"sirius/internal/wizard"
)

var validate = validator.New()

// WizardServiceInterface is the service surface the handler depends on.
type WizardServiceInterface interface {
	Create(ctx context.Context, wizardType, entityID string, cfg *wizard.Config, retention wizard.Retention) (*wizard.Wizard, error)
	Get(ctx context.Context, id string) (*wizard.Wizard, error)
	List(ctx context.Context) ([]*wizard.Wizard, error)
	Delete(ctx context.Context, id string) error
	Next(ctx context.Context, id string, preview bool) (*wizard.Wizard, error)
	Previous(ctx context.Context, id string) (*wizard.Wizard, error)
	StepComplete(ctx context.Context, w *wizard.Wizard) bool
	PatchData(ctx context.Context, id string, mutate func(*wizard.WizardData)) (*wizard.Wizard, error)
	TriggerRun(ctx context.Context, id string) error
	Result(ctx context.Context, id string) ([]map[string]any, *wizard.ReportMeta, error)
	AttachFile(ctx context.Context, id string, f wizard.FileRef) (*wizard.Wizard, error)
	Registry() *wizard.Registry
}

// WizardHandler handles wizard-related HTTP requests.
type WizardHandler struct {
	service WizardServiceInterface
	logger  *slog.Logger
}

// NewWizardHandler creates a new wizard handler.
func NewWizardHandler(service WizardServiceInterface, logger *slog.Logger) *WizardHandler {
	if service == nil {
		panic("service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WizardHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "wizards")),
	}
}

// Routes mounts the wizard endpoints.
func (h *WizardHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.CreateWizard)
	r.Get("/", h.ListWizards)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.GetWizard)
		r.Delete("/", h.DeleteWizard)
		r.Post("/next", h.Next)
		r.Post("/previous", h.Previous)
		r.Patch("/data", h.PatchData)
		r.Post("/files", h.AttachFile)
		r.Post("/run", h.TriggerRun)
		r.Get("/result", h.GetResult)
	})
	return r
}

// CreateWizardRequest is the request body for wizard creation.
type CreateWizardRequest struct {
	Type      string         `json:"type" validate:"required"`
	EntityID  string         `json:"entityId,omitempty"`
	Config    *wizard.Config `json:"config,omitempty"`
	Retention string         `json:"retention,omitempty" validate:"omitempty,oneof=1day 7days 30days 1year always"`
}

// Bind implements the render.Binder interface.
func (r *CreateWizardRequest) Bind(req *http.Request) error {
	return validate.Struct(r)
}

// WizardResponse is the wire shape of a wizard record, enriched with the
// derived navigation and polling hints the UI needs.
type WizardResponse struct {
	*wizard.Wizard
	StepComplete bool   `json:"stepComplete"`
	ShouldPoll   bool   `json:"shouldPoll"`
	Component    string `json:"component,omitempty"`
	IsFirstStep  bool   `json:"isFirstStep"`
	IsLastStep   bool   `json:"isLastStep"`
}

func (h *WizardHandler) wizardResponse(ctx context.Context, w *wizard.Wizard) *WizardResponse {
	registry := h.service.Registry()
	steps := registry.Steps(w.Type)
	resp := &WizardResponse{
		Wizard:       w,
		StepComplete: h.service.StepComplete(ctx, w),
		ShouldPoll:   w.ShouldPoll(),
		Component:    registry.GetStepComponent(w.Type, w.CurrentStep),
	}
	if len(steps) > 0 {
		resp.IsFirstStep = steps[0].ID == w.CurrentStep
		resp.IsLastStep = steps[len(steps)-1].ID == w.CurrentStep
	}
	return resp
}

// CreateWizard handles POST /api/wizards.
func (h *WizardHandler) CreateWizard(w http.ResponseWriter, r *http.Request) {
	var req CreateWizardRequest
	if err := render.Bind(r, &req); err != nil {
		render.Render(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	created, err := h.service.Create(r.Context(), req.Type, req.EntityID, req.Config, wizard.Retention(req.Retention))
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, h.wizardResponse(r.Context(), created))
}

// ListWizards handles GET /api/wizards.
func (h *WizardHandler) ListWizards(w http.ResponseWriter, r *http.Request) {
	wizards, err := h.service.List(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]any{"wizards": wizards, "count": len(wizards)})
}

// GetWizard handles GET /api/wizards/{id}.
func (h *WizardHandler) GetWizard(w http.ResponseWriter, r *http.Request) {
	found, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	render.JSON(w, r, h.wizardResponse(r.Context(), found))
}

// DeleteWizard handles DELETE /api/wizards/{id}.
func (h *WizardHandler) DeleteWizard(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.renderError(w, r, err)
		return
	}
	render.NoContent(w, r)
}

// Next handles POST /api/wizards/{id}/next. The preview query flag bypasses
// the completion gate without touching progress markers.
func (h *WizardHandler) Next(w http.ResponseWriter, r *http.Request) {
	preview := r.URL.Query().Get("preview") == "true"
	updated, err := h.service.Next(r.Context(), chi.URLParam(r, "id"), preview)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	render.JSON(w, r, h.wizardResponse(r.Context(), updated))
}

// Previous handles POST /api/wizards/{id}/previous.
func (h *WizardHandler) Previous(w http.ResponseWriter, r *http.Request) {
	updated, err := h.service.Previous(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	render.JSON(w, r, h.wizardResponse(r.Context(), updated))
}

// PatchDataRequest is the merge-patch body for wizard data updates. Only
// fields present in the request are applied.
type PatchDataRequest struct {
	Config            *wizard.Config             `json:"config,omitempty"`
	Mode              *string                    `json:"mode,omitempty"`
	ColumnMappings    map[string]string          `json:"columnMappings,omitempty"`
	ValidationResults *wizard.ValidationResults  `json:"validationResults,omitempty"`
	Period            *wizard.Period             `json:"period,omitempty"`
	OutputFormat      *string                    `json:"outputFormat,omitempty"`
	Retention         *string                    `json:"retention,omitempty" validate:"omitempty,oneof=1day 7days 30days 1year always"`
}

// Bind implements the render.Binder interface.
func (r *PatchDataRequest) Bind(req *http.Request) error {
	return validate.Struct(r)
}

// PatchData handles PATCH /api/wizards/{id}/data with field-level merge
// semantics: absent fields are left untouched.
func (h *WizardHandler) PatchData(w http.ResponseWriter, r *http.Request) {
	var req PatchDataRequest
	if err := render.Bind(r, &req); err != nil {
		render.Render(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	updated, err := h.service.PatchData(r.Context(), chi.URLParam(r, "id"), func(d *wizard.WizardData) {
		if req.Config != nil {
			d.Config = req.Config
		}
		if req.Mode != nil {
			d.Mode = *req.Mode
		}
		if req.ColumnMappings != nil {
			d.ColumnMappings = req.ColumnMappings
		}
		if req.ValidationResults != nil {
			d.ValidationResults = req.ValidationResults
		}
		if req.Period != nil {
			d.Period = req.Period
		}
		if req.OutputFormat != nil {
			d.OutputFormat = *req.OutputFormat
		}
		if req.Retention != nil {
			d.Retention = wizard.Retention(*req.Retention)
		}
	})
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	render.JSON(w, r, h.wizardResponse(r.Context(), updated))
}

// AttachFileRequest records an uploaded file against the wizard. The file
// content itself lives in object storage; only the reference is kept here.
type AttachFileRequest struct {
	Name     string `json:"name" validate:"required"`
	Size     int64  `json:"size"`
	RowCount int    `json:"rowCount"`
}

// Bind implements the render.Binder interface.
func (r *AttachFileRequest) Bind(req *http.Request) error {
	return validate.Struct(r)
}

// AttachFile handles POST /api/wizards/{id}/files.
func (h *WizardHandler) AttachFile(w http.ResponseWriter, r *http.Request) {
	var req AttachFileRequest
	if err := render.Bind(r, &req); err != nil {
		render.Render(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	updated, err := h.service.AttachFile(r.Context(), chi.URLParam(r, "id"), wizard.FileRef{
		Name:     req.Name,
		Size:     req.Size,
		RowCount: req.RowCount,
	})
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, h.wizardResponse(r.Context(), updated))
}

// TriggerRun handles POST /api/wizards/{id}/run. The run is fire-and-forget:
// the response is 202 and the outcome is observed by polling the wizard.
func (h *WizardHandler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.TriggerRun(r.Context(), id); err != nil {
		h.renderError(w, r, err)
		return
	}
	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, map[string]any{"wizardId": id, "status": "accepted"})
}

// GetResult handles GET /api/wizards/{id}/result.
func (h *WizardHandler) GetResult(w http.ResponseWriter, r *http.Request) {
	rows, meta, err := h.service.Result(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]any{"meta": meta, "records": rows})
}

func (h *WizardHandler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	var wErr *wizard.WizardError
	if errors.As(err, &wErr) {
		switch wErr.Type {
		case wizard.ErrorTypeNotFound:
			render.Render(w, r, apierrors.NewWithDetails(http.StatusNotFound, "WIZARD_NOT_FOUND", wErr.Message, nil))
			return
		case wizard.ErrorTypeInvalidState:
			render.Render(w, r, apierrors.NewWithDetails(http.StatusConflict, "INVALID_STATE", wErr.Message, nil))
			return
		case wizard.ErrorTypeValidation:
			render.Render(w, r, apierrors.NewWithDetails(http.StatusBadRequest, "VALIDATION_FAILED", wErr.Message, nil))
			return
		}
	}
	h.logger.Error("request failed",
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()))
	render.Render(w, r, apierrors.InternalError(err))
}
