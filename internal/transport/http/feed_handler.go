package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "sirius/internal/errors"
	"sirius/internal/feed"
	"sirius/internal/wizard"
)

// FeedServiceInterface is the feed service surface the handler depends on.
type FeedServiceInterface interface {
	Engines() []feed.Engine
	Generate(ctx context.Context, feedType string, data feed.Data) (feed.Result, error)
}

// FeedHandler serves feed launch arguments and on-demand generation.
type FeedHandler struct {
	service FeedServiceInterface
	logger  *slog.Logger
}

// NewFeedHandler creates a new feed handler.
func NewFeedHandler(service FeedServiceInterface, logger *slog.Logger) *FeedHandler {
	if service == nil {
		panic("service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FeedHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "feeds")),
	}
}

// Routes mounts the feed endpoints.
func (h *FeedHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListFeeds)
	r.Post("/{type}/generate", h.Generate)
	return r
}

// FeedDescriptor is the catalog entry for one feed type.
type FeedDescriptor struct {
	Name            string          `json:"name"`
	LaunchArguments []feed.Argument `json:"launchArguments"`
}

// ListFeeds handles GET /api/feeds.
func (h *FeedHandler) ListFeeds(w http.ResponseWriter, r *http.Request) {
	engines := h.service.Engines()
	descriptors := make([]FeedDescriptor, 0, len(engines))
	for _, e := range engines {
		descriptors = append(descriptors, FeedDescriptor{
			Name:            e.Name(),
			LaunchArguments: e.LaunchArguments(),
		})
	}
	render.JSON(w, r, map[string]any{"feeds": descriptors, "count": len(descriptors)})
}

// GenerateFeedRequest carries launch arguments and stored state for one feed
// generation.
type GenerateFeedRequest struct {
	Args         map[string]any `json:"args,omitempty"`
	Period       *wizard.Period `json:"period,omitempty"`
	OutputFormat string         `json:"outputFormat,omitempty" validate:"omitempty,oneof=csv xlsx"`
}

// Bind implements the render.Binder interface.
func (r *GenerateFeedRequest) Bind(req *http.Request) error {
	return validate.Struct(r)
}

// Generate handles POST /api/feeds/{type}/generate.
func (h *FeedHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateFeedRequest
	if err := render.Bind(r, &req); err != nil {
		render.Render(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	result, err := h.service.Generate(r.Context(), chi.URLParam(r, "type"), feed.Data{
		Args:         req.Args,
		Period:       req.Period,
		OutputFormat: req.OutputFormat,
	})
	if err != nil {
		h.logger.Error("feed generation failed",
			slog.String("feed_type", chi.URLParam(r, "type")),
			slog.String("error", err.Error()))
		render.Render(w, r, apierrors.InternalError(err))
		return
	}
	render.JSON(w, r, result)
}
