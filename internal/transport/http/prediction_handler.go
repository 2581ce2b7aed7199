package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "crimerisk/internal/errors"
	"crimerisk/internal/middleware"
)

// PredictionHandler serves the JSON prediction API
type PredictionHandler struct {
	service      PredictionServiceInterface
	validator    *middleware.RequestValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// ModelInfo describes the artifact now serving predictions
type ModelInfo struct {
	ArtifactID string    `json:"artifact_id"`
	Target     string    `json:"target"`
	Features   int       `json:"features"`
	MAE        float64   `json:"mae"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewPredictionHandler creates a new prediction handler
func NewPredictionHandler(service PredictionServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *PredictionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PredictionHandler{
		service:      service,
		validator:    middleware.NewRequestValidator(),
		logger:       logger.With(slog.String("component", "prediction_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the prediction routes
func (h *PredictionHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/options", h.GetOptions)
	r.Get("/predict", h.GetPrediction)
	r.Post("/model/reload", h.ReloadModel)
	return r
}

// GetOptions handles GET /api/v1/options
func (h *PredictionHandler) GetOptions(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Options())
}

// GetPrediction handles GET /api/v1/predict?area=&year=
func (h *PredictionHandler) GetPrediction(w http.ResponseWriter, r *http.Request) {
	req, err := h.validator.ParsePredictionRequest(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	prediction, err := h.service.Predict(r.Context(), req.Area, req.Year)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, prediction)
}

// ReloadModel handles POST /api/v1/model/reload
func (h *PredictionHandler) ReloadModel(w http.ResponseWriter, r *http.Request) {
	bundle, err := h.service.Reload(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "model reloaded via API",
		slog.String("artifact_id", bundle.Metadata.ID))

	render.JSON(w, r, ModelInfo{
		ArtifactID: bundle.Metadata.ID,
		Target:     bundle.Metadata.Target,
		Features:   len(bundle.Features),
		MAE:        bundle.Metadata.MAE,
		CreatedAt:  bundle.Metadata.CreatedAt,
	})
}
