package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"smartgrid/internal/models"
	"smartgrid/internal/validation"
)

// PredictionService is the business-logic contract the prediction
// handlers depend on.
type PredictionService interface {
	GetAll(ctx context.Context) ([]models.Prediction, error)
	GetByID(ctx context.Context, id string) (*models.Prediction, error)
	GetByDayIndicator(ctx context.Context, dayIndicator string) ([]models.Prediction, error)
	GetHighKwh(ctx context.Context, threshold float64) ([]models.Prediction, error)
	GetLowKwh(ctx context.Context, threshold float64) ([]models.Prediction, error)
	GetByPowerRange(ctx context.Context, minPower, maxPower float64) ([]models.Prediction, error)
	GetDayStatistics(ctx context.Context, dayIndicator string) (*models.PredictionStats, error)
	GetPredictionAccuracy(ctx context.Context, dayIndicator string) (*models.PredictionAccuracy, error)
	Create(ctx context.Context, input map[string]any) (*models.Prediction, error)
	Update(ctx context.Context, id string, patch map[string]any) (*models.Prediction, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// PredictionHandler serves the /api/predictions routes.
type PredictionHandler struct {
	svc         PredictionService
	logger      *zap.Logger
	development bool
}

// NewPredictionHandler builds PredictionHandler.
func NewPredictionHandler(svc PredictionService, logger *zap.Logger, development bool) *PredictionHandler {
	return &PredictionHandler{svc: svc, logger: logger, development: development}
}

// List handles GET /api/predictions.
func (h *PredictionHandler) List(w http.ResponseWriter, r *http.Request) {
	predictions, err := h.svc.GetAll(r.Context())
	if err != nil {
		writeServerError(w, h.logger, h.development, "Server error retrieving predictions", err)
		return
	}
	writeJSON(w, http.StatusOK, predictions)
}

// ByDay handles GET /api/predictions/day/{day}.
func (h *PredictionHandler) ByDay(w http.ResponseWriter, r *http.Request) {
	day := chi.URLParam(r, "day")
	predictions, err := h.svc.GetByDayIndicator(r.Context(), day)
	if err != nil {
		writeServerError(w, h.logger, h.development, "Server error retrieving predictions", err)
		return
	}
	writeJSON(w, http.StatusOK, predictions)
}

// HighKwh handles GET /api/predictions/high-kwh/{threshold}.
func (h *PredictionHandler) HighKwh(w http.ResponseWriter, r *http.Request) {
	threshold, err := strconv.ParseFloat(chi.URLParam(r, "threshold"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Threshold must be a valid number")
		return
	}
	predictions, err := h.svc.GetHighKwh(r.Context(), threshold)
	if err != nil {
		writeServerError(w, h.logger, h.development, "Server error retrieving predictions", err)
		return
	}
	writeJSON(w, http.StatusOK, predictions)
}

// LowKwh handles GET /api/predictions/low-kwh/{threshold}.
func (h *PredictionHandler) LowKwh(w http.ResponseWriter, r *http.Request) {
	threshold, err := strconv.ParseFloat(chi.URLParam(r, "threshold"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Threshold must be a valid number")
		return
	}
	predictions, err := h.svc.GetLowKwh(r.Context(), threshold)
	if err != nil {
		writeServerError(w, h.logger, h.development, "Server error retrieving predictions", err)
		return
	}
	writeJSON(w, http.StatusOK, predictions)
}

// PowerRange handles GET /api/predictions/power-range/{min}/{max}. The
// bounds are inclusive on average power.
func (h *PredictionHandler) PowerRange(w http.ResponseWriter, r *http.Request) {
	minPower, errMin := strconv.ParseFloat(chi.URLParam(r, "min"), 64)
	maxPower, errMax := strconv.ParseFloat(chi.URLParam(r, "max"), 64)
	if errMin != nil || errMax != nil {
		writeError(w, http.StatusBadRequest, "Power range bounds must be valid numbers")
		return
	}
	predictions, err := h.svc.GetByPowerRange(r.Context(), minPower, maxPower)
	if err != nil {
		writeServerError(w, h.logger, h.development, "Server error retrieving predictions", err)
		return
	}
	writeJSON(w, http.StatusOK, predictions)
}

// DayStats handles GET /api/predictions/stats/{day}.
func (h *PredictionHandler) DayStats(w http.ResponseWriter, r *http.Request) {
	day := chi.URLParam(r, "day")
	stats, err := h.svc.GetDayStatistics(r.Context(), day)
	if err != nil {
		writeServerError(w, h.logger, h.development, "Server error retrieving statistics", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Accuracy handles GET /api/predictions/accuracy/{day}.
func (h *PredictionHandler) Accuracy(w http.ResponseWriter, r *http.Request) {
	day := chi.URLParam(r, "day")
	accuracy, err := h.svc.GetPredictionAccuracy(r.Context(), day)
	if err != nil {
		writeServerError(w, h.logger, h.development, "Server error retrieving accuracy", err)
		return
	}
	writeJSON(w, http.StatusOK, accuracy)
}

// Get handles GET /api/predictions/{id}.
func (h *PredictionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	prediction, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeServerError(w, h.logger, h.development, "Server error retrieving prediction", err)
		return
	}
	if prediction == nil {
		writeError(w, http.StatusNotFound, "Prediction not found")
		return
	}
	writeJSON(w, http.StatusOK, prediction)
}

// Create handles POST /api/predictions.
func (h *PredictionHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	prediction, err := h.svc.Create(r.Context(), body)
	if err != nil {
		var verr *validation.Error
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, verr.Error())
			return
		}
		writeServerError(w, h.logger, h.development, "Server error during prediction creation", err)
		return
	}
	writeJSON(w, http.StatusCreated, prediction)
}

// Update handles PUT /api/predictions/{id}.
func (h *PredictionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	body, err := decodeBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	prediction, err := h.svc.Update(r.Context(), id, body)
	if err != nil {
		var verr *validation.Error
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, verr.Error())
			return
		}
		writeServerError(w, h.logger, h.development, "Server error during prediction update", err)
		return
	}
	if prediction == nil {
		writeError(w, http.StatusNotFound, "Prediction not found")
		return
	}
	writeJSON(w, http.StatusOK, prediction)
}

// Delete handles DELETE /api/predictions/{id}.
func (h *PredictionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	deleted, err := h.svc.Delete(r.Context(), id)
	if err != nil {
		writeServerError(w, h.logger, h.development, "Server error during prediction deletion", err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "Prediction not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Prediction deleted successfully"})
}
