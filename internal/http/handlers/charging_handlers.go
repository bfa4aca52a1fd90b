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

// ChargingService is the business-logic contract the charging handlers
// depend on.
type ChargingService interface {
	GetAll(ctx context.Context) ([]models.ChargingSession, error)
	GetByID(ctx context.Context, id string) (*models.ChargingSession, error)
	GetByDayIndicator(ctx context.Context, dayIndicator string) ([]models.ChargingSession, error)
	GetHighKwh(ctx context.Context, threshold float64) ([]models.ChargingSession, error)
	GetLowKwh(ctx context.Context, threshold float64) ([]models.ChargingSession, error)
	GetDayStatistics(ctx context.Context, dayIndicator string) (*models.SessionStats, error)
	Create(ctx context.Context, input map[string]any) (*models.ChargingSession, error)
	Update(ctx context.Context, id string, patch map[string]any) (*models.ChargingSession, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// ChargingHandler serves the /api/charging routes.
type ChargingHandler struct {
	svc         ChargingService
	logger      *zap.Logger
	development bool
}

// NewChargingHandler builds ChargingHandler.
func NewChargingHandler(svc ChargingService, logger *zap.Logger, development bool) *ChargingHandler {
	return &ChargingHandler{svc: svc, logger: logger, development: development}
}

// List handles GET /api/charging.
func (h *ChargingHandler) List(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.svc.GetAll(r.Context())
	if err != nil {
		writeServerError(w, h.logger, h.development, "Server error retrieving sessions", err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

// ByDay handles GET /api/charging/day/{day}.
func (h *ChargingHandler) ByDay(w http.ResponseWriter, r *http.Request) {
	day := chi.URLParam(r, "day")
	sessions, err := h.svc.GetByDayIndicator(r.Context(), day)
	if err != nil {
		writeServerError(w, h.logger, h.development, "Server error retrieving sessions", err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

// HighKwh handles GET /api/charging/high-kwh/{threshold}.
func (h *ChargingHandler) HighKwh(w http.ResponseWriter, r *http.Request) {
	threshold, err := strconv.ParseFloat(chi.URLParam(r, "threshold"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Threshold must be a valid number")
		return
	}
	sessions, err := h.svc.GetHighKwh(r.Context(), threshold)
	if err != nil {
		writeServerError(w, h.logger, h.development, "Server error retrieving sessions", err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

// LowKwh handles GET /api/charging/low-kwh/{threshold}.
func (h *ChargingHandler) LowKwh(w http.ResponseWriter, r *http.Request) {
	threshold, err := strconv.ParseFloat(chi.URLParam(r, "threshold"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Threshold must be a valid number")
		return
	}
	sessions, err := h.svc.GetLowKwh(r.Context(), threshold)
	if err != nil {
		writeServerError(w, h.logger, h.development, "Server error retrieving sessions", err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

// DayStats handles GET /api/charging/stats/{day}.
func (h *ChargingHandler) DayStats(w http.ResponseWriter, r *http.Request) {
	day := chi.URLParam(r, "day")
	stats, err := h.svc.GetDayStatistics(r.Context(), day)
	if err != nil {
		writeServerError(w, h.logger, h.development, "Server error retrieving statistics", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Get handles GET /api/charging/{id}.
func (h *ChargingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	session, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeServerError(w, h.logger, h.development, "Server error retrieving session", err)
		return
	}
	if session == nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// Create handles POST /api/charging.
func (h *ChargingHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	session, err := h.svc.Create(r.Context(), body)
	if err != nil {
		var verr *validation.Error
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, verr.Error())
			return
		}
		writeServerError(w, h.logger, h.development, "Server error during session creation", err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

// Update handles PUT /api/charging/{id}.
func (h *ChargingHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	body, err := decodeBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	session, err := h.svc.Update(r.Context(), id, body)
	if err != nil {
		var verr *validation.Error
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, verr.Error())
			return
		}
		writeServerError(w, h.logger, h.development, "Server error during session update", err)
		return
	}
	if session == nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// Delete handles DELETE /api/charging/{id}.
func (h *ChargingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	deleted, err := h.svc.Delete(r.Context(), id)
	if err != nil {
		writeServerError(w, h.logger, h.development, "Server error during session deletion", err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Session deleted successfully"})
}
