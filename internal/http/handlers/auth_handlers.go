package handlers

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"smartgrid/internal/models"
	"smartgrid/internal/service"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// AuthService is the business-logic contract the auth handlers depend
// on.
type AuthService interface {
	Register(ctx context.Context, in service.RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, offset, limit int) ([]models.User, error)
	ListActive(ctx context.Context, daysBack int) ([]models.User, error)
	UpdateProfile(ctx context.Context, id string, patch map[string]any) (*models.User, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// AuthHandler serves the /api/auth routes. Every user it returns goes
// through Sanitize first.
type AuthHandler struct {
	svc         AuthService
	logger      *zap.Logger
	development bool
}

// NewAuthHandler builds AuthHandler.
func NewAuthHandler(svc AuthService, logger *zap.Logger, development bool) *AuthHandler {
	return &AuthHandler{svc: svc, logger: logger, development: development}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var body struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Email     string `json:"email"`
		Password  string `json:"password"`
	}
	if err := decodeInto(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if body.FirstName == "" || body.LastName == "" || body.Email == "" || body.Password == "" {
		writeError(w, http.StatusBadRequest, "All fields are required: firstName, lastName, email, and password")
		return
	}
	if !emailPattern.MatchString(body.Email) {
		writeError(w, http.StatusBadRequest, "Please provide a valid email address")
		return
	}
	if len(body.Password) < 6 {
		writeError(w, http.StatusBadRequest, "Password must be at least 6 characters long")
		return
	}

	user, err := h.svc.Register(r.Context(), service.RegisterInput{
		FirstName: body.FirstName,
		LastName:  body.LastName,
		Email:     body.Email,
		Password:  body.Password,
	})
	if err != nil {
		if errors.Is(err, service.ErrEmailInUse) {
			writeError(w, http.StatusBadRequest, "User already exists with this email")
			return
		}
		writeServerError(w, h.logger, h.development, "Server error during registration", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User registered successfully",
		"user":    user.Sanitize(),
	})
}

// Login handles POST /api/auth/login. Both unknown-email and
// wrong-password come back as the same 401 body.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeInto(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if body.Email == "" || body.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := h.svc.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		writeServerError(w, h.logger, h.development, "Server error during login", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "Login successful",
		"user":      user.Sanitize(),
		"loginTime": time.Now().UTC().Format(time.RFC3339),
	})
}

// Get handles GET /api/auth/{id}.
func (h *AuthHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	user, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeServerError(w, h.logger, h.development, "Server error retrieving user", err)
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, user.Sanitize())
}

// List handles GET /api/auth?offset=&limit=.
func (h *AuthHandler) List(w http.ResponseWriter, r *http.Request) {
	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", 50)

	users, err := h.svc.List(r.Context(), offset, limit)
	if err != nil {
		writeServerError(w, h.logger, h.development, "Server error retrieving users", err)
		return
	}
	writeJSON(w, http.StatusOK, sanitizeAll(users))
}

// Active handles GET /api/auth/active?days=N.
func (h *AuthHandler) Active(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", 30)

	users, err := h.svc.ListActive(r.Context(), days)
	if err != nil {
		writeServerError(w, h.logger, h.development, "Server error retrieving users", err)
		return
	}
	writeJSON(w, http.StatusOK, sanitizeAll(users))
}

// Update handles PUT /api/auth/{id}.
func (h *AuthHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	body, err := decodeBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	user, err := h.svc.UpdateProfile(r.Context(), id, body)
	if err != nil {
		writeServerError(w, h.logger, h.development, "Server error during user update", err)
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, user.Sanitize())
}

// Delete handles DELETE /api/auth/{id}.
func (h *AuthHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	deleted, err := h.svc.Delete(r.Context(), id)
	if err != nil {
		writeServerError(w, h.logger, h.development, "Server error during user deletion", err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "User deleted successfully"})
}

func sanitizeAll(users []models.User) []models.PublicUser {
	out := make([]models.PublicUser, 0, len(users))
	for i := range users {
		out = append(out, users[i].Sanitize())
	}
	return out
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
