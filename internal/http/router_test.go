package httpserver_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	httpserver "smartgrid/internal/http"
	"smartgrid/internal/http/handlers"
	"smartgrid/internal/metrics"
	"smartgrid/internal/models"
	"smartgrid/internal/password"
	"smartgrid/internal/service"
)

type memSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]models.ChargingSession
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: make(map[string]models.ChargingSession)}
}

func (m *memSessionRepo) GetAll(ctx context.Context) ([]models.ChargingSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.ChargingSession, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out, nil
}

func (m *memSessionRepo) GetByID(ctx context.Context, id string) (*models.ChargingSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *memSessionRepo) GetByDayIndicator(ctx context.Context, day string) ([]models.ChargingSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.ChargingSession, 0)
	for _, s := range m.sessions {
		if s.DayIndicator == day {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memSessionRepo) GetHighKwh(ctx context.Context, threshold float64) ([]models.ChargingSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.ChargingSession, 0)
	for _, s := range m.sessions {
		if s.KWhDelivered > threshold {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memSessionRepo) GetLowKwh(ctx context.Context, threshold float64) ([]models.ChargingSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.ChargingSession, 0)
	for _, s := range m.sessions {
		if s.KWhDelivered < threshold {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memSessionRepo) GetDayStatistics(ctx context.Context, day string) (*models.SessionStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := &models.SessionStats{}
	for _, s := range m.sessions {
		if s.DayIndicator != day {
			continue
		}
		stats.TotalSessions++
		stats.TotalEnergy += s.KWhDelivered
		stats.AvgDuration += s.ChargingDuration
		if stats.MinEnergy == 0 || s.KWhDelivered < stats.MinEnergy {
			stats.MinEnergy = s.KWhDelivered
		}
		if s.KWhDelivered > stats.MaxEnergy {
			stats.MaxEnergy = s.KWhDelivered
		}
	}
	if stats.TotalSessions > 0 {
		stats.AvgEnergy = stats.TotalEnergy / float64(stats.TotalSessions)
		stats.AvgDuration /= float64(stats.TotalSessions)
	}
	return stats, nil
}

func (m *memSessionRepo) Insert(ctx context.Context, s *models.ChargingSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = *s
	return nil
}

func (m *memSessionRepo) Replace(ctx context.Context, s *models.ChargingSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = *s
	return nil
}

func (m *memSessionRepo) Delete(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return false, nil
	}
	delete(m.sessions, id)
	return true, nil
}

type memPredictionRepo struct {
	mu          sync.Mutex
	predictions map[string]models.Prediction
}

func newMemPredictionRepo() *memPredictionRepo {
	return &memPredictionRepo{predictions: make(map[string]models.Prediction)}
}

func (m *memPredictionRepo) GetAll(ctx context.Context) ([]models.Prediction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Prediction, 0, len(m.predictions))
	for _, p := range m.predictions {
		out = append(out, p)
	}
	return out, nil
}

func (m *memPredictionRepo) GetByID(ctx context.Context, id string) (*models.Prediction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.predictions[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *memPredictionRepo) GetByDayIndicator(ctx context.Context, day string) ([]models.Prediction, error) {
	return []models.Prediction{}, nil
}

func (m *memPredictionRepo) GetHighKwh(ctx context.Context, threshold float64) ([]models.Prediction, error) {
	return []models.Prediction{}, nil
}

func (m *memPredictionRepo) GetLowKwh(ctx context.Context, threshold float64) ([]models.Prediction, error) {
	return []models.Prediction{}, nil
}

func (m *memPredictionRepo) GetByPowerRange(ctx context.Context, minPower, maxPower float64) ([]models.Prediction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Prediction, 0)
	for _, p := range m.predictions {
		if p.AvgPower >= minPower && p.AvgPower <= maxPower {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memPredictionRepo) GetDayStatistics(ctx context.Context, day string) (*models.PredictionStats, error) {
	return &models.PredictionStats{}, nil
}

func (m *memPredictionRepo) GetPredictionAccuracy(ctx context.Context, day string) (*models.PredictionAccuracy, error) {
	return &models.PredictionAccuracy{}, nil
}

func (m *memPredictionRepo) Insert(ctx context.Context, p *models.Prediction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.predictions[p.ID] = *p
	return nil
}

func (m *memPredictionRepo) Replace(ctx context.Context, p *models.Prediction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.predictions[p.ID] = *p
	return nil
}

func (m *memPredictionRepo) Delete(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.predictions[id]; !ok {
		return false, nil
	}
	delete(m.predictions, id)
	return true, nil
}

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]models.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]models.User)}
}

func (m *memUserRepo) Insert(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = *u
	return nil
}

func (m *memUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (m *memUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *memUserRepo) Replace(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = *u
	return nil
}

func (m *memUserRepo) Delete(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return false, nil
	}
	delete(m.users, id)
	return true, nil
}

func (m *memUserRepo) List(ctx context.Context, offset, limit int) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *memUserRepo) ListActiveSince(ctx context.Context, cutoff time.Time) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.User, 0)
	for _, u := range m.users {
		if u.LastLogin != nil && u.LastLogin.After(cutoff) {
			out = append(out, u)
		}
	}
	return out, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	logger := zap.NewNop()
	collector := metrics.NewCollector()

	chargingSvc := service.NewChargingService(newMemSessionRepo(), logger)
	predictionSvc := service.NewPredictionService(newMemPredictionRepo(), logger)
	authSvc := service.NewAuthService(newMemUserRepo(), password.NewBcryptHasher(4), logger)

	return httpserver.NewRouter(httpserver.RouterDeps{
		Charging:    handlers.NewChargingHandler(chargingSvc, logger, false),
		Predictions: handlers.NewPredictionHandler(predictionSvc, logger, false),
		Auth:        handlers.NewAuthHandler(authSvc, logger, false),
		Status:      handlers.NewStatusHandler(nil, "test"),
		Metrics:     collector.Handler(),
		Middleware: []func(next http.Handler) http.Handler{
			httpserver.NewCORSMiddleware("*"),
			httpserver.NewMetricsMiddleware(collector),
		},
	})
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// Full lifecycle: create a session, see it in the day filter and the
// day aggregate, then update and delete it.
func TestSessionLifecycleEndToEnd(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/charging",
		`{"connectionTime_decimal":13.5,"chargingDuration":2,"kWhDelivered":9.6,"dayIndicator":"weekday"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created models.ChargingSession
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.True(t, strings.HasPrefix(created.ID, "session_"))
	assert.Equal(t, 9.6, created.KWhDelivered)

	rec = doJSON(t, router, http.MethodGet, "/api/charging/day/weekday", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []models.ChargingSession
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)

	rec = doJSON(t, router, http.MethodGet, "/api/charging/stats/weekday", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var stats models.SessionStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.TotalSessions)
	assert.Equal(t, 9.6, stats.TotalEnergy)

	rec = doJSON(t, router, http.MethodPut, "/api/charging/"+created.ID, `{"kWhDelivered":11.2}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/api/charging/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/api/charging/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// /day/weekday must route to the day filter, never match the {id}
// wildcard.
func TestLiteralSegmentsWinOverIDWildcard(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/charging/day/weekday", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))

	rec = doJSON(t, router, http.MethodGet, "/api/charging/stats/weekday", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var stats models.SessionStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 0, stats.TotalSessions)

	rec = doJSON(t, router, http.MethodGet, "/api/charging/some-id", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuthFlowEndToEnd(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/auth/register",
		`{"firstName":"Ada","lastName":"Lovelace","email":"ada@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "passwordHash")

	rec = doJSON(t, router, http.MethodPost, "/api/auth/login",
		`{"email":"ada@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Login successful")

	rec = doJSON(t, router, http.MethodPost, "/api/auth/login",
		`{"email":"ada@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/auth", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ada@example.com")

	rec = doJSON(t, router, http.MethodGet, "/api/auth/active?days=30", "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestPredictionPowerRangeRoute(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/predictions",
		`{"connectionTime_decimal":13.5,"chargingDuration":2,"kWhDelivered":9.6,"dayIndicator":"weekday","avg_power":4.8,"connection_end_time":15.5,"predicted_kWh":9.1}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodGet, "/api/predictions/power-range/4/5", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var listed []models.Prediction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	assert.Len(t, listed, 1)
}

func TestStatusRoutesWithoutDatabase(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Smart Grid API is running!")

	rec = doJSON(t, router, http.MethodGet, "/api/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"not configured"`)
}

func TestMetricsEndpointServesCounters(t *testing.T) {
	router := newTestRouter(t)

	doJSON(t, router, http.MethodGet, "/api/charging", "")

	rec := doJSON(t, router, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "smartgrid_http_requests_total")
}

func TestUnknownRouteReturnsJSONNotFound(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/nope", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var payload map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "Route not found", payload["message"])
	assert.Equal(t, "/api/nope", payload["path"])
	assert.Equal(t, http.MethodGet, payload["method"])

	rec = doJSON(t, router, http.MethodPatch, "/api/charging", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "Route not found", payload["message"])
}

func TestCORSHeadersAndPreflight(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/charging", "")
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	req := httptest.NewRequest(http.MethodOptions, "/api/charging", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
