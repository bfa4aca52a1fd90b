package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"smartgrid/internal/http/handlers"
	"smartgrid/internal/models"
	"smartgrid/internal/validation"
)

type fakeChargingService struct {
	sessions map[string]models.ChargingSession
	err      error
}

func newFakeChargingService() *fakeChargingService {
	return &fakeChargingService{sessions: make(map[string]models.ChargingSession)}
}

func (f *fakeChargingService) GetAll(ctx context.Context) ([]models.ChargingSession, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.ChargingSession, 0, len(f.sessions))
	for _, s := range f.sessions {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeChargingService) GetByID(ctx context.Context, id string) (*models.ChargingSession, error) {
	if f.err != nil {
		return nil, f.err
	}
	s, ok := f.sessions[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (f *fakeChargingService) GetByDayIndicator(ctx context.Context, day string) ([]models.ChargingSession, error) {
	out := make([]models.ChargingSession, 0)
	for _, s := range f.sessions {
		if s.DayIndicator == day {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeChargingService) GetHighKwh(ctx context.Context, threshold float64) ([]models.ChargingSession, error) {
	return []models.ChargingSession{}, nil
}

func (f *fakeChargingService) GetLowKwh(ctx context.Context, threshold float64) ([]models.ChargingSession, error) {
	return []models.ChargingSession{}, nil
}

func (f *fakeChargingService) GetDayStatistics(ctx context.Context, day string) (*models.SessionStats, error) {
	return &models.SessionStats{}, nil
}

func (f *fakeChargingService) Create(ctx context.Context, input map[string]any) (*models.ChargingSession, error) {
	if problems := sessionFieldsForTest.Validate(input); len(problems) > 0 {
		return nil, &validation.Error{Problems: problems}
	}
	s := models.ChargingSession{ID: "session_1", DayIndicator: validation.String(input["dayIndicator"])}
	f.sessions[s.ID] = s
	return &s, nil
}

func (f *fakeChargingService) Update(ctx context.Context, id string, patch map[string]any) (*models.ChargingSession, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (f *fakeChargingService) Delete(ctx context.Context, id string) (bool, error) {
	if _, ok := f.sessions[id]; !ok {
		return false, nil
	}
	delete(f.sessions, id)
	return true, nil
}

var sessionFieldsForTest = validation.FieldSet{
	Required: []string{"connectionTime_decimal", "chargingDuration", "kWhDelivered", "dayIndicator"},
	Numeric:  []string{"connectionTime_decimal", "chargingDuration", "kWhDelivered"},
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func decodeMessage(t *testing.T, body string) string {
	t.Helper()
	var payload map[string]string
	require.NoError(t, json.Unmarshal([]byte(body), &payload))
	return payload["message"]
}

func TestChargingListEmptyIsJSONArray(t *testing.T) {
	h := handlers.NewChargingHandler(newFakeChargingService(), zap.NewNop(), false)

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/charging", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestChargingCreateReturns201(t *testing.T) {
	h := handlers.NewChargingHandler(newFakeChargingService(), zap.NewNop(), false)

	body := `{"connectionTime_decimal":13.5,"chargingDuration":2,"kWhDelivered":9.6,"dayIndicator":"weekday"}`
	rec := httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/api/charging", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.ChargingSession
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
}

func TestChargingCreateValidationFailureIs400(t *testing.T) {
	h := handlers.NewChargingHandler(newFakeChargingService(), zap.NewNop(), false)

	rec := httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/api/charging", strings.NewReader(`{}`)))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeMessage(t, rec.Body.String()), "Missing required field: connectionTime_decimal")
}

func TestChargingCreateMalformedJSONIs400(t *testing.T) {
	h := handlers.NewChargingHandler(newFakeChargingService(), zap.NewNop(), false)

	rec := httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/api/charging", strings.NewReader(`{nope`)))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid JSON body", decodeMessage(t, rec.Body.String()))
}

func TestChargingGetUnknownIDIs404(t *testing.T) {
	h := handlers.NewChargingHandler(newFakeChargingService(), zap.NewNop(), false)

	rec := httptest.NewRecorder()
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/charging/session_missing", nil), "id", "session_missing")
	h.Get(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Session not found", decodeMessage(t, rec.Body.String()))
}

func TestChargingHighKwhBadThresholdIs400(t *testing.T) {
	h := handlers.NewChargingHandler(newFakeChargingService(), zap.NewNop(), false)

	rec := httptest.NewRecorder()
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/charging/high-kwh/abc", nil), "threshold", "abc")
	h.HighKwh(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChargingStoreFailureIs500(t *testing.T) {
	svc := newFakeChargingService()
	svc.err = errors.New("connection refused")
	h := handlers.NewChargingHandler(svc, zap.NewNop(), false)

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/charging", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Server error retrieving sessions", decodeMessage(t, rec.Body.String()))
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestChargingStoreFailureExposesErrorInDevelopment(t *testing.T) {
	svc := newFakeChargingService()
	svc.err = errors.New("connection refused")
	h := handlers.NewChargingHandler(svc, zap.NewNop(), true)

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/charging", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}

func TestChargingDeleteTwice(t *testing.T) {
	svc := newFakeChargingService()
	svc.sessions["session_1"] = models.ChargingSession{ID: "session_1"}
	h := handlers.NewChargingHandler(svc, zap.NewNop(), false)

	rec := httptest.NewRecorder()
	req := withURLParam(httptest.NewRequest(http.MethodDelete, "/api/charging/session_1", nil), "id", "session_1")
	h.Delete(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Session deleted successfully", decodeMessage(t, rec.Body.String()))

	rec = httptest.NewRecorder()
	req = withURLParam(httptest.NewRequest(http.MethodDelete, "/api/charging/session_1", nil), "id", "session_1")
	h.Delete(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
