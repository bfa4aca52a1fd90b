package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"smartgrid/internal/models"
	"smartgrid/internal/validation"
)

var sessionFields = validation.FieldSet{
	Required: []string{"connectionTime_decimal", "chargingDuration", "kWhDelivered", "dayIndicator"},
	Numeric:  []string{"connectionTime_decimal", "chargingDuration", "kWhDelivered"},
}

// SessionRepository defines the storage contract used by ChargingService.
type SessionRepository interface {
	GetAll(ctx context.Context) ([]models.ChargingSession, error)
	GetByID(ctx context.Context, id string) (*models.ChargingSession, error)
	GetByDayIndicator(ctx context.Context, dayIndicator string) ([]models.ChargingSession, error)
	GetHighKwh(ctx context.Context, threshold float64) ([]models.ChargingSession, error)
	GetLowKwh(ctx context.Context, threshold float64) ([]models.ChargingSession, error)
	GetDayStatistics(ctx context.Context, dayIndicator string) (*models.SessionStats, error)
	Insert(ctx context.Context, s *models.ChargingSession) error
	Replace(ctx context.Context, s *models.ChargingSession) error
	Delete(ctx context.Context, id string) (bool, error)
}

// ChargingService owns the validation and merge rules for charging
// session records.
type ChargingService struct {
	repo   SessionRepository
	logger *zap.Logger
}

// NewChargingService builds ChargingService.
func NewChargingService(repo SessionRepository, logger *zap.Logger) *ChargingService {
	return &ChargingService{repo: repo, logger: logger}
}

// GetAll returns every session.
func (s *ChargingService) GetAll(ctx context.Context) ([]models.ChargingSession, error) {
	return s.repo.GetAll(ctx)
}

// GetByID returns a session or nil when the id is unknown.
func (s *ChargingService) GetByID(ctx context.Context, id string) (*models.ChargingSession, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByDayIndicator returns sessions for one day label.
func (s *ChargingService) GetByDayIndicator(ctx context.Context, dayIndicator string) ([]models.ChargingSession, error) {
	return s.repo.GetByDayIndicator(ctx, dayIndicator)
}

// GetHighKwh returns sessions above the energy threshold.
func (s *ChargingService) GetHighKwh(ctx context.Context, threshold float64) ([]models.ChargingSession, error) {
	return s.repo.GetHighKwh(ctx, threshold)
}

// GetLowKwh returns sessions below the energy threshold.
func (s *ChargingService) GetLowKwh(ctx context.Context, threshold float64) ([]models.ChargingSession, error) {
	return s.repo.GetLowKwh(ctx, threshold)
}

// GetDayStatistics returns the aggregate row for one day label.
func (s *ChargingService) GetDayStatistics(ctx context.Context, dayIndicator string) (*models.SessionStats, error) {
	return s.repo.GetDayStatistics(ctx, dayIndicator)
}

// Create validates the input mapping, fills defaults, coerces the
// numeric fields, and persists the new record.
func (s *ChargingService) Create(ctx context.Context, input map[string]any) (*models.ChargingSession, error) {
	if problems := sessionFields.Validate(input); len(problems) > 0 {
		return nil, &validation.Error{Problems: problems}
	}

	now := time.Now().UTC()
	session := &models.ChargingSession{
		ID:           suppliedID(input),
		DayIndicator: validation.String(input["dayIndicator"]),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if session.ID == "" {
		session.ID = newRecordID("session")
	}
	session.ConnectionTimeDecimal, _ = validation.Number(input["connectionTime_decimal"])
	session.ChargingDuration, _ = validation.Number(input["chargingDuration"])
	session.KWhDelivered, _ = validation.Number(input["kWhDelivered"])

	if err := s.repo.Insert(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("charging session created", zap.String("id", session.ID))
	return session, nil
}

// Update fetches the existing record, validates any supplied numeric
// fields, applies the patch field by field, re-stamps updatedAt, and
// persists the full replacement. A nil result without error means the id
// is unknown. Fields outside the schema are ignored.
func (s *ChargingService) Update(ctx context.Context, id string, patch map[string]any) (*models.ChargingSession, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	if problems := sessionFields.ValidatePartial(patch); len(problems) > 0 {
		return nil, &validation.Error{Problems: problems}
	}

	if v, ok := patch["connectionTime_decimal"]; ok && v != nil {
		existing.ConnectionTimeDecimal, _ = validation.Number(v)
	}
	if v, ok := patch["chargingDuration"]; ok && v != nil {
		existing.ChargingDuration, _ = validation.Number(v)
	}
	if v, ok := patch["kWhDelivered"]; ok && v != nil {
		existing.KWhDelivered, _ = validation.Number(v)
	}
	if v, ok := patch["dayIndicator"]; ok && v != nil && v != "" {
		existing.DayIndicator = validation.String(v)
	}
	existing.UpdatedAt = time.Now().UTC()

	if err := s.repo.Replace(ctx, existing); err != nil {
		return nil, err
	}

	s.logger.Info("charging session updated", zap.String("id", id))
	return existing, nil
}

// Delete removes a session by id; false means there was nothing to
// delete.
func (s *ChargingService) Delete(ctx context.Context, id string) (bool, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		s.logger.Info("charging session deleted", zap.String("id", id))
	}
	return deleted, nil
}
