package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"smartgrid/internal/models"
	"smartgrid/internal/validation"
)

var predictionFields = validation.FieldSet{
	Required: []string{
		"connectionTime_decimal",
		"chargingDuration",
		"kWhDelivered",
		"dayIndicator",
		"avg_power",
		"connection_end_time",
		"predicted_kWh",
	},
	Numeric: []string{
		"connectionTime_decimal",
		"chargingDuration",
		"kWhDelivered",
		"avg_power",
		"connection_end_time",
		"predicted_kWh",
	},
}

// PredictionRepository defines the storage contract used by
// PredictionService.
type PredictionRepository interface {
	GetAll(ctx context.Context) ([]models.Prediction, error)
	GetByID(ctx context.Context, id string) (*models.Prediction, error)
	GetByDayIndicator(ctx context.Context, dayIndicator string) ([]models.Prediction, error)
	GetHighKwh(ctx context.Context, threshold float64) ([]models.Prediction, error)
	GetLowKwh(ctx context.Context, threshold float64) ([]models.Prediction, error)
	GetByPowerRange(ctx context.Context, minPower, maxPower float64) ([]models.Prediction, error)
	GetDayStatistics(ctx context.Context, dayIndicator string) (*models.PredictionStats, error)
	GetPredictionAccuracy(ctx context.Context, dayIndicator string) (*models.PredictionAccuracy, error)
	Insert(ctx context.Context, p *models.Prediction) error
	Replace(ctx context.Context, p *models.Prediction) error
	Delete(ctx context.Context, id string) (bool, error)
}

// PredictionService owns the validation and merge rules for prediction
// records. Same contract as ChargingService, extended to the seven
// business fields.
type PredictionService struct {
	repo   PredictionRepository
	logger *zap.Logger
}

// NewPredictionService builds PredictionService.
func NewPredictionService(repo PredictionRepository, logger *zap.Logger) *PredictionService {
	return &PredictionService{repo: repo, logger: logger}
}

// GetAll returns every prediction.
func (s *PredictionService) GetAll(ctx context.Context) ([]models.Prediction, error) {
	return s.repo.GetAll(ctx)
}

// GetByID returns a prediction or nil when the id is unknown.
func (s *PredictionService) GetByID(ctx context.Context, id string) (*models.Prediction, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByDayIndicator returns predictions for one day label.
func (s *PredictionService) GetByDayIndicator(ctx context.Context, dayIndicator string) ([]models.Prediction, error) {
	return s.repo.GetByDayIndicator(ctx, dayIndicator)
}

// GetHighKwh returns predictions above the predicted-energy threshold.
func (s *PredictionService) GetHighKwh(ctx context.Context, threshold float64) ([]models.Prediction, error) {
	return s.repo.GetHighKwh(ctx, threshold)
}

// GetLowKwh returns predictions below the predicted-energy threshold.
func (s *PredictionService) GetLowKwh(ctx context.Context, threshold float64) ([]models.Prediction, error) {
	return s.repo.GetLowKwh(ctx, threshold)
}

// GetByPowerRange returns predictions with average power in [min, max].
func (s *PredictionService) GetByPowerRange(ctx context.Context, minPower, maxPower float64) ([]models.Prediction, error) {
	return s.repo.GetByPowerRange(ctx, minPower, maxPower)
}

// GetDayStatistics returns the aggregate row for one day label.
func (s *PredictionService) GetDayStatistics(ctx context.Context, dayIndicator string) (*models.PredictionStats, error) {
	return s.repo.GetDayStatistics(ctx, dayIndicator)
}

// GetPredictionAccuracy returns the error aggregate for one day label.
func (s *PredictionService) GetPredictionAccuracy(ctx context.Context, dayIndicator string) (*models.PredictionAccuracy, error) {
	return s.repo.GetPredictionAccuracy(ctx, dayIndicator)
}

// Create validates the input mapping, fills defaults, coerces the
// numeric fields, and persists the new record.
func (s *PredictionService) Create(ctx context.Context, input map[string]any) (*models.Prediction, error) {
	if problems := predictionFields.Validate(input); len(problems) > 0 {
		return nil, &validation.Error{Problems: problems}
	}

	now := time.Now().UTC()
	prediction := &models.Prediction{
		ID:           suppliedID(input),
		DayIndicator: validation.String(input["dayIndicator"]),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if prediction.ID == "" {
		prediction.ID = newRecordID("prediction")
	}
	prediction.ConnectionTimeDecimal, _ = validation.Number(input["connectionTime_decimal"])
	prediction.ChargingDuration, _ = validation.Number(input["chargingDuration"])
	prediction.KWhDelivered, _ = validation.Number(input["kWhDelivered"])
	prediction.AvgPower, _ = validation.Number(input["avg_power"])
	prediction.ConnectionEndTime, _ = validation.Number(input["connection_end_time"])
	prediction.PredictedKWh, _ = validation.Number(input["predicted_kWh"])

	if err := s.repo.Insert(ctx, prediction); err != nil {
		return nil, err
	}

	s.logger.Info("prediction created", zap.String("id", prediction.ID))
	return prediction, nil
}

// Update fetches the existing record, validates any supplied numeric
// fields, applies the patch field by field, re-stamps updatedAt, and
// persists the full replacement. A nil result without error means the id
// is unknown.
func (s *PredictionService) Update(ctx context.Context, id string, patch map[string]any) (*models.Prediction, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	if problems := predictionFields.ValidatePartial(patch); len(problems) > 0 {
		return nil, &validation.Error{Problems: problems}
	}

	numericTargets := map[string]*float64{
		"connectionTime_decimal": &existing.ConnectionTimeDecimal,
		"chargingDuration":       &existing.ChargingDuration,
		"kWhDelivered":           &existing.KWhDelivered,
		"avg_power":              &existing.AvgPower,
		"connection_end_time":    &existing.ConnectionEndTime,
		"predicted_kWh":          &existing.PredictedKWh,
	}
	for field, target := range numericTargets {
		if v, ok := patch[field]; ok && v != nil {
			*target, _ = validation.Number(v)
		}
	}
	if v, ok := patch["dayIndicator"]; ok && v != nil && v != "" {
		existing.DayIndicator = validation.String(v)
	}
	existing.UpdatedAt = time.Now().UTC()

	if err := s.repo.Replace(ctx, existing); err != nil {
		return nil, err
	}

	s.logger.Info("prediction updated", zap.String("id", id))
	return existing, nil
}

// Delete removes a prediction by id; false means there was nothing to
// delete.
func (s *PredictionService) Delete(ctx context.Context, id string) (bool, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		s.logger.Info("prediction deleted", zap.String("id", id))
	}
	return deleted, nil
}
