package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"smartgrid/internal/models"
)

// PredictionRepository handles persistence of prediction records.
type PredictionRepository struct {
	db *sql.DB
}

// NewPredictionRepository returns repository.
func NewPredictionRepository(db *sql.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

const predictionColumns = `id, connection_time_decimal, charging_duration, kwh_delivered, day_indicator, avg_power, connection_end_time, predicted_kwh, created_at, updated_at`

// GetAll returns every prediction in storage order.
func (r *PredictionRepository) GetAll(ctx context.Context) ([]models.Prediction, error) {
	if r.db == nil {
		return nil, fmt.Errorf("failed to retrieve predictions: %w", ErrNotConfigured)
	}
	query := `SELECT ` + predictionColumns + ` FROM predictions`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve predictions: %w", err)
	}
	return scanPredictions(rows)
}

// GetByID returns a single prediction, or nil without error when the id
// is unknown.
func (r *PredictionRepository) GetByID(ctx context.Context, id string) (*models.Prediction, error) {
	if r.db == nil {
		return nil, fmt.Errorf("failed to retrieve prediction: %w", ErrNotConfigured)
	}
	query := `SELECT ` + predictionColumns + ` FROM predictions WHERE id = $1`
	var p models.Prediction
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID,
		&p.ConnectionTimeDecimal,
		&p.ChargingDuration,
		&p.KWhDelivered,
		&p.DayIndicator,
		&p.AvgPower,
		&p.ConnectionEndTime,
		&p.PredictedKWh,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve prediction: %w", err)
	}
	return &p, nil
}

// GetByDayIndicator returns predictions matching the day label exactly.
func (r *PredictionRepository) GetByDayIndicator(ctx context.Context, dayIndicator string) ([]models.Prediction, error) {
	if r.db == nil {
		return nil, fmt.Errorf("failed to retrieve predictions for day %s: %w", dayIndicator, ErrNotConfigured)
	}
	query := `SELECT ` + predictionColumns + ` FROM predictions WHERE day_indicator = $1`
	rows, err := r.db.QueryContext(ctx, query, dayIndicator)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve predictions for day %s: %w", dayIndicator, err)
	}
	return scanPredictions(rows)
}

// GetHighKwh returns predictions whose predicted energy exceeds the
// threshold, highest first.
func (r *PredictionRepository) GetHighKwh(ctx context.Context, threshold float64) ([]models.Prediction, error) {
	if r.db == nil {
		return nil, fmt.Errorf("failed to retrieve high kWh predictions: %w", ErrNotConfigured)
	}
	query := `SELECT ` + predictionColumns + ` FROM predictions WHERE predicted_kwh > $1 ORDER BY predicted_kwh DESC`
	rows, err := r.db.QueryContext(ctx, query, threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve high kWh predictions: %w", err)
	}
	return scanPredictions(rows)
}

// GetLowKwh returns predictions whose predicted energy is below the
// threshold, lowest first.
func (r *PredictionRepository) GetLowKwh(ctx context.Context, threshold float64) ([]models.Prediction, error) {
	if r.db == nil {
		return nil, fmt.Errorf("failed to retrieve low kWh predictions: %w", ErrNotConfigured)
	}
	query := `SELECT ` + predictionColumns + ` FROM predictions WHERE predicted_kwh < $1 ORDER BY predicted_kwh ASC`
	rows, err := r.db.QueryContext(ctx, query, threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve low kWh predictions: %w", err)
	}
	return scanPredictions(rows)
}

// GetByPowerRange returns predictions with average power inside the
// inclusive [min, max] range.
func (r *PredictionRepository) GetByPowerRange(ctx context.Context, minPower, maxPower float64) ([]models.Prediction, error) {
	if r.db == nil {
		return nil, fmt.Errorf("failed to retrieve predictions by power range: %w", ErrNotConfigured)
	}
	query := `SELECT ` + predictionColumns + ` FROM predictions WHERE avg_power >= $1 AND avg_power <= $2`
	rows, err := r.db.QueryContext(ctx, query, minPower, maxPower)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve predictions by power range: %w", err)
	}
	return scanPredictions(rows)
}

// GetDayStatistics aggregates predicted energy and power for one day
// label. A day with no predictions yields the all-zero row.
func (r *PredictionRepository) GetDayStatistics(ctx context.Context, dayIndicator string) (*models.PredictionStats, error) {
	if r.db == nil {
		return nil, fmt.Errorf("failed to calculate prediction statistics for day %s: %w", dayIndicator, ErrNotConfigured)
	}
	const query = `
		SELECT
			COUNT(*) AS total_predictions,
			COALESCE(SUM(predicted_kwh), 0) AS total_predicted_energy,
			COALESCE(AVG(predicted_kwh), 0) AS avg_predicted_energy,
			COALESCE(AVG(avg_power), 0) AS avg_power,
			COALESCE(MIN(predicted_kwh), 0) AS min_predicted_energy,
			COALESCE(MAX(predicted_kwh), 0) AS max_predicted_energy
		FROM predictions
		WHERE day_indicator = $1
	`
	var stats models.PredictionStats
	err := r.db.QueryRowContext(ctx, query, dayIndicator).Scan(
		&stats.TotalPredictions,
		&stats.TotalPredictedEnergy,
		&stats.AvgPredictedEnergy,
		&stats.AvgPower,
		&stats.MinPredictedEnergy,
		&stats.MaxPredictedEnergy,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate prediction statistics for day %s: %w", dayIndicator, err)
	}
	return &stats, nil
}

// GetPredictionAccuracy aggregates the absolute prediction error for one
// day label. Rows with zero or negative actual energy are excluded so the
// percent error stays well defined.
func (r *PredictionRepository) GetPredictionAccuracy(ctx context.Context, dayIndicator string) (*models.PredictionAccuracy, error) {
	if r.db == nil {
		return nil, fmt.Errorf("failed to calculate prediction accuracy: %w", ErrNotConfigured)
	}
	const query = `
		SELECT
			COUNT(*) AS total_predictions,
			COALESCE(AVG(ABS(predicted_kwh - kwh_delivered)), 0) AS avg_absolute_error,
			COALESCE(AVG(ABS(predicted_kwh - kwh_delivered) / kwh_delivered * 100), 0) AS avg_percent_error,
			COALESCE(MIN(ABS(predicted_kwh - kwh_delivered)), 0) AS min_error,
			COALESCE(MAX(ABS(predicted_kwh - kwh_delivered)), 0) AS max_error
		FROM predictions
		WHERE day_indicator = $1
		  AND kwh_delivered > 0
	`
	var accuracy models.PredictionAccuracy
	err := r.db.QueryRowContext(ctx, query, dayIndicator).Scan(
		&accuracy.TotalPredictions,
		&accuracy.AvgAbsoluteError,
		&accuracy.AvgPercentError,
		&accuracy.MinError,
		&accuracy.MaxError,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate prediction accuracy: %w", err)
	}
	return &accuracy, nil
}

// Insert persists a new prediction record.
func (r *PredictionRepository) Insert(ctx context.Context, p *models.Prediction) error {
	if r.db == nil {
		return fmt.Errorf("failed to create prediction: %w", ErrNotConfigured)
	}
	const query = `
		INSERT INTO predictions (id, connection_time_decimal, charging_duration, kwh_delivered, day_indicator, avg_power, connection_end_time, predicted_kwh, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.ConnectionTimeDecimal,
		p.ChargingDuration,
		p.KWhDelivered,
		p.DayIndicator,
		p.AvgPower,
		p.ConnectionEndTime,
		p.PredictedKWh,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create prediction: %w", err)
	}
	return nil
}

// Replace writes the full record back under its id.
func (r *PredictionRepository) Replace(ctx context.Context, p *models.Prediction) error {
	if r.db == nil {
		return fmt.Errorf("failed to update prediction: %w", ErrNotConfigured)
	}
	const query = `
		UPDATE predictions
		SET connection_time_decimal = $2,
		    charging_duration = $3,
		    kwh_delivered = $4,
		    day_indicator = $5,
		    avg_power = $6,
		    connection_end_time = $7,
		    predicted_kwh = $8,
		    updated_at = $9
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.ConnectionTimeDecimal,
		p.ChargingDuration,
		p.KWhDelivered,
		p.DayIndicator,
		p.AvgPower,
		p.ConnectionEndTime,
		p.PredictedKWh,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update prediction: %w", err)
	}
	return nil
}

// Delete removes a prediction by id. A missing id reports false, not an
// error.
func (r *PredictionRepository) Delete(ctx context.Context, id string) (bool, error) {
	if r.db == nil {
		return false, fmt.Errorf("failed to delete prediction: %w", ErrNotConfigured)
	}
	result, err := r.db.ExecContext(ctx, `DELETE FROM predictions WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete prediction: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete prediction: %w", err)
	}
	return affected > 0, nil
}

func scanPredictions(rows *sql.Rows) ([]models.Prediction, error) {
	defer rows.Close()

	predictions := make([]models.Prediction, 0)
	for rows.Next() {
		var p models.Prediction
		if err := rows.Scan(
			&p.ID,
			&p.ConnectionTimeDecimal,
			&p.ChargingDuration,
			&p.KWhDelivered,
			&p.DayIndicator,
			&p.AvgPower,
			&p.ConnectionEndTime,
			&p.PredictedKWh,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		predictions = append(predictions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read predictions: %w", err)
	}
	return predictions, nil
}
