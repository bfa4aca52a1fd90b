package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"smartgrid/internal/models"
)

// ErrNotConfigured is returned by every accessor method when the process
// started without a database handle. Requests that need the store fail
// individually instead of the process failing at startup.
var ErrNotConfigured = errors.New("database not configured")

// SessionRepository handles persistence of charging sessions.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository returns repository. A nil pool is allowed and puts
// the repository in degraded mode.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = `id, connection_time_decimal, charging_duration, kwh_delivered, day_indicator, created_at, updated_at`

// GetAll returns every charging session in storage order.
func (r *SessionRepository) GetAll(ctx context.Context) ([]models.ChargingSession, error) {
	if r.db == nil {
		return nil, fmt.Errorf("failed to retrieve charging sessions: %w", ErrNotConfigured)
	}
	query := `SELECT ` + sessionColumns + ` FROM charging_sessions`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve charging sessions: %w", err)
	}
	return scanSessions(rows)
}

// GetByID returns a single session, or nil without error when the id is
// unknown.
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*models.ChargingSession, error) {
	if r.db == nil {
		return nil, fmt.Errorf("failed to retrieve charging session: %w", ErrNotConfigured)
	}
	query := `SELECT ` + sessionColumns + ` FROM charging_sessions WHERE id = $1`
	var s models.ChargingSession
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&s.ID,
		&s.ConnectionTimeDecimal,
		&s.ChargingDuration,
		&s.KWhDelivered,
		&s.DayIndicator,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve charging session: %w", err)
	}
	return &s, nil
}

// GetByDayIndicator returns sessions matching the day label exactly.
func (r *SessionRepository) GetByDayIndicator(ctx context.Context, dayIndicator string) ([]models.ChargingSession, error) {
	if r.db == nil {
		return nil, fmt.Errorf("failed to retrieve sessions for day %s: %w", dayIndicator, ErrNotConfigured)
	}
	query := `SELECT ` + sessionColumns + ` FROM charging_sessions WHERE day_indicator = $1`
	rows, err := r.db.QueryContext(ctx, query, dayIndicator)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve sessions for day %s: %w", dayIndicator, err)
	}
	return scanSessions(rows)
}

// GetHighKwh returns sessions delivering more energy than the threshold,
// highest first.
func (r *SessionRepository) GetHighKwh(ctx context.Context, threshold float64) ([]models.ChargingSession, error) {
	if r.db == nil {
		return nil, fmt.Errorf("failed to retrieve high kWh sessions: %w", ErrNotConfigured)
	}
	query := `SELECT ` + sessionColumns + ` FROM charging_sessions WHERE kwh_delivered > $1 ORDER BY kwh_delivered DESC`
	rows, err := r.db.QueryContext(ctx, query, threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve high kWh sessions: %w", err)
	}
	return scanSessions(rows)
}

// GetLowKwh returns sessions delivering less energy than the threshold,
// lowest first.
func (r *SessionRepository) GetLowKwh(ctx context.Context, threshold float64) ([]models.ChargingSession, error) {
	if r.db == nil {
		return nil, fmt.Errorf("failed to retrieve low kWh sessions: %w", ErrNotConfigured)
	}
	query := `SELECT ` + sessionColumns + ` FROM charging_sessions WHERE kwh_delivered < $1 ORDER BY kwh_delivered ASC`
	rows, err := r.db.QueryContext(ctx, query, threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve low kWh sessions: %w", err)
	}
	return scanSessions(rows)
}

// GetDayStatistics aggregates energy and duration for one day label.
// A day with no sessions yields the all-zero row.
func (r *SessionRepository) GetDayStatistics(ctx context.Context, dayIndicator string) (*models.SessionStats, error) {
	if r.db == nil {
		return nil, fmt.Errorf("failed to calculate statistics for day %s: %w", dayIndicator, ErrNotConfigured)
	}
	const query = `
		SELECT
			COUNT(*) AS total_sessions,
			COALESCE(SUM(kwh_delivered), 0) AS total_energy,
			COALESCE(AVG(kwh_delivered), 0) AS avg_energy,
			COALESCE(AVG(charging_duration), 0) AS avg_duration,
			COALESCE(MIN(kwh_delivered), 0) AS min_energy,
			COALESCE(MAX(kwh_delivered), 0) AS max_energy
		FROM charging_sessions
		WHERE day_indicator = $1
	`
	var stats models.SessionStats
	err := r.db.QueryRowContext(ctx, query, dayIndicator).Scan(
		&stats.TotalSessions,
		&stats.TotalEnergy,
		&stats.AvgEnergy,
		&stats.AvgDuration,
		&stats.MinEnergy,
		&stats.MaxEnergy,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate statistics for day %s: %w", dayIndicator, err)
	}
	return &stats, nil
}

// Insert persists a new session record.
func (r *SessionRepository) Insert(ctx context.Context, s *models.ChargingSession) error {
	if r.db == nil {
		return fmt.Errorf("failed to create charging session: %w", ErrNotConfigured)
	}
	const query = `
		INSERT INTO charging_sessions (id, connection_time_decimal, charging_duration, kwh_delivered, day_indicator, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		s.ID,
		s.ConnectionTimeDecimal,
		s.ChargingDuration,
		s.KWhDelivered,
		s.DayIndicator,
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create charging session: %w", err)
	}
	return nil
}

// Replace writes the full record back under its id.
func (r *SessionRepository) Replace(ctx context.Context, s *models.ChargingSession) error {
	if r.db == nil {
		return fmt.Errorf("failed to update charging session: %w", ErrNotConfigured)
	}
	const query = `
		UPDATE charging_sessions
		SET connection_time_decimal = $2,
		    charging_duration = $3,
		    kwh_delivered = $4,
		    day_indicator = $5,
		    updated_at = $6
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query,
		s.ID,
		s.ConnectionTimeDecimal,
		s.ChargingDuration,
		s.KWhDelivered,
		s.DayIndicator,
		s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update charging session: %w", err)
	}
	return nil
}

// Delete removes a session by id. A missing id reports false, not an
// error.
func (r *SessionRepository) Delete(ctx context.Context, id string) (bool, error) {
	if r.db == nil {
		return false, fmt.Errorf("failed to delete charging session: %w", ErrNotConfigured)
	}
	result, err := r.db.ExecContext(ctx, `DELETE FROM charging_sessions WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete charging session: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete charging session: %w", err)
	}
	return affected > 0, nil
}

func scanSessions(rows *sql.Rows) ([]models.ChargingSession, error) {
	defer rows.Close()

	sessions := make([]models.ChargingSession, 0)
	for rows.Next() {
		var s models.ChargingSession
		if err := rows.Scan(
			&s.ID,
			&s.ConnectionTimeDecimal,
			&s.ChargingDuration,
			&s.KWhDelivered,
			&s.DayIndicator,
			&s.CreatedAt,
			&s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan charging session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read charging sessions: %w", err)
	}
	return sessions, nil
}
