package models

import "time"

// ChargingSession is one recorded charging session.
// connectionTime_decimal is the hour of day as a fraction (13.5 = 13:30).
type ChargingSession struct {
	ID                    string    `db:"id" json:"id"`
	ConnectionTimeDecimal float64   `db:"connection_time_decimal" json:"connectionTime_decimal"`
	ChargingDuration      float64   `db:"charging_duration" json:"chargingDuration"`
	KWhDelivered          float64   `db:"kwh_delivered" json:"kWhDelivered"`
	DayIndicator          string    `db:"day_indicator" json:"dayIndicator"`
	CreatedAt             time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt             time.Time `db:"updated_at" json:"updatedAt"`
}

// SessionStats is the one-row energy aggregate for a day indicator.
// A day with no sessions yields the zero value, never a null row.
type SessionStats struct {
	TotalSessions int     `json:"totalSessions"`
	TotalEnergy   float64 `json:"totalEnergy"`
	AvgEnergy     float64 `json:"avgEnergy"`
	AvgDuration   float64 `json:"avgDuration"`
	MinEnergy     float64 `json:"minEnergy"`
	MaxEnergy     float64 `json:"maxEnergy"`
}
