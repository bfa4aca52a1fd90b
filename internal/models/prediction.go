package models

import "time"

// Prediction extends the charging-session fields with the model output
// for the same connection: average power, predicted end time, and the
// predicted energy to compare against kWhDelivered.
type Prediction struct {
	ID                    string    `db:"id" json:"id"`
	ConnectionTimeDecimal float64   `db:"connection_time_decimal" json:"connectionTime_decimal"`
	ChargingDuration      float64   `db:"charging_duration" json:"chargingDuration"`
	KWhDelivered          float64   `db:"kwh_delivered" json:"kWhDelivered"`
	DayIndicator          string    `db:"day_indicator" json:"dayIndicator"`
	AvgPower              float64   `db:"avg_power" json:"avg_power"`
	ConnectionEndTime     float64   `db:"connection_end_time" json:"connection_end_time"`
	PredictedKWh          float64   `db:"predicted_kwh" json:"predicted_kWh"`
	CreatedAt             time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt             time.Time `db:"updated_at" json:"updatedAt"`
}

// PredictionStats is the one-row aggregate over predicted energy for a
// day indicator.
type PredictionStats struct {
	TotalPredictions     int     `json:"totalPredictions"`
	TotalPredictedEnergy float64 `json:"totalPredictedEnergy"`
	AvgPredictedEnergy   float64 `json:"avgPredictedEnergy"`
	AvgPower             float64 `json:"avgPower"`
	MinPredictedEnergy   float64 `json:"minPredictedEnergy"`
	MaxPredictedEnergy   float64 `json:"maxPredictedEnergy"`
}

// PredictionAccuracy summarizes |predicted - actual| for a day indicator,
// restricted to rows with positive actual energy so the percent error is
// well defined.
type PredictionAccuracy struct {
	TotalPredictions int     `json:"totalPredictions"`
	AvgAbsoluteError float64 `json:"avgAbsoluteError"`
	AvgPercentError  float64 `json:"avgPercentError"`
	MinError         float64 `json:"minError"`
	MaxError         float64 `json:"maxError"`
}
