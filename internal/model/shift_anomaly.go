package model

import (
	"time"

	"github.com/google/uuid"
)

// ShiftAnomaly kinds.
const (
	AnomalyIndexDrift   = "index_drift"
	AnomalyLongDuration = "long_duration"
	AnomalyCashVariance = "cash_variance"
)

// ShiftAnomaly is the persisted record of a non-blocking warning raised while
// operating a shift: a meter index discontinuity at start, a longer-than-soft-
// threshold duration at close, or a significant cash variance at
// reconciliation. Rows are written asynchronously by the anomaly worker and
// reviewed by managers; they never block the originating operation.
type ShiftAnomaly struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ShiftID uuid.UUID `gorm:"type:uuid;not null;index"`
	Kind    string    `gorm:"type:varchar(30);not null;index"`
	Message string    `gorm:"not null"`
	// Observed / Expected carry the concrete values behind the warning,
	// formatted as strings since the unit differs per kind (liters, hours,
	// currency).
	Observed  *string
	Expected  *string
	CreatedAt time.Time
}

// TableName overrides GORM's default pluralization (shift_anomalys).
func (ShiftAnomaly) TableName() string { return "shift_anomalies" }
