package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FuelPrice is one row of the per-station price history. Rows are immutable —
// setting a new price closes the previous row's validity window in the same
// transaction, it never rewrites it. The active price at time T is the row
// with ValidFrom <= T and (ValidTo IS NULL OR ValidTo > T).
type FuelPrice struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StationID  uuid.UUID       `gorm:"type:uuid;not null;index:idx_fuel_prices_lookup"`
	FuelTypeID uuid.UUID       `gorm:"type:uuid;not null;index:idx_fuel_prices_lookup"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	ValidFrom  time.Time       `gorm:"not null"`
	ValidTo    *time.Time
	// SetBy records which admin set this price.
	SetBy     uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt time.Time

	FuelType *FuelType `gorm:"foreignKey:FuelTypeID"`
}
