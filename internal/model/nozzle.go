package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Nozzle is a single dispensing point on a pump, linked to one tank and one
// fuel type. CurrentIndex is the authoritative last-known cumulative meter
// reading in liters; it is monotonically non-decreasing and is mutated ONLY
// inside the transaction that closes a shift.
type Nozzle struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StationID  uuid.UUID `gorm:"type:uuid;not null;index"`
	TankID     uuid.UUID `gorm:"type:uuid;not null"`
	FuelTypeID uuid.UUID `gorm:"type:uuid;not null"`
	Label      string    `gorm:"not null"`
	// CurrentIndex is cumulative liters dispensed since installation.
	CurrentIndex decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Active       bool            `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Station  *Station  `gorm:"foreignKey:StationID"`
	Tank     *Tank     `gorm:"foreignKey:TankID"`
	FuelType *FuelType `gorm:"foreignKey:FuelTypeID"`
}
