package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Station is one physical fuel station.
type Station struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"not null"`
	Address   *string
	Active    bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FuelType is a sellable fuel (diesel, sp95, …).
type FuelType struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Code      string    `gorm:"uniqueIndex;not null"`
	Name      string    `gorm:"not null"`
	CreatedAt time.Time
}

// Tank is a physical storage tank at a station, holding one fuel type.
type Tank struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StationID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	FuelTypeID     uuid.UUID       `gorm:"type:uuid;not null"`
	Label          string          `gorm:"not null"`
	CapacityLiters decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Station  *Station  `gorm:"foreignKey:StationID"`
	FuelType *FuelType `gorm:"foreignKey:FuelTypeID"`
}

// Client is an optional counterparty on a sale (fleet account, regular, …).
type Client struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"not null"`
	Phone     *string
	TaxNumber *string
	Active    bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
