package model

import (
	"time"

	"github.com/google/uuid"
)

// PaymentMethod is a way money comes in (cash, card, mobile money, voucher…).
type PaymentMethod struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Code  string    `gorm:"uniqueIndex;not null"`
	Label string    `gorm:"not null"`
	// RequiresReference forces a non-empty reference string on every payment
	// recorded with this method.
	RequiresReference bool `gorm:"not null;default:false"`
	Active            bool `gorm:"not null;default:true"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
