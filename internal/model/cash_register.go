package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CashRegister is the reconciliation record produced when a shift closes
// financially: counted money vs money the sales say should be there.
// Exactly one per shift (unique index on ShiftID), immutable once created.
type CashRegister struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ShiftID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	// ExpectedTotal is the aggregated sale revenue for the shift.
	ExpectedTotal decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// DeclaredTotal is what the pompiste counted in the till.
	DeclaredTotal decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// Variance = DeclaredTotal - ExpectedTotal; negative is a shortfall.
	Variance     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	VarianceNote *string
	ClosedBy     uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt    time.Time

	Shift   *Shift          `gorm:"foreignKey:ShiftID"`
	Details []PaymentDetail `gorm:"foreignKey:CashRegisterID"`
}

// PaymentDetail is the per-payment-method breakdown of a CashRegister.
// Both sides of the method set union are reconciled: a method with sales but
// no declaration gets DeclaredAmount=0, a declared method with no sales gets
// ExpectedAmount=0.
type PaymentDetail struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CashRegisterID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	PaymentMethodID uuid.UUID       `gorm:"type:uuid;not null"`
	ExpectedAmount  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DeclaredAmount  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Variance        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Reference       *string
	CreatedAt       time.Time

	PaymentMethod *PaymentMethod `gorm:"foreignKey:PaymentMethodID"`
}
