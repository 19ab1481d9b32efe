package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PompisteDebt status values. Status is a pure function of RemainingAmount
// and the explicit CANCELLED transition — it is never accepted as input.
const (
	DebtPending       = "PENDING"
	DebtPartiallyPaid = "PARTIALLY_PAID"
	DebtPaid          = "PAID"
	DebtCancelled     = "CANCELLED"
)

// PompisteDebt reasons.
const (
	DebtReasonCashVariance  = "CASH_VARIANCE"
	DebtReasonSalaryAdvance = "SALARY_ADVANCE"
	DebtReasonDamage        = "DAMAGE"
	DebtReasonFuelLoss      = "FUEL_LOSS"
	DebtReasonOther         = "OTHER"
)

// PompisteDebt is a standing balance owed by a pompiste, most commonly
// created from an unexplained cash shortfall at reconciliation.
// Invariant: 0 <= RemainingAmount <= OriginalAmount.
type PompisteDebt struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PompisteID uuid.UUID `gorm:"type:uuid;not null;index"`
	StationID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Reason     string    `gorm:"type:varchar(20);not null"`
	// Description holds free text; cancellation appends its reason here so
	// history is preserved (amounts are never zeroed on cancel).
	Description     *string
	OriginalAmount  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	RemainingAmount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status          string          `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	// CashRegisterID links back to the reconciliation that originated the
	// debt, when Reason is CASH_VARIANCE.
	CashRegisterID *uuid.UUID `gorm:"type:uuid"`
	CreatedBy      uuid.UUID  `gorm:"type:uuid;not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Pompiste *User         `gorm:"foreignKey:PompisteID"`
	Payments []DebtPayment `gorm:"foreignKey:DebtID"`
}

// DebtPayment is one repayment against a PompisteDebt. Immutable once
// created; its only effect is to reduce the parent's RemainingAmount and
// recompute its status inside the same transaction.
type DebtPayment struct {
	ID     uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DebtID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// Method: "cash" | "salary_deduction" | "other"
	Method     string `gorm:"type:varchar(20);not null"`
	Note       *string
	ReceivedBy uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt  time.Time
}
