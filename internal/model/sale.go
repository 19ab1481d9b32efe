package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale is one fuel dispensing transaction inside an OPEN shift.
// Sales are immutable once created — no Update/Delete anywhere in the code.
// UnitPrice is a snapshot of the active price at sale time; later price
// changes never alter a recorded sale.
type Sale struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ShiftID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	FuelTypeID uuid.UUID  `gorm:"type:uuid;not null"`
	ClientID   *uuid.UUID `gorm:"type:uuid;index"`
	// Quantity in liters, > 0.
	Quantity  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	// TotalAmount = Quantity × UnitPrice, rounded to 2 decimals.
	TotalAmount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt   time.Time

	FuelType *FuelType     `gorm:"foreignKey:FuelTypeID"`
	Client   *Client       `gorm:"foreignKey:ClientID"`
	Payments []SalePayment `gorm:"foreignKey:SaleID"`
}

// SalePayment is one payment-method allocation of a sale's total.
// Invariant: the sum of a sale's payment amounts equals Sale.TotalAmount
// within a 0.01 rounding tolerance.
type SalePayment struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	PaymentMethodID uuid.UUID       `gorm:"type:uuid;not null"`
	Amount          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// Reference is required when the payment method mandates one (card slip,
	// cheque number, voucher, …).
	Reference *string
	CreatedAt time.Time

	PaymentMethod *PaymentMethod `gorm:"foreignKey:PaymentMethodID"`
}
