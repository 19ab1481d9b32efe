package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type SalePaymentRequest struct {
	PaymentMethodID string          `json:"payment_method_id" validate:"required,uuid"`
	Amount          decimal.Decimal `json:"amount"            validate:"required,gt=0"`
	Reference       *string         `json:"reference"`
}

type RecordSaleRequest struct {
	ShiftID    string               `json:"shift_id"     validate:"required,uuid"`
	FuelTypeID string               `json:"fuel_type_id" validate:"required,uuid"`
	ClientID   *string              `json:"client_id"    validate:"omitempty,uuid"`
	Quantity   decimal.Decimal      `json:"quantity"     validate:"required,gt=0"`
	Payments   []SalePaymentRequest `json:"payments"     validate:"required,min=1,dive"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SalePaymentResponse struct {
	PaymentMethodID string          `json:"payment_method_id"`
	Method          string          `json:"method,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	Reference       *string         `json:"reference"`
}

type SaleResponse struct {
	ID          string                `json:"id"`
	ShiftID     string                `json:"shift_id"`
	FuelTypeID  string                `json:"fuel_type_id"`
	FuelType    string                `json:"fuel_type,omitempty"`
	ClientID    *string               `json:"client_id"`
	Quantity    decimal.Decimal       `json:"quantity"`
	UnitPrice   decimal.Decimal       `json:"unit_price"`
	TotalAmount decimal.Decimal       `json:"total_amount"`
	Payments    []SalePaymentResponse `json:"payments"`
	CreatedAt   string                `json:"created_at"`
}
