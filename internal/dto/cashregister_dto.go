package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type DeclaredMethod struct {
	PaymentMethodID string          `json:"payment_method_id" validate:"required,uuid"`
	Amount          decimal.Decimal `json:"amount"            validate:"min=0"`
	Reference       *string         `json:"reference"`
}

type CloseCashRegisterRequest struct {
	Declared        []DeclaredMethod `json:"declared" validate:"omitempty,dive"`
	VarianceNote    *string          `json:"variance_note"`
	CreateDebtOnGap bool             `json:"create_debt_on_shortfall"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PaymentDetailResponse struct {
	PaymentMethodID string          `json:"payment_method_id"`
	Method          string          `json:"method,omitempty"`
	ExpectedAmount  decimal.Decimal `json:"expected_amount"`
	DeclaredAmount  decimal.Decimal `json:"declared_amount"`
	Variance        decimal.Decimal `json:"variance"`
	Reference       *string         `json:"reference"`
}

type CashRegisterResponse struct {
	ID            string                  `json:"id"`
	ShiftID       string                  `json:"shift_id"`
	ExpectedTotal decimal.Decimal         `json:"expected_total"`
	DeclaredTotal decimal.Decimal         `json:"declared_total"`
	Variance      decimal.Decimal         `json:"variance"`
	VarianceNote  *string                 `json:"variance_note"`
	Details       []PaymentDetailResponse `json:"details"`
	// DebtID is set when a shortfall debt was created in the same transaction.
	DebtID    *string `json:"debt_id,omitempty"`
	CreatedAt string  `json:"created_at"`
}

type CashRegisterListResponse struct {
	Data  []CashRegisterResponse `json:"data"`
	Total int64                  `json:"total"`
	Page  int                    `json:"page"`
	Limit int                    `json:"limit"`
}
