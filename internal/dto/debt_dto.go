package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateDebtRequest struct {
	PompisteID  string          `json:"pompiste_id" validate:"required,uuid"`
	StationID   string          `json:"station_id"  validate:"required,uuid"`
	Reason      string          `json:"reason"      validate:"required,oneof=CASH_VARIANCE SALARY_ADVANCE DAMAGE FUEL_LOSS OTHER"`
	Amount      decimal.Decimal `json:"amount"      validate:"required,gt=0"`
	Description *string         `json:"description"`
}

type AddDebtPaymentRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required,gt=0"`
	Method string          `json:"method" validate:"required,oneof=cash salary_deduction other"`
	Note   *string         `json:"note"`
}

type CancelDebtRequest struct {
	Reason string `json:"reason" validate:"required,min=3"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type DebtPaymentResponse struct {
	ID         string          `json:"id"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method"`
	Note       *string         `json:"note"`
	ReceivedBy string          `json:"received_by"`
	CreatedAt  string          `json:"created_at"`
}

type DebtResponse struct {
	ID              string                `json:"id"`
	PompisteID      string                `json:"pompiste_id"`
	PompisteName    string                `json:"pompiste_name,omitempty"`
	StationID       string                `json:"station_id"`
	Reason          string                `json:"reason"`
	Description     *string               `json:"description"`
	OriginalAmount  decimal.Decimal       `json:"original_amount"`
	RemainingAmount decimal.Decimal       `json:"remaining_amount"`
	Status          string                `json:"status"`
	CashRegisterID  *string               `json:"cash_register_id"`
	Payments        []DebtPaymentResponse `json:"payments,omitempty"`
	CreatedAt       string                `json:"created_at"`
}

// CancelDebtResponse exposes the before/after pair for the external audit log.
type CancelDebtResponse struct {
	Debt           DebtResponse `json:"debt"`
	PreviousStatus string       `json:"previous_status"`
	NewStatus      string       `json:"new_status"`
}

type DebtListResponse struct {
	Data  []DebtResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}
