package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type StartShiftRequest struct {
	NozzleID   string          `json:"nozzle_id"   validate:"required,uuid"`
	IndexStart decimal.Decimal `json:"index_start" validate:"min=0"`
}

type EndShiftRequest struct {
	IndexEnd     decimal.Decimal `json:"index_end" validate:"min=0"`
	IncidentNote *string         `json:"incident_note"`
}

type ShiftFilter struct {
	Status     string `form:"status"`
	NozzleID   string `form:"nozzle_id"`
	PompisteID string `form:"pompiste_id"`
	Page       int    `form:"page"`
	Limit      int    `form:"limit"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ShiftResponse struct {
	ID           string           `json:"id"`
	NozzleID     string           `json:"nozzle_id"`
	NozzleLabel  string           `json:"nozzle_label,omitempty"`
	PompisteID   string           `json:"pompiste_id"`
	PompisteName string           `json:"pompiste_name,omitempty"`
	IndexStart   decimal.Decimal  `json:"index_start"`
	IndexEnd     *decimal.Decimal `json:"index_end"`
	Status       string           `json:"status"`
	IncidentNote *string          `json:"incident_note"`
	StartedAt    string           `json:"started_at"`
	EndedAt      *string          `json:"ended_at"`
	ValidatedBy  *string          `json:"validated_by"`
	ValidatedAt  *string          `json:"validated_at"`
	// Warning carries a non-blocking check message (index drift, long
	// duration). The operation succeeded; the warning is informational.
	Warning *string `json:"warning,omitempty"`
}

type ShiftListResponse struct {
	Data  []ShiftResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

// ─── Aggregator DTOs ─────────────────────────────────────────────────────────

type FuelTypeTotal struct {
	FuelTypeID string          `json:"fuel_type_id"`
	FuelType   string          `json:"fuel_type"`
	Quantity   decimal.Decimal `json:"quantity"`
	Amount     decimal.Decimal `json:"amount"`
}

type MethodTotal struct {
	PaymentMethodID string          `json:"payment_method_id"`
	Method          string          `json:"method"`
	Amount          decimal.Decimal `json:"amount"`
	Count           int64           `json:"count"`
}

// ShiftSummary is the read-side aggregation over a shift's sales: the
// "expected" side consumed by cash reconciliation and by the dispatcher UI.
type ShiftSummary struct {
	ShiftID       string          `json:"shift_id"`
	SaleCount     int64           `json:"sale_count"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	ByFuelType    []FuelTypeTotal `json:"by_fuel_type"`
	ByMethod      []MethodTotal   `json:"by_method"`
}
