package dto

import "github.com/shopspring/decimal"

// ─── Nozzles ─────────────────────────────────────────────────────────────────

type CreateNozzleRequest struct {
	StationID    string          `json:"station_id"    validate:"required,uuid"`
	TankID       string          `json:"tank_id"       validate:"required,uuid"`
	FuelTypeID   string          `json:"fuel_type_id"  validate:"required,uuid"`
	Label        string          `json:"label"         validate:"required,min=1"`
	CurrentIndex decimal.Decimal `json:"current_index" validate:"min=0"`
}

type NozzleResponse struct {
	ID           string          `json:"id"`
	StationID    string          `json:"station_id"`
	TankID       string          `json:"tank_id"`
	FuelTypeID   string          `json:"fuel_type_id"`
	FuelType     string          `json:"fuel_type,omitempty"`
	Label        string          `json:"label"`
	CurrentIndex decimal.Decimal `json:"current_index"`
	Active       bool            `json:"active"`
}

// ─── Prices ──────────────────────────────────────────────────────────────────

type SetPriceRequest struct {
	StationID  string          `json:"station_id"   validate:"required,uuid"`
	FuelTypeID string          `json:"fuel_type_id" validate:"required,uuid"`
	UnitPrice  decimal.Decimal `json:"unit_price"   validate:"required,gt=0"`
}

type PriceResponse struct {
	ID         string          `json:"id"`
	StationID  string          `json:"station_id"`
	FuelTypeID string          `json:"fuel_type_id"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	ValidFrom  string          `json:"valid_from"`
	ValidTo    *string         `json:"valid_to"`
}

// ─── Payment methods ─────────────────────────────────────────────────────────

type CreatePaymentMethodRequest struct {
	Code              string `json:"code"  validate:"required,min=2,max=30"`
	Label             string `json:"label" validate:"required,min=2"`
	RequiresReference bool   `json:"requires_reference"`
}

type PaymentMethodResponse struct {
	ID                string `json:"id"`
	Code              string `json:"code"`
	Label             string `json:"label"`
	RequiresReference bool   `json:"requires_reference"`
	Active            bool   `json:"active"`
}

// ─── Anomalies ───────────────────────────────────────────────────────────────

type AnomalyResponse struct {
	ID        string  `json:"id"`
	ShiftID   string  `json:"shift_id"`
	Kind      string  `json:"kind"`
	Message   string  `json:"message"`
	Observed  *string `json:"observed"`
	Expected  *string `json:"expected"`
	CreatedAt string  `json:"created_at"`
}
