package repository

import (
	"context"

	"github.com/anass1h/Station-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ShiftTotals is the scalar aggregation over a shift's sales.
type ShiftTotals struct {
	SaleCount     int64
	TotalQuantity decimal.Decimal
	TotalAmount   decimal.Decimal
}

// FuelTypeSum is one row of the per-fuel-type grouping.
type FuelTypeSum struct {
	FuelTypeID uuid.UUID
	FuelType   string
	Quantity   decimal.Decimal
	Amount     decimal.Decimal
}

// MethodSum is one row of the per-payment-method grouping.
type MethodSum struct {
	PaymentMethodID uuid.UUID
	Method          string
	Amount          decimal.Decimal
	Count           int64
}

type SaleRepository interface {
	// CreateTx inserts the sale together with its payments (association).
	CreateTx(tx *gorm.DB, s *model.Sale) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	ListByShift(ctx context.Context, shiftID uuid.UUID) ([]model.Sale, error)
	// Aggregations are recomputed on demand: sales are immutable and
	// append-only for an OPEN shift, so there is no staleness risk after close.
	TotalsByShift(ctx context.Context, shiftID uuid.UUID) (*ShiftTotals, error)
	SumByFuelType(ctx context.Context, shiftID uuid.UUID) ([]FuelTypeSum, error)
	SumPaymentsByMethod(ctx context.Context, shiftID uuid.UUID) ([]MethodSum, error)
	DB() *gorm.DB
}

type saleRepo struct{ db *gorm.DB }

func NewSaleRepository(db *gorm.DB) SaleRepository { return &saleRepo{db: db} }

func (r *saleRepo) DB() *gorm.DB { return r.db }

func (r *saleRepo) CreateTx(tx *gorm.DB, s *model.Sale) error {
	return tx.Create(s).Error
}

func (r *saleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	var s model.Sale
	err := r.db.WithContext(ctx).
		Preload("FuelType").Preload("Payments.PaymentMethod").
		First(&s, id).Error
	return &s, err
}

func (r *saleRepo) ListByShift(ctx context.Context, shiftID uuid.UUID) ([]model.Sale, error) {
	var sales []model.Sale
	err := r.db.WithContext(ctx).
		Preload("FuelType").Preload("Payments.PaymentMethod").
		Where("shift_id = ?", shiftID).
		Order("created_at ASC").
		Find(&sales).Error
	return sales, err
}

func (r *saleRepo) TotalsByShift(ctx context.Context, shiftID uuid.UUID) (*ShiftTotals, error) {
	var t ShiftTotals
	err := r.db.WithContext(ctx).Model(&model.Sale{}).
		Select("COUNT(*) AS sale_count, COALESCE(SUM(quantity), 0) AS total_quantity, COALESCE(SUM(total_amount), 0) AS total_amount").
		Where("shift_id = ?", shiftID).
		Scan(&t).Error
	return &t, err
}

func (r *saleRepo) SumByFuelType(ctx context.Context, shiftID uuid.UUID) ([]FuelTypeSum, error) {
	var rows []FuelTypeSum
	err := r.db.WithContext(ctx).Model(&model.Sale{}).
		Select("sales.fuel_type_id, fuel_types.name AS fuel_type, SUM(sales.quantity) AS quantity, SUM(sales.total_amount) AS amount").
		Joins("JOIN fuel_types ON fuel_types.id = sales.fuel_type_id").
		Where("sales.shift_id = ?", shiftID).
		Group("sales.fuel_type_id, fuel_types.name").
		Order("fuel_types.name ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *saleRepo) SumPaymentsByMethod(ctx context.Context, shiftID uuid.UUID) ([]MethodSum, error) {
	var rows []MethodSum
	err := r.db.WithContext(ctx).Model(&model.SalePayment{}).
		Select("sale_payments.payment_method_id, payment_methods.label AS method, SUM(sale_payments.amount) AS amount, COUNT(*) AS count").
		Joins("JOIN sales ON sales.id = sale_payments.sale_id").
		Joins("JOIN payment_methods ON payment_methods.id = sale_payments.payment_method_id").
		Where("sales.shift_id = ?", shiftID).
		Group("sale_payments.payment_method_id, payment_methods.label").
		Order("payment_methods.label ASC").
		Scan(&rows).Error
	return rows, err
}
