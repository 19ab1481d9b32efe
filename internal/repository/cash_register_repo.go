package repository

import (
	"context"

	"github.com/anass1h/Station-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CashRegisterRepository interface {
	// CreateTx inserts the register with its payment details (association).
	CreateTx(tx *gorm.DB, cr *model.CashRegister) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.CashRegister, error)
	FindByShift(ctx context.Context, shiftID uuid.UUID) (*model.CashRegister, error)
	// FindByShiftTx is the in-transaction existence re-check that, together
	// with the unique index on shift_id, gives at-most-once semantics.
	FindByShiftTx(tx *gorm.DB, shiftID uuid.UUID) (*model.CashRegister, error)
	List(ctx context.Context, page, limit int) ([]model.CashRegister, int64, error)
	DB() *gorm.DB
}

type cashRegisterRepo struct{ db *gorm.DB }

func NewCashRegisterRepository(db *gorm.DB) CashRegisterRepository {
	return &cashRegisterRepo{db: db}
}

func (r *cashRegisterRepo) DB() *gorm.DB { return r.db }

func (r *cashRegisterRepo) CreateTx(tx *gorm.DB, cr *model.CashRegister) error {
	return tx.Create(cr).Error
}

func (r *cashRegisterRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.CashRegister, error) {
	var cr model.CashRegister
	err := r.db.WithContext(ctx).Preload("Details.PaymentMethod").First(&cr, id).Error
	return &cr, err
}

func (r *cashRegisterRepo) FindByShift(ctx context.Context, shiftID uuid.UUID) (*model.CashRegister, error) {
	var cr model.CashRegister
	err := r.db.WithContext(ctx).Preload("Details.PaymentMethod").
		Where("shift_id = ?", shiftID).First(&cr).Error
	return &cr, err
}

func (r *cashRegisterRepo) FindByShiftTx(tx *gorm.DB, shiftID uuid.UUID) (*model.CashRegister, error) {
	var cr model.CashRegister
	err := tx.Where("shift_id = ?", shiftID).First(&cr).Error
	return &cr, err
}

func (r *cashRegisterRepo) List(ctx context.Context, page, limit int) ([]model.CashRegister, int64, error) {
	var registers []model.CashRegister
	var total int64
	offset := (page - 1) * limit

	q := r.db.WithContext(ctx).Model(&model.CashRegister{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("Details.PaymentMethod").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&registers).Error
	return registers, total, err
}
