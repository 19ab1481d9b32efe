package repository

import (
	"context"

	"github.com/anass1h/Station-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DebtRepository interface {
	CreateTx(tx *gorm.DB, d *model.PompisteDebt) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.PompisteDebt, error)
	// FindByIDForUpdateTx locks the debt row so concurrent repayments
	// serialize and the remaining-amount arithmetic stays consistent.
	FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.PompisteDebt, error)
	UpdateTx(tx *gorm.DB, d *model.PompisteDebt) error
	CreatePaymentTx(tx *gorm.DB, p *model.DebtPayment) error
	ListPayments(ctx context.Context, debtID uuid.UUID) ([]model.DebtPayment, error)
	List(ctx context.Context, pompisteID *uuid.UUID, status string, page, limit int) ([]model.PompisteDebt, int64, error)
	DB() *gorm.DB
}

type debtRepo struct{ db *gorm.DB }

func NewDebtRepository(db *gorm.DB) DebtRepository { return &debtRepo{db: db} }

func (r *debtRepo) DB() *gorm.DB { return r.db }

func (r *debtRepo) CreateTx(tx *gorm.DB, d *model.PompisteDebt) error {
	return tx.Create(d).Error
}

func (r *debtRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.PompisteDebt, error) {
	var d model.PompisteDebt
	err := r.db.WithContext(ctx).Preload("Pompiste").Preload("Payments").First(&d, id).Error
	return &d, err
}

func (r *debtRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.PompisteDebt, error) {
	var d model.PompisteDebt
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&d, id).Error
	return &d, err
}

func (r *debtRepo) UpdateTx(tx *gorm.DB, d *model.PompisteDebt) error {
	return tx.Save(d).Error
}

func (r *debtRepo) CreatePaymentTx(tx *gorm.DB, p *model.DebtPayment) error {
	return tx.Create(p).Error
}

func (r *debtRepo) ListPayments(ctx context.Context, debtID uuid.UUID) ([]model.DebtPayment, error) {
	var payments []model.DebtPayment
	err := r.db.WithContext(ctx).
		Where("debt_id = ?", debtID).Order("created_at ASC").Find(&payments).Error
	return payments, err
}

func (r *debtRepo) List(ctx context.Context, pompisteID *uuid.UUID, status string, page, limit int) ([]model.PompisteDebt, int64, error) {
	var debts []model.PompisteDebt
	var total int64
	offset := (page - 1) * limit

	q := r.db.WithContext(ctx).Model(&model.PompisteDebt{})
	if pompisteID != nil {
		q = q.Where("pompiste_id = ?", *pompisteID)
	}
	if status != "" && status != "all" {
		q = q.Where("status = ?", status)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("Pompiste").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&debts).Error
	return debts, total, err
}
