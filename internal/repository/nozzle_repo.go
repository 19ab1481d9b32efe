package repository

import (
	"context"

	"github.com/anass1h/Station-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type NozzleRepository interface {
	Create(ctx context.Context, n *model.Nozzle) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Nozzle, error)
	// FindByIDForUpdateTx locks the nozzle row (SELECT … FOR UPDATE) so that
	// concurrent shift starts/ends on the same nozzle serialize on it.
	FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Nozzle, error)
	UpdateIndexTx(tx *gorm.DB, id uuid.UUID, index decimal.Decimal) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	ListByStation(ctx context.Context, stationID uuid.UUID) ([]model.Nozzle, error)
	List(ctx context.Context) ([]model.Nozzle, error)
}

type nozzleRepo struct{ db *gorm.DB }

func NewNozzleRepository(db *gorm.DB) NozzleRepository { return &nozzleRepo{db: db} }

func (r *nozzleRepo) Create(ctx context.Context, n *model.Nozzle) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *nozzleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Nozzle, error) {
	var n model.Nozzle
	err := r.db.WithContext(ctx).Preload("FuelType").First(&n, id).Error
	return &n, err
}

func (r *nozzleRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Nozzle, error) {
	var n model.Nozzle
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&n, id).Error
	return &n, err
}

func (r *nozzleRepo) UpdateIndexTx(tx *gorm.DB, id uuid.UUID, index decimal.Decimal) error {
	return tx.Model(&model.Nozzle{}).Where("id = ?", id).Update("current_index", index).Error
}

func (r *nozzleRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return r.db.WithContext(ctx).Model(&model.Nozzle{}).Where("id = ?", id).Update("active", active).Error
}

func (r *nozzleRepo) ListByStation(ctx context.Context, stationID uuid.UUID) ([]model.Nozzle, error) {
	var nozzles []model.Nozzle
	err := r.db.WithContext(ctx).Preload("FuelType").
		Where("station_id = ?", stationID).Order("label ASC").Find(&nozzles).Error
	return nozzles, err
}

func (r *nozzleRepo) List(ctx context.Context) ([]model.Nozzle, error) {
	var nozzles []model.Nozzle
	err := r.db.WithContext(ctx).Preload("FuelType").Order("label ASC").Find(&nozzles).Error
	return nozzles, err
}
