package repository

import (
	"context"
	"time"

	"github.com/anass1h/Station-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PriceRepository interface {
	// FindActive returns the price row effective at the given instant, or
	// gorm.ErrRecordNotFound when the fuel has no active price at the station.
	FindActive(ctx context.Context, stationID, fuelTypeID uuid.UUID, at time.Time) (*model.FuelPrice, error)
	CreateTx(tx *gorm.DB, p *model.FuelPrice) error
	// CloseCurrentTx ends the open validity window, if any, at the given instant.
	CloseCurrentTx(tx *gorm.DB, stationID, fuelTypeID uuid.UUID, at time.Time) error
	History(ctx context.Context, stationID, fuelTypeID uuid.UUID) ([]model.FuelPrice, error)
	DB() *gorm.DB
}

type priceRepo struct{ db *gorm.DB }

func NewPriceRepository(db *gorm.DB) PriceRepository { return &priceRepo{db: db} }

func (r *priceRepo) DB() *gorm.DB { return r.db }

func (r *priceRepo) FindActive(ctx context.Context, stationID, fuelTypeID uuid.UUID, at time.Time) (*model.FuelPrice, error) {
	var p model.FuelPrice
	err := r.db.WithContext(ctx).
		Where("station_id = ? AND fuel_type_id = ? AND valid_from <= ? AND (valid_to IS NULL OR valid_to > ?)",
			stationID, fuelTypeID, at, at).
		Order("valid_from DESC").
		First(&p).Error
	return &p, err
}

func (r *priceRepo) CreateTx(tx *gorm.DB, p *model.FuelPrice) error {
	return tx.Create(p).Error
}

func (r *priceRepo) CloseCurrentTx(tx *gorm.DB, stationID, fuelTypeID uuid.UUID, at time.Time) error {
	return tx.Model(&model.FuelPrice{}).
		Where("station_id = ? AND fuel_type_id = ? AND valid_to IS NULL", stationID, fuelTypeID).
		Update("valid_to", at).Error
}

func (r *priceRepo) History(ctx context.Context, stationID, fuelTypeID uuid.UUID) ([]model.FuelPrice, error) {
	var prices []model.FuelPrice
	err := r.db.WithContext(ctx).
		Where("station_id = ? AND fuel_type_id = ?", stationID, fuelTypeID).
		Order("valid_from DESC").
		Find(&prices).Error
	return prices, err
}
