package repository

import (
	"context"

	"github.com/anass1h/Station-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CatalogRepository groups the small read-mostly reference entities the sale
// recorder validates against: fuel types and clients.
type CatalogRepository interface {
	FindFuelType(ctx context.Context, id uuid.UUID) (*model.FuelType, error)
	ListFuelTypes(ctx context.Context) ([]model.FuelType, error)
	FindClient(ctx context.Context, id uuid.UUID) (*model.Client, error)
	FindStation(ctx context.Context, id uuid.UUID) (*model.Station, error)
}

type catalogRepo struct{ db *gorm.DB }

func NewCatalogRepository(db *gorm.DB) CatalogRepository { return &catalogRepo{db: db} }

func (r *catalogRepo) FindFuelType(ctx context.Context, id uuid.UUID) (*model.FuelType, error) {
	var ft model.FuelType
	err := r.db.WithContext(ctx).First(&ft, id).Error
	return &ft, err
}

func (r *catalogRepo) ListFuelTypes(ctx context.Context) ([]model.FuelType, error) {
	var fts []model.FuelType
	err := r.db.WithContext(ctx).Order("code ASC").Find(&fts).Error
	return fts, err
}

func (r *catalogRepo) FindClient(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	var c model.Client
	err := r.db.WithContext(ctx).First(&c, id).Error
	return &c, err
}

func (r *catalogRepo) FindStation(ctx context.Context, id uuid.UUID) (*model.Station, error) {
	var s model.Station
	err := r.db.WithContext(ctx).First(&s, id).Error
	return &s, err
}
