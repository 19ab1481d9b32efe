package repository

import (
	"context"

	"github.com/anass1h/Station-sub000/internal/dto"
	"github.com/anass1h/Station-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ShiftRepository interface {
	CreateTx(tx *gorm.DB, s *model.Shift) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Shift, error)
	// FindByIDForUpdateTx locks the shift row so status transitions serialize.
	FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Shift, error)
	// FindOpenByNozzleTx / FindOpenByPompisteTx return gorm.ErrRecordNotFound
	// when no OPEN shift exists — the happy path for Start.
	FindOpenByNozzleTx(tx *gorm.DB, nozzleID uuid.UUID) (*model.Shift, error)
	FindOpenByPompisteTx(tx *gorm.DB, pompisteID uuid.UUID) (*model.Shift, error)
	UpdateTx(tx *gorm.DB, s *model.Shift) error
	List(ctx context.Context, filter dto.ShiftFilter) ([]model.Shift, int64, error)
	DB() *gorm.DB // exposes the DB for transaction creation in the service layer
}

type shiftRepo struct{ db *gorm.DB }

func NewShiftRepository(db *gorm.DB) ShiftRepository { return &shiftRepo{db: db} }

func (r *shiftRepo) DB() *gorm.DB { return r.db }

func (r *shiftRepo) CreateTx(tx *gorm.DB, s *model.Shift) error {
	return tx.Create(s).Error
}

func (r *shiftRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Shift, error) {
	var s model.Shift
	err := r.db.WithContext(ctx).Preload("Nozzle").Preload("Pompiste").First(&s, id).Error
	return &s, err
}

func (r *shiftRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Shift, error) {
	var s model.Shift
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&s, id).Error
	return &s, err
}

func (r *shiftRepo) FindOpenByNozzleTx(tx *gorm.DB, nozzleID uuid.UUID) (*model.Shift, error) {
	var s model.Shift
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("nozzle_id = ? AND status = ?", nozzleID, model.ShiftOpen).First(&s).Error
	return &s, err
}

func (r *shiftRepo) FindOpenByPompisteTx(tx *gorm.DB, pompisteID uuid.UUID) (*model.Shift, error) {
	var s model.Shift
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("pompiste_id = ? AND status = ?", pompisteID, model.ShiftOpen).First(&s).Error
	return &s, err
}

func (r *shiftRepo) UpdateTx(tx *gorm.DB, s *model.Shift) error {
	return tx.Save(s).Error
}

func (r *shiftRepo) List(ctx context.Context, filter dto.ShiftFilter) ([]model.Shift, int64, error) {
	var shifts []model.Shift
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Shift{})
	if filter.Status != "" && filter.Status != "all" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.NozzleID != "" {
		q = q.Where("nozzle_id = ?", filter.NozzleID)
	}
	if filter.PompisteID != "" {
		q = q.Where("pompiste_id = ?", filter.PompisteID)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Nozzle").Preload("Pompiste").
		Order("started_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&shifts).Error
	return shifts, total, err
}
