package repository

import (
	"context"

	"github.com/anass1h/Station-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AnomalyRepository interface {
	Create(ctx context.Context, a *model.ShiftAnomaly) error
	ListByShift(ctx context.Context, shiftID uuid.UUID) ([]model.ShiftAnomaly, error)
	List(ctx context.Context, kind string, page, limit int) ([]model.ShiftAnomaly, int64, error)
}

type anomalyRepo struct{ db *gorm.DB }

func NewAnomalyRepository(db *gorm.DB) AnomalyRepository { return &anomalyRepo{db: db} }

func (r *anomalyRepo) Create(ctx context.Context, a *model.ShiftAnomaly) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *anomalyRepo) ListByShift(ctx context.Context, shiftID uuid.UUID) ([]model.ShiftAnomaly, error) {
	var anomalies []model.ShiftAnomaly
	err := r.db.WithContext(ctx).
		Where("shift_id = ?", shiftID).Order("created_at ASC").Find(&anomalies).Error
	return anomalies, err
}

func (r *anomalyRepo) List(ctx context.Context, kind string, page, limit int) ([]model.ShiftAnomaly, int64, error) {
	var anomalies []model.ShiftAnomaly
	var total int64
	offset := (page - 1) * limit

	q := r.db.WithContext(ctx).Model(&model.ShiftAnomaly{})
	if kind != "" && kind != "all" {
		q = q.Where("kind = ?", kind)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&anomalies).Error
	return anomalies, total, err
}
