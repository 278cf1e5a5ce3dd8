package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fleet-service/internal/model"
)

type MileageRepository struct {
	db *gorm.DB
}

func NewMileageRepository(db *gorm.DB) *MileageRepository {
	return &MileageRepository{db: db}
}

func (r *MileageRepository) Create(ctx context.Context, entry *model.MileageLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *MileageRepository) ListByVehicle(ctx context.Context, vehicleID uuid.UUID) ([]model.MileageLog, error) {
	var entries []model.MileageLog
	err := r.db.WithContext(ctx).
		Where("vehicle_id = ?", vehicleID).
		Order("recorded_at DESC").
		Find(&entries).Error
	return entries, err
}
