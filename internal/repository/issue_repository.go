package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fleet-service/internal/model"
)

type IssueRepository struct {
	db *gorm.DB
}

func NewIssueRepository(db *gorm.DB) *IssueRepository {
	return &IssueRepository{db: db}
}

func (r *IssueRepository) Create(ctx context.Context, issue *model.Issue) error {
	return r.db.WithContext(ctx).Create(issue).Error
}

func (r *IssueRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Issue, error) {
	var issue model.Issue
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&issue).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &issue, nil
}

func (r *IssueRepository) ListByVehicle(ctx context.Context, vehicleID uuid.UUID) ([]model.Issue, error) {
	var issues []model.Issue
	err := r.db.WithContext(ctx).
		Where("vehicle_id = ?", vehicleID).
		Order("opened_at DESC").
		Find(&issues).Error
	return issues, err
}

func (r *IssueRepository) ListOpenByVehicle(ctx context.Context, vehicleID uuid.UUID) ([]model.Issue, error) {
	var issues []model.Issue
	err := r.db.WithContext(ctx).
		Where("vehicle_id = ? AND status = ?", vehicleID, model.IssueStatusOpen).
		Order("opened_at DESC").
		Find(&issues).Error
	return issues, err
}

func (r *IssueRepository) CountOpen(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Issue{}).
		Where("status = ?", model.IssueStatusOpen).
		Count(&count).Error
	return count, err
}

func (r *IssueRepository) Update(ctx context.Context, issue *model.Issue) (*model.Issue, error) {
	if err := r.db.WithContext(ctx).Save(issue).Error; err != nil {
		return nil, err
	}

	var updated model.Issue
	err := r.db.WithContext(ctx).Where("id = ?", issue.ID).First(&updated).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &updated, nil
}

// SoftDelete stamps the delete reason and actor before tombstoning the row.
func (r *IssueRepository) SoftDelete(ctx context.Context, id uuid.UUID, reason string, actorID uuid.UUID) error {
	err := r.db.WithContext(ctx).
		Model(&model.Issue{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"delete_reason": reason,
			"deleted_by":    actorID,
		}).Error
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Issue{}).Error
}
