package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"fleet-service/internal/model"
	"fleet-service/internal/service"
)

// SQLSTATE for exclusion constraint violations.
const exclusionViolationCode = "23P01"

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	if err := r.db.WithContext(ctx).Create(booking).Error; err != nil {
		return mapOverlapError(err)
	}
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	var booking model.Booking
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &booking, nil
}

func (r *BookingRepository) ListByVehicle(ctx context.Context, vehicleID uuid.UUID) ([]model.Booking, error) {
	var bookings []model.Booking
	err := r.db.WithContext(ctx).
		Where("vehicle_id = ?", vehicleID).
		Order("start_at ASC").
		Find(&bookings).Error
	return bookings, err
}

func (r *BookingRepository) ListOverlapping(ctx context.Context, start, end time.Time) ([]model.Booking, error) {
	var bookings []model.Booking
	err := r.db.WithContext(ctx).
		Where("status NOT IN ?", []model.BookingStatus{model.BookingStatusCancelled, model.BookingStatusCompleted}).
		Where("start_at < ? AND end_at > ?", end, start).
		Order("start_at ASC").
		Find(&bookings).Error
	return bookings, err
}

func (r *BookingRepository) List(ctx context.Context, filter service.BookingListFilter) ([]model.Booking, error) {
	var bookings []model.Booking
	query := r.db.WithContext(ctx).Model(&model.Booking{})

	if filter.VehicleID != nil {
		query = query.Where("vehicle_id = ?", *filter.VehicleID)
	}
	if filter.BranchID != nil {
		query = query.Where("branch_id = ?", *filter.BranchID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.StartFrom != nil {
		query = query.Where("start_at >= ?", *filter.StartFrom)
	}
	if filter.StartTo != nil {
		query = query.Where("start_at <= ?", *filter.StartTo)
	}

	if err := query.Order("start_at DESC").Find(&bookings).Error; err != nil {
		return nil, err
	}

	return bookings, nil
}

func (r *BookingRepository) Update(ctx context.Context, booking *model.Booking) (*model.Booking, error) {
	if err := r.db.WithContext(ctx).Save(booking).Error; err != nil {
		return nil, mapOverlapError(err)
	}

	var updated model.Booking
	err := r.db.WithContext(ctx).Where("id = ?", booking.ID).First(&updated).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &updated, nil
}

func mapOverlapError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == exclusionViolationCode {
		return service.ErrBookingOverlap
	}
	return err
}
