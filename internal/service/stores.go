package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"fleet-service/internal/model"
)

// ErrBookingOverlap is the signal a BookingStore raises when the storage
// layer's exclusion constraint rejects a write because another live booking
// for the same vehicle occupies an intersecting window.
var ErrBookingOverlap = errors.New("booking window overlaps an existing booking")

// Store contracts consumed by the services. The gorm repositories satisfy
// these; tests substitute in-memory implementations.

type VehicleListFilter struct {
	CategoryID *uuid.UUID
	BranchID   *uuid.UUID
	Status     *model.VehicleStatus
	Health     *model.HealthClass
}

type VehicleStore interface {
	Create(ctx context.Context, vehicle *model.Vehicle) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Vehicle, error)
	GetByRegistration(ctx context.Context, registration string) (*model.Vehicle, error)
	List(ctx context.Context, filter VehicleListFilter) ([]model.Vehicle, error)
	// Update persists the vehicle and returns the post-update record. A nil
	// record with a nil error means the row silently vanished under us,
	// which callers treat as a session integrity failure.
	Update(ctx context.Context, vehicle *model.Vehicle) (*model.Vehicle, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type BookingListFilter struct {
	VehicleID *uuid.UUID
	BranchID  *uuid.UUID
	Status    *model.BookingStatus
	StartFrom *time.Time
	StartTo   *time.Time
}

type BookingStore interface {
	Create(ctx context.Context, booking *model.Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	ListByVehicle(ctx context.Context, vehicleID uuid.UUID) ([]model.Booking, error)
	// ListOverlapping returns live bookings whose [start_at, end_at) window
	// intersects the given one, across all vehicles.
	ListOverlapping(ctx context.Context, start, end time.Time) ([]model.Booking, error)
	List(ctx context.Context, filter BookingListFilter) ([]model.Booking, error)
	Update(ctx context.Context, booking *model.Booking) (*model.Booking, error)
}

type IssueStore interface {
	Create(ctx context.Context, issue *model.Issue) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Issue, error)
	ListByVehicle(ctx context.Context, vehicleID uuid.UUID) ([]model.Issue, error)
	ListOpenByVehicle(ctx context.Context, vehicleID uuid.UUID) ([]model.Issue, error)
	CountOpen(ctx context.Context) (int64, error)
	Update(ctx context.Context, issue *model.Issue) (*model.Issue, error)
	SoftDelete(ctx context.Context, id uuid.UUID, reason string, actorID uuid.UUID) error
}

type ActivityStore interface {
	Append(ctx context.Context, entry *model.ActivityLog) error
	ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID) ([]model.ActivityLog, error)
}

type MileageStore interface {
	Create(ctx context.Context, entry *model.MileageLog) error
	ListByVehicle(ctx context.Context, vehicleID uuid.UUID) ([]model.MileageLog, error)
}

// Notifier delivers booking events to the external notification service.
// Delivery is best effort and never fails the business operation.
type Notifier interface {
	BookingCreated(ctx context.Context, booking *model.Booking) error
}
