package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"fleet-service/internal/model"
)

type AvailabilityService struct {
	vehicles VehicleStore
	bookings BookingStore
}

func NewAvailabilityService(vehicles VehicleStore, bookings BookingStore) *AvailabilityService {
	return &AvailabilityService{
		vehicles: vehicles,
		bookings: bookings,
	}
}

type AvailabilityInput struct {
	Start            time.Time
	End              time.Time
	CategoryID       *uuid.UUID
	BranchID         *uuid.UUID
	ExcludeBookingID *uuid.UUID
}

// Search returns the vehicles that are eligible and conflict-free for the
// requested window. When ExcludeBookingID is set (edit flow), the vehicle
// currently assigned to that booking is re-injected into the result even if
// it no longer passes eligibility, so an edit never silently drops the
// existing assignment.
func (s *AvailabilityService) Search(ctx context.Context, principal model.Principal, input AvailabilityInput) ([]model.Vehicle, error) {
	if !input.End.After(input.Start) {
		return nil, ErrInvalidInput
	}

	fleet, err := s.vehicles.List(ctx, VehicleListFilter{
		CategoryID: input.CategoryID,
		BranchID:   input.BranchID,
	})
	if err != nil {
		return nil, err
	}

	bookings, err := s.bookings.ListOverlapping(ctx, input.Start, input.End)
	if err != nil {
		return nil, err
	}

	available := AvailableVehicles(fleet, bookings, input.Start, input.End, input.ExcludeBookingID)

	if input.ExcludeBookingID != nil {
		available, err = s.reinjectAssignedVehicle(ctx, available, bookings, input)
		if err != nil {
			return nil, err
		}
	}

	return available, nil
}

func (s *AvailabilityService) reinjectAssignedVehicle(ctx context.Context, available []model.Vehicle, bookings []model.Booking, input AvailabilityInput) ([]model.Vehicle, error) {
	booking, err := s.bookings.GetByID(ctx, *input.ExcludeBookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return available, nil
	}

	for _, v := range available {
		if v.ID == booking.VehicleID {
			return available, nil
		}
	}

	// The assigned vehicle may have become ineligible since the booking was
	// made (grounded, sent on hire). It stays a candidate as long as the
	// requested window is free of other bookings.
	windows := liveWindowsForVehicle(bookings, booking.VehicleID, input.ExcludeBookingID)
	if HasConflict(windows, input.Start, input.End, nil) {
		return available, nil
	}

	vehicle, err := s.vehicles.GetByID(ctx, booking.VehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle == nil {
		return available, nil
	}

	return append(available, *vehicle), nil
}
