package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"fleet-service/internal/model"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidInput     = errors.New("invalid input")
	ErrConflict         = errors.New("conflict")
	ErrIntegrity        = errors.New("integrity failure")
)

// allowedTransitions is the booking state machine. Completed and cancelled
// are terminal.
var allowedTransitions = map[model.BookingStatus][]model.BookingStatus{
	model.BookingStatusDraft:          {model.BookingStatusActive, model.BookingStatusAdvanceNotPaid, model.BookingStatusCancelled},
	model.BookingStatusAdvanceNotPaid: {model.BookingStatusActive, model.BookingStatusCancelled},
	model.BookingStatusActive:         {model.BookingStatusDraft, model.BookingStatusCompleted, model.BookingStatusCancelled},
	model.BookingStatusCompleted:      {},
	model.BookingStatusCancelled:      {},
}

// CanTransition reports whether from -> to is a legal booking status change.
func CanTransition(from, to model.BookingStatus) bool {
	if from == to {
		return true
	}
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type BookingService struct {
	bookings BookingStore
	vehicles VehicleStore
	notifier Notifier
}

func NewBookingService(bookings BookingStore, vehicles VehicleStore, notifier Notifier) *BookingService {
	return &BookingService{
		bookings: bookings,
		vehicles: vehicles,
		notifier: notifier,
	}
}

type CreateBookingInput struct {
	VehicleID     string
	BranchID      string
	ClientName    string
	ClientPhone   string
	ClientEmail   string
	StartAt       string
	EndAt         string
	StartLocation string
	EndLocation   string
	Status        string
	Type          string
	ChauffeurName *string
}

func (s *BookingService) Create(ctx context.Context, principal model.Principal, input CreateBookingInput) (*model.Booking, error) {
	if !principal.IsAdmin() && !principal.IsManager() {
		return nil, ErrPermissionDenied
	}

	if input.VehicleID == "" {
		return nil, ErrInvalidInput
	}
	vehicleID, err := uuid.Parse(input.VehicleID)
	if err != nil {
		return nil, ErrInvalidInput
	}

	if input.ClientName == "" {
		return nil, ErrInvalidInput
	}
	if input.ClientPhone == "" && input.ClientEmail == "" {
		return nil, ErrInvalidInput
	}

	startAt, err := time.Parse(time.RFC3339, input.StartAt)
	if err != nil {
		return nil, ErrInvalidInput
	}
	endAt, err := time.Parse(time.RFC3339, input.EndAt)
	if err != nil {
		return nil, ErrInvalidInput
	}
	if !endAt.After(startAt) {
		return nil, ErrInvalidInput
	}

	status := model.BookingStatusDraft
	if input.Status != "" {
		status = model.BookingStatus(input.Status)
		if status != model.BookingStatusDraft && status != model.BookingStatusActive {
			return nil, ErrInvalidInput
		}
	}

	bookingType := model.BookingTypeSelfDrive
	if input.Type != "" {
		bookingType = model.BookingType(input.Type)
		switch bookingType {
		case model.BookingTypeSelfDrive, model.BookingTypeChauffeur, model.BookingTypeTransfer:
		default:
			return nil, ErrInvalidInput
		}
	}

	vehicle, err := s.vehicles.GetByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle == nil {
		return nil, ErrNotFound
	}

	var branchID *uuid.UUID
	if input.BranchID != "" {
		parsed, err := uuid.Parse(input.BranchID)
		if err != nil {
			return nil, ErrInvalidInput
		}
		branchID = &parsed
	} else {
		branchID = vehicle.BranchID
	}
	if !principal.CanAccessBranch(branchID) {
		return nil, ErrPermissionDenied
	}

	// Re-validate against a fresh read immediately before the write. The
	// caller has usually just run the availability search, but another
	// booking may have committed in the meantime.
	existing, err := s.bookings.ListByVehicle(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	windows := liveWindowsForVehicle(existing, vehicleID, nil)
	if HasConflict(windows, startAt, endAt, nil) {
		return nil, ErrConflict
	}

	booking := &model.Booking{
		VehicleID:     vehicleID,
		BranchID:      branchID,
		ClientName:    input.ClientName,
		ClientPhone:   input.ClientPhone,
		ClientEmail:   input.ClientEmail,
		StartAt:       startAt,
		EndAt:         endAt,
		StartLocation: input.StartLocation,
		EndLocation:   input.EndLocation,
		Status:        status,
		Type:          bookingType,
		// Snapshot of the vehicle's health at commit time. Immutable from
		// here on, even if the vehicle's health later changes.
		HealthAtBooking: vehicle.Health,
		ChauffeurName:   input.ChauffeurName,
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		// The exclusion constraint closes the gap between our fresh read
		// and the insert; a lost race surfaces as an overlap violation.
		if errors.Is(err, ErrBookingOverlap) {
			return nil, ErrConflict
		}
		return nil, err
	}

	if s.notifier != nil {
		// Delivery failures are logged by the client and never fail the booking.
		_ = s.notifier.BookingCreated(ctx, booking)
	}

	return booking, nil
}

type UpdateBookingInput struct {
	VehicleID     *string
	StartAt       *string
	EndAt         *string
	Status        *string
	ClientName    *string
	ClientPhone   *string
	ClientEmail   *string
	StartLocation *string
	EndLocation   *string
	ChauffeurName *string
}

func (s *BookingService) Update(ctx context.Context, principal model.Principal, id string, input UpdateBookingInput) (*model.Booking, error) {
	if !principal.IsAdmin() && !principal.IsManager() {
		return nil, ErrPermissionDenied
	}

	bookingID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrInvalidInput
	}

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, ErrNotFound
	}
	if !principal.CanAccessBranch(booking.BranchID) {
		return nil, ErrPermissionDenied
	}

	// Completed and cancelled bookings are history; only reads remain. This
	// holds even when the request echoes the current status back, so a
	// self-transition can never reopen a terminal record for edits.
	if booking.Terminal() {
		return nil, ErrConflict
	}

	if input.Status != nil {
		next := model.BookingStatus(*input.Status)
		switch next {
		case model.BookingStatusDraft, model.BookingStatusActive, model.BookingStatusAdvanceNotPaid,
			model.BookingStatusCompleted, model.BookingStatusCancelled:
		default:
			return nil, ErrInvalidInput
		}
		if !CanTransition(booking.Status, next) {
			return nil, ErrConflict
		}
		booking.Status = next
	}

	vehicleID := booking.VehicleID
	if input.VehicleID != nil {
		parsed, err := uuid.Parse(*input.VehicleID)
		if err != nil {
			return nil, ErrInvalidInput
		}
		vehicleID = parsed
	}

	startAt := booking.StartAt
	if input.StartAt != nil {
		startAt, err = time.Parse(time.RFC3339, *input.StartAt)
		if err != nil {
			return nil, ErrInvalidInput
		}
	}
	endAt := booking.EndAt
	if input.EndAt != nil {
		endAt, err = time.Parse(time.RFC3339, *input.EndAt)
		if err != nil {
			return nil, ErrInvalidInput
		}
	}
	if !endAt.After(startAt) {
		return nil, ErrInvalidInput
	}

	windowChanged := vehicleID != booking.VehicleID || !startAt.Equal(booking.StartAt) || !endAt.Equal(booking.EndAt)

	if vehicleID != booking.VehicleID {
		vehicle, err := s.vehicles.GetByID(ctx, vehicleID)
		if err != nil {
			return nil, err
		}
		if vehicle == nil {
			return nil, ErrNotFound
		}
	}

	if windowChanged && booking.Live() {
		existing, err := s.bookings.ListByVehicle(ctx, vehicleID)
		if err != nil {
			return nil, err
		}
		windows := liveWindowsForVehicle(existing, vehicleID, nil)
		if HasConflict(windows, startAt, endAt, &booking.ID) {
			return nil, ErrConflict
		}
	}

	booking.VehicleID = vehicleID
	booking.StartAt = startAt
	booking.EndAt = endAt
	if input.ClientName != nil {
		if *input.ClientName == "" {
			return nil, ErrInvalidInput
		}
		booking.ClientName = *input.ClientName
	}
	if input.ClientPhone != nil {
		booking.ClientPhone = *input.ClientPhone
	}
	if input.ClientEmail != nil {
		booking.ClientEmail = *input.ClientEmail
	}
	if booking.ClientPhone == "" && booking.ClientEmail == "" {
		return nil, ErrInvalidInput
	}
	if input.StartLocation != nil {
		booking.StartLocation = *input.StartLocation
	}
	if input.EndLocation != nil {
		booking.EndLocation = *input.EndLocation
	}
	if input.ChauffeurName != nil {
		booking.ChauffeurName = input.ChauffeurName
	}

	updated, err := s.bookings.Update(ctx, booking)
	if err != nil {
		if errors.Is(err, ErrBookingOverlap) {
			return nil, ErrConflict
		}
		return nil, err
	}
	if updated == nil {
		return nil, ErrIntegrity
	}

	return updated, nil
}

// Cancel is a status update, not a deletion. Cancelled bookings stay visible
// in history and stop contributing to conflict checks.
func (s *BookingService) Cancel(ctx context.Context, principal model.Principal, id string) (*model.Booking, error) {
	cancelled := string(model.BookingStatusCancelled)
	return s.Update(ctx, principal, id, UpdateBookingInput{Status: &cancelled})
}

func (s *BookingService) Get(ctx context.Context, principal model.Principal, id string) (*model.Booking, error) {
	bookingID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrInvalidInput
	}

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, ErrNotFound
	}
	if !principal.IsAdmin() && !principal.CanAccessBranch(booking.BranchID) {
		return nil, ErrPermissionDenied
	}
	return booking, nil
}

func (s *BookingService) List(ctx context.Context, principal model.Principal, filter BookingListFilter) ([]model.Booking, error) {
	if !principal.IsAdmin() {
		// A staff principal without a branch assignment has no scope to list
		// within, rather than an implicit view of everything.
		if principal.BranchID == nil {
			return nil, ErrPermissionDenied
		}
		filter.BranchID = principal.BranchID
	}
	return s.bookings.List(ctx, filter)
}
