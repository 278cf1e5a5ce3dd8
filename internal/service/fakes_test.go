package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fleet-service/internal/model"
)

// In-memory store fakes. The booking fake enforces the same non-overlap
// guarantee the storage layer's exclusion constraint provides, so write-path
// tests see realistic conflict behaviour.

type fakeVehicleStore struct {
	vehicles map[uuid.UUID]*model.Vehicle
}

func newFakeVehicleStore() *fakeVehicleStore {
	return &fakeVehicleStore{vehicles: make(map[uuid.UUID]*model.Vehicle)}
}

func (s *fakeVehicleStore) Create(_ context.Context, vehicle *model.Vehicle) error {
	if vehicle.ID == uuid.Nil {
		vehicle.ID = uuid.New()
	}
	copied := *vehicle
	s.vehicles[vehicle.ID] = &copied
	return nil
}

func (s *fakeVehicleStore) GetByID(_ context.Context, id uuid.UUID) (*model.Vehicle, error) {
	vehicle, ok := s.vehicles[id]
	if !ok {
		return nil, nil
	}
	copied := *vehicle
	return &copied, nil
}

func (s *fakeVehicleStore) GetByRegistration(_ context.Context, registration string) (*model.Vehicle, error) {
	for _, vehicle := range s.vehicles {
		if strings.EqualFold(vehicle.Registration, registration) {
			copied := *vehicle
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *fakeVehicleStore) List(_ context.Context, filter VehicleListFilter) ([]model.Vehicle, error) {
	var out []model.Vehicle
	for _, vehicle := range s.vehicles {
		if filter.CategoryID != nil && (vehicle.CategoryID == nil || *vehicle.CategoryID != *filter.CategoryID) {
			continue
		}
		if filter.BranchID != nil && (vehicle.BranchID == nil || *vehicle.BranchID != *filter.BranchID) {
			continue
		}
		if filter.Status != nil && vehicle.Status != *filter.Status {
			continue
		}
		if filter.Health != nil && vehicle.Health != *filter.Health {
			continue
		}
		out = append(out, *vehicle)
	}
	return out, nil
}

func (s *fakeVehicleStore) Update(_ context.Context, vehicle *model.Vehicle) (*model.Vehicle, error) {
	if _, ok := s.vehicles[vehicle.ID]; !ok {
		return nil, nil
	}
	copied := *vehicle
	s.vehicles[vehicle.ID] = &copied
	result := copied
	return &result, nil
}

func (s *fakeVehicleStore) SoftDelete(_ context.Context, id uuid.UUID) error {
	delete(s.vehicles, id)
	return nil
}

type fakeBookingStore struct {
	bookings map[uuid.UUID]*model.Booking
}

func newFakeBookingStore() *fakeBookingStore {
	return &fakeBookingStore{bookings: make(map[uuid.UUID]*model.Booking)}
}

func (s *fakeBookingStore) overlapsLive(candidate *model.Booking) bool {
	if !candidate.Live() {
		return false
	}
	for _, b := range s.bookings {
		if b.ID == candidate.ID || b.VehicleID != candidate.VehicleID || !b.Live() {
			continue
		}
		if candidate.StartAt.Before(b.EndAt) && candidate.EndAt.After(b.StartAt) {
			return true
		}
	}
	return false
}

func (s *fakeBookingStore) Create(_ context.Context, booking *model.Booking) error {
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	if s.overlapsLive(booking) {
		return ErrBookingOverlap
	}
	copied := *booking
	s.bookings[booking.ID] = &copied
	return nil
}

func (s *fakeBookingStore) GetByID(_ context.Context, id uuid.UUID) (*model.Booking, error) {
	booking, ok := s.bookings[id]
	if !ok {
		return nil, nil
	}
	copied := *booking
	return &copied, nil
}

func (s *fakeBookingStore) ListByVehicle(_ context.Context, vehicleID uuid.UUID) ([]model.Booking, error) {
	var out []model.Booking
	for _, b := range s.bookings {
		if b.VehicleID == vehicleID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (s *fakeBookingStore) ListOverlapping(_ context.Context, start, end time.Time) ([]model.Booking, error) {
	var out []model.Booking
	for _, b := range s.bookings {
		if !b.Live() {
			continue
		}
		if start.Before(b.EndAt) && end.After(b.StartAt) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (s *fakeBookingStore) List(_ context.Context, filter BookingListFilter) ([]model.Booking, error) {
	var out []model.Booking
	for _, b := range s.bookings {
		if filter.VehicleID != nil && b.VehicleID != *filter.VehicleID {
			continue
		}
		if filter.BranchID != nil && (b.BranchID == nil || *b.BranchID != *filter.BranchID) {
			continue
		}
		if filter.Status != nil && b.Status != *filter.Status {
			continue
		}
		if filter.StartFrom != nil && b.StartAt.Before(*filter.StartFrom) {
			continue
		}
		if filter.StartTo != nil && b.StartAt.After(*filter.StartTo) {
			continue
		}
		out = append(out, *b)
	}
	return out, nil
}

func (s *fakeBookingStore) Update(_ context.Context, booking *model.Booking) (*model.Booking, error) {
	if _, ok := s.bookings[booking.ID]; !ok {
		return nil, nil
	}
	if s.overlapsLive(booking) {
		return nil, ErrBookingOverlap
	}
	copied := *booking
	s.bookings[booking.ID] = &copied
	result := copied
	return &result, nil
}

type fakeIssueStore struct {
	issues map[uuid.UUID]*model.Issue
}

func newFakeIssueStore() *fakeIssueStore {
	return &fakeIssueStore{issues: make(map[uuid.UUID]*model.Issue)}
}

func (s *fakeIssueStore) Create(_ context.Context, issue *model.Issue) error {
	if issue.ID == uuid.Nil {
		issue.ID = uuid.New()
	}
	if issue.OpenedAt.IsZero() {
		issue.OpenedAt = time.Now()
	}
	copied := *issue
	s.issues[issue.ID] = &copied
	return nil
}

func (s *fakeIssueStore) GetByID(_ context.Context, id uuid.UUID) (*model.Issue, error) {
	issue, ok := s.issues[id]
	if !ok || issue.DeletedAt.Valid {
		return nil, nil
	}
	copied := *issue
	return &copied, nil
}

func (s *fakeIssueStore) ListByVehicle(_ context.Context, vehicleID uuid.UUID) ([]model.Issue, error) {
	var out []model.Issue
	for _, issue := range s.issues {
		if issue.VehicleID == vehicleID && !issue.DeletedAt.Valid {
			out = append(out, *issue)
		}
	}
	return out, nil
}

func (s *fakeIssueStore) ListOpenByVehicle(_ context.Context, vehicleID uuid.UUID) ([]model.Issue, error) {
	var out []model.Issue
	for _, issue := range s.issues {
		if issue.VehicleID == vehicleID && issue.Status == model.IssueStatusOpen && !issue.DeletedAt.Valid {
			out = append(out, *issue)
		}
	}
	return out, nil
}

func (s *fakeIssueStore) CountOpen(_ context.Context) (int64, error) {
	var count int64
	for _, issue := range s.issues {
		if issue.Status == model.IssueStatusOpen && !issue.DeletedAt.Valid {
			count++
		}
	}
	return count, nil
}

func (s *fakeIssueStore) Update(_ context.Context, issue *model.Issue) (*model.Issue, error) {
	if _, ok := s.issues[issue.ID]; !ok {
		return nil, nil
	}
	copied := *issue
	s.issues[issue.ID] = &copied
	result := copied
	return &result, nil
}

func (s *fakeIssueStore) SoftDelete(_ context.Context, id uuid.UUID, reason string, actorID uuid.UUID) error {
	issue, ok := s.issues[id]
	if !ok {
		return nil
	}
	issue.DeleteReason = &reason
	issue.DeletedBy = &actorID
	issue.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	return nil
}

type fakeActivityStore struct {
	entries []model.ActivityLog
}

func (s *fakeActivityStore) Append(_ context.Context, entry *model.ActivityLog) error {
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *fakeActivityStore) ListByEntity(_ context.Context, entityType string, entityID uuid.UUID) ([]model.ActivityLog, error) {
	var out []model.ActivityLog
	for _, entry := range s.entries {
		if entry.EntityType == entityType && entry.EntityID == entityID {
			out = append(out, entry)
		}
	}
	return out, nil
}

type fakeMileageStore struct {
	entries []model.MileageLog
}

func (s *fakeMileageStore) Create(_ context.Context, entry *model.MileageLog) error {
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *fakeMileageStore) ListByVehicle(_ context.Context, vehicleID uuid.UUID) ([]model.MileageLog, error) {
	var out []model.MileageLog
	for _, entry := range s.entries {
		if entry.VehicleID == vehicleID {
			out = append(out, entry)
		}
	}
	return out, nil
}

type fakeNotifier struct {
	delivered int
}

func (n *fakeNotifier) BookingCreated(_ context.Context, _ *model.Booking) error {
	n.delivered++
	return nil
}
