package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fleet-service/internal/model"
	"fleet-service/internal/utils"
)

type VehicleService struct {
	vehicles VehicleStore
	bookings BookingStore
	issues   IssueStore
	activity ActivityStore
	mileage  MileageStore
}

func NewVehicleService(
	vehicles VehicleStore,
	bookings BookingStore,
	issues IssueStore,
	activity ActivityStore,
	mileage MileageStore,
) *VehicleService {
	return &VehicleService{
		vehicles: vehicles,
		bookings: bookings,
		issues:   issues,
		activity: activity,
		mileage:  mileage,
	}
}

type CreateVehicleInput struct {
	Registration       string
	CategoryID         *string
	BranchID           *string
	PersonalUse        bool
	Mileage            int64
	NextServiceMileage *int64
	InsuranceExpiry    *string
	MOTExpiry          *string
	MOTNotApplicable   bool
}

func (s *VehicleService) Create(ctx context.Context, principal model.Principal, input CreateVehicleInput) (*model.Vehicle, error) {
	if !principal.IsAdmin() && !principal.IsManager() {
		return nil, ErrPermissionDenied
	}

	registration := utils.NormalizeRegistration(input.Registration)
	if registration == "" {
		return nil, ErrInvalidInput
	}

	existing, err := s.vehicles.GetByRegistration(ctx, registration)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrConflict
	}

	vehicle := &model.Vehicle{
		Registration:       registration,
		Health:             model.HealthExcellent,
		HealthSource:       model.HealthSourceAuto,
		Status:             model.VehicleStatusAvailable,
		PersonalUse:        input.PersonalUse,
		Mileage:            input.Mileage,
		NextServiceMileage: input.NextServiceMileage,
		MOTNotApplicable:   input.MOTNotApplicable,
	}

	if input.CategoryID != nil {
		id, err := uuid.Parse(*input.CategoryID)
		if err != nil {
			return nil, ErrInvalidInput
		}
		vehicle.CategoryID = &id
	}
	if input.BranchID != nil {
		id, err := uuid.Parse(*input.BranchID)
		if err != nil {
			return nil, ErrInvalidInput
		}
		vehicle.BranchID = &id
	}
	if input.InsuranceExpiry != nil {
		t, err := parseDate(*input.InsuranceExpiry)
		if err != nil {
			return nil, ErrInvalidInput
		}
		vehicle.InsuranceExpiry = &t
	}
	if input.MOTExpiry != nil {
		t, err := parseDate(*input.MOTExpiry)
		if err != nil {
			return nil, ErrInvalidInput
		}
		vehicle.MOTExpiry = &t
	}

	if err := s.vehicles.Create(ctx, vehicle); err != nil {
		return nil, err
	}

	return vehicle, nil
}

func (s *VehicleService) Get(ctx context.Context, principal model.Principal, id string) (*model.Vehicle, error) {
	vehicleID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrInvalidInput
	}
	vehicle, err := s.vehicles.GetByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle == nil {
		return nil, ErrNotFound
	}
	return vehicle, nil
}

func (s *VehicleService) List(ctx context.Context, principal model.Principal, filter VehicleListFilter) ([]model.Vehicle, error) {
	return s.vehicles.List(ctx, filter)
}

type MoveVehicleInput struct {
	BranchID       *string
	OnHire         bool
	OnHireLocation *string
}

// Move relocates a vehicle to a branch, or marks it out on hire with a
// free-text location. An activity entry records the change.
func (s *VehicleService) Move(ctx context.Context, principal model.Principal, id string, input MoveVehicleInput) (*model.Vehicle, error) {
	if !principal.IsAdmin() && !principal.IsManager() {
		return nil, ErrPermissionDenied
	}

	vehicle, err := s.Get(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	if !principal.CanAccessBranch(vehicle.BranchID) {
		return nil, ErrPermissionDenied
	}

	oldLocation := describeLocation(vehicle)

	if input.OnHire {
		vehicle.OnHire = true
		vehicle.Status = model.VehicleStatusOnHire
		vehicle.BranchID = nil
		vehicle.OnHireLocation = input.OnHireLocation
	} else {
		if input.BranchID == nil {
			return nil, ErrInvalidInput
		}
		branchID, err := uuid.Parse(*input.BranchID)
		if err != nil {
			return nil, ErrInvalidInput
		}
		vehicle.OnHire = false
		vehicle.OnHireLocation = nil
		vehicle.BranchID = &branchID
		if vehicle.Status == model.VehicleStatusOnHire {
			vehicle.Status = model.VehicleStatusAvailable
		}
	}

	updated, err := s.persistVehicle(ctx, vehicle)
	if err != nil {
		return nil, err
	}

	newLocation := describeLocation(updated)
	if err := s.appendActivity(ctx, principal, updated.ID, "location", &oldLocation, &newLocation, nil); err != nil {
		return nil, err
	}

	return updated, nil
}

// RecordMileage updates the odometer and appends a mileage log entry.
// Readings below the current value are rejected.
func (s *VehicleService) RecordMileage(ctx context.Context, principal model.Principal, id string, mileage int64) (*model.Vehicle, error) {
	vehicle, err := s.Get(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	if mileage < vehicle.Mileage {
		return nil, ErrInvalidInput
	}

	vehicle.Mileage = mileage
	updated, err := s.persistVehicle(ctx, vehicle)
	if err != nil {
		return nil, err
	}

	entry := &model.MileageLog{
		VehicleID:  updated.ID,
		Mileage:    mileage,
		RecordedAt: time.Now(),
		RecordedBy: principal.UserID,
	}
	if err := s.mileage.Create(ctx, entry); err != nil {
		return nil, err
	}

	return updated, nil
}

// OverrideHealth pins the vehicle's health to an operator-chosen value.
// While the override is in place, automatic rollup from issues is suspended.
func (s *VehicleService) OverrideHealth(ctx context.Context, principal model.Principal, id string, health model.HealthClass, note *string) (*model.Vehicle, error) {
	if !principal.IsAdmin() && !principal.IsManager() {
		return nil, ErrPermissionDenied
	}

	switch health {
	case model.HealthExcellent, model.HealthOK, model.HealthGrounded:
	default:
		return nil, ErrInvalidInput
	}

	vehicle, err := s.Get(ctx, principal, id)
	if err != nil {
		return nil, err
	}

	oldHealth := string(vehicle.Health)
	now := time.Now()
	vehicle.Health = health
	vehicle.HealthSource = model.HealthSourceManual
	vehicle.HealthSetBy = &principal.UserID
	vehicle.HealthSetAt = &now

	updated, err := s.persistVehicle(ctx, vehicle)
	if err != nil {
		return nil, err
	}

	newHealth := string(updated.Health)
	if err := s.appendActivity(ctx, principal, updated.ID, "health", &oldHealth, &newHealth, note); err != nil {
		return nil, err
	}

	return updated, nil
}

// ClearHealthOverride re-enables automatic rollup and recomputes immediately
// from the vehicle's open issues.
func (s *VehicleService) ClearHealthOverride(ctx context.Context, principal model.Principal, id string) (*model.Vehicle, error) {
	if !principal.IsAdmin() && !principal.IsManager() {
		return nil, ErrPermissionDenied
	}

	vehicle, err := s.Get(ctx, principal, id)
	if err != nil {
		return nil, err
	}

	openIssues, err := s.issues.ListOpenByVehicle(ctx, vehicle.ID)
	if err != nil {
		return nil, err
	}

	oldHealth := string(vehicle.Health)
	vehicle.Health = ComputeHealth(openIssues)
	vehicle.HealthSource = model.HealthSourceAuto
	vehicle.HealthSetBy = nil
	vehicle.HealthSetAt = nil

	updated, err := s.persistVehicle(ctx, vehicle)
	if err != nil {
		return nil, err
	}

	if string(updated.Health) != oldHealth {
		newHealth := string(updated.Health)
		if err := s.appendActivity(ctx, principal, updated.ID, "health", &oldHealth, &newHealth, nil); err != nil {
			return nil, err
		}
	}

	return updated, nil
}

// Delete soft-deletes a vehicle. Refused while the vehicle still has live
// bookings that have not ended.
func (s *VehicleService) Delete(ctx context.Context, principal model.Principal, id string) error {
	if !principal.IsAdmin() && !principal.IsManager() {
		return ErrPermissionDenied
	}

	vehicle, err := s.Get(ctx, principal, id)
	if err != nil {
		return err
	}

	bookings, err := s.bookings.ListByVehicle(ctx, vehicle.ID)
	if err != nil {
		return err
	}
	now := time.Now()
	for _, b := range bookings {
		if b.Live() && b.EndAt.After(now) {
			return ErrConflict
		}
	}

	return s.vehicles.SoftDelete(ctx, vehicle.ID)
}

func (s *VehicleService) Activity(ctx context.Context, principal model.Principal, id string) ([]model.ActivityLog, error) {
	vehicle, err := s.Get(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	return s.activity.ListByEntity(ctx, "vehicle", vehicle.ID)
}

func (s *VehicleService) MileageHistory(ctx context.Context, principal model.Principal, id string) ([]model.MileageLog, error) {
	vehicle, err := s.Get(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	return s.mileage.ListByVehicle(ctx, vehicle.ID)
}

func (s *VehicleService) persistVehicle(ctx context.Context, vehicle *model.Vehicle) (*model.Vehicle, error) {
	updated, err := s.vehicles.Update(ctx, vehicle)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrIntegrity
	}
	return updated, nil
}

func (s *VehicleService) appendActivity(ctx context.Context, principal model.Principal, vehicleID uuid.UUID, field string, oldValue, newValue, note *string) error {
	return s.activity.Append(ctx, &model.ActivityLog{
		EntityType: "vehicle",
		EntityID:   vehicleID,
		Field:      field,
		OldValue:   oldValue,
		NewValue:   newValue,
		ActorID:    principal.UserID,
		Note:       note,
	})
}

func describeLocation(v *model.Vehicle) string {
	if v.OnHire {
		if v.OnHireLocation != nil {
			return fmt.Sprintf("on hire: %s", *v.OnHireLocation)
		}
		return "on hire"
	}
	if v.BranchID != nil {
		return v.BranchID.String()
	}
	return "unassigned"
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}
