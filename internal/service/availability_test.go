package service

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"fleet-service/internal/model"
)

func mustTime(t *testing.T, raw string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	return parsed
}

func window(t *testing.T, start, end string, status model.BookingStatus) BookingWindow {
	t.Helper()
	return BookingWindow{
		ID:     uuid.New(),
		Start:  mustTime(t, start),
		End:    mustTime(t, end),
		Status: status,
	}
}

func TestHasConflictOverlap(t *testing.T) {
	existing := []BookingWindow{
		window(t, "2026-09-01T10:00:00Z", "2026-09-03T10:00:00Z", model.BookingStatusActive),
	}

	cases := []struct {
		name  string
		start string
		end   string
		want  bool
	}{
		{"fully inside", "2026-09-01T12:00:00Z", "2026-09-02T12:00:00Z", true},
		{"fully covering", "2026-08-31T00:00:00Z", "2026-09-04T00:00:00Z", true},
		{"overlapping tail", "2026-09-02T00:00:00Z", "2026-09-05T00:00:00Z", true},
		{"overlapping head", "2026-08-30T00:00:00Z", "2026-09-01T12:00:00Z", true},
		{"well before", "2026-08-01T00:00:00Z", "2026-08-05T00:00:00Z", false},
		{"well after", "2026-09-10T00:00:00Z", "2026-09-12T00:00:00Z", false},
	}

	for _, tc := range cases {
		got := HasConflict(existing, mustTime(t, tc.start), mustTime(t, tc.end), nil)
		if got != tc.want {
			t.Fatalf("%s: HasConflict = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestHasConflictHalfOpenBoundary(t *testing.T) {
	existing := []BookingWindow{
		window(t, "2026-09-01T10:00:00Z", "2026-09-03T10:00:00Z", model.BookingStatusActive),
	}

	// A booking starting exactly when the existing one ends is allowed.
	if HasConflict(existing, mustTime(t, "2026-09-03T10:00:00Z"), mustTime(t, "2026-09-05T10:00:00Z"), nil) {
		t.Fatalf("expected no conflict for back-to-back booking at existing end")
	}
	// Likewise ending exactly when the existing one starts.
	if !HasConflict(existing, mustTime(t, "2026-08-30T10:00:00Z"), mustTime(t, "2026-09-01T10:00:01Z"), nil) {
		t.Fatalf("expected conflict for one second of overlap")
	}
	if HasConflict(existing, mustTime(t, "2026-08-30T10:00:00Z"), mustTime(t, "2026-09-01T10:00:00Z"), nil) {
		t.Fatalf("expected no conflict for booking ending at existing start")
	}
}

func TestHasConflictSkipsCancelled(t *testing.T) {
	existing := []BookingWindow{
		window(t, "2026-09-01T00:00:00Z", "2026-09-10T00:00:00Z", model.BookingStatusCancelled),
	}

	if HasConflict(existing, mustTime(t, "2026-09-02T00:00:00Z"), mustTime(t, "2026-09-04T00:00:00Z"), nil) {
		t.Fatalf("cancelled booking must not block the window")
	}
}

func TestHasConflictExcludesOwnBooking(t *testing.T) {
	own := window(t, "2026-09-01T00:00:00Z", "2026-09-05T00:00:00Z", model.BookingStatusActive)
	other := window(t, "2026-09-06T00:00:00Z", "2026-09-08T00:00:00Z", model.BookingStatusActive)
	existing := []BookingWindow{own, other}

	// Extending a booking over its own previous window is fine.
	if HasConflict(existing, mustTime(t, "2026-09-01T00:00:00Z"), mustTime(t, "2026-09-06T00:00:00Z"), &own.ID) {
		t.Fatalf("booking must not conflict with its own prior window")
	}
	// But not over a neighbour.
	if !HasConflict(existing, mustTime(t, "2026-09-01T00:00:00Z"), mustTime(t, "2026-09-07T00:00:00Z"), &own.ID) {
		t.Fatalf("expected conflict with the neighbouring booking")
	}
	// Without the exclusion the same window conflicts with itself.
	if !HasConflict(existing, mustTime(t, "2026-09-01T00:00:00Z"), mustTime(t, "2026-09-06T00:00:00Z"), nil) {
		t.Fatalf("expected self-conflict without exclusion")
	}
}

func TestEligibleVehiclesIndependentSignals(t *testing.T) {
	clean := model.Vehicle{ID: uuid.New(), Registration: "AB12CDE", Health: model.HealthExcellent, Status: model.VehicleStatusAvailable}
	personal := clean
	personal.ID = uuid.New()
	personal.PersonalUse = true
	onHire := clean
	onHire.ID = uuid.New()
	onHire.OnHire = true
	groundedHealth := clean
	groundedHealth.ID = uuid.New()
	groundedHealth.Health = model.HealthGrounded
	groundedStatus := clean
	groundedStatus.ID = uuid.New()
	groundedStatus.Status = model.VehicleStatusGrounded
	okHealth := clean
	okHealth.ID = uuid.New()
	okHealth.Health = model.HealthOK

	fleet := []model.Vehicle{clean, personal, onHire, groundedHealth, groundedStatus, okHealth}
	eligible := EligibleVehicles(fleet)

	if len(eligible) != 2 {
		t.Fatalf("expected 2 eligible vehicles, got %d", len(eligible))
	}
	if eligible[0].ID != clean.ID || eligible[1].ID != okHealth.ID {
		t.Fatalf("unexpected eligible set or order")
	}
}

func TestEligibleVehiclesStatusAloneExcludes(t *testing.T) {
	// Grounded operational status excludes even when health reads excellent,
	// and the other way round.
	v := model.Vehicle{ID: uuid.New(), Health: model.HealthExcellent, Status: model.VehicleStatusGrounded}
	if len(EligibleVehicles([]model.Vehicle{v})) != 0 {
		t.Fatalf("grounded status with excellent health must be excluded")
	}
	v.Status = model.VehicleStatusAvailable
	v.Health = model.HealthGrounded
	if len(EligibleVehicles([]model.Vehicle{v})) != 0 {
		t.Fatalf("grounded health with available status must be excluded")
	}
}

func TestAvailableVehiclesResolvesConflicts(t *testing.T) {
	vanA := model.Vehicle{ID: uuid.New(), Registration: "VAN1", Health: model.HealthExcellent, Status: model.VehicleStatusAvailable}
	vanB := model.Vehicle{ID: uuid.New(), Registration: "VAN2", Health: model.HealthExcellent, Status: model.VehicleStatusAvailable}
	fleet := []model.Vehicle{vanA, vanB}

	bookings := []model.Booking{
		{
			ID:        uuid.New(),
			VehicleID: vanA.ID,
			StartAt:   mustTime(t, "2026-09-01T00:00:00Z"),
			EndAt:     mustTime(t, "2026-09-05T00:00:00Z"),
			Status:    model.BookingStatusActive,
		},
	}

	available := AvailableVehicles(fleet, bookings, mustTime(t, "2026-09-02T00:00:00Z"), mustTime(t, "2026-09-04T00:00:00Z"), nil)
	if len(available) != 1 || available[0].ID != vanB.ID {
		t.Fatalf("expected only the unbooked vehicle to be available")
	}

	// Completed bookings release the vehicle.
	bookings[0].Status = model.BookingStatusCompleted
	available = AvailableVehicles(fleet, bookings, mustTime(t, "2026-09-02T00:00:00Z"), mustTime(t, "2026-09-04T00:00:00Z"), nil)
	if len(available) != 2 {
		t.Fatalf("completed booking must not block availability")
	}
}

func TestAvailableVehiclesExcludeBookingOnEdit(t *testing.T) {
	van := model.Vehicle{ID: uuid.New(), Registration: "VAN1", Health: model.HealthExcellent, Status: model.VehicleStatusAvailable}
	editing := model.Booking{
		ID:        uuid.New(),
		VehicleID: van.ID,
		StartAt:   mustTime(t, "2026-09-01T00:00:00Z"),
		EndAt:     mustTime(t, "2026-09-05T00:00:00Z"),
		Status:    model.BookingStatusActive,
	}

	bookings := []model.Booking{editing}

	// Without exclusion the vehicle's own booking blocks it.
	available := AvailableVehicles([]model.Vehicle{van}, bookings, editing.StartAt, editing.EndAt, nil)
	if len(available) != 0 {
		t.Fatalf("expected no availability without exclusion")
	}

	// Excluding the booking under edit frees its own window.
	available = AvailableVehicles([]model.Vehicle{van}, bookings, editing.StartAt, editing.EndAt, &editing.ID)
	if len(available) != 1 || available[0].ID != van.ID {
		t.Fatalf("expected assigned vehicle to be available when its booking is excluded")
	}
}
