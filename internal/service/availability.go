package service

import (
	"time"

	"github.com/google/uuid"

	"fleet-service/internal/model"
)

// BookingWindow is the slice of a booking the overlap check needs. Callers
// pre-filter windows to a single vehicle; the check itself never looks at
// vehicle identity.
type BookingWindow struct {
	ID     uuid.UUID
	Start  time.Time
	End    time.Time
	Status model.BookingStatus
}

// HasConflict reports whether the candidate [start, end) window overlaps any
// of the existing windows. Cancelled windows and the window matching
// excludeID (a booking re-validated against its own prior record) are
// skipped. Intervals are half-open: a booking ending exactly when another
// starts does not conflict.
func HasConflict(existing []BookingWindow, start, end time.Time, excludeID *uuid.UUID) bool {
	for _, w := range existing {
		if w.Status == model.BookingStatusCancelled {
			continue
		}
		if excludeID != nil && w.ID == *excludeID {
			continue
		}
		if start.Before(w.End) && end.After(w.Start) {
			return true
		}
	}
	return false
}

// EligibleVehicles filters the fleet down to vehicles that qualify for hire
// at all, independent of any time window. Personal-use and on-hire vehicles
// are out, as is anything grounded: health and operational status are
// independent grounding signals and either alone excludes the vehicle.
// Order-preserving, no mutation.
func EligibleVehicles(fleet []model.Vehicle) []model.Vehicle {
	eligible := make([]model.Vehicle, 0, len(fleet))
	for _, v := range fleet {
		if v.PersonalUse {
			continue
		}
		if v.OnHire {
			continue
		}
		if v.Health == model.HealthGrounded {
			continue
		}
		if v.Status == model.VehicleStatusGrounded {
			continue
		}
		eligible = append(eligible, v)
	}
	return eligible
}

// AvailableVehicles resolves which vehicles are both eligible and free of
// booking conflicts for the requested window. Completed and cancelled
// bookings never block; excludeBookingID removes a booking's own record when
// an edit is being re-validated. Fleet input order is preserved.
func AvailableVehicles(fleet []model.Vehicle, bookings []model.Booking, start, end time.Time, excludeBookingID *uuid.UUID) []model.Vehicle {
	eligible := EligibleVehicles(fleet)

	available := make([]model.Vehicle, 0, len(eligible))
	for _, v := range eligible {
		windows := liveWindowsForVehicle(bookings, v.ID, excludeBookingID)
		if !HasConflict(windows, start, end, nil) {
			available = append(available, v)
		}
	}
	return available
}

func liveWindowsForVehicle(bookings []model.Booking, vehicleID uuid.UUID, excludeBookingID *uuid.UUID) []BookingWindow {
	var windows []BookingWindow
	for _, b := range bookings {
		if b.VehicleID != vehicleID {
			continue
		}
		if !b.Live() {
			continue
		}
		if excludeBookingID != nil && b.ID == *excludeBookingID {
			continue
		}
		windows = append(windows, BookingWindow{
			ID:     b.ID,
			Start:  b.StartAt,
			End:    b.EndAt,
			Status: b.Status,
		})
	}
	return windows
}
