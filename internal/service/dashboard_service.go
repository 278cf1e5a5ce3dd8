package service

import (
	"context"
	"time"

	"fleet-service/internal/model"
)

type DashboardService struct {
	vehicles VehicleStore
	bookings BookingStore
	issues   IssueStore
}

func NewDashboardService(vehicles VehicleStore, bookings BookingStore, issues IssueStore) *DashboardService {
	return &DashboardService{
		vehicles: vehicles,
		bookings: bookings,
		issues:   issues,
	}
}

type VehicleAlert struct {
	VehicleID    string `json:"vehicle_id"`
	Registration string `json:"registration"`
	Reason       string `json:"reason"`
}

type DashboardSummary struct {
	TotalVehicles     int                         `json:"total_vehicles"`
	ByHealth          map[model.HealthClass]int   `json:"by_health"`
	ByStatus          map[model.VehicleStatus]int `json:"by_status"`
	OpenIssues        int64                       `json:"open_issues"`
	ServiceDue        []VehicleAlert              `json:"service_due"`
	DocumentsExpiring []VehicleAlert              `json:"documents_expiring"`
	UpcomingBookings  int                         `json:"upcoming_bookings"`
}

const documentExpiryWindow = 30 * 24 * time.Hour

// Summary assembles the fleet overview: health/status counts, vehicles due a
// service by mileage threshold, documents expiring within 30 days, and
// bookings starting in the next 7 days.
func (s *DashboardService) Summary(ctx context.Context, principal model.Principal) (*DashboardSummary, error) {
	filter := VehicleListFilter{}
	if !principal.IsAdmin() {
		if principal.BranchID == nil {
			return nil, ErrPermissionDenied
		}
		filter.BranchID = principal.BranchID
	}

	fleet, err := s.vehicles.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	summary := &DashboardSummary{
		TotalVehicles: len(fleet),
		ByHealth:      make(map[model.HealthClass]int),
		ByStatus:      make(map[model.VehicleStatus]int),
	}

	now := time.Now()
	expiryCutoff := now.Add(documentExpiryWindow)

	for _, v := range fleet {
		summary.ByHealth[v.Health]++
		summary.ByStatus[v.Status]++

		if v.NextServiceMileage != nil && v.Mileage >= *v.NextServiceMileage {
			summary.ServiceDue = append(summary.ServiceDue, VehicleAlert{
				VehicleID:    v.ID.String(),
				Registration: v.Registration,
				Reason:       "service mileage reached",
			})
		}
		if v.InsuranceExpiry != nil && v.InsuranceExpiry.Before(expiryCutoff) {
			summary.DocumentsExpiring = append(summary.DocumentsExpiring, VehicleAlert{
				VehicleID:    v.ID.String(),
				Registration: v.Registration,
				Reason:       "insurance expiring",
			})
		}
		if !v.MOTNotApplicable && v.MOTExpiry != nil && v.MOTExpiry.Before(expiryCutoff) {
			summary.DocumentsExpiring = append(summary.DocumentsExpiring, VehicleAlert{
				VehicleID:    v.ID.String(),
				Registration: v.Registration,
				Reason:       "MOT expiring",
			})
		}
	}

	openIssues, err := s.issues.CountOpen(ctx)
	if err != nil {
		return nil, err
	}
	summary.OpenIssues = openIssues

	weekAhead := now.Add(7 * 24 * time.Hour)
	upcoming, err := s.bookings.List(ctx, BookingListFilter{
		BranchID:  filter.BranchID,
		StartFrom: &now,
		StartTo:   &weekAhead,
	})
	if err != nil {
		return nil, err
	}
	for _, b := range upcoming {
		if b.Live() {
			summary.UpcomingBookings++
		}
	}

	return summary, nil
}
