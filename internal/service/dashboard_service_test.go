package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"fleet-service/internal/model"
)

func TestDashboardSummary(t *testing.T) {
	vehicles := newFakeVehicleStore()
	bookings := newFakeBookingStore()
	issues := newFakeIssueStore()
	svc := NewDashboardService(vehicles, bookings, issues)
	ctx := context.Background()

	due := int64(40000)
	soon := time.Now().Add(10 * 24 * time.Hour)
	far := time.Now().Add(90 * 24 * time.Hour)

	serviceDue := &model.Vehicle{
		ID: uuid.New(), Registration: "VAN1",
		Health: model.HealthExcellent, Status: model.VehicleStatusAvailable,
		Mileage: 41000, NextServiceMileage: &due,
	}
	motExempt := &model.Vehicle{
		ID: uuid.New(), Registration: "VAN2",
		Health: model.HealthOK, Status: model.VehicleStatusOnHire,
		MOTExpiry: &soon, MOTNotApplicable: true,
	}
	insuranceSoon := &model.Vehicle{
		ID: uuid.New(), Registration: "VAN3",
		Health: model.HealthExcellent, Status: model.VehicleStatusAvailable,
		InsuranceExpiry: &soon, MOTExpiry: &far,
	}
	for _, v := range []*model.Vehicle{serviceDue, motExempt, insuranceSoon} {
		if err := vehicles.Create(ctx, v); err != nil {
			t.Fatalf("seed vehicle: %v", err)
		}
	}

	p := model.IssuePriorityImportant
	if err := issues.Create(ctx, &model.Issue{VehicleID: serviceDue.ID, Priority: &p, Status: model.IssueStatusOpen, Description: "x"}); err != nil {
		t.Fatalf("seed issue: %v", err)
	}

	if err := bookings.Create(ctx, &model.Booking{
		VehicleID:  insuranceSoon.ID,
		ClientName: "X",
		StartAt:    time.Now().Add(48 * time.Hour),
		EndAt:      time.Now().Add(72 * time.Hour),
		Status:     model.BookingStatusActive,
	}); err != nil {
		t.Fatalf("seed booking: %v", err)
	}

	summary, err := svc.Summary(ctx, adminPrincipal())
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}

	if summary.TotalVehicles != 3 {
		t.Fatalf("expected 3 vehicles, got %d", summary.TotalVehicles)
	}
	if summary.ByHealth[model.HealthExcellent] != 2 || summary.ByHealth[model.HealthOK] != 1 {
		t.Fatalf("unexpected health counts: %v", summary.ByHealth)
	}
	if len(summary.ServiceDue) != 1 || summary.ServiceDue[0].Registration != "VAN1" {
		t.Fatalf("expected VAN1 flagged for service, got %v", summary.ServiceDue)
	}
	if len(summary.DocumentsExpiring) != 1 || summary.DocumentsExpiring[0].Registration != "VAN3" {
		t.Fatalf("MOT-exempt vehicle must not be flagged; expected only VAN3, got %v", summary.DocumentsExpiring)
	}
	if summary.OpenIssues != 1 {
		t.Fatalf("expected 1 open issue, got %d", summary.OpenIssues)
	}
	if summary.UpcomingBookings != 1 {
		t.Fatalf("expected 1 upcoming booking, got %d", summary.UpcomingBookings)
	}
}

func TestDashboardSummaryRejectsBranchlessStaff(t *testing.T) {
	svc := NewDashboardService(newFakeVehicleStore(), newFakeBookingStore(), newFakeIssueStore())

	branchless := model.Principal{UserID: uuid.New(), Role: model.RoleManager}
	if _, err := svc.Summary(context.Background(), branchless); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied for branch-less manager, got %v", err)
	}
}
