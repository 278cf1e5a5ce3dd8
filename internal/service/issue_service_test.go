package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"fleet-service/internal/model"
)

func newIssueFixture(t *testing.T) (*IssueService, *fakeIssueStore, *fakeVehicleStore, *model.Vehicle) {
	t.Helper()
	vehicles := newFakeVehicleStore()
	issues := newFakeIssueStore()
	activity := &fakeActivityStore{}
	vehicle := seedVehicle(t, vehicles, model.HealthExcellent)
	return NewIssueService(issues, vehicles, activity), issues, vehicles, vehicle
}

func dangerous() *string {
	s := string(model.IssuePriorityDangerous)
	return &s
}

func TestCreateDangerousIssueGroundsVehicle(t *testing.T) {
	svc, _, vehicles, vehicle := newIssueFixture(t)
	ctx := context.Background()
	principal := adminPrincipal()

	if _, err := svc.Create(ctx, principal, CreateIssueInput{
		VehicleID:   vehicle.ID.String(),
		Priority:    dangerous(),
		Description: "brake line leaking",
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	stored, err := vehicles.GetByID(ctx, vehicle.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Health != model.HealthGrounded {
		t.Fatalf("expected vehicle grounded after dangerous issue, got %s", stored.Health)
	}
}

func TestCloseIssueRestoresHealth(t *testing.T) {
	svc, _, vehicles, vehicle := newIssueFixture(t)
	ctx := context.Background()
	principal := adminPrincipal()

	issue, err := svc.Create(ctx, principal, CreateIssueInput{
		VehicleID:   vehicle.ID.String(),
		Priority:    dangerous(),
		Description: "brake line leaking",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Close(ctx, principal, issue.ID.String()); err != nil {
		t.Fatalf("Close: %v", err)
	}

	stored, err := vehicles.GetByID(ctx, vehicle.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Health != model.HealthExcellent {
		t.Fatalf("expected health restored after close, got %s", stored.Health)
	}

	// Closing twice is a conflict.
	if _, err := svc.Close(ctx, principal, issue.ID.String()); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict on double close, got %v", err)
	}
}

func TestDeleteIssueRequiresReasonAndRecomputes(t *testing.T) {
	svc, issues, vehicles, vehicle := newIssueFixture(t)
	ctx := context.Background()
	principal := adminPrincipal()

	issue, err := svc.Create(ctx, principal, CreateIssueInput{
		VehicleID:   vehicle.ID.String(),
		Priority:    dangerous(),
		Description: "brake line leaking",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Delete(ctx, principal, issue.ID.String(), ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty reason, got %v", err)
	}

	if err := svc.Delete(ctx, principal, issue.ID.String(), "duplicate of another report"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	open, err := issues.ListOpenByVehicle(ctx, vehicle.ID)
	if err != nil {
		t.Fatalf("ListOpenByVehicle: %v", err)
	}
	if len(open) != 0 {
		t.Fatalf("expected no open issues after delete, got %d", len(open))
	}

	stored, err := vehicles.GetByID(ctx, vehicle.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Health != model.HealthExcellent {
		t.Fatalf("expected health recomputed after delete, got %s", stored.Health)
	}
}

func TestManualOverrideIsSticky(t *testing.T) {
	svc, _, vehicles, vehicle := newIssueFixture(t)
	ctx := context.Background()
	principal := adminPrincipal()

	// Operator pins the vehicle healthy.
	vehicle.Health = model.HealthExcellent
	vehicle.HealthSource = model.HealthSourceManual
	vehicle.HealthSetBy = &principal.UserID
	if _, err := vehicles.Update(ctx, vehicle); err != nil {
		t.Fatalf("update vehicle: %v", err)
	}

	if _, err := svc.Create(ctx, principal, CreateIssueInput{
		VehicleID:   vehicle.ID.String(),
		Priority:    dangerous(),
		Description: "brake line leaking",
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	stored, err := vehicles.GetByID(ctx, vehicle.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Health != model.HealthExcellent {
		t.Fatalf("manual override must suspend rollup, got %s", stored.Health)
	}
	if stored.HealthSource != model.HealthSourceManual {
		t.Fatalf("override flag must survive issue mutations")
	}
}

func TestCreateIssueRejectsUnknownPriority(t *testing.T) {
	svc, _, _, vehicle := newIssueFixture(t)
	ctx := context.Background()

	bogus := "CATASTROPHIC"
	if _, err := svc.Create(ctx, adminPrincipal(), CreateIssueInput{
		VehicleID:   vehicle.ID.String(),
		Priority:    &bogus,
		Description: "something",
	}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown priority, got %v", err)
	}
}

func TestUntriagedIssueDoesNotAffectHealth(t *testing.T) {
	svc, _, vehicles, vehicle := newIssueFixture(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, adminPrincipal(), CreateIssueInput{
		VehicleID:   vehicle.ID.String(),
		Description: "rattle somewhere in the dashboard",
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	stored, err := vehicles.GetByID(ctx, vehicle.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Health != model.HealthExcellent {
		t.Fatalf("untriaged issue must not change health, got %s", stored.Health)
	}
}

func TestCreateIssueUnknownVehicle(t *testing.T) {
	svc, _, _, _ := newIssueFixture(t)
	if _, err := svc.Create(context.Background(), adminPrincipal(), CreateIssueInput{
		VehicleID:   uuid.New().String(),
		Description: "something",
	}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
