package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"fleet-service/internal/model"
)

type IssueService struct {
	issues   IssueStore
	vehicles VehicleStore
	activity ActivityStore
}

func NewIssueService(issues IssueStore, vehicles VehicleStore, activity ActivityStore) *IssueService {
	return &IssueService{
		issues:   issues,
		vehicles: vehicles,
		activity: activity,
	}
}

type CreateIssueInput struct {
	VehicleID   string
	Priority    *string
	Description string
}

func (s *IssueService) Create(ctx context.Context, principal model.Principal, input CreateIssueInput) (*model.Issue, error) {
	vehicleID, err := uuid.Parse(input.VehicleID)
	if err != nil {
		return nil, ErrInvalidInput
	}
	if input.Description == "" {
		return nil, ErrInvalidInput
	}

	priority, err := parsePriority(input.Priority)
	if err != nil {
		return nil, err
	}

	vehicle, err := s.vehicles.GetByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle == nil {
		return nil, ErrNotFound
	}

	issue := &model.Issue{
		VehicleID:   vehicleID,
		Priority:    priority,
		Status:      model.IssueStatusOpen,
		Description: input.Description,
	}
	if err := s.issues.Create(ctx, issue); err != nil {
		return nil, err
	}

	if err := s.recomputeHealth(ctx, principal, vehicle); err != nil {
		return nil, err
	}

	return issue, nil
}

type UpdateIssueInput struct {
	Priority    *string
	Description *string
}

func (s *IssueService) Update(ctx context.Context, principal model.Principal, id string, input UpdateIssueInput) (*model.Issue, error) {
	issue, err := s.getIssue(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Priority != nil {
		priority, err := parsePriority(input.Priority)
		if err != nil {
			return nil, err
		}
		issue.Priority = priority
	}
	if input.Description != nil {
		if *input.Description == "" {
			return nil, ErrInvalidInput
		}
		issue.Description = *input.Description
	}

	updated, err := s.issues.Update(ctx, issue)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrIntegrity
	}

	if err := s.recomputeHealthByID(ctx, principal, updated.VehicleID); err != nil {
		return nil, err
	}

	return updated, nil
}

func (s *IssueService) Close(ctx context.Context, principal model.Principal, id string) (*model.Issue, error) {
	issue, err := s.getIssue(ctx, id)
	if err != nil {
		return nil, err
	}
	if issue.Status == model.IssueStatusClosed {
		return nil, ErrConflict
	}

	now := time.Now()
	issue.Status = model.IssueStatusClosed
	issue.ClosedAt = &now

	updated, err := s.issues.Update(ctx, issue)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrIntegrity
	}

	if err := s.recomputeHealthByID(ctx, principal, updated.VehicleID); err != nil {
		return nil, err
	}

	return updated, nil
}

// Delete soft-deletes an issue with an audit trail entry carrying the reason
// and actor. The issue stops contributing to the health rollup.
func (s *IssueService) Delete(ctx context.Context, principal model.Principal, id string, reason string) error {
	if reason == "" {
		return ErrInvalidInput
	}

	issue, err := s.getIssue(ctx, id)
	if err != nil {
		return err
	}

	if err := s.issues.SoftDelete(ctx, issue.ID, reason, principal.UserID); err != nil {
		return err
	}

	if err := s.activity.Append(ctx, &model.ActivityLog{
		EntityType: "issue",
		EntityID:   issue.ID,
		Field:      "deleted",
		ActorID:    principal.UserID,
		Note:       &reason,
	}); err != nil {
		return err
	}

	return s.recomputeHealthByID(ctx, principal, issue.VehicleID)
}

func (s *IssueService) ListByVehicle(ctx context.Context, principal model.Principal, vehicleID string) ([]model.Issue, error) {
	id, err := uuid.Parse(vehicleID)
	if err != nil {
		return nil, ErrInvalidInput
	}
	return s.issues.ListByVehicle(ctx, id)
}

func (s *IssueService) getIssue(ctx context.Context, id string) (*model.Issue, error) {
	issueID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrInvalidInput
	}
	issue, err := s.issues.GetByID(ctx, issueID)
	if err != nil {
		return nil, err
	}
	if issue == nil {
		return nil, ErrNotFound
	}
	return issue, nil
}

func (s *IssueService) recomputeHealthByID(ctx context.Context, principal model.Principal, vehicleID uuid.UUID) error {
	vehicle, err := s.vehicles.GetByID(ctx, vehicleID)
	if err != nil {
		return err
	}
	if vehicle == nil {
		return ErrNotFound
	}
	return s.recomputeHealth(ctx, principal, vehicle)
}

// recomputeHealth re-derives the vehicle's health after an issue mutation.
// A manual override is sticky: the computed value is discarded and the
// stored health left untouched until the override is cleared.
func (s *IssueService) recomputeHealth(ctx context.Context, principal model.Principal, vehicle *model.Vehicle) error {
	if vehicle.HealthOverridden() {
		return nil
	}

	openIssues, err := s.issues.ListOpenByVehicle(ctx, vehicle.ID)
	if err != nil {
		return err
	}

	computed := ComputeHealth(openIssues)
	if computed == vehicle.Health {
		return nil
	}

	oldHealth := string(vehicle.Health)
	vehicle.Health = computed

	updated, err := s.vehicles.Update(ctx, vehicle)
	if err != nil {
		return err
	}
	if updated == nil {
		return ErrIntegrity
	}

	newHealth := string(computed)
	return s.activity.Append(ctx, &model.ActivityLog{
		EntityType: "vehicle",
		EntityID:   vehicle.ID,
		Field:      "health",
		OldValue:   &oldHealth,
		NewValue:   &newHealth,
		ActorID:    principal.UserID,
	})
}

func parsePriority(raw *string) (*model.IssuePriority, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	p := model.IssuePriority(*raw)
	switch p {
	case model.IssuePriorityDangerous, model.IssuePriorityImportant,
		model.IssuePriorityNiceToFix, model.IssuePriorityAesthetic:
		return &p, nil
	default:
		return nil, ErrInvalidInput
	}
}
