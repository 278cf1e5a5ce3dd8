package service

import "fleet-service/internal/model"

// Rollup thresholds: any open dangerous issue grounds the vehicle; three or
// more open important issues drop it to OK.
const importantIssueThreshold = 3

// ComputeHealth derives a vehicle's health classification from its issue
// list. Closed and soft-deleted issues are re-filtered here even though
// callers pass open issues, since this value feeds the grounding decision.
func ComputeHealth(issues []model.Issue) model.HealthClass {
	dangerous := 0
	important := 0
	for _, issue := range issues {
		if issue.Status != model.IssueStatusOpen {
			continue
		}
		if issue.DeletedAt.Valid {
			continue
		}
		if issue.Priority == nil {
			continue
		}
		switch *issue.Priority {
		case model.IssuePriorityDangerous:
			dangerous++
		case model.IssuePriorityImportant:
			important++
		}
	}

	if dangerous > 0 {
		return model.HealthGrounded
	}
	if important >= importantIssueThreshold {
		return model.HealthOK
	}
	return model.HealthExcellent
}
