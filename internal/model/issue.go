package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type IssuePriority string

const (
	IssuePriorityDangerous IssuePriority = "DANGEROUS"
	IssuePriorityImportant IssuePriority = "IMPORTANT"
	IssuePriorityNiceToFix IssuePriority = "NICE_TO_FIX"
	IssuePriorityAesthetic IssuePriority = "AESTHETIC"
)

type IssueStatus string

const (
	IssueStatusOpen   IssueStatus = "OPEN"
	IssueStatusClosed IssueStatus = "CLOSED"
)

// Issue is a reported fault (snag) against a vehicle. Priority is nil until
// triaged. Issues are soft-deleted with a reason and actor, never removed.
type Issue struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	VehicleID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"vehicle_id"`
	Priority     *IssuePriority `gorm:"type:issue_priority" json:"priority"`
	Status       IssueStatus    `gorm:"type:issue_status;not null;default:OPEN" json:"status"`
	Description  string         `gorm:"type:text;not null" json:"description"`
	OpenedAt     time.Time      `gorm:"not null" json:"opened_at"`
	ClosedAt     *time.Time     `json:"closed_at"`
	DeleteReason *string        `gorm:"type:text" json:"delete_reason,omitempty"`
	DeletedBy    *uuid.UUID     `gorm:"type:uuid" json:"deleted_by,omitempty"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Issue) TableName() string {
	return "issues"
}

func (i *Issue) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	if i.OpenedAt.IsZero() {
		i.OpenedAt = time.Now()
	}
	return nil
}
