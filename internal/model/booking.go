package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingStatusDraft          BookingStatus = "DRAFT"
	BookingStatusActive         BookingStatus = "ACTIVE"
	BookingStatusAdvanceNotPaid BookingStatus = "ADVANCE_NOT_PAID"
	BookingStatusCompleted      BookingStatus = "COMPLETED"
	BookingStatusCancelled      BookingStatus = "CANCELLED"
)

type BookingType string

const (
	BookingTypeSelfDrive BookingType = "SELF_DRIVE"
	BookingTypeChauffeur BookingType = "CHAUFFEUR"
	BookingTypeTransfer  BookingType = "TRANSFER"
)

type Booking struct {
	ID              uuid.UUID     `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	VehicleID       uuid.UUID     `gorm:"type:uuid;not null;index" json:"vehicle_id"`
	BranchID        *uuid.UUID    `gorm:"type:uuid;index" json:"branch_id"`
	ClientName      string        `gorm:"type:varchar(255);not null" json:"client_name"`
	ClientPhone     string        `gorm:"type:varchar(32)" json:"client_phone"`
	ClientEmail     string        `gorm:"type:varchar(255)" json:"client_email"`
	StartAt         time.Time     `gorm:"not null;index" json:"start_at"`
	EndAt           time.Time     `gorm:"not null" json:"end_at"`
	StartLocation   string        `gorm:"type:text" json:"start_location"`
	EndLocation     string        `gorm:"type:text" json:"end_location"`
	Status          BookingStatus `gorm:"type:booking_status;not null;default:DRAFT" json:"status"`
	Type            BookingType   `gorm:"type:booking_type;not null;default:SELF_DRIVE" json:"type"`
	HealthAtBooking HealthClass   `gorm:"type:vehicle_health;not null" json:"health_at_booking"`
	ChauffeurName   *string       `gorm:"type:varchar(255)" json:"chauffeur_name"`
	InvoiceID       *uuid.UUID    `gorm:"type:uuid" json:"invoice_id"`
	CreatedAt       time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Booking) TableName() string {
	return "bookings"
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Live reports whether the booking still occupies its vehicle's calendar.
// Cancelled and completed bookings never block other bookings.
func (b *Booking) Live() bool {
	return b.Status != BookingStatusCancelled && b.Status != BookingStatusCompleted
}

// Terminal reports whether no further status transition is allowed.
func (b *Booking) Terminal() bool {
	return b.Status == BookingStatusCompleted || b.Status == BookingStatusCancelled
}
