package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MileageLog is one odometer reading for a vehicle. The vehicle row carries
// the latest value; the log keeps the history.
type MileageLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	VehicleID  uuid.UUID `gorm:"type:uuid;not null;index" json:"vehicle_id"`
	Mileage    int64     `gorm:"not null" json:"mileage"`
	RecordedAt time.Time `gorm:"not null;index" json:"recorded_at"`
	RecordedBy uuid.UUID `gorm:"type:uuid;not null" json:"recorded_by"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (MileageLog) TableName() string {
	return "mileage_logs"
}

func (m *MileageLog) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.RecordedAt.IsZero() {
		m.RecordedAt = time.Now()
	}
	return nil
}
