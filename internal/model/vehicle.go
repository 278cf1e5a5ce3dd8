package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type HealthClass string

const (
	HealthExcellent HealthClass = "EXCELLENT"
	HealthOK        HealthClass = "OK"
	HealthGrounded  HealthClass = "GROUNDED"
)

// HealthSource records whether the stored health classification was derived
// from open issues or pinned by an operator. A MANUAL value freezes the
// classification until the override is explicitly cleared.
type HealthSource string

const (
	HealthSourceAuto   HealthSource = "AUTO"
	HealthSourceManual HealthSource = "MANUAL"
)

type VehicleStatus string

const (
	VehicleStatusAvailable VehicleStatus = "AVAILABLE"
	VehicleStatusOnHire    VehicleStatus = "ON_HIRE"
	VehicleStatusGrounded  VehicleStatus = "GROUNDED"
)

type Vehicle struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Registration       string         `gorm:"type:varchar(32);uniqueIndex;not null" json:"registration"`
	CategoryID         *uuid.UUID     `gorm:"type:uuid;index" json:"category_id"`
	BranchID           *uuid.UUID     `gorm:"type:uuid;index" json:"branch_id"`
	Health             HealthClass    `gorm:"type:vehicle_health;not null;default:EXCELLENT" json:"health"`
	HealthSource       HealthSource   `gorm:"type:vehicle_health_source;not null;default:AUTO" json:"health_source"`
	HealthSetBy        *uuid.UUID     `gorm:"type:uuid" json:"health_set_by"`
	HealthSetAt        *time.Time     `json:"health_set_at"`
	Status             VehicleStatus  `gorm:"type:vehicle_status;not null;default:AVAILABLE" json:"status"`
	PersonalUse        bool           `gorm:"not null;default:false" json:"personal_use"`
	OnHire             bool           `gorm:"not null;default:false" json:"on_hire"`
	OnHireLocation     *string        `gorm:"type:text" json:"on_hire_location"`
	Mileage            int64          `gorm:"not null;default:0" json:"mileage"`
	NextServiceMileage *int64         `json:"next_service_mileage"`
	InsuranceExpiry    *time.Time     `json:"insurance_expiry"`
	MOTExpiry          *time.Time     `json:"mot_expiry"`
	MOTNotApplicable   bool           `gorm:"not null;default:false" json:"mot_not_applicable"`
	CreatedAt          time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Vehicle) TableName() string {
	return "vehicles"
}

func (v *Vehicle) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// HealthOverridden reports whether the automatic rollup is suspended for
// this vehicle.
func (v *Vehicle) HealthOverridden() bool {
	return v.HealthSource == HealthSourceManual
}
