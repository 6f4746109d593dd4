package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ServiceAreaEventType discriminates service area activity log payload shapes
type ServiceAreaEventType int

const (
	ServiceAreaCreatedEvent ServiceAreaEventType = iota + 1
	ServiceAreaUpdatedEvent
)

// ServiceArea is a practice area within a tenant, optionally tied to a department
type ServiceArea struct {
	ID           uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID     uuid.UUID      `json:"tenant_id" gorm:"type:uuid;not null;uniqueIndex:idx_tenant_service_area_name"`
	Name         string         `json:"name" gorm:"type:varchar(100);not null;uniqueIndex:idx_tenant_service_area_name"`
	Description  string         `json:"description" gorm:"type:text"`
	DepartmentID *uuid.UUID     `json:"department_id,omitempty" gorm:"type:uuid;index"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Department *Department `json:"department,omitempty" gorm:"foreignKey:DepartmentID"`
}

func (sa *ServiceArea) BeforeCreate(tx *gorm.DB) error {
	if sa.ID == uuid.Nil {
		sa.ID = uuid.New()
	}
	return nil
}

// ServiceAreaActivityLog is the append-only audit trail for a service area
type ServiceAreaActivityLog struct {
	TenantID      uuid.UUID `json:"tenant_id" gorm:"type:uuid;primaryKey"`
	ServiceAreaID uuid.UUID `json:"service_area_id" gorm:"type:uuid;primaryKey"`
	Date          time.Time `json:"date" gorm:"primaryKey"`
	EventType     int       `json:"event_type"`
	Revision      int64     `json:"revision"`
	Event         string    `json:"event" gorm:"type:text"`
}
