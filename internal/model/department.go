package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DepartmentEventType discriminates department activity log payload shapes
type DepartmentEventType int

const (
	DepartmentCreatedEvent DepartmentEventType = iota + 1
	DepartmentUpdatedEvent
)

// Department belongs to a tenant and optionally to one of its divisions
type Department struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID    uuid.UUID      `json:"tenant_id" gorm:"type:uuid;not null;uniqueIndex:idx_tenant_department_name"`
	Name        string         `json:"name" gorm:"type:varchar(100);not null;uniqueIndex:idx_tenant_department_name"`
	Description string         `json:"description" gorm:"type:text"`
	DivisionID  *uuid.UUID     `json:"division_id,omitempty" gorm:"type:uuid;index"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Division *Division `json:"division,omitempty" gorm:"foreignKey:DivisionID"`
}

func (d *Department) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// DepartmentActivityLog is the append-only audit trail for a department
type DepartmentActivityLog struct {
	TenantID     uuid.UUID `json:"tenant_id" gorm:"type:uuid;primaryKey"`
	DepartmentID uuid.UUID `json:"department_id" gorm:"type:uuid;primaryKey"`
	Date         time.Time `json:"date" gorm:"primaryKey"`
	EventType    int       `json:"event_type"`
	Revision     int64     `json:"revision"`
	Event        string    `json:"event" gorm:"type:text"`
}
