package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JobTitleEventType discriminates job title activity log payload shapes
type JobTitleEventType int

const (
	JobTitleCreatedEvent JobTitleEventType = iota + 1
	JobTitleUpdatedEvent
)

// JobTitle is a position within a tenant, optionally tied to a department
type JobTitle struct {
	ID           uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID     uuid.UUID      `json:"tenant_id" gorm:"type:uuid;not null;uniqueIndex:idx_tenant_job_title_name"`
	Name         string         `json:"name" gorm:"type:varchar(100);not null;uniqueIndex:idx_tenant_job_title_name"`
	Description  string         `json:"description" gorm:"type:text"`
	DepartmentID *uuid.UUID     `json:"department_id,omitempty" gorm:"type:uuid;index"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Department *Department `json:"department,omitempty" gorm:"foreignKey:DepartmentID"`
}

func (jt *JobTitle) BeforeCreate(tx *gorm.DB) error {
	if jt.ID == uuid.Nil {
		jt.ID = uuid.New()
	}
	return nil
}

// JobTitleActivityLog is the append-only audit trail for a job title
type JobTitleActivityLog struct {
	TenantID   uuid.UUID `json:"tenant_id" gorm:"type:uuid;primaryKey"`
	JobTitleID uuid.UUID `json:"job_title_id" gorm:"type:uuid;primaryKey"`
	Date       time.Time `json:"date" gorm:"primaryKey"`
	EventType  int       `json:"event_type"`
	Revision   int64     `json:"revision"`
	Event      string    `json:"event" gorm:"type:text"`
}
