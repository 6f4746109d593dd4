package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DivisionEventType discriminates division activity log payload shapes
type DivisionEventType int

const (
	DivisionCreatedEvent DivisionEventType = iota + 1
	DivisionUpdatedEvent
)

// Division is the top level of a tenant's organizational structure
type Division struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID    uuid.UUID      `json:"tenant_id" gorm:"type:uuid;not null;uniqueIndex:idx_tenant_division_name"`
	Name        string         `json:"name" gorm:"type:varchar(100);not null;uniqueIndex:idx_tenant_division_name"`
	Description string         `json:"description" gorm:"type:text"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

func (d *Division) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// DivisionActivityLog is the append-only audit trail for a division
type DivisionActivityLog struct {
	TenantID   uuid.UUID `json:"tenant_id" gorm:"type:uuid;primaryKey"`
	DivisionID uuid.UUID `json:"division_id" gorm:"type:uuid;primaryKey"`
	Date       time.Time `json:"date" gorm:"primaryKey"`
	EventType  int       `json:"event_type"`
	Revision   int64     `json:"revision"`
	Event      string    `json:"event" gorm:"type:text"`
}
