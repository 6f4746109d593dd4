package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TeamEventType discriminates team activity log payload shapes
type TeamEventType int

const (
	TeamCreatedEvent TeamEventType = iota + 1
	TeamUpdatedEvent
)

// Team is a working group within a tenant
type Team struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID    uuid.UUID      `json:"tenant_id" gorm:"type:uuid;not null;uniqueIndex:idx_tenant_team_name"`
	Name        string         `json:"name" gorm:"type:varchar(100);not null;uniqueIndex:idx_tenant_team_name"`
	Description string         `json:"description" gorm:"type:text"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

func (t *Team) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TeamActivityLog is the append-only audit trail for a team
type TeamActivityLog struct {
	TenantID  uuid.UUID `json:"tenant_id" gorm:"type:uuid;primaryKey"`
	TeamID    uuid.UUID `json:"team_id" gorm:"type:uuid;primaryKey"`
	Date      time.Time `json:"date" gorm:"primaryKey"`
	EventType int       `json:"event_type"`
	Revision  int64     `json:"revision"`
	Event     string    `json:"event" gorm:"type:text"`
}
