package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Program statuses
const (
	ProgramStatusActive      = "active"
	ProgramStatusDeactivated = "deactivated"
)

// ProgramEventType discriminates program activity log payload shapes
type ProgramEventType int

const (
	ProgramCreatedEvent ProgramEventType = iota + 1
	ProgramUpdatedEvent
	ProgramDeactivatedEvent
	ProgramReactivatedEvent
)

// Program is an incentive or tax program administered for a tenant
type Program struct {
	ID             uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID       uuid.UUID      `json:"tenant_id" gorm:"type:uuid;not null;uniqueIndex:idx_tenant_program_name"`
	Name           string         `json:"name" gorm:"type:varchar(100);not null;uniqueIndex:idx_tenant_program_name"`
	Reference      string         `json:"reference" gorm:"type:varchar(200)"`
	Overview       string         `json:"overview" gorm:"type:text"`
	LegalAuthority string         `json:"legal_authority" gorm:"type:varchar(200)"`
	Agency         string         `json:"agency" gorm:"type:varchar(200)"`
	Jurisdiction   string         `json:"jurisdiction" gorm:"type:varchar(100)"`
	Status         string         `json:"status" gorm:"type:varchar(20);default:'active'"`
	DeactivatedAt  *time.Time     `json:"deactivated_at,omitempty"`
	StartDate      *time.Time     `json:"start_date,omitempty"`
	EndDate        *time.Time     `json:"end_date,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}

func (p *Program) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// ProgramActivityLog is the append-only audit trail for a program
type ProgramActivityLog struct {
	TenantID  uuid.UUID `json:"tenant_id" gorm:"type:uuid;primaryKey"`
	ProgramID uuid.UUID `json:"program_id" gorm:"type:uuid;primaryKey"`
	Date      time.Time `json:"date" gorm:"primaryKey"`
	EventType int       `json:"event_type"`
	Revision  int64     `json:"revision"`
	Event     string    `json:"event" gorm:"type:text"`
}
