package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EntityEventType discriminates entity activity log payload shapes
type EntityEventType int

const (
	EntityCreatedEvent EntityEventType = iota + 1
	EntityUpdatedEvent
	EntityDeactivatedEvent
	EntityReactivatedEvent
)

// Entity status values
const (
	EntityStatusActive      = "active"
	EntityStatusDeactivated = "deactivated"
)

// Entity is a legal entity under a client account
type Entity struct {
	ID                  uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID            uuid.UUID      `json:"tenant_id" gorm:"type:uuid;not null;uniqueIndex:idx_tenant_entity_code"`
	AccountID           uuid.UUID      `json:"account_id" gorm:"type:uuid;not null;uniqueIndex:idx_account_entity_name"`
	Name                string         `json:"name" gorm:"type:varchar(100);not null;uniqueIndex:idx_account_entity_name"`
	Code                string         `json:"code" gorm:"type:varchar(100);not null;uniqueIndex:idx_tenant_entity_code"`
	DoingBusinessAs     string         `json:"doing_business_as" gorm:"type:varchar(100)"`
	Type                string         `json:"type" gorm:"type:varchar(50)"`
	Country             string         `json:"country" gorm:"type:varchar(100)"`
	State               string         `json:"state" gorm:"type:varchar(100)"`
	County              string         `json:"county" gorm:"type:varchar(100)"`
	City                string         `json:"city" gorm:"type:varchar(100)"`
	Address             string         `json:"address" gorm:"type:varchar(200)"`
	Zip                 string         `json:"zip" gorm:"type:varchar(20)"`
	Fein                string         `json:"fein" gorm:"type:varchar(20)"`
	TaxYearEndType      string         `json:"tax_year_end_type" gorm:"type:varchar(50)"`
	DateOfIncorporation *time.Time     `json:"date_of_incorporation,omitempty"`
	Status              string         `json:"status" gorm:"type:varchar(20);default:'active'"`
	DeactivatedAt       *time.Time     `json:"deactivated_at,omitempty"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	DeletedAt           gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Account Account `json:"account,omitempty" gorm:"foreignKey:AccountID"`
}

func (e *Entity) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// EntityActivityLog is the append-only audit trail for a legal entity
type EntityActivityLog struct {
	TenantID  uuid.UUID `json:"tenant_id" gorm:"type:uuid;primaryKey"`
	EntityID  uuid.UUID `json:"entity_id" gorm:"type:uuid;primaryKey"`
	Date      time.Time `json:"date" gorm:"primaryKey"`
	EventType int       `json:"event_type"`
	Revision  int64     `json:"revision"`
	Event     string    `json:"event" gorm:"type:text"`
}
