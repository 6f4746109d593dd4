package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AccountEventType discriminates account activity log payload shapes
type AccountEventType int

const (
	AccountCreatedEvent AccountEventType = iota + 1
	AccountProfileUpdatedEvent
)

// Account represents a client organization served by a tenant
type Account struct {
	ID              uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID        uuid.UUID      `json:"tenant_id" gorm:"type:uuid;not null;uniqueIndex:idx_tenant_account_name"`
	Name            string         `json:"name" gorm:"type:varchar(100);not null;uniqueIndex:idx_tenant_account_name"`
	DoingBusinessAs string         `json:"doing_business_as" gorm:"type:varchar(100)"`
	Website         string         `json:"website" gorm:"type:varchar(200)"`
	Country         string         `json:"country" gorm:"type:varchar(50)"`
	State           string         `json:"state" gorm:"type:varchar(50)"`
	County          string         `json:"county" gorm:"type:varchar(50)"`
	City            string         `json:"city" gorm:"type:varchar(50)"`
	Address         string         `json:"address" gorm:"type:text"`
	PostalCode      string         `json:"postal_code" gorm:"type:varchar(20)"`
	Phone           string         `json:"phone" gorm:"type:varchar(20)"`
	CreatedBy       uuid.UUID      `json:"created_by" gorm:"type:uuid;index"`
	UpdatedBy       uuid.UUID      `json:"updated_by" gorm:"type:uuid"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `json:"-" gorm:"index"`
}

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// AccountActivityLog is the append-only audit trail for an account
type AccountActivityLog struct {
	TenantID  uuid.UUID `json:"tenant_id" gorm:"type:uuid;primaryKey"`
	AccountID uuid.UUID `json:"account_id" gorm:"type:uuid;primaryKey"`
	Date      time.Time `json:"date" gorm:"primaryKey"`
	EventType int       `json:"event_type"`
	Revision  int64     `json:"revision"`
	Event     string    `json:"event" gorm:"type:text"`
}
