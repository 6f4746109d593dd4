package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContactEventType discriminates contact activity log payload shapes
type ContactEventType int

const (
	ContactCreatedEvent ContactEventType = iota + 1
	ContactUpdatedEvent
)

// Contact is a person at a client account
type Contact struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID  uuid.UUID      `json:"tenant_id" gorm:"type:uuid;not null;uniqueIndex:idx_tenant_contact_email"`
	AccountID uuid.UUID      `json:"account_id" gorm:"type:uuid;not null;index"`
	FirstName string         `json:"first_name" gorm:"type:varchar(100)"`
	LastName  string         `json:"last_name" gorm:"type:varchar(100)"`
	Email     string         `json:"email" gorm:"type:varchar(100);not null;uniqueIndex:idx_tenant_contact_email"`
	Phone     string         `json:"phone" gorm:"type:varchar(20)"`
	JobTitle  string         `json:"job_title" gorm:"type:varchar(100)"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Account Account `json:"account,omitempty" gorm:"foreignKey:AccountID"`
}

func (c *Contact) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// FullName returns the contact's display name
func (c *Contact) FullName() string {
	if c.FirstName == "" {
		return c.LastName
	}
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

// ContactActivityLog is the append-only audit trail for a contact
type ContactActivityLog struct {
	TenantID  uuid.UUID `json:"tenant_id" gorm:"type:uuid;primaryKey"`
	ContactID uuid.UUID `json:"contact_id" gorm:"type:uuid;primaryKey"`
	Date      time.Time `json:"date" gorm:"primaryKey"`
	EventType int       `json:"event_type"`
	Revision  int64     `json:"revision"`
	Event     string    `json:"event" gorm:"type:text"`
}
