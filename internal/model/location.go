package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LocationEventType discriminates location activity log payload shapes
type LocationEventType int

const (
	LocationCreatedEvent LocationEventType = iota + 1
	LocationUpdatedEvent
	LocationDeactivatedEvent
	LocationReactivatedEvent
)

// Location status values
const (
	LocationStatusActive      = "active"
	LocationStatusDeactivated = "deactivated"
)

// Location is a physical site of a client account
type Location struct {
	ID            uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID      uuid.UUID      `json:"tenant_id" gorm:"type:uuid;not null;uniqueIndex:idx_tenant_location_code"`
	AccountID     uuid.UUID      `json:"account_id" gorm:"type:uuid;not null;uniqueIndex:idx_account_location_name"`
	Name          string         `json:"name" gorm:"type:varchar(100);not null;uniqueIndex:idx_account_location_name"`
	Code          string         `json:"code" gorm:"type:varchar(100);not null;uniqueIndex:idx_tenant_location_code"`
	Type          string         `json:"type" gorm:"type:varchar(50)"`
	Country       string         `json:"country" gorm:"type:varchar(100)"`
	State         string         `json:"state" gorm:"type:varchar(100)"`
	County        string         `json:"county" gorm:"type:varchar(100)"`
	City          string         `json:"city" gorm:"type:varchar(100)"`
	Address       string         `json:"address" gorm:"type:varchar(200)"`
	Zip           string         `json:"zip" gorm:"type:varchar(20)"`
	StartDate     *time.Time     `json:"start_date,omitempty"`
	EndDate       *time.Time     `json:"end_date,omitempty"`
	Status        string         `json:"status" gorm:"type:varchar(20);default:'active'"`
	DeactivatedAt *time.Time     `json:"deactivated_at,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Account Account `json:"account,omitempty" gorm:"foreignKey:AccountID"`
}

func (l *Location) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// LocationActivityLog is the append-only audit trail for a location
type LocationActivityLog struct {
	TenantID   uuid.UUID `json:"tenant_id" gorm:"type:uuid;primaryKey"`
	LocationID uuid.UUID `json:"location_id" gorm:"type:uuid;primaryKey"`
	Date       time.Time `json:"date" gorm:"primaryKey"`
	EventType  int       `json:"event_type"`
	Revision   int64     `json:"revision"`
	Event      string    `json:"event" gorm:"type:text"`
}
