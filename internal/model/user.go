package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User statuses
const (
	UserStatusActive      = "active"
	UserStatusDeactivated = "deactivated"
)

// UserEventType discriminates user activity log payload shapes
type UserEventType int

const (
	UserCreatedEvent UserEventType = iota + 1
	UserUpdatedEvent
	UserDeactivatedEvent
	UserReactivatedEvent
	UserRolesAssignEvent
	UserRolesUnassignEvent
)

// User represents a person who can sign in. Tenant membership is
// carried by TenantUser rows, so one user can belong to many tenants.
type User struct {
	ID            uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	Email         string         `json:"email" gorm:"type:varchar(100);uniqueIndex"`
	Password      string         `json:"-" gorm:"type:varchar(255)"`
	FirstName     string         `json:"first_name" gorm:"type:varchar(100)"`
	LastName      string         `json:"last_name" gorm:"type:varchar(100)"`
	Status        string         `json:"status" gorm:"type:varchar(20);default:'active'"`
	DeactivatedAt *time.Time     `json:"deactivated_at,omitempty"`
	DivisionID    *uuid.UUID     `json:"division_id,omitempty" gorm:"type:uuid;index"`
	DepartmentID  *uuid.UUID     `json:"department_id,omitempty" gorm:"type:uuid;index"`
	ServiceAreaID *uuid.UUID     `json:"service_area_id,omitempty" gorm:"type:uuid;index"`
	TeamID        *uuid.UUID     `json:"team_id,omitempty" gorm:"type:uuid;index"`
	JobTitleID    *uuid.UUID     `json:"job_title_id,omitempty" gorm:"type:uuid;index"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// FullName returns the user's display name
func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// UserActivityLog is the append-only audit trail for a user within a tenant
type UserActivityLog struct {
	TenantID  uuid.UUID `json:"tenant_id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;primaryKey"`
	Date      time.Time `json:"date" gorm:"primaryKey"`
	EventType int       `json:"event_type"`
	Revision  int64     `json:"revision"`
	Event     string    `json:"event" gorm:"type:text"`
}
