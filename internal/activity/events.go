package activity

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EventBase carries the actor identity and timestamp every event records
type EventBase struct {
	ExecutorID       uuid.UUID `json:"executor_id"`
	ExecutorRoles    string    `json:"executor_roles"`
	ExecutorFullName string    `json:"executor_full_name"`
	Date             time.Time `json:"date"`
}

// EntityCreatedEvent records the creation of an owning entity
type EntityCreatedEvent struct {
	EventBase
	CreatedName string `json:"created_name"`
}

// EntityUpdatedEvent records a field-level change with full before and
// after snapshots of the entity's editable fields
type EntityUpdatedEvent struct {
	EventBase
	PreviousValues string `json:"previous_values"`
	CurrentValues  string `json:"current_values"`
}

// StatusChangedEvent records a deactivation or reactivation
type StatusChangedEvent struct {
	EventBase
	Status string `json:"status"`
}

// RolesChangedEvent records role assignment or removal for a user
type RolesChangedEvent struct {
	EventBase
	Roles    []string `json:"roles"`
	Assigned bool     `json:"assigned"`
}

// TenantAccessEvent records a user entering or exiting a tenant context
type TenantAccessEvent struct {
	EventBase
	Entered bool `json:"entered"`
}

// CreatedDecoder decodes EntityCreatedEvent payloads for the given noun
func CreatedDecoder(noun string) Decoder {
	return func(raw string) (Item, error) {
		var e EntityCreatedEvent
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			return Item{}, err
		}
		return Item{
			Date:     e.Date,
			FullName: e.ExecutorFullName,
			Message:  fmt.Sprintf("%s %q created", noun, e.CreatedName),
		}, nil
	}
}

// UpdatedDecoder decodes EntityUpdatedEvent payloads for the given noun
func UpdatedDecoder(noun string) Decoder {
	return func(raw string) (Item, error) {
		var e EntityUpdatedEvent
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			return Item{}, err
		}
		return Item{
			Date:     e.Date,
			FullName: e.ExecutorFullName,
			Message:  noun + " details updated",
		}, nil
	}
}

// StatusDecoder decodes StatusChangedEvent payloads for the given noun
func StatusDecoder(noun string) Decoder {
	return func(raw string) (Item, error) {
		var e StatusChangedEvent
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			return Item{}, err
		}
		return Item{
			Date:     e.Date,
			FullName: e.ExecutorFullName,
			Message:  fmt.Sprintf("%s set to %s", noun, e.Status),
		}, nil
	}
}

// RolesDecoder decodes RolesChangedEvent payloads
func RolesDecoder() Decoder {
	return func(raw string) (Item, error) {
		var e RolesChangedEvent
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			return Item{}, err
		}
		verb := "unassigned from"
		if e.Assigned {
			verb = "assigned to"
		}
		return Item{
			Date:     e.Date,
			FullName: e.ExecutorFullName,
			Message:  fmt.Sprintf("Roles %s %s user", strings.Join(e.Roles, ", "), verb),
		}, nil
	}
}

// TenantAccessDecoder decodes TenantAccessEvent payloads
func TenantAccessDecoder() Decoder {
	return func(raw string) (Item, error) {
		var e TenantAccessEvent
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			return Item{}, err
		}
		verb := "exited"
		if e.Entered {
			verb = "entered"
		}
		return Item{
			Date:     e.Date,
			FullName: e.ExecutorFullName,
			Message:  fmt.Sprintf("User %s the tenant", verb),
		}, nil
	}
}
