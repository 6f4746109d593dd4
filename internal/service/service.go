// Package service holds the tenant-scoped business operations. Every
// method takes the caller's tenant id (and an Actor for writes) as an
// explicit argument; nothing in this package reads ambient request
// state. Rows outside the caller's tenant are reported as not found.
package service

import (
	"errors"
	"time"

	"practice-service/internal/activity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a record does not exist or belongs
	// to a different tenant. The two cases must stay indistinguishable.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when a per-tenant uniqueness pre-check fails
	ErrDuplicate = errors.New("duplicate record")
)

// Clock supplies timestamps for audit columns and activity log keys
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

// RealClock returns a Clock backed by the system time in UTC
func RealClock() Clock { return realClock{} }

// Actor identifies who performs a write operation, for the audit trail
type Actor struct {
	ID       uuid.UUID
	FullName string
	Roles    string
}

// eventBase builds the actor/timestamp header shared by all event payloads
func eventBase(actor Actor, date time.Time) activity.EventBase {
	return activity.EventBase{
		ExecutorID:       actor.ID,
		ExecutorRoles:    actor.Roles,
		ExecutorFullName: actor.FullName,
		Date:             date,
	}
}

// normalizePage clamps paging parameters to sane bounds
func normalizePage(page, pageSize int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 10
	}
	return page, pageSize
}

// pageCount computes the number of pages for a row count
func pageCount(count int64, pageSize int) uint {
	return uint((count + int64(pageSize) - 1) / int64(pageSize))
}

// notFoundOr maps gorm's record-not-found onto the service sentinel
func notFoundOr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
