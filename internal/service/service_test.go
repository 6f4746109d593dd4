package service

import (
	"testing"
	"time"

	"practice-service/internal/model"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// stubClock hands out strictly increasing timestamps so consecutive
// activity log rows never collide on the (tenant, entity, date) key
type stubClock struct {
	next time.Time
}

func newStubClock() *stubClock {
	return &stubClock{next: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *stubClock) Now() time.Time {
	now := c.next
	c.next = c.next.Add(time.Second)
	return now
}

// last returns the most recently handed-out timestamp
func (c *stubClock) last() time.Time {
	return c.next.Add(-time.Second)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.All()...))
	return db
}

func seedTenant(t *testing.T, db *gorm.DB, name string) *model.Tenant {
	t.Helper()
	tenant := &model.Tenant{
		Name:    name,
		Status:  model.TenantStatusActive,
		OwnerID: uuid.New(),
	}
	require.NoError(t, db.Create(tenant).Error)
	return tenant
}

func seedUser(t *testing.T, db *gorm.DB, email string) *model.User {
	t.Helper()
	user := &model.User{
		Email:     email,
		FirstName: "Test",
		LastName:  "User",
		Status:    model.UserStatusActive,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedMembership(t *testing.T, db *gorm.DB, tenantID, userID uuid.UUID) {
	t.Helper()
	require.NoError(t, db.Create(&model.TenantUser{
		TenantID: tenantID,
		UserID:   userID,
		Active:   true,
	}).Error)
}

func testActor() Actor {
	return Actor{ID: uuid.New(), FullName: "Pat Reviewer", Roles: "Admin"}
}
