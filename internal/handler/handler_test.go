package handler

import (
	"os"
	"testing"

	"practice-service/internal/model"
	"practice-service/pkg/config"
	"practice-service/prometheus"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	// Metric collectors register globally, so initialize them once
	prometheus.InitMetrics(&config.Config{Metrics: config.MetricsConfig{Prefix: "test"}})
	os.Exit(m.Run())
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
	tenant := &model.Tenant{Name: name, Status: model.TenantStatusActive, OwnerID: uuid.New()}
	require.NoError(t, db.Create(tenant).Error)
	return tenant
}

// authedContext sets the values the auth middleware would have stored
// from validated claims
func authedContext(c echo.Context, tenantID uuid.UUID) {
	c.Set("user_id", uuid.New())
	c.Set("email", "tester@firm.test")
	c.Set("full_name", "Test User")
	c.Set("tenant_id", tenantID)
	c.Set("tenant_name", "Test Tenant")
	c.Set("roles", "Admin")
}
