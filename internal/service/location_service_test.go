package service

import (
	"testing"
	"time"

	"practice-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocationCreateAndHistory(t *testing.T) {
	db := newTestDB(t)
	clock := newStubClock()
	locations := NewLocationService(db, clock)
	accounts := NewAccountService(db, clock)
	tenant := seedTenant(t, db, "Acme Tax")
	actor := testActor()

	account, err := accounts.Create(tenant.ID, actor, AccountInput{Name: "Globex"})
	require.NoError(t, err)

	location, err := locations.Create(tenant.ID, actor, LocationInput{
		AccountID: account.ID,
		Name:      "Headquarters",
		Code:      "LOC-001",
		Country:   "United States",
		City:      "Austin",
	})
	require.NoError(t, err)
	assert.Equal(t, "Globex", location.Account.Name)
	assert.Equal(t, model.LocationStatusActive, location.Status)

	var logs []model.LocationActivityLog
	require.NoError(t, db.Where("tenant_id = ? AND location_id = ?", tenant.ID, location.ID).Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, int(model.LocationCreatedEvent), logs[0].EventType)

	history, err := locations.ActivityHistory(tenant.ID, location.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, history.Items, 1)
	assert.Equal(t, `Location "Headquarters" created`, history.Items[0].Message)
}

func TestLocationDateValidation(t *testing.T) {
	db := newTestDB(t)
	clock := newStubClock()
	locations := NewLocationService(db, clock)
	accounts := NewAccountService(db, clock)
	tenant := seedTenant(t, db, "Acme Tax")
	actor := testActor()

	account, err := accounts.Create(tenant.ID, actor, AccountInput{Name: "Globex"})
	require.NoError(t, err)

	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(-24 * time.Hour)
	_, err = locations.Create(tenant.ID, actor, LocationInput{
		AccountID: account.ID,
		Name:      "Headquarters",
		Code:      "LOC-001",
		StartDate: &start,
		EndDate:   &end,
	})
	assert.Error(t, err)

	// No log row for the rejected create
	var count int64
	require.NoError(t, db.Model(&model.LocationActivityLog{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestLocationUniqueness(t *testing.T) {
	db := newTestDB(t)
	clock := newStubClock()
	locations := NewLocationService(db, clock)
	accounts := NewAccountService(db, clock)
	tenant := seedTenant(t, db, "Acme Tax")
	actor := testActor()

	account, err := accounts.Create(tenant.ID, actor, AccountInput{Name: "Globex"})
	require.NoError(t, err)
	other, err := accounts.Create(tenant.ID, actor, AccountInput{Name: "Initech"})
	require.NoError(t, err)

	_, err = locations.Create(tenant.ID, actor, LocationInput{
		AccountID: account.ID, Name: "Headquarters", Code: "LOC-001",
	})
	require.NoError(t, err)

	_, err = locations.Create(tenant.ID, actor, LocationInput{
		AccountID: account.ID, Name: "Headquarters", Code: "LOC-002",
	})
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = locations.Create(tenant.ID, actor, LocationInput{
		AccountID: other.ID, Name: "Headquarters", Code: "LOC-001",
	})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestLocationStatusLifecycle(t *testing.T) {
	db := newTestDB(t)
	clock := newStubClock()
	locations := NewLocationService(db, clock)
	accounts := NewAccountService(db, clock)
	tenant := seedTenant(t, db, "Acme Tax")
	actor := testActor()

	account, err := accounts.Create(tenant.ID, actor, AccountInput{Name: "Globex"})
	require.NoError(t, err)
	location, err := locations.Create(tenant.ID, actor, LocationInput{
		AccountID: account.ID, Name: "Headquarters", Code: "LOC-001",
	})
	require.NoError(t, err)

	location, err = locations.UpdateStatus(tenant.ID, actor, location.ID, model.LocationStatusDeactivated)
	require.NoError(t, err)
	assert.Equal(t, model.LocationStatusDeactivated, location.Status)
	require.NotNil(t, location.DeactivatedAt)
	assert.Equal(t, clock.last(), location.DeactivatedAt.UTC())

	history, err := locations.ActivityHistory(tenant.ID, location.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, history.Items, 2)
	assert.Equal(t, "Location set to deactivated", history.Items[0].Message)
}

func TestLocationCrossTenantIsNotFound(t *testing.T) {
	db := newTestDB(t)
	clock := newStubClock()
	locations := NewLocationService(db, clock)
	accounts := NewAccountService(db, clock)
	t1 := seedTenant(t, db, "Tenant One")
	t2 := seedTenant(t, db, "Tenant Two")
	actor := testActor()

	account, err := accounts.Create(t1.ID, actor, AccountInput{Name: "Globex"})
	require.NoError(t, err)
	location, err := locations.Create(t1.ID, actor, LocationInput{
		AccountID: account.ID, Name: "Headquarters", Code: "LOC-001",
	})
	require.NoError(t, err)

	_, err = locations.Get(t2.ID, location.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = locations.Update(t2.ID, actor, location.ID, LocationInput{
		AccountID: account.ID, Name: "Renamed", Code: "LOC-001",
	})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = locations.ActivityHistory(t2.ID, location.ID, 1, 10)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocationUpdateSnapshotsValues(t *testing.T) {
	db := newTestDB(t)
	clock := newStubClock()
	locations := NewLocationService(db, clock)
	accounts := NewAccountService(db, clock)
	tenant := seedTenant(t, db, "Acme Tax")
	actor := testActor()

	account, err := accounts.Create(tenant.ID, actor, AccountInput{Name: "Globex"})
	require.NoError(t, err)
	location, err := locations.Create(tenant.ID, actor, LocationInput{
		AccountID: account.ID, Name: "Headquarters", Code: "LOC-001", City: "Austin",
	})
	require.NoError(t, err)

	_, err = locations.Update(tenant.ID, actor, location.ID, LocationInput{
		AccountID: account.ID, Name: "Main Office", Code: "LOC-001", City: "Dallas",
	})
	require.NoError(t, err)

	var row model.LocationActivityLog
	require.NoError(t, db.
		Where("tenant_id = ? AND location_id = ? AND event_type = ?",
			tenant.ID, location.ID, int(model.LocationUpdatedEvent)).
		First(&row).Error)
	assert.Contains(t, row.Event, "Headquarters")
	assert.Contains(t, row.Event, "Main Office")
	assert.Contains(t, row.Event, "previous_values")
	assert.Contains(t, row.Event, "current_values")
}
