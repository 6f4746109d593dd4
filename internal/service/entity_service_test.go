package service

import (
	"testing"

	"practice-service/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityRequiresSameTenantAccount(t *testing.T) {
	db := newTestDB(t)
	clock := newStubClock()
	entities := NewEntityService(db, clock)
	accounts := NewAccountService(db, clock)
	t1 := seedTenant(t, db, "Tenant One")
	t2 := seedTenant(t, db, "Tenant Two")
	actor := testActor()

	foreign, err := accounts.Create(t2.ID, actor, AccountInput{Name: "Globex"})
	require.NoError(t, err)

	_, err = entities.Create(t1.ID, actor, EntityInput{
		AccountID: foreign.ID,
		Name:      "Globex Holdings LLC",
		Code:      "ENT-001",
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEntityCreateWritesLogRow(t *testing.T) {
	db := newTestDB(t)
	clock := newStubClock()
	entities := NewEntityService(db, clock)
	accounts := NewAccountService(db, clock)
	tenant := seedTenant(t, db, "Acme Tax")
	actor := testActor()

	account, err := accounts.Create(tenant.ID, actor, AccountInput{Name: "Globex"})
	require.NoError(t, err)

	entity, err := entities.Create(tenant.ID, actor, EntityInput{
		AccountID: account.ID,
		Name:      "Globex Holdings LLC",
		Code:      "ENT-001",
		Country:   "United States",
		State:     "Delaware",
	})
	require.NoError(t, err)
	assert.Equal(t, "Globex", entity.Account.Name)
	assert.Equal(t, model.EntityStatusActive, entity.Status)

	var logs []model.EntityActivityLog
	require.NoError(t, db.Where("tenant_id = ? AND entity_id = ?", tenant.ID, entity.ID).Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, int(model.EntityCreatedEvent), logs[0].EventType)
	assert.Equal(t, clock.last(), logs[0].Date.UTC())
}

func TestEntityUniqueness(t *testing.T) {
	db := newTestDB(t)
	clock := newStubClock()
	entities := NewEntityService(db, clock)
	accounts := NewAccountService(db, clock)
	tenant := seedTenant(t, db, "Acme Tax")
	actor := testActor()

	account, err := accounts.Create(tenant.ID, actor, AccountInput{Name: "Globex"})
	require.NoError(t, err)
	other, err := accounts.Create(tenant.ID, actor, AccountInput{Name: "Initech"})
	require.NoError(t, err)

	_, err = entities.Create(tenant.ID, actor, EntityInput{
		AccountID: account.ID, Name: "Globex Holdings LLC", Code: "ENT-001",
	})
	require.NoError(t, err)

	// Same name under the same account is a conflict
	_, err = entities.Create(tenant.ID, actor, EntityInput{
		AccountID: account.ID, Name: "Globex Holdings LLC", Code: "ENT-002",
	})
	assert.ErrorIs(t, err, ErrDuplicate)

	// Same name under another account is fine, same code is not
	_, err = entities.Create(tenant.ID, actor, EntityInput{
		AccountID: other.ID, Name: "Globex Holdings LLC", Code: "ENT-001",
	})
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = entities.Create(tenant.ID, actor, EntityInput{
		AccountID: other.ID, Name: "Globex Holdings LLC", Code: "ENT-002",
	})
	assert.NoError(t, err)
}

func TestEntityStatusLifecycle(t *testing.T) {
	db := newTestDB(t)
	clock := newStubClock()
	entities := NewEntityService(db, clock)
	accounts := NewAccountService(db, clock)
	tenant := seedTenant(t, db, "Acme Tax")
	actor := testActor()

	account, err := accounts.Create(tenant.ID, actor, AccountInput{Name: "Globex"})
	require.NoError(t, err)
	entity, err := entities.Create(tenant.ID, actor, EntityInput{
		AccountID: account.ID, Name: "Globex Holdings LLC", Code: "ENT-001",
	})
	require.NoError(t, err)

	entity, err = entities.UpdateStatus(tenant.ID, actor, entity.ID, model.EntityStatusDeactivated)
	require.NoError(t, err)
	assert.Equal(t, model.EntityStatusDeactivated, entity.Status)
	require.NotNil(t, entity.DeactivatedAt)
	assert.Equal(t, clock.last(), entity.DeactivatedAt.UTC())

	entity, err = entities.UpdateStatus(tenant.ID, actor, entity.ID, model.EntityStatusActive)
	require.NoError(t, err)
	assert.Nil(t, entity.DeactivatedAt)

	_, err = entities.UpdateStatus(tenant.ID, actor, entity.ID, "frozen")
	assert.Error(t, err)

	history, err := entities.ActivityHistory(tenant.ID, entity.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, history.Items, 3)
	assert.Equal(t, "Entity set to active", history.Items[0].Message)
	assert.Equal(t, "Entity set to deactivated", history.Items[1].Message)
	assert.Equal(t, `Entity "Globex Holdings LLC" created`, history.Items[2].Message)
}

func TestEntityCrossTenantIsNotFound(t *testing.T) {
	db := newTestDB(t)
	clock := newStubClock()
	entities := NewEntityService(db, clock)
	accounts := NewAccountService(db, clock)
	t1 := seedTenant(t, db, "Tenant One")
	t2 := seedTenant(t, db, "Tenant Two")
	actor := testActor()

	account, err := accounts.Create(t1.ID, actor, AccountInput{Name: "Globex"})
	require.NoError(t, err)
	entity, err := entities.Create(t1.ID, actor, EntityInput{
		AccountID: account.ID, Name: "Globex Holdings LLC", Code: "ENT-001",
	})
	require.NoError(t, err)

	_, err = entities.Get(t2.ID, entity.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = entities.ActivityHistory(t2.ID, entity.ID, 1, 10)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = entities.UpdateStatus(t2.ID, actor, entity.ID, model.EntityStatusDeactivated)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = entities.Get(t1.ID, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEntityExportCSV(t *testing.T) {
	db := newTestDB(t)
	clock := newStubClock()
	entities := NewEntityService(db, clock)
	accounts := NewAccountService(db, clock)
	tenant := seedTenant(t, db, "Acme Tax")
	actor := testActor()

	account, err := accounts.Create(tenant.ID, actor, AccountInput{Name: "Globex"})
	require.NoError(t, err)
	_, err = entities.Create(tenant.ID, actor, EntityInput{
		AccountID: account.ID, Name: "Globex Holdings LLC", Code: "ENT-001", Fein: "12-3456789",
	})
	require.NoError(t, err)

	data, err := entities.Export(tenant.ID, "csv")
	require.NoError(t, err)
	csv := string(data)
	assert.Contains(t, csv, "Globex Holdings LLC")
	assert.Contains(t, csv, "ENT-001")
	assert.Contains(t, csv, "12-3456789")
}
