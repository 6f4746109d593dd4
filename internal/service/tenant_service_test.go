package service

import (
	"testing"

	"practice-service/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTenantCreateMakesOwnerMember(t *testing.T) {
	db := newTestDB(t)
	svc := NewTenantService(db, newStubClock())
	owner := seedUser(t, db, "owner@firm.test")

	tenant, err := svc.Create(owner.ID, TenantInput{Name: "Acme Tax", Description: "Tax practice"})
	require.NoError(t, err)
	assert.Equal(t, owner.ID, tenant.OwnerID)
	assert.Equal(t, model.TenantStatusActive, tenant.Status)

	memberships, err := svc.ListForUser(owner.ID)
	require.NoError(t, err)
	require.Len(t, memberships, 1)
	assert.True(t, memberships[0].IsDefault, "first tenant becomes the default")

	// A second tenant does not steal the default flag
	second, err := svc.Create(owner.ID, TenantInput{Name: "Side Practice"})
	require.NoError(t, err)

	membership, err := svc.Membership(second.ID, owner.ID)
	require.NoError(t, err)
	assert.False(t, membership.IsDefault)
}

func TestTenantCreateDuplicateName(t *testing.T) {
	db := newTestDB(t)
	svc := NewTenantService(db, newStubClock())
	owner := seedUser(t, db, "owner@firm.test")

	_, err := svc.Create(owner.ID, TenantInput{Name: "Acme Tax"})
	require.NoError(t, err)

	_, err = svc.Create(owner.ID, TenantInput{Name: "Acme Tax"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestTenantGetRequiresMembership(t *testing.T) {
	db := newTestDB(t)
	svc := NewTenantService(db, newStubClock())
	owner := seedUser(t, db, "owner@firm.test")
	outsider := seedUser(t, db, "outsider@firm.test")

	tenant, err := svc.Create(owner.ID, TenantInput{Name: "Acme Tax"})
	require.NoError(t, err)

	got, err := svc.Get(tenant.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, tenant.ID, got.ID)

	_, err = svc.Get(tenant.ID, outsider.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Get(uuid.New(), owner.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTenantUpdateOwnerOnly(t *testing.T) {
	db := newTestDB(t)
	clock := newStubClock()
	svc := NewTenantService(db, clock)
	owner := seedUser(t, db, "owner@firm.test")
	member := seedUser(t, db, "member@firm.test")

	tenant, err := svc.Create(owner.ID, TenantInput{Name: "Acme Tax"})
	require.NoError(t, err)
	seedMembership(t, db, tenant.ID, member.ID)

	_, err = svc.Update(tenant.ID, Actor{ID: member.ID, FullName: "Member"}, TenantInput{Name: "Hijacked"})
	assert.ErrorIs(t, err, ErrNotFound)

	updated, err := svc.Update(tenant.ID, Actor{ID: owner.ID, FullName: "Owner"}, TenantInput{Name: "Acme Tax Group"})
	require.NoError(t, err)
	assert.Equal(t, "Acme Tax Group", updated.Name)

	var logs []model.TenantActivityLog
	require.NoError(t, db.Where("tenant_id = ?", tenant.ID).Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, int(model.TenantUpdatedEvent), logs[0].EventType)
	assert.Equal(t, clock.last(), logs[0].Date.UTC())
}

func TestTenantRecordAccess(t *testing.T) {
	db := newTestDB(t)
	clock := newStubClock()
	svc := NewTenantService(db, clock)
	owner := seedUser(t, db, "owner@firm.test")
	actor := Actor{ID: owner.ID, FullName: "Owner"}

	tenant, err := svc.Create(owner.ID, TenantInput{Name: "Acme Tax"})
	require.NoError(t, err)

	require.NoError(t, svc.RecordAccess(tenant.ID, actor, true))
	require.NoError(t, svc.RecordAccess(tenant.ID, actor, false))

	page, err := svc.ActivityHistory(tenant.ID, owner.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "User exited the tenant", page.Items[0].Message)
	assert.Equal(t, "User entered the tenant", page.Items[1].Message)
}

func TestTenantActivityHistoryRequiresMembership(t *testing.T) {
	db := newTestDB(t)
	svc := NewTenantService(db, newStubClock())
	owner := seedUser(t, db, "owner@firm.test")
	outsider := seedUser(t, db, "outsider@firm.test")

	tenant, err := svc.Create(owner.ID, TenantInput{Name: "Acme Tax"})
	require.NoError(t, err)

	_, err = svc.ActivityHistory(tenant.ID, outsider.ID, 1, 10)
	assert.ErrorIs(t, err, ErrNotFound)
}
