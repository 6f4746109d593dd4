package service

import (
	"testing"

	"practice-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserCreateEnrollsIntoTenant(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, newStubClock())
	tenant := seedTenant(t, db, "Acme Tax")
	actor := testActor()

	user, err := svc.Create(tenant.ID, actor, UserInput{
		Email:     "preparer@acme.test",
		FirstName: "Sam",
		LastName:  "Lee",
	})
	require.NoError(t, err)
	assert.Equal(t, model.UserStatusActive, user.Status)

	var membership model.TenantUser
	require.NoError(t, db.Where("tenant_id = ? AND user_id = ?", tenant.ID, user.ID).First(&membership).Error)
	assert.True(t, membership.Active)

	var logs []model.UserActivityLog
	require.NoError(t, db.Where("tenant_id = ? AND user_id = ?", tenant.ID, user.ID).Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, int(model.UserCreatedEvent), logs[0].EventType)

	// Enrolling the same email again into the same tenant is a conflict
	_, err = svc.Create(tenant.ID, actor, UserInput{Email: "preparer@acme.test"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestUserCreateExistingAccountSecondTenant(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, newStubClock())
	t1 := seedTenant(t, db, "Tenant One")
	t2 := seedTenant(t, db, "Tenant Two")
	actor := testActor()

	first, err := svc.Create(t1.ID, actor, UserInput{Email: "shared@firm.test", FirstName: "Alex"})
	require.NoError(t, err)

	second, err := svc.Create(t2.ID, actor, UserInput{Email: "shared@firm.test"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "same account is reused across tenants")

	var count int64
	require.NoError(t, db.Model(&model.TenantUser{}).Where("user_id = ?", first.ID).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestUserCrossTenantIsNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, newStubClock())
	t1 := seedTenant(t, db, "Tenant One")
	t2 := seedTenant(t, db, "Tenant Two")
	actor := testActor()

	user, err := svc.Create(t1.ID, actor, UserInput{Email: "one@firm.test"})
	require.NoError(t, err)

	_, err = svc.Get(t2.ID, user.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.ActivityHistory(t2.ID, user.ID, 1, 10)
	assert.ErrorIs(t, err, ErrNotFound)

	err = svc.AssignRoles(t2.ID, actor, user.ID, []string{"Admin"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserStatusTransitions(t *testing.T) {
	db := newTestDB(t)
	clock := newStubClock()
	svc := NewUserService(db, clock)
	tenant := seedTenant(t, db, "Acme Tax")
	actor := testActor()

	user, err := svc.Create(tenant.ID, actor, UserInput{Email: "deact@firm.test"})
	require.NoError(t, err)

	deactivated, err := svc.UpdateStatus(tenant.ID, actor, user.ID, model.UserStatusDeactivated)
	require.NoError(t, err)
	assert.Equal(t, model.UserStatusDeactivated, deactivated.Status)
	require.NotNil(t, deactivated.DeactivatedAt)
	assert.Equal(t, clock.last(), deactivated.DeactivatedAt.UTC())

	var membership model.TenantUser
	require.NoError(t, db.Where("tenant_id = ? AND user_id = ?", tenant.ID, user.ID).First(&membership).Error)
	assert.False(t, membership.Active)

	reactivated, err := svc.UpdateStatus(tenant.ID, actor, user.ID, model.UserStatusActive)
	require.NoError(t, err)
	assert.Nil(t, reactivated.DeactivatedAt)

	_, err = svc.UpdateStatus(tenant.ID, actor, user.ID, "frozen")
	assert.Error(t, err)

	page, err := svc.ActivityHistory(tenant.ID, user.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.Equal(t, "User set to active", page.Items[0].Message)
	assert.Equal(t, "User set to deactivated", page.Items[1].Message)
}

func TestUserRoleAssignment(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, newStubClock())
	tenant := seedTenant(t, db, "Acme Tax")
	actor := testActor()

	user, err := svc.Create(tenant.ID, actor, UserInput{Email: "roles@firm.test"})
	require.NoError(t, err)

	require.NoError(t, svc.AssignRoles(tenant.ID, actor, user.ID, []string{"Admin", "Preparer"}))

	roles, err := svc.Roles(tenant.ID, user.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Admin", "Preparer"}, roles)

	// Assigning an already-held role is a no-op, not an error
	require.NoError(t, svc.AssignRoles(tenant.ID, actor, user.ID, []string{"Admin"}))
	roles, err = svc.Roles(tenant.ID, user.ID)
	require.NoError(t, err)
	assert.Len(t, roles, 2)

	require.NoError(t, svc.UnassignRoles(tenant.ID, actor, user.ID, []string{"Preparer"}))
	roles, err = svc.Roles(tenant.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Admin"}, roles)

	page, err := svc.ActivityHistory(tenant.ID, user.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, "Roles Preparer unassigned from user", page.Items[0].Message)
}

func TestUserUpdateRejectsCrossTenantOrgLink(t *testing.T) {
	db := newTestDB(t)
	clock := newStubClock()
	svc := NewUserService(db, clock)
	divisions := NewDivisionService(db, clock)
	t1 := seedTenant(t, db, "Tenant One")
	t2 := seedTenant(t, db, "Tenant Two")
	actor := testActor()

	user, err := svc.Create(t1.ID, actor, UserInput{Email: "org@firm.test"})
	require.NoError(t, err)

	foreign, err := divisions.Create(t2.ID, actor, DivisionInput{Name: "West"})
	require.NoError(t, err)

	_, err = svc.Update(t1.ID, actor, user.ID, UserInput{
		Email:      "org@firm.test",
		DivisionID: &foreign.ID,
	})
	assert.ErrorIs(t, err, ErrNotFound)
}
