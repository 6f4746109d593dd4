package service

import (
	"strings"
	"testing"

	"practice-service/internal/export"
	"practice-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactRequiresSameTenantAccount(t *testing.T) {
	db := newTestDB(t)
	clock := newStubClock()
	contacts := NewContactService(db, clock)
	accounts := NewAccountService(db, clock)
	t1 := seedTenant(t, db, "Tenant One")
	t2 := seedTenant(t, db, "Tenant Two")
	actor := testActor()

	foreign, err := accounts.Create(t2.ID, actor, AccountInput{Name: "Globex"})
	require.NoError(t, err)

	_, err = contacts.Create(t1.ID, actor, ContactInput{
		AccountID: foreign.ID,
		FirstName: "Dana",
		LastName:  "Cole",
		Email:     "dana@globex.test",
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestContactCreateAndHistory(t *testing.T) {
	db := newTestDB(t)
	clock := newStubClock()
	contacts := NewContactService(db, clock)
	accounts := NewAccountService(db, clock)
	tenant := seedTenant(t, db, "Acme Tax")
	actor := testActor()

	account, err := accounts.Create(tenant.ID, actor, AccountInput{Name: "Globex"})
	require.NoError(t, err)

	contact, err := contacts.Create(tenant.ID, actor, ContactInput{
		AccountID: account.ID,
		FirstName: "Dana",
		LastName:  "Cole",
		Email:     "dana@globex.test",
		JobTitle:  "Controller",
	})
	require.NoError(t, err)
	assert.Equal(t, "Globex", contact.Account.Name)

	// Duplicate email within the tenant is a conflict
	_, err = contacts.Create(tenant.ID, actor, ContactInput{
		AccountID: account.ID,
		Email:     "dana@globex.test",
	})
	assert.ErrorIs(t, err, ErrDuplicate)

	page, err := contacts.ActivityHistory(tenant.ID, contact.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, `Contact "Dana Cole" created`, page.Items[0].Message)
}

func TestContactExportIncludesAccountName(t *testing.T) {
	db := newTestDB(t)
	clock := newStubClock()
	contacts := NewContactService(db, clock)
	accounts := NewAccountService(db, clock)
	tenant := seedTenant(t, db, "Acme Tax")
	actor := testActor()

	account, err := accounts.Create(tenant.ID, actor, AccountInput{Name: "Globex"})
	require.NoError(t, err)
	_, err = contacts.Create(tenant.ID, actor, ContactInput{
		AccountID: account.ID,
		FirstName: "Dana",
		LastName:  "Cole",
		Email:     "dana@globex.test",
	})
	require.NoError(t, err)

	data, err := contacts.Export(tenant.ID, export.FileTypeCSV)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "Dana Cole")
	assert.Contains(t, lines[1], "Globex")
}

func TestAccountUpdateTracksAuditColumns(t *testing.T) {
	db := newTestDB(t)
	accounts := NewAccountService(db, newStubClock())
	tenant := seedTenant(t, db, "Acme Tax")
	creator := testActor()
	editor := testActor()

	account, err := accounts.Create(tenant.ID, creator, AccountInput{Name: "Globex", Country: "US"})
	require.NoError(t, err)
	assert.Equal(t, creator.ID, account.CreatedBy)

	updated, err := accounts.Update(tenant.ID, editor, account.ID, AccountInput{Name: "Globex", Country: "US", State: "WA"})
	require.NoError(t, err)
	assert.Equal(t, creator.ID, updated.CreatedBy)
	assert.Equal(t, editor.ID, updated.UpdatedBy)

	var logs []model.AccountActivityLog
	require.NoError(t, db.Where("tenant_id = ? AND account_id = ?", tenant.ID, account.ID).Find(&logs).Error)
	assert.Len(t, logs, 2)
}
