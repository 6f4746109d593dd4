package service

import (
	"testing"
	"time"

	"practice-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgramLifecycle(t *testing.T) {
	db := newTestDB(t)
	clock := newStubClock()
	svc := NewProgramService(db, clock)
	tenant := seedTenant(t, db, "Acme Tax")
	actor := testActor()

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	program, err := svc.Create(tenant.ID, actor, ProgramInput{
		Name:         "R&D Credit",
		Reference:    "IRC 41",
		Jurisdiction: "Federal",
		Agency:       "IRS",
		StartDate:    &start,
	})
	require.NoError(t, err)
	assert.Equal(t, model.ProgramStatusActive, program.Status)

	deactivated, err := svc.UpdateStatus(tenant.ID, actor, program.ID, model.ProgramStatusDeactivated)
	require.NoError(t, err)
	assert.Equal(t, model.ProgramStatusDeactivated, deactivated.Status)
	require.NotNil(t, deactivated.DeactivatedAt)

	reactivated, err := svc.UpdateStatus(tenant.ID, actor, program.ID, model.ProgramStatusActive)
	require.NoError(t, err)
	assert.Nil(t, reactivated.DeactivatedAt)

	page, err := svc.ActivityHistory(tenant.ID, program.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.Equal(t, "Program set to active", page.Items[0].Message)
	assert.Equal(t, "Program set to deactivated", page.Items[1].Message)
	assert.Equal(t, `Program "R&D Credit" created`, page.Items[2].Message)

	var logs []model.ProgramActivityLog
	require.NoError(t, db.Where("tenant_id = ? AND program_id = ?", tenant.ID, program.ID).
		Order("date").Find(&logs).Error)
	require.Len(t, logs, 3)
	assert.Equal(t, int(model.ProgramCreatedEvent), logs[0].EventType)
	assert.Equal(t, int(model.ProgramDeactivatedEvent), logs[1].EventType)
	assert.Equal(t, int(model.ProgramReactivatedEvent), logs[2].EventType)
}

func TestProgramUpdateSnapshotsPreviousValues(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgramService(db, newStubClock())
	tenant := seedTenant(t, db, "Acme Tax")
	actor := testActor()

	program, err := svc.Create(tenant.ID, actor, ProgramInput{Name: "R&D Credit", Agency: "IRS"})
	require.NoError(t, err)

	_, err = svc.Update(tenant.ID, actor, program.ID, ProgramInput{Name: "R&D Credit", Agency: "IRS", Jurisdiction: "Federal"})
	require.NoError(t, err)

	var row model.ProgramActivityLog
	require.NoError(t, db.Where("tenant_id = ? AND program_id = ? AND event_type = ?",
		tenant.ID, program.ID, int(model.ProgramUpdatedEvent)).First(&row).Error)
	assert.Contains(t, row.Event, "previous_values")
	assert.Contains(t, row.Event, "current_values")
	assert.Contains(t, row.Event, "Federal")
}

func TestProgramCrossTenantStatusChange(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgramService(db, newStubClock())
	t1 := seedTenant(t, db, "Tenant One")
	t2 := seedTenant(t, db, "Tenant Two")
	actor := testActor()

	program, err := svc.Create(t1.ID, actor, ProgramInput{Name: "R&D Credit"})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(t2.ID, actor, program.ID, model.ProgramStatusDeactivated)
	assert.ErrorIs(t, err, ErrNotFound)
}
