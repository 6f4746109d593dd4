package service

import (
	"strings"
	"testing"

	"practice-service/internal/activity"
	"practice-service/internal/export"
	"practice-service/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceAreaCreateWritesLogRow(t *testing.T) {
	db := newTestDB(t)
	clock := newStubClock()
	svc := NewServiceAreaService(db, clock)
	tenant := seedTenant(t, db, "Acme Tax")
	actor := testActor()

	area, err := svc.Create(tenant.ID, actor, ServiceAreaInput{Name: "Federal", Description: "Federal filings"})
	require.NoError(t, err)
	assert.Equal(t, "Federal", area.Name)
	assert.Equal(t, tenant.ID, area.TenantID)

	var logs []model.ServiceAreaActivityLog
	require.NoError(t, db.Where("tenant_id = ? AND service_area_id = ?", tenant.ID, area.ID).Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, int(model.ServiceAreaCreatedEvent), logs[0].EventType)
	assert.EqualValues(t, 1, logs[0].Revision)
	assert.Equal(t, clock.last(), logs[0].Date.UTC())
}

func TestServiceAreaCreateDuplicateName(t *testing.T) {
	db := newTestDB(t)
	svc := NewServiceAreaService(db, newStubClock())
	tenant := seedTenant(t, db, "Acme Tax")
	actor := testActor()

	_, err := svc.Create(tenant.ID, actor, ServiceAreaInput{Name: "Federal"})
	require.NoError(t, err)

	_, err = svc.Create(tenant.ID, actor, ServiceAreaInput{Name: "Federal"})
	assert.ErrorIs(t, err, ErrDuplicate)

	// Same name under a different tenant is fine
	other := seedTenant(t, db, "Other Firm")
	_, err = svc.Create(other.ID, actor, ServiceAreaInput{Name: "Federal"})
	assert.NoError(t, err)
}

func TestServiceAreaUpdateAppendsSingleLogRow(t *testing.T) {
	db := newTestDB(t)
	clock := newStubClock()
	svc := NewServiceAreaService(db, clock)
	tenant := seedTenant(t, db, "Acme Tax")
	actor := testActor()

	area, err := svc.Create(tenant.ID, actor, ServiceAreaInput{Name: "Federal"})
	require.NoError(t, err)

	updated, err := svc.Update(tenant.ID, actor, area.ID, ServiceAreaInput{Name: "Federal", Description: "All federal work"})
	require.NoError(t, err)
	assert.Equal(t, "All federal work", updated.Description)

	var logs []model.ServiceAreaActivityLog
	require.NoError(t, db.
		Where("tenant_id = ? AND service_area_id = ? AND event_type = ?",
			tenant.ID, area.ID, int(model.ServiceAreaUpdatedEvent)).
		Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, clock.last(), logs[0].Date.UTC())
}

func TestServiceAreaCrossTenantIsNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewServiceAreaService(db, newStubClock())
	t1 := seedTenant(t, db, "Tenant One")
	t2 := seedTenant(t, db, "Tenant Two")
	actor := testActor()

	area, err := svc.Create(t1.ID, actor, ServiceAreaInput{Name: "Federal"})
	require.NoError(t, err)

	_, err = svc.Get(t2.ID, area.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Update(t2.ID, actor, area.ID, ServiceAreaInput{Name: "Renamed"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.ActivityHistory(t2.ID, area.ID, 1, 10)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestServiceAreaCrossTenantDepartmentLink(t *testing.T) {
	db := newTestDB(t)
	clock := newStubClock()
	svc := NewServiceAreaService(db, clock)
	depts := NewDepartmentService(db, clock)
	t1 := seedTenant(t, db, "Tenant One")
	t2 := seedTenant(t, db, "Tenant Two")
	actor := testActor()

	dept, err := depts.Create(t2.ID, actor, DepartmentInput{Name: "Compliance"})
	require.NoError(t, err)

	_, err = svc.Create(t1.ID, actor, ServiceAreaInput{Name: "Federal", DepartmentID: &dept.ID})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestServiceAreaActivityHistoryOrdering(t *testing.T) {
	db := newTestDB(t)
	clock := newStubClock()
	svc := NewServiceAreaService(db, clock)
	tenant := seedTenant(t, db, "Acme Tax")
	actor := testActor()

	area, err := svc.Create(tenant.ID, actor, ServiceAreaInput{Name: "Federal"})
	require.NoError(t, err)

	for _, desc := range []string{"first", "second", "third"} {
		_, err := svc.Update(tenant.ID, actor, area.ID, ServiceAreaInput{Name: "Federal", Description: desc})
		require.NoError(t, err)
	}

	page, err := svc.ActivityHistory(tenant.ID, area.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 4)
	assert.EqualValues(t, 1, page.Count)

	for i := 1; i < len(page.Items); i++ {
		assert.True(t, page.Items[i].Date.Before(page.Items[i-1].Date),
			"history must be strictly descending by date")
	}
	assert.Equal(t, `Service area "Federal" created`, page.Items[len(page.Items)-1].Message)
}

func TestServiceAreaActivityHistoryPaging(t *testing.T) {
	db := newTestDB(t)
	svc := NewServiceAreaService(db, newStubClock())
	tenant := seedTenant(t, db, "Acme Tax")
	actor := testActor()

	area, err := svc.Create(tenant.ID, actor, ServiceAreaInput{Name: "Federal"})
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		_, err := svc.Update(tenant.ID, actor, area.ID, ServiceAreaInput{Name: "Federal", Description: strings.Repeat("x", i+1)})
		require.NoError(t, err)
	}

	page, err := svc.ActivityHistory(tenant.ID, area.ID, 1, 2)
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.EqualValues(t, 3, page.Count)

	lastPage, err := svc.ActivityHistory(tenant.ID, area.ID, 3, 2)
	require.NoError(t, err)
	assert.Len(t, lastPage.Items, 1)
}

func TestServiceAreaFailedWriteAddsNoLogRows(t *testing.T) {
	db := newTestDB(t)
	svc := NewServiceAreaService(db, newStubClock())
	tenant := seedTenant(t, db, "Acme Tax")
	actor := testActor()

	_, err := svc.Create(tenant.ID, actor, ServiceAreaInput{Name: "Federal"})
	require.NoError(t, err)
	_, err = svc.Create(tenant.ID, actor, ServiceAreaInput{Name: "Federal"})
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&model.ServiceAreaActivityLog{}).
		Where("tenant_id = ?", tenant.ID).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestServiceAreaExportCSV(t *testing.T) {
	db := newTestDB(t)
	svc := NewServiceAreaService(db, newStubClock())
	tenant := seedTenant(t, db, "Acme Tax")
	actor := testActor()

	_, err := svc.Create(tenant.ID, actor, ServiceAreaInput{Name: "State", Description: "State filings"})
	require.NoError(t, err)
	_, err = svc.Create(tenant.ID, actor, ServiceAreaInput{Name: "Federal"})
	require.NoError(t, err)

	data, err := svc.Export(tenant.ID, export.FileTypeCSV)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "Federal,"), "rows are ordered by name")
	assert.True(t, strings.HasPrefix(lines[2], "State,"))

	_, err = svc.Export(tenant.ID, export.FileType("pdf"))
	assert.ErrorIs(t, err, export.ErrUnsupportedFileType)
}

func TestServiceAreaListScopedToTenant(t *testing.T) {
	db := newTestDB(t)
	svc := NewServiceAreaService(db, newStubClock())
	t1 := seedTenant(t, db, "Tenant One")
	t2 := seedTenant(t, db, "Tenant Two")
	actor := testActor()

	_, err := svc.Create(t1.ID, actor, ServiceAreaInput{Name: "Federal"})
	require.NoError(t, err)
	_, err = svc.Create(t1.ID, actor, ServiceAreaInput{Name: "State"})
	require.NoError(t, err)

	areas, total, err := svc.List(t1.ID, 1, 10)
	require.NoError(t, err)
	assert.Len(t, areas, 2)
	assert.EqualValues(t, 2, total)

	areas, total, err = svc.List(t2.ID, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, areas)
	assert.Zero(t, total)

	_, _, err = svc.List(uuid.New(), 1, 10)
	require.NoError(t, err)
}

func TestServiceAreaActivityHistoryUnknownRow(t *testing.T) {
	db := newTestDB(t)
	clock := newStubClock()
	svc := NewServiceAreaService(db, clock)
	tenant := seedTenant(t, db, "Acme Tax")

	area, err := svc.Create(tenant.ID, testActor(), ServiceAreaInput{Name: "Federal"})
	require.NoError(t, err)

	// A row stamped with a pair no shipped decoder knows about
	require.NoError(t, db.Create(&model.ServiceAreaActivityLog{
		TenantID:      tenant.ID,
		ServiceAreaID: area.ID,
		Date:          clock.Now(),
		EventType:     99,
		Revision:      1,
		Event:         "{}",
	}).Error)

	_, err = svc.ActivityHistory(tenant.ID, area.ID, 1, 10)
	assert.ErrorIs(t, err, activity.ErrDecode)
}

func TestServiceAreaCreateSurfacesQueryFailure(t *testing.T) {
	db := newTestDB(t)
	svc := NewServiceAreaService(db, newStubClock())
	tenant := seedTenant(t, db, "Acme Tax")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	// The uniqueness pre-check must propagate the failure, not read it as
	// zero matches and press on
	_, err = svc.Create(tenant.ID, testActor(), ServiceAreaInput{Name: "Federal"})
	assert.Error(t, err)
}
