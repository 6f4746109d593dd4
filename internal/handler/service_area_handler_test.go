package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"practice-service/internal/model"
	"practice-service/internal/service"
	"practice-service/prometheus"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serviceAreaEnv(t *testing.T) (*echo.Echo, *ServiceAreaHandler, *service.ServiceAreaService, uuid.UUID) {
	t.Helper()
	db := newTestDB(t)
	svc := service.NewServiceAreaService(db, service.RealClock())
	tenant := seedTenant(t, db, "Acme Tax")
	return echo.New(), NewServiceAreaHandler(svc), svc, tenant.ID
}

func TestServiceAreaHandlerCreate(t *testing.T) {
	e, h, _, tenantID := serviceAreaEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/service-areas",
		strings.NewReader(`{"name":"Federal","description":"Federal filings"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	authedContext(c, tenantID)

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Federal", body["name"])
	assert.Equal(t, tenantID.String(), body["tenant_id"])
}

func TestServiceAreaHandlerCreateValidation(t *testing.T) {
	e, h, _, tenantID := serviceAreaEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/service-areas",
		strings.NewReader(`{"description":"missing name"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	authedContext(c, tenantID)

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServiceAreaHandlerDuplicateConflict(t *testing.T) {
	e, h, svc, tenantID := serviceAreaEnv(t)

	_, err := svc.Create(tenantID, service.Actor{ID: uuid.New()}, service.ServiceAreaInput{Name: "Federal"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/service-areas",
		strings.NewReader(`{"name":"Federal"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	authedContext(c, tenantID)

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestServiceAreaHandlerGetNotFound(t *testing.T) {
	e, h, _, tenantID := serviceAreaEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/service-areas/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(uuid.NewString())
	authedContext(c, tenantID)

	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServiceAreaHandlerCrossTenantGetIs404(t *testing.T) {
	e, h, svc, tenantID := serviceAreaEnv(t)

	area, err := svc.Create(tenantID, service.Actor{ID: uuid.New()}, service.ServiceAreaInput{Name: "Federal"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/service-areas/"+area.ID.String(), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(area.ID.String())
	authedContext(c, uuid.New()) // different tenant

	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServiceAreaHandlerMissingTenantContext(t *testing.T) {
	e, h, _, _ := serviceAreaEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/service-areas", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	// No tenant_id set at all

	require.NoError(t, h.List(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServiceAreaHandlerMissingTenantWritesNothing(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewServiceAreaService(db, service.RealClock())
	h := NewServiceAreaHandler(svc)
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/api/service-areas",
		strings.NewReader(`{"name":"Federal"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	// Authenticated user, but no tenant selected
	c.Set("user_id", uuid.New())
	c.Set("full_name", "Pat Doe")

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// The rejected request must not have persisted anything
	var count int64
	require.NoError(t, db.Model(&model.ServiceArea{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestServiceAreaHandlerActivitiesNotFoundIsNotADecodeError(t *testing.T) {
	e, h, _, tenantID := serviceAreaEnv(t)

	counter := prometheus.ActivityDecodeErrorCounter.WithLabelValues("service_area")
	before := testutil.ToFloat64(counter)

	req := httptest.NewRequest(http.MethodGet, "/api/service-areas/"+uuid.NewString()+"/activities", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(uuid.NewString())
	authedContext(c, tenantID)

	require.NoError(t, h.Activities(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, before, testutil.ToFloat64(counter))
}

func TestServiceAreaHandlerExport(t *testing.T) {
	e, h, svc, tenantID := serviceAreaEnv(t)

	_, err := svc.Create(tenantID, service.Actor{ID: uuid.New()}, service.ServiceAreaInput{Name: "Federal"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/service-areas/export?fileType=csv", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	authedContext(c, tenantID)

	require.NoError(t, h.Export(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "service_areas.csv")
	assert.Contains(t, rec.Body.String(), "Federal")

	// Unsupported format is a client error
	req = httptest.NewRequest(http.MethodGet, "/api/service-areas/export?fileType=pdf", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	authedContext(c, tenantID)

	require.NoError(t, h.Export(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
