package handler

import (
	"errors"
	"net/http"
	"time"

	"practice-service/internal/activity"
	"practice-service/internal/export"
	"practice-service/internal/service"
	"practice-service/pkg/logger"
	"practice-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ServiceAreaHandler exposes service area endpoints
type ServiceAreaHandler struct {
	svc *service.ServiceAreaService
}

func NewServiceAreaHandler(svc *service.ServiceAreaService) *ServiceAreaHandler {
	return &ServiceAreaHandler{svc: svc}
}

// List retrieves the tenant's service areas with pagination
func (h *ServiceAreaHandler) List(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("service_area", "list")

	tenantID, ok := requireTenant(c, log)
	if !ok {
		return nil
	}

	page, limit := pageParams(c, "limit")

	defer prometheus.TrackDBOperation("query")(time.Now())

	areas, total, err := h.svc.List(tenantID, page, limit)
	if err != nil {
		return serviceError(c, log, "Service area", err)
	}

	log.Info("Service areas retrieved successfully",
		zap.Int("count", len(areas)),
		zap.Int64("total", total),
		zap.String("tenant_id", tenantID.String()))

	return c.JSON(http.StatusOK, echo.Map{
		"service_areas": areas,
		"pagination":    paginationMap(page, limit, total),
	})
}

// Get retrieves a service area by ID for the current tenant
func (h *ServiceAreaHandler) Get(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("service_area", "get")

	tenantID, ok := requireTenant(c, log)
	if !ok {
		return nil
	}

	id, err := pathID(c)
	if err != nil {
		log.Error("Invalid service area ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid service area ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	area, err := h.svc.Get(tenantID, id)
	if err != nil {
		return serviceError(c, log, "Service area", err)
	}

	return c.JSON(http.StatusOK, area)
}

// Create creates a new service area for the current tenant
func (h *ServiceAreaHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	log.Info("Creating new service area")
	prometheus.RecordEntityOperation("service_area", "create")

	var req service.ServiceAreaInput
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	tenantID, ok := requireTenant(c, log)
	if !ok {
		return nil
	}
	actor, ok := requireActor(c, log)
	if !ok {
		return nil
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	area, err := h.svc.Create(tenantID, actor, req)
	if err != nil {
		return serviceError(c, log, "Service area", err)
	}
	prometheus.RecordActivityAppended("service_area")

	log.Info("Service area created successfully",
		zap.String("id", area.ID.String()),
		zap.String("name", area.Name),
		zap.String("tenant_id", tenantID.String()))
	return c.JSON(http.StatusCreated, area)
}

// Update updates an existing service area for the current tenant
func (h *ServiceAreaHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("service_area", "update")

	id, err := pathID(c)
	if err != nil {
		log.Error("Invalid service area ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid service area ID"})
	}

	var req service.ServiceAreaInput
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	tenantID, ok := requireTenant(c, log)
	if !ok {
		return nil
	}
	actor, ok := requireActor(c, log)
	if !ok {
		return nil
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	area, err := h.svc.Update(tenantID, actor, id, req)
	if err != nil {
		return serviceError(c, log, "Service area", err)
	}
	prometheus.RecordActivityAppended("service_area")

	log.Info("Service area updated successfully",
		zap.String("id", area.ID.String()),
		zap.String("name", area.Name),
		zap.String("tenant_id", tenantID.String()))
	return c.JSON(http.StatusOK, area)
}

// Activities retrieves the service area audit trail
func (h *ServiceAreaHandler) Activities(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("service_area", "activities")

	tenantID, ok := requireTenant(c, log)
	if !ok {
		return nil
	}

	id, err := pathID(c)
	if err != nil {
		log.Error("Invalid service area ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid service area ID"})
	}

	page, pageSize := pageParams(c, "pageSize")

	defer prometheus.TrackDBOperation("query")(time.Now())

	history, err := h.svc.ActivityHistory(tenantID, id, page, pageSize)
	if err != nil {
		if errors.Is(err, activity.ErrDecode) {
			prometheus.RecordActivityDecodeError("service_area")
		}
		return serviceError(c, log, "Service area", err)
	}

	return c.JSON(http.StatusOK, history)
}

// Export streams the tenant's service areas as a file download
func (h *ServiceAreaHandler) Export(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("service_area", "export")

	tenantID, ok := requireTenant(c, log)
	if !ok {
		return nil
	}

	fileType := export.FileType(c.QueryParam("fileType"))
	if fileType == "" {
		fileType = export.FileTypeCSV
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	data, err := h.svc.Export(tenantID, fileType)
	if err != nil {
		if errors.Is(err, export.ErrUnsupportedFileType) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return serviceError(c, log, "Service area", err)
	}
	prometheus.RecordExport("service_area", string(fileType))

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="service_areas.csv"`)
	return c.Blob(http.StatusOK, "text/csv", data)
}
