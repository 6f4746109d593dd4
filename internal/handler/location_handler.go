package handler

import (
	"errors"
	"net/http"
	"time"

	"practice-service/internal/activity"
	"practice-service/internal/export"
	"practice-service/internal/model"
	"practice-service/internal/service"
	"practice-service/pkg/logger"
	"practice-service/prometheus"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// LocationHandler exposes location endpoints
type LocationHandler struct {
	svc *service.LocationService
}

func NewLocationHandler(svc *service.LocationService) *LocationHandler {
	return &LocationHandler{svc: svc}
}

func (h *LocationHandler) List(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("location", "list")

	tenantID, ok := requireTenant(c, log)
	if !ok {
		return nil
	}

	page, limit := pageParams(c, "limit")

	defer prometheus.TrackDBOperation("query")(time.Now())

	items, total, err := h.svc.List(tenantID, page, limit)
	if err != nil {
		return serviceError(c, log, "Location", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"locations":  items,
		"pagination": paginationMap(page, limit, total),
	})
}

func (h *LocationHandler) Get(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("location", "get")

	tenantID, ok := requireTenant(c, log)
	if !ok {
		return nil
	}

	id, err := pathID(c)
	if err != nil {
		log.Error("Invalid location ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid location ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	location, err := h.svc.Get(tenantID, id)
	if err != nil {
		return serviceError(c, log, "Location", err)
	}

	return c.JSON(http.StatusOK, location)
}

func (h *LocationHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	log.Info("Creating new location")
	prometheus.RecordEntityOperation("location", "create")

	var req service.LocationInput
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	if req.Code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "code is required"})
	}
	if req.AccountID == uuid.Nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "account_id is required"})
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

	location, err := h.svc.Create(tenantID, actor, req)
	if err != nil {
		return serviceError(c, log, "Location", err)
	}
	prometheus.RecordActivityAppended("location")

	log.Info("Location created successfully",
		zap.String("id", location.ID.String()),
		zap.String("name", location.Name))
	return c.JSON(http.StatusCreated, location)
}

func (h *LocationHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("location", "update")

	id, err := pathID(c)
	if err != nil {
		log.Error("Invalid location ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid location ID"})
	}

	var req service.LocationInput
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	if req.Code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "code is required"})
	}
	if req.AccountID == uuid.Nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "account_id is required"})
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

	location, err := h.svc.Update(tenantID, actor, id, req)
	if err != nil {
		return serviceError(c, log, "Location", err)
	}
	prometheus.RecordActivityAppended("location")

	return c.JSON(http.StatusOK, location)
}

func (h *LocationHandler) Activities(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("location", "activities")

	tenantID, ok := requireTenant(c, log)
	if !ok {
		return nil
	}

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid location ID"})
	}

	page, pageSize := pageParams(c, "pageSize")

	defer prometheus.TrackDBOperation("query")(time.Now())

	history, err := h.svc.ActivityHistory(tenantID, id, page, pageSize)
	if err != nil {
		if errors.Is(err, activity.ErrDecode) {
			prometheus.RecordActivityDecodeError("location")
		}
		return serviceError(c, log, "Location", err)
	}

	return c.JSON(http.StatusOK, history)
}

func (h *LocationHandler) Export(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("location", "export")

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
		return serviceError(c, log, "Location", err)
	}
	prometheus.RecordExport("location", string(fileType))

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="locations.csv"`)
	return c.Blob(http.StatusOK, "text/csv", data)
}

// UpdateStatus deactivates or reactivates a location
func (h *LocationHandler) UpdateStatus(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("location", "update_status")

	id, err := pathID(c)
	if err != nil {
		log.Error("Invalid location ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid location ID"})
	}

	var req statusRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.Status != model.LocationStatusActive && req.Status != model.LocationStatusDeactivated {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be active or deactivated"})
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

	location, err := h.svc.UpdateStatus(tenantID, actor, id, req.Status)
	if err != nil {
		return serviceError(c, log, "Location", err)
	}
	prometheus.RecordActivityAppended("location")

	log.Info("Location status updated",
		zap.String("id", location.ID.String()),
		zap.String("status", location.Status))
	return c.JSON(http.StatusOK, location)
}
