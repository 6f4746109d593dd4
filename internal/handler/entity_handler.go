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

// EntityHandler exposes entity endpoints
type EntityHandler struct {
	svc *service.EntityService
}

func NewEntityHandler(svc *service.EntityService) *EntityHandler {
	return &EntityHandler{svc: svc}
}

func (h *EntityHandler) List(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("entity", "list")

	tenantID, ok := requireTenant(c, log)
	if !ok {
		return nil
	}

	page, limit := pageParams(c, "limit")

	defer prometheus.TrackDBOperation("query")(time.Now())

	items, total, err := h.svc.List(tenantID, page, limit)
	if err != nil {
		return serviceError(c, log, "Entity", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"entities":   items,
		"pagination": paginationMap(page, limit, total),
	})
}

func (h *EntityHandler) Get(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("entity", "get")

	tenantID, ok := requireTenant(c, log)
	if !ok {
		return nil
	}

	id, err := pathID(c)
	if err != nil {
		log.Error("Invalid entity ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid entity ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	entity, err := h.svc.Get(tenantID, id)
	if err != nil {
		return serviceError(c, log, "Entity", err)
	}

	return c.JSON(http.StatusOK, entity)
}

func (h *EntityHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	log.Info("Creating new entity")
	prometheus.RecordEntityOperation("entity", "create")

	var req service.EntityInput
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

	entity, err := h.svc.Create(tenantID, actor, req)
	if err != nil {
		return serviceError(c, log, "Entity", err)
	}
	prometheus.RecordActivityAppended("entity")

	log.Info("Entity created successfully",
		zap.String("id", entity.ID.String()),
		zap.String("name", entity.Name))
	return c.JSON(http.StatusCreated, entity)
}

func (h *EntityHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("entity", "update")

	id, err := pathID(c)
	if err != nil {
		log.Error("Invalid entity ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid entity ID"})
	}

	var req service.EntityInput
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

	entity, err := h.svc.Update(tenantID, actor, id, req)
	if err != nil {
		return serviceError(c, log, "Entity", err)
	}
	prometheus.RecordActivityAppended("entity")

	return c.JSON(http.StatusOK, entity)
}

func (h *EntityHandler) Activities(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("entity", "activities")

	tenantID, ok := requireTenant(c, log)
	if !ok {
		return nil
	}

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid entity ID"})
	}

	page, pageSize := pageParams(c, "pageSize")

	defer prometheus.TrackDBOperation("query")(time.Now())

	history, err := h.svc.ActivityHistory(tenantID, id, page, pageSize)
	if err != nil {
		if errors.Is(err, activity.ErrDecode) {
			prometheus.RecordActivityDecodeError("entity")
		}
		return serviceError(c, log, "Entity", err)
	}

	return c.JSON(http.StatusOK, history)
}

func (h *EntityHandler) Export(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("entity", "export")

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
		return serviceError(c, log, "Entity", err)
	}
	prometheus.RecordExport("entity", string(fileType))

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="entities.csv"`)
	return c.Blob(http.StatusOK, "text/csv", data)
}

// UpdateStatus deactivates or reactivates an entity
func (h *EntityHandler) UpdateStatus(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("entity", "update_status")

	id, err := pathID(c)
	if err != nil {
		log.Error("Invalid entity ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid entity ID"})
	}

	var req statusRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.Status != model.EntityStatusActive && req.Status != model.EntityStatusDeactivated {
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

	entity, err := h.svc.UpdateStatus(tenantID, actor, id, req.Status)
	if err != nil {
		return serviceError(c, log, "Entity", err)
	}
	prometheus.RecordActivityAppended("entity")

	log.Info("Entity status updated",
		zap.String("id", entity.ID.String()),
		zap.String("status", entity.Status))
	return c.JSON(http.StatusOK, entity)
}
