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

// DivisionHandler exposes division endpoints
type DivisionHandler struct {
	svc *service.DivisionService
}

func NewDivisionHandler(svc *service.DivisionService) *DivisionHandler {
	return &DivisionHandler{svc: svc}
}

func (h *DivisionHandler) List(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("division", "list")

	tenantID, ok := requireTenant(c, log)
	if !ok {
		return nil
	}

	page, limit := pageParams(c, "limit")

	defer prometheus.TrackDBOperation("query")(time.Now())

	divisions, total, err := h.svc.List(tenantID, page, limit)
	if err != nil {
		return serviceError(c, log, "Division", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"divisions":  divisions,
		"pagination": paginationMap(page, limit, total),
	})
}

func (h *DivisionHandler) Get(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("division", "get")

	tenantID, ok := requireTenant(c, log)
	if !ok {
		return nil
	}

	id, err := pathID(c)
	if err != nil {
		log.Error("Invalid division ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid division ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	division, err := h.svc.Get(tenantID, id)
	if err != nil {
		return serviceError(c, log, "Division", err)
	}

	return c.JSON(http.StatusOK, division)
}

func (h *DivisionHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	log.Info("Creating new division")
	prometheus.RecordEntityOperation("division", "create")

	var req service.DivisionInput
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

	division, err := h.svc.Create(tenantID, actor, req)
	if err != nil {
		return serviceError(c, log, "Division", err)
	}
	prometheus.RecordActivityAppended("division")

	log.Info("Division created successfully",
		zap.String("id", division.ID.String()),
		zap.String("name", division.Name))
	return c.JSON(http.StatusCreated, division)
}

func (h *DivisionHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("division", "update")

	id, err := pathID(c)
	if err != nil {
		log.Error("Invalid division ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid division ID"})
	}

	var req service.DivisionInput
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

	division, err := h.svc.Update(tenantID, actor, id, req)
	if err != nil {
		return serviceError(c, log, "Division", err)
	}
	prometheus.RecordActivityAppended("division")

	return c.JSON(http.StatusOK, division)
}

func (h *DivisionHandler) Activities(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("division", "activities")

	tenantID, ok := requireTenant(c, log)
	if !ok {
		return nil
	}

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid division ID"})
	}

	page, pageSize := pageParams(c, "pageSize")

	defer prometheus.TrackDBOperation("query")(time.Now())

	history, err := h.svc.ActivityHistory(tenantID, id, page, pageSize)
	if err != nil {
		if errors.Is(err, activity.ErrDecode) {
			prometheus.RecordActivityDecodeError("division")
		}
		return serviceError(c, log, "Division", err)
	}

	return c.JSON(http.StatusOK, history)
}

func (h *DivisionHandler) Export(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("division", "export")

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
		return serviceError(c, log, "Division", err)
	}
	prometheus.RecordExport("division", string(fileType))

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="divisions.csv"`)
	return c.Blob(http.StatusOK, "text/csv", data)
}
