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

// DepartmentHandler exposes department endpoints
type DepartmentHandler struct {
	svc *service.DepartmentService
}

func NewDepartmentHandler(svc *service.DepartmentService) *DepartmentHandler {
	return &DepartmentHandler{svc: svc}
}

func (h *DepartmentHandler) List(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("department", "list")

	tenantID, ok := requireTenant(c, log)
	if !ok {
		return nil
	}

	page, limit := pageParams(c, "limit")

	defer prometheus.TrackDBOperation("query")(time.Now())

	items, total, err := h.svc.List(tenantID, page, limit)
	if err != nil {
		return serviceError(c, log, "Department", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"departments": items,
		"pagination":  paginationMap(page, limit, total),
	})
}

func (h *DepartmentHandler) Get(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("department", "get")

	tenantID, ok := requireTenant(c, log)
	if !ok {
		return nil
	}

	id, err := pathID(c)
	if err != nil {
		log.Error("Invalid department ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid department ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	department, err := h.svc.Get(tenantID, id)
	if err != nil {
		return serviceError(c, log, "Department", err)
	}

	return c.JSON(http.StatusOK, department)
}

func (h *DepartmentHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	log.Info("Creating new department")
	prometheus.RecordEntityOperation("department", "create")

	var req service.DepartmentInput
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

	department, err := h.svc.Create(tenantID, actor, req)
	if err != nil {
		return serviceError(c, log, "Department", err)
	}
	prometheus.RecordActivityAppended("department")

	log.Info("Department created successfully",
		zap.String("id", department.ID.String()),
		zap.String("name", department.Name))
	return c.JSON(http.StatusCreated, department)
}

func (h *DepartmentHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("department", "update")

	id, err := pathID(c)
	if err != nil {
		log.Error("Invalid department ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid department ID"})
	}

	var req service.DepartmentInput
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

	department, err := h.svc.Update(tenantID, actor, id, req)
	if err != nil {
		return serviceError(c, log, "Department", err)
	}
	prometheus.RecordActivityAppended("department")

	return c.JSON(http.StatusOK, department)
}

func (h *DepartmentHandler) Activities(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("department", "activities")

	tenantID, ok := requireTenant(c, log)
	if !ok {
		return nil
	}

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid department ID"})
	}

	page, pageSize := pageParams(c, "pageSize")

	defer prometheus.TrackDBOperation("query")(time.Now())

	history, err := h.svc.ActivityHistory(tenantID, id, page, pageSize)
	if err != nil {
		if errors.Is(err, activity.ErrDecode) {
			prometheus.RecordActivityDecodeError("department")
		}
		return serviceError(c, log, "Department", err)
	}

	return c.JSON(http.StatusOK, history)
}

func (h *DepartmentHandler) Export(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("department", "export")

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
		return serviceError(c, log, "Department", err)
	}
	prometheus.RecordExport("department", string(fileType))

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="departments.csv"`)
	return c.Blob(http.StatusOK, "text/csv", data)
}
