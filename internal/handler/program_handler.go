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

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ProgramHandler exposes program endpoints
type ProgramHandler struct {
	svc *service.ProgramService
}

func NewProgramHandler(svc *service.ProgramService) *ProgramHandler {
	return &ProgramHandler{svc: svc}
}

func (h *ProgramHandler) List(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("program", "list")

	tenantID, ok := requireTenant(c, log)
	if !ok {
		return nil
	}

	page, limit := pageParams(c, "limit")

	defer prometheus.TrackDBOperation("query")(time.Now())

	items, total, err := h.svc.List(tenantID, page, limit)
	if err != nil {
		return serviceError(c, log, "Program", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"programs":   items,
		"pagination": paginationMap(page, limit, total),
	})
}

func (h *ProgramHandler) Get(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("program", "get")

	tenantID, ok := requireTenant(c, log)
	if !ok {
		return nil
	}

	id, err := pathID(c)
	if err != nil {
		log.Error("Invalid program ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid program ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	program, err := h.svc.Get(tenantID, id)
	if err != nil {
		return serviceError(c, log, "Program", err)
	}

	return c.JSON(http.StatusOK, program)
}

func (h *ProgramHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	log.Info("Creating new program")
	prometheus.RecordEntityOperation("program", "create")

	var req service.ProgramInput
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

	program, err := h.svc.Create(tenantID, actor, req)
	if err != nil {
		return serviceError(c, log, "Program", err)
	}
	prometheus.RecordActivityAppended("program")

	log.Info("Program created successfully",
		zap.String("id", program.ID.String()),
		zap.String("name", program.Name))
	return c.JSON(http.StatusCreated, program)
}

func (h *ProgramHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("program", "update")

	id, err := pathID(c)
	if err != nil {
		log.Error("Invalid program ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid program ID"})
	}

	var req service.ProgramInput
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

	program, err := h.svc.Update(tenantID, actor, id, req)
	if err != nil {
		return serviceError(c, log, "Program", err)
	}
	prometheus.RecordActivityAppended("program")

	return c.JSON(http.StatusOK, program)
}

func (h *ProgramHandler) Activities(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("program", "activities")

	tenantID, ok := requireTenant(c, log)
	if !ok {
		return nil
	}

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid program ID"})
	}

	page, pageSize := pageParams(c, "pageSize")

	defer prometheus.TrackDBOperation("query")(time.Now())

	history, err := h.svc.ActivityHistory(tenantID, id, page, pageSize)
	if err != nil {
		if errors.Is(err, activity.ErrDecode) {
			prometheus.RecordActivityDecodeError("program")
		}
		return serviceError(c, log, "Program", err)
	}

	return c.JSON(http.StatusOK, history)
}

func (h *ProgramHandler) Export(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("program", "export")

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
		return serviceError(c, log, "Program", err)
	}
	prometheus.RecordExport("program", string(fileType))

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="programs.csv"`)
	return c.Blob(http.StatusOK, "text/csv", data)
}

// statusRequest carries a status change payload
type statusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus deactivates or reactivates a program
func (h *ProgramHandler) UpdateStatus(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("program", "update_status")

	id, err := pathID(c)
	if err != nil {
		log.Error("Invalid program ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid program ID"})
	}

	var req statusRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.Status != model.ProgramStatusActive && req.Status != model.ProgramStatusDeactivated {
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

	program, err := h.svc.UpdateStatus(tenantID, actor, id, req.Status)
	if err != nil {
		return serviceError(c, log, "Program", err)
	}
	prometheus.RecordActivityAppended("program")

	log.Info("Program status updated",
		zap.String("id", program.ID.String()),
		zap.String("status", program.Status))
	return c.JSON(http.StatusOK, program)
}
