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

// JobTitleHandler exposes job title endpoints
type JobTitleHandler struct {
	svc *service.JobTitleService
}

func NewJobTitleHandler(svc *service.JobTitleService) *JobTitleHandler {
	return &JobTitleHandler{svc: svc}
}

func (h *JobTitleHandler) List(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("job_title", "list")

	tenantID, ok := requireTenant(c, log)
	if !ok {
		return nil
	}

	page, limit := pageParams(c, "limit")

	defer prometheus.TrackDBOperation("query")(time.Now())

	items, total, err := h.svc.List(tenantID, page, limit)
	if err != nil {
		return serviceError(c, log, "Job title", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"job_titles": items,
		"pagination": paginationMap(page, limit, total),
	})
}

func (h *JobTitleHandler) Get(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("job_title", "get")

	tenantID, ok := requireTenant(c, log)
	if !ok {
		return nil
	}

	id, err := pathID(c)
	if err != nil {
		log.Error("Invalid job title ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid job title ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	jobTitle, err := h.svc.Get(tenantID, id)
	if err != nil {
		return serviceError(c, log, "Job title", err)
	}

	return c.JSON(http.StatusOK, jobTitle)
}

func (h *JobTitleHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	log.Info("Creating new job title")
	prometheus.RecordEntityOperation("job_title", "create")

	var req service.JobTitleInput
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

	jobTitle, err := h.svc.Create(tenantID, actor, req)
	if err != nil {
		return serviceError(c, log, "Job title", err)
	}
	prometheus.RecordActivityAppended("job_title")

	log.Info("Job title created successfully",
		zap.String("id", jobTitle.ID.String()),
		zap.String("name", jobTitle.Name))
	return c.JSON(http.StatusCreated, jobTitle)
}

func (h *JobTitleHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("job_title", "update")

	id, err := pathID(c)
	if err != nil {
		log.Error("Invalid job title ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid job title ID"})
	}

	var req service.JobTitleInput
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

	jobTitle, err := h.svc.Update(tenantID, actor, id, req)
	if err != nil {
		return serviceError(c, log, "Job title", err)
	}
	prometheus.RecordActivityAppended("job_title")

	return c.JSON(http.StatusOK, jobTitle)
}

func (h *JobTitleHandler) Activities(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("job_title", "activities")

	tenantID, ok := requireTenant(c, log)
	if !ok {
		return nil
	}

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid job title ID"})
	}

	page, pageSize := pageParams(c, "pageSize")

	defer prometheus.TrackDBOperation("query")(time.Now())

	history, err := h.svc.ActivityHistory(tenantID, id, page, pageSize)
	if err != nil {
		if errors.Is(err, activity.ErrDecode) {
			prometheus.RecordActivityDecodeError("job_title")
		}
		return serviceError(c, log, "Job title", err)
	}

	return c.JSON(http.StatusOK, history)
}

func (h *JobTitleHandler) Export(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("job_title", "export")

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
		return serviceError(c, log, "Job title", err)
	}
	prometheus.RecordExport("job_title", string(fileType))

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="job_titles.csv"`)
	return c.Blob(http.StatusOK, "text/csv", data)
}
