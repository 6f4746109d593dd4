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

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ContactHandler exposes contact endpoints
type ContactHandler struct {
	svc *service.ContactService
}

func NewContactHandler(svc *service.ContactService) *ContactHandler {
	return &ContactHandler{svc: svc}
}

func (h *ContactHandler) List(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("contact", "list")

	tenantID, ok := requireTenant(c, log)
	if !ok {
		return nil
	}

	page, limit := pageParams(c, "limit")

	defer prometheus.TrackDBOperation("query")(time.Now())

	items, total, err := h.svc.List(tenantID, page, limit)
	if err != nil {
		return serviceError(c, log, "Contact", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"contacts":   items,
		"pagination": paginationMap(page, limit, total),
	})
}

func (h *ContactHandler) Get(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("contact", "get")

	tenantID, ok := requireTenant(c, log)
	if !ok {
		return nil
	}

	id, err := pathID(c)
	if err != nil {
		log.Error("Invalid contact ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid contact ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	contact, err := h.svc.Get(tenantID, id)
	if err != nil {
		return serviceError(c, log, "Contact", err)
	}

	return c.JSON(http.StatusOK, contact)
}

func (h *ContactHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	log.Info("Creating new contact")
	prometheus.RecordEntityOperation("contact", "create")

	var req service.ContactInput
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email is required"})
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

	contact, err := h.svc.Create(tenantID, actor, req)
	if err != nil {
		return serviceError(c, log, "Contact", err)
	}
	prometheus.RecordActivityAppended("contact")

	log.Info("Contact created successfully",
		zap.String("id", contact.ID.String()),
		zap.String("name", contact.FullName()))
	return c.JSON(http.StatusCreated, contact)
}

func (h *ContactHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("contact", "update")

	id, err := pathID(c)
	if err != nil {
		log.Error("Invalid contact ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid contact ID"})
	}

	var req service.ContactInput
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email is required"})
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

	contact, err := h.svc.Update(tenantID, actor, id, req)
	if err != nil {
		return serviceError(c, log, "Contact", err)
	}
	prometheus.RecordActivityAppended("contact")

	return c.JSON(http.StatusOK, contact)
}

func (h *ContactHandler) Activities(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("contact", "activities")

	tenantID, ok := requireTenant(c, log)
	if !ok {
		return nil
	}

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid contact ID"})
	}

	page, pageSize := pageParams(c, "pageSize")

	defer prometheus.TrackDBOperation("query")(time.Now())

	history, err := h.svc.ActivityHistory(tenantID, id, page, pageSize)
	if err != nil {
		if errors.Is(err, activity.ErrDecode) {
			prometheus.RecordActivityDecodeError("contact")
		}
		return serviceError(c, log, "Contact", err)
	}

	return c.JSON(http.StatusOK, history)
}

func (h *ContactHandler) Export(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("contact", "export")

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
		return serviceError(c, log, "Contact", err)
	}
	prometheus.RecordExport("contact", string(fileType))

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="contacts.csv"`)
	return c.Blob(http.StatusOK, "text/csv", data)
}
