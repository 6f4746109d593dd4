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

// AccountHandler exposes account endpoints
type AccountHandler struct {
	svc *service.AccountService
}

func NewAccountHandler(svc *service.AccountService) *AccountHandler {
	return &AccountHandler{svc: svc}
}

func (h *AccountHandler) List(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("account", "list")

	tenantID, ok := requireTenant(c, log)
	if !ok {
		return nil
	}

	page, limit := pageParams(c, "limit")

	defer prometheus.TrackDBOperation("query")(time.Now())

	items, total, err := h.svc.List(tenantID, page, limit)
	if err != nil {
		return serviceError(c, log, "Account", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"accounts":   items,
		"pagination": paginationMap(page, limit, total),
	})
}

func (h *AccountHandler) Get(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("account", "get")

	tenantID, ok := requireTenant(c, log)
	if !ok {
		return nil
	}

	id, err := pathID(c)
	if err != nil {
		log.Error("Invalid account ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid account ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	account, err := h.svc.Get(tenantID, id)
	if err != nil {
		return serviceError(c, log, "Account", err)
	}

	return c.JSON(http.StatusOK, account)
}

func (h *AccountHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	log.Info("Creating new account")
	prometheus.RecordEntityOperation("account", "create")

	var req service.AccountInput
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

	account, err := h.svc.Create(tenantID, actor, req)
	if err != nil {
		return serviceError(c, log, "Account", err)
	}
	prometheus.RecordActivityAppended("account")

	log.Info("Account created successfully",
		zap.String("id", account.ID.String()),
		zap.String("name", account.Name))
	return c.JSON(http.StatusCreated, account)
}

func (h *AccountHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("account", "update")

	id, err := pathID(c)
	if err != nil {
		log.Error("Invalid account ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid account ID"})
	}

	var req service.AccountInput
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

	account, err := h.svc.Update(tenantID, actor, id, req)
	if err != nil {
		return serviceError(c, log, "Account", err)
	}
	prometheus.RecordActivityAppended("account")

	return c.JSON(http.StatusOK, account)
}

func (h *AccountHandler) Activities(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("account", "activities")

	tenantID, ok := requireTenant(c, log)
	if !ok {
		return nil
	}

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid account ID"})
	}

	page, pageSize := pageParams(c, "pageSize")

	defer prometheus.TrackDBOperation("query")(time.Now())

	history, err := h.svc.ActivityHistory(tenantID, id, page, pageSize)
	if err != nil {
		if errors.Is(err, activity.ErrDecode) {
			prometheus.RecordActivityDecodeError("account")
		}
		return serviceError(c, log, "Account", err)
	}

	return c.JSON(http.StatusOK, history)
}

func (h *AccountHandler) Export(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("account", "export")

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
		return serviceError(c, log, "Account", err)
	}
	prometheus.RecordExport("account", string(fileType))

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="accounts.csv"`)
	return c.Blob(http.StatusOK, "text/csv", data)
}
