package handler

import (
	"errors"
	"net/http"
	"time"

	"practice-service/internal/activity"
	"practice-service/internal/service"
	"practice-service/pkg/logger"
	"practice-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// TenantHandler exposes tenant administration endpoints
type TenantHandler struct {
	svc *service.TenantService
}

func NewTenantHandler(svc *service.TenantService) *TenantHandler {
	return &TenantHandler{svc: svc}
}

// List returns the tenants the authenticated user belongs to
func (h *TenantHandler) List(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("tenant", "list")

	actor, ok := requireActor(c, log)
	if !ok {
		return nil
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	memberships, err := h.svc.ListForUser(actor.ID)
	if err != nil {
		return serviceError(c, log, "Tenant", err)
	}

	tenants := make([]echo.Map, 0, len(memberships))
	for _, m := range memberships {
		tenants = append(tenants, echo.Map{
			"id":          m.TenantID,
			"name":        m.Tenant.Name,
			"description": m.Tenant.Description,
			"status":      m.Tenant.Status,
			"is_default":  m.IsDefault,
		})
	}

	return c.JSON(http.StatusOK, echo.Map{"tenants": tenants})
}

// Get returns one tenant the authenticated user belongs to
func (h *TenantHandler) Get(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("tenant", "get")

	actor, ok := requireActor(c, log)
	if !ok {
		return nil
	}

	id, err := pathID(c)
	if err != nil {
		log.Error("Invalid tenant ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid tenant ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	tenant, err := h.svc.Get(id, actor.ID)
	if err != nil {
		return serviceError(c, log, "Tenant", err)
	}

	return c.JSON(http.StatusOK, tenant)
}

// Create provisions a new tenant owned by the authenticated user
func (h *TenantHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("tenant", "create")

	actor, ok := requireActor(c, log)
	if !ok {
		return nil
	}

	var req service.TenantInput
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse tenant creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Name == "" {
		log.Error("Invalid tenant data", zap.String("name", req.Name))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	tenant, err := h.svc.Create(actor.ID, req)
	if err != nil {
		return serviceError(c, log, "Tenant", err)
	}

	log.Info("Tenant created successfully",
		zap.String("id", tenant.ID.String()),
		zap.String("name", tenant.Name),
		zap.String("owner_id", actor.ID.String()))
	return c.JSON(http.StatusCreated, tenant)
}

// Update changes a tenant's name or description; owner only
func (h *TenantHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("tenant", "update")

	actor, ok := requireActor(c, log)
	if !ok {
		return nil
	}

	id, err := pathID(c)
	if err != nil {
		log.Error("Invalid tenant ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid tenant ID"})
	}

	var req service.TenantInput
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse tenant update request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	tenant, err := h.svc.Update(id, actor, req)
	if err != nil {
		return serviceError(c, log, "Tenant", err)
	}
	prometheus.RecordActivityAppended("tenant")

	log.Info("Tenant updated successfully",
		zap.String("id", tenant.ID.String()),
		zap.String("name", tenant.Name))
	return c.JSON(http.StatusOK, tenant)
}

// Activities returns the tenant audit trail
func (h *TenantHandler) Activities(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("tenant", "activities")

	actor, ok := requireActor(c, log)
	if !ok {
		return nil
	}

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid tenant ID"})
	}

	page, pageSize := pageParams(c, "pageSize")

	defer prometheus.TrackDBOperation("query")(time.Now())

	history, err := h.svc.ActivityHistory(id, actor.ID, page, pageSize)
	if err != nil {
		if errors.Is(err, activity.ErrDecode) {
			prometheus.RecordActivityDecodeError("tenant")
		}
		return serviceError(c, log, "Tenant", err)
	}

	return c.JSON(http.StatusOK, history)
}
