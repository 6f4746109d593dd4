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

// UserHandler exposes tenant user management endpoints
type UserHandler struct {
	svc *service.UserService
}

func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

func (h *UserHandler) List(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("user", "list")

	tenantID, ok := requireTenant(c, log)
	if !ok {
		return nil
	}

	page, limit := pageParams(c, "limit")

	defer prometheus.TrackDBOperation("query")(time.Now())

	users, total, err := h.svc.List(tenantID, page, limit)
	if err != nil {
		return serviceError(c, log, "User", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"users":      users,
		"pagination": paginationMap(page, limit, total),
	})
}

func (h *UserHandler) Get(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("user", "get")

	tenantID, ok := requireTenant(c, log)
	if !ok {
		return nil
	}

	id, err := pathID(c)
	if err != nil {
		log.Error("Invalid user ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid user ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	user, err := h.svc.Get(tenantID, id)
	if err != nil {
		return serviceError(c, log, "User", err)
	}

	roles, err := h.svc.Roles(tenantID, id)
	if err != nil {
		return serviceError(c, log, "User", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user":  user,
		"roles": roles,
	})
}

func (h *UserHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	log.Info("Creating new tenant user")
	prometheus.RecordEntityOperation("user", "create")

	var req service.UserInput
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email is required"})
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

	user, err := h.svc.Create(tenantID, actor, req)
	if err != nil {
		return serviceError(c, log, "User", err)
	}
	prometheus.RecordActivityAppended("user")

	log.Info("User created successfully",
		zap.String("id", user.ID.String()),
		zap.String("email", user.Email),
		zap.String("tenant_id", tenantID.String()))
	return c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("user", "update")

	id, err := pathID(c)
	if err != nil {
		log.Error("Invalid user ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid user ID"})
	}

	var req service.UserInput
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
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

	user, err := h.svc.Update(tenantID, actor, id, req)
	if err != nil {
		return serviceError(c, log, "User", err)
	}
	prometheus.RecordActivityAppended("user")

	return c.JSON(http.StatusOK, user)
}

// UpdateStatus deactivates or reactivates a tenant user
func (h *UserHandler) UpdateStatus(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("user", "update_status")

	id, err := pathID(c)
	if err != nil {
		log.Error("Invalid user ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid user ID"})
	}

	var req statusRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.Status != model.UserStatusActive && req.Status != model.UserStatusDeactivated {
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

	user, err := h.svc.UpdateStatus(tenantID, actor, id, req.Status)
	if err != nil {
		return serviceError(c, log, "User", err)
	}
	prometheus.RecordActivityAppended("user")

	log.Info("User status updated",
		zap.String("id", user.ID.String()),
		zap.String("status", user.Status))
	return c.JSON(http.StatusOK, user)
}

// rolesRequest carries role names for assignment or removal
type rolesRequest struct {
	Roles []string `json:"roles"`
}

// AssignRoles grants roles to a tenant user
func (h *UserHandler) AssignRoles(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("user", "assign_roles")

	id, err := pathID(c)
	if err != nil {
		log.Error("Invalid user ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid user ID"})
	}

	var req rolesRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if len(req.Roles) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "roles is required"})
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

	if err := h.svc.AssignRoles(tenantID, actor, id, req.Roles); err != nil {
		return serviceError(c, log, "User", err)
	}
	prometheus.RecordActivityAppended("user")

	roles, err := h.svc.Roles(tenantID, id)
	if err != nil {
		return serviceError(c, log, "User", err)
	}

	log.Info("Roles assigned",
		zap.String("user_id", id.String()),
		zap.Strings("roles", req.Roles))
	return c.JSON(http.StatusOK, echo.Map{"roles": roles})
}

// UnassignRoles revokes roles from a tenant user
func (h *UserHandler) UnassignRoles(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("user", "unassign_roles")

	id, err := pathID(c)
	if err != nil {
		log.Error("Invalid user ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid user ID"})
	}

	var req rolesRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if len(req.Roles) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "roles is required"})
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

	if err := h.svc.UnassignRoles(tenantID, actor, id, req.Roles); err != nil {
		return serviceError(c, log, "User", err)
	}
	prometheus.RecordActivityAppended("user")

	roles, err := h.svc.Roles(tenantID, id)
	if err != nil {
		return serviceError(c, log, "User", err)
	}

	log.Info("Roles unassigned",
		zap.String("user_id", id.String()),
		zap.Strings("roles", req.Roles))
	return c.JSON(http.StatusOK, echo.Map{"roles": roles})
}

func (h *UserHandler) Activities(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("user", "activities")

	tenantID, ok := requireTenant(c, log)
	if !ok {
		return nil
	}

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid user ID"})
	}

	page, pageSize := pageParams(c, "pageSize")

	defer prometheus.TrackDBOperation("query")(time.Now())

	history, err := h.svc.ActivityHistory(tenantID, id, page, pageSize)
	if err != nil {
		if errors.Is(err, activity.ErrDecode) {
			prometheus.RecordActivityDecodeError("user")
		}
		return serviceError(c, log, "User", err)
	}

	return c.JSON(http.StatusOK, history)
}

func (h *UserHandler) Export(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("user", "export")

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
		return serviceError(c, log, "User", err)
	}
	prometheus.RecordExport("user", string(fileType))

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="users.csv"`)
	return c.Blob(http.StatusOK, "text/csv", data)
}
