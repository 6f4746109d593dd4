package handler

import (
	"errors"
	"net/http"
	"strconv"

	"practice-service/internal/service"
	"practice-service/prometheus"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// tenantFromContext pulls the tenant ID set by the auth middleware
func tenantFromContext(c echo.Context) (uuid.UUID, bool) {
	tenantID, ok := c.Get("tenant_id").(uuid.UUID)
	if !ok || tenantID == uuid.Nil {
		return uuid.Nil, false
	}
	return tenantID, true
}

// actorFromContext builds the acting user from the auth middleware claims
func actorFromContext(c echo.Context) (service.Actor, bool) {
	userID, ok := c.Get("user_id").(uuid.UUID)
	if !ok {
		return service.Actor{}, false
	}
	fullName, _ := c.Get("full_name").(string)
	roles, _ := c.Get("roles").(string)
	return service.Actor{ID: userID, FullName: fullName, Roles: roles}, true
}

// pathID parses the :id route parameter
func pathID(c echo.Context) (uuid.UUID, error) {
	return uuid.Parse(c.Param("id"))
}

// pageParams parses page/limit style query parameters with a default limit
func pageParams(c echo.Context, limitParam string) (int, int) {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam(limitParam))
	return page, limit
}

// paginationMap is the standard list response envelope
func paginationMap(page, limit int, total int64) echo.Map {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return echo.Map{
		"current_page": page,
		"limit":        limit,
		"total":        total,
		"total_pages":  (int(total) + limit - 1) / limit,
	}
}

// serviceError maps service failures onto HTTP responses
func serviceError(c echo.Context, log *zap.Logger, noun string, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		log.Warn(noun+" not found or does not belong to tenant", zap.Error(err))
		return c.JSON(http.StatusNotFound, echo.Map{"error": noun + " not found"})
	case errors.Is(err, service.ErrDuplicate):
		log.Warn(noun+" already exists for this tenant", zap.Error(err))
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	default:
		log.Error("Failed to process "+noun+" request", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to process request"})
	}
}

// requireTenant extracts the tenant set by the auth middleware. When it
// is absent the missing-tenant response has already been written and ok
// is false; the handler must return immediately without touching the
// database.
func requireTenant(c echo.Context, log *zap.Logger) (uuid.UUID, bool) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		log.Warn("Missing tenant_id in context")
		prometheus.TenantContextMissingCounter.Inc()
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant_id is required"})
		return uuid.Nil, false
	}
	return tenantID, true
}

// requireActor extracts the acting user. Same contract as
// requireTenant: on ok == false the 401 response is already written.
func requireActor(c echo.Context, log *zap.Logger) (service.Actor, bool) {
	actor, ok := actorFromContext(c)
	if !ok {
		log.Error("Failed to get user ID from context")
		_ = c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
		return service.Actor{}, false
	}
	return actor, true
}
