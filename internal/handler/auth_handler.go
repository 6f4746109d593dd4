package handler

import (
	"net/http"
	"strings"
	"time"

	"practice-service/internal/model"
	"practice-service/internal/service"
	"practice-service/pkg/jwtutil"
	"practice-service/pkg/logger"
	"practice-service/prometheus"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthHandler exposes registration, login and tenant switching
type AuthHandler struct {
	db      *gorm.DB
	tenants *service.TenantService
	users   *service.UserService
}

func NewAuthHandler(db *gorm.DB, tenants *service.TenantService, users *service.UserService) *AuthHandler {
	return &AuthHandler{db: db, tenants: tenants, users: users}
}

// Register creates a new user account
func (h *AuthHandler) Register(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.AuthAttemptsCounter.Inc()

	// Parse request
	var req struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse registration request", zap.Error(err))
		prometheus.RecordAuthError()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Email == "" || req.Password == "" {
		log.Error("Invalid registration data",
			zap.String("email", req.Email),
			zap.Bool("password_provided", req.Password != ""))
		prometheus.RecordAuthError()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}

	// Check if user already exists - track DB query
	defer prometheus.TrackDBOperation("query")(time.Now())
	var existingUser model.User
	result := h.db.Where("email = ?", req.Email).First(&existingUser)
	if result.Error == nil {
		log.Error("User already exists", zap.String("email", req.Email))
		prometheus.RecordAuthError()
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		prometheus.RecordAuthError()
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	user := model.User{
		Email:     req.Email,
		Password:  string(hashedPassword),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Status:    model.UserStatusActive,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := h.db.Create(&user); result.Error != nil {
		log.Error("Failed to create user", zap.Error(result.Error))
		prometheus.RecordAuthError()
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	log.Info("User registered", zap.String("email", user.Email))
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "User registered successfully",
		"user": echo.Map{
			"id":    user.ID,
			"email": user.Email,
		},
	})
}

// Login verifies credentials and issues a token, with tenant context when
// the user selected a tenant or has a default membership
func (h *AuthHandler) Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.AuthAttemptsCounter.Inc()

	// Parse request
	var req struct {
		Email    string     `json:"email"`
		Password string     `json:"password"`
		TenantID *uuid.UUID `json:"tenant_id,omitempty"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	// Find user in database - track DB operation duration
	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	result := h.db.Where("email = ?", req.Email).First(&user)
	if result.Error != nil {
		log.Error("User not found", zap.String("email", req.Email))
		prometheus.RecordAuthError()
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		log.Error("Invalid password", zap.String("email", req.Email))
		prometheus.RecordAuthError()
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	if user.Status != model.UserStatusActive {
		log.Warn("Deactivated user attempted login", zap.String("email", req.Email))
		prometheus.RecordAuthError()
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "account deactivated"})
	}

	// Resolve tenant context: requested tenant first, then default membership
	var membership *model.TenantUser
	if req.TenantID != nil {
		m, err := h.tenants.Membership(*req.TenantID, user.ID)
		if err != nil {
			log.Error("User does not have access to the specified tenant",
				zap.String("email", req.Email),
				zap.String("tenant_id", req.TenantID.String()))
			prometheus.RecordAuthError()
			return c.JSON(http.StatusNotFound, echo.Map{"error": "tenant not found"})
		}
		membership = m
	} else {
		memberships, err := h.tenants.ListForUser(user.ID)
		if err != nil {
			log.Error("Failed to load tenant memberships", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
		}
		for i := range memberships {
			if memberships[i].IsDefault {
				membership = &memberships[i]
				break
			}
		}
	}

	// Generate JWT token with tenant information if available
	var token string
	var err error
	if membership != nil {
		roles, rolesErr := h.users.Roles(membership.TenantID, user.ID)
		if rolesErr != nil {
			log.Error("Failed to load roles", zap.Error(rolesErr))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
		}
		token, err = jwtutil.GenerateTokenWithTenant(
			user.Email, user.ID, user.FullName(),
			&membership.TenantID, membership.Tenant.Name, strings.Join(roles, ","))
	} else {
		token, err = jwtutil.GenerateToken(user.Email, user.ID, user.FullName())
	}
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError()
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	prometheus.AuthSuccessCounter.Inc()

	response := echo.Map{
		"token": token,
		"user": echo.Map{
			"id":    user.ID,
			"email": user.Email,
			"name":  user.FullName(),
		},
	}
	if membership != nil {
		response["tenant"] = echo.Map{
			"id":   membership.TenantID,
			"name": membership.Tenant.Name,
		}
		log.Info("User logged in with tenant context",
			zap.String("email", user.Email),
			zap.String("tenant_id", membership.TenantID.String()),
			zap.String("tenant_name", membership.Tenant.Name))
	} else {
		log.Info("User logged in", zap.String("email", user.Email))
	}

	return c.JSON(http.StatusOK, response)
}

// SwitchTenant issues a new token scoped to another tenant the user belongs
// to and records the tenant entry in its audit trail
func (h *AuthHandler) SwitchTenant(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.AuthAttemptsCounter.Inc()

	var req struct {
		TenantID uuid.UUID `json:"tenant_id"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse switch-tenant request", zap.Error(err))
		prometheus.RecordAuthError()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.TenantID == uuid.Nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant_id is required"})
	}

	actor, ok := requireActor(c, log)
	if !ok {
		return nil
	}
	email, _ := c.Get("email").(string)

	defer prometheus.TrackDBOperation("query")(time.Now())

	membership, err := h.tenants.Membership(req.TenantID, actor.ID)
	if err != nil {
		log.Warn("Tenant switch to inaccessible tenant",
			zap.String("user_id", actor.ID.String()),
			zap.String("tenant_id", req.TenantID.String()))
		prometheus.RecordAuthError()
		return c.JSON(http.StatusNotFound, echo.Map{"error": "tenant not found"})
	}

	roles, err := h.users.Roles(req.TenantID, actor.ID)
	if err != nil {
		log.Error("Failed to load roles", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "tenant switch failed"})
	}

	token, err := jwtutil.GenerateTokenWithTenant(
		email, actor.ID, actor.FullName,
		&membership.TenantID, membership.Tenant.Name, strings.Join(roles, ","))
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError()
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	// Record the tenant entry; exit from the previous tenant is recorded too
	if prevTenant, ok := tenantFromContext(c); ok && prevTenant != req.TenantID {
		if err := h.tenants.RecordAccess(prevTenant, actor, false); err != nil {
			log.Error("Failed to record tenant exit", zap.Error(err))
		}
	}
	if err := h.tenants.RecordAccess(req.TenantID, actor, true); err != nil {
		log.Error("Failed to record tenant entry", zap.Error(err))
	}
	prometheus.RecordActivityAppended("tenant")

	prometheus.AuthSuccessCounter.Inc()
	log.Info("Tenant switched",
		zap.String("user_id", actor.ID.String()),
		zap.String("tenant_id", req.TenantID.String()),
		zap.String("tenant_name", membership.Tenant.Name))

	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"tenant": echo.Map{
			"id":   membership.TenantID,
			"name": membership.Tenant.Name,
		},
	})
}

// Me returns the authenticated user's profile and tenant memberships
func (h *AuthHandler) Me(c echo.Context) error {
	log := logger.FromContext(c)

	actor, ok := requireActor(c, log)
	if !ok {
		return nil
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var user model.User
	if result := h.db.First(&user, "id = ?", actor.ID); result.Error != nil {
		log.Error("User not found", zap.String("user_id", actor.ID.String()))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	memberships, err := h.tenants.ListForUser(actor.ID)
	if err != nil {
		log.Error("Failed to load tenant memberships", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load profile"})
	}

	tenants := make([]echo.Map, 0, len(memberships))
	for _, m := range memberships {
		tenants = append(tenants, echo.Map{
			"id":         m.TenantID,
			"name":       m.Tenant.Name,
			"is_default": m.IsDefault,
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user":    user,
		"tenants": tenants,
	})
}
