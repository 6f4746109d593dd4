package jwtutil

import (
	"errors"
	"fmt"
	"time"

	"practice-service/pkg/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var jwtConfig *config.JWTConfig

// TenantClaims extends jwt.RegisteredClaims to include tenant information
type TenantClaims struct {
	Email      string     `json:"email"`
	UserID     uuid.UUID  `json:"user_id"`
	FullName   string     `json:"full_name,omitempty"`
	TenantID   *uuid.UUID `json:"tenant_id,omitempty"`
	TenantName string     `json:"tenant_name,omitempty"`
	Roles      string     `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// Initialize sets up the JWT utility with configuration
func Initialize(cfg *config.JWTConfig) {
	jwtConfig = cfg
}

// GenerateToken creates a new JWT token for a user without tenant context
func GenerateToken(email string, userID uuid.UUID, fullName string) (string, error) {
	return generateTokenWithClaims(email, userID, fullName, nil, "", "")
}

// GenerateTokenWithTenant creates a new JWT token with tenant context
func GenerateTokenWithTenant(email string, userID uuid.UUID, fullName string, tenantID *uuid.UUID, tenantName, roles string) (string, error) {
	return generateTokenWithClaims(email, userID, fullName, tenantID, tenantName, roles)
}

func generateTokenWithClaims(email string, userID uuid.UUID, fullName string, tenantID *uuid.UUID, tenantName, roles string) (string, error) {
	if jwtConfig == nil {
		return "", errors.New("JWT configuration not initialized")
	}

	claims := &TenantClaims{
		Email:      email,
		UserID:     userID,
		FullName:   fullName,
		TenantID:   tenantID,
		TenantName: tenantName,
		Roles:      roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(jwtConfig.ExpirationHours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtConfig.SigningKey))
}

// ValidateToken validates and parses the JWT token
func ValidateToken(tokenString string) (*TenantClaims, error) {
	if jwtConfig == nil {
		return nil, errors.New("JWT configuration not initialized")
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&TenantClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(jwtConfig.SigningKey), nil
		},
	)
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*TenantClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}
