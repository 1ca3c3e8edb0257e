package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/syshair/backend/pkg/logger"
	"github.com/syshair/backend/pkg/res"
)

// ContextKey avoids collisions with other gin context keys.
type ContextKey string

const (
	ContextUserIDKey  ContextKey = "userID"
	ContextSalonIDKey ContextKey = "salonID"
	ContextScopeKey   ContextKey = "scope"
	authHeaderPrefix             = "Bearer "
)

// ScopeService marks machine tokens (cron, internal callers) allowed to act
// on any salon and to trigger jobs.
const ScopeService = "service"

type TokenValidator interface {
	Validate(tokenString string) (*TokenClaims, error)
}

type TokenClaims struct {
	SalonID string `json:"salon_id"`
	Scope   string `json:"scope"`
	jwt.RegisteredClaims
}

type JWTMiddleware struct {
	log       *logger.Logger
	validator TokenValidator
}

func NewJWTMiddleware(log *logger.Logger, validator TokenValidator) *JWTMiddleware {
	return &JWTMiddleware{log: log, validator: validator}
}

// RequireAuth validates the bearer token and, when scopes are given,
// requires the token scope to be one of them.
func (m *JWTMiddleware) RequireAuth(requiredScopes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, authHeaderPrefix) {
			m.handleAuthError(c, "Missing authorization token")
			return
		}

		claims, err := m.validator.Validate(strings.TrimPrefix(authHeader, authHeaderPrefix))
		if err != nil {
			m.handleAuthError(c, fmt.Sprintf("Token validation failed: %v", err))
			return
		}

		if !hasRequiredScope(claims.Scope, requiredScopes) {
			m.handleAuthError(c, "Insufficient token permissions")
			return
		}

		if claims.Subject == "" {
			m.handleAuthError(c, "User ID (sub) missing in token")
			return
		}

		c.Set(string(ContextUserIDKey), claims.Subject)
		c.Set(string(ContextScopeKey), claims.Scope)
		if salonID, err := uuid.Parse(claims.SalonID); err == nil {
			c.Set(string(ContextSalonIDKey), salonID)
		}
		m.log.Debugw("User authenticated", "userID", claims.Subject, "salonID", claims.SalonID)
		c.Next()
	}
}

func hasRequiredScope(tokenScope string, requiredScopes []string) bool {
	if len(requiredScopes) == 0 {
		return true
	}
	for _, scope := range requiredScopes {
		if tokenScope == scope {
			return true
		}
	}
	return false
}

func (m *JWTMiddleware) handleAuthError(c *gin.Context, message string) {
	m.log.Warnw("HTTP authentication failed", "path", c.Request.URL.Path, "error", message)
	res.JsonResponse(c.Writer, res.ErrorResponse{
		Error:     message,
		ErrorCode: http.StatusUnauthorized,
	}, http.StatusUnauthorized)
	c.Abort()
}

// SalonFromContext returns the salon bound to the token, if any.
func SalonFromContext(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(string(ContextSalonIDKey))
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// CanAccessSalon reports whether the authenticated caller may act on salonID.
// Service tokens may act on any salon.
func CanAccessSalon(c *gin.Context, salonID uuid.UUID) bool {
	if c.GetString(string(ContextScopeKey)) == ScopeService {
		return true
	}
	own, ok := SalonFromContext(c)
	return ok && own == salonID
}

// DefaultTokenValidator checks HMAC-signed tokens.
type DefaultTokenValidator struct {
	Secret []byte
}

func (v *DefaultTokenValidator) Validate(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.Secret, nil
	})

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, errors.New("malformed token")
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, errors.New("invalid token signature")
		case errors.Is(err, jwt.ErrTokenExpired), errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, errors.New("token expired")
		default:
			return nil, fmt.Errorf("invalid token: %w", err)
		}
	}

	if claims, ok := token.Claims.(*TokenClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token claims")
}
