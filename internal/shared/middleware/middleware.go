package middleware

import (
	"net/http"
	"strings"
	"time"

	"hobbystudio/internal/shared/config"
	"hobbystudio/internal/shared/utils/response"
	"hobbystudio/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// Roles carried in the access token's "role" claim
const (
	RoleAdmin       = "admin"
	RoleStudioOwner = "studio_owner"
	RoleInstructor  = "instructor"
)

// Context keys set by JWTAuthWithConfig and RequestID
const (
	ContextUserID    = "user_id"
	ContextUserEmail = "user_email"
	ContextUserRole  = "user_role"
	ContextStudioID  = "studio_id"
	ContextRequestID = "request_id"
)

const RequestIDHeader = "X-Request-ID"

// JWTAuthWithConfig verifies HMAC access tokens issued by the platform's auth service
func JWTAuthWithConfig(cfg *config.Config) gin.HandlerFunc {
	log := logger.GetDefault()

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.RespondJSON(c, response.StatusError, http.StatusUnauthorized, "Authorization header is required", nil, nil)
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.RespondJSON(c, response.StatusError, http.StatusUnauthorized, "authorization header format must be Bearer {token}", nil, nil)
			c.Abort()
			return
		}

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(cfg.JWT.Secret), nil
		})
		if err != nil || !token.Valid {
			log.LogAuthFailure(c.Request.Context(), "invalid token", c.ClientIP())
			response.RespondJSON(c, response.StatusError, http.StatusUnauthorized, "invalid or expired token", nil, nil)
			c.Abort()
			return
		}

		if tokenType, _ := claims["type"].(string); tokenType != "access" {
			log.LogAuthFailure(c.Request.Context(), "wrong token type", c.ClientIP())
			response.RespondJSON(c, response.StatusError, http.StatusUnauthorized, "invalid token type", nil, nil)
			c.Abort()
			return
		}

		if cfg.JWT.Issuer != "" && !claims.VerifyIssuer(cfg.JWT.Issuer, true) {
			log.LogAuthFailure(c.Request.Context(), "issuer mismatch", c.ClientIP())
			response.RespondJSON(c, response.StatusError, http.StatusUnauthorized, "invalid token issuer", nil, nil)
			c.Abort()
			return
		}

		c.Set(ContextUserID, stringClaim(claims, "user_id"))
		c.Set(ContextUserEmail, stringClaim(claims, "email"))
		c.Set(ContextUserRole, stringClaim(claims, "role"))
		c.Set(ContextStudioID, stringClaim(claims, "studio_id"))

		c.Next()
	}
}

func stringClaim(claims jwt.MapClaims, key string) string {
	v, _ := claims[key].(string)
	return v
}

// RequireRoles middleware checks if user has any of the required roles
func RequireRoles(requiredRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole := c.GetString(ContextUserRole)
		if userRole == "" {
			response.RespondJSON(c, response.StatusError, http.StatusUnauthorized, "user role not found in context", nil, nil)
			c.Abort()
			return
		}

		for _, role := range requiredRoles {
			if userRole == role {
				c.Next()
				return
			}
		}

		response.RespondJSON(c, response.StatusError, http.StatusForbidden, "Insufficient permissions", nil, nil)
		c.Abort()
	}
}

// RequireStudioAccess lets admins through and requires every other caller's
// studio_id claim to equal the route parameter.
func RequireStudioAccess(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextUserRole) == RoleAdmin {
			c.Next()
			return
		}

		studioID := c.Param(param)
		if studioID == "" || c.GetString(ContextStudioID) != studioID {
			response.RespondJSON(c, response.StatusError, http.StatusForbidden, "No access to this studio", nil, nil)
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequestID propagates or assigns X-Request-ID
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ContextRequestID, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// RequestLogger writes one structured line per request
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithRequestID(c.GetString(ContextRequestID)).LogHTTPRequest(c, time.Since(start))
	}
}

// RequestLog returns the default logger scoped to the current request
func RequestLog(c *gin.Context) *logger.Logger {
	return logger.GetDefault().WithRequestID(c.GetString(ContextRequestID))
}
