package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hobbystudio/internal/shared/config"
	"hobbystudio/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func testConfig() *config.Config {
	return &config.Config{JWT: config.JWTConfig{Secret: testSecret, Issuer: "hobbystudio-auth"}}
}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func accessClaims(role, studioID string) jwt.MapClaims {
	return jwt.MapClaims{
		"type":      "access",
		"user_id":   "u1",
		"email":     "owner@example.com",
		"role":      role,
		"studio_id": studioID,
		"iss":       "hobbystudio-auth",
		"exp":       time.Now().Add(time.Hour).Unix(),
	}
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/studios/:studioId",
		JWTAuthWithConfig(testConfig()),
		RequireRoles(RoleAdmin, RoleStudioOwner, RoleInstructor),
		RequireStudioAccess("studioId"),
		func(c *gin.Context) {
			c.String(http.StatusOK, c.GetString(ContextUserID))
		},
	)
	return r
}

func doRequest(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAuthMissingHeader(t *testing.T) {
	rec := doRequest(newRouter(), "/studios/s1", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestAuthRejectsBadTokens(t *testing.T) {
	refresh := accessClaims(RoleAdmin, "")
	refresh["type"] = "refresh"

	expired := accessClaims(RoleAdmin, "")
	expired["exp"] = time.Now().Add(-time.Minute).Unix()

	foreign := accessClaims(RoleAdmin, "")
	foreign["iss"] = "someone-else"

	for name, claims := range map[string]jwt.MapClaims{"refresh": refresh, "expired": expired, "issuer": foreign} {
		t.Run(name, func(t *testing.T) {
			rec := doRequest(newRouter(), "/studios/s1", signToken(t, claims))
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestStudioAccess(t *testing.T) {
	tests := []struct {
		name     string
		role     string
		studioID string
		want     int
	}{
		{"admin any studio", RoleAdmin, "", http.StatusOK},
		{"owner own studio", RoleStudioOwner, "s1", http.StatusOK},
		{"instructor own studio", RoleInstructor, "s1", http.StatusOK},
		{"owner other studio", RoleStudioOwner, "s2", http.StatusForbidden},
		{"unknown role", "customer", "s1", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(newRouter(), "/studios/s1", signToken(t, accessClaims(tt.role, tt.studioID)))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRequestIDPropagated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextRequestID)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Body.String())
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestRequestLoggerCarriesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	r := gin.New()
	r.Use(RequestID(), RequestLogger(logger.NewWithWriter(&buf, "info", true)))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	r.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "HTTP Request", entry["msg"])
	assert.Equal(t, "abc-123", entry["request_id"])
	assert.Equal(t, float64(http.StatusNoContent), entry["status"])
}
