package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hobbystudio/internal/calendar"
	"hobbystudio/internal/messaging"
	"hobbystudio/internal/metrics"
	"hobbystudio/internal/shared/config"
	"hobbystudio/internal/shared/database"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "router-test-secret"

func newTestApp(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, calendar.RegisterValidators())

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(gdb))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := &config.Config{
		GinMode:    "release",
		APIPrefix:  "/api",
		APIVersion: "v1",
		JWT:        config.JWTConfig{Secret: testSecret},
		Insights:   config.InsightsConfig{CacheTTL: time.Minute, TimeZone: "UTC", ImportMaxSize: 50},
	}

	engine := gin.New()
	NewRouter(cfg, &database.DB{SQL: gdb, Redis: rdb}, messaging.NoopPublisher{}, metrics.New()).SetupRoutes(engine)
	return engine
}

func token(t *testing.T, role, studioID string) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":   "u1",
		"role":      role,
		"studio_id": studioID,
		"type":      "access",
		"exp":       time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func call(r http.Handler, method, path, bearer string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHealthAndMetrics(t *testing.T) {
	r := newTestApp(t)

	rec := call(r, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)

	rec = call(r, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")

	rec = call(r, http.MethodGet, "/swagger/index.html", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStudioRoutesRequireMatchingToken(t *testing.T) {
	r := newTestApp(t)

	assert.Equal(t, http.StatusUnauthorized, call(r, http.MethodGet, "/api/v1/studios/s1/insights", "", nil).Code)
	assert.Equal(t, http.StatusForbidden, call(r, http.MethodGet, "/api/v1/studios/s1/insights", token(t, "studio_owner", "s2"), nil).Code)
	assert.Equal(t, http.StatusForbidden, call(r, http.MethodGet, "/api/v1/studios/s1/insights", token(t, "customer", "s1"), nil).Code)
	assert.Equal(t, http.StatusOK, call(r, http.MethodGet, "/api/v1/studios/s1/insights", token(t, "admin", ""), nil).Code)
	assert.Equal(t, http.StatusForbidden, call(r, http.MethodDelete, "/api/v1/admin/insights/cache", token(t, "studio_owner", "s1"), nil).Code)
	assert.Equal(t, http.StatusOK, call(r, http.MethodDelete, "/api/v1/admin/insights/cache", token(t, "admin", ""), nil).Code)
}

func TestImportThenInsights(t *testing.T) {
	r := newTestApp(t)
	owner := token(t, "studio_owner", "s1")

	// Four recent Thursday evening pottery classes, nine of ten seats booked.
	now := time.Now().UTC()
	thursday := time.Date(now.Year(), now.Month(), now.Day(), 18, 0, 0, 0, time.UTC)
	thursday = thursday.AddDate(0, 0, int(time.Thursday)-int(now.Weekday())-7)

	var events []map[string]interface{}
	for week := 0; week < 4; week++ {
		start := thursday.AddDate(0, 0, -7*week)
		events = append(events, map[string]interface{}{
			"external_id":          fmt.Sprintf("pottery-%d", week),
			"title":                "Pottery Wheel Workshop",
			"start_time":           start,
			"end_time":             start.Add(2 * time.Hour),
			"room":                 "Studio A",
			"instructor_name":      "Sarah Johnson",
			"instructor_email":     "sarah@example.com",
			"max_participants":     10,
			"current_participants": 9,
			"price":                65,
		})
	}

	// Warm the cache with the empty result first.
	rec := call(r, http.MethodGet, "/api/v1/studios/s1/insights/summary", owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Import calendar data to generate insights")

	rec = call(r, http.MethodPost, "/api/v1/studios/s1/calendar/events/import", owner, map[string]interface{}{
		"integration_id": "int-1",
		"provider":       "google",
		"events":         events,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = call(r, http.MethodGet, "/api/v1/studios/s1/insights/time-slots", owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []struct {
			DayOfWeek          string `json:"day_of_week"`
			Hour               int    `json:"hour"`
			CategorySuggestion string `json:"category_suggestion"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "Thursday", body.Data[0].DayOfWeek)
	assert.Equal(t, 18, body.Data[0].Hour)
	assert.Equal(t, "pottery", body.Data[0].CategorySuggestion)

	rec = call(r, http.MethodGet, "/api/v1/studios/s1/calendar/events?limit=2", owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total_count":4`)
}
