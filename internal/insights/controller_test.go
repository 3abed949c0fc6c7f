package insights

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"hobbystudio/internal/messaging"
	"hobbystudio/internal/metrics"
	"hobbystudio/internal/shared/middleware"
	"hobbystudio/pkg/cache"
	"hobbystudio/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInsightsService struct {
	result       StudioIntelligenceInsights
	err          error
	gotStudio    string
	refreshed    bool
	invalidated  bool
	invalidateEr error
}

func (f *fakeInsightsService) SetCacheService(cache.Service)    {}
func (f *fakeInsightsService) SetPublisher(messaging.Publisher) {}
func (f *fakeInsightsService) SetMetrics(metrics.Recorder)      {}

func (f *fakeInsightsService) GetStudioInsights(_ context.Context, studioID string) (*StudioIntelligenceInsights, error) {
	f.gotStudio = studioID
	if f.err != nil {
		return nil, f.err
	}
	return &f.result, nil
}

func (f *fakeInsightsService) RefreshStudioInsights(ctx context.Context, studioID string) (*StudioIntelligenceInsights, error) {
	f.refreshed = true
	return f.GetStudioInsights(ctx, studioID)
}

func (f *fakeInsightsService) GetSummary(ctx context.Context, studioID string) (*InsightsSummary, error) {
	result, err := f.GetStudioInsights(ctx, studioID)
	if err != nil {
		return nil, err
	}
	summary := Summarize(studioID, *result)
	return &summary, nil
}

func (f *fakeInsightsService) InvalidateStudio(context.Context, string) error { return nil }

func (f *fakeInsightsService) InvalidateAll(context.Context) error {
	f.invalidated = true
	return f.invalidateEr
}

type envelope struct {
	Status     string          `json:"status"`
	StatusCode int             `json:"status_code"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
}

func setupInsightsRouter(svc Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.RequestID())
	studio := r.Group("/api/v1/studios/:studioId")
	studio.Use(func(c *gin.Context) {
		c.Set("user_role", c.GetHeader("X-Test-Role"))
		c.Next()
	})
	SetupInsightsRoutes(studio, r.Group("/api/v1/admin"), NewController(svc))
	return r
}

func doRequest(t *testing.T, r http.Handler, method, path, role string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("X-Test-Role", role)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var body envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestGetStudioInsightsEndpoint(t *testing.T) {
	svc := &fakeInsightsService{result: newTestEngine().GenerateStudioInsights(potteryScenario(), "S1")}
	r := setupInsightsRouter(svc)

	rec, body := doRequest(t, r, http.MethodGet, "/api/v1/studios/S1/insights", "studio_owner")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", body.Status)
	assert.Equal(t, "S1", svc.gotStudio)

	var got StudioIntelligenceInsights
	require.NoError(t, json.Unmarshal(body.Data, &got))
	assert.Equal(t, 1700.0, got.WeeklyRevenuePotential)
	assert.Equal(t, "Add 6 hours for Staff", got.TopPriorityAction)
}

func TestSectionEndpoints(t *testing.T) {
	svc := &fakeInsightsService{result: newTestEngine().GenerateStudioInsights(potteryScenario(), "S1")}
	r := setupInsightsRouter(svc)

	tests := []struct {
		path string
		want int
	}{
		{"/api/v1/studios/S1/insights/time-slots", 1},
		{"/api/v1/studios/S1/insights/rooms", 1},
		{"/api/v1/studios/S1/insights/instructors", 1},
		{"/api/v1/studios/S1/insights/capacity", 0},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec, body := doRequest(t, r, http.MethodGet, tt.path, "instructor")
			require.Equal(t, http.StatusOK, rec.Code)

			var items []json.RawMessage
			require.NoError(t, json.Unmarshal(body.Data, &items))
			assert.Len(t, items, tt.want)
		})
	}
}

func TestEmptyStudioReturnsEmptyArrays(t *testing.T) {
	svc := &fakeInsightsService{result: EmptyInsights()}
	r := setupInsightsRouter(svc)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/studios/S1/insights/capacity", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"data":[]`)
}

func TestGetSummaryEndpoint(t *testing.T) {
	svc := &fakeInsightsService{result: newTestEngine().GenerateStudioInsights(potteryScenario(), "S1")}
	r := setupInsightsRouter(svc)

	rec, body := doRequest(t, r, http.MethodGet, "/api/v1/studios/S1/insights/summary", "studio_owner")
	require.Equal(t, http.StatusOK, rec.Code)

	var summary InsightsSummary
	require.NoError(t, json.Unmarshal(body.Data, &summary))
	assert.Equal(t, "$1,700.00", summary.WeeklyRevenueFormatted)
	assert.Equal(t, 3, summary.TotalOpportunities)
}

func TestRefreshRequiresOwnerOrAdmin(t *testing.T) {
	svc := &fakeInsightsService{result: EmptyInsights()}
	r := setupInsightsRouter(svc)

	rec, _ := doRequest(t, r, http.MethodPost, "/api/v1/studios/S1/insights/refresh", "instructor")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, svc.refreshed)

	rec, body := doRequest(t, r, http.MethodPost, "/api/v1/studios/S1/insights/refresh", "admin")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Insights refreshed successfully", body.Message)
	assert.True(t, svc.refreshed)
}

func TestServiceErrorReturns500(t *testing.T) {
	var logs bytes.Buffer
	previous := logger.GetDefault()
	logger.SetDefault(logger.NewWithWriter(&logs, "info", true))
	t.Cleanup(func() { logger.SetDefault(previous) })

	svc := &fakeInsightsService{err: errors.New("db down")}
	r := setupInsightsRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/studios/S1/insights", nil)
	req.Header.Set("X-Test-Role", "studio_owner")
	req.Header.Set(middleware.RequestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"error"`)
	assert.NotContains(t, rec.Body.String(), "db down")

	// The cause stays in the logs, tagged with the request id.
	assert.Contains(t, logs.String(), `"msg":"HTTP Error"`)
	assert.Contains(t, logs.String(), `"error":"db down"`)
	assert.Contains(t, logs.String(), `"request_id":"req-42"`)
}

func TestStudioRequiredReturns400(t *testing.T) {
	svc := &fakeInsightsService{err: ErrStudioRequired}
	r := setupInsightsRouter(svc)

	rec, _ := doRequest(t, r, http.MethodGet, "/api/v1/studios/S1/insights/summary", "studio_owner")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInvalidateAllEndpoint(t *testing.T) {
	svc := &fakeInsightsService{}
	r := setupInsightsRouter(svc)

	rec, _ := doRequest(t, r, http.MethodDelete, "/api/v1/admin/insights/cache", "admin")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, svc.invalidated)

	svc.invalidateEr = errors.New("redis down")
	rec, _ = doRequest(t, r, http.MethodDelete, "/api/v1/admin/insights/cache", "admin")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
