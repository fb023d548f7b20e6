package dashboard_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Wakkzz12/employee-leave-tracker/internal/dashboard"
	"github.com/Wakkzz12/employee-leave-tracker/internal/domain"
	"github.com/Wakkzz12/employee-leave-tracker/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	GetSummaryFn func(ctx context.Context) (dashboard.SummaryResponse, error)
}

func (f *fakeService) GetSummary(ctx context.Context) (dashboard.SummaryResponse, error) {
	return f.GetSummaryFn(ctx)
}

type allowAll struct{}

func (allowAll) Enforce(domain.EnforceRequest) (bool, error) { return true, nil }

func newRouter(svc dashboard.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api/v1", func(c *gin.Context) {
		c.Set("user_id", "user-1")
		c.Set("role", "VIEWER")
	})
	dashboard.RegisterRoutes(api, dashboard.NewHandler(svc), allowAll{})
	return r
}

func TestHandler_Summary(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		svc := &fakeService{GetSummaryFn: func(context.Context) (dashboard.SummaryResponse, error) {
			return dashboard.SummaryResponse{TotalEmployees: 10, TotalPending: 2, RecentRequests: []dashboard.RecentRequest{}}, nil
		}}

		w := httptest.NewRecorder()
		newRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		var env struct {
			Data map[string]any `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		assert.Equal(t, 10.0, env.Data["total_employees"])
		assert.Equal(t, 2.0, env.Data["total_pending"])
		assert.Contains(t, env.Data, "recent_requests")
	})

	t.Run("failure hides detail", func(t *testing.T) {
		svc := &fakeService{GetSummaryFn: func(context.Context) (dashboard.SummaryResponse, error) {
			return dashboard.SummaryResponse{}, errors.New("pq: connection refused")
		}}

		w := httptest.NewRecorder()
		newRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		var env response.ApiEnvelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		assert.Equal(t, "Internal server error", env.Error.Message)
	})
}
