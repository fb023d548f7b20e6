package rbac_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Wakkzz12/employee-leave-tracker/internal/domain"
	"github.com/Wakkzz12/employee-leave-tracker/internal/rbac"
	"github.com/Wakkzz12/employee-leave-tracker/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	EnforceFn        func(req domain.EnforceRequest) (bool, error)
	PermissionsForFn func(role string) (domain.RolePermissionsResponse, error)
}

func (f *fakeService) Enforce(req domain.EnforceRequest) (bool, error) {
	return f.EnforceFn(req)
}

func (f *fakeService) PermissionsFor(role string) (domain.RolePermissionsResponse, error) {
	return f.PermissionsForFn(role)
}

func newRouter(svc rbac.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("", func(c *gin.Context) {
		c.Set("user_id", "user-1")
		c.Set("role", "VIEWER")
	})
	rbac.RegisterRoutes(api, rbac.NewHandler(svc))
	return r
}

func TestHandler_Enforce(t *testing.T) {
	t.Run("uses the caller's role", func(t *testing.T) {
		var got domain.EnforceRequest
		svc := &fakeService{EnforceFn: func(req domain.EnforceRequest) (bool, error) {
			got = req
			return req.Resource == "leave" && req.Action == "read", nil
		}}

		body, _ := json.Marshal(map[string]string{"resource": " leave ", "action": "read"})
		req := httptest.NewRequest(http.MethodPost, "/rbac/enforce", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		newRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "VIEWER", got.Role)
		assert.Equal(t, "user-1", got.UserID)
		assert.Equal(t, "leave", got.Resource)

		var env struct {
			Data domain.EnforceResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		assert.True(t, env.Data.Allowed)
	})

	t.Run("missing action", func(t *testing.T) {
		svc := &fakeService{}
		req := httptest.NewRequest(http.MethodPost, "/rbac/enforce", bytes.NewBufferString(`{"resource":"leave"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		newRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandler_Permissions(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		svc := &fakeService{PermissionsForFn: func(role string) (domain.RolePermissionsResponse, error) {
			return domain.RolePermissionsResponse{
				Role:        role,
				Permissions: []domain.PermissionResponse{{Resource: "leave", Action: "read"}},
			}, nil
		}}

		w := httptest.NewRecorder()
		newRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/rbac/permissions", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		var env struct {
			Data domain.RolePermissionsResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		assert.Equal(t, "VIEWER", env.Data.Role)
		assert.Len(t, env.Data.Permissions, 1)
	})

	t.Run("enforcer failure hides detail", func(t *testing.T) {
		svc := &fakeService{PermissionsForFn: func(string) (domain.RolePermissionsResponse, error) {
			return domain.RolePermissionsResponse{}, errors.New("casbin: model broken")
		}}

		w := httptest.NewRecorder()
		newRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/rbac/permissions", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		var env response.ApiEnvelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		assert.Equal(t, "Internal server error", env.Error.Message)
	})
}
