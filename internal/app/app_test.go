package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/Wakkzz12/employee-leave-tracker/internal/app"
	"github.com/Wakkzz12/employee-leave-tracker/internal/config"
	"github.com/Wakkzz12/employee-leave-tracker/internal/shared/apperror"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		AppEnv: "test",
		Database: config.DatabaseConfig{
			Driver:      config.DriverSQLite,
			SQLitePath:  filepath.Join(dir, "leave.db"),
			AutoMigrate: true,
			MaxRetries:  1,
		},
		Kafka: config.KafkaConfig{OutboxEnabled: true},
		Auth: config.AuthConfig{
			JWTSecret:          "test-secret",
			AllowedEmailDomain: "asiaprobutuan.com",
			DefaultUserRole:    "HEAD",
		},
		Leave:   config.LeaveConfig{DefaultBalance: decimal.NewFromInt(15)},
		Storage: config.StorageConfig{Dir: filepath.Join(dir, "storage")},
	}
}

func newRouter(t *testing.T, cfg *config.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	apperror.Init()

	r := gin.New()
	infra, err := app.BuildApp(r, cfg)
	require.NoError(t, err)
	t.Cleanup(infra.Close)
	return r
}

func call(t *testing.T, r *gin.Engine, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func login(t *testing.T, r *gin.Engine, email, password string) string {
	t.Helper()
	w, env := call(t, r, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": email, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var data struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.AccessToken)
	return data.AccessToken
}

func TestBuildApp_LeaveLifecycleOverHTTP(t *testing.T) {
	r := newRouter(t, testConfig(t))

	w, _ := call(t, r, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"name":                  "Head of Office",
		"email":                 "head@asiaprobutuan.com",
		"password":              "password123",
		"password_confirmation": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	token := login(t, r, "head@asiaprobutuan.com", "password123")

	w, env := call(t, r, http.MethodPost, "/api/v1/employees", token, gin.H{
		"full_name":    "Andres Bonifacio",
		"department":   "Finance",
		"position":     "Clerk",
		"started_date": "2022-06-01",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var empl struct {
		ID           string  `json:"id"`
		LeaveBalance float64 `json:"leave_balance"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &empl))
	assert.Equal(t, 15.0, empl.LeaveBalance)

	w, env = call(t, r, http.MethodPost, "/api/v1/leave-requests", token, gin.H{
		"employee_id":   empl.ID,
		"start_date":    "2026-02-02",
		"end_date":      "2026-02-04",
		"type_of_leave": "vacation",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var lr struct {
		ID            string  `json:"id"`
		DaysRequested float64 `json:"days_requested"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &lr))
	assert.Equal(t, 3.0, lr.DaysRequested)

	w, _ = call(t, r, http.MethodPut, "/api/v1/leave-requests/"+lr.ID, token, gin.H{
		"start_date":    "2026-02-02",
		"end_date":      "2026-02-04",
		"type_of_leave": "vacation",
		"status":        "approved",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, env = call(t, r, http.MethodGet, "/api/v1/employees/"+empl.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &empl))
	assert.Equal(t, 12.0, empl.LeaveBalance)

	w, env = call(t, r, http.MethodGet, "/api/v1/dashboard", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var summary struct {
		TotalEmployees int64 `json:"total_employees"`
		TotalApproved  int64 `json:"total_approved"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	assert.Equal(t, int64(1), summary.TotalEmployees)
	assert.Equal(t, int64(1), summary.TotalApproved)
}

func TestBuildApp_ProtectedRoutesNeedToken(t *testing.T) {
	r := newRouter(t, testConfig(t))

	w, env := call(t, r, http.MethodGet, "/api/v1/leave-requests", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, apperror.CodeUnauthorized, env.Error.Code)

	w, _ = call(t, r, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestBuildApp_ViewerCannotApprove(t *testing.T) {
	cfg := testConfig(t)
	cfg.Auth.DefaultUserRole = "VIEWER"
	r := newRouter(t, cfg)

	w, _ := call(t, r, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"name":                  "Clerk",
		"email":                 "clerk@asiaprobutuan.com",
		"password":              "password123",
		"password_confirmation": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	token := login(t, r, "clerk@asiaprobutuan.com", "password123")

	w, _ = call(t, r, http.MethodGet, "/api/v1/employees", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env := call(t, r, http.MethodPost, "/api/v1/employees", token, gin.H{
		"full_name":    "Someone",
		"department":   "Finance",
		"position":     "Clerk",
		"started_date": "2022-06-01",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, apperror.CodeForbidden, env.Error.Code)
}

func TestSeed_IsRepeatable(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	infra, err := app.Connect(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(infra.Close)

	opts := app.SeedOptions{AdminPassword: "password123"}
	require.NoError(t, app.Seed(ctx, cfg, infra, opts))
	require.NoError(t, app.Seed(ctx, cfg, infra, opts))

	var count int64
	require.NoError(t, infra.GormDB.Table("employees").Where("deleted_at IS NULL").Count(&count).Error)
	assert.Equal(t, int64(10), count)

	var users int64
	require.NoError(t, infra.GormDB.Table("users").Count(&users).Error)
	assert.Equal(t, int64(1), users)
}
