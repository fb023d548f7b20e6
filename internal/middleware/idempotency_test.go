package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testIdemKey  = "idemp:user-1:/leave-requests:abc"
	testLockKey  = testIdemKey + ":lock"
	jsonMimeType = "application/json; charset=utf-8"
)

func newIdempotencyRouter(rdb *redis.Client, status int, calls *int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/leave-requests",
		func(c *gin.Context) { c.Set("user_id", "user-1") },
		Idempotency(rdb),
		func(c *gin.Context) {
			*calls++
			c.JSON(status, gin.H{"id": "lr-1"})
		},
	)
	return r
}

func postWithKey(r *gin.Engine, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/leave-requests", nil)
	if key != "" {
		req.Header.Set(IdempotencyHeader, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func storedPayload(t *testing.T) []byte {
	t.Helper()
	b, err := json.Marshal(cachedResponse{
		Status:      http.StatusCreated,
		ContentType: jsonMimeType,
		Body:        []byte(`{"id":"lr-1"}`),
	})
	require.NoError(t, err)
	return b
}

func TestIdempotency_FirstRequestIsStored(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	mock.ExpectGet(testIdemKey).RedisNil()
	mock.ExpectSetNX(testLockKey, "1", idempotencyLockTTL).SetVal(true)
	mock.ExpectSet(testIdemKey, storedPayload(t), idempotencyTTL).SetVal("OK")
	mock.ExpectDel(testLockKey).SetVal(1)

	calls := 0
	w := postWithKey(newIdempotencyRouter(rdb, http.StatusCreated, &calls), "abc")

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"id":"lr-1"}`, w.Body.String())
	assert.Equal(t, 1, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotency_ReplaysStoredResponse(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	mock.ExpectGet(testIdemKey).SetVal(string(storedPayload(t)))

	calls := 0
	w := postWithKey(newIdempotencyRouter(rdb, http.StatusCreated, &calls), "abc")

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, `{"id":"lr-1"}`, w.Body.String())
	assert.Equal(t, "true", w.Header().Get(ReplayedHeader))
	assert.Zero(t, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotency_InFlightDuplicateConflicts(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	mock.ExpectGet(testIdemKey).RedisNil()
	mock.ExpectSetNX(testLockKey, "1", idempotencyLockTTL).SetVal(false)

	calls := 0
	w := postWithKey(newIdempotencyRouter(rdb, http.StatusCreated, &calls), "abc")

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Zero(t, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotency_FailedResponseIsNotStored(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	mock.ExpectGet(testIdemKey).RedisNil()
	mock.ExpectSetNX(testLockKey, "1", idempotencyLockTTL).SetVal(true)
	mock.ExpectDel(testLockKey).SetVal(1)

	calls := 0
	w := postWithKey(newIdempotencyRouter(rdb, http.StatusConflict, &calls), "abc")

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 1, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotency_WithoutKeySkipsRedis(t *testing.T) {
	rdb, mock := redismock.NewClientMock()

	calls := 0
	w := postWithKey(newIdempotencyRouter(rdb, http.StatusCreated, &calls), "")

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotency_NilClient(t *testing.T) {
	calls := 0
	w := postWithKey(newIdempotencyRouter(nil, http.StatusCreated, &calls), "abc")

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, calls)
}
