package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Wakkzz12/employee-leave-tracker/internal/shared/apperror"
	"github.com/Wakkzz12/employee-leave-tracker/internal/shared/contextutil"
	"github.com/Wakkzz12/employee-leave-tracker/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	IdempotencyHeader  = "Idempotency-Key"
	ReplayedHeader     = "Idempotent-Replayed"
	idempotencyTTL     = 24 * time.Hour
	idempotencyLockTTL = 30 * time.Second
)

type cachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

type bodyCaptureWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyCaptureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyCaptureWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

func idempotencyKey(userID, path, key string) string {
	return fmt.Sprintf("idemp:%s:%s:%s", userID, path, key)
}

// Idempotency replays the stored 2xx response for a repeated POST carrying
// the same Idempotency-Key from the same user. A concurrent duplicate gets
// 409 while the first one is in flight. Without redis it is a no-op.
func Idempotency(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(IdempotencyHeader))
		if rdb == nil || key == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		logger := contextutil.GetLogger(ctx, zap.L()).Named("middleware.idempotency")

		cacheKey := idempotencyKey(c.GetString("user_id"), c.FullPath(), key)
		lockKey := cacheKey + ":lock"

		val, err := rdb.Get(ctx, cacheKey).Bytes()
		switch {
		case err == nil:
			var cached cachedResponse
			if jsonErr := json.Unmarshal(val, &cached); jsonErr == nil {
				logger.Debug("idempotent replay", zap.String("key", cacheKey))
				c.Header(ReplayedHeader, "true")
				c.Data(cached.Status, cached.ContentType, cached.Body)
				c.Abort()
				return
			}
			logger.Warn("corrupt idempotency entry", zap.String("key", cacheKey))
		case !errors.Is(err, redis.Nil):
			logger.Warn("idempotency lookup failed", zap.String("key", cacheKey), zap.Error(err))
			c.Next()
			return
		}

		acquired, err := rdb.SetNX(ctx, lockKey, "1", idempotencyLockTTL).Result()
		if err != nil {
			logger.Warn("idempotency lock failed", zap.String("key", lockKey), zap.Error(err))
			c.Next()
			return
		}
		if !acquired {
			response.Abort(c, http.StatusConflict, apperror.CodeConflict, "A request with this idempotency key is still being processed")
			return
		}

		// the request context may already be cancelled once the handler returns
		bg := context.WithoutCancel(ctx)
		defer func() {
			if err := rdb.Del(bg, lockKey).Err(); err != nil {
				logger.Warn("idempotency unlock failed", zap.String("key", lockKey), zap.Error(err))
			}
		}()

		w := &bodyCaptureWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = w

		c.Next()

		status := w.Status()
		if status < http.StatusOK || status >= http.StatusMultipleChoices {
			return
		}

		payload, err := json.Marshal(cachedResponse{
			Status:      status,
			ContentType: w.Header().Get("Content-Type"),
			Body:        w.body.Bytes(),
		})
		if err != nil {
			logger.Error("encode idempotent response failed", zap.Error(err))
			return
		}

		if err := rdb.Set(bg, cacheKey, payload, idempotencyTTL).Err(); err != nil {
			logger.Warn("store idempotent response failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}
}
