package consumer

import (
	"context"
	"encoding/json"

	"github.com/Wakkzz12/employee-leave-tracker/internal/events"
	"github.com/Wakkzz12/employee-leave-tracker/internal/shared/cache"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is the part of *kafkago.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

func NewReader(broker, groupID string, topics ...string) *kafkago.Reader {
	return kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		GroupID:     groupID,
		GroupTopics: topics,
		MinBytes:    1,
		MaxBytes:    10e6,
	})
}

// keysFor lists the cache entries an event makes stale.
func keysFor(eventType string) []string {
	switch eventType {
	case events.EmployeeCreated:
		return []string{cache.DashboardKey, cache.EmployeeOptionsKey}
	case events.LeaveCreated, events.LeaveStatusChanged:
		return []string{cache.DashboardKey}
	default:
		return nil
	}
}

func eventType(msg kafkago.Message) string {
	for _, h := range msg.Headers {
		if h.Key == "event_type" {
			return string(h.Value)
		}
	}
	var hdr events.Header
	if err := json.Unmarshal(msg.Value, &hdr); err != nil {
		return ""
	}
	return hdr.EventType
}

// ConsumeDashboardInvalidation drops cached dashboard data whenever an
// employee or leave lifecycle event arrives. Unrecognised messages are
// committed too.
func ConsumeDashboardInvalidation(
	ctx context.Context,
	reader MessageReader,
	rdb *redis.Client,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.dashboard")
	log.Info("dashboard invalidation consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("dashboard invalidation consumer stopped")
				return
			}
			log.Error("fetch lifecycle message failed", zap.Error(err))
			continue
		}

		handleMessage(ctx, msg, rdb, log)

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit lifecycle message failed", zap.Error(err))
		}
	}
}

func handleMessage(ctx context.Context, msg kafkago.Message, rdb *redis.Client, log *zap.Logger) {
	typ := eventType(msg)
	keys := keysFor(typ)
	if len(keys) == 0 {
		log.Warn("skipping unknown event",
			zap.String("topic", msg.Topic),
			zap.String("event_type", typ),
			zap.Int64("offset", msg.Offset),
		)
		return
	}

	cache.Invalidate(ctx, rdb, log, keys...)
	log.Debug("cache invalidated",
		zap.String("event_type", typ),
		zap.String("key", string(msg.Key)),
		zap.Strings("cache_keys", keys),
	)
}
