package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/Wakkzz12/employee-leave-tracker/internal/config"
	"github.com/Wakkzz12/employee-leave-tracker/internal/events"
	"github.com/Wakkzz12/employee-leave-tracker/internal/messaging/kafka/consumer"
	"github.com/Wakkzz12/employee-leave-tracker/internal/shared/connection"

	"go.uber.org/zap"
)

// RunConsumer drops dashboard and employee option caches whenever a
// lifecycle event arrives.
func RunConsumer(cfg *config.Config) error {
	logger := zap.L().Named("app.consumer")

	if cfg.Kafka.Broker == "" {
		return errors.New("KAFKA_BROKER is required")
	}

	rdb, err := connection.ConnectRedisWithRetry(cfg.Redis.Addr, cfg.Database.MaxRetries)
	if err != nil {
		return err
	}
	defer rdb.Close()

	reader := consumer.NewReader(
		cfg.Kafka.Broker,
		cfg.Kafka.ConsumerGroup,
		events.EmployeeLifecycleTopic,
		events.LeaveLifecycleTopic,
	)
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go consumer.ConsumeDashboardInvalidation(ctx, reader, rdb, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()

	return nil
}
