package app

import (
	"context"

	"github.com/Wakkzz12/employee-leave-tracker/internal/config"
	"github.com/Wakkzz12/employee-leave-tracker/internal/shared/connection"
	"github.com/Wakkzz12/employee-leave-tracker/internal/shared/migration"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Infra holds the shared connections of a process.
type Infra struct {
	GormDB *gorm.DB
	Redis  *redis.Client
}

func (i *Infra) Close() {
	if i.Redis != nil {
		_ = i.Redis.Close()
	}
	if i.GormDB != nil {
		if sqlDB, err := i.GormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

// Connect opens the database, applies migrations when enabled and tries
// redis. A missing redis only disables caching and idempotency.
func Connect(ctx context.Context, cfg *config.Config) (*Infra, error) {
	logger := zap.L().Named("app")

	gormDB, err := connection.ConnectGORMWithRetry(cfg.Database)
	if err != nil {
		return nil, err
	}

	infra := &Infra{GormDB: gormDB}

	if cfg.Database.AutoMigrate {
		sqlDB, err := gormDB.DB()
		if err != nil {
			infra.Close()
			return nil, err
		}
		if err := migration.Up(ctx, sqlDB, cfg.Database.Driver); err != nil {
			infra.Close()
			return nil, err
		}
		logger.Info("migrations applied", zap.String("driver", cfg.Database.Driver))
	}

	if cfg.Redis.Addr != "" {
		rdb, err := connection.ConnectRedisWithRetry(cfg.Redis.Addr, cfg.Database.MaxRetries)
		if err != nil {
			logger.Warn("redis unavailable, running without cache", zap.Error(err))
		} else {
			infra.Redis = rdb
		}
	}

	return infra, nil
}

// BuildApp connects the infrastructure and mounts every module on router.
// The returned Infra must be closed by the caller.
func BuildApp(router *gin.Engine, cfg *config.Config) (*Infra, error) {
	infra, err := Connect(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	if err := registerModules(router, cfg, infra); err != nil {
		infra.Close()
		return nil, err
	}

	return infra, nil
}
