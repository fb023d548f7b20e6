package main

import (
	"context"
	"flag"

	"github.com/Wakkzz12/employee-leave-tracker/internal/app"
	"github.com/Wakkzz12/employee-leave-tracker/internal/bootstrap"
	"github.com/Wakkzz12/employee-leave-tracker/internal/config"
	"github.com/Wakkzz12/employee-leave-tracker/internal/shared/connection"
	"github.com/Wakkzz12/employee-leave-tracker/internal/shared/migration"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	down := flag.Bool("down", false, "roll back the latest migration instead of applying")
	seed := flag.Bool("seed", false, "create the admin account and sample employees")
	adminPassword := flag.String("admin-password", "password123", "password for the seeded admin account")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := bootstrap.NewLogger(cfg.AppEnv)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx := context.Background()

	gormDB, err := connection.ConnectGORMWithRetry(cfg.Database)
	if err != nil {
		logger.Fatal("connect database failed", zap.Error(err))
	}
	infra := &app.Infra{GormDB: gormDB}
	defer infra.Close()

	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("open sql handle failed", zap.Error(err))
	}

	if *down {
		if err := migration.Down(ctx, sqlDB, cfg.Database.Driver); err != nil {
			logger.Fatal("migrate down failed", zap.Error(err))
		}
		logger.Info("rolled back latest migration")
		return
	}

	if err := migration.Up(ctx, sqlDB, cfg.Database.Driver); err != nil {
		logger.Fatal("migrate up failed", zap.Error(err))
	}
	logger.Info("migrations applied")

	if *seed {
		if err := app.Seed(ctx, cfg, infra, app.SeedOptions{AdminPassword: *adminPassword}); err != nil {
			logger.Fatal("seed failed", zap.Error(err))
		}
	}
}
