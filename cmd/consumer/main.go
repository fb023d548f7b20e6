package main

import (
	"github.com/Wakkzz12/employee-leave-tracker/internal/app"
	"github.com/Wakkzz12/employee-leave-tracker/internal/bootstrap"
	"github.com/Wakkzz12/employee-leave-tracker/internal/config"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := bootstrap.NewLogger(cfg.AppEnv)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := app.RunConsumer(cfg); err != nil {
		logger.Fatal("run consumer failed", zap.Error(err))
	}
}
