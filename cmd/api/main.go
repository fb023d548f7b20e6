package main

import (
	"github.com/Wakkzz12/employee-leave-tracker/internal/app"
	"github.com/Wakkzz12/employee-leave-tracker/internal/bootstrap"
	"github.com/Wakkzz12/employee-leave-tracker/internal/config"
	"github.com/Wakkzz12/employee-leave-tracker/internal/shared/apperror"

	"github.com/gin-gonic/gin"
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

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	apperror.Init()

	r := gin.New()
	r.Use(gin.Recovery())

	infra, err := app.BuildApp(r, cfg)
	if err != nil {
		logger.Fatal("build app failed", zap.Error(err))
	}
	defer infra.Close()

	bootstrap.StartHTTPServer(
		r,
		bootstrap.DefaultServerConfig(cfg.Server.Port),
		bootstrap.NewStdoutAuditLogger(logger),
	)
}
