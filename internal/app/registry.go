package app

import (
	"database/sql"
	"net/http"

	"github.com/Wakkzz12/employee-leave-tracker/internal/auth"
	"github.com/Wakkzz12/employee-leave-tracker/internal/bootstrap"
	"github.com/Wakkzz12/employee-leave-tracker/internal/config"
	"github.com/Wakkzz12/employee-leave-tracker/internal/dashboard"
	"github.com/Wakkzz12/employee-leave-tracker/internal/employee"
	"github.com/Wakkzz12/employee-leave-tracker/internal/leave"
	"github.com/Wakkzz12/employee-leave-tracker/internal/messaging/kafka"
	"github.com/Wakkzz12/employee-leave-tracker/internal/middleware"
	"github.com/Wakkzz12/employee-leave-tracker/internal/rbac"
	"github.com/Wakkzz12/employee-leave-tracker/internal/rbac/infra"
	"github.com/Wakkzz12/employee-leave-tracker/internal/shared/counter"
	"github.com/Wakkzz12/employee-leave-tracker/internal/shared/response"
	"github.com/Wakkzz12/employee-leave-tracker/internal/shared/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// outboxFor returns nil when events are disabled. The outbox SQL is
// postgres only.
func outboxFor(cfg *config.Config, db *sql.DB) kafka.OutboxRepository {
	if !cfg.Kafka.OutboxEnabled || cfg.Database.Driver == config.DriverSQLite {
		return nil
	}
	return kafka.NewOutboxRepository(db)
}

func registerModules(router *gin.Engine, cfg *config.Config, in *Infra) error {
	logger := zap.L()

	db, err := in.GormDB.DB()
	if err != nil {
		return err
	}

	// --- Infrastructure ---
	proofs, err := storage.NewLocalStorage(cfg.Storage.Dir)
	if err != nil {
		return err
	}
	outboxRepo := outboxFor(cfg, db)
	auditLogger := bootstrap.NewStdoutAuditLogger(logger)

	// --- Repositories ---
	authRepo := auth.NewRepository(in.GormDB)
	employeeRepo := employee.NewRepository(in.GormDB)
	leaveRepo := leave.NewRepository(in.GormDB)
	dashboardRepo := dashboard.NewRepository(in.GormDB)
	counterRepo := counter.NewRepository(in.GormDB)
	ledger := employee.NewLedger(in.GormDB)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer()
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(enforcer, logger)

	// --- Services ---
	authService := auth.NewService(authRepo, cfg.Auth, logger)
	employeeService := employee.NewServiceWithOptions(db, employeeRepo, counterRepo, in.Redis, employee.Options{
		Outbox:         outboxRepo,
		Proofs:         proofs,
		DefaultBalance: cfg.Leave.DefaultBalance,
	}, logger)
	leaveService := leave.NewService(db, leaveRepo, ledger, in.Redis, leave.Options{
		Outbox: outboxRepo,
		Proofs: proofs,
		Audit:  auditLogger,
	}, logger)
	dashboardService := dashboard.NewService(dashboardRepo, in.Redis, cfg.Redis.DashboardCacheTTL, logger)

	// --- Handlers ---
	authHandler := auth.NewHandler(authService, cfg.IsProduction(), logger)
	employeeHandler := employee.NewHandler(employeeService, logger)
	leaveHandler := leave.NewHandler(leaveService, logger)
	dashboardHandler := dashboard.NewHandler(dashboardService, logger)
	rbacHandler := rbac.NewHandler(rbacService, logger)

	// --- Routes Registration ---
	router.Use(middleware.ContextLogger(logger))
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"}, nil)
	})

	authMiddleware := middleware.AuthMiddleware(cfg.Auth.JWTSecret)

	api := router.Group("/api/v1")
	auth.RegisterRoutes(api, authHandler, authMiddleware)

	protected := api.Group("")
	protected.Use(authMiddleware)
	{
		employee.RegisterRoutes(protected, employeeHandler, rbacService)
		leave.RegisterRoutes(protected, leaveHandler, rbacService, in.Redis)
		dashboard.RegisterRoutes(protected, dashboardHandler, rbacService)
		rbac.RegisterRoutes(protected, rbacHandler)
	}

	logger.Info("modules registered",
		zap.Bool("outbox", outboxRepo != nil),
		zap.Bool("redis", in.Redis != nil),
	)
	return nil
}
