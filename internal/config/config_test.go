package config_test

import (
	"testing"
	"time"

	"github.com/Wakkzz12/employee-leave-tracker/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DEFAULT_LEAVE_BALANCE", "")
	t.Setenv("ALLOWED_EMAIL_DOMAIN", "")

	cfg := config.Load()

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, config.DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "asiaprobutuan.com", cfg.Auth.AllowedEmailDomain)
	assert.Equal(t, "15", cfg.Leave.DefaultBalance.String())
	assert.Equal(t, time.Minute, cfg.Redis.DashboardCacheTTL)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")
	t.Setenv("OUTBOX_ENABLED", "false")
	t.Setenv("DEFAULT_LEAVE_BALANCE", "-3")
	t.Setenv("DASHBOARD_CACHE_TTL", "30s")

	cfg := config.Load()

	assert.Equal(t, config.DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "/tmp/x.db", cfg.Database.DSN())
	assert.False(t, cfg.Kafka.OutboxEnabled)
	assert.Equal(t, "15", cfg.Leave.DefaultBalance.String())
	assert.Equal(t, 30*time.Second, cfg.Redis.DashboardCacheTTL)
}
