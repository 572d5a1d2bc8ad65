package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{
		"ENV", "HTTP_ADDR", "DB_DSN", "STORE_DRIVER", "MIGRATIONS_ENABLED", "IDENTITY_JWT_SECRET",
		"REDIS_ADDR", "REDIS_DB", "AMQP_URL", "PAYMENT_QUEUE", "CURRENCY", "TELEGRAM_TOKEN",
		"TIMEZONE", "RECURRING_WEEKS_AHEAD", "RECURRING_INTERVAL",
	} {
		t.Setenv(key, "")
	}

	cfg, err := FromEnv()
	require.NoError(t, err)
	require.Equal(t, "development", cfg.Environment)
	require.Equal(t, ":8080", cfg.HTTPAddr)
	require.Equal(t, StoreDriverPostgres, cfg.StoreDriver)
	require.True(t, cfg.MigrationsEnabled)
	require.Equal(t, "payments.requested", cfg.PaymentQueue)
	require.Equal(t, "CAD", cfg.Currency)
	require.Equal(t, "America/Toronto", cfg.Timezone)
	require.Equal(t, 4, cfg.RecurringWeeksAhead)
	require.Equal(t, 24*time.Hour, cfg.RecurringInterval)
	require.False(t, cfg.IsProduction())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("MIGRATIONS_ENABLED", "false")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("RECURRING_WEEKS_AHEAD", "6")
	t.Setenv("RECURRING_INTERVAL", "30m")
	t.Setenv("CURRENCY", "cad")

	cfg, err := FromEnv()
	require.NoError(t, err)
	require.True(t, cfg.IsProduction())
	require.Equal(t, StoreDriverMemory, cfg.StoreDriver)
	require.False(t, cfg.MigrationsEnabled)
	require.Equal(t, 3, cfg.RedisDB)
	require.Equal(t, 6, cfg.RecurringWeeksAhead)
	require.Equal(t, 30*time.Minute, cfg.RecurringInterval)
	require.Equal(t, "CAD", cfg.Currency)
}

func TestFromEnv_InvalidNumbers(t *testing.T) {
	t.Setenv("REDIS_DB", "zero")
	_, err := FromEnv()
	require.ErrorContains(t, err, "REDIS_DB")
}

func TestValidate(t *testing.T) {
	valid := Config{
		StoreDriver:         StoreDriverPostgres,
		DBDSN:               "postgres://localhost/lessons",
		IdentitySecret:      "secret",
		Timezone:            "UTC",
		RecurringWeeksAhead: 4,
		RecurringInterval:   time.Hour,
	}
	require.NoError(t, valid.Validate())

	memory := valid
	memory.StoreDriver = StoreDriverMemory
	memory.DBDSN = ""
	require.NoError(t, memory.Validate())

	missing := valid
	missing.DBDSN = ""
	missing.IdentitySecret = ""
	err := missing.Validate()
	require.ErrorContains(t, err, "DB_DSN is required")
	require.ErrorContains(t, err, "IDENTITY_JWT_SECRET is required")

	unknown := valid
	unknown.StoreDriver = "sqlite"
	require.ErrorContains(t, unknown.Validate(), "STORE_DRIVER")
}
