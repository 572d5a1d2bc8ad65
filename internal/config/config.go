package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type Config struct {
	Environment       string `mapstructure:"ENV"`
	HTTPAddr          string `mapstructure:"HTTP_ADDR"`
	DBDSN             string `mapstructure:"DB_DSN"`
	StoreDriver       string `mapstructure:"STORE_DRIVER"`
	MigrationsEnabled bool   `mapstructure:"MIGRATIONS_ENABLED"`
	IdentitySecret    string `mapstructure:"IDENTITY_JWT_SECRET"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	AMQPURL      string `mapstructure:"AMQP_URL"`
	PaymentQueue string `mapstructure:"PAYMENT_QUEUE"`
	Currency     string `mapstructure:"CURRENCY"`

	TelegramToken string `mapstructure:"TELEGRAM_TOKEN"`

	Timezone            string        `mapstructure:"TIMEZONE"`
	RecurringWeeksAhead int           `mapstructure:"RECURRING_WEEKS_AHEAD"`
	RecurringInterval   time.Duration `mapstructure:"RECURRING_INTERVAL"`
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	} else {
		log.Println("Loaded configuration from .env file")
	}

	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FromEnv читает конфигурацию из переменных окружения и подставляет значения по умолчанию
func FromEnv() (*Config, error) {
	cfg := &Config{
		Environment:    getEnv("ENV", "development"),
		HTTPAddr:       getEnv("HTTP_ADDR", ":8080"),
		DBDSN:          os.Getenv("DB_DSN"),
		StoreDriver:    strings.ToLower(getEnv("STORE_DRIVER", StoreDriverPostgres)),
		IdentitySecret: os.Getenv("IDENTITY_JWT_SECRET"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		AMQPURL:        os.Getenv("AMQP_URL"),
		PaymentQueue:   getEnv("PAYMENT_QUEUE", "payments.requested"),
		Currency:       strings.ToUpper(getEnv("CURRENCY", "CAD")),
		TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),
		Timezone:       getEnv("TIMEZONE", "America/Toronto"),
	}

	var err error
	if cfg.MigrationsEnabled, err = strconv.ParseBool(getEnv("MIGRATIONS_ENABLED", "true")); err != nil {
		return nil, fmt.Errorf("MIGRATIONS_ENABLED: %w", err)
	}
	if cfg.RedisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0")); err != nil {
		return nil, fmt.Errorf("REDIS_DB: %w", err)
	}
	if cfg.RecurringWeeksAhead, err = strconv.Atoi(getEnv("RECURRING_WEEKS_AHEAD", "4")); err != nil {
		return nil, fmt.Errorf("RECURRING_WEEKS_AHEAD: %w", err)
	}
	if cfg.RecurringInterval, err = time.ParseDuration(getEnv("RECURRING_INTERVAL", "24h")); err != nil {
		return nil, fmt.Errorf("RECURRING_INTERVAL: %w", err)
	}

	return cfg, nil
}

// Validate проверяет обязательные поля и допустимые значения
func (c *Config) Validate() error {
	var errs []error

	switch c.StoreDriver {
	case StoreDriverPostgres:
		if c.DBDSN == "" {
			errs = append(errs, errors.New("DB_DSN is required but not set"))
		}
	case StoreDriverMemory:
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreDriverPostgres, StoreDriverMemory, c.StoreDriver))
	}

	if c.IdentitySecret == "" {
		errs = append(errs, errors.New("IDENTITY_JWT_SECRET is required but not set"))
	}
	if c.RecurringWeeksAhead <= 0 {
		errs = append(errs, errors.New("RECURRING_WEEKS_AHEAD must be positive"))
	}
	if c.RecurringInterval <= 0 {
		errs = append(errs, errors.New("RECURRING_INTERVAL must be positive"))
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("TIMEZONE: %w", err))
	}

	return errors.Join(errs...)
}

// Location часовой пояс, в котором считается "сегодня"
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
