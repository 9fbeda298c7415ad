package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App struct {
		Name     string
		Port     string
		Timezone string
		// RestockOnCancel returns decremented stock when an order is
		// cancelled or deleted before delivery.
		RestockOnCancel bool
	}
	Log struct {
		Level  string
		Pretty bool
	}
	Postgres struct {
		URL          string
		Host         string
		Port         string
		User         string
		Password     string
		DBName       string
		SSLMode      string
		MaxOpenConns int
		MaxIdleConns int
	}
	JWT struct {
		Secret string
		TTL    time.Duration
	}
	Redis struct {
		Addr     string
		Password string
		DB       int
	}
	Kafka struct {
		Brokers  []string
		ClientID string
	}
	// Admin is the first administrator, created on start when missing.
	Admin struct {
		Email    string
		Password string
	}
}

// Load reads an optional .env file at path and then the process environment.
func Load(path string) (*Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	cfg := &Config{}
	cfg.App.Name = getEnv("APP_NAME", "Pings Ping Tinapa")
	cfg.App.Port = getEnv("APP_PORT", "3000")
	cfg.App.Timezone = getEnv("APP_TIMEZONE", "Asia/Manila")
	cfg.App.RestockOnCancel = getBool("RESTOCK_ON_CANCEL", false)

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Pretty = getBool("LOG_PRETTY", false)

	cfg.Postgres.URL = os.Getenv("DATABASE_URL")
	cfg.Postgres.Host = os.Getenv("DB_HOST")
	cfg.Postgres.Port = getEnv("DB_PORT", "5432")
	cfg.Postgres.User = os.Getenv("DB_USER")
	cfg.Postgres.Password = os.Getenv("DB_PASSWORD")
	cfg.Postgres.DBName = os.Getenv("DB_NAME")
	cfg.Postgres.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Postgres.MaxOpenConns = getInt("DB_MAX_OPEN_CONNS", 100)
	cfg.Postgres.MaxIdleConns = getInt("DB_MAX_IDLE_CONNS", 10)
	if cfg.Postgres.URL == "" {
		if cfg.Postgres.Host == "" {
			return nil, errors.New("DB_HOST is required when DATABASE_URL is not set")
		}
		if cfg.Postgres.User == "" {
			return nil, errors.New("DB_USER is required when DATABASE_URL is not set")
		}
		if cfg.Postgres.DBName == "" {
			return nil, errors.New("DB_NAME is required when DATABASE_URL is not set")
		}
	}

	cfg.JWT.Secret = os.Getenv("JWT_SECRET")
	if cfg.JWT.Secret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	cfg.JWT.TTL = time.Duration(getInt("JWT_TTL_HOURS", 24)) * time.Hour

	cfg.Redis.Addr = os.Getenv("REDIS_ADDR")
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
	cfg.Redis.DB = getInt("REDIS_DB", 0)

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.Kafka.Brokers = append(cfg.Kafka.Brokers, b)
			}
		}
	}
	cfg.Kafka.ClientID = getEnv("KAFKA_CLIENT_ID", "go-tinapa-shop")

	cfg.Admin.Email = os.Getenv("ADMIN_EMAIL")
	cfg.Admin.Password = os.Getenv("ADMIN_PASSWORD")
	if cfg.Admin.Email != "" && len(cfg.Admin.Password) < 6 {
		return nil, errors.New("ADMIN_PASSWORD of at least 6 characters is required with ADMIN_EMAIL")
	}

	return cfg, nil
}

// Location resolves App.Timezone, falling back to a fixed UTC+8 zone when
// the tz database is not available.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.FixedZone("PHT", 8*60*60)
	}
	return loc
}

// PostgresDSN returns DATABASE_URL or a DSN built from the DB_* settings.
func (c *Config) PostgresDSN() string {
	if c.Postgres.URL != "" {
		return c.Postgres.URL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.Postgres.Host,
		c.Postgres.User,
		c.Postgres.Password,
		c.Postgres.DBName,
		c.Postgres.Port,
		c.Postgres.SSLMode,
		c.App.Timezone,
	)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

func getBool(key string, def bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}
