package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	AppPort     string `envconfig:"APP_PORT" default:"3001"`
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppTimezone string `envconfig:"APP_TIMEZONE" default:"America/Argentina/Buenos_Aires"`

	// Database
	DBDriver   string `envconfig:"DB_DRIVER" default:"postgres"` // postgres | mysql
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     string `envconfig:"DB_PORT"` // defaults to the driver's standard port
	DBUser     string `envconfig:"DB_USER" default:"postgres"`
	DBPassword string `envconfig:"DB_PASSWORD" default:"postgres"`
	DBName     string `envconfig:"DB_NAME" default:"dashboard_ventas"`
	DBURL      string `envconfig:"DB_URL"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNS" default:"20"`

	// Redis
	RedisURL      string `envconfig:"REDIS_URL" default:"redis://localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`

	// Auth
	JWTSecret string        `envconfig:"JWT_SECRET" default:"change-this-secret-in-production"`
	JWTTTL    time.Duration `envconfig:"JWT_TTL" default:"24h"`

	// HTTP
	CORSOrigins string `envconfig:"CORS_ORIGINS" default:"http://localhost:3000"`

	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	TopLimitMax int    `envconfig:"TOP_LIMIT_MAX" default:"100"`
}

var instance *Config

// Load initializes and returns the singleton Config instance
func Load() (*Config, error) {
	if instance != nil {
		return instance, nil
	}

	// Load .env file if it exists (for local development)
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("error processing environment variables: %w", err)
	}

	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	if cfg.DBDriver != "postgres" && cfg.DBDriver != "mysql" {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (expected postgres or mysql)", cfg.DBDriver)
	}

	// Hosted platforms usually export DATABASE_URL
	if cfg.DBURL == "" {
		if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
			cfg.DBURL = databaseURL
		}
	}

	if cfg.DBURL == "" {
		cfg.DBURL = cfg.buildDSN()
	}

	instance = cfg
	return instance, nil
}

func (c *Config) buildDSN() string {
	if c.DBDriver == "mysql" {
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4",
			c.DBUser, c.DBPassword, c.DBHost, c.dbPort(), c.DBName)
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.dbPort(), c.DBName)
}

func (c *Config) dbPort() string {
	if c.DBPort != "" {
		return c.DBPort
	}
	if c.DBDriver == "mysql" {
		return "3306"
	}
	return "5432"
}

// IsProduction reports whether internal error detail must be withheld from responses.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// Location resolves AppTimezone, falling back to UTC when the zone database lacks it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.AppTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// AllowedOrigins splits CORS_ORIGINS into the comma separated form fiber's cors middleware expects.
func (c *Config) AllowedOrigins() string {
	parts := strings.Split(c.CORSOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ",")
}
