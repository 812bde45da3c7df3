package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Storage backends
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Session store backends
const (
	SessionMemory = "memory"
	SessionRedis  = "redis"
)

// Config holds all application configuration
type Config struct {
	BotToken        string        `env:"BOT_TOKEN" validate:"required"`
	Storage         string        `env:"STORAGE" validate:"oneof=postgres memory"`
	SessionStore    string        `env:"SESSION_STORE" validate:"oneof=memory redis"`
	RedisAddr       string        `env:"REDIS_ADDR" validate:"required_if=SessionStore redis"`
	SessionTTL      time.Duration `env:"SESSION_TTL" validate:"gte=0"`
	MigrationsPath  string        `env:"MIGRATIONS_PATH" validate:"required"`
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL" validate:"gt=0"`
	PollTimeout     time.Duration `env:"POLL_TIMEOUT" validate:"gt=0"`
	Database        DatabaseConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("env"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not exists)
	_ = godotenv.Load()

	cfg := &Config{
		BotToken:       os.Getenv("BOT_TOKEN"),
		Storage:        getEnv("STORAGE", StoragePostgres),
		SessionStore:   getEnv("SESSION_STORE", SessionMemory),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "file://migrations"),
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Name:     getEnv("DB_NAME", "vocabtrainer"),
			User:     getEnv("DB_USER", "vocabtrainer"),
			Password: os.Getenv("DB_PASSWORD"),
		},
	}

	var err error
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.CleanupInterval, err = getDuration("CLEANUP_INTERVAL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.PollTimeout, err = getDuration("POLL_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required fields and allowed values
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return validationError(verrs)
		}
		return fmt.Errorf("validate config: %w", err)
	}

	if c.Storage == StoragePostgres && c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	return nil
}

func validationError(verrs validator.ValidationErrors) error {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required", "required_if":
			msgs = append(msgs, fe.Field()+" is required")
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}

// DSN returns PostgreSQL connection string
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
