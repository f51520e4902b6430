package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	StoreMemory = "memory"
	StoreMySQL  = "mysql"
)

type Config struct {
	HTTPPort        string        `envconfig:"HTTP_PORT" default:":8080"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	StoreDriver     string        `envconfig:"STORE_DRIVER" default:"memory"`

	DBUser         string `envconfig:"DB_USER" default:"root"`
	DBPassword     string `ignored:"true"`
	DBHost         string `envconfig:"DB_HOST" default:"localhost"`
	DBPort         string `envconfig:"DB_PORT" default:"3306"`
	DBName         string `envconfig:"DB_NAME" default:"ecommerce"`
	DBSeed         bool   `envconfig:"DB_SEED" default:"true"`
	DBMaxOpenConns int    `envconfig:"DB_MAX_OPEN_CONNS" default:"10"`

	JWTSecret string `ignored:"true"`
	JWTIssuer string `envconfig:"JWT_ISSUER" default:"commerce-auth"`

	// An empty RabbitMQURL disables event publishing and consumption.
	RabbitMQURL     string `envconfig:"RABBITMQ_URL"`
	OrderExchange   string `envconfig:"ORDER_EXCHANGE" default:"orders_exchange"`
	OrderQueue      string `envconfig:"ORDER_QUEUE" default:"orders_queue"`
	PaymentQueue    string `envconfig:"PAYMENT_QUEUE" default:"payments_queue"`
	DeadLetterQueue string `envconfig:"DEAD_LETTER_QUEUE" default:"dead_letter_queue"`
	MaxPriority     int    `envconfig:"MAX_PRIORITY" default:"10"`
}

// LoadConfig reads an optional .env file, then the process environment.
// Secrets may be supplied through *_FILE variables.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("could not load .env file: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("could not process environment: %w", err)
	}
	cfg.DBPassword = getEnvFromFile("DB_PASSWORD_FILE", "DB_PASSWORD", "")
	cfg.JWTSecret = getEnvFromFile("JWT_SECRET_FILE", "JWT_SECRET", "")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET or JWT_SECRET_FILE must be set")
	}
	switch c.StoreDriver {
	case StoreMemory, StoreMySQL:
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver)
	}
	if c.MaxPriority < 0 || c.MaxPriority > 255 {
		return fmt.Errorf("MAX_PRIORITY must be within 0..255, got %d", c.MaxPriority)
	}
	return nil
}

func (c *Config) MessagingEnabled() bool {
	return c.RabbitMQURL != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFromFile(fileKey, envKey, defaultValue string) string {
	if filePath := os.Getenv(fileKey); filePath != "" {
		if content, err := os.ReadFile(filePath); err == nil {
			return strings.TrimSpace(string(content))
		}
	}
	return getEnv(envKey, defaultValue)
}
