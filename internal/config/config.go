package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	RabbitMQ RabbitMQConfig
	Gateway  GatewayConfig
	Dispatch DispatchConfig
	Sweep    SweepConfig
	Env      string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// RabbitMQConfig holds RabbitMQ configuration
type RabbitMQConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Queue    string
}

// GatewayConfig holds SMS gateway configuration shared by all tenants.
// Credentials are per tenant and live in the database.
type GatewayConfig struct {
	BaseURL     string
	CountryCode string
}

// DispatchConfig holds batch dispatch tuning
type DispatchConfig struct {
	BatchSize  int
	BatchPause time.Duration
}

// SweepConfig holds the automation sweep schedule
type SweepConfig struct {
	// Schedule is a cron expression; the default fires once a day at 07:00
	Schedule string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnv("POSTGRES_PORT", "5432"),
			User:     getEnv("POSTGRES_USER", "orgnotify"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			DBName:   getEnv("POSTGRES_DB", "orgnotify_db"),
		},
		RabbitMQ: RabbitMQConfig{
			Host:     getEnv("RABBITMQ_HOST", "localhost"),
			Port:     getEnv("RABBITMQ_PORT", "5672"),
			User:     getEnv("RABBITMQ_DEFAULT_USER", "guest"),
			Password: getEnv("RABBITMQ_DEFAULT_PASS", "guest"),
			Queue:    getEnv("RABBITMQ_SWEEP_QUEUE", "notification_sweeps"),
		},
		Gateway: GatewayConfig{
			BaseURL:     getEnv("SMS_GATEWAY_URL", "https://api.smsgateway.example.com"),
			CountryCode: getEnv("SMS_COUNTRY_CODE", "254"),
		},
		Dispatch: DispatchConfig{
			BatchSize:  getEnvAsInt("DISPATCH_BATCH_SIZE", 100),
			BatchPause: time.Duration(getEnvAsInt("DISPATCH_BATCH_PAUSE_MS", 500)) * time.Millisecond,
		},
		Sweep: SweepConfig{
			Schedule: getEnv("SWEEP_SCHEDULE", "0 7 * * *"),
		},
		Env: getEnv("ENV", "development"),
	}

	// Validate required fields
	if config.Database.Password == "" {
		return nil, fmt.Errorf("POSTGRES_PASSWORD is required")
	}

	return config, nil
}

// GetDatabaseDSN returns PostgreSQL connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

// GetRabbitMQURL returns RabbitMQ connection URL
func (c *Config) GetRabbitMQURL() string {
	return fmt.Sprintf(
		"amqp://%s:%s@%s:%s/",
		c.RabbitMQ.User,
		c.RabbitMQ.Password,
		c.RabbitMQ.Host,
		c.RabbitMQ.Port,
	)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// getEnv gets environment variable or returns default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets environment variable as integer or returns default
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
