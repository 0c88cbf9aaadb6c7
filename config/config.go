package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPHost string
	HTTPPort string
	GRPCHost string
	GRPCPort string

	MySQLDSN     string
	MySQLMaxOpen int
	MySQLMaxIdle int
	MySQLMaxLife time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LockBackend         string
	SuppressionProvider string
	AWSRegion           string
	AdaptersFile        string
	BounceMaxRetries    int

	// AuthServiceURL selects the REST auth client; otherwise AuthGRPCAddr is dialed.
	AuthServiceURL      string
	AuthGRPCAddr        string
	InternalServiceName string

	LogLevel  string
	LogFormat string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	maxOpen, err := getEnvInt("MYSQL_MAX_OPEN_CONNS", 10)
	if err != nil {
		return nil, err
	}
	maxIdle, err := getEnvInt("MYSQL_MAX_IDLE_CONNS", 5)
	if err != nil {
		return nil, err
	}
	maxLife, err := getEnvDuration("MYSQL_CONN_MAX_LIFETIME", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	maxRetries, err := getEnvInt("BOUNCE_MAX_RETRIES", 5)
	if err != nil {
		return nil, err
	}

	return &Config{
		HTTPHost: getEnv("HTTP_HOST", "0.0.0.0"),
		HTTPPort: getEnv("HTTP_PORT", "8080"),
		GRPCHost: getEnv("GRPC_HOST", "0.0.0.0"),
		GRPCPort: getEnv("GRPC_PORT", "9090"),

		MySQLDSN:     getEnv("MYSQL_DSN", "root:root@tcp(localhost:3306)/bounces?parseTime=true"),
		MySQLMaxOpen: maxOpen,
		MySQLMaxIdle: maxIdle,
		MySQLMaxLife: maxLife,

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       redisDB,

		LockBackend:         getEnv("LOCK_BACKEND", "redis"),
		SuppressionProvider: getEnv("SUPPRESSION_PROVIDER", "noop"),
		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AdaptersFile:        getEnv("ADAPTERS_FILE", ""),
		BounceMaxRetries:    maxRetries,

		AuthServiceURL:      getEnv("AUTH_SERVICE_URL", ""),
		AuthGRPCAddr:        getEnv("AUTH_SERVICE_GRPC_ADDR", "localhost:9091"),
		InternalServiceName: getEnv("INTERNAL_SERVICE_NAME", "bounces-service"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
