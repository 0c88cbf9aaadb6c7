package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	authclient "github.com/vibast-solutions/lib-go-auth/client"
	authservice "github.com/vibast-solutions/lib-go-auth/service"

	"github.com/vibast-solutions/ms-go-bounces/app/adapter"
	"github.com/vibast-solutions/ms-go-bounces/app/lock"
	"github.com/vibast-solutions/ms-go-bounces/app/preparer"
	"github.com/vibast-solutions/ms-go-bounces/app/provider"
	"github.com/vibast-solutions/ms-go-bounces/app/repository"
	"github.com/vibast-solutions/ms-go-bounces/app/service"
	"github.com/vibast-solutions/ms-go-bounces/config"
)

func openMySQL(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MySQLMaxOpen)
	db.SetMaxIdleConns(cfg.MySQLMaxIdle)
	db.SetConnMaxLifetime(cfg.MySQLMaxLife)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

func openRedis(cfg *config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return rdb, nil
}

// buildRegistry returns the built-in adapters, preceded by those of path when set.
func buildRegistry(path string) (*adapter.Registry, error) {
	registry := adapter.Default()
	if path == "" {
		return registry, nil
	}
	extra, err := adapter.LoadFile(path)
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"file": path, "adapters": len(extra)}).Info("loaded user adapters")
	return registry.With(extra...), nil
}

func buildSuppressor(cfg *config.Config) (provider.Suppressor, error) {
	switch strings.ToLower(cfg.SuppressionProvider) {
	case "", "noop":
		return provider.NewNoopSuppressor(), nil
	case "ses":
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return nil, err
		}
		return provider.NewSESSuppressor(awsCfg), nil
	default:
		return nil, fmt.Errorf("unsupported SUPPRESSION_PROVIDER: %s", cfg.SuppressionProvider)
	}
}

func buildLocker(cfg *config.Config, db *sql.DB, rdb *redis.Client) (lock.Locker, error) {
	switch strings.ToLower(cfg.LockBackend) {
	case "", "redis":
		return lock.NewRedisLocker(rdb), nil
	case "mysql":
		return lock.NewMySQLLocker(db), nil
	default:
		return nil, fmt.Errorf("unsupported LOCK_BACKEND: %s", cfg.LockBackend)
	}
}

// buildBounceService wires the service against the configured backends.
func buildBounceService(cfg *config.Config, db *sql.DB, rdb *redis.Client) (*service.BounceService, error) {
	registry, err := buildRegistry(cfg.AdaptersFile)
	if err != nil {
		return nil, fmt.Errorf("load adapters: %w", err)
	}
	suppressor, err := buildSuppressor(cfg)
	if err != nil {
		return nil, fmt.Errorf("build suppressor: %w", err)
	}
	locker, err := buildLocker(cfg, db, rdb)
	if err != nil {
		return nil, fmt.Errorf("build locker: %w", err)
	}

	return service.NewBounceService(
		preparer.Default(),
		registry,
		repository.NewBounceHistoryRepository(db),
		repository.NewDeliveryRecordRepository(db),
		repository.NewEmailHistoryRepository(db),
		suppressor,
		locker,
	).WithMaxRetries(cfg.BounceMaxRetries), nil
}

// buildInternalAuth connects to the auth service that validates caller API keys.
// The returned func releases the client connection.
func buildInternalAuth(cfg *config.Config) (*authservice.InternalAuthService, func(), error) {
	if cfg.AuthServiceURL != "" {
		restClient, err := authclient.NewRESTClient(cfg.AuthServiceURL)
		if err != nil {
			return nil, nil, fmt.Errorf("create auth rest client: %w", err)
		}
		return authservice.NewInternalAuthService(restClient), func() {}, nil
	}

	grpcClient, err := authclient.NewGRPCClientFromAddr(context.Background(), cfg.AuthGRPCAddr)
	if err != nil {
		return nil, nil, fmt.Errorf("create auth grpc client: %w", err)
	}
	return authservice.NewInternalAuthService(grpcClient), func() { _ = grpcClient.Close() }, nil
}
