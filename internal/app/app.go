// Package app wires configuration into the database, object store, event
// bus and services. Both the HTTP server and the CLI start from here.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bitfantasy/partslib/internal/config"
	"github.com/bitfantasy/partslib/internal/parts/entity"
	"github.com/bitfantasy/partslib/internal/parts/events"
	"github.com/bitfantasy/partslib/internal/parts/repository"
	"github.com/bitfantasy/partslib/internal/parts/service"
	"github.com/bitfantasy/partslib/internal/parts/storage"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// App 运行期依赖集合
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	DB       *gorm.DB
	Redis    *redis.Client
	Store    storage.Store
	Hub      *events.Hub
	Services *service.Services
}

// New opens every backend named in cfg and builds the services.
// Events go through Redis when configured, otherwise straight to the local hub.
// On failure everything opened so far is closed again.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (_ *App, err error) {
	db, err := openDatabase(cfg.Database, cfg.Log.Level == "debug")
	if err != nil {
		return nil, err
	}
	a := &App{Config: cfg, Logger: log, DB: db}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	if err = db.AutoMigrate(entity.All()...); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	if a.Store, err = InitStore(ctx, cfg.Storage, log); err != nil {
		return nil, err
	}

	a.Hub = events.NewHub(log)
	var pub events.Publisher = a.Hub
	if cfg.Redis.Enabled() {
		rdb := InitRedis(cfg.Redis)
		if perr := rdb.Ping(ctx).Err(); perr != nil {
			log.Warn("Redis unavailable, events stay in-process", zap.Error(perr))
			_ = rdb.Close()
		} else {
			a.Redis = rdb
			bus := events.NewRedisBus(rdb, cfg.Redis.Channel, log)
			if err = bus.StartForwarder(ctx, a.Hub.Broadcast); err != nil {
				return nil, err
			}
			pub = bus
			log.Info("Event bus connected", zap.String("channel", cfg.Redis.Channel))
		}
	}

	policy, err := service.ParseDeletePolicy(cfg.Library.DeletePolicy)
	if err != nil {
		return nil, err
	}
	a.Services = service.NewServices(repository.NewRepositories(db), a.Store, pub, log, service.Options{
		DefaultCurrency: cfg.Library.DefaultCurrency,
		DefaultOwner:    cfg.Library.DefaultOwner,
		DeletePolicy:    policy,
	})
	return a, nil
}

// Close releases the database and redis connections.
func (a *App) Close() {
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func InitLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

var openDatabase = InitDatabase

func InitDatabase(cfg config.DatabaseConfig, verbose bool) (*gorm.DB, error) {
	level := logger.Warn
	if verbose {
		level = logger.Info
	}
	gormConfig := &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN())
	default:
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database dir: %w", err)
			}
		}
		// 外键约束需显式开启
		dialector = sqlite.Open(cfg.Path + "?_foreign_keys=on")
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	if cfg.Driver == "sqlite" {
		// sqlite 单写者
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

func InitRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func InitStore(ctx context.Context, cfg config.StorageConfig, log *zap.Logger) (storage.Store, error) {
	switch cfg.Backend {
	case "minio":
		return storage.NewMinioStore(ctx, storage.MinioConfig{
			Endpoint:  cfg.MinIO.Endpoint,
			AccessKey: cfg.MinIO.AccessKey,
			SecretKey: cfg.MinIO.SecretKey,
			Bucket:    cfg.MinIO.Bucket,
			UseSSL:    cfg.MinIO.UseSSL,
			Marker:    cfg.Marker,
		}, log)
	default:
		return storage.NewDiskStore(cfg.Dir, cfg.Marker, log)
	}
}
