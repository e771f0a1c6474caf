// internal/infrastructure/persistence/recipient/factory.go
package recipient

import (
	"context"
	"fmt"

	redis_cache "fx-sentiment-bot/internal/infrastructure/cache/redis"
	"fx-sentiment-bot/internal/infrastructure/config"
	"fx-sentiment-bot/internal/infrastructure/persistence/postgres/database"
	"fx-sentiment-bot/pkg/logger"
)

// Backend хранилище вместе с сервисом, который нужно остановить при выходе
type Backend struct {
	Store  Store
	Name   string
	stop   func() error
	health func(ctx context.Context) error
}

// HealthCheck проверяет соединение; файловое хранилище всегда здорово
func (b *Backend) HealthCheck(ctx context.Context) error {
	if b.health == nil {
		return nil
	}
	return b.health(ctx)
}

// Close останавливает сервис хранилища
func (b *Backend) Close() error {
	if b.stop == nil {
		return nil
	}
	return b.stop()
}

// NewFromConfig создает хранилище по RECIPIENT_BACKEND
func NewFromConfig(cfg *config.Config) (*Backend, error) {
	switch cfg.Recipient.Backend {
	case config.RecipientBackendRedis:
		svc := redis_cache.NewRedisService(cfg)
		if err := svc.Start(); err != nil {
			return nil, err
		}
		logger.Info("💾 Получатель хранится в Redis (ключ %s)", cfg.Redis.RecipientKey)
		return &Backend{
			Store:  NewRedisStore(svc.GetClient(), cfg.Redis.RecipientKey),
			Name:   svc.Name(),
			stop:   svc.Stop,
			health: svc.HealthCheck,
		}, nil

	case config.RecipientBackendPostgres:
		svc := database.NewDatabaseService(cfg)
		if err := svc.Start(); err != nil {
			return nil, err
		}
		logger.Info("💾 Получатель хранится в PostgreSQL")
		return &Backend{
			Store:  NewPostgresStore(svc.GetDB()),
			Name:   svc.Name(),
			stop:   svc.Stop,
			health: svc.HealthCheck,
		}, nil

	case config.RecipientBackendFile, "":
		logger.Info("💾 Получатель хранится в файле %s", cfg.Recipient.File)
		return &Backend{Store: NewFileStore(cfg.Recipient.File), Name: "FileStore"}, nil

	default:
		return nil, fmt.Errorf("unknown recipient backend: %s", cfg.Recipient.Backend)
	}
}
