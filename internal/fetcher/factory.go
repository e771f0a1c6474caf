// internal/fetcher/factory.go
package fetcher

import (
	"fmt"
	"strings"

	"fx-sentiment-bot/internal/infrastructure/config"
	"fx-sentiment-bot/pkg/logger"
)

// Factory создает источник настроений по конфигурации
type Factory struct {
	cfg *config.Config
}

// NewFactory создает фабрику
func NewFactory(cfg *config.Config) *Factory {
	return &Factory{cfg: cfg}
}

// NewSentimentFetcher возвращает клиент фида
func (f *Factory) NewSentimentFetcher() (SentimentFetcher, error) {
	url := strings.TrimSpace(f.cfg.Feed.URL)
	if url == "" {
		return nil, fmt.Errorf("feed URL is not configured")
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return nil, fmt.Errorf("unsupported feed URL scheme: %s", url)
	}

	logger.Info("📡 Источник настроений: %s (timeout %v)", url, f.cfg.Feed.Timeout)
	return NewFXSSIFetcher(url, f.cfg.Feed.Timeout), nil
}
