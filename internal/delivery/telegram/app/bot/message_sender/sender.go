// internal/delivery/telegram/app/bot/message_sender/sender.go
package message_sender

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"fx-sentiment-bot/internal/delivery/telegram/app/http_client"
	"fx-sentiment-bot/internal/infrastructure/config"
	"fx-sentiment-bot/pkg/logger"
)

// MessageSender интерфейс для отправки сообщений
type MessageSender interface {
	// SendText доставляет текст одному получателю.
	// Возвращает ErrUnauthorized, если получатель отозвал доступ.
	SendText(ctx context.Context, chatID int64, text string) error

	// SendReply ответ на команду, без проверки дубликатов
	SendReply(ctx context.Context, chatID int64, text string) error

	SetTestMode(enabled bool)
	IsTestMode() bool
}

// Options параметры отправителя
type Options struct {
	BaseURL        string
	Enabled        bool
	TestMode       bool
	RatePerSec     float64
	DedupTTL       time.Duration
	RequestTimeout time.Duration
}

// MessageSenderImpl реализация MessageSender поверх Bot API
type MessageSenderImpl struct {
	client       *http_client.TelegramClient
	rateLimiter  *RateLimiter
	messageCache *MessageCache
	enabled      bool

	mu       sync.RWMutex
	testMode bool
}

// NewMessageSender создает новый MessageSender
func NewMessageSender(opts Options) *MessageSenderImpl {
	return &MessageSenderImpl{
		client:       http_client.NewTelegramClient(opts.BaseURL, opts.RequestTimeout),
		rateLimiter:  NewRateLimiter(opts.RatePerSec),
		messageCache: NewMessageCache(opts.DedupTTL),
		enabled:      opts.Enabled,
		testMode:     opts.TestMode,
	}
}

// NewMessageSenderFromConfig создает отправителя из конфигурации
func NewMessageSenderFromConfig(cfg *config.Config) *MessageSenderImpl {
	return NewMessageSender(Options{
		BaseURL:        cfg.GetTelegramBaseURL(),
		Enabled:        cfg.Telegram.Enabled,
		TestMode:       cfg.Telegram.TestMode,
		RatePerSec:     cfg.Notify.RatePerSec,
		DedupTTL:       cfg.Notify.DedupTTL,
		RequestTimeout: cfg.Telegram.RequestTimeout,
	})
}

// SendText отправляет уведомление; повтор того же текста в тот же чат
// в пределах DedupTTL пропускается
func (ms *MessageSenderImpl) SendText(ctx context.Context, chatID int64, text string) error {
	return ms.send(ctx, chatID, text, true)
}

// SendReply отправляет ответ на команду
func (ms *MessageSenderImpl) SendReply(ctx context.Context, chatID int64, text string) error {
	return ms.send(ctx, chatID, text, false)
}

func (ms *MessageSenderImpl) send(ctx context.Context, chatID int64, text string, dedup bool) error {
	// Проверяем включен ли Telegram
	if !ms.enabled {
		logger.Debug("⚠️ Telegram отключен, пропуск отправки сообщения")
		return nil
	}

	// Проверяем тестовый режим
	if ms.IsTestMode() {
		logger.Info("[TEST] Send to %d: %s", chatID, preview(text, 80))
		return nil
	}

	if chatID == 0 {
		return &DeliveryError{Method: "sendMessage", Err: errors.New("empty chat id")}
	}

	// Проверяем дубликаты (защита от спама)
	messageHash := GetMessageHash(chatID, text)
	if dedup && ms.messageCache.IsDuplicate(messageHash) {
		logger.Debug("⚠️ Дубликат сообщения для %d, пропуск", chatID)
		return nil
	}

	if err := ms.rateLimiter.Wait(ctx); err != nil {
		return &DeliveryError{Method: "sendMessage", Transient: true, Err: err}
	}

	request := map[string]interface{}{
		"chat_id":                  chatID,
		"text":                     text,
		"disable_web_page_preview": true,
	}

	if err := ms.sendTelegramRequest(ctx, "sendMessage", request); err != nil {
		return err
	}

	if dedup {
		ms.messageCache.Add(messageHash)
	}
	return nil
}

// SetTestMode включает/выключает тестовый режим
func (ms *MessageSenderImpl) SetTestMode(enabled bool) {
	ms.mu.Lock()
	ms.testMode = enabled
	ms.mu.Unlock()
}

// IsTestMode возвращает статус тестового режима
func (ms *MessageSenderImpl) IsTestMode() bool {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return ms.testMode
}

// sendTelegramRequest отправляет запрос к Telegram API.
// 429 не повторяется: следующее событие попробует снова.
func (ms *MessageSenderImpl) sendTelegramRequest(ctx context.Context, method string, request map[string]interface{}) error {
	status, resp, err := ms.client.Call(ctx, method, request)
	if err != nil {
		return &DeliveryError{Method: method, Code: status, Transient: true, Err: err}
	}

	if resp.OK {
		return nil
	}

	if resp.ErrorCode == 429 && resp.Parameters.RetryAfter > 0 {
		logger.Warn("⚠️ Telegram API rate limit, retry_after=%ds", resp.Parameters.RetryAfter)
	}

	code := resp.ErrorCode
	if code == 0 {
		code = status
	}
	apiErr := classifyAPIError(method, code, resp.Description)
	if errors.Is(apiErr, ErrUnauthorized) {
		return apiErr
	}
	return fmt.Errorf("send failed: %w", apiErr)
}
