// internal/delivery/telegram/app/bot/bot.go
package bot

import (
	"context"
	"strings"
	"sync"
	"time"

	"fx-sentiment-bot/internal/delivery/telegram/app/bot/handlers"
	"fx-sentiment-bot/internal/delivery/telegram/app/bot/handlers/router"
	"fx-sentiment-bot/internal/delivery/telegram/app/bot/message_sender"
	telegram_http "fx-sentiment-bot/internal/delivery/telegram/app/http_client"
	"fx-sentiment-bot/internal/infrastructure/config"
	"fx-sentiment-bot/internal/infrastructure/persistence/recipient"
	"fx-sentiment-bot/pkg/logger"
)

// TelegramBot принимает команды /start, /stop, /status через long polling
type TelegramBot struct {
	pollingClient *telegram_http.PollingClient
	messageSender message_sender.MessageSender
	router        router.Router

	pollingHandler *PollingClient

	mu          sync.RWMutex
	startupTime time.Time
}

// Dependencies зависимости для TelegramBot
type Dependencies struct {
	Store   recipient.Store
	Status  handlers.StatusProvider
	NextRun handlers.NextRunProvider
}

// NewTelegramBot создает новый экземпляр TelegramBot
func NewTelegramBot(cfg *config.Config, sender message_sender.MessageSender, deps *Dependencies) *TelegramBot {
	bot := &TelegramBot{
		pollingClient: telegram_http.NewPollingClient(cfg.GetTelegramBaseURL(), cfg.Telegram.PollingTimeout),
		messageSender: sender,
		router:        router.NewRouter(),
	}
	bot.initHandlers(deps)
	bot.pollingHandler = NewPollingClient(bot)
	return bot
}

// Start запускает polling
func (b *TelegramBot) Start(ctx context.Context) error {
	b.mu.Lock()
	b.startupTime = time.Now()
	b.mu.Unlock()

	logger.Info("🤖 Telegram бот запущен, команды: %s", strings.Join(b.router.GetCommands(), ", "))
	return b.pollingHandler.Start(ctx)
}

// Stop останавливает polling
func (b *TelegramBot) Stop() error {
	return b.pollingHandler.Stop()
}

// GetPollingClient возвращает HTTP клиент getUpdates
func (b *TelegramBot) GetPollingClient() *telegram_http.PollingClient {
	return b.pollingClient
}

// GetRouter возвращает роутер команд
func (b *TelegramBot) GetRouter() router.Router {
	return b.router
}

// HandleUpdate обрабатывает одно обновление и отвечает в тот же чат
func (b *TelegramBot) HandleUpdate(ctx context.Context, update telegram_http.Update) {
	msg := update.Message
	if msg == nil || msg.Chat.ID == 0 {
		return
	}

	text := strings.TrimSpace(msg.Text)
	if !strings.HasPrefix(text, "/") {
		return
	}

	fields := strings.Fields(text)
	params := handlers.HandlerParams{
		ChatID:   msg.Chat.ID,
		Username: msg.Chat.Username,
		Text:     text,
		Args:     fields[1:],
		UpdateID: update.UpdateID,
	}
	if msg.From != nil && msg.From.Username != "" {
		params.Username = msg.From.Username
	}

	result, err := b.router.Handle(ctx, fields[0], params)
	if err != nil {
		logger.Warn("⚠️ Команда %s от %d: %v", fields[0], msg.Chat.ID, err)
	}
	if result.Message == "" {
		return
	}

	if err := b.messageSender.SendReply(ctx, msg.Chat.ID, result.Message); err != nil {
		logger.Error("❌ Не удалось ответить в чат %d: %v", msg.Chat.ID, err)
	}
}
