// internal/delivery/telegram/app/bot/handlers/start/handler.go
package start

import (
	"context"
	"fmt"

	"fx-sentiment-bot/internal/delivery/telegram/app/bot/formatters"
	"fx-sentiment-bot/internal/delivery/telegram/app/bot/handlers"
	"fx-sentiment-bot/internal/delivery/telegram/app/bot/handlers/base"
	"fx-sentiment-bot/internal/infrastructure/persistence/recipient"
	"fx-sentiment-bot/pkg/logger"
)

// startHandlerImpl регистрирует получателя и отправляет сводку
type startHandlerImpl struct {
	*base.BaseHandler
	store     recipient.Store
	status    handlers.StatusProvider
	formatter *formatters.SentimentFormatter
}

// NewHandler создает новый хэндлер команды /start
func NewHandler(store recipient.Store, status handlers.StatusProvider, formatter *formatters.SentimentFormatter) handlers.Handler {
	return &startHandlerImpl{
		BaseHandler: &base.BaseHandler{
			Name:        "start_handler",
			Command:     "start",
			Description: "subscribe this chat to notifications",
			Type:        handlers.TypeCommand,
		},
		store:     store,
		status:    status,
		formatter: formatter,
	}
}

// Execute выполняет обработку команды /start.
// Новый /start из другого чата заменяет предыдущего получателя.
func (h *startHandlerImpl) Execute(ctx context.Context, params handlers.HandlerParams) (handlers.HandlerResult, error) {
	previous, hadPrevious, err := h.store.Get(ctx)
	if err != nil {
		return handlers.HandlerResult{}, fmt.Errorf("read recipient: %w", err)
	}

	if err := h.store.Set(ctx, params.ChatID); err != nil {
		return handlers.HandlerResult{}, fmt.Errorf("store recipient: %w", err)
	}

	if hadPrevious && previous != params.ChatID {
		logger.Info("🔁 Получатель заменен: %d -> %d (@%s)", previous, params.ChatID, params.Username)
	} else {
		logger.Info("👤 Получатель зарегистрирован: %d (@%s)", params.ChatID, params.Username)
	}

	return handlers.HandlerResult{
		Message: h.formatter.FormatCatchUp(h.status.Status()),
		Metadata: map[string]interface{}{
			"chat_id":  params.ChatID,
			"replaced": hadPrevious && previous != params.ChatID,
		},
	}, nil
}
