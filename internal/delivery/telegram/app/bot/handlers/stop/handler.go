// internal/delivery/telegram/app/bot/handlers/stop/handler.go
package stop

import (
	"context"
	"fmt"

	"fx-sentiment-bot/internal/delivery/telegram/app/bot/formatters"
	"fx-sentiment-bot/internal/delivery/telegram/app/bot/handlers"
	"fx-sentiment-bot/internal/delivery/telegram/app/bot/handlers/base"
	"fx-sentiment-bot/internal/infrastructure/persistence/recipient"
	"fx-sentiment-bot/pkg/logger"
)

type stopHandlerImpl struct {
	*base.BaseHandler
	store     recipient.Store
	formatter *formatters.SentimentFormatter
}

// NewHandler создает хэндлер команды /stop
func NewHandler(store recipient.Store, formatter *formatters.SentimentFormatter) handlers.Handler {
	return &stopHandlerImpl{
		BaseHandler: &base.BaseHandler{
			Name:        "stop_handler",
			Command:     "stop",
			Description: "unsubscribe this chat",
			Type:        handlers.TypeCommand,
		},
		store:     store,
		formatter: formatter,
	}
}

// Execute снимает регистрацию только если команду прислал текущий получатель
func (h *stopHandlerImpl) Execute(ctx context.Context, params handlers.HandlerParams) (handlers.HandlerResult, error) {
	cleared, err := h.store.ClearIf(ctx, params.ChatID)
	if err != nil {
		return handlers.HandlerResult{}, fmt.Errorf("clear recipient: %w", err)
	}
	if !cleared {
		return handlers.HandlerResult{Message: "This chat is not subscribed."}, nil
	}

	logger.Info("👋 Получатель %d отписался", params.ChatID)
	return handlers.HandlerResult{Message: h.formatter.FormatStopped()}, nil
}
