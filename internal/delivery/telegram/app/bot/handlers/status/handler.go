// internal/delivery/telegram/app/bot/handlers/status/handler.go
package status

import (
	"context"
	"time"

	"fx-sentiment-bot/internal/delivery/telegram/app/bot/formatters"
	"fx-sentiment-bot/internal/delivery/telegram/app/bot/handlers"
	"fx-sentiment-bot/internal/delivery/telegram/app/bot/handlers/base"
	"fx-sentiment-bot/internal/infrastructure/persistence/recipient"
)

type statusHandlerImpl struct {
	*base.BaseHandler
	store     recipient.Store
	status    handlers.StatusProvider
	nextRun   handlers.NextRunProvider
	formatter *formatters.SentimentFormatter
}

// NewHandler создает хэндлер команды /status
func NewHandler(store recipient.Store, status handlers.StatusProvider, nextRun handlers.NextRunProvider, formatter *formatters.SentimentFormatter) handlers.Handler {
	return &statusHandlerImpl{
		BaseHandler: &base.BaseHandler{
			Name:        "status_handler",
			Command:     "status",
			Description: "engine state and pending alerts",
			Type:        handlers.TypeCommand,
		},
		store:     store,
		status:    status,
		nextRun:   nextRun,
		formatter: formatter,
	}
}

func (h *statusHandlerImpl) Execute(ctx context.Context, params handlers.HandlerParams) (handlers.HandlerResult, error) {
	current, ok, err := h.store.Get(ctx)
	if err != nil {
		return handlers.HandlerResult{}, err
	}

	var next time.Time
	if h.nextRun != nil {
		next = h.nextRun()
	}

	return handlers.HandlerResult{
		Message: h.formatter.FormatStatus(h.status.Status(), ok && current == params.ChatID, next),
	}, nil
}
