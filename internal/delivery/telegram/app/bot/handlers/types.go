// internal/delivery/telegram/app/bot/handlers/types.go
package handlers

import (
	"context"
	"time"

	"fx-sentiment-bot/internal/core/domain/sentiment"
)

// HandlerType тип хэндлера
type HandlerType string

const (
	TypeCommand HandlerType = "command"
)

// Handler интерфейс для всех хэндлеров
type Handler interface {
	Execute(ctx context.Context, params HandlerParams) (HandlerResult, error)
	GetName() string
	GetCommand() string
	GetType() HandlerType
	GetDescription() string
}

// HandlerParams базовые параметры для всех хэндлеров
type HandlerParams struct {
	ChatID   int64
	Username string
	Text     string   // полный текст сообщения
	Args     []string // аргументы после команды
	UpdateID int64
}

// HandlerResult базовый результат хэндлера
type HandlerResult struct {
	Message  string                 `json:"message"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// StatusProvider источник состояния движка
type StatusProvider interface {
	Status() sentiment.Status
}

// NextRunProvider время следующего опроса; zero если неизвестно
type NextRunProvider func() time.Time
