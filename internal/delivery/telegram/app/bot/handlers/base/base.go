// internal/delivery/telegram/app/bot/handlers/base/base.go
package base

import (
	"fx-sentiment-bot/internal/delivery/telegram/app/bot/handlers"
)

// BaseHandler базовая структура для всех хэндлеров
type BaseHandler struct {
	Name        string
	Command     string
	Description string
	Type        handlers.HandlerType
}

// GetName возвращает имя хэндлера
func (h *BaseHandler) GetName() string {
	return h.Name
}

// GetCommand возвращает команду
func (h *BaseHandler) GetCommand() string {
	return h.Command
}

// GetType возвращает тип хэндлера
func (h *BaseHandler) GetType() handlers.HandlerType {
	return h.Type
}

// GetDescription описание для /help
func (h *BaseHandler) GetDescription() string {
	return h.Description
}
