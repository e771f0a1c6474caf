// internal/delivery/telegram/app/bot/handlers/router/router.go
package router

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"fx-sentiment-bot/internal/delivery/telegram/app/bot/handlers"
	"fx-sentiment-bot/pkg/logger"
)

// routerImpl реализация Router
type routerImpl struct {
	handlers map[string]handlers.Handler // ключ: /команда
}

// NewRouter создает новый роутер
func NewRouter() Router {
	return &routerImpl{
		handlers: make(map[string]handlers.Handler),
	}
}

// RegisterHandler регистрирует хэндлер под /GetCommand()
func (r *routerImpl) RegisterHandler(handler handlers.Handler) {
	command := normalizeCommand(handler.GetCommand())
	r.handlers[command] = handler
	logger.Debug("Зарегистрирован хэндлер: %s для %s: %s",
		handler.GetName(), handler.GetType(), command)
}

// Handle обрабатывает команду; /help и неизвестные команды получают список команд
func (r *routerImpl) Handle(ctx context.Context, command string, params handlers.HandlerParams) (handlers.HandlerResult, error) {
	command = normalizeCommand(command)

	handler, exists := r.handlers[command]
	if !exists {
		if command != "/help" {
			logger.Debug("Неизвестная команда: %s", command)
		}
		return handlers.HandlerResult{Message: r.helpText()}, nil
	}

	result, err := handler.Execute(ctx, params)
	if err != nil {
		logger.Error("❌ Хэндлер %s завершился с ошибкой: %v", handler.GetName(), err)
		return handlers.HandlerResult{Message: "⚠️ Something went wrong, try again later."}, err
	}
	return result, nil
}

// GetHandler возвращает хэндлер команды
func (r *routerImpl) GetHandler(command string) (handlers.Handler, bool) {
	h, ok := r.handlers[normalizeCommand(command)]
	return h, ok
}

// GetCommands возвращает отсортированный список команд
func (r *routerImpl) GetCommands() []string {
	commands := make([]string, 0, len(r.handlers))
	for cmd := range r.handlers {
		commands = append(commands, cmd)
	}
	sort.Strings(commands)
	return commands
}

func (r *routerImpl) helpText() string {
	var sb strings.Builder
	sb.WriteString("Available commands:")
	for _, cmd := range r.GetCommands() {
		sb.WriteString(fmt.Sprintf("\n%s - %s", cmd, r.handlers[cmd].GetDescription()))
	}
	return sb.String()
}

// normalizeCommand приводит "start", "/Start@my_bot" к "/start"
func normalizeCommand(command string) string {
	command = strings.ToLower(strings.TrimSpace(command))
	if i := strings.IndexByte(command, '@'); i >= 0 {
		command = command[:i]
	}
	if !strings.HasPrefix(command, "/") {
		command = "/" + command
	}
	return command
}
