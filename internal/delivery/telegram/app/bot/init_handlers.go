// internal/delivery/telegram/app/bot/init_handlers.go
package bot

import (
	"fx-sentiment-bot/internal/delivery/telegram/app/bot/formatters"
	"fx-sentiment-bot/internal/delivery/telegram/app/bot/handlers/start"
	"fx-sentiment-bot/internal/delivery/telegram/app/bot/handlers/status"
	"fx-sentiment-bot/internal/delivery/telegram/app/bot/handlers/stop"
)

// initHandlers регистрирует команды бота
func (b *TelegramBot) initHandlers(deps *Dependencies) {
	formatter := formatters.NewSentimentFormatter()

	b.router.RegisterHandler(start.NewHandler(deps.Store, deps.Status, formatter))
	b.router.RegisterHandler(stop.NewHandler(deps.Store, formatter))
	b.router.RegisterHandler(status.NewHandler(deps.Store, deps.Status, deps.NextRun, formatter))
}
