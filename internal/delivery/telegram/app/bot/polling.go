// internal/delivery/telegram/app/bot/polling.go
package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"fx-sentiment-bot/pkg/logger"
)

const pollErrorBackoff = 5 * time.Second

// PollingClient - цикл получения обновлений
type PollingClient struct {
	bot    *TelegramBot
	offset int64

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewPollingClient создает новый polling клиент
func NewPollingClient(bot *TelegramBot) *PollingClient {
	return &PollingClient{bot: bot}
}

// Start запускает polling обновлений
func (pc *PollingClient) Start(ctx context.Context) error {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if pc.running {
		return fmt.Errorf("polling already running")
	}

	ctx, pc.cancel = context.WithCancel(ctx)
	pc.done = make(chan struct{})
	pc.running = true
	logger.Info("🔄 Starting Telegram bot polling...")

	go pc.pollLoop(ctx)
	return nil
}

// Stop останавливает polling и ждет выхода из цикла
func (pc *PollingClient) Stop() error {
	pc.mu.Lock()
	if !pc.running {
		pc.mu.Unlock()
		return nil
	}
	pc.running = false
	cancel, done := pc.cancel, pc.done
	pc.mu.Unlock()

	cancel()
	<-done
	logger.Info("🛑 Telegram bot polling stopped")
	return nil
}

// pollLoop основной цикл polling
func (pc *PollingClient) pollLoop(ctx context.Context) {
	defer close(pc.done)

	for {
		if ctx.Err() != nil {
			return
		}

		if err := pc.fetchUpdates(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn("❌ Error fetching updates: %v", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(pollErrorBackoff):
			}
		}
	}
}

// fetchUpdates получает обновления и продвигает offset
func (pc *PollingClient) fetchUpdates(ctx context.Context) error {
	updates, err := pc.bot.GetPollingClient().GetUpdates(ctx, pc.offset)
	if err != nil {
		return err
	}

	for _, update := range updates {
		pc.bot.HandleUpdate(ctx, update)
		pc.offset = update.UpdateID + 1
	}
	return nil
}
