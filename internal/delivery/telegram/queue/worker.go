// internal/delivery/telegram/queue/worker.go
package queue

import (
	"context"
	"errors"
	"sync"
	"time"

	"fx-sentiment-bot/internal/delivery/telegram/app/bot/message_sender"
	"fx-sentiment-bot/internal/infrastructure/metrics"
	"fx-sentiment-bot/internal/infrastructure/persistence/recipient"
	"fx-sentiment-bot/pkg/logger"
)

const sendTimeout = 30 * time.Second

// Worker доставляет уведомления текущему получателю в фоне.
// Постановка в очередь никогда не блокирует цикл опроса.
type Worker struct {
	sender message_sender.MessageSender
	store  recipient.Store
	high   chan Notification
	normal chan Notification
	now    func() time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWorker создает Worker с очередями заданной емкости
func NewWorker(sender message_sender.MessageSender, store recipient.Store, queueSize int) *Worker {
	if queueSize <= 0 {
		queueSize = 100
	}
	return &Worker{
		sender: sender,
		store:  store,
		high:   make(chan Notification, queueSize),
		normal: make(chan Notification, queueSize),
		now:    time.Now,
	}
}

// Notify ставит текст в очередь; false если очередь переполнена
func (w *Worker) Notify(kind string, priority Priority, text string) bool {
	n := Notification{Kind: kind, Text: text, Priority: priority, CreatedAt: w.now()}

	ch := w.normal
	if priority == PriorityHigh {
		ch = w.high
	}

	select {
	case ch <- n:
		return true
	default:
		metrics.NotificationsTotal.WithLabelValues(metrics.ResultDropped).Inc()
		logger.Warn("⚠️ Очередь уведомлений переполнена, дроп %s", kind)
		return false
	}
}

// Start запускает воркер в фоновой горутине
func (w *Worker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.run(ctx)
	}()
	logger.Info("✅ Telegram queue worker запущен")
}

// Stop останавливает воркер и ждет текущую отправку
func (w *Worker) Stop() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	w.wg.Wait()
	logger.Info("🛑 Telegram queue worker остановлен")
}

// Pending количество уведомлений в очередях
func (w *Worker) Pending() int {
	return len(w.high) + len(w.normal)
}

func (w *Worker) run(ctx context.Context) {
	for {
		// high всегда раньше normal
		select {
		case n := <-w.high:
			w.deliver(ctx, n)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			return
		case n := <-w.high:
			w.deliver(ctx, n)
		case n := <-w.normal:
			w.deliver(ctx, n)
		}
	}
}

// deliver отправляет одно уведомление; ошибки только логируются,
// повторов нет: следующее событие попробует снова.
func (w *Worker) deliver(ctx context.Context, n Notification) {
	if age := w.now().Sub(n.CreatedAt); age > MessageTTL {
		metrics.NotificationsTotal.WithLabelValues(metrics.ResultSkipped).Inc()
		logger.Warn("⚠️ Уведомление %s устарело (возраст=%v), пропуск", n.Kind, age.Round(time.Second))
		return
	}

	chatID, ok, err := w.store.Get(ctx)
	if err != nil {
		metrics.NotificationsTotal.WithLabelValues(metrics.ResultFailed).Inc()
		logger.Error("❌ Не удалось прочитать получателя: %v", err)
		return
	}
	if !ok {
		metrics.NotificationsTotal.WithLabelValues(metrics.ResultSkipped).Inc()
		logger.Debug("📭 Получатель не зарегистрирован, %s не отправлено", n.Kind)
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	err = w.sender.SendText(sendCtx, chatID, n.Text)
	switch {
	case err == nil:
		metrics.NotificationsTotal.WithLabelValues(metrics.ResultOK).Inc()
		logger.Debug("📨 %s отправлено в %d", n.Kind, chatID)

	case errors.Is(err, message_sender.ErrUnauthorized):
		metrics.NotificationsTotal.WithLabelValues(metrics.ResultRevoked).Inc()
		logger.Warn("🚫 Получатель %d отозвал доступ: %v", chatID, err)
		cleared, clearErr := w.store.ClearIf(ctx, chatID)
		switch {
		case clearErr != nil:
			logger.Error("❌ Не удалось удалить получателя: %v", clearErr)
		case !cleared:
			logger.Info("ℹ️ Получатель уже сменился, %d не удален", chatID)
		}

	default:
		metrics.NotificationsTotal.WithLabelValues(metrics.ResultFailed).Inc()
		logger.Error("❌ Ошибка отправки %s (chatID=%d, transient=%v): %v",
			n.Kind, chatID, message_sender.IsTransient(err), err)
	}
}
