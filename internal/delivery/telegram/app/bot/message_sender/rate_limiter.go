// internal/delivery/telegram/app/bot/message_sender/rate_limiter.go
package message_sender

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimiter ограничитель частоты отправки
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter создает ограничитель на perSecond сообщений в секунду.
// perSecond <= 0 снимает ограничение.
func NewRateLimiter(perSecond float64) *RateLimiter {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	return &RateLimiter{limiter: rate.NewLimiter(limit, 1)}
}

// Wait блокирует до освобождения слота или отмены ctx
func (rl *RateLimiter) Wait(ctx context.Context) error {
	return rl.limiter.Wait(ctx)
}

// CanSend проверяет, можно ли отправить сообщение прямо сейчас
func (rl *RateLimiter) CanSend() bool {
	return rl.limiter.Allow()
}
