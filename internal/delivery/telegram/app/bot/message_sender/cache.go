package message_sender

import (
	"sync"
	"time"
)

// MessageCache кэш сообщений для предотвращения дубликатов
type MessageCache struct {
	cache    map[string]time.Time
	mu       sync.Mutex
	cacheTTL time.Duration
	now      func() time.Time
}

// NewMessageCache создает новый кэш сообщений.
// ttl <= 0 отключает проверку дубликатов.
func NewMessageCache(ttl time.Duration) *MessageCache {
	return &MessageCache{
		cache:    make(map[string]time.Time),
		cacheTTL: ttl,
		now:      time.Now,
	}
}

// IsDuplicate проверяет, отправлялось ли такое сообщение в пределах TTL
func (mc *MessageCache) IsDuplicate(hash string) bool {
	if mc.cacheTTL <= 0 {
		return false
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()

	lastSent, exists := mc.cache[hash]
	if !exists {
		return false
	}
	return mc.now().Sub(lastSent) < mc.cacheTTL
}

// Add добавляет сообщение в кэш
func (mc *MessageCache) Add(hash string) {
	if mc.cacheTTL <= 0 {
		return
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()

	// Очищаем старые записи
	now := mc.now()
	for key, timestamp := range mc.cache {
		if now.Sub(timestamp) >= mc.cacheTTL {
			delete(mc.cache, key)
		}
	}

	mc.cache[hash] = now
}

// Len количество записей
func (mc *MessageCache) Len() int {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return len(mc.cache)
}

// Clear очищает кэш
func (mc *MessageCache) Clear() {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.cache = make(map[string]time.Time)
}
