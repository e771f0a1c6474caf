// internal/core/domain/sentiment/pending.go
package sentiment

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Assertion - внешнее утверждение о направлении, ожидающее подтверждения
type Assertion struct {
	ID         string
	Symbol     string
	Direction  Direction
	Label      string                 // исходная строка сигнала, например BUY_RETEST
	Payload    map[string]interface{} // непрозрачные поля алерта для уведомления
	ReceivedAt time.Time
}

// Match - подтвержденное утверждение
type Match struct {
	Assertion Assertion
	Signal    Signal
	BuyShare  decimal.Decimal
}

// PendingSet - ограниченное по времени множество утверждений
type PendingSet struct {
	mu      sync.Mutex
	items   []Assertion
	timeout time.Duration
	now     func() time.Time
}

// NewPendingSet создает множество с таймаутом жизни утверждения
func NewPendingSet(timeout time.Duration, now func() time.Time) *PendingSet {
	if now == nil {
		now = time.Now
	}
	return &PendingSet{
		timeout: timeout,
		now:     now,
	}
}

// Ingest добавляет утверждение. Дубликаты не проверяются.
func (p *PendingSet) Ingest(symbol string, direction Direction, label string, payload map[string]interface{}) Assertion {
	a := Assertion{
		ID:         uuid.NewString(),
		Symbol:     NormalizeSymbol(symbol),
		Direction:  direction,
		Label:      label,
		Payload:    payload,
		ReceivedAt: p.now(),
	}

	p.mu.Lock()
	p.items = append(p.items, a)
	p.mu.Unlock()

	return a
}

// Reconcile сначала удаляет просроченные утверждения, затем сверяет
// оставшиеся со снапшотом. Каждое совпавшее удаляется и возвращается один раз.
func (p *PendingSet) Reconcile(snap Snapshot) (matches []Match, expired []Assertion) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	kept := p.items[:0]
	for _, a := range p.items {
		if !now.Before(a.ReceivedAt.Add(p.timeout)) {
			expired = append(expired, a)
			continue
		}

		c, ok := snap.Get(a.Symbol)
		if ok && c.Signal.Direction() == a.Direction {
			matches = append(matches, Match{Assertion: a, Signal: c.Signal, BuyShare: c.BuyShare})
			continue
		}

		kept = append(kept, a)
	}

	// обнуляем хвост, чтобы не держать ссылки на payload
	for i := len(kept); i < len(p.items); i++ {
		p.items[i] = Assertion{}
	}
	p.items = kept

	return matches, expired
}

// Expire удаляет просроченные утверждения без сверки (цикл без данных)
func (p *PendingSet) Expire() []Assertion {
	_, expired := p.Reconcile(Snapshot{})
	return expired
}

// Len количество ожидающих утверждений
func (p *PendingSet) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.items)
}

// List копия ожидающих утверждений
func (p *PendingSet) List() []Assertion {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Assertion, len(p.items))
	copy(out, p.items)
	return out
}
