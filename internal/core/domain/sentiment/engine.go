// internal/core/domain/sentiment/engine.go
package sentiment

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrUnknownDirection сигнал алерта не начинается с BUY или SELL
var ErrUnknownDirection = errors.New("signal must start with BUY or SELL")

// ErrEmptySymbol символ алерта пуст после нормализации
var ErrEmptySymbol = errors.New("symbol is empty")

// EngineConfig - настройки движка сверки
type EngineConfig struct {
	PendingTimeout     time.Duration
	CompositePrimary   string
	CompositeSecondary string
}

// Option - функциональная опция движка
type Option func(*Engine)

// WithClock подменяет источник времени (для тестов)
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// CycleResult - все события одного успешного цикла
type CycleResult struct {
	Snapshot    Snapshot
	ServerTime  string
	Primed      bool // первый успешный цикл: нужна полная сводка
	Transitions []Transition
	Composite   CompositeUpdate
	Matches     []Match
	Expired     []Assertion
}

// Status - состояние движка для сводок и /status
type Status struct {
	Snapshot     Snapshot
	HasSnapshot  bool
	Composite    CompositeSignal
	HasComposite bool
	Pending      int
	LastCycleAt  time.Time
	ServerTime   string
	Cycles       int
}

// Engine - движок сверки сигналов. Один экземпляр на процесс.
type Engine struct {
	mu         sync.Mutex
	store      *SnapshotStore
	composite  *CompositeEvaluator
	pending    *PendingSet
	now        func() time.Time
	lastCycle  time.Time
	serverTime string
	cycles     int
}

// NewEngine создает движок
func NewEngine(cfg EngineConfig, opts ...Option) *Engine {
	e := &Engine{
		store:     NewSnapshotStore(),
		composite: NewCompositeEvaluator(cfg.CompositePrimary, cfg.CompositeSecondary),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.pending = NewPendingSet(cfg.PendingTimeout, e.now)
	return e
}

// ProcessBatch прогоняет успешный батч через весь конвейер:
// классификация -> сверка ожидающих -> переходы -> композит.
func (e *Engine) ProcessBatch(batch Batch) CycleResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := ClassifyBatch(batch)
	matches, expired := e.pending.Reconcile(snap)
	transitions, primed := e.store.RecordCycle(snap)
	composite := e.composite.Update(snap)

	e.lastCycle = e.now()
	e.serverTime = batch.ServerTime
	e.cycles++

	return CycleResult{
		Snapshot:    snap,
		ServerTime:  batch.ServerTime,
		Primed:      primed,
		Transitions: transitions,
		Composite:   composite,
		Matches:     matches,
		Expired:     expired,
	}
}

// Ingest принимает внешний алерт в множество ожидания
func (e *Engine) Ingest(symbol, signal string, payload map[string]interface{}) (Assertion, error) {
	norm := NormalizeSymbol(symbol)
	if norm == "" {
		return Assertion{}, ErrEmptySymbol
	}
	dir := ParseDirection(signal)
	if dir == DirectionNone {
		return Assertion{}, fmt.Errorf("%w: %q", ErrUnknownDirection, signal)
	}
	return e.pending.Ingest(norm, dir, signal, payload), nil
}

// LastSnapshot последний успешный снапшот
func (e *Engine) LastSnapshot() (Snapshot, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Previous()
}

// LastComposite последнее значение композитного сигнала
func (e *Engine) LastComposite() (CompositeSignal, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.composite.Last()
}

// CompositeSymbols пара символов композитного сигнала
func (e *Engine) CompositeSymbols() (string, string) {
	return e.composite.Symbols()
}

// ExpirePending удаляет просроченные утверждения, когда данных для сверки нет
func (e *Engine) ExpirePending() []Assertion {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pending.Expire()
}

// Pending копия ожидающих утверждений
func (e *Engine) Pending() []Assertion {
	return e.pending.List()
}

// Status снимок состояния
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap, hasSnap := e.store.Previous()
	comp, hasComp := e.composite.Last()
	return Status{
		Snapshot:     snap,
		HasSnapshot:  hasSnap,
		Composite:    comp,
		HasComposite: hasComp,
		Pending:      e.pending.Len(),
		LastCycleAt:  e.lastCycle,
		ServerTime:   e.serverTime,
		Cycles:       e.cycles,
	}
}
