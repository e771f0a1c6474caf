// application/services/monitor/service.go
package monitor

import (
	"context"
	"fmt"
	"time"

	"fx-sentiment-bot/internal/core/domain/sentiment"
	"fx-sentiment-bot/internal/delivery/telegram/app/bot/formatters"
	"fx-sentiment-bot/internal/delivery/telegram/queue"
	"fx-sentiment-bot/internal/fetcher"
	"fx-sentiment-bot/internal/infrastructure/metrics"
	"fx-sentiment-bot/pkg/logger"
	"fx-sentiment-bot/pkg/utils"
)

// Виды уведомлений
const (
	KindSummary    = "summary"
	KindDigest     = "digest"
	KindTransition = "transition"
	KindComposite  = "composite"
	KindMatch      = "match"
)

// Notifier очередь исходящих уведомлений
type Notifier interface {
	Notify(kind string, priority queue.Priority, text string) bool
}

// Service выполняет цикл опроса: загрузка, сверка, уведомления
type Service struct {
	fetcher   fetcher.SentimentFetcher
	engine    *sentiment.Engine
	notifier  Notifier
	formatter *formatters.SentimentFormatter
}

// NewService создает сервис мониторинга
func NewService(f fetcher.SentimentFetcher, engine *sentiment.Engine, notifier Notifier, formatter *formatters.SentimentFormatter) *Service {
	if formatter == nil {
		formatter = formatters.NewSentimentFormatter()
	}
	return &Service{
		fetcher:   f,
		engine:    engine,
		notifier:  notifier,
		formatter: formatter,
	}
}

// RunCycle один цикл опроса. Ошибка загрузки не меняет состояние движка.
func (s *Service) RunCycle(ctx context.Context) error {
	start := time.Now()
	defer func() {
		metrics.CycleDuration.Observe(time.Since(start).Seconds())
	}()

	res, err := s.fetcher.Fetch(ctx)
	if err != nil {
		metrics.CyclesTotal.WithLabelValues(metrics.ResultFailed).Inc()
		s.reportExpired(s.engine.ExpirePending())
		metrics.PendingAlerts.Set(float64(len(s.engine.Pending())))
		return fmt.Errorf("fetch sentiment: %w", err)
	}

	cycle := s.engine.ProcessBatch(res.Batch)
	metrics.CyclesTotal.WithLabelValues(metrics.ResultOK).Inc()
	metrics.TrackedSymbols.Set(float64(cycle.Snapshot.Len()))

	s.dispatch(cycle)

	metrics.PendingAlerts.Set(float64(len(s.engine.Pending())))
	logger.Debug("🔁 Цикл завершен: %d символов, %d переходов, %d совпадений, %d просрочено (%v)",
		cycle.Snapshot.Len(), len(cycle.Transitions), len(cycle.Matches), len(cycle.Expired), time.Since(start))
	return nil
}

// dispatch уведомления в порядке: совпадения, сводка или переходы, композит
func (s *Service) dispatch(cycle sentiment.CycleResult) {
	for _, m := range cycle.Matches {
		share := utils.FormatShare(m.BuyShare)
		logger.Match(m.Assertion.Symbol, m.Assertion.Label, string(m.Signal), share)
		metrics.MatchesTotal.WithLabelValues(m.Assertion.Symbol).Inc()
		s.notifier.Notify(KindMatch, queue.PriorityHigh, s.formatter.FormatMatch(m))
	}

	s.reportExpired(cycle.Expired)

	if cycle.Primed {
		logger.Info("📊 Первый снапшот: %d символов", cycle.Snapshot.Len())
		s.notifier.Notify(KindSummary, queue.PriorityNormal,
			s.formatter.FormatInitialSummary(cycle.Snapshot, cycle.ServerTime))
	}

	for _, t := range cycle.Transitions {
		logger.Transition(t.Symbol, string(t.From), string(t.To), utils.FormatShare(t.BuyShare))
		metrics.TransitionsTotal.WithLabelValues(t.Symbol, string(t.To)).Inc()
		s.notifier.Notify(KindTransition, queue.PriorityNormal, s.formatter.FormatTransition(t))
	}

	u := cycle.Composite
	switch {
	case !u.Computed:
	case u.Primed:
		logger.Info("🧭 Композит %s/%s: %s", u.Primary.Symbol, u.Secondary.Symbol, u.Value)
		s.notifier.Notify(KindComposite, queue.PriorityNormal, s.formatter.FormatCompositeInitial(u))
	case u.Changed:
		logger.Info("🧭 Композит %s/%s: %s -> %s", u.Primary.Symbol, u.Secondary.Symbol, u.Previous, u.Value)
		metrics.CompositeChangesTotal.Inc()
		s.notifier.Notify(KindComposite, queue.PriorityNormal, s.formatter.FormatCompositeChange(u))
	}
}

// reportExpired просроченные алерты только логируются и считаются
func (s *Service) reportExpired(expired []sentiment.Assertion) {
	for _, a := range expired {
		metrics.ExpiredTotal.Inc()
		logger.Info("⌛ Алерт просрочен: %s %s (id=%s, получен %s)",
			a.Symbol, a.Label, a.ID, utils.FormatSignalTime(a.ReceivedAt))
	}
}

// RunDigest отправляет ежедневную сводку по последнему снапшоту
func (s *Service) RunDigest(ctx context.Context) error {
	status := s.engine.Status()
	if !status.HasSnapshot {
		logger.Info("🗓 Сводка пропущена: снапшота еще нет")
		return nil
	}
	if !s.notifier.Notify(KindDigest, queue.PriorityNormal, s.formatter.FormatDigest(status.Snapshot, status.ServerTime)) {
		return fmt.Errorf("digest dropped: queue full")
	}
	return nil
}
