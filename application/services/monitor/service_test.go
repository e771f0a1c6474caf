package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"fx-sentiment-bot/internal/core/domain/sentiment"
	"fx-sentiment-bot/internal/delivery/telegram/queue"
	"fx-sentiment-bot/internal/fetcher"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedFetcher struct {
	results []*fetcher.FetchResult
	errs    []error
	calls   int
}

func (f *scriptedFetcher) Fetch(ctx context.Context) (*fetcher.FetchResult, error) {
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	return f.results[i], nil
}

type sent struct {
	kind     string
	priority queue.Priority
	text     string
}

type recordingNotifier struct {
	sent []sent
	full bool
}

func (n *recordingNotifier) Notify(kind string, priority queue.Priority, text string) bool {
	if n.full {
		return false
	}
	n.sent = append(n.sent, sent{kind: kind, priority: priority, text: text})
	return true
}

func (n *recordingNotifier) kinds() []string {
	out := make([]string, 0, len(n.sent))
	for _, s := range n.sent {
		out = append(out, s.kind)
	}
	return out
}

func batch(pairs ...interface{}) *fetcher.FetchResult {
	var b sentiment.Batch
	for i := 0; i+1 < len(pairs); i += 2 {
		b.Ratios = append(b.Ratios, sentiment.Ratio{
			Symbol:   pairs[i].(string),
			BuyShare: decimal.NewFromInt(int64(pairs[i+1].(int))),
		})
	}
	b.ServerTime = "1700000000"
	return &fetcher.FetchResult{Batch: b}
}

type fixture struct {
	now      time.Time
	engine   *sentiment.Engine
	fetcher  *scriptedFetcher
	notifier *recordingNotifier
	service  *Service
}

func newFixture(results ...*fetcher.FetchResult) *fixture {
	fx := &fixture{
		now:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		fetcher:  &scriptedFetcher{results: results},
		notifier: &recordingNotifier{},
	}
	fx.engine = sentiment.NewEngine(sentiment.EngineConfig{
		PendingTimeout:     2 * time.Minute,
		CompositePrimary:   "XAUUSD",
		CompositeSecondary: "XAGUSD",
	}, sentiment.WithClock(func() time.Time { return fx.now }))
	fx.service = NewService(fx.fetcher, fx.engine, fx.notifier, nil)
	return fx
}

func TestPrimingCycleSendsSummaryOnly(t *testing.T) {
	fx := newFixture(batch("EURUSD", 60, "XAUUSD", 60, "XAGUSD", 40))

	require.NoError(t, fx.service.RunCycle(context.Background()))

	assert.Equal(t, []string{KindSummary, KindComposite}, fx.notifier.kinds())
	assert.Contains(t, fx.notifier.sent[0].text, "initial state")
	assert.Contains(t, fx.notifier.sent[1].text, "SELL_COMPOSITE")
}

func TestTransitionAfterPriming(t *testing.T) {
	fx := newFixture(
		batch("EURUSD", 60, "GBPUSD", 50),
		batch("EURUSD", 40, "GBPUSD", 52),
	)

	require.NoError(t, fx.service.RunCycle(context.Background()))
	require.NoError(t, fx.service.RunCycle(context.Background()))

	require.Equal(t, []string{KindSummary, KindTransition}, fx.notifier.kinds())
	assert.Equal(t, "🔄 EURUSD: 🔴 SELL → 🟢 BUY (Average: 40.00)", fx.notifier.sent[1].text)
	assert.Equal(t, queue.PriorityNormal, fx.notifier.sent[1].priority)
}

func TestFetchFailureLeavesStateUntouched(t *testing.T) {
	fx := newFixture(batch("EURUSD", 60), nil, batch("EURUSD", 60))
	fx.fetcher.errs = []error{nil, errors.New("timeout")}

	require.NoError(t, fx.service.RunCycle(context.Background()))
	_, err := fx.engine.Ingest("EURUSD", "BUY", nil)
	require.NoError(t, err)

	err = fx.service.RunCycle(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
	assert.Equal(t, 1, fx.engine.Status().Cycles)
	assert.Len(t, fx.engine.Pending(), 1)

	// следующий успешный цикл без изменений не дает событий
	require.NoError(t, fx.service.RunCycle(context.Background()))
	assert.Equal(t, []string{KindSummary}, fx.notifier.kinds())
}

func TestMatchedAlertNotifiedOnce(t *testing.T) {
	fx := newFixture(batch("EURUSD", 40), batch("EURUSD", 40))

	_, err := fx.engine.Ingest("OANDA:EURUSD", "BUY_RETEST", map[string]interface{}{"tf": "15"})
	require.NoError(t, err)

	require.NoError(t, fx.service.RunCycle(context.Background()))
	require.NoError(t, fx.service.RunCycle(context.Background()))

	require.Equal(t, []string{KindMatch, KindSummary}, fx.notifier.kinds())
	assert.Equal(t, queue.PriorityHigh, fx.notifier.sent[0].priority)
	assert.Contains(t, fx.notifier.sent[0].text, "EURUSD BUY_RETEST")
	assert.Contains(t, fx.notifier.sent[0].text, "tf: 15")
	assert.Empty(t, fx.engine.Pending())
}

func TestExpiredAlertIsDroppedSilently(t *testing.T) {
	fx := newFixture(batch("EURUSD", 60), batch("EURUSD", 40))

	require.NoError(t, fx.service.RunCycle(context.Background()))
	_, err := fx.engine.Ingest("EURUSD", "BUY", nil)
	require.NoError(t, err)

	fx.now = fx.now.Add(2 * time.Minute)
	require.NoError(t, fx.service.RunCycle(context.Background()))

	assert.Equal(t, []string{KindSummary, KindTransition}, fx.notifier.kinds())
	assert.Empty(t, fx.engine.Pending())
}

func TestFetchFailureStillExpiresAlerts(t *testing.T) {
	fx := newFixture(batch("EURUSD", 60))
	fx.fetcher.errs = []error{nil, fetcher.ErrNoRatios}

	require.NoError(t, fx.service.RunCycle(context.Background()))
	_, err := fx.engine.Ingest("EURUSD", "BUY", nil)
	require.NoError(t, err)

	fx.now = fx.now.Add(2 * time.Minute)
	require.ErrorIs(t, fx.service.RunCycle(context.Background()), fetcher.ErrNoRatios)

	assert.Empty(t, fx.engine.Pending())
	assert.Zero(t, fx.engine.Status().Pending)
	assert.Equal(t, 1, fx.engine.Status().Cycles)
	assert.Equal(t, []string{KindSummary}, fx.notifier.kinds())
}

func TestRunDigest(t *testing.T) {
	fx := newFixture(batch("EURUSD", 60))

	require.NoError(t, fx.service.RunDigest(context.Background()))
	assert.Empty(t, fx.notifier.sent)

	require.NoError(t, fx.service.RunCycle(context.Background()))
	require.NoError(t, fx.service.RunDigest(context.Background()))
	require.Len(t, fx.notifier.sent, 2)
	assert.Equal(t, KindDigest, fx.notifier.sent[1].kind)
	assert.Contains(t, fx.notifier.sent[1].text, "daily digest")

	fx.notifier.full = true
	assert.Error(t, fx.service.RunDigest(context.Background()))
}
