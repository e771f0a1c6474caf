package sentiment

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(clock *fakeClock) *Engine {
	return NewEngine(EngineConfig{
		PendingTimeout:     10 * time.Minute,
		CompositePrimary:   "XAUUSD",
		CompositeSecondary: "XAGUSD",
	}, WithClock(clock.Now))
}

func TestEngineTransitionScenario(t *testing.T) {
	e := newTestEngine(newClock())

	first := e.ProcessBatch(batchOf("EURUSD", 60.0, "GBPUSD", 40.0))
	assert.True(t, first.Primed)
	assert.Empty(t, first.Transitions)

	snap, ok := e.LastSnapshot()
	require.True(t, ok)
	eur, _ := snap.Get("EURUSD")
	assert.Equal(t, SignalSell, eur.Signal)

	second := e.ProcessBatch(batchOf("EURUSD", 40.0, "GBPUSD", 40.0))
	assert.False(t, second.Primed)
	require.Len(t, second.Transitions, 1)
	assert.Equal(t, "EURUSD", second.Transitions[0].Symbol)
	assert.Equal(t, SignalSell, second.Transitions[0].From)
	assert.Equal(t, SignalBuy, second.Transitions[0].To)
}

func TestEngineEmptyBatchKeepsState(t *testing.T) {
	e := newTestEngine(newClock())

	res := e.ProcessBatch(Batch{})
	assert.False(t, res.Primed)
	_, ok := e.LastSnapshot()
	assert.False(t, ok)

	res = e.ProcessBatch(batchOf("EURUSD", 60.0))
	assert.True(t, res.Primed)

	res = e.ProcessBatch(Batch{})
	assert.False(t, res.Primed)
	assert.Empty(t, res.Transitions)

	res = e.ProcessBatch(batchOf("EURUSD", 40.0))
	require.Len(t, res.Transitions, 1)
	assert.Equal(t, SignalSell, res.Transitions[0].From)
	assert.Equal(t, SignalBuy, res.Transitions[0].To)
}

func TestEngineAlertScenario(t *testing.T) {
	clock := newClock()
	e := newTestEngine(clock)
	e.ProcessBatch(batchOf("EURUSD", 50.0))

	a, err := e.Ingest("OANDA:EURUSD", "BUY_RETEST", map[string]interface{}{"tf": "15"})
	require.NoError(t, err)
	assert.Equal(t, "EURUSD", a.Symbol)
	assert.Equal(t, DirectionBuy, a.Direction)

	clock.Advance(time.Minute)
	res := e.ProcessBatch(batchOf("EURUSD", 40.0))
	require.Len(t, res.Matches, 1)
	assert.Equal(t, a.ID, res.Matches[0].Assertion.ID)
	assert.Zero(t, e.Status().Pending)

	res = e.ProcessBatch(batchOf("EURUSD", 40.0))
	assert.Empty(t, res.Matches)
}

func TestEngineIngestRejectsUnknownSignal(t *testing.T) {
	e := newTestEngine(newClock())

	_, err := e.Ingest("EURUSD", "HOLD", nil)
	assert.True(t, errors.Is(err, ErrUnknownDirection))

	_, err = e.Ingest("OANDA:", "BUY", nil)
	assert.True(t, errors.Is(err, ErrEmptySymbol))

	assert.Empty(t, e.Pending())
}

func TestEngineCompositeLifecycle(t *testing.T) {
	e := newTestEngine(newClock())

	res := e.ProcessBatch(batchOf("XAUUSD", 60.0, "XAGUSD", 40.0))
	assert.True(t, res.Composite.Primed)
	assert.Equal(t, CompositeSell, res.Composite.Value)

	res = e.ProcessBatch(batchOf("XAUUSD", 60.0))
	assert.False(t, res.Composite.Computed)
	last, ok := e.LastComposite()
	require.True(t, ok)
	assert.Equal(t, CompositeSell, last)

	res = e.ProcessBatch(batchOf("XAUUSD", 50.0, "XAGUSD", 50.0))
	assert.True(t, res.Composite.Changed)
	assert.Equal(t, CompositeHold, res.Composite.Value)
}

func TestEngineStatus(t *testing.T) {
	clock := newClock()
	e := newTestEngine(clock)

	st := e.Status()
	assert.False(t, st.HasSnapshot)
	assert.Zero(t, st.Cycles)

	b := batchOf("EURUSD", 60.0)
	b.ServerTime = "1700000000"
	e.ProcessBatch(b)
	_, _ = e.Ingest("EURUSD", "BUY", nil)

	st = e.Status()
	assert.True(t, st.HasSnapshot)
	assert.Equal(t, 1, st.Cycles)
	assert.Equal(t, 1, st.Pending)
	assert.Equal(t, "1700000000", st.ServerTime)
	assert.Equal(t, clock.Now(), st.LastCycleAt)
}
