package sentiment

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

func TestClassifyBands(t *testing.T) {
	cases := []struct {
		share float64
		want  Signal
	}{
		{0, SignalBuy},
		{44.99, SignalBuy},
		{45, SignalHold},
		{50, SignalHold},
		{55, SignalHold},
		{55.01, SignalSell},
		{100, SignalSell},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(d(tc.share)), "share=%v", tc.share)
	}
}

func TestParseDirection(t *testing.T) {
	assert.Equal(t, DirectionBuy, ParseDirection("BUY_RETEST"))
	assert.Equal(t, DirectionBuy, ParseDirection("buy"))
	assert.Equal(t, DirectionSell, ParseDirection(" Sell strong"))
	assert.Equal(t, DirectionNone, ParseDirection("HOLD"))
	assert.Equal(t, DirectionNone, ParseDirection(""))
}

func TestNormalizeSymbol(t *testing.T) {
	assert.Equal(t, "EURUSD", NormalizeSymbol("OANDA:EURUSD"))
	assert.Equal(t, "GBPUSD", NormalizeSymbol(" gbpusd "))
	assert.Equal(t, "", NormalizeSymbol("FX:"))
}

func TestSignalDirection(t *testing.T) {
	assert.Equal(t, DirectionBuy, SignalBuy.Direction())
	assert.Equal(t, DirectionSell, SignalSell.Direction())
	assert.Equal(t, DirectionNone, SignalHold.Direction())
}
