// internal/core/domain/sentiment/signal.go
package sentiment

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Signal - классифицированный сигнал по инструменту
type Signal string

const (
	SignalBuy  Signal = "BUY"
	SignalSell Signal = "SELL"
	SignalHold Signal = "HOLD"
)

// Пороги классификации (контрарная логика: толпа в лонгах -> SELL)
var (
	SellAbove = decimal.NewFromInt(55)
	BuyBelow  = decimal.NewFromInt(45)
)

// Classify переводит долю покупателей (0..100) в сигнал.
// Границы 45 и 55 включительно дают HOLD.
func Classify(buyShare decimal.Decimal) Signal {
	switch {
	case buyShare.GreaterThan(SellAbove):
		return SignalSell
	case buyShare.LessThan(BuyBelow):
		return SignalBuy
	default:
		return SignalHold
	}
}

// Direction - семейство направления (BUY / SELL)
type Direction string

const (
	DirectionBuy  Direction = "BUY"
	DirectionSell Direction = "SELL"
	DirectionNone Direction = ""
)

// Direction возвращает семейство сигнала; HOLD не имеет направления
func (s Signal) Direction() Direction {
	switch s {
	case SignalBuy:
		return DirectionBuy
	case SignalSell:
		return DirectionSell
	default:
		return DirectionNone
	}
}

// Emoji для сообщений
func (s Signal) Emoji() string {
	switch s {
	case SignalBuy:
		return "🟢"
	case SignalSell:
		return "🔴"
	default:
		return "⚪"
	}
}

// ParseDirection определяет семейство по префиксу строки сигнала
// ("buy", "BUY_RETEST", "Sell strong"). Пустой результат - строка не распознана.
func ParseDirection(raw string) Direction {
	upper := strings.ToUpper(strings.TrimSpace(raw))
	switch {
	case strings.HasPrefix(upper, string(DirectionBuy)):
		return DirectionBuy
	case strings.HasPrefix(upper, string(DirectionSell)):
		return DirectionSell
	default:
		return DirectionNone
	}
}

// NormalizeSymbol приводит тикер к базовому виду: "OANDA:eurusd" -> "EURUSD"
func NormalizeSymbol(raw string) string {
	symbol := strings.TrimSpace(raw)
	if idx := strings.LastIndex(symbol, ":"); idx >= 0 {
		symbol = symbol[idx+1:]
	}
	return strings.ToUpper(strings.TrimSpace(symbol))
}
