// internal/core/domain/sentiment/composite.go
package sentiment

import (
	"github.com/shopspring/decimal"
)

// CompositeSignal - производный сигнал по паре инструментов
type CompositeSignal string

const (
	CompositeSell CompositeSignal = "SELL_COMPOSITE"
	CompositeBuy  CompositeSignal = "BUY_COMPOSITE"
	CompositeHold CompositeSignal = "HOLD_COMPOSITE"
)

// Порог вторичного инструмента в композитном правиле
var compositeSecondaryPivot = decimal.NewFromInt(50)

// EvaluateComposite применяет таблицу правил, первое совпадение выигрывает:
//  1. a > 55 и b < 50 -> SELL_COMPOSITE (основной перекуплен, вторичный слаб)
//  2. a < 45 и b > 50 -> BUY_COMPOSITE  (основной перепродан, вторичный силен)
//  3. иначе HOLD_COMPOSITE
func EvaluateComposite(a, b decimal.Decimal) CompositeSignal {
	switch {
	case a.GreaterThan(SellAbove) && b.LessThan(compositeSecondaryPivot):
		return CompositeSell
	case a.LessThan(BuyBelow) && b.GreaterThan(compositeSecondaryPivot):
		return CompositeBuy
	default:
		return CompositeHold
	}
}

// Description человекочитаемое пояснение сигнала
func (c CompositeSignal) Description() string {
	switch c {
	case CompositeSell:
		return "primary overbought while secondary weak"
	case CompositeBuy:
		return "primary oversold while secondary strong"
	default:
		return "no divergence"
	}
}

// CompositeUpdate результат оценки за цикл
type CompositeUpdate struct {
	Computed  bool // оба инструмента присутствовали
	Primed    bool // первое вычисленное значение
	Changed   bool // значение отличается от предыдущего
	Previous  CompositeSignal
	Value     CompositeSignal
	Primary   Ratio
	Secondary Ratio
}

// CompositeEvaluator отслеживает композитный сигнал и его смену
type CompositeEvaluator struct {
	primary   string
	secondary string
	last      CompositeSignal
	has       bool
}

// NewCompositeEvaluator создает оценщик для пары символов
func NewCompositeEvaluator(primary, secondary string) *CompositeEvaluator {
	return &CompositeEvaluator{
		primary:   NormalizeSymbol(primary),
		secondary: NormalizeSymbol(secondary),
	}
}

// Symbols возвращает пару отслеживаемых символов
func (e *CompositeEvaluator) Symbols() (primary, secondary string) {
	return e.primary, e.secondary
}

// Update вычисляет сигнал по снапшоту цикла.
// Если любого из символов нет - ничего не меняется.
func (e *CompositeEvaluator) Update(snap Snapshot) CompositeUpdate {
	a, okA := snap.Get(e.primary)
	b, okB := snap.Get(e.secondary)
	if !okA || !okB {
		return CompositeUpdate{Previous: e.last, Value: e.last}
	}

	value := EvaluateComposite(a.BuyShare, b.BuyShare)
	update := CompositeUpdate{
		Computed:  true,
		Previous:  e.last,
		Value:     value,
		Primary:   Ratio{Symbol: a.Symbol, BuyShare: a.BuyShare},
		Secondary: Ratio{Symbol: b.Symbol, BuyShare: b.BuyShare},
	}

	if !e.has {
		update.Primed = true
	} else if value != e.last {
		update.Changed = true
	}

	e.last = value
	e.has = true
	return update
}

// Last последнее вычисленное значение
func (e *CompositeEvaluator) Last() (CompositeSignal, bool) {
	return e.last, e.has
}
