// internal/core/domain/sentiment/snapshot.go
package sentiment

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Ratio - доля покупателей по инструменту за один цикл опроса
type Ratio struct {
	Symbol   string
	BuyShare decimal.Decimal
}

// Batch - результат одного успешного запроса к фиду (порядок как в ответе)
type Batch struct {
	Ratios     []Ratio
	ServerTime string
}

// Lookup ищет инструмент в батче
func (b Batch) Lookup(symbol string) (Ratio, bool) {
	for _, r := range b.Ratios {
		if r.Symbol == symbol {
			return r, true
		}
	}
	return Ratio{}, false
}

// Classified - сигнал инструмента вместе с исходной долей
type Classified struct {
	Symbol   string
	BuyShare decimal.Decimal
	Signal   Signal
}

// Snapshot - состояние всех инструментов на конец цикла.
// Нулевое значение - пустой снапшот.
type Snapshot struct {
	items []Classified
	index map[string]int
}

// ClassifyBatch классифицирует батч, сохраняя порядок инструментов.
// Повторный символ перезаписывает значение на прежней позиции.
func ClassifyBatch(batch Batch) Snapshot {
	snap := Snapshot{
		items: make([]Classified, 0, len(batch.Ratios)),
		index: make(map[string]int, len(batch.Ratios)),
	}
	for _, r := range batch.Ratios {
		if r.Symbol == "" {
			continue
		}
		c := Classified{Symbol: r.Symbol, BuyShare: r.BuyShare, Signal: Classify(r.BuyShare)}
		if i, ok := snap.index[r.Symbol]; ok {
			snap.items[i] = c
			continue
		}
		snap.index[r.Symbol] = len(snap.items)
		snap.items = append(snap.items, c)
	}
	return snap
}

// Get возвращает сигнал инструмента
func (s Snapshot) Get(symbol string) (Classified, bool) {
	i, ok := s.index[symbol]
	if !ok {
		return Classified{}, false
	}
	return s.items[i], true
}

// Len количество инструментов
func (s Snapshot) Len() int {
	return len(s.items)
}

// IsEmpty true для снапшота без инструментов
func (s Snapshot) IsEmpty() bool {
	return len(s.items) == 0
}

// Items копия элементов в исходном порядке
func (s Snapshot) Items() []Classified {
	out := make([]Classified, len(s.items))
	copy(out, s.items)
	return out
}

// SortedByBuyShare копия, отсортированная по доле покупателей (от большей к меньшей)
func (s Snapshot) SortedByBuyShare() []Classified {
	out := s.Items()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].BuyShare.GreaterThan(out[j].BuyShare)
	})
	return out
}

// Transition - смена сигнала между двумя соседними циклами
type Transition struct {
	Symbol   string
	From     Signal
	To       Signal
	BuyShare decimal.Decimal
}

// SnapshotStore хранит предыдущий снапшот для поиска переходов
type SnapshotStore struct {
	previous Snapshot
	primed   bool
}

// NewSnapshotStore создает пустое хранилище
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{}
}

// RecordCycle сравнивает новый снапшот с предыдущим и запоминает его.
// Первый непустой снапшот - прайминг: переходов нет, primed=true.
// Пустой снапшот состояние не меняет.
func (st *SnapshotStore) RecordCycle(current Snapshot) (transitions []Transition, primed bool) {
	if current.IsEmpty() {
		return nil, false
	}
	if !st.primed {
		st.previous = current
		st.primed = true
		return nil, true
	}

	for _, c := range current.items {
		prev, ok := st.previous.Get(c.Symbol)
		if !ok || prev.Signal == c.Signal {
			continue
		}
		transitions = append(transitions, Transition{
			Symbol:   c.Symbol,
			From:     prev.Signal,
			To:       c.Signal,
			BuyShare: c.BuyShare,
		})
	}

	st.previous = current
	return transitions, false
}

// Previous последний записанный снапшот
func (st *SnapshotStore) Previous() (Snapshot, bool) {
	return st.previous, st.primed
}
