// internal/delivery/telegram/app/bot/formatters/sentiment.go
package formatters

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"fx-sentiment-bot/internal/core/domain/sentiment"
	"fx-sentiment-bot/pkg/utils"
)

// Ключи алерта, которые уже выведены в заголовке
var reservedPayloadKeys = map[string]bool{
	"symbol": true,
	"signal": true,
}

// SentimentFormatter собирает тексты уведомлений
type SentimentFormatter struct {
	now func() time.Time
}

// NewSentimentFormatter создает форматтер
func NewSentimentFormatter() *SentimentFormatter {
	return &SentimentFormatter{now: time.Now}
}

// FormatSummary полная сводка, отсортированная по доле покупателей по убыванию
func (f *SentimentFormatter) FormatSummary(title string, snap sentiment.Snapshot, serverTime string) string {
	var sb strings.Builder
	sb.WriteString(title)
	sb.WriteString("\n")
	if st := utils.FormatServerTime(serverTime); st != "" {
		sb.WriteString(fmt.Sprintf("Server time: %s\n", st))
	}
	sb.WriteString("\n")

	if snap.IsEmpty() {
		sb.WriteString("No instruments in the feed.")
		return sb.String()
	}

	for _, item := range snap.SortedByBuyShare() {
		sb.WriteString(f.formatLine(item))
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// FormatInitialSummary сводка первого успешного цикла
func (f *SentimentFormatter) FormatInitialSummary(snap sentiment.Snapshot, serverTime string) string {
	return f.FormatSummary("📊 FX sentiment: initial state", snap, serverTime)
}

// FormatDigest ежедневная сводка
func (f *SentimentFormatter) FormatDigest(snap sentiment.Snapshot, serverTime string) string {
	return f.FormatSummary("🗓 FX sentiment: daily digest", snap, serverTime)
}

// FormatTransition смена сигнала по одному символу
func (f *SentimentFormatter) FormatTransition(t sentiment.Transition) string {
	return fmt.Sprintf("🔄 %s: %s %s → %s %s (Average: %s)",
		t.Symbol,
		t.From.Emoji(), t.From,
		t.To.Emoji(), t.To,
		utils.FormatShare(t.BuyShare))
}

// FormatCompositeInitial первое вычисленное значение композитного сигнала
func (f *SentimentFormatter) FormatCompositeInitial(u sentiment.CompositeUpdate) string {
	return fmt.Sprintf("🧭 Composite %s/%s: %s\n%s\n%s",
		u.Primary.Symbol, u.Secondary.Symbol, u.Value,
		u.Value.Description(),
		f.compositeInputs(u))
}

// FormatCompositeChange смена композитного сигнала
func (f *SentimentFormatter) FormatCompositeChange(u sentiment.CompositeUpdate) string {
	return fmt.Sprintf("🧭 Composite %s/%s changed: %s → %s\n%s\n%s",
		u.Primary.Symbol, u.Secondary.Symbol, u.Previous, u.Value,
		u.Value.Description(),
		f.compositeInputs(u))
}

func (f *SentimentFormatter) compositeInputs(u sentiment.CompositeUpdate) string {
	return fmt.Sprintf("%s: %s | %s: %s",
		u.Primary.Symbol, utils.FormatShare(u.Primary.BuyShare),
		u.Secondary.Symbol, utils.FormatShare(u.Secondary.BuyShare))
}

// FormatMatch подтвержденный алерт
func (f *SentimentFormatter) FormatMatch(m sentiment.Match) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("✅ Alert confirmed: %s %s\n", m.Assertion.Symbol, m.Assertion.Label))
	sb.WriteString(fmt.Sprintf("Sentiment: %s %s (Average: %s)\n", m.Signal.Emoji(), m.Signal, utils.FormatShare(m.BuyShare)))
	sb.WriteString(fmt.Sprintf("Received: %s (%s)",
		utils.FormatSignalTime(m.Assertion.ReceivedAt),
		utils.FormatRelativeTime(m.Assertion.ReceivedAt, f.now())))

	if details := formatPayload(m.Assertion.Payload); details != "" {
		sb.WriteString("\n\n")
		sb.WriteString(details)
	}
	return sb.String()
}

// FormatCatchUp сообщение после регистрации получателя
func (f *SentimentFormatter) FormatCatchUp(status sentiment.Status) string {
	var sb strings.Builder
	sb.WriteString("👋 Subscribed to FX sentiment notifications.\n\n")

	if !status.HasSnapshot {
		sb.WriteString("No data yet: the first summary arrives after the next poll.")
		return sb.String()
	}

	sb.WriteString(f.FormatSummary("📊 Current state", status.Snapshot, status.ServerTime))
	if status.HasComposite {
		sb.WriteString(fmt.Sprintf("\n\n🧭 Composite: %s (%s)", status.Composite, status.Composite.Description()))
	}
	return sb.String()
}

// FormatStatus ответ на /status
func (f *SentimentFormatter) FormatStatus(status sentiment.Status, registered bool, nextPoll time.Time) string {
	now := f.now()

	var sb strings.Builder
	sb.WriteString("ℹ️ Status\n")
	sb.WriteString(fmt.Sprintf("Recipient registered: %s\n", yesNo(registered)))
	sb.WriteString(fmt.Sprintf("Cycles: %d\n", status.Cycles))
	sb.WriteString(fmt.Sprintf("Last cycle: %s\n", utils.FormatRelativeTime(status.LastCycleAt, now)))
	if !nextPoll.IsZero() && nextPoll.After(now) {
		sb.WriteString(fmt.Sprintf("Next poll: in %s\n", utils.FormatDuration(nextPoll.Sub(now))))
	}
	sb.WriteString(fmt.Sprintf("Tracked symbols: %d\n", status.Snapshot.Len()))
	sb.WriteString(fmt.Sprintf("Pending alerts: %d\n", status.Pending))
	if status.HasComposite {
		sb.WriteString(fmt.Sprintf("Composite: %s", status.Composite))
	} else {
		sb.WriteString("Composite: n/a")
	}
	return sb.String()
}

// FormatStopped ответ на /stop
func (f *SentimentFormatter) FormatStopped() string {
	return "🔕 Unsubscribed. Send /start to resume notifications."
}

func (f *SentimentFormatter) formatLine(item sentiment.Classified) string {
	return fmt.Sprintf("%s %s (Average: %s): %s",
		item.Signal.Emoji(), item.Symbol, utils.FormatShare(item.BuyShare), item.Signal)
}

// formatPayload выводит остальные поля алерта в порядке ключей
func formatPayload(payload map[string]interface{}) string {
	if len(payload) == 0 {
		return ""
	}

	keys := make([]string, 0, len(payload))
	for k := range payload {
		if reservedPayloadKeys[strings.ToLower(k)] {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s: %s", k, payloadValue(payload[k])))
	}
	return strings.Join(lines, "\n")
}

func payloadValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case map[string]interface{}, []interface{}:
		raw, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(raw)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
