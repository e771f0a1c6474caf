// pkg/utils/utils.go
package utils

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// FormatDuration форматирует продолжительность в читаемый вид
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}

// FormatShare форматирует долю покупателей с двумя знаками
func FormatShare(value decimal.Decimal) string {
	return value.StringFixed(2)
}

// FormatSignalTime форматирует время для вывода в сигналах
func FormatSignalTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05 UTC")
}

// FormatServerTime приводит время сервера фида к читаемому виду.
// Unix-секунды форматируются, остальное возвращается как есть.
func FormatServerTime(raw string) string {
	if raw == "" {
		return ""
	}
	if sec, err := strconv.ParseInt(raw, 10, 64); err == nil && sec > 0 {
		return FormatSignalTime(time.Unix(sec, 0))
	}
	return raw
}

// FormatRelativeTime форматирует время относительно now
func FormatRelativeTime(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	diff := now.Sub(t)

	switch {
	case diff < time.Minute:
		return fmt.Sprintf("%ds ago", int(diff.Seconds()))
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	}
	return FormatSignalTime(t)
}
