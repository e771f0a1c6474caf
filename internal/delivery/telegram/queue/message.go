// internal/delivery/telegram/queue/message.go
package queue

import "time"

// Priority очередь уведомления
type Priority string

const (
	PriorityHigh   Priority = "high"   // подтвержденные алерты
	PriorityNormal Priority = "normal" // переходы, сводки
)

// MessageTTL уведомление старше этого времени не имеет смысла отправлять
const MessageTTL = 5 * time.Minute

// Notification уведомление в очереди
type Notification struct {
	Kind      string
	Text      string
	Priority  Priority
	CreatedAt time.Time
}
