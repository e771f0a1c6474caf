// internal/infrastructure/persistence/recipient/store.go
package recipient

import (
	"context"
)

// Store хранит единственного активного получателя уведомлений.
// Get возвращает ok=false, если получатель не зарегистрирован.
// ClearIf удаляет получателя атомарно и только если сохранен именно chatID;
// cleared=false, если получатель уже сменился или отсутствует.
type Store interface {
	Get(ctx context.Context) (chatID int64, ok bool, err error)
	Set(ctx context.Context, chatID int64) error
	ClearIf(ctx context.Context, chatID int64) (cleared bool, err error)
}
