// internal/delivery/telegram/app/bot/message_sender/errors.go
package message_sender

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrUnauthorized получатель отозвал доступ (бот заблокирован, чат удалён)
var ErrUnauthorized = errors.New("recipient revoked access")

// DeliveryError ошибка доставки, не связанная с отзывом доступа
type DeliveryError struct {
	Method      string
	Code        int
	Description string
	Transient   bool
	Err         error
}

func (e *DeliveryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("telegram %s failed: %v", e.Method, e.Err)
	}
	return fmt.Sprintf("telegram API error %d on %s: %s", e.Code, e.Method, e.Description)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// IsTransient true для сетевых ошибок, 5xx и 429
func IsTransient(err error) bool {
	var de *DeliveryError
	if errors.As(err, &de) {
		return de.Transient
	}
	return false
}

// classifyAPIError переводит ответ Telegram в ошибку доставки
func classifyAPIError(method string, code int, description string) error {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%w: %d %s", ErrUnauthorized, code, description)
	case code == http.StatusBadRequest && strings.Contains(strings.ToLower(description), "chat not found"):
		return fmt.Errorf("%w: %s", ErrUnauthorized, description)
	}

	return &DeliveryError{
		Method:      method,
		Code:        code,
		Description: description,
		Transient:   code == http.StatusTooManyRequests || code >= 500,
	}
}
