// internal/core/domain/alerts/alert.go
package alerts

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"fx-sentiment-bot/internal/core/domain/sentiment"

	"github.com/go-playground/validator/v10"
)

// ErrMalformedAlert тело алерта не удалось разобрать или проверить
var ErrMalformedAlert = errors.New("malformed alert")

var validate = validator.New()

// Alert входящий внешний алерт.
// Payload содержит все поля тела, включая symbol и signal.
type Alert struct {
	Symbol  string `validate:"required,max=64"`
	Signal  string `validate:"required,max=64"`
	Payload map[string]interface{}
}

// Parse разбирает JSON объект или JSON объект, переданный строкой
// (например `"{\"symbol\":\"OANDA:EURUSD\",\"signal\":\"BUY\"}"`).
func Parse(body []byte) (*Alert, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrMalformedAlert)
	}

	if body[0] == '"' {
		var inner string
		if err := json.Unmarshal(body, &inner); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedAlert, err)
		}
		body = bytes.TrimSpace([]byte(inner))
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: body is not a JSON object: %v", ErrMalformedAlert, err)
	}
	if payload == nil {
		return nil, fmt.Errorf("%w: body is null", ErrMalformedAlert)
	}

	alert := &Alert{
		Symbol:  stringField(payload, "symbol"),
		Signal:  stringField(payload, "signal"),
		Payload: payload,
	}

	if err := validate.Struct(alert); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedAlert, err)
	}
	if sentiment.NormalizeSymbol(alert.Symbol) == "" {
		return nil, fmt.Errorf("%w: symbol %q has no base ticker", ErrMalformedAlert, alert.Symbol)
	}
	if sentiment.ParseDirection(alert.Signal) == sentiment.DirectionNone {
		return nil, fmt.Errorf("%w: signal %q must start with BUY or SELL", ErrMalformedAlert, alert.Signal)
	}

	return alert, nil
}

// stringField пусто, если поля нет или оно не строка
func stringField(payload map[string]interface{}, key string) string {
	if v, ok := payload[key].(string); ok {
		return v
	}
	return ""
}
