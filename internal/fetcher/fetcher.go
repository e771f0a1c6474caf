// internal/fetcher/fetcher.go
package fetcher

import (
	"context"
	"errors"

	"fx-sentiment-bot/internal/core/domain/sentiment"
)

// ErrUnexpectedShape ответ фида не содержит ожидаемой структуры
var ErrUnexpectedShape = errors.New("unexpected feed response shape")

// ErrNoRatios в ответе нет ни одного числового значения
var ErrNoRatios = errors.New("feed returned no usable ratios")

// FetchResult - результат одного запроса к фиду
type FetchResult struct {
	Batch   sentiment.Batch
	Skipped []string // символы с нечисловым или отсутствующим значением
}

// SentimentFetcher - источник долей покупателей
type SentimentFetcher interface {
	Fetch(ctx context.Context) (*FetchResult, error)
}
