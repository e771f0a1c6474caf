// internal/fetcher/fxssi_fetcher.go
package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"fx-sentiment-bot/internal/core/domain/sentiment"
	"fx-sentiment-bot/pkg/logger"

	"github.com/shopspring/decimal"
)

const (
	maxResponseSize = 4 << 20
	userAgent       = "fx-sentiment-bot/1.0"
)

var (
	shareMin = decimal.Zero
	shareMax = decimal.NewFromInt(100)
)

// FXSSIFetcher клиент фида current-ratios
type FXSSIFetcher struct {
	httpClient *http.Client
	url        string
}

// NewFXSSIFetcher создает клиент с таймаутом на запрос
func NewFXSSIFetcher(url string, timeout time.Duration) *FXSSIFetcher {
	return &FXSSIFetcher{
		httpClient: &http.Client{Timeout: timeout},
		url:        url,
	}
}

// Fetch выполняет один GET и разбирает ответ с сохранением порядка символов
func (f *FXSSIFetcher) Fetch(ctx context.Context) (*FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ratios: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("feed returned status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	result, err := decodeRatios(body)
	if err != nil {
		return nil, err
	}

	if len(result.Batch.Ratios) == 0 {
		return nil, fmt.Errorf("%w (skipped %d)", ErrNoRatios, len(result.Skipped))
	}

	if len(result.Skipped) > 0 {
		logger.Debug("⚠️ Пропущено %d символов без числового average: %s",
			len(result.Skipped), strings.Join(result.Skipped, ", "))
	}

	return result, nil
}

// decodeRatios разбирает {"pairs": {SYM: {"average": "..."}}, "server_time": ...}
// потоковым декодером: порядок ключей pairs сохраняется.
func decodeRatios(body []byte) (*FetchResult, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}

	result := &FetchResult{}
	foundPairs := false

	for dec.More() {
		key, err := readKey(dec)
		if err != nil {
			return nil, err
		}

		switch key {
		case "pairs":
			if err := decodePairs(dec, result); err != nil {
				return nil, err
			}
			foundPairs = true
		case "server_time", "serverTime", "time":
			var raw json.RawMessage
			if err := dec.Decode(&raw); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
			}
			if result.Batch.ServerTime == "" {
				result.Batch.ServerTime = rawToString(raw)
			}
		default:
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
			}
		}
	}

	if !foundPairs {
		return nil, fmt.Errorf("%w: 'pairs' not found", ErrUnexpectedShape)
	}

	return result, nil
}

func decodePairs(dec *json.Decoder, result *FetchResult) error {
	if err := expectDelim(dec, '{'); err != nil {
		return err
	}

	for dec.More() {
		symbol, err := readKey(dec)
		if err != nil {
			return err
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
		}

		var entry map[string]json.RawMessage
		if err := json.Unmarshal(raw, &entry); err != nil {
			// значение не объект - пропускаем только этот символ
			result.Skipped = append(result.Skipped, symbol)
			continue
		}

		share, ok := parseShare(entry["average"])
		norm := sentiment.NormalizeSymbol(symbol)
		if !ok || norm == "" {
			result.Skipped = append(result.Skipped, symbol)
			continue
		}

		result.Batch.Ratios = append(result.Batch.Ratios, sentiment.Ratio{Symbol: norm, BuyShare: share})
	}

	// закрывающая '}'
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
	}
	return nil
}

// parseShare принимает строку с числом или JSON число
func parseShare(raw json.RawMessage) (decimal.Decimal, bool) {
	if len(raw) == 0 {
		return decimal.Decimal{}, false
	}

	text := strings.TrimSpace(string(raw))
	if strings.HasPrefix(text, `"`) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return decimal.Decimal{}, false
		}
		text = strings.TrimSpace(s)
	}

	value, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Decimal{}, false
	}
	if value.LessThan(shareMin) || value.GreaterThan(shareMax) {
		return decimal.Decimal{}, false
	}
	return value, true
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != want {
		return fmt.Errorf("%w: expected %q, got %v", ErrUnexpectedShape, want, tok)
	}
	return nil
}

func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("%w: expected key, got %v", ErrUnexpectedShape, tok)
	}
	return key, nil
}

func rawToString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	text := strings.TrimSpace(string(raw))
	if text == "null" {
		return ""
	}
	return text
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
