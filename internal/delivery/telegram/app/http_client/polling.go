// internal/delivery/telegram/app/http_client/polling.go
package http_client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Update входящее обновление (нужны только текстовые сообщения)
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message,omitempty"`
}

// Message входящее сообщение
type Message struct {
	MessageID int64  `json:"message_id"`
	Text      string `json:"text"`
	Chat      struct {
		ID       int64  `json:"id"`
		Type     string `json:"type"`
		Username string `json:"username,omitempty"`
	} `json:"chat"`
	From *struct {
		ID        int64  `json:"id"`
		Username  string `json:"username,omitempty"`
		FirstName string `json:"first_name,omitempty"`
	} `json:"from,omitempty"`
}

// PollingClient клиент для polling запросов с увеличенным таймаутом
type PollingClient struct {
	*TelegramClient
	longPoll int
}

// NewPollingClient создает новый клиент для polling.
// Таймаут HTTP больше, чем timeout long-polling в Telegram.
func NewPollingClient(baseURL string, longPollSeconds int) *PollingClient {
	return &PollingClient{
		TelegramClient: NewTelegramClient(baseURL, time.Duration(longPollSeconds+5)*time.Second),
		longPoll:       longPollSeconds,
	}
}

// GetUpdates выполняет GET getUpdates начиная с offset
func (c *PollingClient) GetUpdates(ctx context.Context, offset int64) ([]Update, error) {
	q := url.Values{}
	q.Set("offset", strconv.FormatInt(offset, 10))
	q.Set("timeout", strconv.Itoa(c.longPoll))
	q.Set("allowed_updates", `["message"]`)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"getUpdates?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	status, resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if !resp.OK {
		return nil, fmt.Errorf("getUpdates error %d (http %d): %s", resp.ErrorCode, status, resp.Description)
	}

	var updates []Update
	if len(resp.Result) > 0 {
		if err := json.Unmarshal(resp.Result, &updates); err != nil {
			return nil, fmt.Errorf("failed to parse updates: %w", err)
		}
	}
	return updates, nil
}
