package bot

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"fx-sentiment-bot/internal/core/domain/sentiment"
	"fx-sentiment-bot/internal/delivery/telegram/app/bot/message_sender"
	"fx-sentiment-bot/internal/delivery/telegram/app/http_client"
	"fx-sentiment-bot/internal/infrastructure/config"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reply struct {
	chatID int64
	text   string
}

type fakeSender struct {
	mu      sync.Mutex
	replies []reply
}

func (f *fakeSender) SendText(ctx context.Context, chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, reply{chatID, text})
	return nil
}

func (f *fakeSender) SendReply(ctx context.Context, chatID int64, text string) error {
	return f.SendText(ctx, chatID, text)
}

func (f *fakeSender) SetTestMode(bool) {}
func (f *fakeSender) IsTestMode() bool { return false }

func (f *fakeSender) last() reply {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.replies[len(f.replies)-1]
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.replies)
}

type memStore struct {
	mu     sync.Mutex
	chatID int64
	ok     bool
}

func (m *memStore) Get(ctx context.Context) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.chatID, m.ok, nil
}

func (m *memStore) Set(ctx context.Context, chatID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chatID, m.ok = chatID, true
	return nil
}

func (m *memStore) ClearIf(ctx context.Context, chatID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.ok || m.chatID != chatID {
		return false, nil
	}
	m.chatID, m.ok = 0, false
	return true, nil
}

type staticStatus struct{ status sentiment.Status }

func (s staticStatus) Status() sentiment.Status { return s.status }

func testConfig(apiURL string) *config.Config {
	cfg := &config.Config{}
	cfg.Telegram.APIURL = apiURL
	cfg.Telegram.BotToken = "token"
	cfg.Telegram.PollingTimeout = 0
	return cfg
}

func commandUpdate(id int64, chatID int64, text string) http_client.Update {
	msg := &http_client.Message{Text: text}
	msg.Chat.ID = chatID
	return http_client.Update{UpdateID: id, Message: msg}
}

func newTestBot(status sentiment.Status) (*TelegramBot, *fakeSender, *memStore) {
	sender := &fakeSender{}
	store := &memStore{}
	b := NewTelegramBot(testConfig("http://127.0.0.1:0"), sender, &Dependencies{
		Store:  store,
		Status: staticStatus{status},
	})
	return b, sender, store
}

func TestStartRegistersAndSendsCatchUp(t *testing.T) {
	snap := sentiment.ClassifyBatch(sentiment.Batch{Ratios: []sentiment.Ratio{
		{Symbol: "EURUSD", BuyShare: decimal.NewFromInt(60)},
	}})
	b, sender, store := newTestBot(sentiment.Status{Snapshot: snap, HasSnapshot: true})

	b.HandleUpdate(context.Background(), commandUpdate(1, 100, "/start"))

	id, ok, _ := store.Get(context.Background())
	assert.True(t, ok)
	assert.Equal(t, int64(100), id)
	assert.Equal(t, int64(100), sender.last().chatID)
	assert.Contains(t, sender.last().text, "EURUSD (Average: 60.00): SELL")
}

func TestStartReplacesRecipient(t *testing.T) {
	b, _, store := newTestBot(sentiment.Status{})

	b.HandleUpdate(context.Background(), commandUpdate(1, 100, "/start"))
	b.HandleUpdate(context.Background(), commandUpdate(2, 200, "/start@fx_bot"))

	id, _, _ := store.Get(context.Background())
	assert.Equal(t, int64(200), id)
}

func TestStopOnlyByCurrentRecipient(t *testing.T) {
	b, sender, store := newTestBot(sentiment.Status{})
	require.NoError(t, store.Set(context.Background(), 100))

	b.HandleUpdate(context.Background(), commandUpdate(1, 999, "/stop"))
	_, ok, _ := store.Get(context.Background())
	assert.True(t, ok)
	assert.Contains(t, sender.last().text, "not subscribed")

	b.HandleUpdate(context.Background(), commandUpdate(2, 100, "/stop"))
	_, ok, _ = store.Get(context.Background())
	assert.False(t, ok)
	assert.Contains(t, sender.last().text, "Unsubscribed")
}

func TestStatusAndHelp(t *testing.T) {
	b, sender, _ := newTestBot(sentiment.Status{Pending: 3, Cycles: 2})

	b.HandleUpdate(context.Background(), commandUpdate(1, 5, "/status"))
	assert.Contains(t, sender.last().text, "Pending alerts: 3")
	assert.Contains(t, sender.last().text, "Recipient registered: no")

	b.HandleUpdate(context.Background(), commandUpdate(2, 5, "/unknown"))
	help := sender.last().text
	assert.True(t, strings.HasPrefix(help, "Available commands:"))
	assert.Contains(t, help, "/start - subscribe this chat to notifications")
}

func TestRepeatedCommandAlwaysAnswered(t *testing.T) {
	var sends int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottoken/sendMessage", r.URL.Path)
		atomic.AddInt32(&sends, 1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1}}`))
	}))
	defer srv.Close()

	sender := message_sender.NewMessageSender(message_sender.Options{
		BaseURL:        srv.URL + "/bottoken/",
		Enabled:        true,
		RatePerSec:     100,
		DedupTTL:       30 * time.Second,
		RequestTimeout: time.Second,
	})
	store := &memStore{}
	b := NewTelegramBot(testConfig(srv.URL), sender, &Dependencies{Store: store, Status: staticStatus{}})

	b.HandleUpdate(context.Background(), commandUpdate(1, 42, "/help"))
	b.HandleUpdate(context.Background(), commandUpdate(2, 42, "/help"))
	b.HandleUpdate(context.Background(), commandUpdate(3, 42, "/start"))
	b.HandleUpdate(context.Background(), commandUpdate(4, 42, "/start"))

	assert.EqualValues(t, 4, atomic.LoadInt32(&sends))
}

func TestNonCommandIgnored(t *testing.T) {
	b, sender, _ := newTestBot(sentiment.Status{})

	b.HandleUpdate(context.Background(), commandUpdate(1, 5, "hello"))
	b.HandleUpdate(context.Background(), http_client.Update{UpdateID: 2})

	assert.Zero(t, sender.count())
}

func TestPollingProcessesUpdatesAndAdvancesOffset(t *testing.T) {
	var calls int32
	var offsets []string
	var mu sync.Mutex

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottoken/getUpdates", r.URL.Path)
		mu.Lock()
		offsets = append(offsets, r.URL.Query().Get("offset"))
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if atomic.AddInt32(&calls, 1) == 1 {
			updates := []http_client.Update{commandUpdate(41, 100, "/start")}
			raw, _ := json.Marshal(updates)
			_, _ = w.Write([]byte(`{"ok":true,"result":` + string(raw) + `}`))
			return
		}
		time.Sleep(10 * time.Millisecond)
		_, _ = w.Write([]byte(`{"ok":true,"result":[]}`))
	}))
	defer srv.Close()

	sender := &fakeSender{}
	store := &memStore{}
	b := NewTelegramBot(testConfig(srv.URL), sender, &Dependencies{Store: store, Status: staticStatus{}})

	require.NoError(t, b.Start(context.Background()))
	require.Eventually(t, func() bool { return atomic.LoadInt32(&calls) >= 2 }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, b.Stop())

	_, ok, _ := store.Get(context.Background())
	assert.True(t, ok)
	assert.Equal(t, 1, sender.count())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "0", offsets[0])
	assert.Equal(t, "42", offsets[1])
}
