package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"fx-sentiment-bot/internal/delivery/telegram/app/bot/message_sender"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sent struct {
	chatID int64
	text   string
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sent
	err  error
}

func (f *fakeSender) SendText(ctx context.Context, chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sent{chatID, text})
	return nil
}

func (f *fakeSender) SendReply(ctx context.Context, chatID int64, text string) error {
	return f.SendText(ctx, chatID, text)
}

func (f *fakeSender) SetTestMode(bool) {}
func (f *fakeSender) IsTestMode() bool { return false }

func (f *fakeSender) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.sent))
	for i, s := range f.sent {
		out[i] = s.text
	}
	return out
}

type memStore struct {
	mu      sync.Mutex
	chatID  int64
	ok      bool
	cleared int
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
	m.cleared++
	return true, nil
}

func (m *memStore) isSet() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ok
}

func TestWorkerDeliversToRecipient(t *testing.T) {
	sender := &fakeSender{}
	store := &memStore{chatID: 42, ok: true}
	w := NewWorker(sender, store, 10)

	w.deliver(context.Background(), Notification{Kind: "transition", Text: "EURUSD", CreatedAt: time.Now()})

	require.Len(t, sender.sent, 1)
	assert.Equal(t, int64(42), sender.sent[0].chatID)
}

func TestWorkerSkipsWithoutRecipient(t *testing.T) {
	sender := &fakeSender{}
	w := NewWorker(sender, &memStore{}, 10)

	w.deliver(context.Background(), Notification{Kind: "transition", Text: "x", CreatedAt: time.Now()})
	assert.Empty(t, sender.sent)
}

func TestWorkerClearsRecipientOnUnauthorized(t *testing.T) {
	sender := &fakeSender{err: errors.Join(message_sender.ErrUnauthorized, errors.New("403"))}
	store := &memStore{chatID: 42, ok: true}
	w := NewWorker(sender, store, 10)

	w.deliver(context.Background(), Notification{Kind: "match", Text: "x", CreatedAt: time.Now()})

	assert.False(t, store.isSet())
	assert.Equal(t, 1, store.cleared)
}

// sender, подменяющий получателя во время отправки
type replacingSender struct {
	store *memStore
	next  int64
}

func (r *replacingSender) SendText(ctx context.Context, chatID int64, text string) error {
	_ = r.store.Set(ctx, r.next)
	return message_sender.ErrUnauthorized
}

func (r *replacingSender) SendReply(ctx context.Context, chatID int64, text string) error {
	return r.SendText(ctx, chatID, text)
}

func (r *replacingSender) SetTestMode(bool) {}
func (r *replacingSender) IsTestMode() bool { return false }

func TestWorkerKeepsNewRecipientAfterUnauthorized(t *testing.T) {
	store := &memStore{chatID: 42, ok: true}
	w := NewWorker(&replacingSender{store: store, next: 77}, store, 10)

	w.deliver(context.Background(), Notification{Kind: "match", Text: "x", CreatedAt: time.Now()})

	id, ok, _ := store.Get(context.Background())
	assert.True(t, ok)
	assert.Equal(t, int64(77), id)
	assert.Zero(t, store.cleared)
}

func TestWorkerKeepsRecipientOnTransientError(t *testing.T) {
	sender := &fakeSender{err: &message_sender.DeliveryError{Method: "sendMessage", Code: 502, Transient: true}}
	store := &memStore{chatID: 42, ok: true}
	w := NewWorker(sender, store, 10)

	w.deliver(context.Background(), Notification{Kind: "match", Text: "x", CreatedAt: time.Now()})

	assert.True(t, store.isSet())
}

func TestWorkerDropsStale(t *testing.T) {
	sender := &fakeSender{}
	w := NewWorker(sender, &memStore{chatID: 1, ok: true}, 10)

	w.deliver(context.Background(), Notification{Kind: "digest", Text: "x", CreatedAt: time.Now().Add(-MessageTTL - time.Second)})
	assert.Empty(t, sender.sent)
}

func TestNotifyNeverBlocks(t *testing.T) {
	w := NewWorker(&fakeSender{}, &memStore{}, 2)

	assert.True(t, w.Notify("a", PriorityNormal, "1"))
	assert.True(t, w.Notify("b", PriorityNormal, "2"))
	assert.False(t, w.Notify("c", PriorityNormal, "3"))
	assert.True(t, w.Notify("d", PriorityHigh, "4"))
	assert.Equal(t, 3, w.Pending())
}

func TestWorkerRunPrefersHighPriority(t *testing.T) {
	sender := &fakeSender{}
	w := NewWorker(sender, &memStore{chatID: 7, ok: true}, 10)

	w.Notify("transition", PriorityNormal, "normal")
	w.Notify("match", PriorityHigh, "high")

	w.Start(context.Background())
	require.Eventually(t, func() bool { return len(sender.texts()) == 2 }, time.Second, 5*time.Millisecond)
	w.Stop()

	assert.Equal(t, []string{"high", "normal"}, sender.texts())
}
