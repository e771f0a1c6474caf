package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fx-sentiment-bot/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFeedServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchKeepsFeedOrder(t *testing.T) {
	body := `{"pairs":{"USDJPY":{"average":"30.5"},"EURUSD":{"average":"60"},"XAUUSD":{"average":50.25}},"server_time":1700000000}`
	srv := newFeedServer(t, http.StatusOK, body)

	res, err := NewFXSSIFetcher(srv.URL, time.Second).Fetch(context.Background())
	require.NoError(t, err)

	require.Len(t, res.Batch.Ratios, 3)
	assert.Equal(t, "USDJPY", res.Batch.Ratios[0].Symbol)
	assert.Equal(t, "EURUSD", res.Batch.Ratios[1].Symbol)
	assert.Equal(t, "XAUUSD", res.Batch.Ratios[2].Symbol)
	assert.Equal(t, "50.25", res.Batch.Ratios[2].BuyShare.String())
	assert.Equal(t, "1700000000", res.Batch.ServerTime)
	assert.Empty(t, res.Skipped)
}

func TestFetchSkipsNonNumericValues(t *testing.T) {
	body := `{"pairs":{"EURUSD":{"average":"abc"},"GBPUSD":{"average":"44"},"AUDUSD":{},"NZDUSD":"oops","CHFJPY":{"average":"120"}}}`
	srv := newFeedServer(t, http.StatusOK, body)

	res, err := NewFXSSIFetcher(srv.URL, time.Second).Fetch(context.Background())
	require.NoError(t, err)

	require.Len(t, res.Batch.Ratios, 1)
	assert.Equal(t, "GBPUSD", res.Batch.Ratios[0].Symbol)
	assert.ElementsMatch(t, []string{"EURUSD", "AUDUSD", "NZDUSD", "CHFJPY"}, res.Skipped)
	assert.Empty(t, res.Batch.ServerTime)
}

func TestFetchEmptyPairsIsFailure(t *testing.T) {
	for name, body := range map[string]string{
		"empty":       `{"pairs":{}}`,
		"all_invalid": `{"pairs":{"EURUSD":{"average":"abc"},"GBPUSD":{}}}`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := newFeedServer(t, http.StatusOK, body)

			res, err := NewFXSSIFetcher(srv.URL, time.Second).Fetch(context.Background())
			require.ErrorIs(t, err, ErrNoRatios)
			assert.Nil(t, res)
		})
	}
}

func TestFetchMissingPairs(t *testing.T) {
	srv := newFeedServer(t, http.StatusOK, `{"status":"ok"}`)

	_, err := NewFXSSIFetcher(srv.URL, time.Second).Fetch(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnexpectedShape))
}

func TestFetchNotJSON(t *testing.T) {
	srv := newFeedServer(t, http.StatusOK, `<html>maintenance</html>`)

	_, err := NewFXSSIFetcher(srv.URL, time.Second).Fetch(context.Background())
	require.ErrorIs(t, err, ErrUnexpectedShape)
}

func TestFetchNon2xxIsFailure(t *testing.T) {
	srv := newFeedServer(t, http.StatusServiceUnavailable, `{"pairs":{"EURUSD":{"average":"50"}}}`)

	_, err := NewFXSSIFetcher(srv.URL, time.Second).Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestFetchTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	_, err := NewFXSSIFetcher(srv.URL, 50*time.Millisecond).Fetch(context.Background())
	require.Error(t, err)
}

func TestFactoryRejectsBadURL(t *testing.T) {
	cfg := &config.Config{}
	cfg.Feed.URL = "ftp://example.com"
	_, err := NewFactory(cfg).NewSentimentFetcher()
	require.Error(t, err)

	cfg.Feed.URL = "https://example.com/api"
	cfg.Feed.Timeout = time.Second
	f, err := NewFactory(cfg).NewSentimentFetcher()
	require.NoError(t, err)
	assert.NotNil(t, f)
}
