package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "https://c.fxssi.com/api/current-ratios", cfg.Feed.URL)
	assert.Equal(t, 5*time.Minute, cfg.Poll.Interval)
	assert.Equal(t, 10*time.Minute, cfg.Engine.PendingTimeout)
	assert.Equal(t, RecipientBackendFile, cfg.Recipient.Backend)
	assert.Equal(t, "/webhook/alert", cfg.HTTP.AlertPath)
	assert.Equal(t, 8, cfg.Digest.Hour)
}

func TestLoadConfigFromEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "POLL_INTERVAL=1m\nPOLL_JITTER=10s\nCOMPOSITE_PRIMARY_SYMBOL=eurusd\nCOMPOSITE_SECONDARY_SYMBOL=gbpusd\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Cleanup(func() {
		for _, k := range []string{"POLL_INTERVAL", "POLL_JITTER", "COMPOSITE_PRIMARY_SYMBOL", "COMPOSITE_SECONDARY_SYMBOL"} {
			os.Unsetenv(k)
		}
	})

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, time.Minute, cfg.Poll.Interval)
	assert.Equal(t, 2*time.Minute, cfg.Engine.PendingTimeout)
	assert.Equal(t, "EURUSD", cfg.Engine.CompositePrimary)
	assert.Equal(t, "GBPUSD", cfg.Engine.CompositeSecondary)
}

func TestLoadConfigRejectsJitterAboveInterval(t *testing.T) {
	t.Setenv("POLL_INTERVAL", "30s")
	t.Setenv("POLL_JITTER", "30s")

	_, err := LoadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POLL_JITTER")
}

func TestLoadConfigRequiresTokenWhenTelegramEnabled(t *testing.T) {
	t.Setenv("TELEGRAM_ENABLED", "true")

	_, err := LoadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TG_API_KEY")
}

func TestLoadConfigRejectsUnknownBackend(t *testing.T) {
	t.Setenv("RECIPIENT_BACKEND", "mongo")

	_, err := LoadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Backend")
}

func TestLoadConfigRejectsSameCompositeSymbols(t *testing.T) {
	t.Setenv("COMPOSITE_PRIMARY_SYMBOL", "EURUSD")
	t.Setenv("COMPOSITE_SECONDARY_SYMBOL", "eurusd")

	_, err := LoadConfig("")
	require.Error(t, err)
}

func TestMaskedToken(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, "(not set)", cfg.MaskedToken())

	cfg.Telegram.BotToken = "123456789:ABCDEFGHIJKLMNOP"
	assert.Equal(t, "12345...LMNOP", cfg.MaskedToken())
}

func TestTelegramBaseURL(t *testing.T) {
	cfg := &Config{}
	cfg.Telegram.APIURL = "http://localhost:9000"
	cfg.Telegram.BotToken = "tok"
	assert.Equal(t, "http://localhost:9000/bottok/", cfg.GetTelegramBaseURL())
}
