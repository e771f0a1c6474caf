// /internal/infrastructure/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"fx-sentiment-bot/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Бэкенды хранения получателя уведомлений
const (
	RecipientBackendFile     = "file"
	RecipientBackendRedis    = "redis"
	RecipientBackendPostgres = "postgres"
)

// ============================================
// КОНФИГУРАЦИЯ БАЗЫ ДАННЫХ
// ============================================

// DatabaseConfig - конфигурация базы данных
type DatabaseConfig struct {
	// Основные параметры подключения
	Host     string `mapstructure:"DB_HOST"`
	Port     int    `mapstructure:"DB_PORT" validate:"omitempty,min=1,max=65535"`
	User     string `mapstructure:"DB_USER"`
	Password string `mapstructure:"DB_PASSWORD"`
	Name     string `mapstructure:"DB_NAME"`
	SSLMode  string `mapstructure:"DB_SSLMODE"`

	// Настройки пула соединений
	MaxOpenConns    int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	MaxConnLifetime time.Duration `mapstructure:"DB_MAX_CONN_LIFETIME"`
	MaxConnIdleTime time.Duration `mapstructure:"DB_MAX_CONN_IDLE_TIME"`
}

// RedisConfig конфигурация Redis
type RedisConfig struct {
	// Основные настройки подключения
	Host     string `mapstructure:"REDIS_HOST"`     // localhost
	Port     int    `mapstructure:"REDIS_PORT"`     // 6379
	Password string `mapstructure:"REDIS_PASSWORD"` // пустой или пароль
	DB       int    `mapstructure:"REDIS_DB"`       // 0

	// Настройки пула соединений
	PoolSize     int           `mapstructure:"REDIS_POOL_SIZE"`      // 10
	MinIdleConns int           `mapstructure:"REDIS_MIN_IDLE_CONNS"` // 2
	MaxRetries   int           `mapstructure:"REDIS_MAX_RETRIES"`    // 3
	DialTimeout  time.Duration `mapstructure:"REDIS_DIAL_TIMEOUT"`   // 5s
	ReadTimeout  time.Duration `mapstructure:"REDIS_READ_TIMEOUT"`   // 3s
	WriteTimeout time.Duration `mapstructure:"REDIS_WRITE_TIMEOUT"`  // 3s

	// Ключ, под которым хранится chat id получателя
	RecipientKey string `mapstructure:"REDIS_RECIPIENT_KEY"`
}

// ============================================
// ФИД И ДВИЖОК
// ============================================

// FeedConfig - источник данных о настроениях
type FeedConfig struct {
	URL     string        `mapstructure:"FEED_URL" validate:"required,url"`
	Timeout time.Duration `mapstructure:"FEED_TIMEOUT" validate:"gt=0"`
}

// PollConfig - расписание опроса фида
type PollConfig struct {
	Interval time.Duration `mapstructure:"POLL_INTERVAL" validate:"gt=0"`
	Jitter   time.Duration `mapstructure:"POLL_JITTER" validate:"gte=0"`
}

// EngineConfig - параметры движка сверки
type EngineConfig struct {
	PendingTimeout     time.Duration `mapstructure:"PENDING_TIMEOUT" validate:"gt=0"`
	CompositePrimary   string        `mapstructure:"COMPOSITE_PRIMARY_SYMBOL" validate:"required"`
	CompositeSecondary string        `mapstructure:"COMPOSITE_SECONDARY_SYMBOL" validate:"required,nefield=CompositePrimary"`
}

// DigestConfig - ежедневная сводка
type DigestConfig struct {
	Enabled bool   `mapstructure:"DIGEST_ENABLED"`
	At      string `mapstructure:"DIGEST_AT"` // HH:MM UTC
	Hour    int
	Minute  int
}

// ============================================
// ОСНОВНАЯ КОНФИГУРАЦИЯ ПРИЛОЖЕНИЯ
// ============================================

// Config - основная структура конфигурации
type Config struct {
	// ======================
	// ОСНОВНЫЕ НАСТРОЙКИ
	// ======================
	Environment string `mapstructure:"ENVIRONMENT"`
	Version     string `mapstructure:"VERSION"`

	Feed   FeedConfig
	Poll   PollConfig
	Engine EngineConfig
	Digest DigestConfig

	// ======================
	// TELEGRAM
	// ======================
	Telegram struct {
		Enabled        bool          `mapstructure:"TELEGRAM_ENABLED"`
		BotToken       string        `mapstructure:"TG_API_KEY"`
		APIURL         string        `mapstructure:"TG_API_URL" validate:"required,url"`
		TestMode       bool          `mapstructure:"TELEGRAM_TEST_MODE"`
		PollingTimeout int           `mapstructure:"POLLING_TIMEOUT" validate:"min=0,max=50"`
		RequestTimeout time.Duration `mapstructure:"TELEGRAM_REQUEST_TIMEOUT" validate:"gt=0"`
	}

	// ======================
	// УВЕДОМЛЕНИЯ
	// ======================
	Notify struct {
		RatePerSec float64       `mapstructure:"NOTIFY_RATE_PER_SEC" validate:"gt=0"`
		QueueSize  int           `mapstructure:"NOTIFY_QUEUE_SIZE" validate:"gt=0"`
		DedupTTL   time.Duration `mapstructure:"NOTIFY_DEDUP_TTL" validate:"gte=0"`
	}

	// ======================
	// HTTP СЕРВЕР
	// ======================
	HTTP struct {
		Port           int    `mapstructure:"HTTP_PORT" validate:"min=1,max=65535"`
		AlertPath      string `mapstructure:"ALERT_PATH" validate:"required,startswith=/"`
		MetricsEnabled bool   `mapstructure:"METRICS_ENABLED"`
		MaxBodySize    int64  `mapstructure:"ALERT_MAX_BODY_SIZE" validate:"gt=0"`
	}

	// ======================
	// ХРАНЕНИЕ ПОЛУЧАТЕЛЯ
	// ======================
	Recipient struct {
		Backend string `mapstructure:"RECIPIENT_BACKEND" validate:"oneof=file redis postgres"`
		File    string `mapstructure:"RECIPIENT_FILE"`
	}

	Database DatabaseConfig
	Redis    RedisConfig

	// ======================
	// ЛОГИРОВАНИЕ
	// ======================
	Logging struct {
		Level     string `mapstructure:"LOG_LEVEL"`
		File      string `mapstructure:"LOG_FILE"`
		DebugMode bool   `mapstructure:"DEBUG_MODE"`
	}
}

// ============================================
// ЗАГРУЗКА КОНФИГУРАЦИИ
// ============================================

// LoadConfig загружает конфигурацию из .env файла
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			logger.Warn("⚠️  Config file %s not found, using environment variables", path)
		}
	}

	cfg := &Config{}

	// ======================
	// ОСНОВНЫЕ НАСТРОЙКИ
	// ======================
	cfg.Environment = getEnv("ENVIRONMENT", "production")
	cfg.Version = getEnv("VERSION", "1.0.0")

	// ======================
	// ФИД И ОПРОС
	// ======================
	cfg.Feed.URL = getEnv("FEED_URL", "https://c.fxssi.com/api/current-ratios")
	cfg.Feed.Timeout = getEnvDuration("FEED_TIMEOUT", 15*time.Second)
	cfg.Poll.Interval = getEnvDuration("POLL_INTERVAL", 5*time.Minute)
	cfg.Poll.Jitter = getEnvDuration("POLL_JITTER", 30*time.Second)

	// ======================
	// ДВИЖОК
	// ======================
	// По умолчанию окно ожидания - два интервала опроса
	cfg.Engine.PendingTimeout = getEnvDuration("PENDING_TIMEOUT", 2*cfg.Poll.Interval)
	cfg.Engine.CompositePrimary = strings.ToUpper(getEnv("COMPOSITE_PRIMARY_SYMBOL", "XAUUSD"))
	cfg.Engine.CompositeSecondary = strings.ToUpper(getEnv("COMPOSITE_SECONDARY_SYMBOL", "XAGUSD"))

	cfg.Digest.Enabled = getEnvBool("DIGEST_ENABLED", false)
	cfg.Digest.At = getEnv("DIGEST_AT", "08:00")
	cfg.Digest.Hour, cfg.Digest.Minute = parseClock(cfg.Digest.At)

	// ======================
	// TELEGRAM
	// ======================
	cfg.Telegram.Enabled = getEnvBool("TELEGRAM_ENABLED", false)
	cfg.Telegram.BotToken = getEnv("TG_API_KEY", "")
	cfg.Telegram.APIURL = strings.TrimSuffix(getEnv("TG_API_URL", "https://api.telegram.org"), "/")
	cfg.Telegram.TestMode = getEnvBool("TELEGRAM_TEST_MODE", false)
	cfg.Telegram.PollingTimeout = getEnvInt("POLLING_TIMEOUT", 30)
	cfg.Telegram.RequestTimeout = getEnvDuration("TELEGRAM_REQUEST_TIMEOUT", 30*time.Second)

	// ======================
	// УВЕДОМЛЕНИЯ
	// ======================
	cfg.Notify.RatePerSec = getEnvFloat("NOTIFY_RATE_PER_SEC", 1)
	cfg.Notify.QueueSize = getEnvInt("NOTIFY_QUEUE_SIZE", 100)
	cfg.Notify.DedupTTL = getEnvDuration("NOTIFY_DEDUP_TTL", 30*time.Second)

	// ======================
	// HTTP
	// ======================
	cfg.HTTP.Port = getEnvInt("HTTP_PORT", 8080)
	cfg.HTTP.AlertPath = getEnv("ALERT_PATH", "/webhook/alert")
	cfg.HTTP.MetricsEnabled = getEnvBool("METRICS_ENABLED", true)
	cfg.HTTP.MaxBodySize = getEnvInt64("ALERT_MAX_BODY_SIZE", 64*1024)

	// ======================
	// ХРАНЕНИЕ ПОЛУЧАТЕЛЯ
	// ======================
	cfg.Recipient.Backend = strings.ToLower(getEnv("RECIPIENT_BACKEND", RecipientBackendFile))
	cfg.Recipient.File = getEnv("RECIPIENT_FILE", "data/recipient")

	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = getEnvInt("DB_PORT", 5432)
	cfg.Database.User = getEnv("DB_USER", "")
	cfg.Database.Password = getEnv("DB_PASSWORD", "")
	cfg.Database.Name = getEnv("DB_NAME", "")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 5)
	cfg.Database.MaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 2)
	cfg.Database.MaxConnLifetime = getEnvDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute)
	cfg.Database.MaxConnIdleTime = getEnvDuration("DB_MAX_CONN_IDLE_TIME", 10*time.Minute)

	cfg.Redis.Host = getEnv("REDIS_HOST", "localhost")
	cfg.Redis.Port = getEnvInt("REDIS_PORT", 6379)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)
	cfg.Redis.PoolSize = getEnvInt("REDIS_POOL_SIZE", 10)
	cfg.Redis.MinIdleConns = getEnvInt("REDIS_MIN_IDLE_CONNS", 2)
	cfg.Redis.MaxRetries = getEnvInt("REDIS_MAX_RETRIES", 3)
	cfg.Redis.DialTimeout = getEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second)
	cfg.Redis.ReadTimeout = getEnvDuration("REDIS_READ_TIMEOUT", 3*time.Second)
	cfg.Redis.WriteTimeout = getEnvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second)
	cfg.Redis.RecipientKey = getEnv("REDIS_RECIPIENT_KEY", "fxbot:recipient")

	// ======================
	// ЛОГИРОВАНИЕ
	// ======================
	cfg.Logging.Level = getEnv("LOG_LEVEL", "info")
	cfg.Logging.File = getEnv("LOG_FILE", "logs/fx_sentiment.log")
	cfg.Logging.DebugMode = getEnvBool("DEBUG_MODE", false)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// ============================================
// ВАЛИДАЦИЯ
// ============================================

var validate = validator.New()

// validate проверяет обязательные параметры конфигурации
func (c *Config) validate() error {
	var validationErrors []string

	if err := validate.Struct(c); err != nil {
		if fieldErrors, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range fieldErrors {
				validationErrors = append(validationErrors,
					fmt.Sprintf("%s failed '%s' check", fe.Namespace(), fe.Tag()))
			}
		} else {
			return err
		}
	}

	// Джиттер должен быть меньше интервала, иначе задержка может стать отрицательной
	if c.Poll.Jitter >= c.Poll.Interval {
		validationErrors = append(validationErrors, "POLL_JITTER must be smaller than POLL_INTERVAL")
	}

	// Проверка Telegram если включен
	if c.Telegram.Enabled && c.Telegram.BotToken == "" {
		validationErrors = append(validationErrors, "TG_API_KEY is required when Telegram is enabled")
	}

	if c.Digest.Enabled && (c.Digest.Hour < 0 || c.Digest.Hour > 23 || c.Digest.Minute < 0 || c.Digest.Minute > 59) {
		validationErrors = append(validationErrors, "DIGEST_AT must be HH:MM (UTC)")
	}

	switch c.Recipient.Backend {
	case RecipientBackendFile:
		if c.Recipient.File == "" {
			validationErrors = append(validationErrors, "RECIPIENT_FILE is required for file backend")
		}
	case RecipientBackendPostgres:
		if c.Database.Host == "" {
			validationErrors = append(validationErrors, "DB_HOST is required")
		}
		if c.Database.User == "" {
			validationErrors = append(validationErrors, "DB_USER is required")
		}
		if c.Database.Name == "" {
			validationErrors = append(validationErrors, "DB_NAME is required")
		}
	case RecipientBackendRedis:
		if c.Redis.Host == "" {
			validationErrors = append(validationErrors, "REDIS_HOST is required")
		}
	}

	if len(validationErrors) > 0 {
		errMsg := strings.Join(validationErrors, "; ")
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

// Validate публичная обертка над validate
func (c *Config) Validate() error {
	return c.validate()
}

// ============================================
// ВСПОМОГАТЕЛЬНЫЕ МЕТОДЫ
// ============================================

// GetPostgresDSN возвращает DSN для подключения к PostgreSQL
func (c *Config) GetPostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddress возвращает адрес Redis
func (c *Config) GetRedisAddress() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// GetTelegramBaseURL базовый URL методов бота
func (c *Config) GetTelegramBaseURL() string {
	return fmt.Sprintf("%s/bot%s/", c.Telegram.APIURL, c.Telegram.BotToken)
}

// MaskedToken токен без середины для логов
func (c *Config) MaskedToken() string {
	token := c.Telegram.BotToken
	if len(token) > 10 {
		return token[:5] + "..." + token[len(token)-5:]
	}
	if token == "" {
		return "(not set)"
	}
	return "***"
}

// IsDev проверка dev окружения
func (c *Config) IsDev() bool {
	return c.Environment == "dev" || c.Environment == "development"
}

// PrintSummary выводит эффективную конфигурацию
func (c *Config) PrintSummary() {
	logger.Info("📋 Конфигурация приложения:")
	logger.Info("   • Окружение: %s (версия %s)", c.Environment, c.Version)
	logger.Info("   • Фид: %s (таймаут %v)", c.Feed.URL, c.Feed.Timeout)
	logger.Info("   • Интервал опроса: %v ± %v", c.Poll.Interval, c.Poll.Jitter)
	logger.Info("   • Окно ожидания алертов: %v", c.Engine.PendingTimeout)
	logger.Info("   • Композит: %s / %s", c.Engine.CompositePrimary, c.Engine.CompositeSecondary)
	logger.Info("   • Telegram включен: %v (test mode: %v)", c.Telegram.Enabled, c.Telegram.TestMode)
	logger.Info("   • Telegram Token: %s", c.MaskedToken())
	logger.Info("   • HTTP порт: %d, алерты: %s, метрики: %v", c.HTTP.Port, c.HTTP.AlertPath, c.HTTP.MetricsEnabled)
	logger.Info("   • Хранение получателя: %s", c.Recipient.Backend)
	switch c.Recipient.Backend {
	case RecipientBackendPostgres:
		logger.Info("   • PostgreSQL: %s:%d/%s", c.Database.Host, c.Database.Port, c.Database.Name)
	case RecipientBackendRedis:
		logger.Info("   • Redis: %s (DB: %d, Pool: %d)", c.GetRedisAddress(), c.Redis.DB, c.Redis.PoolSize)
	default:
		logger.Info("   • Файл получателя: %s", c.Recipient.File)
	}
	if c.Digest.Enabled {
		logger.Info("   • Ежедневная сводка: %02d:%02d UTC", c.Digest.Hour, c.Digest.Minute)
	}
	logger.Info("   • Уровень логирования: %s", c.Logging.Level)
}

// ============================================
// ВСПОМОГАТЕЛЬНЫЕ ФУНКЦИИ
// ============================================

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// parseClock разбирает "HH:MM"; при ошибке возвращает -1, -1
func parseClock(value string) (int, int) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 2 {
		return -1, -1
	}
	hour, err1 := strconv.Atoi(parts[0])
	minute, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return -1, -1
	}
	return hour, minute
}
