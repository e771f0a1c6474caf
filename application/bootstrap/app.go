// application/bootstrap/app.go
package bootstrap

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"fx-sentiment-bot/application/scheduler"
	"fx-sentiment-bot/application/services/monitor"
	"fx-sentiment-bot/internal/core/domain/sentiment"
	"fx-sentiment-bot/internal/delivery/api"
	"fx-sentiment-bot/internal/delivery/telegram/app/bot"
	"fx-sentiment-bot/internal/delivery/telegram/app/bot/formatters"
	"fx-sentiment-bot/internal/delivery/telegram/app/bot/message_sender"
	"fx-sentiment-bot/internal/delivery/telegram/queue"
	"fx-sentiment-bot/internal/fetcher"
	"fx-sentiment-bot/internal/infrastructure/config"
	"fx-sentiment-bot/internal/infrastructure/persistence/recipient"
	"fx-sentiment-bot/pkg/logger"
)

// Имена задач планировщика
const (
	JobSentimentPoll = "sentiment_poll"
	JobDailyDigest   = "daily_digest"
)

// Application - основное приложение
type Application struct {
	config    *config.Config
	logger    *log.Logger
	mu        sync.RWMutex
	running   bool
	startTime time.Time
	stopChan  chan os.Signal
	cancel    context.CancelFunc

	recipients *recipient.Backend
	sender     *message_sender.MessageSenderImpl
	notifier   *queue.Worker
	engine     *sentiment.Engine
	monitor    *monitor.Service
	scheduler  *scheduler.Scheduler
	httpServer *api.Server
	bot        *bot.TelegramBot
}

// NewApplication создает приложение
func NewApplication(cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	return &Application{
		config:   cfg,
		logger:   log.New(os.Stdout, "[APP] ", log.LstdFlags),
		stopChan: make(chan os.Signal, 1),
	}, nil
}

// Initialize собирает компоненты в порядке зависимостей:
// хранилище -> отправитель -> очередь -> движок -> опрос -> планировщик -> HTTP -> бот
func (app *Application) Initialize() error {
	cfg := app.config

	backend, err := recipient.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("recipient store: %w", err)
	}
	app.recipients = backend

	app.sender = message_sender.NewMessageSenderFromConfig(cfg)
	app.notifier = queue.NewWorker(app.sender, backend.Store, cfg.Notify.QueueSize)

	app.engine = sentiment.NewEngine(sentiment.EngineConfig{
		PendingTimeout:     cfg.Engine.PendingTimeout,
		CompositePrimary:   cfg.Engine.CompositePrimary,
		CompositeSecondary: cfg.Engine.CompositeSecondary,
	})

	feed, err := fetcher.NewFactory(cfg).NewSentimentFetcher()
	if err != nil {
		return fmt.Errorf("sentiment fetcher: %w", err)
	}

	formatter := formatters.NewSentimentFormatter()
	app.monitor = monitor.NewService(feed, app.engine, app.notifier, formatter)

	app.scheduler = scheduler.New()
	app.scheduler.Register(&scheduler.Job{
		Name:        JobSentimentPoll,
		Description: "Опрос фида настроений и сверка алертов",
		Schedule:    scheduler.Jittered(cfg.Poll.Interval, cfg.Poll.Jitter),
		Handler:     app.monitor.RunCycle,
		RunOnStart:  true,
		Timeout:     2 * cfg.Feed.Timeout,
	})
	if cfg.Digest.Enabled {
		app.scheduler.Register(&scheduler.Job{
			Name:        JobDailyDigest,
			Description: "Ежедневная сводка настроений",
			Schedule:    scheduler.DailyAt(cfg.Digest.Hour, cfg.Digest.Minute),
			Handler:     app.monitor.RunDigest,
		})
	}

	handler := api.NewHTTPHandler(app.engine, api.Options{
		AlertPath:      cfg.HTTP.AlertPath,
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		MetricsEnabled: cfg.HTTP.MetricsEnabled,
		Version:        cfg.Version,
	}, api.CheckFunc(backend.Name, backend.HealthCheck))
	app.httpServer = api.NewServer(cfg.HTTP.Port, handler)

	if cfg.Telegram.Enabled {
		app.bot = bot.NewTelegramBot(cfg, app.sender, &bot.Dependencies{
			Store:   backend.Store,
			Status:  app.engine,
			NextRun: app.nextPoll,
		})
	} else {
		logger.Warn("⚠️ Telegram отключен: команды и уведомления не работают")
	}

	return nil
}

// nextPoll время следующего опроса для /status
func (app *Application) nextPoll() time.Time {
	if app.scheduler == nil {
		return time.Time{}
	}
	for _, job := range app.scheduler.Jobs() {
		if job.Name == JobSentimentPoll {
			return job.NextRun
		}
	}
	return time.Time{}
}

// start запускает компоненты после Initialize
func (app *Application) start() error {
	ctx, cancel := context.WithCancel(context.Background())
	app.cancel = cancel

	app.notifier.Start(ctx)
	app.httpServer.Start()
	app.scheduler.Start(ctx)

	if app.bot != nil {
		if err := app.bot.Start(ctx); err != nil {
			return fmt.Errorf("telegram bot: %w", err)
		}
	}
	return nil
}

// stopComponents останавливает компоненты в обратном порядке
func (app *Application) stopComponents() {
	if app.bot != nil {
		if err := app.bot.Stop(); err != nil {
			app.logger.Printf("⚠️  Ошибка остановки бота: %v", err)
		}
	}

	if app.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := app.httpServer.Stop(ctx); err != nil {
			app.logger.Printf("⚠️  Ошибка остановки HTTP сервера: %v", err)
		}
		cancel()
	}

	if app.scheduler != nil {
		app.scheduler.Stop()
	}
	if app.notifier != nil {
		app.notifier.Stop()
	}
	if app.cancel != nil {
		app.cancel()
	}
	if app.recipients != nil {
		if err := app.recipients.Close(); err != nil {
			app.logger.Printf("⚠️  Ошибка закрытия хранилища получателя: %v", err)
		}
	}
}
