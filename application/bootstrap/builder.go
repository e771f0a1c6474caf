// application/bootstrap/builder.go
package bootstrap

import (
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"

	"fx-sentiment-bot/internal/infrastructure/config"
)

const shutdownTimeout = 30 * time.Second

// awaitShutdown блокируется до сигнала и останавливает компоненты.
// Если остановка не уложилась в timeout, выходим без ожидания.
func (app *Application) awaitShutdown(timeout time.Duration) {
	sig := <-app.stopChan
	app.logger.Printf("🛑 Сигнал %v, остановка (таймаут %v)...", sig, timeout)

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)

		app.mu.Lock()
		defer app.mu.Unlock()
		if !app.running {
			return
		}
		app.stopComponents()
		app.running = false
	}()

	select {
	case <-stopped:
		app.logger.Printf("✅ Остановлено, время работы %v", time.Since(app.startTime).Round(time.Second))
	case <-time.After(timeout):
		app.logger.Println("⚠️  Остановка не завершилась вовремя")
	}
}

// Run инициализирует (если нужно) и запускает приложение,
// затем блокируется до Stop или сигнала ОС
func (app *Application) Run() error {
	app.mu.Lock()
	if app.running {
		app.mu.Unlock()
		return errors.New("приложение уже запущено")
	}

	if app.engine == nil {
		if err := app.Initialize(); err != nil {
			app.mu.Unlock()
			return fmt.Errorf("инициализация приложения: %w", err)
		}
	}

	if err := app.start(); err != nil {
		app.stopComponents()
		app.mu.Unlock()
		return fmt.Errorf("запуск приложения: %w", err)
	}
	app.running = true
	app.startTime = time.Now()
	app.mu.Unlock()

	app.logger.Println("🚀 Приложение запущено")
	app.awaitShutdown(shutdownTimeout)
	return nil
}

// Status статус приложения
func (app *Application) Status() map[string]interface{} {
	app.mu.RLock()
	defer app.mu.RUnlock()

	status := map[string]interface{}{
		"running":   app.running,
		"uptime":    time.Since(app.startTime).String(),
		"startTime": app.startTime.Format(time.RFC3339),
		"config": map[string]interface{}{
			"telegram_enabled": app.config.Telegram.Enabled,
			"poll_interval":    app.config.Poll.Interval.String(),
			"log_level":        app.config.Logging.Level,
		},
	}

	if app.scheduler != nil {
		jobs := make(map[string]string)
		for _, j := range app.scheduler.Jobs() {
			jobs[j.Name] = fmt.Sprintf("%s, runs=%d", j.Schedule, j.Runs)
		}
		status["jobs"] = jobs
	}
	if app.notifier != nil {
		status["queued_notifications"] = app.notifier.Pending()
	}
	return status
}

// Stop просит Run завершиться; не блокирует
func (app *Application) Stop() error {
	select {
	case app.stopChan <- syscall.SIGTERM:
	default:
	}
	return nil
}

// StopChan канал для передачи сигналов ОС
func (app *Application) StopChan() chan<- os.Signal {
	return app.stopChan
}

// AppBuilder собирает Application из конфигурации и опций
type AppBuilder struct {
	config  *config.Config
	options []AppOption
}

// AppOption меняет приложение до Initialize
type AppOption func(*Application) error

// NewAppBuilder создает строитель
func NewAppBuilder() *AppBuilder {
	return &AppBuilder{}
}

// WithConfig устанавливает конфигурацию
func (b *AppBuilder) WithConfig(cfg *config.Config) *AppBuilder {
	b.config = cfg
	return b
}

// WithOption добавляет опцию
func (b *AppBuilder) WithOption(option AppOption) *AppBuilder {
	b.options = append(b.options, option)
	return b
}

// WithTestMode см. опцию WithTestMode
func (b *AppBuilder) WithTestMode(enabled bool) *AppBuilder {
	b.options = append(b.options, WithTestMode(enabled))
	return b
}

// Build строит приложение
func (b *AppBuilder) Build() (*Application, error) {
	if b.config == nil {
		return nil, errors.New("конфигурация не задана")
	}

	app, err := NewApplication(b.config)
	if err != nil {
		return nil, fmt.Errorf("создание приложения: %w", err)
	}

	for i, option := range b.options {
		if err := option(app); err != nil {
			return nil, fmt.Errorf("опция #%d: %w", i+1, err)
		}
	}

	return app, nil
}

// WithTestMode отправка в Telegram заменяется записью в лог
func WithTestMode(enabled bool) AppOption {
	return func(app *Application) error {
		if enabled {
			app.logger.Println("🧪 Тестовый режим включен")
			app.config.Telegram.TestMode = true
		}
		return nil
	}
}
