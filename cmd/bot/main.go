// cmd/bot/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fx-sentiment-bot/application/bootstrap"
	"fx-sentiment-bot/internal/infrastructure/config"
	"fx-sentiment-bot/pkg/logger"
)

var (
	version   = "1.0.0"
	buildTime = "неизвестно"
)

func main() {
	var (
		cfgPath     string
		logLevel    string
		testMode    bool
		showHelp    bool
		showVersion bool
	)

	flag.StringVar(&cfgPath, "config", ".env", "Путь к файлу конфигурации")
	flag.StringVar(&logLevel, "log-level", "", "Уровень логирования: debug, info, warn, error (переопределяет .env)")
	flag.BoolVar(&testMode, "test", false, "Тестовый режим: сообщения пишутся в лог вместо Telegram")
	flag.BoolVar(&showHelp, "help", false, "Показать справку")
	flag.BoolVar(&showVersion, "version", false, "Показать версию")
	flag.Parse()

	if showVersion {
		fmt.Printf("FX Sentiment Bot v%s (сборка: %s)\n", version, buildTime)
		return
	}
	if showHelp {
		printHelp()
		return
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		fmt.Printf("❌ Не удалось загрузить конфигурацию: %v\n", err)
		os.Exit(1)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	if err := initLogger(cfg); err != nil {
		fmt.Printf("❌ Не удалось инициализировать логгер: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	logger.Info("🚀 Запуск FX Sentiment Bot v%s", version)
	logger.Info("📅 Время сборки: %s", buildTime)
	cfg.PrintSummary()

	app, err := bootstrap.NewAppBuilder().
		WithConfig(cfg).
		WithTestMode(testMode).
		Build()
	if err != nil {
		logger.Error("❌ Не удалось собрать приложение: %v", err)
		os.Exit(1)
	}

	logger.Info("🔧 Инициализация приложения...")
	if err := app.Initialize(); err != nil {
		logger.Error("❌ Не удалось инициализировать приложение: %v", err)
		os.Exit(1)
	}

	signal.Notify(app.StopChan(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	logger.Info("🛑 Нажмите Ctrl+C для остановки")

	if err := app.Run(); err != nil {
		logger.Error("❌ Ошибка запуска приложения: %v", err)
		os.Exit(1)
	}
}

// initLogger файловый логгер с откатом на консоль
func initLogger(cfg *config.Config) error {
	if err := logger.InitGlobal(cfg.Logging.File, cfg.Logging.Level, cfg.Logging.DebugMode); err != nil {
		fmt.Printf("⚠️  Не удалось открыть файл логов: %v. Переход на консольный...\n", err)
		return logger.InitGlobal("", cfg.Logging.Level, cfg.Logging.DebugMode)
	}
	return nil
}

func printHelp() {
	fmt.Println("FX Sentiment Bot - сверка алертов с настроениями розничных трейдеров")
	fmt.Println()
	fmt.Println("Использование:")
	fmt.Println("  bot [флаги]")
	fmt.Println()
	fmt.Println("Флаги:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Основные переменные окружения:")
	fmt.Println("  FEED_URL, POLL_INTERVAL, POLL_JITTER, PENDING_TIMEOUT")
	fmt.Println("  TG_API_KEY, TELEGRAM_ENABLED, HTTP_PORT, ALERT_PATH")
	fmt.Println("  RECIPIENT_BACKEND (file|redis|postgres)")
}
