// pkg/logger/logger.go

package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Уровни логирования
const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

const timeFormat = "2006-01-02 15:04:05"

type Logger struct {
	logFile   *os.File
	zl        zerolog.Logger
	logLevel  string // Уровень логирования
	debugMode bool
}

// ParseLevel переводит строку уровня в zerolog, неизвестное значение -> info
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// NewLogger создает логгер: консоль + файл (если путь задан)
func NewLogger(logPath string, logLevel string, debug bool) (*Logger, error) {
	console := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: timeFormat,
		NoColor:    !debug,
	}

	var (
		file   *os.File
		writer io.Writer = console
	)
	if logPath != "" {
		if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return nil, err
		}
		file = f
		writer = zerolog.MultiLevelWriter(console, file)
	}

	lvl := ParseLevel(logLevel)
	return &Logger{
		logFile:   file,
		zl:        zerolog.New(writer).With().Timestamp().Logger().Level(lvl),
		logLevel:  strings.ToUpper(lvl.String()),
		debugMode: debug,
	}, nil
}

// NewWriterLogger логгер поверх произвольного writer (тесты, stderr fallback)
func NewWriterLogger(w io.Writer, logLevel string) *Logger {
	lvl := ParseLevel(logLevel)
	return &Logger{
		zl:       zerolog.New(w).With().Timestamp().Logger().Level(lvl),
		logLevel: strings.ToUpper(lvl.String()),
	}
}

// Level текущий уровень
func (l *Logger) Level() zerolog.Level {
	return l.zl.GetLevel()
}

// Методы для разных уровней
func (l *Logger) Debug(format string, v ...interface{}) {
	l.zl.Debug().Msgf(format, v...)
}

func (l *Logger) Info(format string, v ...interface{}) {
	l.zl.Info().Msgf(format, v...)
}

func (l *Logger) Warn(format string, v ...interface{}) {
	l.zl.Warn().Msgf(format, v...)
}

func (l *Logger) Error(format string, v ...interface{}) {
	l.zl.Error().Msgf(format, v...)
}

// Transition пишет смену сигнала инструмента
func (l *Logger) Transition(symbol, from, to string, buyShare string) {
	icon := "🔁"
	switch to {
	case "BUY":
		icon = "📈"
	case "SELL":
		icon = "📉"
	}
	l.zl.Info().
		Str("symbol", symbol).
		Str("from", from).
		Str("to", to).
		Str("buy_share", buyShare).
		Msgf("%s ПЕРЕХОД: %s %s → %s (buy %s%%)", icon, symbol, from, to, buyShare)
}

// Match пишет подтвержденный алерт
func (l *Logger) Match(symbol, label, signal, buyShare string) {
	l.zl.Info().
		Str("symbol", symbol).
		Str("alert", label).
		Str("signal", signal).
		Str("buy_share", buyShare).
		Msgf("🎯 ПОДТВЕРЖДЕНИЕ: %s %s, настроение %s (buy %s%%)", symbol, label, signal, buyShare)
}

func (l *Logger) Close() {
	if l.logFile != nil {
		l.logFile.Close()
	}
}
