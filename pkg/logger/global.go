// pkg/logger/global.go
package logger

import (
	"os"
)

// До InitGlobal пишем в stderr, чтобы ранние ошибки не терялись
var globalLogger = NewWriterLogger(os.Stderr, LevelInfo)

func InitGlobal(logPath, logLevel string, debug bool) error {
	l, err := NewLogger(logPath, logLevel, debug)
	if err != nil {
		return err
	}
	globalLogger = l
	return nil
}

// SetGlobal подменяет глобальный логгер (тесты)
func SetGlobal(l *Logger) {
	if l != nil {
		globalLogger = l
	}
}

// Глобальные методы для удобства
func Debug(format string, v ...interface{}) {
	globalLogger.Debug(format, v...)
}

func Info(format string, v ...interface{}) {
	globalLogger.Info(format, v...)
}

func Warn(format string, v ...interface{}) {
	globalLogger.Warn(format, v...)
}

func Error(format string, v ...interface{}) {
	globalLogger.Error(format, v...)
}

func Transition(symbol, from, to, buyShare string) {
	globalLogger.Transition(symbol, from, to, buyShare)
}

func Match(symbol, label, signal, buyShare string) {
	globalLogger.Match(symbol, label, signal, buyShare)
}

func Close() {
	globalLogger.Close()
}
