// internal/delivery/telegram/app/bot/message_sender/utils.go
package message_sender

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"unicode/utf8"
)

// GetMessageHash создает хэш для проверки дубликатов
func GetMessageHash(chatID int64, text string) string {
	sum := sha256.Sum256([]byte(strconv.FormatInt(chatID, 10) + ":" + text))
	return hex.EncodeToString(sum[:])
}

// ParseChatID преобразует строковый chat ID в int64, 0 при ошибке
func ParseChatID(chatID string) int64 {
	cleanID := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(chatID), "@"))
	if cleanID == "" {
		return 0
	}

	result, err := strconv.ParseInt(cleanID, 10, 64)
	if err != nil {
		return 0
	}
	return result
}

// preview обрезает текст для логов по границе руны
func preview(text string, n int) string {
	text = strings.ReplaceAll(text, "\n", " ")
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	runes := []rune(text)
	return string(runes[:n]) + "..."
}
