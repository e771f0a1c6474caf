// internal/infrastructure/persistence/recipient/file_store.go
package recipient

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// FileStore хранит chat id в текстовом файле
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore создает хранилище; каталог создается при первой записи
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Get читает chat id из файла
func (s *FileStore) Get(ctx context.Context) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *FileStore) read() (int64, bool, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read recipient file: %w", err)
	}

	text := strings.TrimSpace(string(raw))
	if text == "" {
		return 0, false, nil
	}

	chatID, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt recipient file %s: %w", s.path, err)
	}
	return chatID, true, nil
}

// Set записывает chat id через временный файл и rename
func (s *FileStore) Set(ctx context.Context, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create recipient dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".recipient-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(strconv.FormatInt(chatID, 10)); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write recipient: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace recipient file: %w", err)
	}
	return nil
}

// ClearIf удаляет файл, если в нем записан chatID
func (s *FileStore) ClearIf(ctx context.Context, chatID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok, err := s.read()
	if err != nil || !ok || current != chatID {
		return false, err
	}

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("failed to remove recipient file: %w", err)
	}
	return true, nil
}
