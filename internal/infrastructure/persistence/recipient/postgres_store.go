// internal/infrastructure/persistence/recipient/postgres_store.go
package recipient

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// PostgresStore хранит chat id в таблице recipient (одна строка, id = 1).
// Таблицу создает DatabaseService при старте.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore создает хранилище поверх пула sqlx
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Get читает chat id
func (s *PostgresStore) Get(ctx context.Context) (int64, bool, error) {
	var chatID int64
	err := s.db.GetContext(ctx, &chatID, `SELECT chat_id FROM recipient WHERE id = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("select recipient: %w", err)
	}
	return chatID, true, nil
}

// Set сохраняет или заменяет chat id
func (s *PostgresStore) Set(ctx context.Context, chatID int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO recipient (id, chat_id, updated_at) VALUES (1, $1, NOW())
		ON CONFLICT (id) DO UPDATE SET chat_id = EXCLUDED.chat_id, updated_at = NOW()`,
		chatID)
	if err != nil {
		return fmt.Errorf("upsert recipient: %w", err)
	}
	return nil
}

// ClearIf удаляет запись, если в ней записан chatID
func (s *PostgresStore) ClearIf(ctx context.Context, chatID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM recipient WHERE id = 1 AND chat_id = $1`, chatID)
	if err != nil {
		return false, fmt.Errorf("delete recipient: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete recipient: %w", err)
	}
	return n > 0, nil
}
