package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ERPAdmin/internal/cli/repo"

	_ "modernc.org/sqlite"
)

// SessionStoreSQLite — хранилище сессии в локальной БД SQLite (таблица session_kv).
type SessionStoreSQLite struct {
	db *sql.DB
}

var _ repo.SessionStorage = (*SessionStoreSQLite)(nil)

// Open открывает (и создаёт при необходимости) файл БД по указанному пути.
func Open(dbPath string) (*SessionStoreSQLite, error) {
	if dbPath == "" {
		return nil, errors.New("empty session db path")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	// одно соединение: запись из нескольких горутин сериализуется самим пулом
	db.SetMaxOpenConns(1)
	return &SessionStoreSQLite{db: db}, nil
}

// Close закрывает соединение с БД.
func (s *SessionStoreSQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Migrate гарантирует наличие необходимых таблиц.
func (s *SessionStoreSQLite) Migrate() error {
	_, err := s.db.Exec(initialDDL())
	return err
}

// Get возвращает значение ключа или repo.ErrNotFound.
func (s *SessionStoreSQLite) Get(key string) (string, error) {
	var v string
	err := s.db.QueryRow(`SELECT value FROM session_kv WHERE key = ?`, key).Scan(&v)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", repo.ErrNotFound
		}
		return "", fmt.Errorf("select session key %q: %w", key, err)
	}
	return v, nil
}

// Set делает upsert значения ключа.
func (s *SessionStoreSQLite) Set(key, value string) error {
	_, err := s.db.Exec(`INSERT INTO session_kv(key, value, updated_at) VALUES(?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert session key %q: %w", key, err)
	}
	return nil
}

// Delete удаляет ключи в одной транзакции.
func (s *SessionStoreSQLite) Delete(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	for _, k := range keys {
		if _, err := tx.Exec(`DELETE FROM session_kv WHERE key = ?`, k); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("delete session key %q: %w", k, err)
		}
	}
	return tx.Commit()
}
