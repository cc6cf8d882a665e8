package fs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"ERPAdmin/internal/cli/repo"
)

// SessionFSStore — файловое хранилище сессии для CLI: один ключ — один файл в каталоге Dir.
type SessionFSStore struct {
	Dir string
}

var _ repo.SessionStorage = SessionFSStore{}

var keyRe = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// DefaultDir возвращает каталог ERPAdmin в пользовательском конфиг-каталоге.
func DefaultDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "ERPAdmin"), nil
}

// NewSessionFSStore создаёт хранилище; пустой dir означает DefaultDir.
func NewSessionFSStore(dir string) (SessionFSStore, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return SessionFSStore{}, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return SessionFSStore{}, fmt.Errorf("create session dir: %w", err)
	}
	return SessionFSStore{Dir: dir}, nil
}

func (s SessionFSStore) keyPath(key string) (string, error) {
	if !keyRe.MatchString(key) {
		return "", fmt.Errorf("invalid session key: %q", key)
	}
	return filepath.Join(s.Dir, key), nil
}

// Get читает значение ключа из файла.
func (s SessionFSStore) Get(key string) (string, error) {
	p, err := s.keyPath(key)
	if err != nil {
		return "", err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", repo.ErrNotFound
		}
		return "", err
	}
	// обрезаем завершающие переводы строки/пробелы
	v := strings.TrimRight(string(b), " \t\r\n")
	if v == "" {
		return "", repo.ErrNotFound
	}
	return v, nil
}

// Set сохраняет значение ключа в файл с правами 0600.
func (s SessionFSStore) Set(key, value string) error {
	p, err := s.keyPath(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0o700); err != nil {
		return err
	}
	return os.WriteFile(p, []byte(value), 0o600)
}

// Delete удаляет файлы ключей; отсутствующие файлы пропускаются.
func (s SessionFSStore) Delete(keys ...string) error {
	var errs []error
	for _, k := range keys {
		p, err := s.keyPath(k)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
