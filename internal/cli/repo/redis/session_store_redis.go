package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ERPAdmin/internal/cli/repo"

	goredis "github.com/redis/go-redis/v9"
)

const opTimeout = 5 * time.Second

// SessionStoreRedis хранит сессию в Redis под ключами prefix+key.
// Подходит для общих операторских машин, где сессия должна пережить переустановку клиента.
type SessionStoreRedis struct {
	client *goredis.Client
	prefix string
}

var _ repo.SessionStorage = (*SessionStoreRedis)(nil)

// New создаёт хранилище поверх уже сконфигурированного клиента.
func New(client *goredis.Client, prefix string) *SessionStoreRedis {
	return &SessionStoreRedis{client: client, prefix: prefix}
}

// Dial подключается к Redis по адресу и проверяет соединение.
func Dial(ctx context.Context, addr, prefix string) (*SessionStoreRedis, error) {
	client := goredis.NewClient(&goredis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis session store: ping: %w", err)
	}
	return New(client, prefix), nil
}

// Close закрывает клиент Redis.
func (s *SessionStoreRedis) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *SessionStoreRedis) key(k string) string { return s.prefix + k }

// Get возвращает значение ключа или repo.ErrNotFound.
func (s *SessionStoreRedis) Get(key string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	v, err := s.client.Get(ctx, s.key(key)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", repo.ErrNotFound
		}
		return "", fmt.Errorf("redis get %q: %w", key, err)
	}
	return v, nil
}

// Set сохраняет значение без TTL: сессия живёт до явного logout.
func (s *SessionStoreRedis) Set(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

// Delete удаляет все ключи одной командой DEL.
func (s *SessionStoreRedis) Delete(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, s.key(k))
	}
	if err := s.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
