package bootstrap

import (
	"context"
	"fmt"

	"ERPAdmin/internal/cli/api"
	"ERPAdmin/internal/cli/auth"
	"ERPAdmin/internal/cli/crypto"
	"ERPAdmin/internal/cli/repo"
	fsrepo "ERPAdmin/internal/cli/repo/fs"
	reporedis "ERPAdmin/internal/cli/repo/redis"
	reposqlite "ERPAdmin/internal/cli/repo/sqlite"
	"ERPAdmin/internal/config"

	"go.uber.org/zap"
)

func noop() error { return nil }

// OpenStorage открывает хранилище сессии, выбранное в конфигурации,
// и возвращает (storage, cleanup, error). cleanup закрывает соединения с БД/Redis.
// При cfg.EncryptSession значения шифруются ключом из cfg.SessionDir.
func OpenStorage(ctx context.Context, cfg *config.Config) (repo.SessionStorage, func() error, error) {
	s, cleanup, err := openBackend(ctx, cfg)
	if err != nil || !cfg.EncryptSession {
		return s, cleanup, err
	}
	key, err := crypto.LoadOrCreateKey(cfg.SessionDir)
	if err != nil {
		_ = cleanup()
		return nil, nil, fmt.Errorf("load session key: %w", err)
	}
	sealed, err := crypto.NewSealedStorage(s, key)
	if err != nil {
		_ = cleanup()
		return nil, nil, err
	}
	return sealed, cleanup, nil
}

func openBackend(ctx context.Context, cfg *config.Config) (repo.SessionStorage, func() error, error) {
	switch cfg.SessionStore {
	case config.StoreSQLite:
		s, err := reposqlite.Open(cfg.SessionDBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open session db: %w", err)
		}
		if err := s.Migrate(); err != nil {
			_ = s.Close()
			return nil, nil, fmt.Errorf("migrate session db: %w", err)
		}
		return s, s.Close, nil
	case config.StoreRedis:
		s, err := reporedis.Dial(ctx, cfg.RedisAddr, cfg.RedisPrefix)
		if err != nil {
			return nil, nil, fmt.Errorf("connect session redis: %w", err)
		}
		return s, s.Close, nil
	default:
		s, err := fsrepo.NewSessionFSStore(cfg.SessionDir)
		if err != nil {
			return nil, nil, fmt.Errorf("open session dir: %w", err)
		}
		return s, noop, nil
	}
}

// OpenClient собирает клиент admin API поверх хранилища сессии из конфигурации.
// cleanup необходимо вызвать после окончания работы с клиентом.
func OpenClient(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger, opts ...api.Option) (*api.Client, func() error, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	storage, cleanup, err := OpenStorage(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	logger.Debugw("session storage opened", "store", cfg.SessionStore)

	tokens := auth.NewTokenStore(storage, logger)
	base := []api.Option{
		api.WithTimeout(cfg.RequestTimeout),
		api.WithLogger(logger),
		api.WithRefreshCoalescing(cfg.CoalesceRefresh),
	}
	return api.NewClient(cfg.APIURL, tokens, append(base, opts...)...), cleanup, nil
}
