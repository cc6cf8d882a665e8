package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"ERPAdmin/internal/cli/model"
	"ERPAdmin/internal/cli/repo"

	"go.uber.org/zap"
)

// Ключи долговременного хранилища.
const (
	AccessTokenKey  = "admin_access_token"
	RefreshTokenKey = "admin_refresh_token"
	UserKey         = "admin_user"
)

// ErrEmptyToken возвращается SetSession, если один из токенов пуст.
var ErrEmptyToken = errors.New("empty token")

// Session — пара непрозрачных токенов текущей сессии.
type Session struct {
	AccessToken  string
	RefreshToken string
}

// TokenStore — единственный владелец Session и CurrentUser.
// Держит копию в памяти и синхронизирует её с SessionStorage.
// После первого чтения или записи копия в памяти авторитетна: если удаление
// из хранилища не удалось, процесс всё равно видит сессию очищенной.
type TokenStore struct {
	mu      sync.Mutex
	storage repo.SessionStorage
	log     *zap.SugaredLogger

	session Session
	loaded  bool

	user       *model.User
	userLoaded bool
}

// NewTokenStore создаёт хранилище токенов поверх storage. logger может быть nil.
func NewTokenStore(storage repo.SessionStorage, logger *zap.SugaredLogger) *TokenStore {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &TokenStore{storage: storage, log: logger}
}

// SetSession перезаписывает оба токена в памяти и в хранилище.
// Ошибка записи в хранилище возвращается, но значения в памяти уже обновлены.
func (s *TokenStore) SetSession(access, refresh string) error {
	if access == "" || refresh == "" {
		return ErrEmptyToken
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = Session{AccessToken: access, RefreshToken: refresh}
	s.loaded = true

	err := errors.Join(
		s.storage.Set(AccessTokenKey, access),
		s.storage.Set(RefreshTokenKey, refresh),
	)
	if err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

// Session возвращает текущие токены, при первом обращении подгружая их из хранилища.
// Отсутствие записей — не ошибка: поля просто пустые.
func (s *TokenStore) Session() Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		return s.session
	}
	access, errA := s.read(AccessTokenKey)
	refresh, errR := s.read(RefreshTokenKey)
	if err := errors.Join(errA, errR); err != nil {
		// не помечаем loaded: следующее обращение попробует снова
		s.log.Warnw("failed to load session from storage", "error", err)
		return Session{}
	}
	s.session = Session{AccessToken: access, RefreshToken: refresh}
	s.loaded = true
	return s.session
}

// ClearSession удаляет токены и CurrentUser из памяти и хранилища под одной блокировкой,
// поэтому никто не увидит частично очищенное состояние. Повторный вызов безопасен.
func (s *TokenStore) ClearSession() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = Session{}
	s.loaded = true
	s.user = nil
	s.userLoaded = true

	if err := s.storage.Delete(AccessTokenKey, RefreshTokenKey, UserKey); err != nil {
		return fmt.Errorf("clear session storage: %w", err)
	}
	return nil
}

// CurrentUser возвращает сохранённого пользователя. Повреждённые данные считаются отсутствием.
func (s *TokenStore) CurrentUser() (model.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.userLoaded {
		raw, err := s.read(UserKey)
		if err != nil {
			s.log.Warnw("failed to load current user", "error", err)
			return model.User{}, false
		}
		s.userLoaded = true
		s.user = nil
		if raw != "" {
			var u model.User
			if err := json.Unmarshal([]byte(raw), &u); err != nil {
				s.log.Debugw("stored user is malformed, ignoring", "error", err)
			} else {
				s.user = &u
			}
		}
	}
	if s.user == nil {
		return model.User{}, false
	}
	return *s.user, true
}

// SetCurrentUser сохраняет пользователя, перезаписывая прежнее значение.
func (s *TokenStore) SetCurrentUser(u model.User) error {
	b, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("marshal current user: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = &u
	s.userLoaded = true
	if err := s.storage.Set(UserKey, string(b)); err != nil {
		return fmt.Errorf("persist current user: %w", err)
	}
	return nil
}

// read возвращает "" для отсутствующего ключа.
func (s *TokenStore) read(key string) (string, error) {
	v, err := s.storage.Get(key)
	if errors.Is(err, repo.ErrNotFound) {
		return "", nil
	}
	return v, err
}
