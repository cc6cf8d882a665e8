package service

import (
	"context"
	"errors"

	"ERPAdmin/internal/cli/api"
	"ERPAdmin/internal/cli/model"
)

// ErrNotAuthenticated — нет действующей сессии оператора.
var ErrNotAuthenticated = errors.New("not authenticated")

// AuthService описывает юзкейс-уровень аутентификации для CLI.
type AuthService interface {
	// Login входит под учётной записью администратора и возвращает CurrentUser.
	Login(ctx context.Context, email, password string) (model.User, error)

	// Logout отзывает сессию на сервере и всегда очищает её локально.
	Logout(ctx context.Context) error

	// CurrentUser возвращает сохранённого пользователя без обращения к серверу.
	CurrentUser() (model.User, bool)

	// CheckAuth проверяет сохранённую сессию на сервере.
	CheckAuth(ctx context.Context) (model.User, error)
}

// AuthServiceRemote — реализация AuthService поверх admin API.
type AuthServiceRemote struct {
	client *api.Client
}

// NewAuthService конструктор сервиса аутентификации.
func NewAuthService(c *api.Client) AuthService {
	return &AuthServiceRemote{client: c}
}

// Login: при неудаче сессия остаётся прежней.
func (s *AuthServiceRemote) Login(ctx context.Context, email, password string) (model.User, error) {
	res, err := s.client.Login(ctx, email, password)
	if err != nil {
		return model.User{}, err
	}
	// Client.Login принимает только ответ с admin или user
	u, _ := res.Principal()
	return u, nil
}

// Logout: ошибка сервера возвращается, но локальная сессия уже очищена.
func (s *AuthServiceRemote) Logout(ctx context.Context) error {
	_, err := s.client.Logout(ctx)
	return err
}

// CurrentUser из локального хранилища.
func (s *AuthServiceRemote) CurrentUser() (model.User, bool) {
	return s.client.Tokens().CurrentUser()
}

// CheckAuth: без сохранённого пользователя сеть не трогаем. Если сервер отверг
// сессию, она очищается и возвращается ErrNotAuthenticated. Сетевой сбой сессию не трогает.
func (s *AuthServiceRemote) CheckAuth(ctx context.Context) (model.User, error) {
	tokens := s.client.Tokens()
	if _, ok := tokens.CurrentUser(); !ok {
		return model.User{}, ErrNotAuthenticated
	}

	me, err := s.client.Me(ctx)
	if api.IsCode(err, api.CodeNetworkError) {
		return model.User{}, err
	}
	if err != nil || me.Admin == nil {
		if cerr := tokens.ClearSession(); cerr != nil {
			s.client.Logger().Warnw("failed to clear rejected session", "error", cerr)
		}
		if err != nil {
			return model.User{}, errors.Join(ErrNotAuthenticated, err)
		}
		return model.User{}, ErrNotAuthenticated
	}

	u := me.Admin.AsUser()
	if err := tokens.SetCurrentUser(u); err != nil {
		return u, err
	}
	return u, nil
}
