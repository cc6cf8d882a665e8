package api

import (
	"context"
	"net/http"

	"ERPAdmin/internal/cli/model"
)

// LoginRequest — учётные данные администратора.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login аутентифицирует оператора. При успехе сохраняет пару токенов и CurrentUser
// до возврата. Неудачный вход, как и ответ без admin/user, не трогает текущую сессию.
func (c *Client) Login(ctx context.Context, email, password string) (model.LoginResult, error) {
	in := LoginRequest{Email: email, Password: password}
	if err := checkStruct(in); err != nil {
		return model.LoginResult{}, err
	}
	res, err := Execute[model.LoginResult](ctx, c, Request{
		Method:    http.MethodPost,
		Path:      PathLogin,
		Body:      in,
		Anonymous: true,
	})
	if err != nil {
		return model.LoginResult{}, err
	}
	if err := validate.Struct(res.TokenPair); err != nil {
		return model.LoginResult{}, &Error{Code: CodeNetworkError, Message: "malformed login response", Status: http.StatusOK, Err: err}
	}
	// без admin/user новая сессия оказалась бы рядом с чужим CurrentUser
	u, ok := res.Principal()
	if !ok {
		return model.LoginResult{}, &Error{Code: CodeNetworkError, Message: "malformed login response: no principal", Status: http.StatusOK}
	}

	if err := c.tokens.SetSession(res.AccessToken, res.RefreshToken); err != nil {
		c.log.Warnw("failed to persist session after login", "error", err)
	}
	if err := c.tokens.SetCurrentUser(u); err != nil {
		c.log.Warnw("failed to persist current user after login", "error", err)
	}
	c.log.Infow("logged in", "email", email)
	return res, nil
}

// Logout отзывает refresh-токен на сервере и всегда очищает локальную сессию,
// даже если сервер недоступен.
func (c *Client) Logout(ctx context.Context) (model.Message, error) {
	res, err := Execute[model.Message](ctx, c, Request{
		Method: http.MethodPost,
		Path:   PathLogout,
		// после refresh на 401 отзываем уже новый refresh-токен
		BodyFn: func() any { return refreshRequest{RefreshToken: c.tokens.Session().RefreshToken} },
	})
	if cerr := c.tokens.ClearSession(); cerr != nil {
		c.log.Warnw("failed to clear session on logout", "error", cerr)
	}
	return res, err
}

// Me возвращает текущего администратора.
func (c *Client) Me(ctx context.Context) (model.MeResult, error) {
	return Execute[model.MeResult](ctx, c, Request{Method: http.MethodGet, Path: PathMe})
}
