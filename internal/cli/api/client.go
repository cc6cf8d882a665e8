package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ERPAdmin/internal/cli/auth"
	"ERPAdmin/internal/cli/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Client — шлюз ко всем вызовам admin API: подставляет bearer-токен и один раз
// прозрачно обновляет сессию при 401.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	tokens     *auth.TokenStore
	log        *zap.SugaredLogger

	onExpired func()
	coalesce  bool
	refreshes singleflight.Group
}

// Option настраивает Client.
type Option func(*Client)

// WithHTTPClient подменяет HTTP-клиент.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout задаёт таймаут одного HTTP-запроса. 0 — без таймаута.
// Применяется к копии HTTP-клиента независимо от порядка опций.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLogger задаёт логгер.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithSessionExpiredHook вызывается после очистки сессии из-за неудачного refresh:
// здесь UI отправляет оператора на повторный вход.
func WithSessionExpiredHook(fn func()) Option {
	return func(c *Client) { c.onExpired = fn }
}

// WithRefreshCoalescing включает (по умолчанию) или выключает склейку
// параллельных refresh с одним и тем же refresh-токеном в один запрос.
func WithRefreshCoalescing(on bool) Option {
	return func(c *Client) { c.coalesce = on }
}

// NewClient создаёт клиент для baseURL (например, http://localhost:3000).
func NewClient(baseURL string, tokens *auth.TokenStore, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		tokens:     tokens,
		log:        zap.NewNop().Sugar(),
		coalesce:   true,
	}
	for _, o := range opts {
		o(c)
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c
}

// Tokens возвращает хранилище токенов клиента.
func (c *Client) Tokens() *auth.TokenStore { return c.tokens }

// Logger возвращает логгер клиента.
func (c *Client) Logger() *zap.SugaredLogger { return c.log }

// Request описывает один логический вызов API.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	Header http.Header

	// BodyFn, если задан, строит тело заново на каждую попытку (после refresh
	// тело может зависеть от новой пары токенов). Body при этом игнорируется.
	BodyFn func() any

	// Anonymous: не подставлять токен и не пытаться обновить сессию при 401.
	Anonymous bool
}

// RawResponse — ответ сервера до разбора конверта.
type RawResponse struct {
	Status int
	Header http.Header
	Body   []byte
}

// requestState — состояние одного логического запроса.
// stateRetryingAfterRefresh достижимо не более одного раза и терминально.
type requestState int

const (
	stateDirect requestState = iota
	stateRetryingAfterRefresh
)

func (s requestState) String() string {
	if s == stateRetryingAfterRefresh {
		return "retrying_after_refresh"
	}
	return "direct"
}

// Do выполняет запрос с авторизацией. Возвращаемая ошибка всегда *Error:
// NETWORK_ERROR для сбоев транспорта, SESSION_EXPIRED если сессию не удалось обновить.
// Любой полученный ответ (в том числе 401 без refresh-токена) возвращается как есть.
func (c *Client) Do(ctx context.Context, req Request) (*RawResponse, error) {
	body, err := req.encode()
	if err != nil {
		return nil, err
	}

	var sess auth.Session
	if !req.Anonymous {
		sess = c.tokens.Session()
	}

	state := stateDirect
	for {
		if state == stateRetryingAfterRefresh && req.BodyFn != nil {
			if body, err = req.encode(); err != nil {
				return nil, err
			}
		}
		resp, err := c.send(ctx, req, body, sess.AccessToken, state)
		if err != nil {
			return nil, networkError(err)
		}
		if resp.Status != http.StatusUnauthorized || req.Anonymous ||
			state == stateRetryingAfterRefresh || sess.RefreshToken == "" {
			return resp, nil
		}

		if cur, ok := c.rotatedSince(sess); ok {
			// сессию уже обновил параллельный запрос
			c.log.Debugw("access token rotated concurrently, retrying", "path", req.Path)
			sess = cur
			state = stateRetryingAfterRefresh
			continue
		}

		if _, err := c.Refresh(ctx); err != nil {
			if ctx.Err() != nil {
				// отмена вызывающим — не повод завершать сессию
				return nil, networkError(ctx.Err())
			}
			if cur, ok := c.rotatedSince(sess); ok {
				// отклонён уже использованный refresh-токен, а новая пара на месте
				sess = cur
				state = stateRetryingAfterRefresh
				continue
			}
			return nil, c.expireSession(err)
		}
		sess = c.tokens.Session()
		state = stateRetryingAfterRefresh
	}
}

// encode сериализует тело запроса для очередной попытки.
func (r Request) encode() ([]byte, error) {
	v := r.Body
	if r.BodyFn != nil {
		v = r.BodyFn()
	}
	b, err := encodeBody(v)
	if err != nil {
		return nil, validationError("cannot encode request body", err)
	}
	return b, nil
}

// rotatedSince сообщает, сменил ли параллельный refresh пару после отправки запроса с sess.
func (c *Client) rotatedSince(sess auth.Session) (auth.Session, bool) {
	if !c.coalesce {
		return auth.Session{}, false
	}
	cur := c.tokens.Session()
	return cur, cur.AccessToken != "" && cur.AccessToken != sess.AccessToken
}

// Refresh обменивает refresh-токен на новую пару и сохраняет её до возврата.
// Запрос уходит напрямую, минуя обработку 401 в Do, поэтому рекурсии нет.
// Сессию при ошибке не очищает — это решает вызывающий код.
func (c *Client) Refresh(ctx context.Context) (model.TokenPair, error) {
	rt := c.tokens.Session().RefreshToken
	if rt == "" {
		return model.TokenPair{}, &Error{Code: CodeNoRefreshToken, Message: msgNoRefreshToken}
	}
	if !c.coalesce {
		return c.refresh(ctx, rt)
	}

	ch := c.refreshes.DoChan(rt, func() (any, error) {
		return c.refresh(context.WithoutCancel(ctx), rt)
	})
	select {
	case <-ctx.Done():
		return model.TokenPair{}, networkError(ctx.Err())
	case res := <-ch:
		if res.Shared {
			c.log.Debugw("refresh coalesced with concurrent request")
		}
		if res.Err != nil {
			return model.TokenPair{}, res.Err
		}
		return res.Val.(model.TokenPair), nil
	}
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (c *Client) refresh(ctx context.Context, refreshToken string) (model.TokenPair, error) {
	body, err := encodeBody(refreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return model.TokenPair{}, validationError("cannot encode request body", err)
	}
	c.log.Infow("refreshing session")

	resp, err := c.send(ctx, Request{Method: http.MethodPost, Path: PathRefresh}, body, "", stateDirect)
	if err != nil {
		return model.TokenPair{}, networkError(err)
	}
	pair, err := Decode[model.TokenPair](resp)
	if err != nil {
		c.log.Warnw("session refresh rejected", "status", resp.Status, "code", ErrorCode(err))
		return model.TokenPair{}, err
	}
	if err := validate.Struct(pair); err != nil {
		return model.TokenPair{}, &Error{Code: CodeNetworkError, Message: "malformed refresh response", Status: resp.Status, Err: err}
	}
	if err := c.tokens.SetSession(pair.AccessToken, pair.RefreshToken); err != nil {
		// значения в памяти уже обновлены, повтор запроса их увидит
		c.log.Warnw("failed to persist refreshed session", "error", err)
	}
	return pair, nil
}

// expireSession очищает сессию после неудачного refresh и уведомляет UI.
func (c *Client) expireSession(cause error) *Error {
	c.log.Warnw("session expired, clearing local session", "cause", cause)
	if err := c.tokens.ClearSession(); err != nil {
		c.log.Warnw("failed to clear session storage", "error", err)
	}
	if c.onExpired != nil {
		c.onExpired()
	}
	return &Error{
		Code:    CodeSessionExpired,
		Message: msgSessionExpired,
		Status:  http.StatusUnauthorized,
		Err:     cause,
	}
}

// send выполняет ровно один HTTP-запрос.
func (c *Client) send(ctx context.Context, req Request, body []byte, token string, state requestState) (*RawResponse, error) {
	u := c.baseURL + req.Path
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	requestID := uuid.NewString()
	httpReq.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.log.Debugw("request failed", "method", method, "path", req.Path, "request_id", requestID, "error", err)
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	c.log.Debugw("request done",
		"method", method,
		"path", req.Path,
		"status", resp.StatusCode,
		"state", state.String(),
		"request_id", requestID,
		"duration", time.Since(start),
	)
	return &RawResponse{Status: resp.StatusCode, Header: resp.Header, Body: respBody}, nil
}

func encodeBody(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}
