package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"ERPAdmin/internal/cli/auth"
	"ERPAdmin/internal/cli/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rotatingBackend — минимальный backend: /probe принимает только текущий access-токен,
// /admin/auth/refresh выдаёт новую пару.
type rotatingBackend struct {
	mu            sync.Mutex
	access        string
	refresh       string
	refreshFails  bool
	refreshDelay  time.Duration
	probeCalls    atomic.Int32
	refreshCalls  atomic.Int32
	authSeen      []string
	alwaysReject  bool
	acceptAnyRT   bool
	beforeRefused func()
}

func (b *rotatingBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case PathRefresh:
		b.refreshCalls.Add(1)
		if b.refreshDelay > 0 {
			time.Sleep(b.refreshDelay)
		}
		if r.Header.Get("Authorization") != "" {
			writeFail(w, http.StatusBadRequest, "UNEXPECTED_AUTH", "refresh must not carry bearer")
			return
		}
		var body struct {
			RefreshToken string `json:"refreshToken"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.refreshFails || (!b.acceptAnyRT && body.RefreshToken != b.refresh) {
			writeFail(w, http.StatusUnauthorized, "INVALID_REFRESH_TOKEN", "refresh token revoked")
			return
		}
		n := b.refreshCalls.Load()
		b.access = "access-" + string(rune('A'+n))
		b.refresh = "refresh-" + string(rune('A'+n))
		writeOK(w, model.TokenPair{AccessToken: b.access, RefreshToken: b.refresh, ExpiresIn: 900})
	case "/probe":
		b.probeCalls.Add(1)
		got := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		b.mu.Lock()
		b.authSeen = append(b.authSeen, got)
		ok := got == b.access && !b.alwaysReject
		b.mu.Unlock()
		if !ok {
			if b.beforeRefused != nil {
				b.beforeRefused()
			}
			writeFail(w, http.StatusUnauthorized, "TOKEN_EXPIRED", "access token expired")
			return
		}
		writeOK(w, map[string]string{"pong": got})
	default:
		http.NotFound(w, r)
	}
}

func probe(ctx context.Context, c *Client) (map[string]string, error) {
	return Execute[map[string]string](ctx, c, Request{Method: http.MethodGet, Path: "/probe"})
}

func TestDo_AttachesBearerAndRequestID(t *testing.T) {
	var authz, reqID, ctype string
	c, tokens, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authz = r.Header.Get("Authorization")
		reqID = r.Header.Get("X-Request-ID")
		ctype = r.Header.Get("Content-Type")
		writeOK(w, map[string]string{"ok": "1"})
	}))
	require.NoError(t, tokens.SetSession("tok123", "ref123"))

	_, err := Execute[map[string]string](context.Background(), c, Request{Path: "/x"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok123", authz)
	assert.Len(t, reqID, 36)
	assert.Equal(t, "application/json", ctype)
}

func TestDo_NoTokenNoAuthorizationHeader(t *testing.T) {
	c, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a := r.Header.Get("Authorization"); a != "" {
			t.Errorf("Authorization must be empty, got %q", a)
		}
		writeOK(w, nil)
	}))
	_, err := c.Do(context.Background(), Request{Path: "/x"})
	require.NoError(t, err)
}

func TestDo_CustomHeadersAndQuery(t *testing.T) {
	c, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "yes", r.Header.Get("X-Trace"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		writeOK(w, nil)
	}))
	_, err := c.Do(context.Background(), Request{
		Path:   "/x",
		Query:  query{}.withInt("page", 2).withInt("pageSize", 0).values(),
		Header: http.Header{"X-Trace": []string{"yes"}},
	})
	require.NoError(t, err)
}

func TestDo_NetworkError_NoRetry(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	addr := ts.URL
	ts.Close()

	tokens, _ := newTokens(t)
	require.NoError(t, tokens.SetSession("a", "r"))
	c := NewClient(addr, tokens)

	_, err := probe(context.Background(), c)
	require.Error(t, err)
	assert.Equal(t, CodeNetworkError, ErrorCode(err))
	// сессия не тронута
	assert.Equal(t, auth.Session{AccessToken: "a", RefreshToken: "r"}, tokens.Session())
}

func TestExecute_MalformedResponseIsNetworkError(t *testing.T) {
	c, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))
	_, err := probe(context.Background(), c)
	require.Error(t, err)
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, CodeNetworkError, apiErr.Code)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
}

func TestDo_Unauthorized_RefreshSucceeds_RetriesExactlyOnce(t *testing.T) {
	b := &rotatingBackend{access: "fresh", refresh: "r0"}
	c, tokens, _ := newTestClient(t, b)
	require.NoError(t, tokens.SetSession("stale", "r0"))

	res, err := probe(context.Background(), c)
	require.NoError(t, err)

	assert.EqualValues(t, 2, b.probeCalls.Load())
	assert.EqualValues(t, 1, b.refreshCalls.Load())
	assert.Equal(t, []string{"stale", "access-B"}, b.authSeen)
	assert.Equal(t, "access-B", res["pong"])
	assert.Equal(t, auth.Session{AccessToken: "access-B", RefreshToken: "refresh-B"}, tokens.Session())
}

func TestDo_Unauthorized_RefreshFails_SessionExpired(t *testing.T) {
	b := &rotatingBackend{access: "fresh", refresh: "r0", refreshFails: true}
	var hookCalls int
	c, tokens, _ := newTestClient(t, b, WithSessionExpiredHook(func() { hookCalls++ }))
	require.NoError(t, tokens.SetSession("stale", "r0"))
	require.NoError(t, tokens.SetCurrentUser(model.User{ID: "u1"}))

	_, err := probe(context.Background(), c)
	require.Error(t, err)
	assert.True(t, IsCode(err, CodeSessionExpired))
	assert.EqualValues(t, 1, b.probeCalls.Load())
	assert.EqualValues(t, 1, b.refreshCalls.Load())
	assert.Equal(t, 1, hookCalls)

	assert.Equal(t, auth.Session{}, tokens.Session())
	_, ok := tokens.CurrentUser()
	assert.False(t, ok)
}

func TestDo_Unauthorized_NoRefreshToken_PassThrough(t *testing.T) {
	b := &rotatingBackend{access: "fresh", refresh: "r0"}
	var hookCalls int
	c, _, _ := newTestClient(t, b, WithSessionExpiredHook(func() { hookCalls++ }))

	resp, err := c.Do(context.Background(), Request{Path: "/probe"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.Status)

	_, err = Decode[map[string]string](resp)
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "TOKEN_EXPIRED", apiErr.Code)
	assert.Equal(t, "access token expired", apiErr.Message)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)

	assert.EqualValues(t, 0, b.refreshCalls.Load())
	assert.Equal(t, 0, hookCalls)
}

func TestDo_Unauthorized_AccessOnlyInStorage_PassThrough(t *testing.T) {
	b := &rotatingBackend{access: "fresh", refresh: "r0"}
	ts := httptest.NewServer(b)
	defer ts.Close()
	tokens, st := newTokens(t)
	require.NoError(t, st.Set(auth.AccessTokenKey, "stale"))
	c := NewClient(ts.URL, tokens)

	_, err := probe(context.Background(), c)
	assert.Equal(t, "TOKEN_EXPIRED", ErrorCode(err))
	assert.EqualValues(t, 0, b.refreshCalls.Load())
	assert.EqualValues(t, 1, b.probeCalls.Load())
}

func TestDo_RetryAlsoUnauthorized_NoSecondRefresh(t *testing.T) {
	b := &rotatingBackend{access: "fresh", refresh: "r0", alwaysReject: true}
	c, tokens, _ := newTestClient(t, b)
	require.NoError(t, tokens.SetSession("stale", "r0"))

	_, err := probe(context.Background(), c)
	require.Error(t, err)
	assert.Equal(t, "TOKEN_EXPIRED", ErrorCode(err))
	assert.EqualValues(t, 2, b.probeCalls.Load())
	assert.EqualValues(t, 1, b.refreshCalls.Load())
	// обновлённая пара остаётся сохранённой
	assert.Equal(t, "access-B", tokens.Session().AccessToken)
}

func TestRefresh_NoRefreshToken_NoNetworkCall(t *testing.T) {
	b := &rotatingBackend{}
	c, _, _ := newTestClient(t, b)

	_, err := c.Refresh(context.Background())
	assert.True(t, IsCode(err, CodeNoRefreshToken))
	assert.EqualValues(t, 0, b.refreshCalls.Load())
}

func TestRefresh_RejectedIsTerminal_AndKeepsSession(t *testing.T) {
	b := &rotatingBackend{refresh: "other"}
	c, tokens, _ := newTestClient(t, b)
	require.NoError(t, tokens.SetSession("a", "r0"))

	_, err := c.Refresh(context.Background())
	assert.Equal(t, "INVALID_REFRESH_TOKEN", ErrorCode(err))
	assert.EqualValues(t, 1, b.refreshCalls.Load())
	// протокол обновления сам сессию не очищает
	assert.Equal(t, auth.Session{AccessToken: "a", RefreshToken: "r0"}, tokens.Session())
}

func TestRefresh_MalformedPairRejected(t *testing.T) {
	c, tokens, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeOK(w, map[string]string{"accessToken": "only-access"})
	}))
	require.NoError(t, tokens.SetSession("a", "r"))

	_, err := c.Refresh(context.Background())
	assert.Equal(t, CodeNetworkError, ErrorCode(err))
	assert.Equal(t, auth.Session{AccessToken: "a", RefreshToken: "r"}, tokens.Session())
}

func TestRefresh_PersistsNewPairBeforeReturn(t *testing.T) {
	b := &rotatingBackend{access: "x", refresh: "r0"}
	ts := httptest.NewServer(b)
	defer ts.Close()
	tokens, st := newTokens(t)
	require.NoError(t, tokens.SetSession("a", "r0"))
	c := NewClient(ts.URL, tokens)

	pair, err := c.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "access-B", pair.AccessToken)

	restarted := auth.NewTokenStore(st, nil)
	assert.Equal(t, auth.Session{AccessToken: "access-B", RefreshToken: "refresh-B"}, restarted.Session())
}

func TestDo_ContextCanceled(t *testing.T) {
	c, tokens, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeOK(w, nil)
	}))
	require.NoError(t, tokens.SetSession("a", "r"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Do(ctx, Request{Path: "/x"})
	assert.Equal(t, CodeNetworkError, ErrorCode(err))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "a", tokens.Session().AccessToken)
}

func TestDo_BodyEncodeError(t *testing.T) {
	c, _, _ := newTestClient(t, http.NotFoundHandler())
	_, err := c.Do(context.Background(), Request{Method: http.MethodPost, Path: "/x", Body: map[string]any{"c": make(chan int)}})
	assert.Equal(t, CodeValidation, ErrorCode(err))
}

// barrier отпускает отказы 401 только когда их накопилось n,
// чтобы все запросы увидели старый токен одновременно.
func barrier(n int) func() {
	var mu sync.Mutex
	arrived := 0
	release := make(chan struct{})
	return func() {
		mu.Lock()
		arrived++
		if arrived == n {
			close(release)
		}
		mu.Unlock()
		<-release
	}
}

func runConcurrentProbes(t *testing.T, c *Client, n int) []error {
	t.Helper()
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = probe(context.Background(), c)
		}(i)
	}
	wg.Wait()
	return errs
}

func TestDo_ConcurrentUnauthorized_RefreshCoalesced(t *testing.T) {
	const n = 5
	b := &rotatingBackend{access: "fresh", refresh: "r0", refreshDelay: 100 * time.Millisecond, beforeRefused: barrier(n)}
	c, tokens, _ := newTestClient(t, b)
	require.NoError(t, tokens.SetSession("stale", "r0"))

	for i, err := range runConcurrentProbes(t, c, n) {
		assert.NoError(t, err, "request %d", i)
	}
	assert.EqualValues(t, 1, b.refreshCalls.Load())
	assert.EqualValues(t, 2*n, b.probeCalls.Load())
}

func TestDo_ConcurrentUnauthorized_WithoutCoalescing(t *testing.T) {
	const n = 3
	b := &rotatingBackend{access: "fresh", refresh: "r0", acceptAnyRT: true, beforeRefused: barrier(n)}
	c, tokens, _ := newTestClient(t, b, WithRefreshCoalescing(false))
	require.NoError(t, tokens.SetSession("stale", "r0"))

	// повтор может снова получить 401, если токен успел смениться; считаем только refresh
	runConcurrentProbes(t, c, n)
	assert.EqualValues(t, n, b.refreshCalls.Load())
}

func TestWithTimeout_AppliesToCopyRegardlessOfOrder(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		writeOK(w, nil)
	}))
	t.Cleanup(ts.Close)
	t.Cleanup(func() { close(release) })

	shared := &http.Client{}
	tokens, _ := newTokens(t)
	c := NewClient(ts.URL, tokens, WithTimeout(50*time.Millisecond), WithHTTPClient(shared))

	assert.Zero(t, shared.Timeout, "caller's client must stay untouched")
	assert.NotSame(t, shared, c.httpClient)
	assert.Equal(t, 50*time.Millisecond, c.httpClient.Timeout)

	_, err := c.Do(context.Background(), Request{Path: "/slow"})
	assert.Equal(t, CodeNetworkError, ErrorCode(err))
}
