package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"ERPAdmin/internal/cli/auth"
	fsrepo "ERPAdmin/internal/cli/repo/fs"

	"github.com/stretchr/testify/require"
)

// newTokens создаёт TokenStore поверх файлового хранилища во временном каталоге.
func newTokens(t *testing.T) (*auth.TokenStore, fsrepo.SessionFSStore) {
	t.Helper()
	st, err := fsrepo.NewSessionFSStore(t.TempDir())
	require.NoError(t, err)
	return auth.NewTokenStore(st, nil), st
}

// newTestClient поднимает httptest-сервер и клиент к нему.
func newTestClient(t *testing.T, h http.Handler, opts ...Option) (*Client, *auth.TokenStore, *httptest.Server) {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	tokens, _ := newTokens(t)
	return NewClient(ts.URL, tokens, opts...), tokens, ts
}

func writeOK(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": data})
}

func writeFail(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   map[string]string{"code": code, "message": msg},
	})
}

func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		t.Errorf("bad json body: %v", err)
	}
	return m
}
