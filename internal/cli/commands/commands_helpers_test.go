package commands

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"ERPAdmin/internal/config"
	"ERPAdmin/internal/fakeapi"
)

// withTempConfig переопределяет пользовательские каталоги на время теста,
// чтобы артефакты сессии создавались в temp.
func withTempConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if runtime.GOOS == "windows" {
		t.Setenv("APPDATA", dir)
	} else {
		t.Setenv("XDG_CONFIG_HOME", dir)
	}
	return dir
}

// перехват stdout на время теста
func withStdoutCapture(t *testing.T, fn func()) string {
	t.Helper()
	old := Out
	var buf bytes.Buffer
	Out = &buf
	defer func() { Out = old }()
	fn()
	return buf.String()
}

// newFakeBackend поднимает fake admin API и конфиг, указывающий на него.
func newFakeBackend(t *testing.T) (*config.Config, *fakeapi.Server, *httptest.Server) {
	t.Helper()
	dir := withTempConfig(t)
	srv, err := fakeapi.Sample(time.Now())
	if err != nil {
		t.Fatalf("fake backend: %v", err)
	}
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	cfg := &config.Config{
		APIURL:          ts.URL,
		SessionStore:    config.StoreFS,
		SessionDir:      filepath.Join(dir, "ERPAdmin"),
		CoalesceRefresh: true,
	}
	return cfg, srv, ts
}

// run выполняет команду через Dispatch и возвращает код и вывод.
func run(t *testing.T, cfg *config.Config, args ...string) (int, string) {
	t.Helper()
	var code int
	out := withStdoutCapture(t, func() { code = Dispatch(context.Background(), cfg, args) })
	return code, out
}

func mustLogin(t *testing.T, cfg *config.Config) {
	t.Helper()
	if code, out := run(t, cfg, "login", fakeapi.SampleAdminEmail, fakeapi.SampleAdminPassword); code != 0 {
		t.Fatalf("login failed (%d): %s", code, out)
	}
}
