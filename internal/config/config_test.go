package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// resetFlagSet создаёт новый FlagSet перед каждым вызовом NewConfig,
// чтобы избежать повторной регистрации одних и тех же флагов между тестами.
func resetFlagSet(t *testing.T, args ...string) {
	t.Helper()
	flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	flag.CommandLine.SetOutput(os.Stderr)
	oldArgs := os.Args
	os.Args = append([]string{oldArgs[0]}, args...)
	t.Cleanup(func() { os.Args = oldArgs })
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"API_URL", "SESSION_STORE", "SESSION_DIR", "SESSION_DB_PATH", "REDIS_ADDR", "REQUEST_TIMEOUT", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

func TestNewConfig_Defaults(t *testing.T) {
	clearEnv(t)
	resetFlagSet(t)
	cfg := NewConfig()

	if cfg.APIURL != DefaultAPIURL {
		t.Fatalf("APIURL default expected %q, got %q", DefaultAPIURL, cfg.APIURL)
	}
	if cfg.SessionStore != StoreFS {
		t.Fatalf("SessionStore default expected fs, got %q", cfg.SessionStore)
	}
	if filepath.Base(cfg.SessionDir) != "ERPAdmin" {
		t.Fatalf("SessionDir must end with ERPAdmin, got %q", cfg.SessionDir)
	}
	if cfg.SessionDBPath != filepath.Join(cfg.SessionDir, "session.sqlite") {
		t.Fatalf("SessionDBPath default unexpected: %q", cfg.SessionDBPath)
	}
	if cfg.RedisAddr != "localhost:6379" || cfg.RedisPrefix != "erpadmin:" {
		t.Fatalf("redis defaults unexpected: %q %q", cfg.RedisAddr, cfg.RedisPrefix)
	}
	if !cfg.CoalesceRefresh {
		t.Fatalf("CoalesceRefresh must default to true")
	}
	if cfg.RequestTimeout != 0 || cfg.LogLevel != "warn" {
		t.Fatalf("timeout/log defaults unexpected: %v %q", cfg.RequestTimeout, cfg.LogLevel)
	}
}

func TestNewConfig_FromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_URL", "https://admin.example.com/")
	t.Setenv("SESSION_STORE", "SQLite")
	t.Setenv("SESSION_DB_PATH", "/tmp/s.db")
	t.Setenv("REQUEST_TIMEOUT", "5s")
	t.Setenv("COALESCE_REFRESH", "false")
	t.Setenv("REDIS_PREFIX", "x:")

	resetFlagSet(t)
	cfg := NewConfig()

	if cfg.APIURL != "https://admin.example.com" {
		t.Fatalf("APIURL expected trimmed env value, got %q", cfg.APIURL)
	}
	if cfg.SessionStore != StoreSQLite || cfg.SessionDBPath != "/tmp/s.db" {
		t.Fatalf("sqlite settings unexpected: %q %q", cfg.SessionStore, cfg.SessionDBPath)
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Fatalf("RequestTimeout expected 5s, got %v", cfg.RequestTimeout)
	}
	if cfg.CoalesceRefresh {
		t.Fatalf("CoalesceRefresh expected false from env")
	}
	if cfg.RedisPrefix != "x:" {
		t.Fatalf("RedisPrefix expected x:, got %q", cfg.RedisPrefix)
	}
}

func TestNewConfig_FlagsOverrideEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_URL", "http://env-host:3000")
	resetFlagSet(t, "-api-url", "http://flag-host:4000", "-session-store", "redis", "-timeout", "2s", "-session-encrypt", "whoami")
	cfg := NewConfig()

	if cfg.APIURL != "http://flag-host:4000" {
		t.Fatalf("flag must override env, got %q", cfg.APIURL)
	}
	if cfg.SessionStore != StoreRedis || cfg.RequestTimeout != 2*time.Second {
		t.Fatalf("flag values unexpected: %q %v", cfg.SessionStore, cfg.RequestTimeout)
	}
	if !cfg.EncryptSession {
		t.Fatalf("-session-encrypt flag must enable encryption")
	}
	if args := flag.Args(); len(args) != 1 || args[0] != "whoami" {
		t.Fatalf("positional args expected [whoami], got %v", args)
	}
}

func TestNewConfig_InvalidValuesFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_URL", "localhost:3000")
	t.Setenv("SESSION_STORE", "etcd")
	resetFlagSet(t)
	cfg := NewConfig()

	if cfg.APIURL != DefaultAPIURL {
		t.Fatalf("invalid API_URL must fall back to default, got %q", cfg.APIURL)
	}
	if cfg.SessionStore != StoreFS {
		t.Fatalf("unknown store must fall back to fs, got %q", cfg.SessionStore)
	}
}

func TestValidAPIURL(t *testing.T) {
	cases := map[string]bool{
		"http://localhost:3000":   true,
		"https://a.example.com/x": true,
		"ftp://a.example.com":     false,
		"http://":                 false,
		"":                        false,
		"::bad":                   false,
	}
	for in, want := range cases {
		if got := validAPIURL(in); got != want {
			t.Errorf("validAPIURL(%q) = %v, want %v", in, got, want)
		}
	}
}
