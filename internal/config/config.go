package config

import (
	"flag"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Хранилища сессии.
const (
	StoreFS     = "fs"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

// DefaultAPIURL — адрес admin API по умолчанию.
const DefaultAPIURL = "http://localhost:3000"

type Config struct {
	APIURL string `env:"API_URL"`

	// Session storage
	SessionStore  string `env:"SESSION_STORE"`
	SessionDir    string `env:"SESSION_DIR"`
	SessionDBPath string `env:"SESSION_DB_PATH"`
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPrefix   string `env:"REDIS_PREFIX" envDefault:"erpadmin:"`
	// EncryptSession шифрует токены в хранилище ключом из SessionDir
	EncryptSession bool `env:"SESSION_ENCRYPT"`

	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT"`
	CoalesceRefresh bool          `env:"COALESCE_REFRESH" envDefault:"true"`
	LogLevel        string        `env:"LOG_LEVEL"`

	Version bool `env:"-"` // show client version and exit (flag only)
}

func NewConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	_ = env.Parse(cfg)

	// значения из env становятся значениями флагов по умолчанию
	flag.StringVar(&cfg.APIURL, "api-url", cfg.APIURL, "admin API base URL, e.g. http://localhost:3000")
	flag.StringVar(&cfg.SessionStore, "session-store", cfg.SessionStore, "session storage backend: fs, sqlite or redis")
	flag.StringVar(&cfg.SessionDir, "session-dir", cfg.SessionDir, "directory for the fs session store")
	flag.StringVar(&cfg.SessionDBPath, "session-db", cfg.SessionDBPath, "path to the sqlite session DB")
	flag.StringVar(&cfg.RedisAddr, "redis-addr", cfg.RedisAddr, "redis address for the redis session store")
	flag.BoolVar(&cfg.EncryptSession, "session-encrypt", cfg.EncryptSession, "encrypt stored tokens with a local key")
	flag.DurationVar(&cfg.RequestTimeout, "timeout", cfg.RequestTimeout, "per-request timeout, 0 disables it")
	flag.BoolVar(&cfg.CoalesceRefresh, "coalesce-refresh", cfg.CoalesceRefresh, "share one token refresh between concurrent requests")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	flag.BoolVar(&cfg.Version, "version", cfg.Version, "Show client version and exit")

	flag.Parse()

	cfg.applyDefaults()
	return cfg
}

func (cfg *Config) applyDefaults() {
	// API URL должен быть абсолютным http(s) адресом, иначе используем адрес по умолчанию
	if !validAPIURL(cfg.APIURL) {
		cfg.APIURL = DefaultAPIURL
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")

	switch strings.ToLower(cfg.SessionStore) {
	case StoreSQLite, StoreRedis:
		cfg.SessionStore = strings.ToLower(cfg.SessionStore)
	default:
		cfg.SessionStore = StoreFS
	}

	if cfg.SessionDir == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			cfg.SessionDir = filepath.Join(dir, "ERPAdmin")
		}
	}
	if cfg.SessionDBPath == "" {
		cfg.SessionDBPath = filepath.Join(cfg.SessionDir, "session.sqlite")
	}
	if cfg.RedisAddr == "" {
		cfg.RedisAddr = "localhost:6379"
	}
	if cfg.RequestTimeout < 0 {
		cfg.RequestTimeout = 0
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "warn"
	}
}

func validAPIURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
