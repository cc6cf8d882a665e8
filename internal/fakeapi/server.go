// Package fakeapi — in-memory admin backend для тестов клиента и консоли.
// Повторяет контракт admin API: конверт {success, data, error}, bearer JWT,
// ротация refresh-токенов.
package fakeapi

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"ERPAdmin/internal/cli/model"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Data — содержимое backend-а.
type Data struct {
	Tenants         []model.Tenant
	Users           []model.User
	Licenses        []model.License
	Subscribers     []model.SubscriberDetail
	SubscriberUsers map[string][]model.SubscriberUser
	Stats           model.DashboardStats
}

type adminRecord struct {
	admin model.AdminUser
	hash  []byte
}

// Server — fake admin API.
type Server struct {
	Router chi.Router

	mu        sync.Mutex
	secret    []byte
	accessTTL time.Duration
	now       func() time.Time
	logger    *zap.SugaredLogger

	admins     map[string]adminRecord // по email
	refresh    map[string]string      // refresh-токен -> admin id
	generation int
	statsFail  bool
	data       Data
	calls      map[string]int
}

// Option настраивает Server.
type Option func(*Server)

// WithClock подменяет текущее время (лицензии, срок жизни токенов).
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithAccessTTL задаёт срок жизни access-токена.
func WithAccessTTL(d time.Duration) Option {
	return func(s *Server) { s.accessTTL = d }
}

// WithLogger задаёт логгер.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *Server) { s.logger = l }
}

// New собирает backend и его роутер.
func New(opts ...Option) *Server {
	s := &Server{
		secret:    []byte("fakeapi-secret"),
		accessTTL: 15 * time.Minute,
		now:       time.Now,
		logger:    zap.NewNop().Sugar(),
		admins:    make(map[string]adminRecord),
		refresh:   make(map[string]string),
		calls:     make(map[string]int),
		data:      Data{SubscriberUsers: map[string][]model.SubscriberUser{}},
	}
	for _, o := range opts {
		o(s)
	}

	r := chi.NewRouter()
	r.Use(s.countCalls)

	r.Route("/admin/auth", func(r chi.Router) {
		r.Post("/login", s.login)
		r.Post("/refresh", s.refreshTokens)
		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/logout", s.logout)
			r.Get("/me", s.me)
		})
	})

	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/tenants", s.listTenants)
		r.Get("/tenants/{id}", s.getTenant)
		r.Get("/users", s.listUsers)
		r.Get("/licenses", s.listLicenses)
		r.Get("/subscribers", s.listSubscribers)
		r.Get("/subscribers/{id}", s.getSubscriber)
		r.Get("/subscribers/{id}/users", s.listSubscriberUsers)
		r.Patch("/subscribers/{id}/status", s.updateSubscriberStatus)
		r.Delete("/subscribers/{id}", s.removeSubscriber)
		r.Get("/dashboard/stats", s.dashboardStats)
	})

	s.Router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

// Seed заменяет данные backend-а.
func (s *Server) Seed(fn func(d *Data)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.data)
	if s.data.SubscriberUsers == nil {
		s.data.SubscriberUsers = map[string][]model.SubscriberUser{}
	}
}

// ExpireAccessTokens делает недействительными все выданные access-токены.
func (s *Server) ExpireAccessTokens() {
	s.mu.Lock()
	s.generation++
	s.mu.Unlock()
}

// RevokeRefreshTokens отзывает все refresh-токены.
func (s *Server) RevokeRefreshTokens() {
	s.mu.Lock()
	s.refresh = make(map[string]string)
	s.mu.Unlock()
}

// FailStats заставляет /dashboard/stats отвечать 500.
func (s *Server) FailStats(fail bool) {
	s.mu.Lock()
	s.statsFail = fail
	s.mu.Unlock()
}

// Calls возвращает число запросов по методу и пути, например "POST /admin/auth/refresh".
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

func (s *Server) countCalls(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// ключ по фактическому пути: отказ requireAuth не доходит до конечного маршрута
		s.mu.Lock()
		s.calls[r.Method+" "+r.URL.Path]++
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type envelope struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *apiError `json:"error,omitempty"`
}

func writeData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, envelope{Error: &apiError{Code: code, Message: msg}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
