package fakeapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ERPAdmin/internal/cli/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type ctxKey struct{}

type claims struct {
	jwt.RegisteredClaims
	Generation int `json:"gen"`
}

// AddAdmin регистрирует администратора с паролем password.
func (s *Server) AddAdmin(password string, a model.AdminUser) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	s.mu.Lock()
	s.admins[strings.ToLower(a.Email)] = adminRecord{admin: a, hash: hash}
	s.mu.Unlock()
	return nil
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshBody struct {
	RefreshToken string `json:"refreshToken"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	s.mu.Lock()
	rec, ok := s.admins[strings.ToLower(in.Email)]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(rec.hash, []byte(in.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
		return
	}

	pair, err := s.issue(rec.admin.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	admin := rec.admin
	writeData(w, model.LoginResult{TokenPair: pair, Admin: &admin})
}

func (s *Server) refreshTokens(w http.ResponseWriter, r *http.Request) {
	var in refreshBody
	_ = json.NewDecoder(r.Body).Decode(&in)

	s.mu.Lock()
	adminID, ok := s.refresh[in.RefreshToken]
	// ротация: старый refresh-токен одноразовый
	delete(s.refresh, in.RefreshToken)
	s.mu.Unlock()
	if !ok || in.RefreshToken == "" {
		writeError(w, http.StatusUnauthorized, "INVALID_REFRESH_TOKEN", "Invalid or expired refresh token")
		return
	}

	pair, err := s.issue(adminID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	writeData(w, pair)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	var in refreshBody
	_ = json.NewDecoder(r.Body).Decode(&in)
	s.mu.Lock()
	delete(s.refresh, in.RefreshToken)
	s.mu.Unlock()
	writeData(w, model.Message{Message: "Logged out successfully"})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	id, _ := r.Context().Value(ctxKey{}).(string)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.admins {
		if rec.admin.ID == id {
			admin := rec.admin
			writeData(w, model.MeResult{Admin: &admin})
			return
		}
	}
	writeError(w, http.StatusNotFound, "NOT_FOUND", "Admin not found")
}

// issue выпускает пару токенов для администратора.
func (s *Server) issue(adminID string) (model.TokenPair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   adminID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
		Generation: s.generation,
	})
	access, err := token.SignedString(s.secret)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}
	rt := uuid.NewString()
	s.refresh[rt] = adminID
	return model.TokenPair{
		AccessToken:  access,
		RefreshToken: rt,
		ExpiresIn:    int64(s.accessTTL / time.Second),
	}, nil
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing authorization token")
			return
		}
		sub, err := s.parseAccess(raw)
		if err != nil {
			s.logger.Debugw("access token rejected", "error", err)
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, sub)))
	})
}

func (s *Server) parseAccess(raw string) (string, error) {
	var c claims
	_, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	gen := s.generation
	s.mu.Unlock()
	if c.Generation != gen {
		return "", errors.New("token revoked")
	}
	return c.Subject, nil
}
