package crypto

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"ERPAdmin/internal/cli/repo"
)

// sealedPrefix помечает значения, зашифрованные SealedStorage.
const sealedPrefix = "sealed:v1:"

// ErrNotSealed возвращается при чтении значения, записанного без шифрования.
var ErrNotSealed = errors.New("session value is not sealed")

// SealedStorage шифрует значения другого SessionStorage (AES‑GCM),
// так что токены не лежат на диске или в Redis открытым текстом.
type SealedStorage struct {
	inner repo.SessionStorage
	key   []byte
}

var _ repo.SessionStorage = (*SealedStorage)(nil)

// NewSealedStorage оборачивает inner. Ключ должен быть длиной 32 байта.
func NewSealedStorage(inner repo.SessionStorage, key []byte) (*SealedStorage, error) {
	if len(key) != keyLen {
		return nil, errors.New("invalid key length")
	}
	return &SealedStorage{inner: inner, key: key}, nil
}

func (s *SealedStorage) Get(key string) (string, error) {
	raw, err := s.inner.Get(key)
	if err != nil {
		return "", err
	}
	enc, ok := strings.CutPrefix(raw, sealedPrefix)
	if !ok {
		return "", fmt.Errorf("%s: %w", key, ErrNotSealed)
	}
	b, err := base64.RawStdEncoding.DecodeString(enc)
	if err != nil {
		return "", fmt.Errorf("%s: decode sealed value: %w", key, err)
	}
	// nonce хранится перед шифртекстом
	const nonceLen = 12
	if len(b) < nonceLen {
		return "", fmt.Errorf("%s: sealed value too short", key)
	}
	plain, err := Decrypt(b[nonceLen:], b[:nonceLen], s.key)
	if err != nil {
		return "", fmt.Errorf("%s: open sealed value: %w", key, err)
	}
	return string(plain), nil
}

func (s *SealedStorage) Set(key, value string) error {
	ct, nonce, err := Encrypt([]byte(value), s.key)
	if err != nil {
		return fmt.Errorf("%s: seal value: %w", key, err)
	}
	b := append(nonce, ct...)
	return s.inner.Set(key, sealedPrefix+base64.RawStdEncoding.EncodeToString(b))
}

func (s *SealedStorage) Delete(keys ...string) error {
	return s.inner.Delete(keys...)
}
