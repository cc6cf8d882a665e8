package repo

import "errors"

// ErrNotFound возвращается хранилищем, если ключ отсутствует.
var ErrNotFound = errors.New("session storage: key not found")

// SessionStorage описывает долговременное строковое key-value хранилище клиента,
// в котором живут токены и сериализованный текущий пользователь.
type SessionStorage interface {
	// Get возвращает значение ключа или ErrNotFound.
	Get(key string) (string, error)

	// Set перезаписывает значение ключа.
	Set(key, value string) error

	// Delete удаляет перечисленные ключи. Отсутствующие ключи не считаются ошибкой.
	Delete(keys ...string) error
}
