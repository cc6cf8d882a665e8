package api

import (
	"errors"
	"fmt"
)

// Коды ошибок, которые формирует сам клиент. Остальные коды приходят от сервера как есть.
const (
	CodeNetworkError   = "NETWORK_ERROR"
	CodeSessionExpired = "SESSION_EXPIRED"
	CodeNoRefreshToken = "NO_REFRESH_TOKEN"
	CodeValidation     = "VALIDATION_ERROR"
	CodeUnknown        = "UNKNOWN_ERROR"
)

const (
	msgNetworkError   = "Failed to connect to server. Please check your connection."
	msgSessionExpired = "Your session has expired. Please login again."
	msgNoRefreshToken = "No refresh token available"
)

// Error — неуспешный результат вызова API: машинный код и сообщение для человека.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`

	// Status — HTTP-статус ответа, 0 если ответа не было.
	Status int `json:"-"`
	// Err — исходная причина (транспорт, декодирование, неудачный refresh).
	Err error `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// ErrorCode возвращает код *Error из цепочки err или "" если его нет.
func ErrorCode(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsCode сообщает, содержит ли err *Error с указанным кодом.
func IsCode(err error, code string) bool {
	return err != nil && ErrorCode(err) == code
}

func networkError(cause error) *Error {
	return &Error{Code: CodeNetworkError, Message: msgNetworkError, Err: cause}
}

func validationError(msg string, cause error) *Error {
	return &Error{Code: CodeValidation, Message: msg, Err: cause}
}
