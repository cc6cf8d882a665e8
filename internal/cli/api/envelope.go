package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Response — конверт ответа admin API: {success, data?, error?}.
type Response[T any] struct {
	Success bool   `json:"success"`
	Data    *T     `json:"data,omitempty"`
	Error   *Error `json:"error,omitempty"`
}

// Result превращает конверт в (T, error): ровно одно из значений осмысленно.
func (r Response[T]) Result(status int) (T, error) {
	var zero T
	if r.Success {
		if r.Data == nil {
			return zero, nil
		}
		return *r.Data, nil
	}
	if r.Error != nil {
		e := *r.Error
		e.Status = status
		return zero, &e
	}
	msg := http.StatusText(status)
	if msg == "" {
		msg = "request failed"
	}
	return zero, &Error{Code: CodeUnknown, Message: msg, Status: status}
}

// Decode разбирает конверт из сырого ответа. Неразборчивый ответ — NETWORK_ERROR.
func Decode[T any](resp *RawResponse) (T, error) {
	var env Response[T]
	if err := json.Unmarshal(resp.Body, &env); err != nil {
		var zero T
		return zero, &Error{
			Code:    CodeNetworkError,
			Message: msgNetworkError,
			Status:  resp.Status,
			Err:     fmt.Errorf("decode response (status %d): %w", resp.Status, err),
		}
	}
	return env.Result(resp.Status)
}

// Execute выполняет запрос через шлюз и декодирует полезную нагрузку типа T.
func Execute[T any](ctx context.Context, c *Client, req Request) (T, error) {
	resp, err := c.Do(ctx, req)
	if err != nil {
		var zero T
		return zero, err
	}
	return Decode[T](resp)
}
