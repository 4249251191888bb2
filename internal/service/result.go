package service

import "net/http"

// Error codes crossing the trust boundary. Everything beyond
// {code, message, status} stays in server-side logs.
const (
	CodeNotFound   = "NOT_FOUND"
	CodeFetchError = "FETCH_ERROR"
)

// APIError is the only error shape returned to callers.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// Result is the uniform envelope every facade operation returns.
// Degraded marks an empty-result success produced by absorbing a list
// fetch failure; the silent-empty policy is part of the type, not a
// comment.
type Result[T any] struct {
	Success  bool      `json:"success"`
	Data     T         `json:"data"`
	Degraded bool      `json:"degraded,omitempty"`
	Error    *APIError `json:"error,omitempty"`
}

// StatusCode is the HTTP status the envelope should be written with.
func (r Result[T]) StatusCode() int {
	if r.Success || r.Error == nil {
		return http.StatusOK
	}
	return r.Error.Status
}

func ok[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data}
}

func degraded[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data, Degraded: true}
}

func notFound[T any](message string) Result[T] {
	return Result[T]{
		Success: false,
		Error:   &APIError{Code: CodeNotFound, Message: message, Status: http.StatusNotFound},
	}
}

func fetchError[T any](message string) Result[T] {
	return Result[T]{
		Success: false,
		Error:   &APIError{Code: CodeFetchError, Message: message, Status: http.StatusInternalServerError},
	}
}
