package errors

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrPermissionDenied = errors.New("permission denied")
	ErrBadRequest       = errors.New("bad request")
	ErrTypeMismatch     = errors.New("type mismatch")
	ErrUpstream         = errors.New("upstream filter error")
	ErrIntegrity        = errors.New("integrity violation")
	ErrConflict         = errors.New("conflict")
	ErrStorage          = errors.New("storage error")
	ErrRateLimited      = errors.New("rate limit exceeded")
	ErrInternalServer   = errors.New("internal server error")
)

// Алиасы stdlib, чтобы не импортировать оба пакета errors в одном файле
var (
	Is  = errors.Is
	As  = errors.As
	New = errors.New
)

type APIError struct {
	Message string `json:"error"`
	Code    int    `json:"code"`
}

func (e *APIError) Error() string {
	return e.Message
}

func NewAPIError(message string, code int) *APIError {
	return &APIError{
		Message: message,
		Code:    code,
	}
}

// HTTPStatusFromError сопоставляет вид ошибки с HTTP статусом.
// TypeMismatch считается внутренней ошибкой: резолвер не должен её пропускать.
func HTTPStatusFromError(err error) int {
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Code
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict), errors.Is(err, ErrIntegrity):
		return http.StatusConflict
	case errors.Is(err, ErrUpstream):
		return http.StatusBadGateway
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
