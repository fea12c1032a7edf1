package runs

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound  = errors.New("run not found")
	ErrDuplicate = errors.New("run already recorded")
	ErrInvalidID = errors.New("invalid run id")
)

// MapHTTPStatus maps run ledger errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidID):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
