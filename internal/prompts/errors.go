package prompts

import (
	"errors"
	"net/http"
)

// ErrUnknownPart is returned when a prompt part name is not recognized.
var ErrUnknownPart = errors.New("prompt part must be instructions or spec")

// MapHTTPStatus maps prompt errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrUnknownPart) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
