package segmentation

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/folio/internal/workflow"
	"github.com/JaimeStill/folio/pkg/workspace"
)

// Upload validation errors.
var (
	ErrFileRequired = errors.New("no file part in the request")
	ErrNoFilename   = errors.New("no file selected")
	ErrNotPDF       = errors.New("invalid file type, only PDF files are accepted")
	ErrFileTooLarge = errors.New("file exceeds maximum upload size")
)

// MapHTTPStatus maps upload, pipeline, and artifact errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrFileRequired), errors.Is(err, ErrNoFilename), errors.Is(err, ErrNotPDF):
		return http.StatusBadRequest
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, workspace.ErrArtifactNotFound):
		return http.StatusNotFound
	default:
		return workflow.MapHTTPStatus(err)
	}
}
