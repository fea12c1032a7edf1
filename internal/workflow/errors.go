// Package workflow runs the document segmentation pipeline as a state graph
// (segment → extract → classify → materialize) inside a per-run workspace.
package workflow

import (
	"errors"
	"net/http"
)

// Sentinel errors for pipeline stages. Only segmentation, allocation, and a
// run where no group could be materialized are fatal; the others are
// absorbed and reported as warnings in the manifest.
var (
	ErrSegmentationFailed   = errors.New("segmentation failed")
	ErrExtractionFailed     = errors.New("text extraction failed")
	ErrExtractionTimeout    = errors.New("text extraction timed out")
	ErrClassificationFailed = errors.New("classification failed")
	ErrMaterializeFailed    = errors.New("group materialization failed")
	ErrNothingMaterialized  = errors.New("no group could be materialized")
)

// MapHTTPStatus maps fatal pipeline errors to HTTP status codes. A document
// that cannot be split is the caller's problem; everything else, including
// workspace allocation, is a server failure.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrSegmentationFailed) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
