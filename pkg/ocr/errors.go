package ocr

import "errors"

var (
	// ErrTimeout indicates the analysis did not reach a terminal state within the configured ceiling.
	ErrTimeout = errors.New("text extraction timed out")
	// ErrAnalyzeFailed indicates the service reported a failed or canceled analysis.
	ErrAnalyzeFailed = errors.New("text extraction failed")
	// ErrMalformedResponse indicates the service response could not be interpreted.
	ErrMalformedResponse = errors.New("malformed extraction response")
)
