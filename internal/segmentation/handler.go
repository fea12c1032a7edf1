package segmentation

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/JaimeStill/folio/pkg/handlers"
	"github.com/JaimeStill/folio/pkg/routes"
)

const pdfContentType = "application/pdf"

// Handler provides the segmentation HTTP endpoints.
type Handler struct {
	sys           System
	logger        *slog.Logger
	maxUploadSize int64
}

// NewHandler creates a Handler that rejects uploads larger than maxUploadSize bytes.
func NewHandler(sys System, logger *slog.Logger, maxUploadSize int64) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "segmentation"),
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group for segmentation endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/segmentation",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Upload},
			{Method: "GET", Pattern: "/artifacts/{name}", Handler: h.Download},
			{Method: "POST", Pattern: "/sweep", Handler: h.Sweep},
		},
	}
}

// Upload accepts a multipart "file" field holding a PDF, runs the pipeline,
// and returns the manifest. Fatal pipeline errors return the failure
// manifest with the mapped status.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	filename, data, err := h.readUpload(r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	m, err := h.sys.Segment(r.Context(), filename, data)
	if err != nil {
		status := MapHTTPStatus(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("segmentation request failed", "status", status, "error", err)
		}
		handlers.RespondJSON(w, status, m)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, m)
}

func (h *Handler) readUpload(r *http.Request) (string, []byte, error) {
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return "", nil, fmt.Errorf("%w: limit %d bytes", ErrFileTooLarge, maxErr.Limit)
		}
		return "", nil, ErrFileRequired
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, ErrFileRequired
	}
	defer file.Close()

	if strings.TrimSpace(header.Filename) == "" {
		return "", nil, ErrNoFilename
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, ErrFileRequired
	}

	if !isPDF(header.Filename, data) {
		return "", nil, ErrNotPDF
	}

	return filepath.Base(header.Filename), data, nil
}

// isPDF accepts a .pdf extension or content sniffed as PDF.
func isPDF(filename string, data []byte) bool {
	if strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return true
	}
	return http.DetectContentType(data) == pdfContentType
}

// Download streams a produced output document as an attachment.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	rc, artifact, err := h.sys.OpenArtifact(r.Context(), name)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", pdfContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.FileName))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn("artifact stream interrupted", "file_name", artifact.FileName, "error", err)
	}
}

// Sweep removes expired workspaces and reports how many were reclaimed.
func (h *Handler) Sweep(w http.ResponseWriter, r *http.Request) {
	n, err := h.sys.Sweep(r.Context(), TriggerManual)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]int{"reclaimed": n})
}
