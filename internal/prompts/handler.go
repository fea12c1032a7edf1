package prompts

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/folio/pkg/handlers"
	"github.com/JaimeStill/folio/pkg/routes"
)

// Part names a section of the grouping prompt.
type Part string

// Prompt parts exposed for inspection.
const (
	PartInstructions Part = "instructions"
	PartSpec         Part = "spec"
)

// PartContent is the response type for a single prompt part.
type PartContent struct {
	Part    Part   `json:"part"`
	Content string `json:"content"`
}

// Content returns the text of a prompt part.
func Content(p Part) (string, error) {
	switch p {
	case PartInstructions:
		return Instructions(), nil
	case PartSpec:
		return Spec(), nil
	default:
		return "", ErrUnknownPart
	}
}

// Handler serves the grouping prompt text read-only.
type Handler struct {
	logger *slog.Logger
}

func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{logger: logger.With("handler", "prompts")}
}

// Routes returns the route group definition for prompt endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/prompts",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{part}", Handler: h.Find},
		},
	}
}

// List returns every prompt part in the order it is composed.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, []PartContent{
		{Part: PartInstructions, Content: Instructions()},
		{Part: PartSpec, Content: Spec()},
	})
}

// Find returns a single prompt part by name.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	part := Part(r.PathValue("part"))

	text, err := Content(part)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, PartContent{Part: part, Content: text})
}
