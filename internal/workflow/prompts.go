package workflow

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/JaimeStill/folio/internal/prompts"
)

type pageExcerpt struct {
	Page    int    `json:"page"`
	Excerpt string `json:"excerpt"`
}

// ComposePrompt builds the grouping prompt: instructions, the response
// specification, and a JSON list of every page number with an excerpt of
// its text truncated to excerptLength runes.
func ComposePrompt(pages []Page, excerptLength int) (string, error) {
	excerpts := make([]pageExcerpt, len(pages))
	for i, p := range pages {
		excerpts[i] = pageExcerpt{Page: p.Number, Excerpt: Excerpt(p.Text, excerptLength)}
	}

	list, err := json.MarshalIndent(excerpts, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serialize page list: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(prompts.Instructions())
	sb.WriteString("\n\n")
	sb.WriteString(prompts.Spec())
	fmt.Fprintf(&sb, "\n\nThe document has %d pages, numbered 1 to %d. Page list:\n\n", len(pages), len(pages))
	sb.Write(list)

	return sb.String(), nil
}

// Excerpt trims text and truncates it to at most n runes.
func Excerpt(text string, n int) string {
	text = strings.TrimSpace(text)
	if n <= 0 {
		return text
	}

	count := 0
	for i := range text {
		if count == n {
			return text[:i]
		}
		count++
	}
	return text
}
