package workflow_test

import (
	"strings"
	"testing"

	"github.com/JaimeStill/folio/internal/prompts"
	"github.com/JaimeStill/folio/internal/workflow"
)

func TestExcerpt(t *testing.T) {
	tests := []struct {
		name string
		text string
		n    int
		want string
	}{
		{"short text unchanged", "hello", 10, "hello"},
		{"trims whitespace", "  hello \n", 10, "hello"},
		{"truncates", "abcdefgh", 3, "abc"},
		{"counts runes", "ééééé", 2, "éé"},
		{"exact length", "abc", 3, "abc"},
		{"empty", "", 5, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := workflow.Excerpt(tt.text, tt.n); got != tt.want {
				t.Errorf("Excerpt(%q, %d) = %q, want %q", tt.text, tt.n, got, tt.want)
			}
		})
	}
}

func TestComposePrompt(t *testing.T) {
	pages := []workflow.Page{
		{Number: 1, Text: "INVOICE " + strings.Repeat("x", 50)},
		{Number: 2, Text: ""},
		{Number: 3, Text: "AGREEMENT"},
	}

	prompt, err := workflow.ComposePrompt(pages, 10)
	if err != nil {
		t.Fatalf("ComposePrompt() error = %v", err)
	}

	for _, want := range []string{
		prompts.Instructions(),
		prompts.Spec(),
		"numbered 1 to 3",
		`"page": 2`,
		`"excerpt": "INVOICE xx"`,
		`"excerpt": "AGREEMENT"`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}

	if strings.Contains(prompt, strings.Repeat("x", 11)) {
		t.Error("excerpt was not truncated")
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		group string
		want  string
	}{
		{"Invoices", "Invoices_1700_1.pdf"},
		{"Lease Agreement (signed)", "Lease_Agreement_signed_1700_1.pdf"},
		{"../../etc/passwd", "etc_passwd_1700_1.pdf"},
		{"???", "document_1700_1.pdf"},
		{workflow.FallbackGroupName, "Full_Document_classification_unavailable_1700_1.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.group, func(t *testing.T) {
			if got := workflow.FileName(tt.group, "1700", 1); got != tt.want {
				t.Errorf("FileName(%q) = %q, want %q", tt.group, got, tt.want)
			}
		})
	}

	long := workflow.FileName(strings.Repeat("a", 200), "1700", 2)
	if len(long) > 64+len("_1700_2.pdf") {
		t.Errorf("long name not capped: %d chars", len(long))
	}
}
