package formatting_test

import (
	"errors"
	"testing"

	"github.com/JaimeStill/folio/pkg/formatting"
)

type grouping struct {
	Groups []struct {
		Name  string `json:"name"`
		Pages []int  `json:"pages"`
	} `json:"groups"`
}

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantErr   bool
		wantGroup string
	}{
		{
			name:      "bare json",
			content:   `{"groups":[{"name":"Invoices","pages":[1,2]}]}`,
			wantGroup: "Invoices",
		},
		{
			name:      "fenced json",
			content:   "Here you go:\n```json\n{\"groups\":[{\"name\":\"Contracts\",\"pages\":[3]}]}\n```",
			wantGroup: "Contracts",
		},
		{
			name:      "embedded object in prose",
			content:   `Sure! The grouping is {"groups":[{"name":"Letters {draft}","pages":[1]}]} as requested.`,
			wantGroup: "Letters {draft}",
		},
		{
			name:    "no json",
			content: "I could not classify these pages.",
			wantErr: true,
		},
		{
			name:    "unbalanced object",
			content: `{"groups":[{"name":"x"`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := formatting.Parse[grouping](tt.content)
			if tt.wantErr {
				if !errors.Is(err, formatting.ErrParseFailed) {
					t.Fatalf("Parse() error = %v, want ErrParseFailed", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() unexpected error: %v", err)
			}
			if len(got.Groups) != 1 || got.Groups[0].Name != tt.wantGroup {
				t.Errorf("Parse() groups = %+v, want name %q", got.Groups, tt.wantGroup)
			}
		})
	}
}

func TestExtractObject(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{"first of two objects", `a {"x":1} b {"y":2}`, `{"x":1}`, true},
		{"nested", `pre {"a":{"b":{}}} post`, `{"a":{"b":{}}}`, true},
		{"escaped quote in string", `{"s":"he said \"}\""}`, `{"s":"he said \"}\""}`, true},
		{"no brace", `nothing here`, "", false},
		{"unclosed", `{"a":1`, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := formatting.ExtractObject(tt.input)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ExtractObject(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestParseBytes(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"16MB", 16 * 1024 * 1024, false},
		{"512 kb", 512 * 1024, false},
		{"2MiB", 2 * 1024 * 1024, false},
		{"100", 100, false},
		{"1.5GB", 1536 * 1024 * 1024, false},
		{"", 0, true},
		{"12XB", 0, true},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := formatting.ParseBytes(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseBytes(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseBytes(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseBytes(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		input int64
		want  string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{16 * 1024 * 1024, "16.0 MB"},
	}

	for _, tt := range tests {
		if got := formatting.FormatBytes(tt.input); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
