package pagination_test

import (
	"net/url"
	"strings"
	"testing"

	"github.com/JaimeStill/folio/pkg/pagination"
)

func defaultConfig() pagination.Config {
	return pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}
}

func TestConfigFinalize(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := pagination.Config{}
		if err := cfg.Finalize(nil); err != nil {
			t.Fatalf("Finalize() error = %v", err)
		}
		if cfg.DefaultPageSize != 20 || cfg.MaxPageSize != 100 {
			t.Errorf("cfg = %+v, want 20/100", cfg)
		}
	})

	t.Run("env overrides", func(t *testing.T) {
		t.Setenv("TEST_PAGE_SIZE", "50")
		t.Setenv("TEST_MAX_PAGE", "200")

		cfg := pagination.Config{}
		err := cfg.Finalize(&pagination.ConfigEnv{
			DefaultPageSize: "TEST_PAGE_SIZE",
			MaxPageSize:     "TEST_MAX_PAGE",
		})
		if err != nil {
			t.Fatalf("Finalize() error = %v", err)
		}
		if cfg.DefaultPageSize != 50 || cfg.MaxPageSize != 200 {
			t.Errorf("cfg = %+v, want 50/200", cfg)
		}
	})

	t.Run("default exceeds max", func(t *testing.T) {
		cfg := pagination.Config{DefaultPageSize: 200, MaxPageSize: 100}
		err := cfg.Finalize(nil)
		if err == nil || !strings.Contains(err.Error(), "cannot exceed") {
			t.Errorf("Finalize() error = %v", err)
		}
	})
}

func TestPageRequestFromQuery(t *testing.T) {
	tests := []struct {
		name         string
		query        string
		wantPage     int
		wantPageSize int
		wantSearch   string
	}{
		{"empty uses defaults", "", 1, 20, ""},
		{"explicit values", "page=3&page_size=10", 3, 10, ""},
		{"clamps to max", "page_size=1000", 1, 100, ""},
		{"negative page", "page=-4", 1, 20, ""},
		{"search", "search=invoice", 1, 20, "invoice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, _ := url.ParseQuery(tt.query)
			req := pagination.PageRequestFromQuery(values, defaultConfig())

			if req.Page != tt.wantPage || req.PageSize != tt.wantPageSize {
				t.Errorf("page/size = %d/%d, want %d/%d", req.Page, req.PageSize, tt.wantPage, tt.wantPageSize)
			}

			got := ""
			if req.Search != nil {
				got = *req.Search
			}
			if got != tt.wantSearch {
				t.Errorf("search = %q, want %q", got, tt.wantSearch)
			}
		})
	}
}

func TestOffset(t *testing.T) {
	req := pagination.PageRequest{Page: 3, PageSize: 25}
	if got := req.Offset(); got != 50 {
		t.Errorf("Offset() = %d, want 50", got)
	}
}

func TestNewPageResult(t *testing.T) {
	tests := []struct {
		name           string
		total          int
		pageSize       int
		wantTotalPages int
	}{
		{"exact", 40, 20, 2},
		{"remainder", 41, 20, 3},
		{"empty", 0, 20, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := pagination.NewPageResult[string](nil, tt.total, 1, tt.pageSize)
			if r.TotalPages != tt.wantTotalPages {
				t.Errorf("TotalPages = %d, want %d", r.TotalPages, tt.wantTotalPages)
			}
			if r.Data == nil {
				t.Error("Data should be an empty slice, not nil")
			}
		})
	}
}
