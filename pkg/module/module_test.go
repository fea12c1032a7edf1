package module_test

import (
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"github.com/JaimeStill/folio/pkg/module"
)

func TestRouterDispatch(t *testing.T) {
	inner := http.NewServeMux()
	inner.HandleFunc("GET /runs", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("module:" + r.URL.Path))
	})

	m := module.New("/api", inner)
	var order []string
	m.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "mw")
			next.ServeHTTP(w, r)
		})
	})

	router := module.NewRouter()
	router.Mount(m)
	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("native"))
	})
	router.Handle("GET /metrics", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("metrics"))
	}))

	tests := []struct {
		path string
		want string
	}{
		{"/api/runs", "module:/runs"},
		{"/api/runs/", "module:/runs"},
		{"/healthz", "native"},
		{"/metrics", "metrics"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))
			if rec.Body.String() != tt.want {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.want)
			}
		})
	}

	if len(order) != 2 {
		t.Errorf("module middleware ran %d times, want 2", len(order))
	}
	if got := router.Prefixes(); !slices.Equal(got, []string{"/api"}) {
		t.Errorf("Prefixes() = %v", got)
	}
}

func TestNewRejectsInvalidPrefix(t *testing.T) {
	for _, prefix := range []string{"", "api", "/api/v1"} {
		t.Run(prefix, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("New(%q) should panic", prefix)
				}
			}()
			module.New(prefix, http.NewServeMux())
		})
	}
}
