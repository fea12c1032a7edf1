package ocr_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"

	"github.com/JaimeStill/folio/pkg/ocr"
	"github.com/JaimeStill/folio/pkg/resilience"
)

const succeededBody = `{
  "status": "succeeded",
  "analyzeResult": {
    "pages": [
      {"pageNumber": 1, "lines": [{"content": "INVOICE #42"}, {"content": "Total due: $10"}]}
    ]
  }
}`

type fakeService struct {
	srv       *httptest.Server
	submits   atomic.Int32
	polls     atomic.Int32
	submitFn  func(n int32) int
	statusFn  func(n int32) string
	gotKey    atomic.Value
	gotCTypes atomic.Value
}

func newFakeService(t *testing.T) *fakeService {
	t.Helper()
	f := &fakeService{
		submitFn: func(int32) int { return http.StatusAccepted },
		statusFn: func(int32) string { return succeededBody },
	}

	f.srv = httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/documentModels/prebuilt-read:analyze"):
			n := f.submits.Add(1)
			f.gotKey.Store(r.Header.Get("Ocp-Apim-Subscription-Key"))
			f.gotCTypes.Store(r.Header.Get("Content-Type"))
			io.Copy(io.Discard, r.Body)

			status := f.submitFn(n)
			if status == http.StatusAccepted {
				w.Header().Set("Operation-Location", f.srv.URL+"/operations/1")
			}
			w.WriteHeader(status)
		case r.Method == http.MethodGet && r.URL.Path == "/operations/1":
			n := f.polls.Add(1)
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, f.statusFn(n))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeService) client(t *testing.T, timeout string) *ocr.Client {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	breaker := false
	cfg := ocr.Config{
		Endpoint:          f.srv.URL,
		Key:               "secret",
		PollInterval:      "5ms",
		Timeout:           timeout,
		RequestsPerSecond: 1000,
		Resilience: resilience.Config{
			MaxAttempts:    3,
			InitialBackoff: "1ms",
			MaxBackoff:     "2ms",
			BreakerEnabled: &breaker,
		},
	}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	exec := resilience.NewExecutor(cfg.Resilience, logger)
	c, err := ocr.New(&cfg, exec, logger, &policy.ClientOptions{Transport: f.srv.Client()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func TestExtractText(t *testing.T) {
	f := newFakeService(t)
	f.statusFn = func(n int32) string {
		if n < 3 {
			return `{"status": "running"}`
		}
		return succeededBody
	}

	text, err := f.client(t, "5s").ExtractText(context.Background(), []byte("%PDF-1.4"))
	if err != nil {
		t.Fatalf("ExtractText() error = %v", err)
	}

	if want := "INVOICE #42\nTotal due: $10"; text != want {
		t.Errorf("text = %q, want %q", text, want)
	}
	if got := f.polls.Load(); got != 3 {
		t.Errorf("polls = %d, want 3", got)
	}
	if got, _ := f.gotKey.Load().(string); got != "secret" {
		t.Errorf("subscription key = %q, want secret", got)
	}
	if got, _ := f.gotCTypes.Load().(string); got != "application/pdf" {
		t.Errorf("content type = %q, want application/pdf", got)
	}
}

func TestExtractTextFailures(t *testing.T) {
	tests := []struct {
		name     string
		submitFn func(int32) int
		statusFn func(int32) string
		timeout  string
		wantErr  error
		submits  int32
	}{
		{
			name:     "analysis failed",
			statusFn: func(int32) string { return `{"status":"failed","error":{"code":"InvalidContent","message":"corrupt"}}` },
			timeout:  "5s",
			wantErr:  ocr.ErrAnalyzeFailed,
			submits:  1,
		},
		{
			name:     "never finishes",
			statusFn: func(int32) string { return `{"status":"running"}` },
			timeout:  "50ms",
			wantErr:  ocr.ErrTimeout,
			submits:  1,
		},
		{
			name:     "unknown status",
			statusFn: func(int32) string { return `{"status":"exploded"}` },
			timeout:  "5s",
			wantErr:  ocr.ErrMalformedResponse,
			submits:  1,
		},
		{
			name:     "client error is not retried",
			submitFn: func(int32) int { return http.StatusBadRequest },
			timeout:  "5s",
			submits:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeService(t)
			if tt.submitFn != nil {
				f.submitFn = tt.submitFn
			}
			if tt.statusFn != nil {
				f.statusFn = tt.statusFn
			}

			_, err := f.client(t, tt.timeout).ExtractText(context.Background(), []byte("%PDF"))
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if got := f.submits.Load(); got != tt.submits {
				t.Errorf("submits = %d, want %d", got, tt.submits)
			}
		})
	}
}

func TestExtractTextRetriesThrottledSubmit(t *testing.T) {
	f := newFakeService(t)
	f.submitFn = func(n int32) int {
		if n == 1 {
			return http.StatusTooManyRequests
		}
		return http.StatusAccepted
	}

	if _, err := f.client(t, "5s").ExtractText(context.Background(), []byte("%PDF")); err != nil {
		t.Fatalf("ExtractText() error = %v", err)
	}
	if got := f.submits.Load(); got != 2 {
		t.Errorf("submits = %d, want 2", got)
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  ocr.Config
	}{
		{"missing endpoint", ocr.Config{}},
		{"timeout below poll interval", ocr.Config{Endpoint: "https://x", PollInterval: "2s", Timeout: "1s"}},
		{"bad duration", ocr.Config{Endpoint: "https://x", Timeout: "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Finalize(nil); err == nil {
				t.Error("expected error")
			}
		})
	}
}
