// Package ocr extracts page text through the Azure Document Intelligence
// asynchronous analyze API: submit, poll the operation until it reaches a
// terminal state, and flatten the recognized lines.
package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/streaming"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"golang.org/x/time/rate"

	"github.com/JaimeStill/folio/pkg/resilience"
)

const (
	moduleName    = "folio/ocr"
	moduleVersion = "v0.1.0"

	keyHeader  = "Ocp-Apim-Subscription-Key"
	tokenScope = "https://cognitiveservices.azure.com/.default"
)

// Operation states reported by the analyze operation.
const (
	statusNotStarted = "notStarted"
	statusRunning    = "running"
	statusSucceeded  = "succeeded"
	statusFailed     = "failed"
	statusCanceled   = "canceled"
)

type analyzeOperation struct {
	Status        string         `json:"status"`
	AnalyzeResult *analyzeResult `json:"analyzeResult"`
	Error         *serviceError  `json:"error"`
}

type analyzeResult struct {
	Pages []struct {
		PageNumber int `json:"pageNumber"`
		Lines      []struct {
			Content string `json:"content"`
		} `json:"lines"`
	} `json:"pages"`
}

type serviceError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Client submits documents for text analysis and waits for the result.
type Client struct {
	pipeline runtime.Pipeline
	analyze  string
	poll     time.Duration
	timeout  time.Duration
	limiter  *rate.Limiter
	exec     *resilience.Executor
	logger   *slog.Logger
}

// New creates a Client. With a configured key the client authenticates with
// the subscription key header; otherwise it uses DefaultAzureCredential.
// opts may be nil.
func New(cfg *Config, exec *resilience.Executor, logger *slog.Logger, opts *policy.ClientOptions) (*Client, error) {
	endpoint, err := url.Parse(strings.TrimSuffix(cfg.Endpoint, "/"))
	if err != nil || endpoint.Scheme == "" || endpoint.Host == "" {
		return nil, fmt.Errorf("invalid ocr endpoint %q", cfg.Endpoint)
	}

	auth, err := authPolicy(cfg.Key)
	if err != nil {
		return nil, err
	}

	clientOpts := policy.ClientOptions{}
	if opts != nil {
		clientOpts = *opts
	}
	clientOpts.Retry.MaxRetries = -1

	pl := runtime.NewPipeline(
		moduleName, moduleVersion,
		runtime.PipelineOptions{PerCall: []policy.Policy{auth}},
		&clientOpts,
	)

	analyze := endpoint.JoinPath("documentintelligence", "documentModels", cfg.Model+":analyze")
	analyze.RawQuery = url.Values{"api-version": {cfg.APIVersion}}.Encode()

	return &Client{
		pipeline: pl,
		analyze:  analyze.String(),
		poll:     cfg.PollIntervalDuration(),
		timeout:  cfg.TimeoutDuration(),
		limiter:  rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		exec:     exec,
		logger:   logger.With("system", "ocr"),
	}, nil
}

func authPolicy(key string) (policy.Policy, error) {
	if key != "" {
		return runtime.NewKeyCredentialPolicy(azcore.NewKeyCredential(key), keyHeader, nil), nil
	}

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("create ocr credential: %w", err)
	}
	return runtime.NewBearerTokenPolicy(cred, []string{tokenScope}, nil), nil
}

// ExtractText analyzes a PDF and returns its recognized lines joined by
// newlines. Returns ErrTimeout when the operation is still running after the
// configured ceiling.
func (c *Client) ExtractText(ctx context.Context, data []byte) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("ocr rate limit: %w", err)
	}

	var location string
	err := c.exec.Execute(ctx, "ocr.analyze", func(ctx context.Context) error {
		var err error
		location, err = c.submit(ctx, data)
		return err
	}, classify)
	if err != nil {
		return "", err
	}

	op, err := c.await(ctx, location)
	if err != nil {
		return "", err
	}

	return flatten(op.AnalyzeResult), nil
}

func (c *Client) submit(ctx context.Context, data []byte) (string, error) {
	req, err := runtime.NewRequest(ctx, http.MethodPost, c.analyze)
	if err != nil {
		return "", fmt.Errorf("build analyze request: %w", err)
	}
	if err := req.SetBody(streaming.NopCloser(bytes.NewReader(data)), "application/pdf"); err != nil {
		return "", fmt.Errorf("set analyze body: %w", err)
	}

	resp, err := c.pipeline.Do(req)
	if err != nil {
		return "", fmt.Errorf("submit analyze: %w", err)
	}
	defer resp.Body.Close()

	if !runtime.HasStatusCode(resp, http.StatusAccepted) {
		return "", runtime.NewResponseError(resp)
	}

	location := resp.Header.Get("Operation-Location")
	if location == "" {
		return "", fmt.Errorf("%w: missing Operation-Location header", ErrMalformedResponse)
	}
	return location, nil
}

func (c *Client) await(ctx context.Context, location string) (*analyzeOperation, error) {
	pollCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	ticker := time.NewTicker(c.poll)
	defer ticker.Stop()

	for {
		select {
		case <-pollCtx.Done():
			if ctx.Err() == nil {
				return nil, fmt.Errorf("%w after %s", ErrTimeout, c.timeout)
			}
			return nil, ctx.Err()
		case <-ticker.C:
		}

		op, err := c.status(pollCtx, location)
		if err != nil {
			if pollCtx.Err() != nil && ctx.Err() == nil {
				return nil, fmt.Errorf("%w after %s", ErrTimeout, c.timeout)
			}
			return nil, err
		}

		switch op.Status {
		case statusSucceeded:
			if op.AnalyzeResult == nil {
				return nil, fmt.Errorf("%w: succeeded without analyzeResult", ErrMalformedResponse)
			}
			return op, nil
		case statusFailed, statusCanceled:
			if op.Error != nil {
				return nil, fmt.Errorf("%w: %s: %s", ErrAnalyzeFailed, op.Error.Code, op.Error.Message)
			}
			return nil, fmt.Errorf("%w: status %s", ErrAnalyzeFailed, op.Status)
		case statusNotStarted, statusRunning:
			c.logger.DebugContext(ctx, "analysis pending", "status", op.Status)
		default:
			return nil, fmt.Errorf("%w: unknown status %q", ErrMalformedResponse, op.Status)
		}
	}
}

func (c *Client) status(ctx context.Context, location string) (*analyzeOperation, error) {
	req, err := runtime.NewRequest(ctx, http.MethodGet, location)
	if err != nil {
		return nil, fmt.Errorf("build status request: %w", err)
	}

	resp, err := c.pipeline.Do(req)
	if err != nil {
		return nil, fmt.Errorf("poll analyze: %w", err)
	}

	if !runtime.HasStatusCode(resp, http.StatusOK) {
		defer resp.Body.Close()
		return nil, runtime.NewResponseError(resp)
	}

	var op analyzeOperation
	if err := runtime.UnmarshalAsJSON(resp, &op); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return &op, nil
}

func flatten(result *analyzeResult) string {
	var sb strings.Builder
	for _, page := range result.Pages {
		for _, line := range page.Lines {
			sb.WriteString(line.Content)
			sb.WriteByte('\n')
		}
	}
	return strings.TrimSpace(sb.String())
}

func classify(err error) resilience.Classification {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.Classification{}
	}

	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		if respErr.StatusCode == http.StatusTooManyRequests || respErr.StatusCode >= http.StatusInternalServerError {
			return resilience.Classification{Retryable: true, RecordFailure: true}
		}
		return resilience.Classification{}
	}

	if errors.Is(err, ErrMalformedResponse) {
		return resilience.Classification{RecordFailure: true}
	}

	return resilience.Classification{Retryable: true, RecordFailure: true}
}
