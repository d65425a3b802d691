package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout is the default timeout for backend requests.
	DefaultTimeout = 60 * time.Second

	// MaxResponseSize caps how much of a response body is read.
	MaxResponseSize = 10 * 1024 * 1024
)

// Request describes one backend call
type Request struct {
	Op     string // short name used in errors and logs
	Method string
	Path   string // relative to the base URL, already escaped
	Body   any    // JSON-encoded when non-nil
}

// AuthGate attaches the stored bearer credential to outbound requests and
// turns every failure into a typed error. It never retries.
type AuthGate struct {
	baseURL    string
	store      *CredentialStore
	httpClient *http.Client
	limiter    *rate.Limiter
}

// GateOption configures an AuthGate
type GateOption func(*AuthGate)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) GateOption {
	return func(g *AuthGate) {
		g.httpClient = c
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) GateOption {
	return func(g *AuthGate) {
		if d > 0 {
			g.httpClient.Timeout = d
		}
	}
}

// WithRateLimit limits outbound requests to rps per second; rps <= 0 disables it.
func WithRateLimit(rps float64) GateOption {
	return func(g *AuthGate) {
		if rps <= 0 {
			g.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// NewAuthGate creates a gate for the backend at baseURL
func NewAuthGate(baseURL string, store *CredentialStore, opts ...GateOption) *AuthGate {
	g := &AuthGate{
		baseURL:    baseURL,
		store:      store,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Inf, 0),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// BaseURL returns the backend origin
func (g *AuthGate) BaseURL() string {
	return g.baseURL
}

// Store returns the credential store the gate reads from
func (g *AuthGate) Store() *CredentialStore {
	return g.store
}

// Dispatch sends an authenticated request and decodes the JSON response into
// out (which may be nil). It returns nil, an *AuthFailureError (after clearing
// the credential store), or a *TransportError.
func (g *AuthGate) Dispatch(ctx context.Context, req Request, out any) error {
	token := g.store.Token()
	if token == "" {
		return &AuthFailureError{Op: req.Op, Err: ErrNotAuthenticated}
	}

	status, err := g.do(ctx, req, token, out)
	if status == http.StatusUnauthorized {
		if clearErr := g.store.Clear(); clearErr != nil {
			LogWarn("Failed to clear rejected credential: %v", clearErr)
		}
		LogInfo("Credential rejected by backend, re-authentication required")
		return &AuthFailureError{Op: req.Op, Status: status, Err: errors.New("credential rejected")}
	}
	return err
}

// DispatchPublic sends a request without a credential. Any failure,
// including HTTP 401, is reported as a *TransportError.
func (g *AuthGate) DispatchPublic(ctx context.Context, req Request, out any) error {
	_, err := g.do(ctx, req, "", out)
	return err
}

func (g *AuthGate) do(ctx context.Context, req Request, token string, out any) (int, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return 0, &TransportError{Op: req.Op, Err: fmt.Errorf("rate limiter: %w", err)}
	}

	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return 0, &TransportError{Op: req.Op, Err: fmt.Errorf("failed to encode request: %w", err)}
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, g.baseURL+req.Path, body)
	if err != nil {
		return 0, &TransportError{Op: req.Op, Err: fmt.Errorf("failed to build request: %w", err)}
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	// Headers and bodies are never logged.
	LogDebug("API request: %s %s", req.Method, req.Path)
	start := time.Now()
	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return 0, &TransportError{Op: req.Op, Err: err}
	}
	defer resp.Body.Close()
	LogDebug("API response: %d (%v)", resp.StatusCode, time.Since(start))

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return resp.StatusCode, &TransportError{Op: req.Op, Status: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, &TransportError{Op: req.Op, Status: resp.StatusCode, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	if out == nil {
		return resp.StatusCode, nil
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return resp.StatusCode, &TransportError{Op: req.Op, Status: resp.StatusCode, Err: errors.New("empty response body")}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return resp.StatusCode, &TransportError{Op: req.Op, Status: resp.StatusCode, Err: fmt.Errorf("malformed response: %w", err)}
	}
	return resp.StatusCode, nil
}
