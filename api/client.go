// Package api is the HTTP client for the trading-journal backend.
//
// All endpoints hang off Client as methods, grouped by resource (auth.go,
// trades.go, analytics.go, catalog.go). The client owns bearer-token
// attachment and the 401 refresh flow; callers never see a 401 unless the
// session is truly gone.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// TokenSource is the credential store the client reads and rotates.
// Implemented by auth.Store.
type TokenSource interface {
	AccessToken() string
	RefreshToken() string
	SetTokens(access, refresh string) error
	Clear() error
}

// Client talks to the trading-journal REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	onAuthLost func()
	log        *slog.Logger

	// Refresh coordination: at most one refresh call is in flight. Later
	// 401s queue as waiters and are released in arrival order with the
	// outcome of the single refresh.
	refreshMu  sync.Mutex
	refreshing bool
	waiters    []chan refreshResult
}

type refreshResult struct {
	access string
	err    error
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithAuthLostHandler registers a callback invoked when the session cannot
// be recovered (no refresh token, or the refresh call itself fails). The
// CLI uses it to tell the user to log in again.
func WithAuthLostHandler(fn func()) Option {
	return func(c *Client) { c.onAuthLost = fn }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// NewClient creates a client for the API at baseURL.
func NewClient(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// payload is a fully materialized request body. Bodies are kept as bytes so
// a request can be rebuilt for the post-refresh replay.
type payload struct {
	contentType string
	body        []byte
}

func jsonPayload(v any) (*payload, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	return &payload{contentType: "application/json", body: data}, nil
}

// do executes one API call. out may be nil (discard body), *[]byte (raw
// bytes, used for CSV/PDF blobs) or a pointer to a JSON-decodable value.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, p *payload, out any) error {
	body, err := c.send(ctx, method, path, query, p, false)
	if err != nil {
		return err
	}
	switch dst := out.(type) {
	case nil:
		return nil
	case *[]byte:
		*dst = body
		return nil
	default:
		if len(body) == 0 {
			return nil
		}
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
}

// send performs the request, running the refresh flow on the first 401.
// retried marks a request that already went through one refresh; a second
// 401 then propagates.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, p *payload, retried bool) ([]byte, error) {
	apiURL := c.baseURL + path
	if len(query) > 0 {
		apiURL += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if p != nil {
		bodyReader = bytes.NewReader(p.body)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	// Multipart payloads carry their boundary in the content type set by
	// the builder; only plain payloads get application/json here.
	if p != nil && p.contentType != "" {
		req.Header.Set("Content-Type", p.contentType)
	}
	if token := c.tokens.AccessToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	requestID := ulid.Make().String()
	req.Header.Set("X-Request-Id", requestID)

	c.log.Debug("api request",
		slog.String("method", method),
		slog.String("path", path),
		slog.String("request_id", requestID),
		slog.Bool("retry", retried))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized && !retried {
		if _, err := c.refreshAccess(ctx); err != nil {
			return nil, err
		}
		return c.send(ctx, method, path, query, p, true)
	}

	if resp.StatusCode >= 400 {
		return nil, newAPIError(resp.StatusCode, requestID, respBody)
	}
	return respBody, nil
}

// refreshAccess obtains a fresh access token, coordinating concurrent
// callers so only one POST /auth/refresh/ is ever outstanding. Callers that
// arrive while a refresh is in flight block until it resolves and share its
// outcome; on failure every queued caller is rejected with the refresh
// error rather than left hanging.
func (c *Client) refreshAccess(ctx context.Context) (string, error) {
	refresh := c.tokens.RefreshToken()
	if refresh == "" {
		_ = c.tokens.Clear()
		c.authLost()
		return "", ErrAuthExpired
	}

	c.refreshMu.Lock()
	if c.refreshing {
		ch := make(chan refreshResult, 1)
		c.waiters = append(c.waiters, ch)
		c.refreshMu.Unlock()

		select {
		case res := <-ch:
			return res.access, res.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	c.refreshing = true
	c.refreshMu.Unlock()

	access, err := c.postRefresh(ctx, refresh)
	if err == nil {
		// The refresh token is not rotated by this endpoint.
		err = c.tokens.SetTokens(access, refresh)
	}
	if err != nil {
		access = ""
		err = fmt.Errorf("%w: %v", ErrAuthExpired, err)
		_ = c.tokens.Clear()
		c.authLost()
	}

	c.refreshMu.Lock()
	c.refreshing = false
	waiters := c.waiters
	c.waiters = nil
	c.refreshMu.Unlock()

	for _, ch := range waiters {
		ch <- refreshResult{access: access, err: err}
	}
	return access, err
}

// postRefresh calls the refresh endpoint directly, outside send: a 401 here
// must not recurse into another refresh.
func (c *Client) postRefresh(ctx context.Context, refreshToken string) (string, error) {
	body, err := json.Marshal(map[string]string{"refresh": refreshToken})
	if err != nil {
		return "", fmt.Errorf("encode refresh body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/refresh/", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute refresh: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read refresh response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", newAPIError(resp.StatusCode, "", respBody)
	}

	var out struct {
		Access string `json:"access"`
	}
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("decode refresh response: %w", err)
	}
	if out.Access == "" {
		return "", fmt.Errorf("refresh response missing access token")
	}
	return out.Access, nil
}

func (c *Client) authLost() {
	if c.onAuthLost != nil {
		c.onAuthLost()
	}
}
