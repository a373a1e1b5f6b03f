package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/olgasafonova/fandom-bot-mcp-server/internal/infra"
)

// MaxConcurrentRequests limits parallel API calls to prevent overwhelming the server
const MaxConcurrentRequests = 3

// noToken marks the token cache as empty. It is never sent to the server.
const noToken = ""

// Client handles communication with a MediaWiki-style action API.
// It owns the cookie-backed session, the cached CSRF token, and the
// mutable endpoint; all write operations funnel through it.
type Client struct {
	config     *Config
	httpClient *http.Client
	logger     *slog.Logger

	// Session state. apiURL and csrfToken are the only mutable shared
	// state; both are guarded by mu and mutated only by token refresh,
	// SetEndpoint, and Logout.
	mu        sync.RWMutex
	apiURL    string
	csrfToken string
	identity  Identity

	// Concurrent token fetches are coalesced into one upstream call
	tokenFetch *infra.RequestDeduplicator

	// Semaphore to bound concurrent requests
	semaphore chan struct{}
}

// NewClient creates a new action API client
func NewClient(config *Config, logger *slog.Logger) *Client {
	jar, _ := cookiejar.New(nil)

	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout:   config.Timeout,
			Jar:       jar,
			Transport: transport,
		},
		logger:     logger,
		apiURL:     apiURL(config.Server, config.ScriptPath),
		csrfToken:  noToken,
		identity:   anonymousIdentity(),
		tokenFetch: infra.NewRequestDeduplicator(),
		semaphore:  make(chan struct{}, MaxConcurrentRequests),
	}
}

func apiURL(server, scriptPath string) string {
	return strings.TrimRight(server, "/") + scriptPath + "/api.php"
}

// APIURL returns the endpoint the client is currently pointed at
func (c *Client) APIURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.apiURL
}

// SetEndpoint repoints the client at a different wiki. The cookie jar is
// replaced and the cached token reset: both are scoped to the old endpoint.
func (c *Client) SetEndpoint(server, scriptPath string) {
	jar, _ := cookiejar.New(nil)

	c.mu.Lock()
	c.apiURL = apiURL(server, scriptPath)
	c.httpClient.Jar = jar
	c.csrfToken = noToken
	c.identity = anonymousIdentity()
	c.mu.Unlock()

	c.logger.Info("Endpoint changed", "api_url", apiURL(server, scriptPath))
}

// Logout clears all cookies and resets the cached token and identity.
// It does not contact the server.
func (c *Client) Logout() {
	jar, _ := cookiejar.New(nil)

	c.mu.Lock()
	c.httpClient.Jar = jar
	c.csrfToken = noToken
	c.identity = anonymousIdentity()
	c.mu.Unlock()

	c.logger.Info("Logged out, session state cleared")
}

// Close releases idle connections held by the transport
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// get performs a read request against the action API
func (c *Client) get(ctx context.Context, params url.Values) (map[string]interface{}, error) {
	return c.apiRequest(ctx, http.MethodGet, params)
}

// post performs a form-encoded write request against the action API
func (c *Client) post(ctx context.Context, params url.Values) (map[string]interface{}, error) {
	return c.apiRequest(ctx, http.MethodPost, params)
}

// apiRequest makes a single request to the action API. There is no
// transport-level retry: connection failures surface immediately.
func (c *Client) apiRequest(ctx context.Context, method string, params url.Values) (map[string]interface{}, error) {
	select {
	case c.semaphore <- struct{}{}:
		defer func() { <-c.semaphore }()
	case <-ctx.Done():
		return nil, fmt.Errorf("context cancelled while waiting for rate limiter: %w", ctx.Err())
	}

	params.Set("format", "json")

	endpoint := c.APIURL()
	op := params.Get("action")
	if op == "" {
		op = "request"
	}

	var req *http.Request
	var err error
	if method == http.MethodGet {
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, endpoint, strings.NewReader(params.Encode()))
		if err == nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}

	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close() // Error ignored intentionally; body already read

	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	if len(body) == 0 {
		return nil, &TransportError{Op: op}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("status %d: %s", resp.StatusCode, string(body))}
	}

	var result map[string]interface{}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("unparseable response: %w", err)}
	}

	if errObj, ok := result["error"].(map[string]interface{}); ok {
		code, _ := errObj["code"].(string)
		info, _ := errObj["info"].(string)
		c.logger.Debug("API error envelope",
			"action", op,
			"code", code,
			"info", info)
		return nil, &APIError{Code: code, Info: info}
	}

	return result, nil
}

// getString extracts a string field from a decoded JSON object
func getString(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}

// getInt extracts a numeric field from a decoded JSON object
func getInt(m map[string]interface{}, key string) int {
	if f, ok := m[key].(float64); ok {
		return int(f)
	}
	return 0
}

// getObject extracts a nested JSON object
func getObject(m map[string]interface{}, key string) map[string]interface{} {
	obj, _ := m[key].(map[string]interface{})
	return obj
}
