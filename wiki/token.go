package wiki

import (
	"context"
	"fmt"
	"net/url"

	"github.com/olgasafonova/fandom-bot-mcp-server/metrics"
)

// tokenProbeTitle is the synthetic title used by the legacy token-retrieval
// pattern. The page does not need to exist; intoken=edit returns a token
// for any title.
const tokenProbeTitle = "Main Page"

// cachedToken returns the current CSRF token, or noToken if unset
func (c *Client) cachedToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.csrfToken
}

// invalidateToken resets the cache, but only if it still holds the token
// the failing call used. A concurrent dispatch may already have stored a
// fresher one; that one must survive.
func (c *Client) invalidateToken(used string) {
	c.mu.Lock()
	if c.csrfToken == used {
		c.csrfToken = noToken
	}
	c.mu.Unlock()
}

// ensureToken returns a usable CSRF token, fetching one lazily if the
// cache is unset. Concurrent callers share a single upstream fetch.
func (c *Client) ensureToken(ctx context.Context) (string, error) {
	if tok := c.cachedToken(); tok != noToken {
		return tok, nil
	}

	result, shared, err := c.tokenFetch.Do(ctx, "csrf", func() (interface{}, error) {
		tok, err := c.fetchCSRFToken(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.csrfToken = tok
		c.mu.Unlock()
		return tok, nil
	})
	if err != nil {
		return "", err
	}
	if shared {
		c.logger.Debug("Token fetch coalesced with in-flight request")
	}

	return result.(string), nil
}

// refreshToken discards the rejected token and fetches a replacement
func (c *Client) refreshToken(ctx context.Context, rejected string) (string, error) {
	c.invalidateToken(rejected)
	metrics.TokenRefreshes.Inc()
	return c.ensureToken(ctx)
}

// fetchCSRFToken retrieves a CSRF token from the server, falling back to
// the pre-1.24 retrieval pattern for wikis without meta=tokens.
func (c *Client) fetchCSRFToken(ctx context.Context) (string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("meta", "tokens")
	params.Set("type", "csrf")

	resp, err := c.get(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to get CSRF token: %w", err)
	}

	if tokens := getObject(getObject(resp, "query"), "tokens"); tokens != nil {
		if tok := getString(tokens, "csrftoken"); tok != "" {
			return tok, nil
		}
	}

	c.logger.Debug("No csrftoken in meta=tokens response, trying legacy retrieval")
	return c.fetchLegacyEditToken(ctx)
}

// fetchLegacyEditToken uses the old prop=info&intoken=edit pattern, where
// the token is nested under the first entry of the pages object.
func (c *Client) fetchLegacyEditToken(ctx context.Context) (string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("prop", "info")
	params.Set("intoken", "edit")
	params.Set("titles", tokenProbeTitle)

	resp, err := c.get(ctx, params)
	if err != nil {
		return "", fmt.Errorf("legacy token retrieval failed: %w", err)
	}

	pages := getObject(getObject(resp, "query"), "pages")
	for _, p := range pages {
		page, ok := p.(map[string]interface{})
		if !ok {
			continue
		}
		if tok := getString(page, "edittoken"); tok != "" {
			return tok, nil
		}
	}

	return "", &TokenError{Reason: "no token in response"}
}
