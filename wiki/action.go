package wiki

import (
	"context"
	"net/http"
	"net/url"
)

// actionRequest describes one call to the action API. Built per operation
// and discarded after dispatch.
type actionRequest struct {
	action     string
	params     url.Values
	method     string
	needsToken bool
}

// doAction drives a request through the token cache and the session.
// If the action requires a token, the cached one is attached (fetched
// lazily when unset). A badtoken rejection triggers exactly one refresh
// and one replay; a badtoken on the replay is terminal.
func (c *Client) doAction(ctx context.Context, req actionRequest) (map[string]interface{}, error) {
	params := url.Values{}
	for k, vs := range req.params {
		params[k] = vs
	}
	params.Set("action", req.action)

	method := req.method
	if method == "" {
		method = http.MethodPost
	}

	var token string
	if req.needsToken {
		var err error
		token, err = c.ensureToken(ctx)
		if err != nil {
			return nil, err
		}
		params.Set("token", token)
	}

	resp, err := c.apiRequest(ctx, method, params)
	if err == nil || !req.needsToken || !isBadToken(err) {
		return resp, err
	}

	c.logger.Warn("Stale token rejected, refreshing and replaying",
		"action", req.action)

	token, refreshErr := c.refreshToken(ctx, token)
	if refreshErr != nil {
		return nil, refreshErr
	}
	params.Set("token", token)

	resp, err = c.apiRequest(ctx, method, params)
	if isBadToken(err) {
		// Refreshed token rejected too; retrying further cannot succeed
		return nil, &TokenError{Action: req.action, Reason: "refreshed token was rejected"}
	}
	return resp, err
}
