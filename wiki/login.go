package wiki

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/olgasafonova/fandom-bot-mcp-server/metrics"
)

// Login performs the login handshake and primes the cached identity.
// Modern backends hand out a login token up front; legacy backends
// reject the first attempt with NeedToken and embed the token to use
// in that response.
func (c *Client) Login(ctx context.Context, username, password string) (Identity, error) {
	if username == "" || password == "" {
		return Identity{}, &LoginError{Reason: "username and password are required"}
	}

	token, err := c.fetchTokenOfType(ctx, "login")
	if err != nil {
		var tokenErr *TokenError
		if !errors.As(err, &tokenErr) {
			return Identity{}, err
		}
		// Backend predates meta=tokens; the first login attempt will
		// come back as NeedToken with a token to resubmit.
		token = ""
	}

	resp, err := c.submitLogin(ctx, username, password, token)
	if err != nil {
		metrics.AuthFailures.WithLabelValues("login").Inc()
		return Identity{}, err
	}

	login := getObject(resp, "login")
	if login == nil {
		metrics.AuthFailures.WithLabelValues("login").Inc()
		return Identity{}, &LoginError{Reason: "unspecified"}
	}

	if getString(login, "result") == "NeedToken" {
		token = getString(login, "token")
		if token == "" {
			metrics.AuthFailures.WithLabelValues("login").Inc()
			return Identity{}, &LoginError{Result: "NeedToken", Reason: "no second-phase token in response"}
		}
		resp, err = c.submitLogin(ctx, username, password, token)
		if err != nil {
			metrics.AuthFailures.WithLabelValues("login").Inc()
			return Identity{}, err
		}
		login = getObject(resp, "login")
		if login == nil {
			metrics.AuthFailures.WithLabelValues("login").Inc()
			return Identity{}, &LoginError{Reason: "unspecified"}
		}
	}

	if result := getString(login, "result"); result != "Success" {
		metrics.AuthFailures.WithLabelValues("login").Inc()
		reason := getString(login, "reason")
		if reason == "" {
			reason = "unspecified"
		}
		return Identity{}, &LoginError{Result: result, Reason: reason}
	}

	c.logger.Info("Logged in", "username", username)

	return c.Whoami(ctx)
}

// submitLogin posts credentials, with the login token when one is known
func (c *Client) submitLogin(ctx context.Context, username, password, token string) (map[string]interface{}, error) {
	params := url.Values{}
	params.Set("action", "login")
	params.Set("lgname", username)
	params.Set("lgpassword", password)
	if token != "" {
		params.Set("lgtoken", token)
	}
	return c.post(ctx, params)
}

// Whoami queries the server for the session's current user and caches
// the result.
func (c *Client) Whoami(ctx context.Context) (Identity, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("meta", "userinfo")
	params.Set("uiprop", "groups|rights|editcount")

	resp, err := c.get(ctx, params)
	if err != nil {
		return Identity{}, err
	}

	userinfo := getObject(getObject(resp, "query"), "userinfo")
	if userinfo == nil {
		return Identity{}, fmt.Errorf("unexpected userinfo response format")
	}

	_, anon := userinfo["anon"]
	identity := Identity{
		ID:        getInt(userinfo, "id"),
		Name:      getString(userinfo, "name"),
		Anonymous: anon || getInt(userinfo, "id") == 0,
		EditCount: getInt(userinfo, "editcount"),
	}
	if groups, ok := userinfo["groups"].([]interface{}); ok {
		for _, g := range groups {
			if name, ok := g.(string); ok {
				identity.Groups = append(identity.Groups, name)
			}
		}
	}
	if rights, ok := userinfo["rights"].([]interface{}); ok {
		for _, r := range rights {
			if name, ok := r.(string); ok {
				identity.Rights = append(identity.Rights, name)
			}
		}
	}

	c.mu.Lock()
	c.identity = identity
	c.mu.Unlock()

	return identity, nil
}

// CurrentIdentity returns the identity cached by the last Login, Whoami
// or Logout. It is advisory; nothing gates behavior on it.
func (c *Client) CurrentIdentity() Identity {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.identity
}
