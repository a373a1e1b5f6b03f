// Package discussions is a client for the Fandom discussion service: a
// thread-based messaging backend with its own authentication and JSON
// wire format, entirely separate from the wiki action API. Its cookies
// and session state never mix with the wiki client's.
package discussions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

// Client issues thread lifecycle operations against the discussion
// service. Every operation performs a fresh credential exchange before
// its single service call, so no cookie ever goes stale between calls.
type Client struct {
	config     *Config
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new discussion-service client
func NewClient(config *Config, logger *slog.Logger) *Client {
	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:      10,
				IdleConnTimeout:   90 * time.Second,
				ForceAttemptHTTP2: true,
			},
		},
		logger: logger,
	}
}

// authenticate exchanges credentials for a fresh cookie set. The jar is
// replaced each time so stale cookies from a previous call never leak
// into the next operation.
func (c *Client) authenticate(ctx context.Context) error {
	if c.config.Username == "" || c.config.Password == "" {
		return &AuthError{Reason: "username and password are required"}
	}

	jar, _ := cookiejar.New(nil)
	c.httpClient.Jar = jar

	form := url.Values{}
	form.Set("username", c.config.Username)
	form.Set("password", c.config.Password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.config.ServicesURL+"/auth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.config.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &AuthError{Reason: err.Error()}
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &AuthError{Status: resp.StatusCode, Reason: string(body)}
	}

	c.logger.Debug("Discussion session authenticated", "site_id", c.config.SiteID)
	return nil
}

// serviceCall issues one HTTP call against the discussion base URL and
// normalizes the response: parsed JSON fields when the body is JSON,
// the raw text otherwise, and a typed error when the service reports one.
func (c *Client) serviceCall(ctx context.Context, method, path string, payload interface{}) (ThreadResponse, error) {
	var bodyReader io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return ThreadResponse{}, fmt.Errorf("failed to encode request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.DiscussionBase()+path, bodyReader)
	if err != nil {
		return ThreadResponse{}, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", c.config.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ThreadResponse{}, fmt.Errorf("request failed: %w", err)
	}
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return ThreadResponse{}, fmt.Errorf("failed to read response: %w", err)
	}

	var fields map[string]interface{}
	if json.Unmarshal(body, &fields) != nil {
		// Not JSON; the raw body passes through unchanged
		if resp.StatusCode >= http.StatusBadRequest {
			return ThreadResponse{}, &ServiceError{Status: resp.StatusCode, Message: string(body)}
		}
		return ThreadResponse{Raw: string(body)}, nil
	}

	if errField, ok := fields["error"]; ok {
		return ThreadResponse{}, &ServiceError{
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("%v", errField),
		}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		message := string(body)
		if title, ok := fields["title"].(string); ok && title != "" {
			message = title
		}
		return ThreadResponse{}, &ServiceError{Status: resp.StatusCode, Message: message}
	}

	return ThreadResponse{Fields: fields}, nil
}

// CreatePost opens a new thread in a forum
func (c *Client) CreatePost(ctx context.Context, args CreatePostArgs) (ThreadResponse, error) {
	if args.ForumID == "" {
		return ThreadResponse{}, fmt.Errorf("forum_id is required")
	}
	if args.Title == "" {
		return ThreadResponse{}, fmt.Errorf("title is required")
	}
	if args.Content == "" {
		return ThreadResponse{}, fmt.Errorf("content is required")
	}

	if err := c.authenticate(ctx); err != nil {
		return ThreadResponse{}, err
	}

	model, err := json.Marshal(textDocument(args.Content))
	if err != nil {
		return ThreadResponse{}, fmt.Errorf("failed to encode rich-text body: %w", err)
	}

	payload := createThreadBody{
		Body:        args.Content,
		JSONModel:   string(model),
		Attachments: attachments{ContentImages: []interface{}{}, OpenGraphs: []interface{}{}, AtMentions: []interface{}{}},
		ForumID:     args.ForumID,
		SiteID:      c.config.SiteID,
		Title:       args.Title,
		Source:      "DESKTOP_WEB",
		Funnel:      "TEXT",
		ArticleIDs:  []string{},
	}

	resp, err := c.serviceCall(ctx, http.MethodPost, "/forums/"+args.ForumID+"/threads", payload)
	if err != nil {
		return ThreadResponse{}, err
	}

	c.logger.Info("Thread created", "forum_id", args.ForumID, "thread_id", resp.ThreadID())
	return resp, nil
}

// DeletePost deletes a thread
func (c *Client) DeletePost(ctx context.Context, threadID string) (ThreadResponse, error) {
	return c.lifecycle(ctx, http.MethodPut, threadID, "delete")
}

// UndeletePost restores a deleted thread
func (c *Client) UndeletePost(ctx context.Context, threadID string) (ThreadResponse, error) {
	return c.lifecycle(ctx, http.MethodPut, threadID, "undelete")
}

// LockPost locks a thread against replies
func (c *Client) LockPost(ctx context.Context, threadID string) (ThreadResponse, error) {
	return c.lifecycle(ctx, http.MethodPut, threadID, "lock")
}

// UnlockPost reopens a locked thread
func (c *Client) UnlockPost(ctx context.Context, threadID string) (ThreadResponse, error) {
	return c.lifecycle(ctx, http.MethodDelete, threadID, "lock")
}

// lifecycle drives the delete/undelete/lock/unlock transitions, each a
// fresh auth exchange followed by exactly one service call.
func (c *Client) lifecycle(ctx context.Context, method, threadID, transition string) (ThreadResponse, error) {
	if threadID == "" {
		return ThreadResponse{}, fmt.Errorf("thread_id is required")
	}

	if err := c.authenticate(ctx); err != nil {
		return ThreadResponse{}, err
	}

	resp, err := c.serviceCall(ctx, method, "/threads/"+threadID+"/"+transition, nil)
	if err != nil {
		return ThreadResponse{}, err
	}

	c.logger.Info("Thread transition applied",
		"thread_id", threadID,
		"transition", transition,
		"method", method)
	return resp, nil
}
