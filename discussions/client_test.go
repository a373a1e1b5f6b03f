package discussions

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// requestLog records the non-auth requests a mock service sees
type requestLog struct {
	method string
	path   string
	body   []byte
}

// mockDiscussionService serves /auth/token plus discussion paths, counting
// auth exchanges and recording every service request.
func mockDiscussionService(t *testing.T, authCalls *atomic.Int32, requests *[]requestLog, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/token" {
			if r.Method != http.MethodPost {
				t.Errorf("Auth method = %s, want POST", r.Method)
			}
			_ = r.ParseForm()
			if r.FormValue("username") == "" || r.FormValue("password") == "" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			authCalls.Add(1)
			http.SetCookie(w, &http.Cookie{Name: "access_token", Value: "session-cookie"})
			w.WriteHeader(http.StatusOK)
			return
		}

		body, _ := io.ReadAll(r.Body)
		*requests = append(*requests, requestLog{method: r.Method, path: r.URL.Path, body: body})

		if handler != nil {
			handler(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"id": "42"})
	}))
}

func createServiceClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	config := &Config{
		ServicesURL: server.URL,
		SiteID:      "1234567",
		Username:    "TestUser",
		Password:    "TestPass",
		Timeout:     5 * time.Second,
		UserAgent:   "TestClient/1.0",
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewClient(config, logger)
}

func TestCreatePost_Success(t *testing.T) {
	var authCalls atomic.Int32
	var requests []requestLog
	server := mockDiscussionService(t, &authCalls, &requests, nil)
	defer server.Close()

	client := createServiceClient(t, server)

	resp, err := client.CreatePost(context.Background(), CreatePostArgs{
		ForumID: "556677",
		Title:   "Weekly event thread",
		Content: "Sign up below.",
	})
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	if resp.ThreadID() != "42" {
		t.Errorf("ThreadID = %q, want %q", resp.ThreadID(), "42")
	}

	if got := authCalls.Load(); got != 1 {
		t.Errorf("Auth exchanges = %d, want 1", got)
	}
	if len(requests) != 1 {
		t.Fatalf("Service requests = %d, want 1", len(requests))
	}
	req := requests[0]
	if req.method != http.MethodPost {
		t.Errorf("Method = %s, want POST", req.method)
	}
	if req.path != "/discussion/1234567/forums/556677/threads" {
		t.Errorf("Path = %q, want thread creation path", req.path)
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(req.body, &payload); err != nil {
		t.Fatalf("Request body is not JSON: %v", err)
	}
	if payload["body"] != "Sign up below." {
		t.Errorf("body = %v, want plain content", payload["body"])
	}
	if payload["forumId"] != "556677" {
		t.Errorf("forumId = %v, want 556677", payload["forumId"])
	}
	if payload["siteId"] != "1234567" {
		t.Errorf("siteId = %v, want configured site", payload["siteId"])
	}
	if payload["source"] != "DESKTOP_WEB" || payload["funnel"] != "TEXT" {
		t.Errorf("source/funnel = %v/%v, want DESKTOP_WEB/TEXT", payload["source"], payload["funnel"])
	}

	// jsonModel is a serialized rich-text doc wrapping the content
	model, ok := payload["jsonModel"].(string)
	if !ok {
		t.Fatal("jsonModel missing or not a string")
	}
	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(model), &doc); err != nil {
		t.Fatalf("jsonModel is not embedded JSON: %v", err)
	}
	if doc["type"] != "doc" {
		t.Errorf("jsonModel type = %v, want doc", doc["type"])
	}
	if !strings.Contains(model, "Sign up below.") {
		t.Error("Expected content inside the rich-text document")
	}
}

func TestCreatePost_Validation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("Unexpected request: %s", r.URL.Path)
	}))
	defer server.Close()

	client := createServiceClient(t, server)

	tests := []struct {
		name string
		args CreatePostArgs
	}{
		{"missing forum", CreatePostArgs{Title: "t", Content: "c"}},
		{"missing title", CreatePostArgs{ForumID: "1", Content: "c"}},
		{"missing content", CreatePostArgs{ForumID: "1", Title: "t"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := client.CreatePost(context.Background(), tt.args); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestLifecycle_FreshAuthPerCall(t *testing.T) {
	var authCalls atomic.Int32
	var requests []requestLog
	server := mockDiscussionService(t, &authCalls, &requests, nil)
	defer server.Close()

	client := createServiceClient(t, server)

	// Two consecutive operations: each one exchanges credentials anew
	if _, err := client.DeletePost(context.Background(), "42"); err != nil {
		t.Fatalf("DeletePost failed: %v", err)
	}
	if _, err := client.UndeletePost(context.Background(), "42"); err != nil {
		t.Fatalf("UndeletePost failed: %v", err)
	}

	if got := authCalls.Load(); got != 2 {
		t.Errorf("Auth exchanges = %d, want 2 (one per operation)", got)
	}
	if len(requests) != 2 {
		t.Fatalf("Service requests = %d, want 2", len(requests))
	}
	if requests[0].method != http.MethodPut || requests[0].path != "/discussion/1234567/threads/42/delete" {
		t.Errorf("First request = %s %s, want PUT delete", requests[0].method, requests[0].path)
	}
	if requests[1].method != http.MethodPut || requests[1].path != "/discussion/1234567/threads/42/undelete" {
		t.Errorf("Second request = %s %s, want PUT undelete", requests[1].method, requests[1].path)
	}
}

func TestLockUnlock_MethodsAndPaths(t *testing.T) {
	var authCalls atomic.Int32
	var requests []requestLog
	server := mockDiscussionService(t, &authCalls, &requests, nil)
	defer server.Close()

	client := createServiceClient(t, server)

	if _, err := client.LockPost(context.Background(), "42"); err != nil {
		t.Fatalf("LockPost failed: %v", err)
	}
	if _, err := client.UnlockPost(context.Background(), "42"); err != nil {
		t.Fatalf("UnlockPost failed: %v", err)
	}

	if requests[0].method != http.MethodPut || requests[0].path != "/discussion/1234567/threads/42/lock" {
		t.Errorf("Lock request = %s %s, want PUT lock", requests[0].method, requests[0].path)
	}
	// Unlock reuses the lock path with DELETE
	if requests[1].method != http.MethodDelete || requests[1].path != "/discussion/1234567/threads/42/lock" {
		t.Errorf("Unlock request = %s %s, want DELETE lock", requests[1].method, requests[1].path)
	}
}

func TestLifecycle_RequiresThreadID(t *testing.T) {
	var authCalls atomic.Int32
	var requests []requestLog
	server := mockDiscussionService(t, &authCalls, &requests, nil)
	defer server.Close()

	client := createServiceClient(t, server)

	if _, err := client.DeletePost(context.Background(), ""); err == nil {
		t.Error("Expected error for empty thread ID")
	}
	if got := authCalls.Load(); got != 0 {
		t.Errorf("Auth exchanges = %d, want 0 (validation precedes auth)", got)
	}
}

func TestServiceCall_NonJSONPassthrough(t *testing.T) {
	var authCalls atomic.Int32
	var requests []requestLog
	server := mockDiscussionService(t, &authCalls, &requests, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})
	defer server.Close()

	client := createServiceClient(t, server)

	resp, err := client.LockPost(context.Background(), "42")
	if err != nil {
		t.Fatalf("LockPost failed: %v", err)
	}
	if resp.Raw != "OK" {
		t.Errorf("Raw = %q, want non-JSON body passed through", resp.Raw)
	}
	if resp.ThreadID() != "" {
		t.Error("Expected no parsed fields for raw response")
	}
}

func TestServiceCall_ErrorField(t *testing.T) {
	var authCalls atomic.Int32
	var requests []requestLog
	server := mockDiscussionService(t, &authCalls, &requests, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"error": "thread not found"})
	})
	defer server.Close()

	client := createServiceClient(t, server)

	_, err := client.DeletePost(context.Background(), "missing")
	var serviceErr *ServiceError
	if !errors.As(err, &serviceErr) {
		t.Fatalf("Expected *ServiceError, got %T: %v", err, err)
	}
	if !strings.Contains(serviceErr.Message, "thread not found") {
		t.Errorf("Message = %q, want service error text", serviceErr.Message)
	}
}

func TestServiceCall_HTTPErrorStatus(t *testing.T) {
	var authCalls atomic.Int32
	var requests []requestLog
	server := mockDiscussionService(t, &authCalls, &requests, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"title": "Forbidden", "status": float64(403)})
	})
	defer server.Close()

	client := createServiceClient(t, server)

	_, err := client.LockPost(context.Background(), "42")
	var serviceErr *ServiceError
	if !errors.As(err, &serviceErr) {
		t.Fatalf("Expected *ServiceError, got %T: %v", err, err)
	}
	if serviceErr.Status != http.StatusForbidden {
		t.Errorf("Status = %d, want 403", serviceErr.Status)
	}
	if serviceErr.Message != "Forbidden" {
		t.Errorf("Message = %q, want title field", serviceErr.Message)
	}
}

func TestAuthenticate_Failure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/token" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte("invalid credentials"))
			return
		}
		t.Errorf("Service call reached despite auth failure: %s", r.URL.Path)
	}))
	defer server.Close()

	client := createServiceClient(t, server)

	_, err := client.DeletePost(context.Background(), "42")
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("Expected *AuthError, got %T: %v", err, err)
	}
	if authErr.Status != http.StatusUnauthorized {
		t.Errorf("Status = %d, want 401", authErr.Status)
	}
}

func TestAuthenticate_MissingCredentials(t *testing.T) {
	config := &Config{
		ServicesURL: "https://services.example.com",
		SiteID:      "1234567",
		Timeout:     time.Second,
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	client := NewClient(config, logger)

	_, err := client.LockPost(context.Background(), "42")
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("Expected *AuthError, got %T: %v", err, err)
	}
}

func TestConfig_DiscussionBase(t *testing.T) {
	config := &Config{ServicesURL: "https://services.fandom.com", SiteID: "99"}
	if got := config.DiscussionBase(); got != "https://services.fandom.com/discussion/99" {
		t.Errorf("DiscussionBase = %q", got)
	}
}

func TestLoadConfig_RequiresSiteID(t *testing.T) {
	t.Setenv("FANDOM_SITE_ID", "")

	if _, err := LoadConfig(); err == nil {
		t.Error("Expected error without FANDOM_SITE_ID")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("FANDOM_SITE_ID", "1234567")
	t.Setenv("FANDOM_SERVICES_URL", "")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.ServicesURL != DefaultServicesURL {
		t.Errorf("ServicesURL = %q, want default", config.ServicesURL)
	}
	if config.SiteID != "1234567" {
		t.Errorf("SiteID = %q, want 1234567", config.SiteID)
	}
}
