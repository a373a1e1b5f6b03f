package wiki

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"
)

// createTestClient creates a client pointed at a wiki that is never contacted
func createTestClient(t *testing.T) *Client {
	t.Helper()
	config := &Config{
		Server:    "https://test.fandom.com",
		Username:  "TestUser",
		Password:  "TestPass",
		Timeout:   5 * time.Second,
		UserAgent: "TestClient/1.0",
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewClient(config, logger)
}

// createMockClient creates a client that talks to a mock server
func createMockClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	config := &Config{
		Server:    server.URL,
		Username:  "TestUser",
		Password:  "TestPass",
		Timeout:   5 * time.Second,
		UserAgent: "TestClient/1.0",
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewClient(config, logger)
}

// writeJSON encodes a mock response body
func writeJSON(w http.ResponseWriter, response map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response)
}

// mockMediaWikiServer creates a test server that returns mock MediaWiki responses.
// It automatically handles token and userinfo requests and delegates everything
// else to handler.
func mockMediaWikiServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		action := r.FormValue("action")
		meta := r.FormValue("meta")

		// Handle userinfo query (session check)
		if action == "query" && meta == "userinfo" {
			writeJSON(w, map[string]interface{}{
				"query": map[string]interface{}{
					"userinfo": map[string]interface{}{
						"id":   float64(1),
						"name": "TestUser",
					},
				},
			})
			return
		}

		// Handle token requests
		if action == "query" && meta == "tokens" {
			tokens := map[string]interface{}{}
			switch r.FormValue("type") {
			case "login":
				tokens["logintoken"] = "test-login-token"
			case "csrf":
				tokens["csrftoken"] = "test-csrf-token"
			case "createaccount":
				tokens["createaccounttoken"] = "test-create-token"
			}
			writeJSON(w, map[string]interface{}{
				"query": map[string]interface{}{"tokens": tokens},
			})
			return
		}

		// Handle login action
		if action == "login" {
			writeJSON(w, map[string]interface{}{
				"login": map[string]interface{}{"result": "Success"},
			})
			return
		}

		// Delegate to custom handler
		handler(w, r)
	}))
}
