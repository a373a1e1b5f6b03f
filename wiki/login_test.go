package wiki

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestLogin_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		switch {
		case r.FormValue("meta") == "tokens":
			writeJSON(w, map[string]interface{}{
				"query": map[string]interface{}{
					"tokens": map[string]interface{}{"logintoken": "login-token"},
				},
			})
		case r.FormValue("action") == "login":
			if got := r.FormValue("lgtoken"); got != "login-token" {
				t.Errorf("lgtoken = %q, want %q", got, "login-token")
			}
			if got := r.FormValue("lgname"); got != "BotUser" {
				t.Errorf("lgname = %q, want %q", got, "BotUser")
			}
			writeJSON(w, map[string]interface{}{
				"login": map[string]interface{}{"result": "Success", "lgusername": "BotUser"},
			})
		case r.FormValue("meta") == "userinfo":
			writeJSON(w, map[string]interface{}{
				"query": map[string]interface{}{
					"userinfo": map[string]interface{}{
						"id":        float64(42),
						"name":      "BotUser",
						"editcount": float64(1500),
						"groups":    []interface{}{"bot", "sysop"},
						"rights":    []interface{}{"edit", "delete", "block"},
					},
				},
			})
		}
	}))
	defer server.Close()

	client := createMockClient(t, server)
	defer client.Close()

	identity, err := client.Login(context.Background(), "BotUser", "secret")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if identity.Anonymous {
		t.Error("Expected logged-in identity to be non-anonymous")
	}
	if identity.Name != "BotUser" {
		t.Errorf("Name = %q, want %q", identity.Name, "BotUser")
	}
	if identity.ID != 42 {
		t.Errorf("ID = %d, want 42", identity.ID)
	}
	if len(identity.Groups) != 2 || identity.Groups[0] != "bot" {
		t.Errorf("Groups = %v, want [bot sysop]", identity.Groups)
	}

	// Identity is cached on the client
	if cached := client.CurrentIdentity(); cached.Name != "BotUser" {
		t.Errorf("CurrentIdentity().Name = %q, want %q", cached.Name, "BotUser")
	}

	// Logout drops back to anonymous without contacting the server
	client.Logout()
	if !client.CurrentIdentity().Anonymous {
		t.Error("Expected anonymous identity after Logout")
	}
}

func TestLogin_LegacyNeedTokenFlow(t *testing.T) {
	var loginAttempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		switch {
		case r.FormValue("meta") == "tokens":
			// Wiki predates meta=tokens: no login token available up front
			writeJSON(w, map[string]interface{}{
				"query": map[string]interface{}{"tokens": map[string]interface{}{}},
			})
		case r.FormValue("action") == "login":
			attempt := loginAttempts.Add(1)
			if attempt == 1 {
				if r.FormValue("lgtoken") != "" {
					t.Error("First legacy attempt must not carry lgtoken")
				}
				writeJSON(w, map[string]interface{}{
					"login": map[string]interface{}{
						"result": "NeedToken",
						"token":  "handshake-token",
					},
				})
				return
			}
			if got := r.FormValue("lgtoken"); got != "handshake-token" {
				t.Errorf("Second attempt lgtoken = %q, want %q", got, "handshake-token")
			}
			writeJSON(w, map[string]interface{}{
				"login": map[string]interface{}{"result": "Success"},
			})
		case r.FormValue("meta") == "userinfo":
			writeJSON(w, map[string]interface{}{
				"query": map[string]interface{}{
					"userinfo": map[string]interface{}{
						"id":   float64(7),
						"name": "LegacyBot",
					},
				},
			})
		}
	}))
	defer server.Close()

	client := createMockClient(t, server)
	defer client.Close()

	identity, err := client.Login(context.Background(), "LegacyBot", "secret")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if got := loginAttempts.Load(); got != 2 {
		t.Errorf("Login attempts = %d, want 2 (NeedToken resubmission)", got)
	}
	if identity.Name != "LegacyBot" {
		t.Errorf("Name = %q, want %q", identity.Name, "LegacyBot")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		switch {
		case r.FormValue("meta") == "tokens":
			writeJSON(w, map[string]interface{}{
				"query": map[string]interface{}{
					"tokens": map[string]interface{}{"logintoken": "login-token"},
				},
			})
		case r.FormValue("action") == "login":
			writeJSON(w, map[string]interface{}{
				"login": map[string]interface{}{
					"result": "Failed",
					"reason": "Incorrect username or password entered.",
				},
			})
		}
	}))
	defer failing.Close()

	client := createMockClient(t, failing)
	defer client.Close()

	_, err := client.Login(context.Background(), "BotUser", "wrong")
	var loginErr *LoginError
	if !errors.As(err, &loginErr) {
		t.Fatalf("Expected *LoginError, got %T: %v", err, err)
	}
	if loginErr.Result != "Failed" {
		t.Errorf("Result = %q, want %q", loginErr.Result, "Failed")
	}
	if loginErr.Reason == "" {
		t.Error("Expected failure reason to be carried through")
	}
}

func TestLogin_MissingCredentials(t *testing.T) {
	client := createTestClient(t)
	defer client.Close()

	_, err := client.Login(context.Background(), "", "")
	var loginErr *LoginError
	if !errors.As(err, &loginErr) {
		t.Fatalf("Expected *LoginError, got %T: %v", err, err)
	}
}

func TestWhoami_AnonymousSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		writeJSON(w, map[string]interface{}{
			"query": map[string]interface{}{
				"userinfo": map[string]interface{}{
					"id":   float64(0),
					"name": "127.0.0.1",
					"anon": "",
				},
			},
		})
	}))
	defer server.Close()

	client := createMockClient(t, server)
	defer client.Close()

	identity, err := client.Whoami(context.Background())
	if err != nil {
		t.Fatalf("Whoami failed: %v", err)
	}
	if !identity.Anonymous {
		t.Error("Expected anonymous identity for anon session")
	}
}
