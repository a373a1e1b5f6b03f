package wiki

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "config error",
			err:  &ConfigError{Setting: "FANDOM_SERVER", Reason: "required"},
			want: "invalid configuration: FANDOM_SERVER: required",
		},
		{
			name: "transport error with cause",
			err:  &TransportError{Op: "edit", Err: errors.New("connection refused")},
			want: "transport failure during edit: connection refused",
		},
		{
			name: "transport error empty body",
			err:  &TransportError{Op: "query"},
			want: "transport failure during query: empty response",
		},
		{
			name: "api error",
			err:  &APIError{Code: "badtoken", Info: "Invalid CSRF token."},
			want: "API error [badtoken]: Invalid CSRF token.",
		},
		{
			name: "token error with action",
			err:  &TokenError{Action: "delete", Reason: "refreshed token was rejected"},
			want: `token failure for action "delete": refreshed token was rejected`,
		},
		{
			name: "token error without action",
			err:  &TokenError{Reason: "no token in response"},
			want: "token failure: no token in response",
		},
		{
			name: "login error with result",
			err:  &LoginError{Result: "Failed", Reason: "bad password"},
			want: "login failed: Failed - bad password",
		},
		{
			name: "login error without result",
			err:  &LoginError{Reason: "username and password are required"},
			want: "login failed: username and password are required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsBadToken(t *testing.T) {
	if !isBadToken(&APIError{Code: "badtoken", Info: "Invalid CSRF token."}) {
		t.Error("Expected badtoken code to match")
	}
	if isBadToken(&APIError{Code: "protectedpage"}) {
		t.Error("Expected other API codes not to match")
	}
	if isBadToken(errors.New("badtoken")) {
		t.Error("Expected plain errors not to match")
	}
	if isBadToken(nil) {
		t.Error("Expected nil not to match")
	}

	// Wrapped rejections still count
	wrapped := fmt.Errorf("edit failed: %w", &APIError{Code: "badtoken"})
	if !isBadToken(wrapped) {
		t.Error("Expected wrapped badtoken to match")
	}
}

func TestTransportError_Unwrap(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := &TransportError{Op: "edit", Err: cause}
	if !errors.Is(err, cause) {
		t.Error("Expected TransportError to unwrap to its cause")
	}
}
