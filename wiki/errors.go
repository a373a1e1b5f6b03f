package wiki

import (
	"errors"
	"fmt"
)

// badTokenCode is the API error code the server returns when the presented
// CSRF token is no longer valid.
const badTokenCode = "badtoken"

// ConfigError indicates missing or invalid client configuration
type ConfigError struct {
	Setting string
	Reason  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Setting, e.Reason)
}

// TransportError indicates the request never produced a usable response:
// a connection failure, or a response with no body at all.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transport failure during %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("transport failure during %s: empty response", e.Op)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// APIError is an upstream error envelope from the action API,
// carrying the server's error code and message verbatim.
type APIError struct {
	Code string
	Info string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error [%s]: %s", e.Code, e.Info)
}

// isBadToken reports whether err is the API's stale-token rejection
func isBadToken(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == badTokenCode
}

// TokenError indicates a CSRF token could not be obtained, or that a
// refreshed token was still rejected on replay.
type TokenError struct {
	Action string
	Reason string
}

func (e *TokenError) Error() string {
	if e.Action != "" {
		return fmt.Sprintf("token failure for action %q: %s", e.Action, e.Reason)
	}
	return fmt.Sprintf("token failure: %s", e.Reason)
}

// LoginError indicates the login handshake failed, carrying the
// upstream result and reason when the response shape was recognized.
type LoginError struct {
	Result string
	Reason string
}

func (e *LoginError) Error() string {
	if e.Result != "" {
		return fmt.Sprintf("login failed: %s - %s", e.Result, e.Reason)
	}
	return fmt.Sprintf("login failed: %s", e.Reason)
}
