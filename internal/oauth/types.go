package oauth

import (
	"context"
	"errors"
	"fmt"
)

// AuthState is the authentication lifecycle of the single workspace token.
type AuthState int

const (
	// StateUnauthenticated means no token is held. It is the initial state
	// and the state a failed exchange returns to.
	StateUnauthenticated AuthState = iota
	// StateExchanging means an authorization code is being exchanged.
	StateExchanging
	// StateAuthenticated means a non-empty access token is held.
	StateAuthenticated
)

// String returns the lower-case state name.
func (s AuthState) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateExchanging:
		return "exchanging"
	case StateAuthenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("AuthState(%d)", int(s))
	}
}

// MarshalText renders the state by name.
func (s AuthState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Status is a consistent snapshot of the manager.
type Status struct {
	State         AuthState `json:"state"`
	Authenticated bool      `json:"authenticated"`
	Connected     bool      `json:"connected"`
}

// Connector establishes the downstream session using an access token.
type Connector interface {
	Connect(ctx context.Context, token string) error
}

// ConnectorFunc adapts a function to the Connector interface.
type ConnectorFunc func(ctx context.Context, token string) error

// Connect calls f.
func (f ConnectorFunc) Connect(ctx context.Context, token string) error {
	return f(ctx, token)
}

var (
	// ErrAlreadyAuthenticated is returned when a token is already held.
	ErrAlreadyAuthenticated = errors.New("already authenticated")
	// ErrExchangeInProgress is returned while another exchange is running.
	ErrExchangeInProgress = errors.New("token exchange already in progress")
	// ErrNotAuthenticated is returned when a token is required but absent.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrMissingCode is returned for an empty authorization code.
	ErrMissingCode = errors.New("authorization code is required")
	// ErrEmptyToken is returned when adopting an empty preset token.
	ErrEmptyToken = errors.New("access token is empty")
)

// ExchangeError describes a failed authorization code exchange. StatusCode
// and Body are set whenever the token endpoint answered, including a 2xx
// answer whose body could not be used.
type ExchangeError struct {
	StatusCode int
	Body       string
	Err        error
}

// Error implements the error interface.
func (e *ExchangeError) Error() string {
	switch {
	case e.StatusCode >= 200 && e.StatusCode < 300:
		return fmt.Sprintf("token exchange returned status %d with an unusable body (%v): %s", e.StatusCode, e.Err, e.Body)
	case e.StatusCode != 0:
		return fmt.Sprintf("token exchange failed with status %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("token exchange failed: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *ExchangeError) Unwrap() error {
	return e.Err
}
