package oauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"linearproxy/internal/workspace"
	"linearproxy/pkg/logging"
)

const (
	defaultProbeMaxTries        = 3
	defaultProbeInitialInterval = 500 * time.Millisecond
)

// Manager owns the authentication state of one workspace. All transitions
// happen under mu; the token endpoint round-trip happens outside it with the
// state parked at StateExchanging, so Status never blocks on the network.
type Manager struct {
	mu        sync.RWMutex
	state     AuthState
	token     RedactedToken
	connected bool

	identity  workspace.Identity
	exchanger *exchanger
	connector Connector

	probeMaxTries        uint
	probeInitialInterval time.Duration
	probeGroup           singleflight.Group
}

// Option configures a Manager.
type Option func(*managerOptions)

type managerOptions struct {
	endpoint             oauth2.Endpoint
	httpClient           *http.Client
	exchangeTimeout      time.Duration
	connector            Connector
	probeMaxTries        uint
	probeInitialInterval time.Duration
}

// WithEndpoint overrides Linear's OAuth endpoint.
func WithEndpoint(endpoint oauth2.Endpoint) Option {
	return func(o *managerOptions) { o.endpoint = endpoint }
}

// WithHTTPClient sets the client used for the token exchange.
func WithHTTPClient(c *http.Client) Option {
	return func(o *managerOptions) { o.httpClient = c }
}

// WithExchangeTimeout bounds a single exchange.
func WithExchangeTimeout(d time.Duration) Option {
	return func(o *managerOptions) { o.exchangeTimeout = d }
}

// WithConnector sets the downstream connector used by ProbeConnection.
func WithConnector(c Connector) Option {
	return func(o *managerOptions) { o.connector = c }
}

// WithProbeRetry sets how many connection attempts a probe makes and the
// first backoff interval between them.
func WithProbeRetry(maxTries uint, initialInterval time.Duration) Option {
	return func(o *managerOptions) {
		o.probeMaxTries = maxTries
		o.probeInitialInterval = initialInterval
	}
}

// NewManager creates a Manager in StateUnauthenticated.
func NewManager(id workspace.Identity, creds workspace.Credentials, opts ...Option) *Manager {
	o := managerOptions{
		endpoint:             LinearEndpoint(),
		exchangeTimeout:      DefaultExchangeTimeout,
		probeMaxTries:        defaultProbeMaxTries,
		probeInitialInterval: defaultProbeInitialInterval,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.connector == nil {
		o.connector = ConnectorFunc(func(context.Context, string) error { return nil })
	}
	if o.probeMaxTries == 0 {
		o.probeMaxTries = 1
	}

	return &Manager{
		state:                StateUnauthenticated,
		identity:             id,
		exchanger:            newExchanger(id, creds, o.endpoint, o.httpClient, o.exchangeTimeout),
		connector:            o.connector,
		probeMaxTries:        o.probeMaxTries,
		probeInitialInterval: o.probeInitialInterval,
	}
}

// Identity returns the workspace this manager authenticates.
func (m *Manager) Identity() workspace.Identity {
	return m.identity
}

// AuthorizationURL returns the Linear consent URL for this workspace.
func (m *Manager) AuthorizationURL() string {
	return m.exchanger.authCodeURL()
}

// AdoptPresetToken moves straight to StateAuthenticated with a token supplied
// out of band. It never overwrites an existing token.
func (m *Manager) AdoptPresetToken(token string) error {
	if token == "" {
		return ErrEmptyToken
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case StateAuthenticated:
		return ErrAlreadyAuthenticated
	case StateExchanging:
		return ErrExchangeInProgress
	}

	m.token = NewRedactedToken(token)
	m.state = StateAuthenticated
	m.connected = false

	logging.Audit(logging.AuditEvent{
		Action:    "token_adopt",
		Outcome:   "success",
		Workspace: m.identity.Name,
		Details:   "using pre-provisioned access token",
	})
	return nil
}

// CompleteExchange trades an authorization code for an access token.
// On failure the manager returns to StateUnauthenticated and the error is an
// *ExchangeError.
func (m *Manager) CompleteExchange(ctx context.Context, code string) error {
	if code == "" {
		return ErrMissingCode
	}

	m.mu.Lock()
	switch m.state {
	case StateExchanging:
		m.mu.Unlock()
		return ErrExchangeInProgress
	case StateAuthenticated:
		m.mu.Unlock()
		return ErrAlreadyAuthenticated
	}
	m.state = StateExchanging
	m.mu.Unlock()

	logging.Debug("OAuth", "Exchanging authorization code for %s workspace", m.identity.Name)
	token, err := m.exchanger.exchange(ctx, code)

	m.mu.Lock()
	if err != nil {
		m.state = StateUnauthenticated
		m.mu.Unlock()

		logging.Audit(logging.AuditEvent{
			Action:    "token_exchange",
			Outcome:   "failure",
			Workspace: m.identity.Name,
			Error:     err.Error(),
		})
		return err
	}
	m.token = token
	m.state = StateAuthenticated
	m.connected = false
	m.mu.Unlock()

	logging.Audit(logging.AuditEvent{
		Action:    "token_exchange",
		Outcome:   "success",
		Workspace: m.identity.Name,
	})
	return nil
}

// CurrentToken returns the access token, or ErrNotAuthenticated.
func (m *Manager) CurrentToken() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.state != StateAuthenticated {
		return "", ErrNotAuthenticated
	}
	return m.token.Value(), nil
}

// Status returns a consistent snapshot.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Status{
		State:         m.state,
		Authenticated: m.state == StateAuthenticated,
		Connected:     m.connected,
	}
}

// ProbeConnection connects downstream with the current token, retrying with
// exponential backoff. Concurrent calls share one attempt. A failure is logged
// and leaves connected false; the auth state is never changed.
func (m *Manager) ProbeConnection(ctx context.Context) error {
	_, err, _ := m.probeGroup.Do("probe", func() (any, error) {
		return nil, m.probe(ctx)
	})
	return err
}

func (m *Manager) probe(ctx context.Context) error {
	token, err := m.CurrentToken()
	if err != nil {
		return err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = m.probeInitialInterval

	attempt := 0
	operation := func() (struct{}, error) {
		attempt++
		return struct{}{}, m.connector.Connect(ctx, token)
	}

	_, err = backoff.Retry(ctx, operation,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(m.probeMaxTries),
		backoff.WithNotify(func(err error, d time.Duration) {
			logging.Debug("OAuth", "Connection attempt %d for %s workspace failed, retrying in %v: %v",
				attempt, m.identity.Name, d, err)
		}),
	)
	if err != nil {
		logging.Error("OAuth", err, "Failed to connect to Linear MCP for %s workspace after %d attempt(s)", m.identity.Name, attempt)
		return fmt.Errorf("failed to connect to Linear MCP: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// The token may have been replaced while probing; only the token that
	// was probed may be marked connected.
	if m.state != StateAuthenticated || m.token.Value() != token {
		return errors.New("authentication changed during connection probe")
	}
	m.connected = true
	logging.Info("OAuth", "Connected to Linear MCP for %s workspace", m.identity.Name)
	return nil
}
