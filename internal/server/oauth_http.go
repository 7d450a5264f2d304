package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"linearproxy/internal/oauth"
	"linearproxy/internal/workspace"
	"linearproxy/pkg/logging"
)

const (
	// DefaultReadHeaderTimeout is the default timeout for reading request headers.
	DefaultReadHeaderTimeout = 10 * time.Second
	// DefaultWriteTimeout covers the token exchange performed inside the callback.
	DefaultWriteTimeout = 60 * time.Second
	// DefaultIdleTimeout is the default idle timeout for keepalive connections.
	DefaultIdleTimeout = 120 * time.Second
	// DefaultShutdownTimeout bounds graceful shutdown.
	DefaultShutdownTimeout = 5 * time.Second
)

// HealthResponse is the body served on /health.
type HealthResponse struct {
	Workspace     string `json:"workspace"`
	Authenticated bool   `json:"authenticated"`
	Connected     bool   `json:"connected"`
}

// CallbackServer is the local HTTP listener for the interactive OAuth flow.
type CallbackServer struct {
	identity   workspace.Identity
	manager    *oauth.Manager
	handler    *oauth.Handler
	addr       string
	listener   net.Listener
	httpServer *http.Server

	cancelProbes context.CancelFunc
}

// Option configures a CallbackServer.
type Option func(*CallbackServer)

// WithListenAddr overrides the listen address, normally 127.0.0.1:<port>.
func WithListenAddr(addr string) Option {
	return func(s *CallbackServer) { s.addr = addr }
}

// NewCallbackServer creates a CallbackServer for the manager's workspace.
func NewCallbackServer(manager *oauth.Manager, opts ...Option) *CallbackServer {
	id := manager.Identity()
	probeCtx, cancelProbes := context.WithCancel(context.Background())
	s := &CallbackServer{
		identity:     id,
		manager:      manager,
		handler:      oauth.NewHandler(manager, oauth.WithProbeContext(probeCtx)),
		addr:         fmt.Sprintf("127.0.0.1:%d", id.Port),
		cancelProbes: cancelProbes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateMux creates the mux serving /auth, /oauth/callback and /health.
func (s *CallbackServer) CreateMux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+workspace.AuthPath, s.handler.HandleAuth)
	mux.HandleFunc("GET "+workspace.CallbackPath, s.handler.HandleCallback)
	mux.HandleFunc("GET "+workspace.HealthPath, s.handleHealth)
	return mux
}

func (s *CallbackServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	status := s.manager.Status()
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(HealthResponse{
		Workspace:     s.identity.Name,
		Authenticated: status.Authenticated,
		Connected:     status.Connected,
	})
}

// Listen binds the listen address. It is separate from Serve so a port
// conflict is reported before the stdio transport starts.
func (s *CallbackServer) Listen() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.listener = ln
	return nil
}

// Addr returns the bound address, or the configured one before Listen.
func (s *CallbackServer) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Serve serves HTTP until ctx is cancelled, then shuts down gracefully.
// Connection probes started by callbacks have returned when Serve returns.
func (s *CallbackServer) Serve(ctx context.Context) error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}
	defer s.stopProbes()

	s.httpServer = &http.Server{
		Handler:           s.CreateMux(),
		ReadHeaderTimeout: DefaultReadHeaderTimeout,
		WriteTimeout:      DefaultWriteTimeout,
		IdleTimeout:       DefaultIdleTimeout,
	}

	logging.Info("HTTP", "%s workspace proxy listening on http://%s", s.identity.Name, s.Addr())
	logging.Info("HTTP", "Visit %s to authenticate", s.identity.AuthURL())

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.Serve(s.listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("HTTP server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}
	logging.Debug("HTTP", "HTTP server stopped")
	return nil
}

func (s *CallbackServer) stopProbes() {
	s.cancelProbes()
	s.handler.WaitForProbes()
}
