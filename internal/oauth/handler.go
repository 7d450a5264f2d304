package oauth

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"sync"

	"linearproxy/pkg/logging"
)

// Handler serves the interactive OAuth endpoints for one workspace.
type Handler struct {
	manager  *Manager
	probeCtx context.Context
	probes   sync.WaitGroup
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithProbeContext sets the context of the connection probe started after a
// successful callback. Cancelling it stops the probe.
func WithProbeContext(ctx context.Context) HandlerOption {
	return func(h *Handler) { h.probeCtx = ctx }
}

// NewHandler creates a Handler backed by manager.
func NewHandler(manager *Manager, opts ...HandlerOption) *Handler {
	h := &Handler{
		manager:  manager,
		probeCtx: context.Background(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// WaitForProbes blocks until every probe started by HandleCallback has
// returned. Call it once no more callbacks can arrive.
func (h *Handler) WaitForProbes() {
	h.probes.Wait()
}

// HandleAuth redirects the browser to Linear's consent page.
func (h *Handler) HandleAuth(w http.ResponseWriter, r *http.Request) {
	logging.Debug("OAuth", "Redirecting to Linear authorization for %s workspace", h.manager.Identity().Name)
	http.Redirect(w, r, h.manager.AuthorizationURL(), http.StatusFound)
}

// HandleCallback completes the exchange for the code Linear redirects back with.
func (h *Handler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	workspaceName := h.manager.Identity().Name
	code := r.URL.Query().Get("code")
	errorParam := r.URL.Query().Get("error")
	errorDesc := r.URL.Query().Get("error_description")

	if errorParam != "" {
		logging.Warn("OAuth", "OAuth callback for %s workspace received error: %s - %s", workspaceName, errorParam, errorDesc)
		msg := errorParam
		if errorDesc != "" {
			msg = errorDesc
		}
		h.renderErrorPage(w, http.StatusBadRequest, fmt.Sprintf("Authorization denied: %s", msg))
		return
	}

	if code == "" {
		logging.Warn("OAuth", "OAuth callback for %s workspace missing code parameter", workspaceName)
		h.renderErrorPage(w, http.StatusBadRequest, "Invalid callback: missing authorization code")
		return
	}

	// A closed browser tab must not abort an exchange Linear already accepted.
	ctx := context.WithoutCancel(r.Context())
	if err := h.manager.CompleteExchange(ctx, code); err != nil {
		switch {
		case errors.Is(err, ErrAlreadyAuthenticated):
			h.renderErrorPage(w, http.StatusConflict, fmt.Sprintf("%s workspace is already authenticated", workspaceName))
		case errors.Is(err, ErrExchangeInProgress):
			h.renderErrorPage(w, http.StatusConflict, "Authentication is already in progress")
		default:
			logging.Error("OAuth", err, "Failed to exchange authorization code for %s workspace", workspaceName)
			h.renderErrorPage(w, http.StatusInternalServerError, fmt.Sprintf("Authentication failed: %s", err.Error()))
		}
		return
	}

	logging.Info("OAuth", "Successfully authenticated %s workspace", workspaceName)

	h.probes.Add(1)
	go func() {
		defer h.probes.Done()
		_ = h.manager.ProbeConnection(h.probeCtx)
	}()

	h.renderSuccessPage(w, workspaceName)
}

// setSecurityHeaders sets recommended security headers for HTML responses.
func setSecurityHeaders(w http.ResponseWriter) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'; script-src 'unsafe-inline'")
	w.Header().Set("Referrer-Policy", "no-referrer")
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
}

const pageStyle = `
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            background: #f4f5f8;
            min-height: 100vh;
            display: flex;
            align-items: center;
            justify-content: center;
            color: #222;
            margin: 0;
        }
        .container {
            text-align: center;
            padding: 2.5rem;
            background: #fff;
            border-radius: 12px;
            box-shadow: 0 2px 12px rgba(0, 0, 0, 0.08);
            max-width: 480px;
        }
        h1 { font-size: 1.5rem; margin-bottom: 0.5rem; }
        p { color: #666; line-height: 1.5; }
        .error { color: #d64545; }`

// renderSuccessPage renders a page that closes itself after two seconds.
func (h *Handler) renderSuccessPage(w http.ResponseWriter, workspaceName string) {
	setSecurityHeaders(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	safeName := html.EscapeString(workspaceName)

	htmlContent := fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>%s Workspace Connected</title>
    <style>%s
    </style>
</head>
<body>
    <div class="container">
        <h1>✅ %s Workspace Connected</h1>
        <p>The %s Linear workspace is now available to your assistant.</p>
        <p>This window will close automatically.</p>
    </div>
    <script>setTimeout(() => window.close(), 2000);</script>
</body>
</html>`, safeName, pageStyle, safeName, safeName)

	_, _ = w.Write([]byte(htmlContent))
}

// renderErrorPage renders an escaped error message with the given status.
func (h *Handler) renderErrorPage(w http.ResponseWriter, status int, message string) {
	setSecurityHeaders(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)

	safeMessage := html.EscapeString(message)

	htmlContent := fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Authentication Failed</title>
    <style>%s
    </style>
</head>
<body>
    <div class="container">
        <h1>❌ Authentication Failed</h1>
        <p class="error">%s</p>
        <p>Close this window and try again.</p>
    </div>
</body>
</html>`, pageStyle, safeMessage)

	_, _ = w.Write([]byte(htmlContent))
}
