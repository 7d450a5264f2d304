package oauth

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"linearproxy/internal/workspace"
)

const (
	// LinearAuthorizeURL is Linear's OAuth consent page.
	LinearAuthorizeURL = "https://linear.app/oauth/authorize"
	// LinearTokenURL is Linear's token endpoint.
	LinearTokenURL = "https://api.linear.app/oauth/token"
	// LinearScope is requested verbatim; Linear expects a comma-separated list.
	LinearScope = "read,write"

	// DefaultExchangeTimeout bounds one authorization code exchange.
	DefaultExchangeTimeout = 30 * time.Second

	// maxRecordedBody matches the limit oauth2 applies when reading token responses.
	maxRecordedBody = 1 << 20
)

// LinearEndpoint returns Linear's OAuth endpoint. Credentials go in the form
// body, not in a Basic auth header.
func LinearEndpoint() oauth2.Endpoint {
	return oauth2.Endpoint{
		AuthURL:   LinearAuthorizeURL,
		TokenURL:  LinearTokenURL,
		AuthStyle: oauth2.AuthStyleInParams,
	}
}

// exchanger wraps the oauth2 config used for the authorization-code grant.
type exchanger struct {
	config     *oauth2.Config
	httpClient *http.Client
	timeout    time.Duration
}

func newExchanger(id workspace.Identity, creds workspace.Credentials, endpoint oauth2.Endpoint, httpClient *http.Client, timeout time.Duration) *exchanger {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &exchanger{
		config: &oauth2.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			Endpoint:     endpoint,
			RedirectURL:  id.CallbackURL(),
			Scopes:       []string{LinearScope},
		},
		httpClient: httpClient,
		timeout:    timeout,
	}
}

// authCodeURL builds the consent URL. No state parameter is sent because the
// callback is only reachable on localhost and accepts a single exchange.
func (e *exchanger) authCodeURL() string {
	return e.config.AuthCodeURL("")
}

// exchange trades code for an access token. Every failure is an *ExchangeError.
func (e *exchanger) exchange(ctx context.Context, code string) (RedactedToken, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	recorder := &responseRecorder{base: e.httpClient.Transport}
	client := *e.httpClient
	client.Transport = recorder
	ctx = context.WithValue(ctx, oauth2.HTTPClient, &client)

	tok, err := e.config.Exchange(ctx, code)
	if err == nil && tok.AccessToken == "" {
		err = errors.New("response missing access_token")
	}
	if err != nil {
		exErr := &ExchangeError{Err: err}
		var re *oauth2.RetrieveError
		switch {
		case errors.As(err, &re) && re.Response != nil:
			exErr.StatusCode = re.Response.StatusCode
			exErr.Body = string(re.Body)
		case recorder.statusCode != 0:
			exErr.StatusCode = recorder.statusCode
			exErr.Body = string(recorder.body)
		}
		return RedactedToken{}, exErr
	}
	return NewRedactedToken(tok.AccessToken), nil
}

// responseRecorder keeps the token endpoint's status and body so failures
// on a 2xx answer, such as an unparseable body, can still report them.
type responseRecorder struct {
	base       http.RoundTripper
	statusCode int
	body       []byte
}

func (r *responseRecorder) RoundTrip(req *http.Request) (*http.Response, error) {
	base := r.base
	if base == nil {
		base = http.DefaultTransport
	}
	resp, err := base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRecordedBody))
	_ = resp.Body.Close()
	if err != nil {
		return nil, err
	}
	r.statusCode = resp.StatusCode
	r.body = body
	resp.Body = io.NopCloser(bytes.NewReader(body))
	return resp, nil
}
