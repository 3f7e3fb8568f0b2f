package googleauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cybergallery/upload-broker/pkg/uploadbroker"
)

const (
	grantType = "urn:ietf:params:oauth:grant-type:jwt-bearer"

	// expiryMargin keeps a token from being handed out moments before the
	// remote end stops honoring it.
	expiryMargin = 60 * time.Second

	defaultExpiresIn = 3600
)

// TokenSource exchanges signed assertions for bearer tokens and caches the
// current token in a single slot. At most one token is held at a time; the
// mutex makes concurrent refreshes single-flight so two callers observing an
// expired slot cannot both hit the token endpoint.
type TokenSource struct {
	creds      *Credentials
	tokenURL   string
	scope      string
	httpClient *http.Client
	now        func() time.Time

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// Option configures a TokenSource.
type Option func(*TokenSource)

// WithHTTPClient replaces the HTTP client used for the exchange.
func WithHTTPClient(client *http.Client) Option {
	return func(ts *TokenSource) { ts.httpClient = client }
}

// WithTokenURL overrides the token endpoint (tests point it at a local server).
func WithTokenURL(u string) Option {
	return func(ts *TokenSource) { ts.tokenURL = u }
}

// WithScope overrides the requested scope.
func WithScope(scope string) Option {
	return func(ts *TokenSource) { ts.scope = scope }
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(ts *TokenSource) { ts.now = now }
}

// NewTokenSource creates a TokenSource for the given credentials.
func NewTokenSource(creds *Credentials, opts ...Option) *TokenSource {
	ts := &TokenSource{
		creds:      creds,
		tokenURL:   TokenURL,
		scope:      SpreadsheetsScope,
		httpClient: http.DefaultClient,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(ts)
	}
	return ts
}

// Token returns a valid bearer token, reusing the cached one while it stays
// outside the expiry margin and performing the exchange otherwise. A failed
// exchange is a hard failure: no token is returned and the cache keeps its
// previous state.
func (ts *TokenSource) Token(ctx context.Context) (string, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	now := ts.now()
	if ts.token != "" && now.Before(ts.expiresAt.Add(-expiryMargin)) {
		return ts.token, nil
	}

	assertion, err := ts.creds.SignAssertion(now, ts.scope, ts.tokenURL)
	if err != nil {
		return "", err
	}

	token, expiresIn, err := ts.exchange(ctx, assertion)
	if err != nil {
		return "", err
	}

	ts.token = token
	ts.expiresAt = now.Add(time.Duration(expiresIn) * time.Second)
	return ts.token, nil
}

func (ts *TokenSource) exchange(ctx context.Context, assertion string) (string, int64, error) {
	form := url.Values{
		"grant_type": {grantType},
		"assertion":  {assertion},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ts.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", 0, fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := ts.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("token exchange: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", 0, fmt.Errorf("read token response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", 0, &uploadbroker.UpstreamError{
			Service:    "oauth",
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", 0, fmt.Errorf("decode token response: %w", err)
	}
	if payload.AccessToken == "" {
		return "", 0, &uploadbroker.UpstreamError{
			Service:    "oauth",
			StatusCode: resp.StatusCode,
			Body:       "response contained no access token",
		}
	}
	if payload.ExpiresIn <= 0 {
		payload.ExpiresIn = defaultExpiresIn
	}
	return payload.AccessToken, payload.ExpiresIn, nil
}
