package google

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/jwt"

	"github.com/teemow/freeweek/internal/instrumentation"
)

const (
	// calendarReadonlyScope is the only scope the bot ever requests.
	calendarReadonlyScope = "https://www.googleapis.com/auth/calendar.readonly"

	// tokenURL is the Google OAuth2 token exchange endpoint.
	tokenURL = "https://oauth2.googleapis.com/token"

	// refreshSafetyMargin is subtracted from the token expiry when deciding
	// whether a cached token is still usable.
	refreshSafetyMargin = time.Minute
)

// Credentials identifies a Google Cloud service account.
type Credentials struct {
	// Email is the service-account client email.
	Email string

	// PrivateKey is the PEM-encoded private key. Literal \n sequences, as
	// commonly produced by copying the key JSON into an env var, are
	// accepted.
	PrivateKey string
}

// Configured reports whether both credential fields are present.
func (c Credentials) Configured() bool {
	return c.Email != "" && c.PrivateKey != ""
}

// NormalizePrivateKey converts literal \n escape sequences in a PEM key to
// real newlines and trims surrounding whitespace.
func NormalizePrivateKey(key string) string {
	return strings.TrimSpace(strings.ReplaceAll(key, `\n`, "\n"))
}

// TokenCache holds one access token together with its expiry and serves it
// until shortly before it expires, refreshing through the underlying token
// source at most once per expiry window. It replaces the hidden
// process-wide token state a naive implementation would use: callers pass
// the cache explicitly to whatever needs calendar access.
//
// TokenCache implements oauth2.TokenSource.
type TokenCache struct {
	mu     sync.Mutex
	source oauth2.TokenSource

	token     string
	expiresAt time.Time

	now     func() time.Time
	metrics *instrumentation.Metrics
}

// SetMetrics enables token refresh instrumentation.
func (c *TokenCache) SetMetrics(metrics *instrumentation.Metrics) {
	c.metrics = metrics
}

// NewTokenCache creates a token cache backed by the JWT bearer grant for
// the given service account.
func NewTokenCache(ctx context.Context, creds Credentials) (*TokenCache, error) {
	if !creds.Configured() {
		return nil, fmt.Errorf("google service account credentials are not configured")
	}
	conf := &jwt.Config{
		Email:      creds.Email,
		PrivateKey: []byte(NormalizePrivateKey(creds.PrivateKey)),
		Scopes:     []string{calendarReadonlyScope},
		TokenURL:   tokenURL,
	}
	return &TokenCache{source: conf.TokenSource(ctx), now: time.Now}, nil
}

// NewTokenCacheWithSource creates a token cache over an arbitrary token
// source. Used by tests.
func NewTokenCacheWithSource(source oauth2.TokenSource) *TokenCache {
	return &TokenCache{source: source, now: time.Now}
}

// Valid reports whether the cached token can still be served at the given
// instant. A token is valid while now is before expiry minus the safety
// margin. Tokens without a recorded expiry are never considered valid.
func (c *TokenCache) Valid(now time.Time) bool {
	if c.token == "" || c.expiresAt.IsZero() {
		return false
	}
	return now.Before(c.expiresAt.Add(-refreshSafetyMargin))
}

// AccessToken returns the cached access token, refreshing it first if it is
// missing or about to expire.
func (c *TokenCache) AccessToken(ctx context.Context) (string, error) {
	tok, err := c.Token()
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}

// Token implements oauth2.TokenSource. The refresh is serialized; a burst
// of concurrent callers on an expired cache triggers a single exchange.
func (c *TokenCache) Token() (*oauth2.Token, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Valid(c.now()) {
		return &oauth2.Token{AccessToken: c.token, TokenType: "Bearer", Expiry: c.expiresAt}, nil
	}

	tok, err := c.source.Token()
	c.metrics.RecordTokenRefresh(context.Background(), err)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh access token: %w", err)
	}

	c.token = tok.AccessToken
	c.expiresAt = tok.Expiry
	return tok, nil
}
