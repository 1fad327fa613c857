// ABOUTME: Credential transports for the two deployment variants
// ABOUTME: Cookie+CSRF for same-origin deployments, bearer token otherwise
package api

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/golang-jwt/jwt/v5"
	"github.com/natefinch/atomic"
)

// Cookie names set by the backend's login handler.
const (
	sessionCookieName = "olivia_session"
	csrfCookieName    = "olivia_csrf"
	csrfHeaderName    = "X-CSRF-Token"
)

// CredentialTransport attaches the current credential to outgoing requests
// and captures a new credential after login. Implementations hold no
// authorization logic beyond carrying the credential; 401 handling lives
// in the Client.
type CredentialTransport interface {
	// Apply attaches the credential. Returning ErrSessionExpired means the
	// transport knows the credential is unusable without a round trip.
	Apply(req *http.Request) error

	// StoreLogin captures the credential from a successful login.
	StoreLogin(body LoginResponse) error

	// Clear drops the credential.
	Clear()

	// Jar returns the cookie jar the HTTP client should use, or nil.
	Jar() http.CookieJar
}

// cookieTransport rides on the HTTP client's cookie jar: the backend sets
// olivia_session (HttpOnly) and olivia_csrf at login, and state-changing
// requests must echo the CSRF cookie in a header.
type cookieTransport struct {
	jar    http.CookieJar
	apiURL *url.URL
}

// NewCookieTransport builds the cookie+CSRF transport for the given API
// base URL.
func NewCookieTransport(apiURL string) (CredentialTransport, error) {
	base, err := url.Parse(apiURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api url %q: %w", apiURL, err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	return &cookieTransport{jar: jar, apiURL: base}, nil
}

func (t *cookieTransport) Apply(req *http.Request) error {
	if !requiresCSRF(req.Method) {
		return nil
	}

	for _, cookie := range t.jar.Cookies(t.apiURL) {
		if cookie.Name == csrfCookieName && cookie.Value != "" {
			req.Header.Set(csrfHeaderName, cookie.Value)
			return nil
		}
	}

	// No CSRF cookie yet; let the backend decide. It will answer 401/403
	// and the client handles that uniformly.
	return nil
}

func (t *cookieTransport) StoreLogin(LoginResponse) error {
	// Set-Cookie already landed in the jar.
	return nil
}

func (t *cookieTransport) Clear() {
	// cookiejar has no flush API; expire both auth cookies instead.
	expired := []*http.Cookie{
		{Name: sessionCookieName, Value: "", MaxAge: -1},
		{Name: csrfCookieName, Value: "", MaxAge: -1},
	}
	t.jar.SetCookies(t.apiURL, expired)
}

func (t *cookieTransport) Jar() http.CookieJar {
	return t.jar
}

func requiresCSRF(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

// bearerTransport keeps a JWT on disk and presents it as a bearer header.
// The token's exp claim is read (unverified; the secret is the backend's)
// so a stale token fails closed locally instead of on the wire.
type bearerTransport struct {
	path  string
	token string
}

// NewBearerTransport builds the token transport, loading any previously
// saved token. A missing or unreadable token file just means logged out.
func NewBearerTransport() CredentialTransport {
	return NewBearerTransportAt(TokenPath())
}

// NewBearerTransportAt uses a specific token file location.
func NewBearerTransportAt(path string) CredentialTransport {
	t := &bearerTransport{path: path}
	if raw, err := os.ReadFile(t.path); err == nil {
		t.token = strings.TrimSpace(string(raw))
	}
	return t
}

// TokenPath returns the XDG-compliant location of the saved session token.
func TokenPath() string {
	return filepath.Join(xdg.DataHome, "olivia-console", "session-token")
}

func (t *bearerTransport) Apply(req *http.Request) error {
	if t.token == "" {
		return ErrSessionExpired
	}
	if tokenExpired(t.token, time.Now()) {
		return ErrSessionExpired
	}
	req.Header.Set("Authorization", "Bearer "+t.token)
	return nil
}

func (t *bearerTransport) StoreLogin(body LoginResponse) error {
	if body.Token == "" {
		return fmt.Errorf("%w: login response carried no token", ErrProtocol)
	}
	t.token = body.Token

	if err := os.MkdirAll(filepath.Dir(t.path), 0o700); err != nil {
		return fmt.Errorf("create token directory: %w", err)
	}
	if err := atomic.WriteFile(t.path, strings.NewReader(t.token)); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

func (t *bearerTransport) Clear() {
	t.token = ""
	_ = os.Remove(t.path)
}

func (t *bearerTransport) Jar() http.CookieJar {
	return nil
}

// tokenExpired reports whether the JWT's exp claim is in the past. Tokens
// that do not parse or carry no exp are left for the backend to judge.
func tokenExpired(token string, now time.Time) bool {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}
