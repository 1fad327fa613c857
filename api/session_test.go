// ABOUTME: Tests for session lifecycle: login, verify, logout, 401 teardown
package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user": "admin",
		"exp":  expiresAt.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func bearerClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session-token")
	return NewClient(serverURL, serverURL, NewBearerTransportAt(path))
}

func TestLoginSuccessStoresBearerToken(t *testing.T) {
	token := signedToken(t, time.Now().Add(time.Hour))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/login", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"), "login must not carry a credential")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"authenticated":true,"token":"` + token + `"}`))
	}))
	defer server.Close()

	path := filepath.Join(t.TempDir(), "session-token")
	client := NewClient(server.URL, server.URL, NewBearerTransportAt(path))

	require.NoError(t, client.Login(context.Background(), "admin", "secret"))
	assert.True(t, client.Authenticated())

	saved, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, token, string(saved))
}

func TestLoginFailureLeavesStateUntouched(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
	}))
	defer server.Close()

	path := filepath.Join(t.TempDir(), "session-token")
	client := NewClient(server.URL, server.URL, NewBearerTransportAt(path))

	err := client.Login(context.Background(), "admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.False(t, client.Authenticated())

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "no token may be written on a failed login")
}

func TestVerifySessionFailClosed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	serverURL := server.URL
	server.Close() // transport failure

	client := bearerClient(t, serverURL)
	seedToken(t, client, signedToken(t, time.Now().Add(time.Hour)))

	assert.False(t, client.VerifySession(context.Background()))
	assert.False(t, client.Authenticated())
}

func TestVerifySessionAccepted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/verify", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := bearerClient(t, server.URL)
	seedToken(t, client, signedToken(t, time.Now().Add(time.Hour)))

	assert.True(t, client.VerifySession(context.Background()))
	assert.True(t, client.Authenticated())
}

func TestExpiredBearerTokenFailsClosedLocally(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := bearerClient(t, server.URL)
	seedToken(t, client, signedToken(t, time.Now().Add(-time.Hour)))

	assert.False(t, client.VerifySession(context.Background()))
	assert.Zero(t, requests, "a stale token must not reach the wire")
}

func TestUnauthorizedResponseTearsDownSessionOnce(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/verify" {
			w.WriteHeader(http.StatusOK)
			return
		}
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := bearerClient(t, server.URL)
	seedToken(t, client, signedToken(t, time.Now().Add(time.Hour)))
	require.True(t, client.VerifySession(context.Background()))

	expiries := 0
	client.OnSessionExpired(func() { expiries++ })

	_, err := client.ListConciliations(context.Background())
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.False(t, client.Authenticated())
	assert.Equal(t, 1, expiries)

	// A second failing call must not fire the handlers again.
	_, err = client.ListConciliations(context.Background())
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, 1, expiries)
}

func TestLogoutClearsLocallyDespiteNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/verify" {
			w.WriteHeader(http.StatusOK)
			return
		}
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := bearerClient(t, server.URL)
	seedToken(t, client, signedToken(t, time.Now().Add(time.Hour)))
	require.True(t, client.VerifySession(context.Background()))

	cancelled := false
	client.OnSessionExpired(func() { cancelled = true })

	client.Logout(context.Background())
	assert.False(t, client.Authenticated())
	assert.True(t, cancelled, "logout cancels polling through the expiry handlers")
}

func TestCookieTransportEchoesCSRFHeader(t *testing.T) {
	const csrfValue = "csrf-token-value"

	var gotHeader string
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "olivia_session", Value: "session-jwt", Path: "/"})
		http.SetCookie(w, &http.Cookie{Name: "olivia_csrf", Value: csrfValue, Path: "/"})
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"authenticated":true}`))
	})
	mux.HandleFunc("/conciliations/7/reject", func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("X-CSRF-Token")
		w.WriteHeader(http.StatusOK)
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	transport, err := NewCookieTransport(server.URL)
	require.NoError(t, err)
	client := NewClient(server.URL, server.URL, transport)

	require.NoError(t, client.Login(context.Background(), "admin", "secret"))
	require.NoError(t, client.RejectConciliation(context.Background(), 7))

	assert.Equal(t, csrfValue, gotHeader)
}

// seedToken drops a credential straight into the bearer transport, as if
// a previous process had logged in.
func seedToken(t *testing.T, client *Client, token string) {
	t.Helper()
	require.NoError(t, client.transport.StoreLogin(LoginResponse{Authenticated: true, Token: token}))
}
