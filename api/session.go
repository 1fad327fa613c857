// ABOUTME: Session lifecycle against the auth endpoints
// ABOUTME: Verify on startup, login, best-effort logout
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// LoginResponse is the body of a successful login. Cookie deployments set
// cookies and only echo the flag; token deployments return the credential.
type LoginResponse struct {
	Authenticated bool   `json:"authenticated"`
	Token         string `json:"token,omitempty"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// VerifySession asks the backend whether the stored credential is still
// good. Any transport failure counts as unauthenticated.
func (c *Client) VerifySession(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"/auth/verify", nil)
	if err != nil {
		c.setAuthenticated(false)
		return false
	}

	resp, err := c.do(req)
	if err != nil {
		c.setAuthenticated(false)
		return false
	}
	_ = resp.Body.Close()

	ok := resp.StatusCode == http.StatusOK
	c.setAuthenticated(ok)
	return ok
}

// Login exchanges credentials for a session. The request carries no
// credential: a 401 here is a rejected login, not an expired session.
// On failure nothing changes locally; there is no retry.
func (c *Client) Login(ctx context.Context, username, password string) error {
	encoded, err := json.Marshal(loginRequest{Username: username, Password: password})
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/login", bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("login request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return ErrInvalidCredentials
	}

	var parsed LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("%w: %v", ErrProtocol, err)
	}

	if err := c.transport.StoreLogin(parsed); err != nil {
		return err
	}

	c.setAuthenticated(true)
	return nil
}

// Logout tells the backend best-effort and unconditionally clears local
// state. Registered expiry handlers run so any active polling stops.
func (c *Client) Logout(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/logout", nil)
	if err == nil {
		if resp, doErr := c.do(req); doErr == nil {
			_ = resp.Body.Close()
		}
	}

	c.expire()
}
