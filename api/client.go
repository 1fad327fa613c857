// ABOUTME: HTTP client for the conciliation and execution backends
// ABOUTME: Owns session state and the single 401-handling path
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const httpCallTimeout = 10 * time.Second

// Client talks to the conciliation API and the execution API. All
// authorized traffic funnels through do, so an unauthorized response
// anywhere tears down the session exactly once.
type Client struct {
	apiURL    string
	execURL   string
	http      *http.Client
	transport CredentialTransport

	mu            sync.Mutex
	authenticated bool
	onExpired     []func()
}

// NewClient builds a client against the two base URLs using the given
// credential transport.
func NewClient(apiURL, execURL string, transport CredentialTransport) *Client {
	return &Client{
		apiURL:  strings.TrimRight(apiURL, "/"),
		execURL: strings.TrimRight(execURL, "/"),
		http: &http.Client{
			Timeout: httpCallTimeout,
			Jar:     transport.Jar(),
		},
		transport: transport,
	}
}

// Authenticated reports the last known session state.
func (c *Client) Authenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.authenticated
}

// OnSessionExpired registers a handler fired when an authorized call sees
// a 401 (or on logout). Handlers run once per expiry, after the credential
// and flag are already cleared.
func (c *Client) OnSessionExpired(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onExpired = append(c.onExpired, fn)
}

// expire clears credential and flag atomically and fires the expiry
// handlers, but only on a true transition from authenticated.
func (c *Client) expire() {
	c.mu.Lock()
	wasAuthenticated := c.authenticated
	c.authenticated = false
	handlers := c.onExpired
	c.mu.Unlock()

	c.transport.Clear()

	if !wasAuthenticated {
		return
	}
	for _, fn := range handlers {
		fn()
	}
}

func (c *Client) setAuthenticated(v bool) {
	c.mu.Lock()
	c.authenticated = v
	c.mu.Unlock()
}

// do sends one authorized request. A 401 clears the session and returns
// ErrSessionExpired without reading the body any further.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	req.Header.Set("X-Request-Id", uuid.NewString())

	if err := c.transport.Apply(req); err != nil {
		c.expire()
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s %s: %w", req.Method, req.URL.Path, err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		_ = resp.Body.Close()
		c.expire()
		return nil, ErrSessionExpired
	}

	return resp, nil
}

// getJSON performs an authorized GET and decodes a 200 body into out.
func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return apiError(resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	return nil
}

// postJSON performs an authorized POST. A nil payload sends no body. The
// raw response is returned for the caller to interpret; the body is fully
// read and the connection released.
func (c *Client) postJSON(ctx context.Context, url string, payload any) (int, []byte, error) {
	var reader io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}

	return resp.StatusCode, body, nil
}
