// Package api is the thin client over the remote storefront backend. Every
// endpoint shares the {status, message, data} envelope; paginated endpoints
// nest {count, rows} inside data.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"ticket-chain/internal/session"
	"ticket-chain/models"
)

// The backend signals which of the two sessions died through the 401
// response's message text. A structured discriminator would be better; this
// matching is a compatibility shim over the current backend contract.
const (
	userSessionExpiredText   = "user session expired"
	walletSessionExpiredText = "wallet session expired"
)

type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

// Client issues authenticated requests to the backend and shapes the typed
// responses. On a 401 it clears whichever session the message names via the
// session store, so screens never handle expiry themselves.
type Client struct {
	// baseURL is the base url of the storefront backend.
	baseURL string

	// sessions supplies bearer tokens and absorbs expiry signals.
	sessions *session.Store

	// hc is the http client.
	hc *http.Client
}

func NewClient(c *ClientConfig, sessions *session.Store) *Client {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:  strings.TrimRight(c.BaseURL, "/"),
		sessions: sessions,

		// set http client with timeout.
		hc: &http.Client{
			Timeout: timeout,
		},
	}
}

// apiError carries the backend's message for a non-OK envelope.
type apiError struct {
	StatusCode int
	Message    string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("backend: %d: %s", e.StatusCode, e.Message)
}

// do performs one request/response cycle: marshal body, attach both bearer
// tokens, decode the envelope, route 401s to the session store, and unmarshal
// data into out when asked.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var bodyReader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api %s %s: json.Marshal: %v", method, path, err)
		}
		bodyReader = bytes.NewReader(raw)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return fmt.Errorf("api %s %s: http.NewReq: %v", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if token := c.sessions.Token(session.KindUser); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if token := c.sessions.Token(session.KindWallet); token != "" {
		req.Header.Set("X-Wallet-Authorization", "Bearer "+token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("api %s %s: http.Do: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env models.Envelope
	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(&env); err != nil {
		return fmt.Errorf("api %s %s: json.Decode: %v", method, path, err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.handleUnauthorized(env.Message)
		return fmt.Errorf("api %s %s: %w", method, path, &apiError{resp.StatusCode, env.Message})
	}
	if resp.StatusCode != http.StatusOK || !env.Status {
		return fmt.Errorf("api %s %s: %w", method, path, &apiError{resp.StatusCode, env.Message})
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("api %s %s: data: %v", method, path, err)
		}
	}
	return nil
}

// handleUnauthorized clears whichever session the 401 message names. A 401
// that names neither clears nothing; the caller still sees the error.
func (c *Client) handleUnauthorized(message string) {
	msg := strings.ToLower(message)
	switch {
	case strings.Contains(msg, walletSessionExpiredText):
		c.sessions.Expire(session.KindWallet)
	case strings.Contains(msg, userSessionExpiredText):
		c.sessions.Expire(session.KindUser)
	}
}
