// Package auth is the credential collaborator: it logs a user in,
// holds the session token, and answers whether that token is still
// usable for opening connections.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoCredential is returned when an operation needs a logged-in user
// and none is present.
var ErrNoCredential = errors.New("not logged in")

// Identity is the authenticated local user.
type Identity struct {
	ID       int
	Username string
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	ID          int    `json:"id"`
	Username    string `json:"username"`
}

type tokenClaims struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Client authenticates against the chat server and owns the resulting
// credential. Token may be read from any goroutine.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	mu    sync.RWMutex
	token string
	ident Identity
	exp   time.Time
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Register creates an account. Registering an existing username fails
// server-side; callers that want login-or-register semantics just try
// Login afterwards.
func (c *Client) Register(ctx context.Context, username, password string) error {
	if err := c.post(ctx, "/register", loginRequest{Username: username, Password: password}, nil); err != nil {
		return fmt.Errorf("register: %w", err)
	}
	return nil
}

// Login exchanges credentials for a token and remembers it.
func (c *Client) Login(ctx context.Context, username, password string) (Identity, error) {
	var res loginResponse
	if err := c.post(ctx, "/login", loginRequest{Username: username, Password: password}, &res); err != nil {
		return Identity{}, fmt.Errorf("login: %w", err)
	}

	ident := Identity{ID: res.ID, Username: res.Username}
	exp := expiryOf(res.AccessToken)

	c.mu.Lock()
	c.token = res.AccessToken
	c.ident = ident
	c.exp = exp
	c.mu.Unlock()
	return ident, nil
}

// Logout drops the credential. Subsequent Token calls report no
// credential, which stops any reconnect attempt from dialing.
func (c *Client) Logout() {
	c.mu.Lock()
	c.token = ""
	c.ident = Identity{}
	c.exp = time.Time{}
	c.mu.Unlock()
}

// Token returns the current credential. ok is false when the user is
// logged out or the token has expired.
func (c *Client) Token() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.token == "" {
		return "", false
	}
	if !c.exp.IsZero() && time.Now().After(c.exp) {
		return "", false
	}
	return c.token, true
}

// Identity returns the logged-in user.
func (c *Client) Identity() (Identity, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.token == "" {
		return Identity{}, ErrNoCredential
	}
	return c.ident, nil
}

// expiryOf reads the exp claim without verifying the signature; the
// client holds no signing secret, it only wants to avoid dialing with
// a token the server is guaranteed to reject.
func expiryOf(token string) time.Time {
	claims := &tokenClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
