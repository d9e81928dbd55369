// Package client implements the RemoteAuth contract over the storefront's
// JSON/HTTP auth API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/calderas/storefront"
)

const defaultTimeout = 15 * time.Second

// Client talks to the remote auth service. It implements
// storefront.RemoteAuth; rejections come back as errors and the session
// machine decides what the user sees.
type Client struct {
	base   string
	http   *http.Client
	logger storefront.Logger
}

var _ storefront.RemoteAuth = (*Client)(nil)

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger overrides the client logger.
func WithLogger(logger storefront.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New returns a client rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func (c *Client) Validate(ctx context.Context, token string) (*storefront.Identity, error) {
	identity := &storefront.Identity{}
	payload := map[string]string{"token": token}
	if err := c.post(ctx, "validate", "", payload, identity); err != nil {
		return nil, err
	}
	return identity, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*storefront.Credentials, error) {
	creds := &storefront.Credentials{}
	payload := map[string]string{"email": email, "password": password}
	if err := c.post(ctx, "login", "", payload, creds); err != nil {
		return nil, err
	}
	return creds, nil
}

func (c *Client) Signup(ctx context.Context, email, password string) (*storefront.Credentials, error) {
	creds := &storefront.Credentials{}
	payload := map[string]string{"email": email, "password": password}
	if err := c.post(ctx, "signup", "", payload, creds); err != nil {
		return nil, err
	}
	return creds, nil
}

func (c *Client) ResetPassword(ctx context.Context, email string) error {
	payload := map[string]string{"email": email}
	return c.post(ctx, "reset-password", "", payload, nil)
}

func (c *Client) UpdateProfile(ctx context.Context, token string, profile storefront.Profile) error {
	return c.post(ctx, "user-data", token, profile, nil)
}

func (c *Client) post(ctx context.Context, endpoint, token string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to encode request").
			WithMetadata(map[string]any{"endpoint": endpoint})
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/"+endpoint, bytes.NewReader(body))
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to build request").
			WithMetadata(map[string]any{"endpoint": endpoint})
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "auth service unreachable").
			WithMetadata(map[string]any{"endpoint": endpoint})
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused; the body detail is for
		// diagnostics only.
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		if c.logger != nil {
			c.logger.Debug("auth service rejected %s: %d %s", endpoint, resp.StatusCode, detail)
		}
		return goerrors.New("auth service rejected request", goerrors.CategoryOperation).
			WithMetadata(map[string]any{
				"endpoint": endpoint,
				"status":   resp.StatusCode,
			})
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to decode response").
			WithMetadata(map[string]any{"endpoint": endpoint})
	}
	return nil
}
