// Package client holds the application credentials and performs outbound
// platform calls. Calls are made exactly once; failures are reported to the
// caller and never retried.
package client

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"interactbot/pkg/config"
	"interactbot/pkg/endpoint"
	"interactbot/pkg/logger"
	"interactbot/pkg/status"
	"interactbot/pkg/verify"
	"interactbot/pkg/version"
)

// Credentials identify the application to the platform.
type Credentials struct {
	ApplicationID string
	Secret        string
	PublicKey     ed25519.PublicKey
}

// Client is shared by every interaction and by the command registry.
type Client struct {
	creds Credentials
	root  endpoint.Endpoint
	http  *http.Client
	log   *logger.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithEndpoint replaces the API root.
func WithEndpoint(root endpoint.Endpoint) Option {
	return func(c *Client) { c.root = root }
}

// New creates a client for creds.
func New(creds Credentials, log *logger.Logger, opts ...Option) *Client {
	c := &Client{
		creds: creds,
		root:  endpoint.Latest(),
		http:  &http.Client{Timeout: 10 * time.Second},
		log:   log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FromConfig builds a client from loaded configuration.
func FromConfig(cfg *config.Config, log *logger.Logger) (*Client, error) {
	key, err := verify.ParsePublicKey(cfg.Application.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("application public key: %w", err)
	}
	root, err := endpoint.New(cfg.API.BaseURL, cfg.API.Version)
	if err != nil {
		return nil, err
	}
	return New(Credentials{
		ApplicationID: cfg.Application.ID,
		Secret:        cfg.Application.Secret,
		PublicKey:     key,
	}, log,
		WithEndpoint(root),
		WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.API.TimeoutSeconds) * time.Second}),
	), nil
}

// ApplicationID returns the application id.
func (c *Client) ApplicationID() string { return c.creds.ApplicationID }

// PublicKey returns the key inbound requests are verified against.
func (c *Client) PublicKey() ed25519.PublicKey { return c.creds.PublicKey }

// Endpoint returns the API root.
func (c *Client) Endpoint() endpoint.Endpoint { return c.root }

// ApplicationEndpoint returns applications/{id} under the API root.
func (c *Client) ApplicationEndpoint() endpoint.Endpoint {
	return c.root.Application(c.creds.ApplicationID)
}

// Headers returns the headers attached to every outbound call.
func (c *Client) Headers() http.Header {
	h := make(http.Header)
	h.Set("Authorization", "Bot "+c.creds.Secret)
	h.Set("Content-Type", "application/json")
	h.Set("User-Agent", version.UserAgent())
	return h
}

// Send issues one request with payload encoded as JSON and returns the response status.
// A nil payload sends no body. Only transport and encoding failures are errors.
func (c *Client) Send(ctx context.Context, method, url string, payload any) (status.Code, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, fmt.Errorf("encoding payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return 0, fmt.Errorf("building request: %w", err)
	}
	req.Header = c.Headers()

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s request: %w", method, err)
	}
	defer resp.Body.Close()
	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	code := status.Code(resp.StatusCode)
	// The URL is left out: webhook paths embed the interaction token.
	c.log.Debug("Outbound call",
		zap.String("method", method),
		code.Field(),
		zap.Duration("duration", time.Since(start)),
	)
	return code, nil
}
