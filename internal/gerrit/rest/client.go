// Package rest is the session layer for the review server's REST API: it
// authenticates each request, strips the anti-hijacking prefix from JSON
// responses and turns every failure into a typed AppError.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/thomas-vilte/matereview/internal/auth"
	domainErrors "github.com/thomas-vilte/matereview/internal/errors"
	"github.com/thomas-vilte/matereview/internal/logger"
)

// HTTPClient is satisfied by *http.Client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Authenticator resolves the credentials for a host.
type Authenticator interface {
	Resolve(host string) (auth.Credentials, error)
}

// RequestSpec is one request relative to the endpoint prefix. Body is
// pre-encoded JSON or nil.
type RequestSpec struct {
	Method string
	Path   string
	Body   []byte
}

// ResponseEnvelope is a response before the framing marker is stripped.
// RequestHeader is what was sent, kept for diagnostics.
type ResponseEnvelope struct {
	Status        int
	Header        http.Header
	RawBody       []byte
	RequestHeader http.Header
}

type Client struct {
	protocol string
	host     string
	prefix   string
	auth     Authenticator
	client   HTTPClient
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient replaces the transport (for testing).
func WithHTTPClient(c HTTPClient) Option {
	return func(cl *Client) {
		cl.client = c
	}
}

// WithProtocol sets the scheme prefix, e.g. "https://".
func WithProtocol(protocol string) Option {
	return func(cl *Client) {
		cl.protocol = protocol
	}
}

// WithEndpointPrefix sets the path between host and API path, e.g. "/a".
func WithEndpointPrefix(prefix string) Option {
	return func(cl *Client) {
		cl.prefix = prefix
	}
}

// NewClient creates a client for host. Defaults: https://, prefix /a and
// http.DefaultClient.
func NewClient(host string, authn Authenticator, opts ...Option) *Client {
	c := &Client{
		protocol: "https://",
		host:     host,
		prefix:   "/a",
		auth:     authn,
		client:   http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Host returns the configured host.
func (c *Client) Host() string {
	return c.host
}

// Target builds protocol + host + endpointPrefix + path.
func (c *Client) Target(path string) string {
	return c.protocol + c.host + c.prefix + path
}

// Do sends one request and reads the whole response. Transport failures and
// non-2xx statuses are returned as errors; the body is not unwrapped.
func (c *Client) Do(ctx context.Context, spec RequestSpec) (*ResponseEnvelope, error) {
	log := logger.FromContext(ctx)
	target := c.Target(spec.Path)

	creds, err := c.auth.Resolve(c.host)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if spec.Body != nil {
		body = bytes.NewReader(spec.Body)
	}
	req, err := http.NewRequestWithContext(ctx, spec.Method, target, body)
	if err != nil {
		return nil, domainErrors.ErrBuildRequest.WithError(err).
			WithContext(domainErrors.CtxMethod, spec.Method).
			WithContext(domainErrors.CtxTarget, target)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", creds.Header())

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		log.Debug("request failed",
			"method", spec.Method,
			"target", target,
			"error", err,
			"duration_ms", time.Since(start).Milliseconds())
		return nil, domainErrors.ErrTransport.WithError(err).
			WithContext(domainErrors.CtxMethod, spec.Method).
			WithContext(domainErrors.CtxTarget, target)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Debug("error closing response body", "error", err)
		}
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domainErrors.ErrTransport.WithError(err).
			WithContext(domainErrors.CtxMethod, spec.Method).
			WithContext(domainErrors.CtxTarget, target).
			WithContext(domainErrors.CtxStatus, resp.StatusCode)
	}

	log.Debug("request completed",
		"method", spec.Method,
		"target", target,
		"status", resp.StatusCode,
		"size", len(raw),
		"duration_ms", time.Since(start).Milliseconds())

	env := &ResponseEnvelope{
		Status:        resp.StatusCode,
		Header:        resp.Header,
		RawBody:       raw,
		RequestHeader: req.Header.Clone(),
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return env, statusError(spec.Method, target, env)
	}
	return env, nil
}

// Sync sends method/path with body JSON-encoded (nil for none) and decodes
// the unframed response into out (nil to discard). An empty 2xx body leaves
// out untouched.
func (c *Client) Sync(ctx context.Context, method, path string, body, out interface{}) error {
	var encoded []byte
	if body != nil {
		var err error
		encoded, err = json.Marshal(body)
		if err != nil {
			return domainErrors.ErrEncodeRequest.WithError(err).
				WithContext(domainErrors.CtxMethod, method).
				WithContext(domainErrors.CtxTarget, c.Target(path))
		}
	}

	spec := RequestSpec{Method: method, Path: path, Body: encoded}
	env, err := c.Do(ctx, spec)
	if err != nil {
		return err
	}

	if len(bytes.TrimSpace(env.RawBody)) == 0 {
		return nil
	}

	payload, ok := Unframe(env.RawBody)
	if !ok {
		return malformed(method, c.Target(path), env)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return domainErrors.ErrDecodeResponse.WithError(err).
			WithContext(domainErrors.CtxMethod, method).
			WithContext(domainErrors.CtxTarget, c.Target(path)).
			WithContext(domainErrors.CtxBody, string(env.RawBody))
	}
	return nil
}

// SyncRaw returns the response body as-is, with no framing or JSON step.
func (c *Client) SyncRaw(ctx context.Context, method, path string) ([]byte, error) {
	env, err := c.Do(ctx, RequestSpec{Method: method, Path: path})
	if err != nil {
		return nil, err
	}
	return env.RawBody, nil
}

func malformed(method, target string, env *ResponseEnvelope) error {
	return domainErrors.ErrMalformedResponse.
		WithError(fmt.Errorf("no %q line in %d byte body", Magic, len(env.RawBody))).
		WithContext(domainErrors.CtxMethod, method).
		WithContext(domainErrors.CtxTarget, target).
		WithContext(domainErrors.CtxHeaders, env.RequestHeader).
		WithContext("response_headers", env.Header.Clone()).
		WithContext(domainErrors.CtxStatus, env.Status).
		WithContext(domainErrors.CtxBody, string(env.RawBody))
}

func statusError(method, target string, env *ResponseEnvelope) error {
	base := domainErrors.ErrHTTPStatus
	switch env.Status {
	case http.StatusUnauthorized, http.StatusForbidden:
		base = domainErrors.ErrUnauthorized
	case http.StatusNotFound:
		base = domainErrors.ErrNotFound
	}
	body := string(bytes.TrimSpace(env.RawBody))
	return base.
		WithError(fmt.Errorf("%s %s: %d %s", method, target, env.Status, http.StatusText(env.Status))).
		WithContext(domainErrors.CtxMethod, method).
		WithContext(domainErrors.CtxTarget, target).
		WithContext(domainErrors.CtxStatus, env.Status).
		WithContext(domainErrors.CtxBody, body).
		WithContext(domainErrors.CtxStderr, body)
}
