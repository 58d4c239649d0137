// Package transport provides the authenticated, retrying HTTP client both
// store adapters are built on.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/shelfmark/refsync/pkg/constants"
	"github.com/shelfmark/refsync/pkg/errors"
)

// DefaultHTTPTimeout is the default timeout for a single HTTP request.
var DefaultHTTPTimeout = constants.DefaultHTTPTimeout

// Client provides HTTP client functionality with authentication and retry.
type Client struct {
	http    *http.Client
	auth    Authenticator
	store   string // "zotero" or "notion", used in error reporting
	headers map[string]string
	retry   RetryPolicy
}

// New creates a new transport client for a store with the specified
// authenticator. Extra headers are applied to every request (API version
// pins and the like).
func New(store string, auth Authenticator, headers map[string]string) *Client {
	if auth == nil {
		auth = &NoAuth{}
	}
	return &Client{
		http:    &http.Client{Timeout: DefaultHTTPTimeout},
		auth:    auth,
		store:   store,
		headers: headers,
		retry:   DefaultRetryPolicy(),
	}
}

// WithRetryPolicy overrides the retry policy, mostly for tests.
func (c *Client) WithRetryPolicy(p RetryPolicy) *Client {
	c.retry = p
	return c
}

// WithHTTPClient overrides the underlying HTTP client, mostly for tests.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.http = h
	return c
}

// Do performs an HTTP request with authentication, shared headers, and the
// retry policy applied. The body, if any, must be replayable; callers pass
// raw bytes so each attempt gets a fresh reader.
func (c *Client) Do(ctx context.Context, method, url string, body []byte) (*http.Response, error) {
	return c.retry.Do(ctx, func(ctx context.Context) (*http.Response, error) {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return nil, errors.WrapResource("create", "request", method+" "+url, err)
		}

		c.auth.Apply(req)
		for k, v := range c.headers {
			req.Header.Set(k, v)
		}
		req.Header.Set("Accept", "application/json")
		if method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch {
			req.Header.Set("Content-Type", "application/json")
		}

		return c.http.Do(req)
	})
}

// Get performs a GET request and decodes the JSON response into target.
func (c *Client) Get(ctx context.Context, url string, target any) error {
	resp, err := c.Do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	return c.DecodeResponse(resp, url, target)
}

// Post marshals body, performs a POST request, and decodes the response.
func (c *Client) Post(ctx context.Context, url string, body, target any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errors.WrapParse("json", "request body", err)
	}
	resp, err := c.Do(ctx, http.MethodPost, url, payload)
	if err != nil {
		return err
	}
	return c.DecodeResponse(resp, url, target)
}

// Patch marshals body, performs a PATCH request, and decodes the response.
func (c *Client) Patch(ctx context.Context, url string, body, target any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errors.WrapParse("json", "request body", err)
	}
	resp, err := c.Do(ctx, http.MethodPatch, url, payload)
	if err != nil {
		return err
	}
	return c.DecodeResponse(resp, url, target)
}

// DecodeResponse decodes a JSON response into the target structure. Non-2xx
// statuses become typed API errors carrying the response body. A nil target
// drains and discards the body.
func (c *Client) DecodeResponse(resp *http.Response, endpoint string, target any) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.WrapResource("read", "response body", endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &errors.APIError{
			Store:      c.store,
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Message:    string(body),
		}
	}

	if target == nil {
		return nil
	}
	if err := json.Unmarshal(body, target); err != nil {
		return errors.WrapParse("json", c.store+" response", err)
	}

	return nil
}
