package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Response is the body the email function answers with. Error is always a
// generic sentence; provider details never leave the function.
type Response struct {
	Success bool   `json:"success,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// RemoteError is a non-2xx answer from the email function.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("contact: email function returned %d", e.StatusCode)
	}
	return fmt.Sprintf("contact: email function returned %d: %s", e.StatusCode, e.Message)
}

// Client calls a remote email function over HTTP. It performs one POST per
// Send and never retries.
type Client struct {
	endpoint string
	token    string
	http     *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBearerToken sends token in the Authorization header.
func WithBearerToken(token string) ClientOption {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// NewClient returns a Client posting to endpoint.
func NewClient(endpoint string, opts ...ClientOption) *Client {
	c := &Client{endpoint: endpoint, http: http.DefaultClient}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send posts s as JSON and reports any transport failure or non-2xx status.
func (c *Client) Send(ctx context.Context, s Submission) error {
	body, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("contact: encode submission: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("contact: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("contact: call email function: %w", err)
	}
	defer resp.Body.Close()

	var out Response
	_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&out)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RemoteError{StatusCode: resp.StatusCode, Message: out.Error}
	}
	return nil
}
