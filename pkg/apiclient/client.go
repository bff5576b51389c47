// Package apiclient provides a minimal client for hgfsctl to talk to a
// running hgfsd's admin HTTP API. The admin API has no users of its own —
// there is nothing to authenticate — so unlike a client for a multi-tenant
// control plane, this one carries no token or credential store at all.
package apiclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is the hgfsd admin API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new API client pointed at the admin API's base URL
// (e.g. "http://127.0.0.1:8081").
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// envelope mirrors pkg/adminapi/response.Response. It is duplicated here
// rather than imported so the client has no dependency on the server's
// internal packages.
type envelope struct {
	Status    string          `json:"status"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// get performs a GET request against the admin API and decodes the
// envelope's data field into result.
func (c *Client) get(path string, result any) error {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", c.baseURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}

	if env.Status == "error" || env.Status == "unhealthy" {
		msg := env.Error
		if msg == "" {
			msg = fmt.Sprintf("request failed with status %d", resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if result != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, result); err != nil {
			return fmt.Errorf("failed to decode data from %s: %w", path, err)
		}
	}

	return nil
}
