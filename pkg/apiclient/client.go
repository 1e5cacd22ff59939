// Package apiclient provides a typed client for the depot REST API. It is
// consumed by depotctl and usable as a library for automation against a
// depot server.
package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const clientTimeout = 30 * time.Second

// Client talks to one depot server. The zero value is not usable; construct
// with New.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// New creates a client for the server at baseURL, without credentials.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: clientTimeout},
	}
}

// WithToken returns a copy of the client that authenticates with token.
// The receiver is left untouched, so one base client can serve several
// sessions.
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.token = token
	return &clone
}

// SetToken replaces the bearer token on this client.
func (c *Client) SetToken(token string) {
	c.token = token
}

// do runs one request and decodes the JSON response into result when it is
// non-nil. Responses with status 400 and above are returned as *APIError.
func (c *Client) do(method, path string, body, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return decodeError(resp.StatusCode, data)
	}

	if result != nil && len(data) > 0 {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// decodeError turns an error response into an *APIError. The server sends
// RFC 7807 problem documents; a body that does not parse as one is carried
// verbatim in Detail so nothing is lost.
func decodeError(status int, body []byte) error {
	var apiErr APIError
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Title != "" {
		apiErr.Status = status
		return &apiErr
	}
	return &APIError{
		Status: status,
		Detail: string(body),
	}
}

func (c *Client) get(path string, result any) error {
	return c.do(http.MethodGet, path, nil, result)
}

func (c *Client) post(path string, body, result any) error {
	return c.do(http.MethodPost, path, body, result)
}

func (c *Client) put(path string, body, result any) error {
	return c.do(http.MethodPut, path, body, result)
}

func (c *Client) delete(path string, result any) error {
	return c.do(http.MethodDelete, path, nil, result)
}
