package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

const clientTimeout = 10 * time.Second

// ErrBusy is returned by StartDownload when the server already runs a job.
var ErrBusy = errors.New("server busy")

// Client talks to a running vidqueue server.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient returns a client for the server at baseURL ("http://host:port").
// token is sent as a bearer token when non-empty.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:   strings.TrimSpace(token),
		http:    &http.Client{Timeout: clientTimeout},
	}
}

// BaseURLForBind turns a listen address into a client URL, mapping wildcard
// hosts to loopback.
func BaseURLForBind(bind string) string {
	host, port, err := net.SplitHostPort(strings.TrimSpace(bind))
	if err != nil {
		return "http://" + bind
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, port)
}

// Status fetches the current job state.
func (c *Client) Status(ctx context.Context) (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.do(ctx, http.MethodGet, "/get_status", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Preflight fetches readiness results.
func (c *Client) Preflight(ctx context.Context) (*PreflightResponse, error) {
	var resp PreflightResponse
	if err := c.do(ctx, http.MethodGet, "/api/preflight", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeviceID fetches the server's device identifier.
func (c *Client) DeviceID(ctx context.Context) (string, error) {
	var resp DeviceIDResponse
	if err := c.do(ctx, http.MethodGet, "/get_device_id", nil, &resp); err != nil {
		return "", err
	}
	return resp.DeviceID, nil
}

// StartDownload asks the server to start a run.
func (c *Client) StartDownload(ctx context.Context, req StartDownloadRequest) (*StartDownloadResponse, error) {
	var resp StartDownloadResponse
	err := c.do(ctx, http.MethodPost, "/start_download", req, &resp)
	if resp.Status == StatusBusy {
		return &resp, ErrBusy
	}
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("contact server at %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil && resp.StatusCode < http.StatusMultipleChoices {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("%s %s: server returned %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return nil
}
