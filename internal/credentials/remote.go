package credentials

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultRemoteTimeout = 10 * time.Second
	maxRemoteBody        = 4 << 20
)

// RemoteSource fetches the credential file over HTTP(S) on every call.
type RemoteSource struct {
	url    string
	client *http.Client
}

// RemoteOption customizes a RemoteSource.
type RemoteOption func(*RemoteSource)

// WithHTTPClient overrides the HTTP client used for fetches.
func WithHTTPClient(client *http.Client) RemoteOption {
	return func(s *RemoteSource) {
		if client != nil {
			s.client = client
		}
	}
}

// WithTimeout sets the per-request timeout on the default client.
func WithTimeout(timeout time.Duration) RemoteOption {
	return func(s *RemoteSource) {
		if timeout > 0 {
			s.client = &http.Client{Timeout: timeout}
		}
	}
}

// NewRemoteSource returns a Source that downloads url.
func NewRemoteSource(url string, opts ...RemoteOption) *RemoteSource {
	s := &RemoteSource{
		url:    url,
		client: &http.Client{Timeout: defaultRemoteTimeout},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Records implements Source.
func (s *RemoteSource) Records(ctx context.Context) ([]Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrUnavailable, err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxRemoteBody))
		return nil, fmt.Errorf("%w: fetch returned status %d", ErrUnavailable, resp.StatusCode)
	}

	records, err := ParseRecords(io.LimitReader(resp.Body, maxRemoteBody))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return records, nil
}

// Describe implements Source.
func (s *RemoteSource) Describe() string {
	return "remote " + s.url
}
