// Package blob pulls the cookie export from an HTTP blob store.
package blob

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"yt-clipper/domain/video"
)

// maxArtifactSize caps the downloaded cookie export
const maxArtifactSize = 1 << 20

// HTTPSource downloads the cookie export from a blob URL
type HTTPSource struct {
	url    string
	token  string
	client *http.Client
}

// SourceOption is a functional option for configuring HTTPSource
type SourceOption func(*HTTPSource)

// WithToken sets a bearer token sent with every download
func WithToken(token string) SourceOption {
	return func(s *HTTPSource) {
		s.token = token
	}
}

// WithHTTPClient sets a custom HTTP client (for testing)
func WithHTTPClient(client *http.Client) SourceOption {
	return func(s *HTTPSource) {
		s.client = client
	}
}

// NewHTTPSource creates a source for the blob at rawURL
func NewHTTPSource(rawURL string, opts ...SourceOption) (*HTTPSource, error) {
	if rawURL == "" {
		return nil, fmt.Errorf("%w: blob url is required", video.ErrConfiguration)
	}

	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: invalid blob url %q", video.ErrConfiguration, rawURL)
	}
	q := u.Query()
	q.Set("download", "1")
	u.RawQuery = q.Encode()

	s := &HTTPSource{
		url:    u.String(),
		client: &http.Client{Timeout: 30 * time.Second},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Fetch downloads the raw cookie export
func (s *HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build blob request: %w", err)
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download blob: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("blob download returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxArtifactSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read blob: %w", err)
	}
	if len(data) > maxArtifactSize {
		return nil, fmt.Errorf("blob exceeds %d bytes", maxArtifactSize)
	}
	return data, nil
}
