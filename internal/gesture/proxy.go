package gesture

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// Path is the HTTP route serving getGesture.
const Path = "/api/gesture"

// Default proxy timeouts.
const (
	DefaultTimeout        = 30 * time.Second
	DefaultConnectTimeout = 10 * time.Second
)

// RemoteError is a non-200 reply from the recognition service.
type RemoteError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *RemoteError) Error() string {
	return fmt.Sprintf("gesture: remote error %d: %s", e.StatusCode, e.Message)
}

// Proxy calls getGesture on a remote recognition service over HTTP.
type Proxy struct {
	baseURL string
	http    *http.Client
}

// ProxyOption configures a Proxy.
type ProxyOption func(*Proxy)

// WithTimeout sets the total time allowed for one call.
func WithTimeout(d time.Duration) ProxyOption {
	return func(p *Proxy) {
		if d > 0 {
			p.http.Timeout = d
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) ProxyOption {
	return func(p *Proxy) { p.http = c }
}

// NewProxy creates a proxy for the service at baseURL.
func NewProxy(baseURL string, opts ...ProxyOption) *Proxy {
	p := &Proxy{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http: &http.Client{
			Timeout: DefaultTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   DefaultConnectTimeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// GetGesture sends the video and returns the service's answer unchanged.
func (p *Proxy) GetGesture(ctx context.Context, video *Video) (*Result, error) {
	body, err := json.Marshal(video)
	if err != nil {
		return nil, fmt.Errorf("marshal video: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+Path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("getGesture: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &RemoteError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(msg)),
		}
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}

	return &result, nil
}

// Close releases idle connections held by the proxy.
func (p *Proxy) Close() error {
	p.http.CloseIdleConnections()
	return nil
}
