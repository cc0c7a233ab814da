package imageref

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Fetcher downloads remote image references. The transport is tuned for
// occasional single-image downloads rather than bulk crawling.
type Fetcher struct {
	client   *http.Client
	attempts int
	maxBytes int64
}

// NewFetcher builds a Fetcher with the given total request timeout. A zero
// timeout falls back to 30s.
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	transport := &http.Transport{
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   2,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
	}
	return &Fetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("too many redirects (limit: 3)")
				}
				return nil
			},
		},
		attempts: 3,
		maxBytes: 64 << 20,
	}
}

// WithAttempts overrides the retry budget. Values below 1 are ignored.
func (f *Fetcher) WithAttempts(n int) *Fetcher {
	if n >= 1 {
		f.attempts = n
	}
	return f
}

// Fetch downloads the URL and returns the response body. Transient failures
// and 5xx responses are retried; 4xx responses are not.
func (f *Fetcher) Fetch(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	req.Header.Set("Accept", "image/jpeg, image/png, image/webp, image/gif, */*")
	req.Header.Set("User-Agent", "pixelview/1.0")

	var lastErr error
	for attempt := 0; attempt < f.attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}
		resp, err := f.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode != http.StatusOK {
			io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			lastErr = fmt.Errorf("status code %d", resp.StatusCode)
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				break
			}
			continue
		}
		b, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		return b, nil
	}
	return nil, fmt.Errorf("fetch %s: %w", imageURL, lastErr)
}
