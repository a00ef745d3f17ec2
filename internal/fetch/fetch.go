package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"
)

// Category classifies a failed fetch for the failure counter.
type Category string

const (
	CategoryNetwork    Category = "network"
	CategoryTimeout    Category = "timeout"
	CategoryHTTPStatus Category = "http-status"
	CategoryEmptyBody  Category = "empty-body"
)

// Error is a single failed fetch attempt.
type Error struct {
	Category Category
	URL      string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("fetch %s (%s): %v", e.URL, e.Category, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Fetcher retrieves the raw schedule document from the provider. It
// makes exactly one attempt per call; retry policy lives in the cache.
type Fetcher struct {
	url        string
	token      string
	httpClient *http.Client
}

// New creates a Fetcher with a hard per-request timeout.
func New(upstreamURL, token string, timeout time.Duration) *Fetcher {
	return &Fetcher{
		url:   upstreamURL,
		token: token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Host returns the upstream hostname, used by the reachability probe.
func (f *Fetcher) Host() string {
	u, err := url.Parse(f.url)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// Fetch performs one GET against the upstream and returns the raw body.
func (f *Fetcher) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, &Error{Category: CategoryNetwork, URL: f.url, Err: err}
	}
	if f.token != "" {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Category: categorize(err), URL: f.url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{
			Category: CategoryHTTPStatus,
			URL:      f.url,
			Err:      fmt.Errorf("upstream returned %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Category: categorize(err), URL: f.url, Err: fmt.Errorf("read body: %w", err)}
	}
	if len(body) == 0 {
		return nil, &Error{Category: CategoryEmptyBody, URL: f.url, Err: errors.New("empty response body")}
	}
	return body, nil
}

func categorize(err error) Category {
	if errors.Is(err, context.DeadlineExceeded) {
		return CategoryTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return CategoryTimeout
	}
	return CategoryNetwork
}
