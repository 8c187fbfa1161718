package offline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultMaxBody caps how much of a response body is buffered.
const DefaultMaxBody = 32 << 20

// forwardedHeaders are copied from the app request onto the upstream fetch.
var forwardedHeaders = []string{"Accept", "Accept-Language", "User-Agent", "Cache-Control"}

// Fetcher performs network requests on behalf of the controller.
// A non-2xx status is a valid Response, not an error.
type Fetcher interface {
	Fetch(ctx context.Context, target string, header http.Header) (*Response, error)
}

// HTTPFetcher is a Fetcher backed by net/http with a per-request timeout.
type HTTPFetcher struct {
	client  *http.Client
	timeout time.Duration
	maxBody int64
	now     func() time.Time
}

// NewHTTPFetcher returns a fetcher whose requests are bounded by timeout.
func NewHTTPFetcher(client *http.Client, timeout time.Duration) *HTTPFetcher {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPFetcher{
		client:  client,
		timeout: timeout,
		maxBody: DefaultMaxBody,
		now:     time.Now,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, target string, header http.Header) (*Response, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", target, err)
	}
	for _, k := range forwardedHeaders {
		if v := header.Get(k); v != "" {
			req.Header.Set(k, v)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", target, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read body of %s: %w", target, err)
	}
	if int64(len(body)) > f.maxBody {
		return nil, fmt.Errorf("response body of %s exceeds %d bytes", target, f.maxBody)
	}

	return &Response{
		Status:   resp.StatusCode,
		Header:   stripHopHeaders(resp.Header),
		Body:     body,
		StoredAt: f.now().UTC(),
		Source:   SourceNetwork,
	}, nil
}
