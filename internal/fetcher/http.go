package fetcher

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// HTTPOptions configures the HTTP fetcher.
type HTTPOptions struct {
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
	RatePerSec float64 // requests per second against the mirror; 0 = 1/s
}

// HTTPFetcher downloads files over HTTP with a polite rate limit and
// bounded retries on transient failures.
type HTTPFetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	opts    HTTPOptions
}

// NewHTTPFetcher creates an HTTPFetcher with the given options.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 2 * time.Minute
	}
	if opts.RatePerSec == 0 {
		opts.RatePerSec = 1
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "ejatlas/1.0"
	}
	return &HTTPFetcher{
		client:  &http.Client{Timeout: opts.Timeout},
		limiter: rate.NewLimiter(rate.Limit(opts.RatePerSec), 1),
		opts:    opts,
	}
}

// Fetch retrieves rawURL. Retries are attempted on 5xx and 429 responses
// and on transport errors, with a linear backoff; the caller owns the
// returned body.
func (h *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	var lastErr error
	for attempt := 0; attempt <= h.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * 2 * time.Second
			zap.L().Debug("fetcher: retrying download",
				zap.String("url", rawURL),
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff),
			)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, eris.Wrap(ctx.Err(), "fetcher: http retry wait")
			}
		}
		if err := h.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "fetcher: http rate limit wait")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, eris.Wrapf(err, "fetcher: build request %s", rawURL)
		}
		req.Header.Set("User-Agent", h.opts.UserAgent)

		resp, err := h.client.Do(req)
		if err != nil {
			lastErr = eris.Wrapf(err, "fetcher: get %s", rawURL)
			continue
		}
		switch {
		case resp.StatusCode == http.StatusOK:
			return resp.Body, nil
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			_ = resp.Body.Close()
			lastErr = eris.Errorf("fetcher: get %s: status %d", rawURL, resp.StatusCode)
			continue
		default:
			_ = resp.Body.Close()
			return nil, eris.Errorf("fetcher: get %s: status %d", rawURL, resp.StatusCode)
		}
	}
	return nil, lastErr
}
