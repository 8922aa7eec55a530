// Package fetch retrieves raw content from external sources. Every call is
// a single attempt bounded by the configured timeout; retrying is the
// caller's decision. A per-host circuit breaker stops the pipeline from
// hammering a site that keeps failing.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const userAgent = "Mozilla/5.0 (compatible; uiu-student-bot/1.0)"

// maxBodySize bounds how much of a response we read. The extractors only
// look at listing markup; anything past this is noise.
const maxBodySize = 2 << 20

// ErrUnavailable wraps breaker rejections so callers can tell "site is
// failing, skipped" from an ordinary fetch error.
var ErrUnavailable = errors.New("source unavailable")

type Client struct {
	http *http.Client
	log  *zap.Logger

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker
}

func New(timeout time.Duration, log *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		http:     &http.Client{Timeout: timeout},
		log:      log,
		breakers: make(map[string]*gobreaker.CircuitBreaker),
	}
}

// Fetch performs one bounded GET. Network failure, a non-2xx status, or an
// open circuit all come back as an error; callers log and fall through to
// cache or fallback, never abort the composed request.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing url %q: %w", rawURL, err)
	}

	cb := c.breakerFor(u.Host)
	body, err := cb.Execute(func() (any, error) {
		return c.doFetch(ctx, rawURL)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: circuit open for %s", ErrUnavailable, u.Host)
		}
		return nil, err
	}
	return body.([]byte), nil
}

func (c *Client) doFetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", rawURL, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetching %s: status %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", rawURL, err)
	}
	return body, nil
}

func (c *Client) breakerFor(host string) *gobreaker.CircuitBreaker {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cb, ok := c.breakers[host]; ok {
		return cb
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        host,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Warn("source circuit state changed",
				zap.String("host", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	c.breakers[host] = cb
	return cb
}
