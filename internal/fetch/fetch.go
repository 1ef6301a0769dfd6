package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/jonesrussell/newsharvest/internal/logger"
)

// PageKind hints what a fetched document is expected to contain. It is used
// only for logging and metrics, never for behavior.
type PageKind string

// Page kinds.
const (
	KindListing PageKind = "listing"
	KindDetail  PageKind = "detail"
)

// Status code boundaries used when classifying responses.
const (
	statusTooManyReqs  = 429
	statusClientErrLow = 400
	statusServerErrLow = 500
)

// maxResponseBodyBytes limits the size of fetched page responses.
const maxResponseBodyBytes = 10 * 1024 * 1024 // 10 MB

// baseBackoff is the first retry delay; each attempt doubles it.
const baseBackoff = 500 * time.Millisecond

// Result carries a successfully fetched document.
type Result struct {
	// Body holds the raw document bytes, capped at maxResponseBodyBytes.
	Body []byte
	// FinalURL is the resolved URL after redirects.
	FinalURL string
	// StatusCode is the HTTP status of the final response.
	StatusCode int
	// ContentType is the Content-Type header of the final response.
	ContentType string
}

// Config holds fetch client configuration.
type Config struct {
	Timeout      time.Duration
	MaxRetries   int
	MaxRedirects int
	UserAgent    string
	// RatePerHost is the politeness limit in requests per second per host.
	RatePerHost float64
	BurstPerHost int
}

// Client fetches pages with bounded timeout, retry with exponential backoff
// on transient failures, and a per-host politeness rate limit.
type Client struct {
	httpClient *http.Client
	log        logger.Interface
	userAgent  string
	maxRetries int

	ratePerHost  float64
	burstPerHost int
	limiters     sync.Map // host -> *rate.Limiter
}

// NewClient creates a fetch client from the given configuration.
func NewClient(cfg Config, log logger.Interface) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout:       cfg.Timeout,
			CheckRedirect: redirectPolicy(cfg.MaxRedirects),
		},
		log:          log.WithComponent("fetch"),
		userAgent:    cfg.UserAgent,
		maxRetries:   cfg.MaxRetries,
		ratePerHost:  cfg.RatePerHost,
		burstPerHost: cfg.BurstPerHost,
	}
}

// Fetch retrieves the document at rawURL. Transient failures (connection
// errors, timeouts, 5xx, 429) are retried with exponential backoff up to the
// configured budget; definitive 4xx responses are not retried.
func (c *Client) Fetch(ctx context.Context, rawURL string, kind PageKind) (*Result, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || !parsed.IsAbs() {
		return nil, &Error{Kind: KindNetwork, URL: rawURL, Err: fmt.Errorf("not an absolute URL: %q", rawURL)}
	}

	if waitErr := c.limiter(parsed.Host).Wait(ctx); waitErr != nil {
		return nil, &Error{Kind: KindTimeout, URL: rawURL, Err: waitErr}
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			if sleepErr := c.sleep(ctx, backoffDelay(attempt, lastErr)); sleepErr != nil {
				return nil, &Error{Kind: KindTimeout, URL: rawURL, Err: sleepErr}
			}
			c.log.Debug("retrying fetch",
				"url", rawURL,
				"kind", string(kind),
				"attempt", attempt,
			)
		}

		result, fetchErr := c.fetchOnce(ctx, rawURL)
		if fetchErr == nil {
			c.log.Debug("fetched page",
				"url", rawURL,
				"kind", string(kind),
				"status", result.StatusCode,
				"bytes", len(result.Body),
			)
			return result, nil
		}

		lastErr = fetchErr
		if !isRetryable(fetchErr) {
			break
		}
	}

	c.log.Warn("fetch failed",
		"url", rawURL,
		"kind", string(kind),
		"error", lastErr.Error(),
	)

	return nil, lastErr
}

// fetchOnce performs a single HTTP GET and classifies its outcome.
func (c *Client) fetchOnce(ctx context.Context, rawURL string) (*Result, error) {
	req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if reqErr != nil {
		return nil, &Error{Kind: KindNetwork, URL: rawURL, Err: reqErr}
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, doErr := c.httpClient.Do(req)
	if doErr != nil {
		return nil, classifyTransportError(rawURL, doErr)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= statusClientErrLow {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBodyBytes))
		return nil, &Error{
			Kind:       KindHTTPStatus,
			StatusCode: resp.StatusCode,
			URL:        rawURL,
			Err:        retryAfterHint(resp),
		}
	}

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes))
	if readErr != nil {
		return nil, classifyTransportError(rawURL, readErr)
	}

	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &Result{
		Body:        body,
		FinalURL:    finalURL,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

// limiter returns the politeness rate limiter for the given host, creating
// it on first use.
func (c *Client) limiter(host string) *rate.Limiter {
	if existing, ok := c.limiters.Load(host); ok {
		return existing.(*rate.Limiter)
	}

	created := rate.NewLimiter(rate.Limit(c.ratePerHost), c.burstPerHost)
	actual, _ := c.limiters.LoadOrStore(host, created)
	return actual.(*rate.Limiter)
}

// sleep waits for the given duration or until the context is done.
func (c *Client) sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// retryAfterError carries a server-provided retry hint through the error
// chain so backoffDelay can honor it.
type retryAfterError struct {
	delay time.Duration
}

func (e *retryAfterError) Error() string {
	return fmt.Sprintf("retry after %s", e.delay)
}

// retryAfterHint extracts a Retry-After delay from a 429 response, nil
// otherwise.
func retryAfterHint(resp *http.Response) error {
	if resp.StatusCode != statusTooManyReqs {
		return nil
	}

	header := resp.Header.Get("Retry-After")
	if header == "" {
		return nil
	}

	if seconds, err := strconv.Atoi(header); err == nil && seconds > 0 {
		return &retryAfterError{delay: time.Duration(seconds) * time.Second}
	}

	return nil
}

// backoffDelay computes the sleep before the given retry attempt: a
// server-provided Retry-After hint when present, otherwise exponential
// backoff with jitter.
func backoffDelay(attempt int, lastErr error) time.Duration {
	var hint *retryAfterError
	if errors.As(lastErr, &hint) {
		return hint.delay
	}

	delay := baseBackoff << (attempt - 1)
	jitter := time.Duration(rand.Int63n(int64(delay) / 2))
	return delay + jitter
}

// isRetryable reports whether a classified fetch error is transient.
// Timeouts, network errors, 5xx, and 429 are retried; other HTTP statuses
// and redirect-limit errors are definitive.
func isRetryable(err error) bool {
	var ferr *Error
	if !errors.As(err, &ferr) {
		return false
	}

	switch ferr.Kind {
	case KindTimeout, KindNetwork:
		return true
	case KindHTTPStatus:
		return ferr.StatusCode >= statusServerErrLow || ferr.StatusCode == statusTooManyReqs
	default:
		return false
	}
}

// classifyTransportError maps a transport-level failure to a fetch Error.
func classifyTransportError(rawURL string, err error) *Error {
	if errors.Is(err, errTooManyRedirects) {
		return &Error{Kind: KindTooManyRedirects, URL: rawURL, Err: err}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, URL: rawURL, Err: err}
	}

	var timeout interface{ Timeout() bool }
	if errors.As(err, &timeout) && timeout.Timeout() {
		return &Error{Kind: KindTimeout, URL: rawURL, Err: err}
	}

	return &Error{Kind: KindNetwork, URL: rawURL, Err: err}
}
