package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"hoopslab/etl/internal/metrics"
)

const (
	userAgent    = "hoopslab-etl/1.0"
	maxBodyBytes = 32 << 20
)

// Cache stores raw upstream response bodies keyed by request URL
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, body []byte)
}

// Option configures an upstream client
type Option func(*endpoint)

// WithPolicy overrides the retry policy
func WithPolicy(p Policy) Option {
	return func(e *endpoint) {
		e.policy = p
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(e *endpoint) {
		e.httpClient = hc
	}
}

// WithCache enables read-through caching of response bodies
func WithCache(c Cache) Option {
	return func(e *endpoint) {
		e.cache = c
	}
}

// WithThrottle spaces consecutive requests at least d apart. Zero disables it.
func WithThrottle(d time.Duration) Option {
	return func(e *endpoint) {
		e.limiter = newLimiter(d)
	}
}

// WithHeader sets a header on every request
func WithHeader(key, value string) Option {
	return func(e *endpoint) {
		e.header.Set(key, value)
	}
}

// endpoint is the shared JSON-over-HTTP transport for one provider
type endpoint struct {
	provider   string
	baseURL    string
	header     http.Header
	httpClient *http.Client
	policy     Policy
	limiter    *rate.Limiter
	cache      Cache
}

func newEndpoint(provider, baseURL string, timeout time.Duration) *endpoint {
	return &endpoint{
		provider: provider,
		baseURL:  strings.TrimRight(baseURL, "/"),
		header:   make(http.Header),
		policy:   DefaultPolicy(),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

func newLimiter(every time.Duration) *rate.Limiter {
	if every <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(every), 1)
}

func (e *endpoint) requestURL(path string, params url.Values) string {
	u := e.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

// getJSON fetches path with retries and decodes the body into out
func (e *endpoint) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	u := e.requestURL(path, params)

	if e.cache != nil {
		if body, ok := e.cache.Get(ctx, u); ok {
			if err := sonic.Unmarshal(body, out); err == nil {
				log.Debug().Str("url", u).Msg("Served upstream response from cache")
				return nil
			}
		}
	}

	body, err := Retry(ctx, e.policy, e.provider+" "+path, func(ctx context.Context) ([]byte, error) {
		return e.fetch(ctx, path, u)
	})
	if err != nil {
		metrics.RecordError(e.provider, "fetch")
		return err
	}

	if err := sonic.Unmarshal(body, out); err != nil {
		metrics.RecordError(e.provider, "decode")
		return fmt.Errorf("failed to decode %s response from %s: %w", e.provider, u, err)
	}

	if e.cache != nil {
		e.cache.Set(ctx, u, body)
	}
	return nil
}

// fetch performs a single GET. Errors that a retry cannot fix are Permanent.
func (e *endpoint) fetch(ctx context.Context, path, u string) ([]byte, error) {
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, Permanent(err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header = e.header.Clone()
	req.Header.Set("Accept", "application/json")
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", userAgent)
	}

	log.Debug().
		Str("provider", e.provider).
		Str("url", u).
		Msg("Making API request")

	start := time.Now()
	resp, err := e.httpClient.Do(req)
	if err != nil {
		metrics.RecordAPICall(e.provider, path, "error", time.Since(start).Seconds())
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, Permanent(ctxErr)
		}
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	metrics.RecordAPICall(e.provider, path, strconv.Itoa(resp.StatusCode), time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(body) > maxBodyBytes {
		return nil, Permanent(fmt.Errorf("%s response from %s exceeds %d bytes", e.provider, u, maxBodyBytes))
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		log.Debug().
			Str("url", u).
			Int("status", resp.StatusCode).
			Int("size", len(body)).
			Msg("API request successful")
		return body, nil
	}

	serr := &StatusError{
		Provider:   e.provider,
		URL:        u,
		StatusCode: resp.StatusCode,
		Body:       truncate(string(body), 512),
	}
	if serr.Retryable() {
		return nil, serr
	}
	return nil, Permanent(serr)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
