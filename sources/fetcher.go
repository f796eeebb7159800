package sources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"deal-search/models"
	"deal-search/utils"
)

const (
	userAgent    = "deal-search/1.0 (+https://www.sunhub.com)"
	maxBodyBytes = 16 << 20
)

// Fetcher retrieves the raw body behind a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher performs a single plain GET per call. It never retries.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher creates an HTTPFetcher whose requests time out after timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{client: &http.Client{Timeout: timeout}}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json, application/rss+xml, application/xml;q=0.9, */*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// BreakerSettings configures the circuit guarding one upstream.
type BreakerSettings struct {
	MaxFailures int
	Cooldown    time.Duration
}

// BreakerFetcher fails fast once an upstream has failed MaxFailures times in a row.
type BreakerFetcher struct {
	next    Fetcher
	breaker *gobreaker.CircuitBreaker
}

// NewBreakerFetcher wraps next with a circuit breaker named after source.
func NewBreakerFetcher(next Fetcher, source models.Source, settings BreakerSettings, logger *utils.Logger) *BreakerFetcher {
	maxFailures := uint32(max(settings.MaxFailures, 1))

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        string(source),
		MaxRequests: 1,
		Timeout:     settings.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("[breaker] %s upstream circuit %s -> %s", name, from, to)
		},
	})
	return &BreakerFetcher{next: next, breaker: cb}
}

func (f *BreakerFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	body, err := f.breaker.Execute(func() (interface{}, error) {
		return f.next.Fetch(ctx, url)
	})
	if err != nil {
		return nil, err
	}
	return body.([]byte), nil
}

// State reports the breaker state.
func (f *BreakerFetcher) State() gobreaker.State {
	return f.breaker.State()
}

// Name is the upstream source the breaker guards.
func (f *BreakerFetcher) Name() string {
	return f.breaker.Name()
}

// Healthy is false while the circuit is open.
func (f *BreakerFetcher) Healthy() bool {
	return f.breaker.State() != gobreaker.StateOpen
}

// wrapFetchError normalises any fetcher failure into a *FetchError for source.
func wrapFetchError(source models.Source, url string, err error) error {
	fe := &FetchError{Source: source, URL: url, Err: err}
	var se *StatusError
	if errors.As(err, &se) {
		fe.StatusCode = se.StatusCode
	}
	return fe
}
