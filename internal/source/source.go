package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// FailureKind classifies an adapter failure so callers can decide between
// falling back, using cached data, or skipping the provider this cycle.
type FailureKind int

const (
	FailureUnreachable FailureKind = iota
	FailureRateLimited
	FailureMalformed
	FailureTimeout
)

func (k FailureKind) String() string {
	switch k {
	case FailureRateLimited:
		return "rate_limited"
	case FailureMalformed:
		return "malformed_response"
	case FailureTimeout:
		return "timeout"
	default:
		return "unreachable"
	}
}

// SourceError is the only error type adapters surface. No uninterpretable
// errors reach the reconciler.
type SourceError struct {
	Provider string
	Kind     FailureKind
	Err      error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// Kind extracts the failure classification from err. Unknown errors count as
// unreachable.
func Kind(err error) FailureKind {
	var se *SourceError
	if errors.As(err, &se) {
		return se.Kind
	}
	return FailureUnreachable
}

// IsRateLimited reports whether err is a rate-limit classification.
func IsRateLimited(err error) bool {
	return Kind(err) == FailureRateLimited
}

// browserHeaders mimics a regular browser; some of the stricter humanitarian
// APIs reject default client user agents.
var browserHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Accept":          "application/json, text/xml, application/xml, */*",
	"Accept-Language": "en-US,en;q=0.9",
}

// httpConfig bundles the shared client with the provider's latency class.
type httpConfig struct {
	client  *http.Client
	timeout time.Duration
}

func newCircuit(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
}

// doRequest executes a single attempt through the provider's circuit breaker
// and classifies the outcome. There is no retry here: refresh cadence is the
// freshness controller's concern, not a per-call one.
func doRequest(ctx context.Context, provider string, cb *gobreaker.CircuitBreaker, cfg httpConfig, rawurl string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawurl, nil)
	if err != nil {
		return nil, &SourceError{Provider: provider, Kind: FailureMalformed, Err: err}
	}
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}

	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := cfg.client.Do(req)
		if execErr != nil {
			return nil, classifyTransport(provider, execErr)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, &SourceError{Provider: provider, Kind: FailureRateLimited, Err: errors.New("status 429")}
		}
		if resp.StatusCode >= 500 {
			return nil, &SourceError{Provider: provider, Kind: FailureUnreachable, Err: fmt.Errorf("status %d", resp.StatusCode)}
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &SourceError{Provider: provider, Kind: FailureMalformed, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
		}

		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, classifyTransport(provider, readErr)
		}
		return body, nil
	})
	if err != nil {
		var se *SourceError
		if errors.As(err, &se) {
			return nil, se
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &SourceError{Provider: provider, Kind: FailureUnreachable, Err: err}
		}
		return nil, classifyTransport(provider, err)
	}

	body, ok := result.([]byte)
	if !ok {
		return nil, &SourceError{Provider: provider, Kind: FailureMalformed, Err: errors.New("unexpected result type from circuit breaker")}
	}
	return body, nil
}

// fetchJSON performs doRequest and decodes the body into out.
func fetchJSON(ctx context.Context, provider string, cb *gobreaker.CircuitBreaker, cfg httpConfig, rawurl string, out interface{}) error {
	body, err := doRequest(ctx, provider, cb, cfg, rawurl)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &SourceError{Provider: provider, Kind: FailureMalformed, Err: err}
	}
	return nil
}

func classifyTransport(provider string, err error) *SourceError {
	kind := FailureUnreachable
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		kind = FailureTimeout
	} else if errors.Is(err, context.DeadlineExceeded) {
		kind = FailureTimeout
	}
	return &SourceError{Provider: provider, Kind: kind, Err: err}
}
