package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	defaultHTTPTimeout   = 10 * time.Second
	retryInitialInterval = 200 * time.Millisecond
	retryMaxInterval     = 2 * time.Second
	maxHTTPRetries       = 2
)

// statusError marks an HTTP status failure so callers can branch on the code
// (the holiday adapter needs the 404 case).
type statusError struct {
	Code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// httpClient is the shared transport for all adapters: fixed timeout and
// exponential-backoff retries with jitter on transient failures.
type httpClient struct {
	hc *http.Client
}

func newHTTPClient(timeout time.Duration) *httpClient {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &httpClient{hc: &http.Client{Timeout: timeout}}
}

func newRetryBackoff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = retryInitialInterval
	b.MaxInterval = retryMaxInterval
	return backoff.WithContext(backoff.WithMaxRetries(b, maxHTTPRetries), ctx)
}

// getJSON issues a GET with query params and decodes the JSON body into out.
func (c *httpClient) getJSON(ctx context.Context, rawURL string, params url.Values, out any) error {
	target := rawURL
	if len(params) > 0 {
		target = rawURL + "?" + params.Encode()
	}
	return backoff.Retry(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		return c.do(req, out)
	}, newRetryBackoff(ctx))
}

// postJSON issues a POST with a JSON body and decodes the JSON response.
func (c *httpClient) postJSON(ctx context.Context, rawURL string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	return backoff.Retry(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		return c.do(req, out)
	}, newRetryBackoff(ctx))
}

func (c *httpClient) do(req *http.Request, out any) error {
	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		statusErr := &statusError{Code: resp.StatusCode}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			// Client errors will not heal on retry.
			return backoff.Permanent(statusErr)
		}
		return statusErr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return backoff.Permanent(fmt.Errorf("decode response: %w", err))
	}
	return nil
}
