// Package httputil holds HTTP helpers shared by the outbound integrations.
package httputil

import (
	"context"
	"io"
	"math"
	"net/http"
	"time"
)

// RetryBaseDelay is the first backoff step after an HTTP 429. Tests shrink it.
var RetryBaseDelay = 2 * time.Second

// DoWithRetry sends req and retries on HTTP 429 with exponential backoff
// (RetryBaseDelay, 2x, 4x, ...). maxRetries <= 0 sends the request once.
// After the last retry the 429 response itself is returned to the caller.
// A context cancelled during a backoff wait returns ctx.Err().
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	if maxRetries < 0 {
		maxRetries = 0
	}

	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusTooManyRequests || attempt >= maxRetries {
			return resp, nil
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		// the body reader was consumed by the previous attempt
		if req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, err
			}
			req.Body = body
		}

		backoff := time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}
