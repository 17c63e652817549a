package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
)

// maxBodyBytes caps how much of a response body a single attempt buffers.
const maxBodyBytes = 8 << 20

// Doer is the HTTP seam; *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Request is one logical HTTP exchange. Body is resent verbatim on every
// attempt.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// Response is a fully buffered HTTP response. The body is read before the
// attempt's deadline is released, so the timeout caps the whole exchange.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Attempts   int
}

// RetryPolicy bounds FetchWithRetry.
type RetryPolicy struct {
	MaxRetries int
	Timeout    time.Duration // per attempt; zero disables the cap
	Backoff    time.Duration // base delay; attempt n waits n*Backoff
}

// TransportError is returned when no HTTP response could be obtained.
type TransportError struct {
	Attempts int
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failed after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// serverStatusError marks a 5xx response as retryable inside the retry loop.
type serverStatusError struct {
	resp *Response
}

func (e *serverStatusError) Error() string {
	return fmt.Sprintf("server returned status %d", e.resp.StatusCode)
}

// FetchWithRetry performs req with a per-attempt timeout and bounded retries.
//
// Network errors, attempt timeouts and 5xx responses are retried up to
// policy.MaxRetries times with incremental backoff. 4xx responses, including
// 401, are returned immediately. When retries run out on a 5xx the final
// response is returned with a nil error; when they run out on a network
// failure or timeout the last error is returned as a *TransportError.
// Cancelling ctx stops the loop without further attempts.
func FetchWithRetry(ctx context.Context, doer Doer, req Request, policy RetryPolicy) (*Response, error) {
	if _, err := http.NewRequest(req.Method, req.URL, nil); err != nil {
		return nil, &TransportError{Err: fmt.Errorf("%w: %v", ErrInvalidRequest, err)}
	}

	maxRetries := policy.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	backoff := retry.WithMaxRetries(uint64(maxRetries), incrementalBackoff(policy.Backoff))

	attempts := 0
	var final *Response
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempts++
		final = nil

		resp, err := fetchOnce(ctx, doer, req, policy.Timeout)
		if err != nil {
			// Parent cancellation is the caller's decision, not a transient fault.
			if ctx.Err() != nil || permanent(err) {
				return err
			}
			return retry.RetryableError(err)
		}
		resp.Attempts = attempts
		final = resp
		if resp.StatusCode >= http.StatusInternalServerError {
			return retry.RetryableError(&serverStatusError{resp: resp})
		}
		return nil
	})

	if err == nil {
		return final, nil
	}
	var statusErr *serverStatusError
	if errors.As(err, &statusErr) {
		return statusErr.resp, nil
	}
	return nil, &TransportError{Attempts: attempts, Err: err}
}

func fetchOnce(ctx context.Context, doer Doer, req Request, timeout time.Duration) (*Response, error) {
	attemptCtx, cancel := ctx, context.CancelFunc(func() {})
	if timeout > 0 {
		attemptCtx, cancel = context.WithTimeout(ctx, timeout)
	}
	defer cancel()

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(attemptCtx, req.Method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	httpResp, err := doer.Do(httpReq)
	if err != nil {
		return nil, attemptError(ctx, attemptCtx, timeout, err)
	}
	defer httpResp.Body.Close()

	data, err := readLimited(httpResp.Body)
	if err != nil {
		return nil, attemptError(ctx, attemptCtx, timeout, fmt.Errorf("reading response: %w", err))
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       data,
	}, nil
}

// readLimited reads r fully, failing with ErrBodyTooLarge past maxBodyBytes
// instead of truncating.
func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBodyBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxBodyBytes {
		return nil, fmt.Errorf("%w: over %d bytes", ErrBodyTooLarge, maxBodyBytes)
	}
	return data, nil
}

func permanent(err error) bool {
	return errors.Is(err, ErrBodyTooLarge) || errors.Is(err, ErrInvalidRequest)
}

// attemptError tags errors caused by the attempt's own deadline so they
// classify as timeouts rather than generic network failures.
func attemptError(parent, attempt context.Context, timeout time.Duration, err error) error {
	if parent.Err() == nil && errors.Is(attempt.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s: %w", ErrAttemptTimeout, timeout, err)
	}
	return err
}

func incrementalBackoff(base time.Duration) retry.Backoff {
	var n int64
	return retry.BackoffFunc(func() (time.Duration, bool) {
		n++
		return time.Duration(n) * base, false
	})
}
