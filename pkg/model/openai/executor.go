package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Executor posts JSON payloads to the API and retries transient failures
// with exponential backoff. It keeps no state across calls beyond the
// shared HTTP client.
type Executor struct {
	client *http.Client
	sleep  func(context.Context, time.Duration) error
}

// NewExecutor builds an Executor on top of the supplied HTTP client. When
// client is nil a default client is used; per-attempt deadlines come from
// the timeout passed to Execute rather than http.Client.Timeout.
func NewExecutor(client *http.Client) *Executor {
	if client == nil {
		client = &http.Client{}
	}
	return &Executor{client: client, sleep: sleepContext}
}

// Execute sends payload as an HTTP POST to url and returns the raw response
// body. Each attempt gets its own deadline of timeout. Transient failures
// (network errors, timeouts, 5xx, 429) are retried up to maxRetries total
// attempts, sleeping baseDelay*2^k before retry k. Any other non-2xx status
// fails immediately with *ClientError; exhaustion fails with
// *ExhaustedRetriesError wrapping the last transient failure.
func (e *Executor) Execute(ctx context.Context, url string, headers map[string]string, payload any, timeout time.Duration, maxRetries int, baseDelay time.Duration) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	if maxRetries < 1 {
		maxRetries = 1
	}

	var last error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			if err := e.sleep(ctx, baseDelay<<(attempt-1)); err != nil {
				return nil, err
			}
		}
		data, err := e.attempt(ctx, url, headers, body, timeout)
		if err == nil {
			return data, nil
		}
		var transient *TransientError
		if !errors.As(err, &transient) {
			return nil, err
		}
		last = err
	}
	return nil, &ExhaustedRetriesError{Attempts: maxRetries, Last: last}
}

func (e *Executor) attempt(ctx context.Context, url string, headers map[string]string, body []byte, timeout time.Duration) ([]byte, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	resp, err := e.post(ctx, url, headers, body)
	if err != nil {
		return nil, &TransientError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransientError{StatusCode: resp.StatusCode, Err: err}
	}
	if err := classifyStatus(resp.StatusCode, data); err != nil {
		return nil, err
	}
	return data, nil
}

// Open establishes a streaming POST and hands the open response body to the
// caller. Connection-phase failures follow the same retry classification as
// Execute; once the body is returned the caller owns it and failures become
// stream errors. No per-attempt timeout is applied: the caller's context
// governs the lifetime of the open connection.
func (e *Executor) Open(ctx context.Context, url string, headers map[string]string, payload any, maxRetries int, baseDelay time.Duration) (io.ReadCloser, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	if maxRetries < 1 {
		maxRetries = 1
	}

	var last error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			if err := e.sleep(ctx, baseDelay<<(attempt-1)); err != nil {
				return nil, err
			}
		}
		resp, err := e.post(ctx, url, headers, body)
		if err != nil {
			last = &TransientError{Err: err}
			continue
		}
		if resp.StatusCode >= http.StatusMultipleChoices {
			data, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()
			if readErr != nil {
				last = &TransientError{StatusCode: resp.StatusCode, Err: readErr}
				continue
			}
			statusErr := classifyStatus(resp.StatusCode, data)
			var transient *TransientError
			if errors.As(statusErr, &transient) {
				last = statusErr
				continue
			}
			return nil, statusErr
		}
		return resp.Body, nil
	}
	return nil, &ExhaustedRetriesError{Attempts: maxRetries, Last: last}
}

func (e *Executor) post(ctx context.Context, url string, headers map[string]string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	for k, v := range headers {
		if v == "" {
			continue
		}
		req.Header.Set(k, v)
	}
	return e.client.Do(req)
}

// classifyStatus maps an HTTP status to the retry taxonomy. 5xx and 429 are
// transient; every other non-2xx status, including any 3xx the HTTP client
// did not follow, is a caller-fixable client error.
func classifyStatus(status int, body []byte) error {
	switch {
	case status < http.StatusMultipleChoices:
		return nil
	case status >= http.StatusInternalServerError || status == http.StatusTooManyRequests:
		return &TransientError{StatusCode: status, Err: decodeAPIError(status, body)}
	default:
		return &ClientError{APIError: *decodeAPIError(status, body)}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
