package openai

import (
	"encoding/json"
	"fmt"
)

// APIError surfaces OpenAI errors with HTTP metadata.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("openai API error (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("openai API error (%d, %s): %s", e.StatusCode, e.Type, e.Message)
}

// ClientError marks a non-retryable request failure: any non-2xx status
// outside the transient set, in practice 4xx since the HTTP client follows
// redirects. Repeating the same request cannot succeed.
type ClientError struct {
	APIError
}

// TransientError marks a retry-eligible failure: connection errors,
// timeouts, 5xx statuses and 429 rate limits. StatusCode is zero for
// network-level failures that never produced a response.
type TransientError struct {
	StatusCode int
	Err        error
}

func (e *TransientError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("transient request failure: %v", e.Err)
	}
	return fmt.Sprintf("transient request failure (%d): %v", e.StatusCode, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// ExhaustedRetriesError reports that every attempt in the retry budget
// failed with a transient error. Last is the final attempt's failure.
type ExhaustedRetriesError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedRetriesError) Error() string {
	return fmt.Sprintf("openai API call failed after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ExhaustedRetriesError) Unwrap() error { return e.Last }

// StreamError reports a failure while consuming an open response stream.
// It is surfaced to the stream consumer at the point of failure; fragments
// delivered before the error remain valid.
type StreamError struct {
	Err error
}

func (e *StreamError) Error() string { return fmt.Sprintf("openai stream failed: %v", e.Err) }

func (e *StreamError) Unwrap() error { return e.Err }

// errorEnvelope models OpenAI error payloads.
type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// decodeAPIError builds an APIError from a non-2xx response body, falling
// back to the raw body when it is not the documented error envelope.
func decodeAPIError(status int, body []byte) *APIError {
	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		return &APIError{StatusCode: status, Type: envelope.Error.Type, Message: envelope.Error.Message}
	}
	return &APIError{StatusCode: status, Message: string(body)}
}
