package openai

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ChatStream invokes the streaming Chat Completions endpoint, relaying text
// fragments into fn as they arrive, and returns the assembled response. The
// fragment sequence is single-pass and not restartable; a mid-stream failure
// surfaces as *StreamError after any already-delivered fragments.
func (c *Client) ChatStream(ctx context.Context, req ChatRequest, fn func(fragment string) error) (*ChatResponse, error) {
	if fn == nil {
		return nil, errors.New("chat stream callback is required")
	}
	if err := c.prepareChat(&req); err != nil {
		return nil, err
	}
	req.Stream = true

	body, err := c.exec.Open(ctx, c.baseURL+chatCompletionsPath, c.headers, req, c.maxRetries, c.baseDelay)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var full strings.Builder
	var finish string
	events := newSSEScanner(body)
	for events.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if events.data == "" || events.data == doneSentinel {
			continue
		}
		var chunk chatStreamChunk
		if err := json.Unmarshal([]byte(events.data), &chunk); err != nil {
			return nil, &StreamError{Err: fmt.Errorf("decode chat stream chunk: %w", err)}
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		if chunk.Choices[0].FinishReason != "" {
			finish = chunk.Choices[0].FinishReason
		}
		fragment := chunk.Choices[0].Delta.Content
		if fragment == "" {
			continue
		}
		full.WriteString(fragment)
		if err := fn(fragment); err != nil {
			return nil, err
		}
	}
	if err := events.Err(); err != nil {
		return nil, asStreamError(err)
	}

	if finish == "" {
		finish = "stop"
	}
	return &ChatResponse{
		Object: "chat.completion",
		Model:  req.Model,
		Choices: []ChatChoice{{
			Message:      ChatMessage{Role: "assistant", Content: full.String()},
			FinishReason: finish,
		}},
	}, nil
}

// RespondStream invokes the streaming Responses endpoint. Text fragments are
// relayed into fn; the completed response, when the server sends one, is
// returned after the stream ends.
func (c *Client) RespondStream(ctx context.Context, req ResponsesRequest, fn func(fragment string) error) (*Response, error) {
	if fn == nil {
		return nil, errors.New("responses stream callback is required")
	}
	if err := c.prepareResponses(&req); err != nil {
		return nil, err
	}
	req.Stream = true

	body, err := c.exec.Open(ctx, c.baseURL+responsesPath, c.headers, req, c.maxRetries, c.baseDelay)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var completed *Response
	var full strings.Builder
	events := newSSEScanner(body)
	for events.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if events.data == "" || events.data == doneSentinel {
			continue
		}
		var event responsesStreamEvent
		if err := json.Unmarshal([]byte(events.data), &event); err != nil {
			return nil, &StreamError{Err: fmt.Errorf("decode responses stream event: %w", err)}
		}
		switch event.Type {
		case "response.output_text.delta":
			if event.Delta == "" {
				continue
			}
			full.WriteString(event.Delta)
			if err := fn(event.Delta); err != nil {
				return nil, err
			}
		case "response.completed":
			completed = event.Response
		}
	}
	if err := events.Err(); err != nil {
		return nil, asStreamError(err)
	}

	if completed == nil {
		return nil, &StreamError{Err: errors.New("stream ended without response.completed event")}
	}
	if completed.OutputText == "" && completed.Text() == "" {
		completed.OutputText = full.String()
	}
	return completed, nil
}

type chatStreamChunk struct {
	Choices []struct {
		Delta struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

type responsesStreamEvent struct {
	Type     string    `json:"type"`
	Delta    string    `json:"delta"`
	Response *Response `json:"response"`
}

// doneSentinel is the non-JSON data payload both endpoints send to mark the
// end of a stream.
const doneSentinel = "[DONE]"

// asStreamError wraps transport failures; context cancellation passes
// through untouched.
func asStreamError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &StreamError{Err: err}
}

// sseScanner walks a server-sent-events response body one event at a time.
// Both OpenAI streaming endpoints put a JSON payload on data lines, the
// Responses endpoint adding an event name; multi-line data is joined with
// newlines and comment lines are dropped.
type sseScanner struct {
	lines *bufio.Scanner
	event string
	data  string
}

func newSSEScanner(r io.Reader) *sseScanner {
	lines := bufio.NewScanner(r)
	lines.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &sseScanner{lines: lines}
}

// Next advances to the next event carrying a data payload, reporting false
// at end of stream or on a read error.
func (s *sseScanner) Next() bool {
	s.event, s.data = "", ""
	var parts []string
	for s.lines.Scan() {
		line := s.lines.Text()
		switch {
		case line == "":
			// Blank line terminates an event; skip separators between
			// events that carried no data.
			if len(parts) > 0 {
				s.data = strings.Join(parts, "\n")
				return true
			}
			s.event = ""
		case strings.HasPrefix(line, ":"):
		case strings.HasPrefix(line, "event:"):
			s.event = strings.TrimSpace(line[6:])
		case strings.HasPrefix(line, "data:"):
			parts = append(parts, strings.TrimSpace(line[5:]))
		}
	}
	// Flush a final event the server did not terminate with a blank line.
	if len(parts) > 0 {
		s.data = strings.Join(parts, "\n")
		return true
	}
	return false
}

// Err reports the read error that stopped the scan, if any.
func (s *sseScanner) Err() error { return s.lines.Err() }
