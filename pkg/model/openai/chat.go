package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Chat performs a blocking Chat Completions call. The configured answer
// cache, when present, is consulted first and updated on success.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if err := c.prepareChat(&req); err != nil {
		return nil, err
	}

	var key string
	if c.cache != nil {
		key = cacheKey(req)
		if answer, ok := c.cache.Fetch(key); ok {
			return cachedChatResponse(req.Model, answer), nil
		}
	}

	data, err := c.exec.Execute(ctx, c.baseURL+chatCompletionsPath, c.headers, req, c.timeout, c.maxRetries, c.baseDelay)
	if err != nil {
		return nil, err
	}

	var resp ChatResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode chat response: %w", err)
	}

	if c.cache != nil && key != "" && resp.Content() != "" {
		c.cache.Store(key, resp.Content())
	}
	if err := c.record(req.Model, lastUserContent(req.Messages), resp.Content()); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ChatViaResponses runs a chat-style message list through the Responses API
// and converts the result back into the Chat Completions shape. MaxTokens is
// deliberately not forwarded: the Responses endpoint rejects it.
func (c *Client) ChatViaResponses(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if err := c.prepareChat(&req); err != nil {
		return nil, err
	}

	instructions, input := ConvertMessages(req.Messages)
	rr := ResponsesRequest{
		Model:        req.Model,
		Input:        input,
		Instructions: instructions,
		Temperature:  req.Temperature,
		Stop:         req.Stop,
		Tools:        req.Tools,
		ToolChoice:   req.ToolChoice,
	}
	if req.ResponseFormat != nil {
		rr.Text = map[string]any{"format": req.ResponseFormat}
	}

	resp, err := c.Respond(ctx, rr)
	if err != nil {
		return nil, err
	}

	finish := "stop"
	if resp.Status != "" && resp.Status != "completed" {
		finish = resp.Status
	}
	return &ChatResponse{
		ID:      resp.ID,
		Object:  "chat.completion",
		Created: resp.CreatedAt,
		Model:   resp.Model,
		Choices: []ChatChoice{{
			Message:      ChatMessage{Role: "assistant", Content: resp.Text()},
			FinishReason: finish,
		}},
		Usage: resp.ChatUsage(),
	}, nil
}

func (c *Client) prepareChat(req *ChatRequest) error {
	if len(req.Messages) == 0 {
		return errors.New("chat request requires at least one message")
	}
	if req.Model == "" {
		req.Model = c.model
	}
	if info, ok := Lookup(req.Model); ok && !info.Supports(APITypeChatCompletions) {
		return fmt.Errorf("model %s does not support chat completions", req.Model)
	}
	return nil
}

func (c *Client) record(model, prompt, answer string) error {
	if c.recorder == nil || answer == "" {
		return nil
	}
	if err := c.recorder.RecordExchange(model, prompt, answer); err != nil {
		return fmt.Errorf("record exchange: %w", err)
	}
	return nil
}

func cachedChatResponse(model, answer string) *ChatResponse {
	return &ChatResponse{
		Object: "chat.completion",
		Model:  model,
		Choices: []ChatChoice{{
			Message:      ChatMessage{Role: "assistant", Content: answer},
			FinishReason: "stop",
		}},
	}
}

func lastUserContent(messages []ChatMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			return messages[i].Content
		}
	}
	return ""
}
