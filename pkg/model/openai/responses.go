package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ResponsesRequest follows the Responses API contract. Input is either a
// plain string or a list of role/content items; PreviousResponseID links the
// request to the prior turn so the service reconstructs context server-side.
type ResponsesRequest struct {
	Model              string            `json:"model"`
	Input              any               `json:"input,omitempty"`
	Instructions       string            `json:"instructions,omitempty"`
	Temperature        *float64          `json:"temperature,omitempty"`
	MaxOutputTokens    int               `json:"max_output_tokens,omitempty"`
	Stop               []string          `json:"stop,omitempty"`
	Tools              []map[string]any  `json:"tools,omitempty"`
	ToolChoice         any               `json:"tool_choice,omitempty"`
	Stream             bool              `json:"stream,omitempty"`
	Store              *bool             `json:"store,omitempty"`
	PreviousResponseID string            `json:"previous_response_id,omitempty"`
	Include            []string          `json:"include,omitempty"`
	Text               map[string]any    `json:"text,omitempty"`
	Metadata           map[string]string `json:"metadata,omitempty"`
}

// InputMessage is one structured input item (role + content parts or text).
type InputMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// ContentPart is a multimodal content element of an input message.
type ContentPart struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// VisionInput builds the input items for a text+image user turn.
func VisionInput(text, imageURL string) []InputMessage {
	return []InputMessage{{
		Role: "user",
		Content: []ContentPart{
			{Type: "input_text", Text: text},
			{Type: "input_image", ImageURL: imageURL},
		},
	}}
}

// OutputItem is a union over message and function_call output entries.
type OutputItem struct {
	ID        string          `json:"id,omitempty"`
	Type      string          `json:"type"`
	Role      string          `json:"role,omitempty"`
	Status    string          `json:"status,omitempty"`
	Content   []OutputContent `json:"content,omitempty"`
	CallID    string          `json:"call_id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Arguments string          `json:"arguments,omitempty"`
}

// OutputContent is one content element of an output message.
type OutputContent struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// ResponseUsage reports token consumption in the Responses API shape.
type ResponseUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Response captures the Responses API schema we care about. The server
// assigns ID; callers thread it into the next request's
// PreviousResponseID to continue a conversation.
type Response struct {
	ID         string         `json:"id"`
	Object     string         `json:"object"`
	CreatedAt  int64          `json:"created_at"`
	Status     string         `json:"status"`
	Model      string         `json:"model"`
	Output     []OutputItem   `json:"output"`
	OutputText string         `json:"output_text"`
	Usage      *ResponseUsage `json:"usage,omitempty"`
}

// Text assembles the generated text from the output items, falling back to
// the top-level output_text field used by simplified gateways.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	var b strings.Builder
	for _, item := range r.Output {
		if item.Type != "message" {
			continue
		}
		for _, c := range item.Content {
			if c.Type == "output_text" {
				b.WriteString(c.Text)
			}
		}
	}
	if b.Len() > 0 {
		return b.String()
	}
	return r.OutputText
}

// ToolCalls extracts function_call output items.
func (r *Response) ToolCalls() []FunctionCall {
	var calls []FunctionCall
	for _, item := range r.Output {
		if item.Type == "function_call" {
			calls = append(calls, FunctionCall{Name: item.Name, Arguments: item.Arguments})
		}
	}
	return calls
}

// ChatUsage converts the usage block to the Chat Completions shape.
func (r *Response) ChatUsage() Usage {
	if r == nil || r.Usage == nil {
		return Usage{}
	}
	return Usage{
		PromptTokens:     r.Usage.InputTokens,
		CompletionTokens: r.Usage.OutputTokens,
		TotalTokens:      r.Usage.TotalTokens,
	}
}

// Respond performs a blocking Responses API call.
func (c *Client) Respond(ctx context.Context, req ResponsesRequest) (*Response, error) {
	if err := c.prepareResponses(&req); err != nil {
		return nil, err
	}

	data, err := c.exec.Execute(ctx, c.baseURL+responsesPath, c.headers, req, c.timeout, c.maxRetries, c.baseDelay)
	if err != nil {
		return nil, err
	}

	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode responses payload: %w", err)
	}

	prompt, _ := req.Input.(string)
	if err := c.record(req.Model, prompt, resp.Text()); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) prepareResponses(req *ResponsesRequest) error {
	if req.Input == nil && req.Instructions == "" {
		return errors.New("responses request requires input or instructions")
	}
	if req.Model == "" {
		req.Model = c.model
	}
	if info, ok := Lookup(req.Model); ok && !info.Supports(APITypeResponses) {
		return fmt.Errorf("model %s does not support the responses API", req.Model)
	}
	return nil
}
