package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	modelpkg "github.com/poemAI-ch/poemai-go/pkg/model"
)

// Ensure OpenAIProvider satisfies the Provider interface at compile time.
var _ modelpkg.Provider = (*OpenAIProvider)(nil)

// OpenAIProvider wires OpenAI-backed model implementations into the factory.
type OpenAIProvider struct {
	HTTPClient *http.Client
}

// NewProvider builds an OpenAIProvider with the supplied HTTP client. When
// client is nil, a default client is used.
func NewProvider(client *http.Client) *OpenAIProvider {
	return &OpenAIProvider{HTTPClient: client}
}

// Name advertises the provider identifier used by the factory.
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// NewModel materializes an OpenAIModel configured according to cfg. The
// Extra key "api" selects the wire surface: "chat" (default) or "responses".
func (p *OpenAIProvider) NewModel(ctx context.Context, cfg modelpkg.ModelConfig) (modelpkg.Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	client, err := NewClient(ClientConfig{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Model:      cfg.ResolvedModel(),
		Headers:    cfg.Headers,
		HTTPClient: p.HTTPClient,
	})
	if err != nil {
		return nil, err
	}

	return &OpenAIModel{
		client: client,
		opts:   parseModelOptions(cfg.Extra),
	}, nil
}

// Ensure OpenAIModel implements the Model interface.
var _ modelpkg.Model = (*OpenAIModel)(nil)

// OpenAIModel is a concrete model backed by the OpenAI chat-completion or
// responses endpoints.
type OpenAIModel struct {
	client *Client
	opts   modelOptions
}

// Generate performs a blocking generation call.
func (m *OpenAIModel) Generate(ctx context.Context, messages []modelpkg.Message) (modelpkg.Message, error) {
	req := m.buildRequest(messages)

	var resp *ChatResponse
	var err error
	if m.opts.API == apiResponses {
		resp, err = m.client.ChatViaResponses(ctx, req)
	} else {
		resp, err = m.client.Chat(ctx, req)
	}
	if err != nil {
		return modelpkg.Message{}, err
	}
	return convertChoice(resp), nil
}

// GenerateStream invokes the streaming endpoint and relays incremental
// chunks into cb, finishing with the assembled message.
func (m *OpenAIModel) GenerateStream(ctx context.Context, messages []modelpkg.Message, cb modelpkg.StreamCallback) error {
	if cb == nil {
		return errStreamCallbackRequired
	}
	req := m.buildRequest(messages)

	relay := func(fragment string) error {
		return cb(modelpkg.StreamResult{Message: modelpkg.Message{Role: "assistant", Content: fragment}})
	}

	var content string
	if m.opts.API == apiResponses {
		instructions, input := ConvertMessages(req.Messages)
		resp, err := m.client.RespondStream(ctx, ResponsesRequest{
			Model:        req.Model,
			Input:        input,
			Instructions: instructions,
			Temperature:  req.Temperature,
		}, relay)
		if err != nil {
			return err
		}
		content = resp.Text()
	} else {
		resp, err := m.client.ChatStream(ctx, req, relay)
		if err != nil {
			return err
		}
		content = resp.Content()
	}

	return cb(modelpkg.StreamResult{
		Message: modelpkg.Message{Role: "assistant", Content: content},
		Final:   true,
	})
}

func (m *OpenAIModel) buildRequest(messages []modelpkg.Message) ChatRequest {
	chatMessages := make([]ChatMessage, 0, len(messages)+1)
	if m.opts.System != "" {
		chatMessages = append(chatMessages, ChatMessage{Role: "system", Content: m.opts.System})
	}
	for _, msg := range messages {
		cm := ChatMessage{Role: normalizeRole(msg.Role), Content: msg.Content}
		for _, call := range msg.ToolCalls {
			args, _ := json.Marshal(call.Arguments)
			cm.ToolCalls = append(cm.ToolCalls, ChatToolCall{
				ID:       call.ID,
				Type:     "function",
				Function: FunctionCall{Name: call.Name, Arguments: string(args)},
			})
		}
		chatMessages = append(chatMessages, cm)
	}

	return ChatRequest{
		Messages:    chatMessages,
		MaxTokens:   m.opts.MaxTokens,
		Temperature: m.opts.Temperature,
	}
}

func convertChoice(resp *ChatResponse) modelpkg.Message {
	msg := modelpkg.Message{Role: "assistant", Content: resp.Content()}
	if len(resp.Choices) == 0 {
		return msg
	}
	choice := resp.Choices[0].Message
	if choice.Role != "" {
		msg.Role = choice.Role
	}
	for _, call := range choice.ToolCalls {
		args := map[string]any{}
		if call.Function.Arguments != "" {
			_ = json.Unmarshal([]byte(call.Function.Arguments), &args)
		}
		msg.ToolCalls = append(msg.ToolCalls, modelpkg.ToolCall{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: args,
		})
	}
	return msg
}

func normalizeRole(role string) string {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "assistant", "model":
		return "assistant"
	case "system", "developer":
		return "system"
	case "tool":
		return "tool"
	default:
		return "user"
	}
}
