// Package conversation threads the server-assigned response identifier
// between successive Responses API calls, so multi-turn exchanges keep their
// context server-side without resending history.
package conversation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/poemAI-ch/poemai-go/pkg/model/openai"
)

// ErrEmptyInput rejects turns with no input text.
var ErrEmptyInput = errors.New("conversation: input is required")

// Turn records one completed exchange of a conversation.
type Turn struct {
	Input        string
	Instructions string
	ResponseID   string
	OutputText   string
	Timestamp    time.Time
}

// TurnOptions carries the per-turn parameters of Send. The zero value sends
// a plain stored turn.
type TurnOptions struct {
	// Instructions is only meaningful on the first turn of a conversation;
	// later turns inherit context through the response linkage instead.
	Instructions string
	// Store overrides the server-side storage flag, which defaults to true.
	// Disabling it means the server assigns no usable linkage identifier.
	Store           *bool
	Tools           []map[string]any
	ToolChoice      any
	Include         []string
	Temperature     *float64
	MaxOutputTokens int
	Stop            []string
	Metadata        map[string]string
}

// Conversation is one logical multi-turn exchange. It holds a single piece
// of mutable state, the identifier of the most recent response, plus a local
// transcript of completed turns. Instances are not meant to be shared across
// unrelated conversations; the internal mutex only keeps concurrent Send
// calls from corrupting the linkage.
type Conversation struct {
	client *openai.Client

	mu             sync.Mutex
	lastResponseID string
	history        []Turn
	now            func() time.Time
}

// New starts a fresh conversation backed by client.
func New(client *openai.Client) *Conversation {
	return &Conversation{
		client: client,
		now:    time.Now,
	}
}

// Send submits one turn. The stored response identifier of the previous
// turn, when present, is forwarded as the previous-response linkage; on
// success the new response's identifier replaces it. Responses that carry
// no identifier leave the conversation unlinked.
func (c *Conversation) Send(ctx context.Context, input string) (*openai.Response, error) {
	return c.SendWith(ctx, input, TurnOptions{})
}

// SendWith is Send with explicit per-turn options.
func (c *Conversation) SendWith(ctx context.Context, input string, opts TurnOptions) (*openai.Response, error) {
	if strings.TrimSpace(input) == "" {
		return nil, ErrEmptyInput
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	store := true
	if opts.Store != nil {
		store = *opts.Store
	}
	req := openai.ResponsesRequest{
		Input:           input,
		Instructions:    opts.Instructions,
		Store:           &store,
		Tools:           opts.Tools,
		ToolChoice:      opts.ToolChoice,
		Include:         opts.Include,
		Temperature:     opts.Temperature,
		MaxOutputTokens: opts.MaxOutputTokens,
		Stop:            opts.Stop,
		Metadata:        opts.Metadata,
	}
	if c.lastResponseID != "" {
		req.PreviousResponseID = c.lastResponseID
	}

	resp, err := c.client.Respond(ctx, req)
	if err != nil {
		return nil, err
	}

	c.lastResponseID = resp.ID
	c.history = append(c.history, Turn{
		Input:        input,
		Instructions: opts.Instructions,
		ResponseID:   resp.ID,
		OutputText:   resp.Text(),
		Timestamp:    c.now().UTC(),
	})
	return resp, nil
}

// Reset clears the linkage and transcript unconditionally; the next Send
// starts a fresh server-side context.
func (c *Conversation) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastResponseID = ""
	c.history = nil
}

// ConversationID returns the identifier of the most recently completed
// turn, or "" for a fresh or reset conversation. It has no side effects.
func (c *Conversation) ConversationID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastResponseID
}

// History returns a copy of the completed turns.
func (c *Conversation) History() []Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.history) == 0 {
		return nil
	}
	out := make([]Turn, len(c.history))
	copy(out, c.history)
	return out
}
