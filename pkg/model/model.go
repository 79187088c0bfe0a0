package model

import "context"

// Message represents a single conversational turn exchanged with a model.
type Message struct {
	Role      string
	Content   string
	ToolCalls []ToolCall
}

// ToolCall captures a tool invocation emitted by assistant messages.
type ToolCall struct {
	ID        string
	Name      string
	Arguments map[string]any
}

// StreamResult carries one chunk of a streamed generation. Final marks the
// chunk that holds the fully assembled message.
type StreamResult struct {
	Message Message
	Final   bool
}

// StreamCallback receives incremental results during streaming generation.
// Returning an error aborts the stream.
type StreamCallback func(StreamResult) error

// Model is a conversational text generator backed by a remote inference API.
type Model interface {
	Generate(ctx context.Context, messages []Message) (Message, error)
	GenerateStream(ctx context.Context, messages []Message, cb StreamCallback) error
}
