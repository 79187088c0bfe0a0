// Package tokencount estimates BPE token usage for prompts and message
// lists, following the OpenAI counting convention.
package tokencount

import (
	"encoding/json"
	"sync"

	"github.com/tiktoken-go/tokenizer"

	"github.com/poemAI-ch/poemai-go/pkg/model/openai"
)

var (
	codecOnce sync.Once
	codec     tokenizer.Codec
	codecErr  error
)

// getCodec returns the shared BPE codec, o200k_base for the GPT-4o family
// with a cl100k_base fallback for older vocabularies.
func getCodec() (tokenizer.Codec, error) {
	codecOnce.Do(func() {
		codec, codecErr = tokenizer.Get(tokenizer.O200kBase)
		if codecErr != nil {
			codec, codecErr = tokenizer.Get(tokenizer.Cl100kBase)
		}
	})
	return codec, codecErr
}

// Count returns the number of BPE tokens in text.
func Count(text string) (int, error) {
	enc, err := getCodec()
	if err != nil {
		return 0, err
	}
	ids, _, err := enc.Encode(text)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// CountMessage estimates the token count for one chat message: 4 overhead
// tokens per message (role and separators) plus content, name and tool-call
// tokens.
func CountMessage(msg openai.ChatMessage) (int, error) {
	tokens := 4
	for _, part := range []string{msg.Content, msg.Role, msg.Name, msg.ToolCallID} {
		if part == "" {
			continue
		}
		n, err := Count(part)
		if err != nil {
			return 0, err
		}
		tokens += n
	}
	for _, call := range msg.ToolCalls {
		n, err := Count(call.Function.Name)
		if err != nil {
			return 0, err
		}
		tokens += n
		n, err = Count(call.Function.Arguments)
		if err != nil {
			return 0, err
		}
		// 3 overhead tokens per tool call (id, type, function framing).
		tokens += n + 3
	}
	return tokens, nil
}

// CountMessages totals a message list plus 3 tokens for the assistant reply
// priming.
func CountMessages(messages []openai.ChatMessage) (int, error) {
	tokens := 3
	for _, msg := range messages {
		n, err := CountMessage(msg)
		if err != nil {
			return 0, err
		}
		tokens += n
	}
	return tokens, nil
}

// EstimateJSON counts tokens on the JSON encoding of an arbitrary value,
// useful for sizing tool definitions and structured payloads.
func EstimateJSON(v any) (int, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return 0, err
	}
	return Count(string(data))
}
