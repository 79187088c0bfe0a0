package tokencount

import (
	"strings"
	"testing"

	"github.com/poemAI-ch/poemai-go/pkg/model/openai"
)

func TestCount(t *testing.T) {
	n, err := Count("Hello, world!")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n == 0 {
		t.Fatal("non-empty text must have tokens")
	}

	empty, err := Count("")
	if err != nil {
		t.Fatalf("count empty: %v", err)
	}
	if empty != 0 {
		t.Fatalf("empty text = %d tokens", empty)
	}

	longer, err := Count(strings.Repeat("Hello, world! ", 20))
	if err != nil {
		t.Fatalf("count longer: %v", err)
	}
	if longer <= n {
		t.Fatalf("longer text should have more tokens: %d vs %d", longer, n)
	}
}

func TestCountMessage(t *testing.T) {
	content := "What is the capital of France?"
	contentTokens, err := Count(content)
	if err != nil {
		t.Fatalf("count content: %v", err)
	}

	msg := openai.ChatMessage{Role: "user", Content: content}
	total, err := CountMessage(msg)
	if err != nil {
		t.Fatalf("count message: %v", err)
	}
	// Message overhead plus the role tokens push the count above the
	// content alone.
	if total <= contentTokens {
		t.Fatalf("message = %d tokens, content alone = %d", total, contentTokens)
	}

	named := msg
	named.Name = "alice"
	withName, err := CountMessage(named)
	if err != nil {
		t.Fatalf("count named message: %v", err)
	}
	if withName <= total {
		t.Fatalf("named message = %d tokens, unnamed = %d", withName, total)
	}
}

func TestCountMessageWithToolCalls(t *testing.T) {
	plain := openai.ChatMessage{Role: "assistant", Content: "calling a tool"}
	base, err := CountMessage(plain)
	if err != nil {
		t.Fatalf("count plain: %v", err)
	}

	withCall := plain
	withCall.ToolCalls = []openai.ChatToolCall{{
		ID:   "call_1",
		Type: "function",
		Function: openai.FunctionCall{
			Name:      "get_weather",
			Arguments: `{"city":"Zurich"}`,
		},
	}}
	total, err := CountMessage(withCall)
	if err != nil {
		t.Fatalf("count with tool call: %v", err)
	}
	if total <= base {
		t.Fatalf("tool call message = %d tokens, plain = %d", total, base)
	}
}

func TestCountMessages(t *testing.T) {
	messages := []openai.ChatMessage{
		{Role: "system", Content: "You are a helpful assistant."},
		{Role: "user", Content: "Hi!"},
	}

	var sum int
	for _, msg := range messages {
		n, err := CountMessage(msg)
		if err != nil {
			t.Fatalf("count message: %v", err)
		}
		sum += n
	}

	total, err := CountMessages(messages)
	if err != nil {
		t.Fatalf("count messages: %v", err)
	}
	if total != sum+3 {
		t.Fatalf("total = %d, want per-message sum %d plus reply priming", total, sum)
	}
}

func TestEstimateJSON(t *testing.T) {
	tool := map[string]any{
		"type": "function",
		"function": map[string]any{
			"name":        "get_weather",
			"description": "Look up current weather for a city.",
		},
	}
	n, err := EstimateJSON(tool)
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if n == 0 {
		t.Fatal("tool definition must have tokens")
	}
}
