package openai

import "strings"

// ConvertMessages translates a Chat Completions message list into the
// Responses API (instructions, input) pair. System messages are joined with
// blank lines into instructions; a lone user message collapses to a plain
// string input, anything longer becomes a role/content item list.
func ConvertMessages(messages []ChatMessage) (string, any) {
	var systemParts []string
	var rest []InputMessage
	for _, msg := range messages {
		if msg.Role == "system" {
			if msg.Content != "" {
				systemParts = append(systemParts, msg.Content)
			}
			continue
		}
		rest = append(rest, InputMessage{Role: msg.Role, Content: msg.Content})
	}

	instructions := strings.Join(systemParts, "\n\n")
	switch {
	case len(rest) == 0:
		return instructions, nil
	case len(rest) == 1 && rest[0].Role == "user":
		content, _ := rest[0].Content.(string)
		return instructions, content
	default:
		return instructions, rest
	}
}
