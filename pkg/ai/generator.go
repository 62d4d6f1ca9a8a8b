package ai

import "context"

// Message is one chat turn exchanged with a language model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// TextGenerator produces an assistant reply from a system prompt and a
// message list. Providers (OpenAI-compatible endpoints, the offline mock)
// implement this interface.
type TextGenerator interface {
	GenerateChat(ctx context.Context, systemPrompt string, messages []Message) (string, error)
}
