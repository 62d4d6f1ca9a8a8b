package ai

import (
	"context"
	"fmt"
	"strings"
)

// MockGenerator returns a canned reply without any network call. It is used
// whenever no provider API key is configured.
type MockGenerator struct{}

// NewMockGenerator builds the offline generator.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// GenerateChat echoes a deterministic guidance string. The reply repeats the
// last user turn so callers can see the request round-tripped.
func (g *MockGenerator) GenerateChat(_ context.Context, _ string, messages []Message) (string, error) {
	lastUser := ""
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			lastUser = strings.TrimSpace(messages[i].Content)
			break
		}
	}
	if lastUser == "" {
		return "[MOCK] Hello! Ask me about GST, TDS, or Income Tax filing and I will guide you through the Return Filing wizard.", nil
	}
	return fmt.Sprintf("[MOCK] You asked: %q. Based on standard rules, you likely need to file GSTR-1 quarterly. Please enter your total sales for the last quarter in the Return Filing wizard.", lastUser), nil
}
