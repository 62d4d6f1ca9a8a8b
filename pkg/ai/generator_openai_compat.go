package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	defaultRequestTimeout = 30 * time.Second
	maxAttempts           = 2
	retryBackoff          = 500 * time.Millisecond
)

// OpenAICompatGenerator calls any OpenAI-compatible /chat/completions
// endpoint (Groq, OpenRouter, vLLM, self-hosted models, ...).
type OpenAICompatGenerator struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewOpenAICompatGenerator builds an OpenAI-compatible TextGenerator.
// baseURL should include the version prefix, e.g.
// "https://api.groq.com/openai/v1". A zero timeout falls back to 30s.
func NewOpenAICompatGenerator(baseURL, apiKey, model string, timeout time.Duration) *OpenAICompatGenerator {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &OpenAICompatGenerator{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:  strings.TrimSpace(apiKey),
		model:   strings.TrimSpace(model),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// GenerateChat sends the system prompt plus message list to the provider and
// returns the first choice. Transient failures (transport errors, 5xx) are
// retried once with a short backoff.
func (g *OpenAICompatGenerator) GenerateChat(ctx context.Context, systemPrompt string, messages []Message) (string, error) {
	if g.model == "" {
		return "", fmt.Errorf("chat model required")
	}
	payload := make([]oaiMessage, 0, len(messages)+1)
	if strings.TrimSpace(systemPrompt) != "" {
		payload = append(payload, oaiMessage{Role: "system", Content: systemPrompt})
	}
	for _, msg := range messages {
		payload = append(payload, oaiMessage{Role: msg.Role, Content: msg.Content})
	}
	body, err := json.Marshal(oaiChatRequest{
		Model:       g.model,
		Messages:    payload,
		Stream:      false,
		Temperature: 0.7,
	})
	if err != nil {
		return "", err
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(retryBackoff):
			}
		}
		text, retryable, err := g.doRequest(ctx, body)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}
	return "", lastErr
}

func (g *OpenAICompatGenerator) doRequest(ctx context.Context, body []byte) (string, bool, error) {
	url := g.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", false, err
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", true, fmt.Errorf("chat completions request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		retryable := resp.StatusCode >= 500
		var errResp oaiErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		if errResp.Error.Message != "" {
			return "", retryable, fmt.Errorf("chat completions api error: %s", errResp.Error.Message)
		}
		return "", retryable, fmt.Errorf("chat completions api error: %s", resp.Status)
	}

	var chatResp oaiChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", false, fmt.Errorf("chat completions decode: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", false, fmt.Errorf("empty response from chat completions api")
	}
	text := strings.TrimSpace(chatResp.Choices[0].Message.Content)
	if text == "" {
		return "", false, fmt.Errorf("empty response from chat completions api")
	}
	return text, false, nil
}

// OpenAI-compatible request/response types.

type oaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type oaiChatRequest struct {
	Model       string       `json:"model"`
	Messages    []oaiMessage `json:"messages"`
	Stream      bool         `json:"stream"`
	Temperature float64      `json:"temperature"`
}

type oaiChatResponse struct {
	Choices []struct {
		Message oaiMessage `json:"message"`
	} `json:"choices"`
}

type oaiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}
