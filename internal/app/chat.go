package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"surefile/internal/store"
	"surefile/pkg/ai"
	"surefile/pkg/domain"
)

const chatSystemPrompt = `You are Surefile's compliance assistant for Indian small businesses. ` +
	`Answer questions about GST returns, income tax filings, TDS, and upcoming due dates ` +
	`in plain language. Keep answers short and practical. If you are unsure about a rule, ` +
	`say so and suggest consulting a chartered accountant.`

const assistantSystemPrompt = `You are the in-app filing assistant for Surefile. ` +
	`Guide the user through the current screen of the filing wizard, one step at a time. ` +
	`Keep replies to two or three sentences.`

// AssistantContext carries the client's current wizard position so replies
// can reference it.
type AssistantContext struct {
	CurrentScreen string            `json:"currentScreen"`
	CurrentStep   int               `json:"currentStep"`
	Business      AssistantBusiness `json:"business"`
}

// AssistantBusiness is the subset of the profile the assistant prompt uses.
type AssistantBusiness struct {
	BusinessName string `json:"businessName"`
	Type         string `json:"type"`
	Turnover     string `json:"turnover"`
}

// SendChat proxies an authenticated chat turn to the text generator and
// records the exchange against the user's conversation.
func (a *App) SendChat(ctx context.Context, userID string, messages []ai.Message) (ai.Message, error) {
	if len(messages) == 0 {
		return ai.Message{}, ErrMessagesRequired
	}
	conv, err := a.conversationForUser(userID)
	if err != nil {
		return ai.Message{}, err
	}
	last := messages[len(messages)-1]
	if last.Role == "user" {
		if err := a.appendTurn(conv.ID, "user", last.Content); err != nil {
			return ai.Message{}, err
		}
	}
	reply, err := a.generator.GenerateChat(ctx, chatSystemPrompt, messages)
	if err != nil {
		return ai.Message{}, fmt.Errorf("generate reply: %w", err)
	}
	if err := a.appendTurn(conv.ID, "assistant", reply); err != nil {
		return ai.Message{}, err
	}
	return ai.Message{Role: "assistant", Content: reply}, nil
}

// StartConversation opens a new assistant conversation and returns its id.
// An empty user id is recorded as anonymous.
func (a *App) StartConversation(userID string) (string, error) {
	if userID == "" {
		userID = "anon"
	}
	now := time.Now().UTC()
	conv := domain.Conversation{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := a.conversations.CreateConversation(conv); err != nil {
		return "", fmt.Errorf("create conversation: %w", err)
	}
	return conv.ID, nil
}

// SendAssistantMessage records the user's turn, asks the generator for a
// reply using the last few turns of history, and suggests the next wizard
// action when the reply mentions one.
func (a *App) SendAssistantMessage(ctx context.Context, conversationID, message string, actx AssistantContext) (string, string, error) {
	message = strings.TrimSpace(message)
	if conversationID == "" || message == "" {
		return "", "", ErrMessageRequired
	}
	if _, ok, err := a.conversations.GetConversation(conversationID); err != nil {
		return "", "", fmt.Errorf("fetch conversation: %w", err)
	} else if !ok {
		return "", "", ErrConversationNotFound
	}
	if err := a.appendTurn(conversationID, "user", message); err != nil {
		return "", "", err
	}
	history, err := a.conversations.ListMessages(conversationID, a.historyLimit)
	if err != nil {
		return "", "", fmt.Errorf("fetch history: %w", err)
	}
	messages := make([]ai.Message, 0, len(history))
	for _, m := range history {
		messages = append(messages, ai.Message{Role: m.Role, Content: m.Content})
	}
	reply, err := a.generator.GenerateChat(ctx, assistantPrompt(actx), messages)
	if err != nil {
		return "", "", fmt.Errorf("generate reply: %w", err)
	}
	if err := a.appendTurn(conversationID, "assistant", reply); err != nil {
		return "", "", err
	}
	return reply, nextSuggestedStep(reply), nil
}

// History returns a conversation's messages, oldest first. Unknown ids get
// an empty history rather than an error so the client can poll freely.
func (a *App) History(conversationID string) ([]domain.Message, error) {
	msgs, err := a.conversations.ListMessages(conversationID, 0)
	if err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}
	return msgs, nil
}

func (a *App) conversationForUser(userID string) (domain.Conversation, error) {
	conv, ok, err := a.conversations.GetConversationByUser(userID)
	if err != nil {
		return domain.Conversation{}, fmt.Errorf("fetch conversation: %w", err)
	}
	if ok {
		return conv, nil
	}
	now := time.Now().UTC()
	conv = domain.Conversation{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := a.conversations.CreateConversation(conv); err != nil {
		return domain.Conversation{}, fmt.Errorf("create conversation: %w", err)
	}
	return conv, nil
}

func (a *App) appendTurn(conversationID, role, content string) error {
	msg := domain.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		CreatedAt:      time.Now().UTC(),
	}
	if err := a.conversations.AppendMessage(conversationID, msg); err != nil {
		if errors.Is(err, store.ErrConversationNotFound) {
			return ErrConversationNotFound
		}
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

func assistantPrompt(actx AssistantContext) string {
	var b strings.Builder
	b.WriteString(assistantSystemPrompt)
	if actx.CurrentScreen != "" {
		fmt.Fprintf(&b, " The user is on the %s screen", actx.CurrentScreen)
		if actx.CurrentStep > 0 {
			fmt.Fprintf(&b, ", step %d", actx.CurrentStep)
		}
		b.WriteString(".")
	}
	if actx.Business.BusinessName != "" {
		fmt.Fprintf(&b, " Their business is %q", actx.Business.BusinessName)
		if actx.Business.Type != "" {
			fmt.Fprintf(&b, " (%s)", actx.Business.Type)
		}
		if actx.Business.Turnover != "" {
			fmt.Fprintf(&b, " with turnover %s", actx.Business.Turnover)
		}
		b.WriteString(".")
	}
	return b.String()
}

// nextSuggestedStep maps the assistant's reply to a wizard action the
// client can surface as a button.
func nextSuggestedStep(reply string) string {
	lower := strings.ToLower(reply)
	switch {
	case strings.Contains(lower, "upload"):
		return "Upload Documents"
	case strings.Contains(lower, "file"):
		return "Start Filing"
	default:
		return ""
	}
}
