package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"surefile/pkg/ai"
)

func TestSendChatRecordsBothTurns(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	reply, err := a.SendChat(ctx, "u1", []ai.Message{
		{Role: "user", Content: "When is GSTR-3B due?"},
	})
	if err != nil {
		t.Fatalf("send chat: %v", err)
	}
	if reply.Role != "assistant" || reply.Content == "" {
		t.Fatalf("bad reply: %+v", reply)
	}

	conv, ok, err := a.conversations.GetConversationByUser("u1")
	if err != nil || !ok {
		t.Fatalf("conversation not created: ok=%v err=%v", ok, err)
	}
	history, err := a.conversations.ListMessages(conv.ID, 0)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("want exactly user+assistant turns, got %d", len(history))
	}
	if history[0].Role != "user" || history[1].Role != "assistant" {
		t.Fatalf("turn order wrong: %q then %q", history[0].Role, history[1].Role)
	}

	if _, err := a.SendChat(ctx, "u1", []ai.Message{{Role: "user", Content: "and GSTR-1?"}}); err != nil {
		t.Fatalf("second turn: %v", err)
	}
	history, _ = a.conversations.ListMessages(conv.ID, 0)
	if len(history) != 4 {
		t.Fatalf("second turn should reuse the conversation, got %d messages", len(history))
	}
}

func TestSendChatRejectsEmpty(t *testing.T) {
	a := newTestApp(t)
	if _, err := a.SendChat(context.Background(), "u1", nil); !errors.Is(err, ErrMessagesRequired) {
		t.Fatalf("want ErrMessagesRequired, got %v", err)
	}
}

func TestAssistantConversationFlow(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	id, err := a.StartConversation("")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if id == "" {
		t.Fatal("empty conversation id")
	}

	reply, _, err := a.SendAssistantMessage(ctx, id, "help me with my return", AssistantContext{
		CurrentScreen: "ReturnFiling",
		CurrentStep:   2,
		Business:      AssistantBusiness{BusinessName: "Sharma Traders", Type: "proprietorship"},
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if reply == "" {
		t.Fatal("empty reply")
	}

	history, err := a.History(id)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("want user+assistant in history, got %d", len(history))
	}
}

func TestAssistantHistoryWindow(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	id, err := a.StartConversation("u1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	for i := 0; i < 8; i++ {
		if _, _, err := a.SendAssistantMessage(ctx, id, fmt.Sprintf("question %d", i), AssistantContext{}); err != nil {
			t.Fatalf("turn %d: %v", i, err)
		}
	}

	history, err := a.History(id)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 16 {
		t.Fatalf("full history should keep every turn, got %d", len(history))
	}
}

func TestSendAssistantMessageUnknownConversation(t *testing.T) {
	a := newTestApp(t)
	_, _, err := a.SendAssistantMessage(context.Background(), "no-such-id", "hello", AssistantContext{})
	if !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("want ErrConversationNotFound, got %v", err)
	}
}

func TestHistoryUnknownConversationIsEmpty(t *testing.T) {
	a := newTestApp(t)
	history, err := a.History("no-such-id")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("want empty history, got %d", len(history))
	}
}

func TestNextSuggestedStep(t *testing.T) {
	cases := []struct {
		reply string
		want  string
	}{
		{"Please upload your sales invoices first.", "Upload Documents"},
		{"You can file GSTR-1 once the data is ready.", "Start Filing"},
		{"First Upload the challan, then file the return.", "Upload Documents"},
		{"Your due date is the 20th.", ""},
	}
	for _, tc := range cases {
		if got := nextSuggestedStep(tc.reply); got != tc.want {
			t.Errorf("nextSuggestedStep(%q) = %q, want %q", tc.reply, got, tc.want)
		}
	}
}

func TestAssistantPromptMentionsContext(t *testing.T) {
	p := assistantPrompt(AssistantContext{
		CurrentScreen: "ComplianceForm",
		CurrentStep:   3,
		Business:      AssistantBusiness{BusinessName: "Sharma Traders", Turnover: "10-50L"},
	})
	for _, want := range []string{"ComplianceForm", "step 3", "Sharma Traders", "10-50L"} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q: %s", want, p)
		}
	}
}
