package store

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"surefile/pkg/domain"
)

func TestMemoryConversationAppendAndList(t *testing.T) {
	s := NewMemoryConversationStore()
	now := time.Now().UTC()
	if err := s.CreateConversation(domain.Conversation{ID: "c1", UserID: "u1", CreatedAt: now}); err != nil {
		t.Fatalf("create conversation: %v", err)
	}
	if err := s.AppendMessage("c1", domain.Message{ID: "m1", Role: "user", Content: "hi", CreatedAt: now}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.AppendMessage("c1", domain.Message{ID: "m2", Role: "assistant", Content: "hello", CreatedAt: now}); err != nil {
		t.Fatalf("append: %v", err)
	}
	msgs, err := s.ListMessages("c1", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(msgs) != 2 || msgs[0].Role != "user" || msgs[1].Role != "assistant" {
		t.Fatalf("unexpected history: %+v", msgs)
	}
}

func TestMemoryConversationAppendUnknownID(t *testing.T) {
	s := NewMemoryConversationStore()
	err := s.AppendMessage("missing", domain.Message{ID: "m1", Role: "user", Content: "hi"})
	if !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("expected ErrConversationNotFound, got %v", err)
	}
}

func TestMemoryConversationUnknownHistoryIsEmpty(t *testing.T) {
	s := NewMemoryConversationStore()
	msgs, err := s.ListMessages("missing", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("expected empty history, got %d", len(msgs))
	}
}

func TestMemoryConversationLastNSlice(t *testing.T) {
	s := NewMemoryConversationStore()
	now := time.Now().UTC()
	_ = s.CreateConversation(domain.Conversation{ID: "c1", CreatedAt: now})
	for i := 0; i < 15; i++ {
		_ = s.AppendMessage("c1", domain.Message{ID: fmt.Sprintf("m%d", i), Role: "user", Content: fmt.Sprintf("turn %d", i), CreatedAt: now})
	}
	msgs, err := s.ListMessages("c1", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(msgs) != 10 {
		t.Fatalf("expected last 10, got %d", len(msgs))
	}
	if msgs[0].Content != "turn 5" || msgs[9].Content != "turn 14" {
		t.Fatalf("wrong slice window: first=%q last=%q", msgs[0].Content, msgs[9].Content)
	}
}

func TestMemoryConversationConcurrentAppends(t *testing.T) {
	s := NewMemoryConversationStore()
	now := time.Now().UTC()
	_ = s.CreateConversation(domain.Conversation{ID: "c1", CreatedAt: now})

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.AppendMessage("c1", domain.Message{ID: fmt.Sprintf("m%d", i), Role: "user", Content: "x", CreatedAt: now})
		}(i)
	}
	wg.Wait()

	msgs, err := s.ListMessages("c1", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(msgs) != n {
		t.Fatalf("expected %d appended messages, got %d", n, len(msgs))
	}
}

func TestMemoryConversationConcurrentGetAndAppend(t *testing.T) {
	s := NewMemoryConversationStore()
	now := time.Now().UTC()
	_ = s.CreateConversation(domain.Conversation{ID: "c1", UserID: "u1", CreatedAt: now, UpdatedAt: now})

	// appends bump conv.UpdatedAt while the getters read it; run under -race
	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ts := now.Add(time.Duration(i) * time.Millisecond)
			_ = s.AppendMessage("c1", domain.Message{ID: fmt.Sprintf("m%d", i), Role: "user", Content: "x", CreatedAt: ts})
		}(i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok, err := s.GetConversation("c1"); err != nil || !ok {
				t.Errorf("get conversation: ok=%v err=%v", ok, err)
			}
			if _, ok, err := s.GetConversationByUser("u1"); err != nil || !ok {
				t.Errorf("get conversation by user: ok=%v err=%v", ok, err)
			}
		}()
	}
	wg.Wait()

	conv, ok, err := s.GetConversation("c1")
	if err != nil || !ok {
		t.Fatalf("final get: ok=%v err=%v", ok, err)
	}
	if !conv.UpdatedAt.After(now.Add(-time.Second)) {
		t.Fatalf("updatedAt not maintained: %v", conv.UpdatedAt)
	}
}
