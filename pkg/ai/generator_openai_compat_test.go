package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestOpenAICompatGeneratorReturnsFirstChoice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization header = %q", got)
		}
		var req oaiChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Fatalf("expected system + user messages, got %+v", req.Messages)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "File GSTR-1 by the 11th."}},
			},
		})
	}))
	defer srv.Close()

	g := NewOpenAICompatGenerator(srv.URL+"/v1", "test-key", "llama-3.3-70b-versatile", time.Second)
	reply, err := g.GenerateChat(context.Background(), "You are a tax assistant.", []Message{
		{Role: "user", Content: "When is GSTR-1 due?"},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if reply != "File GSTR-1 by the 11th." {
		t.Fatalf("unexpected reply: %q", reply)
	}
}

func TestOpenAICompatGeneratorRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "ok"}},
			},
		})
	}))
	defer srv.Close()

	g := NewOpenAICompatGenerator(srv.URL, "k", "m", time.Second)
	reply, err := g.GenerateChat(context.Background(), "", []Message{{Role: "user", Content: "hi"}})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if reply != "ok" {
		t.Fatalf("unexpected reply: %q", reply)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("expected 2 attempts, got %d", got)
	}
}

func TestOpenAICompatGeneratorDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "bad key"},
		})
	}))
	defer srv.Close()

	g := NewOpenAICompatGenerator(srv.URL, "k", "m", time.Second)
	_, err := g.GenerateChat(context.Background(), "", []Message{{Role: "user", Content: "hi"}})
	if err == nil || !strings.Contains(err.Error(), "bad key") {
		t.Fatalf("expected provider error, got: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected 1 attempt, got %d", got)
	}
}

func TestOpenAICompatGeneratorRejectsEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	g := NewOpenAICompatGenerator(srv.URL, "k", "m", time.Second)
	if _, err := g.GenerateChat(context.Background(), "", []Message{{Role: "user", Content: "hi"}}); err == nil {
		t.Fatalf("expected error for empty choices")
	}
}

func TestMockGeneratorIsDeterministicAndOffline(t *testing.T) {
	g := NewMockGenerator()
	msgs := []Message{{Role: "user", Content: "What is GST?"}}
	first, err := g.GenerateChat(context.Background(), "system", msgs)
	if err != nil {
		t.Fatalf("mock generate: %v", err)
	}
	second, err := g.GenerateChat(context.Background(), "system", msgs)
	if err != nil {
		t.Fatalf("mock generate: %v", err)
	}
	if first != second {
		t.Fatalf("mock reply not deterministic: %q vs %q", first, second)
	}
	if !strings.Contains(first, "What is GST?") {
		t.Fatalf("mock reply should echo question, got %q", first)
	}
}
