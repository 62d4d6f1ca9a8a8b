package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"surefile/internal/app"
	"surefile/pkg/ai"
	"surefile/pkg/domain"
)

// handleChat proxies an authenticated chat turn and answers in the
// provider's chat-completions shape so existing clients keep working.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req chatRequest
	if !decodeBody(w, r, &req) {
		return
	}
	messages := make([]ai.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, ai.Message{Role: m.Role, Content: m.Content})
	}
	reply, err := s.app.SendChat(r.Context(), user.ID, messages)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chatCompletionResponse{
		Choices: []chatChoice{{Message: chatMessage{Role: reply.Role, Content: reply.Content}}},
	})
}

func (s *Server) handleChatStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	// the body is optional here, an anonymous client sends none
	var req chatStartRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil && err != io.EOF {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	id, err := s.app.StartConversation(req.UserID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"conversationId": id})
}

func (s *Server) handleChatMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req chatMessageRequest
	if !decodeBody(w, r, &req) {
		return
	}
	reply, nextStep, err := s.app.SendAssistantMessage(r.Context(), req.ConversationID, req.Message, app.AssistantContext{
		CurrentScreen: req.Context.CurrentScreen,
		CurrentStep:   req.Context.CurrentStep,
		Business: app.AssistantBusiness{
			BusinessName: req.Context.Business.BusinessName,
			Type:         req.Context.Business.Type,
			Turnover:     req.Context.Business.Turnover,
		},
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chatMessageResponse{Reply: reply, NextSuggestedStep: nextStep})
}

func (s *Server) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/chat/history/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	history, err := s.app.History(id)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": history})
}

type chatRequest struct {
	Messages []chatMessage `json:"messages" validate:"required,min=1"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []chatChoice `json:"choices"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

type chatStartRequest struct {
	UserID string `json:"userId"`
}

type chatMessageRequest struct {
	ConversationID string `json:"conversationId" validate:"required"`
	Message        string `json:"message" validate:"required"`
	Context        struct {
		CurrentScreen string `json:"currentScreen"`
		CurrentStep   int    `json:"currentStep"`
		Business      struct {
			BusinessName string `json:"businessName"`
			Type         string `json:"type"`
			Turnover     string `json:"turnover"`
		} `json:"business"`
	} `json:"context"`
}

type chatMessageResponse struct {
	Reply             string `json:"reply"`
	NextSuggestedStep string `json:"nextSuggestedStep"`
}
