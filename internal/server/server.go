package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"surefile/internal/app"
	"surefile/internal/ratelimit"
	"surefile/internal/util"
	"surefile/internal/wizard"
	"surefile/pkg/domain"
)

// ChatMode selects which chat surface the server exposes.
type ChatMode string

const (
	// ChatModeAPI exposes POST /api/chat, an authenticated proxy that
	// returns the provider-shaped response.
	ChatModeAPI ChatMode = "api"
	// ChatModeAssistant exposes the conversation endpoints under /chat.
	ChatModeAssistant ChatMode = "assistant"
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	App      *app.App
	ChatMode ChatMode
	Limiter  *ratelimit.FixedWindowLimiter
}

// Server exposes the HTTP API.
type Server struct {
	app      *app.App
	chatMode ChatMode
	limiter  *ratelimit.FixedWindowLimiter
	mux      *http.ServeMux
}

var validate = validator.New()

// New constructs the server with routes configured.
func New(cfg Config) *Server {
	s := &Server{
		app:      cfg.App,
		chatMode: cfg.ChatMode,
		limiter:  cfg.Limiter,
		mux:      http.NewServeMux(),
	}
	s.routes()
	return s
}

// Router returns the handler with the shared middleware applied.
func (s *Server) Router() http.Handler {
	var h http.Handler = s.mux
	h = util.WithRequestLog(h)
	h = util.WithRequestID(h)
	h = util.WithCORS(h)
	h = util.WithSecurityHeaders(h)
	return h
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)

	// auth
	s.mux.HandleFunc("/api/auth/register", s.rateLimited("auth", s.handleRegister))
	s.mux.HandleFunc("/api/auth/login", s.rateLimited("auth", s.handleLogin))

	// domain records
	s.mux.Handle("/api/business", s.authenticated(s.handleBusiness))
	s.mux.Handle("/api/compliance", s.authenticated(s.handleCompliance))
	s.mux.Handle("/api/compliance/", s.authenticated(s.handleComplianceByID))
	s.mux.Handle("/api/filing", s.authenticated(s.handleFiling))

	// chat surface, selected at deploy time
	switch s.chatMode {
	case ChatModeAssistant:
		s.mux.HandleFunc("/chat/start", s.rateLimited("chat", s.handleChatStart))
		s.mux.HandleFunc("/chat/message", s.rateLimited("chat", s.handleChatMessage))
		s.mux.HandleFunc("/chat/history/", s.handleChatHistory)
	default:
		s.mux.Handle("/api/chat", s.authenticated(s.handleChat))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// auth wrappers
type authHandler func(http.ResponseWriter, *http.Request, domain.User)

func (s *Server) authenticated(next authHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := sessionToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "No token, authorization denied")
			return
		}
		user, ok := s.app.UserFromToken(token)
		if !ok {
			writeError(w, http.StatusUnauthorized, "Token is not valid")
			return
		}
		next(w, r, user)
	})
}

func (s *Server) rateLimited(bucket string, next http.HandlerFunc) http.HandlerFunc {
	if s.limiter == nil {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		key := bucket + ":" + util.ClientIP(r)
		if !s.limiter.Allow(key) {
			writeError(w, http.StatusTooManyRequests, "Too many requests, try again later")
			return
		}
		next(w, r)
	}
}

// sessionToken pulls the token from x-auth-token, falling back to a
// bearer Authorization header.
func sessionToken(r *http.Request) (string, bool) {
	if token := strings.TrimSpace(r.Header.Get("X-Auth-Token")); token != "" {
		return token, true
	}
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return "", false
	}
	return token, true
}

// auth handlers
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	user, token, err := s.app.Register(req.Name, req.Email, req.Password)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: user})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	user, token, err := s.app.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, app.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// decodeBody parses a JSON body into dst and runs its validation tags.
// It writes the error response itself and reports whether decoding passed.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Field())
		}
		return "invalid or missing fields: " + strings.Join(fields, ", ")
	}
	return "invalid request"
}

// writeAppError maps service errors onto HTTP statuses. Unknown errors are
// logged and hidden behind a 500.
func writeAppError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrNameEmailPasswordNeeded),
		errors.Is(err, app.ErrBusinessNameRequired),
		errors.Is(err, app.ErrComplianceFieldsRequired),
		errors.Is(err, app.ErrInvalidComplianceStatus),
		errors.Is(err, app.ErrFilingFieldsRequired),
		errors.Is(err, app.ErrInvalidFilingStatus),
		errors.Is(err, app.ErrMessagesRequired),
		errors.Is(err, app.ErrMessageRequired):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, app.ErrEmailAlreadyExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, app.ErrBusinessNotFound),
		errors.Is(err, app.ErrComplianceNotFound),
		errors.Is(err, app.ErrConversationNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		var missing *wizard.MissingFieldsError
		if errors.As(err, &missing) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Server Error")
	}
}

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"msg": msg})
}
