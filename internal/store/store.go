package store

import (
	"surefile/pkg/domain"
)

// Store defines persistence operations for users and domain records.
type Store interface {
	// users
	SaveUser(domain.User) error
	HasUserEmail(email string) (bool, error)
	GetUserByEmail(email string) (domain.User, bool, error)
	GetUserByID(id string) (domain.User, bool, error)

	// business profiles: at most one per user, replace-or-create
	SaveBusiness(domain.Business) (domain.Business, error)
	GetBusinessByUser(userID string) (domain.Business, bool, error)

	// compliance items
	CreateCompliance(domain.Compliance) error
	GetCompliance(id string) (domain.Compliance, bool, error)
	ListCompliancesByUser(userID string) ([]domain.Compliance, error)
	SetComplianceStatus(id string, status domain.ComplianceStatus) error

	// filings
	CreateFiling(domain.Filing) error
	ListFilingsByUser(userID string) ([]domain.Filing, error)
}

// ConversationStore persists chat history. Implementations are either
// database-backed or in-memory; deployment picks one.
type ConversationStore interface {
	CreateConversation(domain.Conversation) error
	GetConversation(id string) (domain.Conversation, bool, error)
	GetConversationByUser(userID string) (domain.Conversation, bool, error)
	AppendMessage(conversationID string, msg domain.Message) error
	// ListMessages returns a conversation's messages in append order. A
	// positive limit keeps only the newest limit messages; zero returns
	// everything. An unknown conversation id yields an empty slice, not an
	// error.
	ListMessages(conversationID string, limit int) ([]domain.Message, error)
}

// SessionStore issues and validates bearer tokens.
type SessionStore interface {
	NewSession(userID string) (string, error)
	GetUserIDByToken(token string) (string, bool, error)
}
