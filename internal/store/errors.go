package store

import "errors"

// ErrConversationNotFound reports an append against an unknown conversation.
var ErrConversationNotFound = errors.New("conversation not found")
