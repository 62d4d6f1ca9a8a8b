package app

import "errors"

var (
	// ErrInvalidCredentials keeps one message for unknown email and wrong
	// password so callers cannot probe which field failed.
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrEmailAlreadyExists       = errors.New("email already registered")
	ErrNameEmailPasswordNeeded  = errors.New("name, email and password are required")
	ErrBusinessNotFound         = errors.New("business profile not found")
	ErrBusinessNameRequired     = errors.New("businessName is required")
	ErrComplianceFieldsRequired = errors.New("title and dueDate are required")
	ErrComplianceNotFound       = errors.New("compliance item not found")
	ErrInvalidComplianceStatus  = errors.New("invalid compliance status")
	ErrFilingFieldsRequired     = errors.New("filingType and period are required")
	ErrInvalidFilingStatus      = errors.New("invalid filing status")
	ErrMessagesRequired         = errors.New("messages are required")
	ErrMessageRequired          = errors.New("message is required")
	ErrConversationNotFound     = errors.New("conversation not found")
)
