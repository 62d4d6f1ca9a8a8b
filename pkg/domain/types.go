package domain

import "time"

type ComplianceStatus string

const (
	CompliancePending   ComplianceStatus = "Pending"
	ComplianceCompleted ComplianceStatus = "Completed"
	ComplianceOverdue   ComplianceStatus = "Overdue"
)

type FilingStatus string

const (
	FilingDraft     FilingStatus = "Draft"
	FilingSubmitted FilingStatus = "Submitted"
	FilingPaid      FilingStatus = "Paid"
)

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Business is the per-user business profile. At most one exists per user;
// each submission replaces the whole record rather than merging fields.
type Business struct {
	ID                string    `json:"id"`
	UserID            string    `json:"userId"`
	BusinessName      string    `json:"businessName"`
	BusinessType      string    `json:"businessType"`
	Category          string    `json:"category"`
	Turnover          string    `json:"turnover"`
	GSTNumber         string    `json:"gstNumber"`
	ComplianceOptions []string  `json:"complianceOptions"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// Compliance is a tracked regulatory obligation with a due date.
type Compliance struct {
	ID          string           `json:"id"`
	UserID      string           `json:"userId"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	DueDate     time.Time        `json:"dueDate"`
	Status      ComplianceStatus `json:"status"`
	Type        string           `json:"type"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// FilingData carries the amounts collected by the filing wizard. Values stay
// strings end to end; the wizard coerces them to numbers only for derived
// totals.
type FilingData struct {
	Sales     string `json:"sales,omitempty"`
	Tax       string `json:"tax,omitempty"`
	ITC       string `json:"itc,omitempty"`
	ChallanID string `json:"challanId,omitempty"`
}

// Document is a name/url pair. Upload is mocked; no bytes are ever stored.
type Document struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Filing is one compliance submission. Duplicates for the same
// (user, type, period) are permitted.
type Filing struct {
	ID          string       `json:"id"`
	UserID      string       `json:"userId"`
	FilingType  string       `json:"filingType"`
	Period      string       `json:"period"`
	Status      FilingStatus `json:"status"`
	Data        FilingData   `json:"data"`
	Documents   []Document   `json:"documents"`
	SubmittedAt *time.Time   `json:"submittedAt,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
}

type Conversation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"timestamp"`
}
