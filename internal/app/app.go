package app

import (
	"fmt"
	"strings"
	"time"

	"surefile/internal/store"
	"surefile/internal/util"
	"surefile/internal/wizard"
	"surefile/pkg/ai"
	"surefile/pkg/auth"
	"surefile/pkg/domain"
)

// Config wires the core application service.
type Config struct {
	Store         store.Store
	Conversations store.ConversationStore
	Sessions      store.SessionStore
	Generator     ai.TextGenerator
	HistoryLimit  int
}

// App implements the compliance backend: credentials, domain records, and
// the chat proxy.
type App struct {
	store         store.Store
	conversations store.ConversationStore
	sessions      store.SessionStore
	generator     ai.TextGenerator
	historyLimit  int
}

// New constructs the application. All dependencies are required except the
// history limit, which defaults to the last 10 turns.
func New(cfg Config) (*App, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("store required")
	}
	if cfg.Conversations == nil {
		return nil, fmt.Errorf("conversation store required")
	}
	if cfg.Sessions == nil {
		return nil, fmt.Errorf("session store required")
	}
	if cfg.Generator == nil {
		return nil, fmt.Errorf("text generator required")
	}
	historyLimit := cfg.HistoryLimit
	if historyLimit <= 0 {
		historyLimit = 10
	}
	return &App{
		store:         cfg.Store,
		conversations: cfg.Conversations,
		sessions:      cfg.Sessions,
		generator:     cfg.Generator,
		historyLimit:  historyLimit,
	}, nil
}

// Register creates a user and issues a session token. Password strength is
// not validated; that matches the product behavior.
func (a *App) Register(name, email, password string) (domain.User, string, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(strings.ToLower(email))
	if name == "" || email == "" || password == "" {
		return domain.User{}, "", ErrNameEmailPasswordNeeded
	}
	exists, err := a.store.HasUserEmail(email)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("check email: %w", err)
	}
	if exists {
		return domain.User{}, "", ErrEmailAlreadyExists
	}
	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("hash password: %w", err)
	}
	now := time.Now().UTC()
	user := domain.User{
		ID:           util.NewID(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := a.store.SaveUser(user); err != nil {
		return domain.User{}, "", fmt.Errorf("save user: %w", err)
	}
	token, err := a.sessions.NewSession(user.ID)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("issue token: %w", err)
	}
	return user, token, nil
}

// Login validates credentials and issues a session token.
func (a *App) Login(email, password string) (domain.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	user, ok, err := a.store.GetUserByEmail(email)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("fetch user: %w", err)
	}
	if !ok {
		return domain.User{}, "", ErrInvalidCredentials
	}
	if !auth.CheckPassword(password, user.PasswordHash) {
		return domain.User{}, "", ErrInvalidCredentials
	}
	token, err := a.sessions.NewSession(user.ID)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("issue token: %w", err)
	}
	return user, token, nil
}

// UserFromToken resolves a user from a session token.
func (a *App) UserFromToken(token string) (domain.User, bool) {
	uid, ok, err := a.sessions.GetUserIDByToken(token)
	if err != nil || !ok {
		return domain.User{}, false
	}
	user, found, err := a.store.GetUserByID(uid)
	if err != nil || !found {
		return domain.User{}, false
	}
	return user, true
}

// GetBusiness returns the user's business profile.
func (a *App) GetBusiness(userID string) (domain.Business, error) {
	b, ok, err := a.store.GetBusinessByUser(userID)
	if err != nil {
		return domain.Business{}, fmt.Errorf("fetch business: %w", err)
	}
	if !ok {
		return domain.Business{}, ErrBusinessNotFound
	}
	return b, nil
}

// UpsertBusiness fully replaces (or creates) the user's profile. Fields not
// present in the input are cleared, never merged.
func (a *App) UpsertBusiness(userID string, input domain.Business) (domain.Business, error) {
	if strings.TrimSpace(input.BusinessName) == "" {
		return domain.Business{}, ErrBusinessNameRequired
	}
	now := time.Now().UTC()
	b := domain.Business{
		ID:                util.NewID(),
		UserID:            userID,
		BusinessName:      strings.TrimSpace(input.BusinessName),
		BusinessType:      input.BusinessType,
		Category:          input.Category,
		Turnover:          input.Turnover,
		GSTNumber:         input.GSTNumber,
		ComplianceOptions: input.ComplianceOptions,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	saved, err := a.store.SaveBusiness(b)
	if err != nil {
		return domain.Business{}, fmt.Errorf("save business: %w", err)
	}
	return saved, nil
}

// CreateCompliance stores a new compliance item for the user.
func (a *App) CreateCompliance(userID string, input domain.Compliance) (domain.Compliance, error) {
	if strings.TrimSpace(input.Title) == "" || input.DueDate.IsZero() {
		return domain.Compliance{}, ErrComplianceFieldsRequired
	}
	status := input.Status
	if status == "" {
		status = domain.CompliancePending
	}
	if !validComplianceStatus(status) {
		return domain.Compliance{}, ErrInvalidComplianceStatus
	}
	c := domain.Compliance{
		ID:          util.NewID(),
		UserID:      userID,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		DueDate:     input.DueDate,
		Status:      status,
		Type:        input.Type,
		CreatedAt:   time.Now().UTC(),
	}
	if err := a.store.CreateCompliance(c); err != nil {
		return domain.Compliance{}, fmt.Errorf("create compliance: %w", err)
	}
	return c, nil
}

// ListCompliances returns the user's items sorted by ascending due date.
func (a *App) ListCompliances(userID string) ([]domain.Compliance, error) {
	items, err := a.store.ListCompliancesByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("list compliances: %w", err)
	}
	return items, nil
}

// UpdateComplianceStatus moves an item through Pending/Completed/Overdue.
func (a *App) UpdateComplianceStatus(userID, id string, status domain.ComplianceStatus) (domain.Compliance, error) {
	if !validComplianceStatus(status) {
		return domain.Compliance{}, ErrInvalidComplianceStatus
	}
	c, ok, err := a.store.GetCompliance(id)
	if err != nil {
		return domain.Compliance{}, fmt.Errorf("fetch compliance: %w", err)
	}
	if !ok || c.UserID != userID {
		return domain.Compliance{}, ErrComplianceNotFound
	}
	if err := a.store.SetComplianceStatus(id, status); err != nil {
		return domain.Compliance{}, fmt.Errorf("update compliance: %w", err)
	}
	c.Status = status
	return c, nil
}

// CreateFiling stores a filing. Drafts are stored as-is; submitted filings
// are validated against the wizard schema for their filing type so the
// client-side rules are enforced again here.
func (a *App) CreateFiling(userID string, input domain.Filing) (domain.Filing, error) {
	if strings.TrimSpace(input.FilingType) == "" || strings.TrimSpace(input.Period) == "" {
		return domain.Filing{}, ErrFilingFieldsRequired
	}
	status := input.Status
	if status == "" {
		status = domain.FilingDraft
	}
	if !validFilingStatus(status) {
		return domain.Filing{}, ErrInvalidFilingStatus
	}
	now := time.Now().UTC()
	f := domain.Filing{
		ID:         util.NewID(),
		UserID:     userID,
		FilingType: strings.TrimSpace(input.FilingType),
		Period:     strings.TrimSpace(input.Period),
		Status:     status,
		Data:       input.Data,
		Documents:  input.Documents,
		CreatedAt:  now,
	}
	if status != domain.FilingDraft {
		// GST returns carry every required form field in the payload, so
		// their schema is re-checked here. Other filing types collect
		// profile fields in the client wizard that the API never sees.
		if strings.HasPrefix(strings.ToUpper(f.FilingType), "GSTR") {
			form := wizard.FormForFilingType(f.FilingType)
			if err := form.Validate(filingValues(f)); err != nil {
				return domain.Filing{}, err
			}
		}
		submitted := now
		if input.SubmittedAt != nil {
			submitted = input.SubmittedAt.UTC()
		}
		f.SubmittedAt = &submitted
	}
	if err := a.store.CreateFiling(f); err != nil {
		return domain.Filing{}, fmt.Errorf("create filing: %w", err)
	}
	return f, nil
}

// ListFilings returns the user's filings, newest first.
func (a *App) ListFilings(userID string) ([]domain.Filing, error) {
	items, err := a.store.ListFilingsByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("list filings: %w", err)
	}
	return items, nil
}

func filingValues(f domain.Filing) map[string]string {
	return map[string]string{
		"period":    f.Period,
		"sales":     f.Data.Sales,
		"tax":       f.Data.Tax,
		"itc":       f.Data.ITC,
		"challanId": f.Data.ChallanID,
	}
}

func validComplianceStatus(s domain.ComplianceStatus) bool {
	switch s {
	case domain.CompliancePending, domain.ComplianceCompleted, domain.ComplianceOverdue:
		return true
	}
	return false
}

func validFilingStatus(s domain.FilingStatus) bool {
	switch s {
	case domain.FilingDraft, domain.FilingSubmitted, domain.FilingPaid:
		return true
	}
	return false
}
