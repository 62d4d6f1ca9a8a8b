package store

import (
	"sort"
	"sync"

	"surefile/pkg/domain"
)

// MemoryStore keeps all records in-process. It backs tests and the
// database-less dev mode.
type MemoryStore struct {
	mu          sync.RWMutex
	users       map[string]domain.User
	email       map[string]string          // email -> user ID
	businesses  map[string]domain.Business // key: user ID
	compliances map[string]domain.Compliance
	filings     map[string]domain.Filing
	filingOrder []string
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:       make(map[string]domain.User),
		email:       make(map[string]string),
		businesses:  make(map[string]domain.Business),
		compliances: make(map[string]domain.Compliance),
		filings:     make(map[string]domain.Filing),
	}
}

// SaveUser registers or updates a user.
func (m *MemoryStore) SaveUser(u domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
	m.email[u.Email] = u.ID
	return nil
}

// HasUserEmail checks if email exists.
func (m *MemoryStore) HasUserEmail(email string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.email[email]
	return ok, nil
}

// GetUserByEmail looks up a user by email.
func (m *MemoryStore) GetUserByEmail(email string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id, ok := m.email[email]; ok {
		u, exists := m.users[id]
		return u, exists, nil
	}
	return domain.User{}, false, nil
}

// GetUserByID returns a user by ID.
func (m *MemoryStore) GetUserByID(id string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	return u, ok, nil
}

// SaveBusiness replaces or creates the single profile of a user, keeping the
// original record ID across replacements.
func (m *MemoryStore) SaveBusiness(b domain.Business) (domain.Business, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.businesses[b.UserID]; ok {
		b.ID = existing.ID
		b.CreatedAt = existing.CreatedAt
	}
	m.businesses[b.UserID] = b
	return b, nil
}

// GetBusinessByUser returns the user's profile when present.
func (m *MemoryStore) GetBusinessByUser(userID string) (domain.Business, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.businesses[userID]
	return b, ok, nil
}

// CreateCompliance stores a new compliance item.
func (m *MemoryStore) CreateCompliance(c domain.Compliance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.compliances[c.ID] = c
	return nil
}

// GetCompliance retrieves one compliance item.
func (m *MemoryStore) GetCompliance(id string) (domain.Compliance, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.compliances[id]
	return c, ok, nil
}

// ListCompliancesByUser returns items sorted by ascending due date.
func (m *MemoryStore) ListCompliancesByUser(userID string) ([]domain.Compliance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	items := make([]domain.Compliance, 0)
	for _, c := range m.compliances {
		if c.UserID == userID {
			items = append(items, c)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].DueDate.Before(items[j].DueDate)
	})
	return items, nil
}

// SetComplianceStatus updates the status of one item.
func (m *MemoryStore) SetComplianceStatus(id string, status domain.ComplianceStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.compliances[id]
	if !ok {
		return nil
	}
	c.Status = status
	m.compliances[id] = c
	return nil
}

// CreateFiling stores a new filing; duplicates per period are permitted.
func (m *MemoryStore) CreateFiling(f domain.Filing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filings[f.ID] = f
	m.filingOrder = append(m.filingOrder, f.ID)
	return nil
}

// ListFilingsByUser returns filings sorted by descending creation time.
// Insertion order breaks ties so results stay stable within one timestamp.
func (m *MemoryStore) ListFilingsByUser(userID string) ([]domain.Filing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	items := make([]domain.Filing, 0)
	for i := len(m.filingOrder) - 1; i >= 0; i-- {
		f, ok := m.filings[m.filingOrder[i]]
		if ok && f.UserID == userID {
			items = append(items, f)
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}
