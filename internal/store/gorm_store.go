package store

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
	"surefile/pkg/domain"
)

// GormStore implements Store and ConversationStore using GORM.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations. driver is "postgres"
// or "sqlite".
func NewGormStore(driver, dsn string) (*GormStore, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unknown database driver: %q", driver)
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(
		&UserModel{},
		&BusinessModel{},
		&ComplianceModel{},
		&FilingModel{},
		&ConversationModel{},
		&MessageModel{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// SaveUser registers or updates a user.
func (s *GormStore) SaveUser(u domain.User) error {
	model := userToModel(u)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "email", "password_hash", "updated_at"}),
	}).Create(&model).Error
}

// HasUserEmail checks if email exists.
func (s *GormStore) HasUserEmail(email string) (bool, error) {
	var count int64
	if err := s.db.Model(&UserModel{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetUserByEmail looks up a user by email.
func (s *GormStore) GetUserByEmail(email string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.Where("email = ?", email).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// GetUserByID returns a user by ID.
func (s *GormStore) GetUserByID(id string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// SaveBusiness replaces or creates the single profile of a user. The stored
// row keeps its original ID across replacements so uniqueness on user_id
// holds.
func (s *GormStore) SaveBusiness(b domain.Business) (domain.Business, error) {
	var existing BusinessModel
	err := s.db.Where("user_id = ?", b.UserID).First(&existing).Error
	switch {
	case err == nil:
		b.ID = existing.ID
		b.CreatedAt = existing.CreatedAt
		model := businessToModel(b)
		if err := s.db.Model(&BusinessModel{}).Where("id = ?", existing.ID).Updates(map[string]any{
			"business_name":      model.BusinessName,
			"business_type":      model.BusinessType,
			"category":           model.Category,
			"turnover":           model.Turnover,
			"gst_number":         model.GSTNumber,
			"compliance_options": model.ComplianceOptions,
			"updated_at":         model.UpdatedAt,
		}).Error; err != nil {
			return domain.Business{}, err
		}
		return b, nil
	case err == gorm.ErrRecordNotFound:
		model := businessToModel(b)
		if err := s.db.Create(&model).Error; err != nil {
			return domain.Business{}, err
		}
		return b, nil
	default:
		return domain.Business{}, err
	}
}

// GetBusinessByUser returns the user's profile when present.
func (s *GormStore) GetBusinessByUser(userID string) (domain.Business, bool, error) {
	var model BusinessModel
	if err := s.db.Where("user_id = ?", userID).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Business{}, false, nil
		}
		return domain.Business{}, false, err
	}
	return businessFromModel(model), true, nil
}

// CreateCompliance stores a new compliance item.
func (s *GormStore) CreateCompliance(c domain.Compliance) error {
	model := complianceToModel(c)
	return s.db.Create(&model).Error
}

// GetCompliance retrieves one compliance item.
func (s *GormStore) GetCompliance(id string) (domain.Compliance, bool, error) {
	var model ComplianceModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Compliance{}, false, nil
		}
		return domain.Compliance{}, false, err
	}
	return complianceFromModel(model), true, nil
}

// ListCompliancesByUser returns items sorted by ascending due date.
func (s *GormStore) ListCompliancesByUser(userID string) ([]domain.Compliance, error) {
	var models []ComplianceModel
	if err := s.db.Where("user_id = ?", userID).Order("due_date ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	items := make([]domain.Compliance, 0, len(models))
	for _, m := range models {
		items = append(items, complianceFromModel(m))
	}
	return items, nil
}

// SetComplianceStatus updates the status of one item.
func (s *GormStore) SetComplianceStatus(id string, status domain.ComplianceStatus) error {
	return s.db.Model(&ComplianceModel{}).
		Where("id = ?", id).
		Update("status", string(status)).Error
}

// CreateFiling stores a new filing; duplicates per period are permitted.
func (s *GormStore) CreateFiling(f domain.Filing) error {
	model, err := filingToModel(f)
	if err != nil {
		return err
	}
	return s.db.Create(&model).Error
}

// ListFilingsByUser returns filings sorted by descending creation time.
func (s *GormStore) ListFilingsByUser(userID string) ([]domain.Filing, error) {
	var models []FilingModel
	if err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	items := make([]domain.Filing, 0, len(models))
	for _, m := range models {
		items = append(items, filingFromModel(m))
	}
	return items, nil
}

// CreateConversation creates a new conversation record.
func (s *GormStore) CreateConversation(c domain.Conversation) error {
	model := conversationToModel(c)
	return s.db.Create(&model).Error
}

// GetConversation returns one conversation by ID.
func (s *GormStore) GetConversation(id string) (domain.Conversation, bool, error) {
	var model ConversationModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Conversation{}, false, nil
		}
		return domain.Conversation{}, false, err
	}
	return conversationFromModel(model), true, nil
}

// GetConversationByUser returns the user's single chat thread when present.
func (s *GormStore) GetConversationByUser(userID string) (domain.Conversation, bool, error) {
	var model ConversationModel
	if err := s.db.Where("user_id = ?", userID).Order("created_at ASC").First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Conversation{}, false, nil
		}
		return domain.Conversation{}, false, err
	}
	return conversationFromModel(model), true, nil
}

// AppendMessage records a conversation message.
func (s *GormStore) AppendMessage(conversationID string, msg domain.Message) error {
	model := messageToModel(msg)
	model.ConversationID = conversationID
	if err := s.db.Create(&model).Error; err != nil {
		return err
	}
	return s.db.Model(&ConversationModel{}).
		Where("id = ?", conversationID).
		Update("updated_at", time.Now().UTC()).Error
}

// ListMessages returns messages in chronological order. A positive limit
// keeps only the newest messages, so the tail is fetched descending and
// reversed back into append order.
func (s *GormStore) ListMessages(conversationID string, limit int) ([]domain.Message, error) {
	query := s.db.Where("conversation_id = ?", conversationID)
	if limit > 0 {
		query = query.Order("created_at DESC").Limit(limit)
	} else {
		query = query.Order("created_at ASC")
	}
	var models []MessageModel
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	msgs := make([]domain.Message, 0, len(models))
	for _, model := range models {
		msgs = append(msgs, messageFromModel(model))
	}
	if limit > 0 {
		for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
			msgs[i], msgs[j] = msgs[j], msgs[i]
		}
	}
	return msgs, nil
}

func userToModel(u domain.User) UserModel {
	return UserModel{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func userFromModel(m UserModel) domain.User {
	return domain.User{
		ID:           m.ID,
		Name:         m.Name,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func businessToModel(b domain.Business) BusinessModel {
	options, _ := json.Marshal(b.ComplianceOptions)
	return BusinessModel{
		ID:                b.ID,
		UserID:            b.UserID,
		BusinessName:      b.BusinessName,
		BusinessType:      b.BusinessType,
		Category:          b.Category,
		Turnover:          b.Turnover,
		GSTNumber:         b.GSTNumber,
		ComplianceOptions: options,
		CreatedAt:         b.CreatedAt,
		UpdatedAt:         b.UpdatedAt,
	}
}

func businessFromModel(m BusinessModel) domain.Business {
	var options []string
	if len(m.ComplianceOptions) > 0 {
		_ = json.Unmarshal(m.ComplianceOptions, &options)
	}
	return domain.Business{
		ID:                m.ID,
		UserID:            m.UserID,
		BusinessName:      m.BusinessName,
		BusinessType:      m.BusinessType,
		Category:          m.Category,
		Turnover:          m.Turnover,
		GSTNumber:         m.GSTNumber,
		ComplianceOptions: options,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func complianceToModel(c domain.Compliance) ComplianceModel {
	return ComplianceModel{
		ID:          c.ID,
		UserID:      c.UserID,
		Title:       c.Title,
		Description: c.Description,
		DueDate:     c.DueDate,
		Status:      string(c.Status),
		Type:        c.Type,
		CreatedAt:   c.CreatedAt,
	}
}

func complianceFromModel(m ComplianceModel) domain.Compliance {
	status := domain.ComplianceStatus(m.Status)
	if status == "" {
		status = domain.CompliancePending
	}
	return domain.Compliance{
		ID:          m.ID,
		UserID:      m.UserID,
		Title:       m.Title,
		Description: m.Description,
		DueDate:     m.DueDate,
		Status:      status,
		Type:        m.Type,
		CreatedAt:   m.CreatedAt,
	}
}

func filingToModel(f domain.Filing) (FilingModel, error) {
	data, err := json.Marshal(f.Data)
	if err != nil {
		return FilingModel{}, err
	}
	docs, err := json.Marshal(f.Documents)
	if err != nil {
		return FilingModel{}, err
	}
	return FilingModel{
		ID:          f.ID,
		UserID:      f.UserID,
		FilingType:  f.FilingType,
		Period:      f.Period,
		Status:      string(f.Status),
		Data:        data,
		Documents:   docs,
		SubmittedAt: f.SubmittedAt,
		CreatedAt:   f.CreatedAt,
	}, nil
}

func filingFromModel(m FilingModel) domain.Filing {
	var data domain.FilingData
	if len(m.Data) > 0 {
		_ = json.Unmarshal(m.Data, &data)
	}
	var docs []domain.Document
	if len(m.Documents) > 0 {
		_ = json.Unmarshal(m.Documents, &docs)
	}
	status := domain.FilingStatus(m.Status)
	if status == "" {
		status = domain.FilingDraft
	}
	return domain.Filing{
		ID:          m.ID,
		UserID:      m.UserID,
		FilingType:  m.FilingType,
		Period:      m.Period,
		Status:      status,
		Data:        data,
		Documents:   docs,
		SubmittedAt: m.SubmittedAt,
		CreatedAt:   m.CreatedAt,
	}
}

func conversationToModel(c domain.Conversation) ConversationModel {
	return ConversationModel{
		ID:        c.ID,
		UserID:    c.UserID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func conversationFromModel(m ConversationModel) domain.Conversation {
	return domain.Conversation{
		ID:        m.ID,
		UserID:    m.UserID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func messageToModel(msg domain.Message) MessageModel {
	return MessageModel{
		ID:             msg.ID,
		ConversationID: msg.ConversationID,
		Role:           msg.Role,
		Content:        msg.Content,
		CreatedAt:      msg.CreatedAt,
	}
}

func messageFromModel(m MessageModel) domain.Message {
	return domain.Message{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		Role:           m.Role,
		Content:        m.Content,
		CreatedAt:      m.CreatedAt,
	}
}
