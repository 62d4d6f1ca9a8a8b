package store

import (
	"time"

	"gorm.io/datatypes"
)

// GORM models used for persistence.
type UserModel struct {
	ID           string `gorm:"primaryKey"`
	Name         string
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time
}

type BusinessModel struct {
	ID                string `gorm:"primaryKey"`
	UserID            string `gorm:"uniqueIndex;not null"`
	BusinessName      string `gorm:"not null"`
	BusinessType      string
	Category          string
	Turnover          string
	GSTNumber         string
	ComplianceOptions datatypes.JSON
	CreatedAt         time.Time `gorm:"not null"`
	UpdatedAt         time.Time
}

type ComplianceModel struct {
	ID          string `gorm:"primaryKey"`
	UserID      string `gorm:"not null;index"`
	Title       string `gorm:"not null"`
	Description string
	DueDate     time.Time `gorm:"not null;index"`
	Status      string    `gorm:"not null"`
	Type        string
	CreatedAt   time.Time `gorm:"not null"`
}

type FilingModel struct {
	ID          string `gorm:"primaryKey"`
	UserID      string `gorm:"not null;index"`
	FilingType  string `gorm:"not null"`
	Period      string `gorm:"not null"`
	Status      string `gorm:"not null"`
	Data        datatypes.JSON
	Documents   datatypes.JSON
	SubmittedAt *time.Time
	CreatedAt   time.Time `gorm:"not null;index"`
}

type ConversationModel struct {
	ID        string    `gorm:"primaryKey"`
	UserID    string    `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time
}

type MessageModel struct {
	ID             string    `gorm:"primaryKey"`
	ConversationID string    `gorm:"not null;index"`
	Role           string    `gorm:"not null"`
	Content        string    `gorm:"not null"`
	CreatedAt      time.Time `gorm:"not null;index"`
}
