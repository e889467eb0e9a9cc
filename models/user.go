package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an account on the site. Exactly one user carries IsOwner in normal operation.
type User struct {
	ID           uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Username     string    `json:"username" db:"username" gorm:"type:varchar(64);not null;uniqueIndex:idx_user_username"`
	Email        string    `json:"email" db:"email" gorm:"type:varchar(120);not null;uniqueIndex:idx_user_email"`
	PasswordHash string    `json:"-" db:"password_hash" gorm:"type:varchar(256);not null"`
	FullName     string    `json:"full_name" db:"full_name" gorm:"type:varchar(100)"`
	Bio          string    `json:"bio" db:"bio" gorm:"type:text"`
	ProfileImage *string   `json:"profile_image,omitempty" db:"profile_image" gorm:"type:varchar(300)"`
	LinkedinURL  string    `json:"linkedin_url" db:"linkedin_url" gorm:"type:varchar(300)"`
	GithubURL    string    `json:"github_url" db:"github_url" gorm:"type:varchar(300)"`
	IsOwner      bool      `json:"is_owner" db:"is_owner" gorm:"not null;default:false;index"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Session backs a signed session token. Deleting the row ends the session.
type Session struct {
	ID        uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	UserID    uuid.UUID `json:"user_id" db:"user_id" gorm:"type:uuid;not null;index:idx_session_user_id"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at" gorm:"not null"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	User *User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
}

func (s *Session) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Expired reports whether the session is no longer valid at t.
func (s Session) Expired(t time.Time) bool {
	return !t.Before(s.ExpiresAt)
}
