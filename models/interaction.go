package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment is a visitor comment on a project
type Comment struct {
	ID        uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Content   string    `json:"content" db:"content" gorm:"type:text;not null"`
	UserID    uuid.UUID `json:"user_id" db:"user_id" gorm:"type:uuid;not null;index:idx_comment_user_id"`
	ProjectID uuid.UUID `json:"project_id" db:"project_id" gorm:"type:uuid;not null;index:idx_comment_project_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	User *User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
}

func (c *Comment) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Like records that a user liked a project. A user likes a project at most once.
type Like struct {
	ID        uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	UserID    uuid.UUID `json:"user_id" db:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_like_user_project"`
	ProjectID uuid.UUID `json:"project_id" db:"project_id" gorm:"type:uuid;not null;uniqueIndex:idx_like_user_project;index:idx_like_project_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	User *User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
}

func (l *Like) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
