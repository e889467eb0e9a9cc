package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AboutMe holds the owner's biography. The application keeps at most one row.
type AboutMe struct {
	ID         uuid.UUID                   `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Content    string                      `json:"content" db:"content" gorm:"type:text;not null"`
	Skills     datatypes.JSONSlice[string] `json:"skills" db:"skills"`
	Experience string                      `json:"experience" db:"experience" gorm:"type:text"`
	Education  string                      `json:"education" db:"education" gorm:"type:text"`
	CreatedAt  time.Time                   `json:"-" db:"created_at" gorm:"<-:create"`
	UpdatedAt  time.Time                   `json:"updated_at" db:"updated_at"`
}

func (AboutMe) TableName() string {
	return "about_me"
}

func (a *AboutMe) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// GitHubRepo is one row of the mirrored repository list. The table is replaced on every sync.
type GitHubRepo struct {
	ID          uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Name        string    `json:"name" db:"name" gorm:"type:varchar(200);not null"`
	Description string    `json:"description" db:"description" gorm:"type:text"`
	URL         string    `json:"url" db:"url" gorm:"type:varchar(300);not null"`
	Language    string    `json:"language" db:"language" gorm:"type:varchar(100)"`
	Stars       int       `json:"stars" db:"stars" gorm:"not null;default:0"`
	Forks       int       `json:"forks" db:"forks" gorm:"not null;default:0"`
	IsDisplayed bool      `json:"is_displayed" db:"is_displayed" gorm:"not null;default:true"`
	LastUpdated time.Time `json:"last_updated" db:"last_updated" gorm:"autoUpdateTime"`
}

func (GitHubRepo) TableName() string {
	return "github_repos"
}

func (r *GitHubRepo) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// All lists every persisted model in migration order.
func All() []any {
	return []any{
		&User{},
		&Session{},
		&Project{},
		&Achievement{},
		&Comment{},
		&Like{},
		&AboutMe{},
		&GitHubRepo{},
	}
}
