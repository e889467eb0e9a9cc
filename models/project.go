package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Project represents a portfolio project with its publication flags
type Project struct {
	ID           uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Title        string    `json:"title" db:"title" gorm:"type:varchar(200);not null"`
	Description  string    `json:"description" db:"description" gorm:"type:text;not null"`
	Content      string    `json:"content" db:"content" gorm:"type:text"`
	ImageURL     *string   `json:"image_url,omitempty" db:"image_url" gorm:"type:varchar(300)"`
	DemoURL      string    `json:"demo_url" db:"demo_url" gorm:"type:varchar(300)"`
	GithubURL    string    `json:"github_url" db:"github_url" gorm:"type:varchar(300)"`
	Technologies string    `json:"technologies" db:"technologies" gorm:"type:varchar(500)"`
	Category     string    `json:"category" db:"category" gorm:"type:varchar(100);index:idx_project_category"`
	IsPublished  bool      `json:"is_published" db:"is_published" gorm:"not null;default:false;index:idx_project_published"`
	IsFeatured   bool      `json:"is_featured" db:"is_featured" gorm:"not null;default:false"`
	CreatedAt    time.Time `json:"created_at" db:"created_at" gorm:"<-:create"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`

	// Live counts, filled by the repository read queries
	LikeCount    int64 `json:"like_count" gorm:"->;-:migration"`
	CommentCount int64 `json:"comment_count" gorm:"->;-:migration"`

	Comments []Comment `json:"-" gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE"`
	Likes    []Like    `json:"-" gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE"`
}

func (p *Project) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TechnologyList splits the comma-joined technologies column.
func (p Project) TechnologyList() []string {
	return SplitTags(p.Technologies)
}

// SplitTags splits a comma-joined tag string, dropping blanks.
func SplitTags(joined string) []string {
	var tags []string
	for _, part := range strings.Split(joined, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// JoinTags is the inverse of SplitTags.
func JoinTags(tags []string) string {
	cleaned := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			cleaned = append(cleaned, tag)
		}
	}
	return strings.Join(cleaned, ", ")
}
