package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Achievement is a certification, award or similar milestone.
type Achievement struct {
	ID             uuid.UUID       `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Title          string          `json:"title" db:"title" gorm:"type:varchar(200);not null"`
	Description    string          `json:"description" db:"description" gorm:"type:text;not null"`
	DateAchieved   *datatypes.Date `json:"-" db:"date_achieved" gorm:"index:idx_achievement_date"`
	Category       string          `json:"category" db:"category" gorm:"type:varchar(100)"`
	ImageURL       *string         `json:"image_url,omitempty" db:"image_url" gorm:"type:varchar(300)"`
	CertificateURL string          `json:"certificate_url" db:"certificate_url" gorm:"type:varchar(300)"`
	IsPublished    bool            `json:"is_published" db:"is_published" gorm:"not null;default:false"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at" gorm:"<-:create"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

func (a *Achievement) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// AchievedOn returns the achievement date formatted as YYYY-MM-DD, or "" when unset.
func (a Achievement) AchievedOn() string {
	if a.DateAchieved == nil {
		return ""
	}
	return time.Time(*a.DateAchieved).Format(DateLayout)
}

// MarshalJSON renders date_achieved as a plain calendar date.
func (a Achievement) MarshalJSON() ([]byte, error) {
	type plain Achievement
	return json.Marshal(struct {
		plain
		DateAchieved string `json:"date_achieved,omitempty"`
	}{plain(a), a.AchievedOn()})
}

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"
