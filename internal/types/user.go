package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Preferences is the free-form user preference document. Only the three
// known keys are modeled; unknown keys from older clients are dropped on
// the next write.
type Preferences struct {
	ReplyTone         string `json:"replyTone,omitempty"`
	AnalysisFrequency string `json:"analysisFrequency,omitempty"`
	LanguageStyle     string `json:"languageStyle,omitempty"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		ReplyTone:         "gentle",
		AnalysisFrequency: "weekly",
		LanguageStyle:     "concise",
	}
}

type User struct {
	ID           uuid.UUID                          `gorm:"type:uuid;primaryKey" json:"id"`
	OpenID       string                             `gorm:"column:openid;size:128;uniqueIndex;not null" json:"openid"`
	Nickname     string                             `gorm:"size:100" json:"nickname,omitempty"`
	Preferences  datatypes.JSONType[Preferences]    `gorm:"column:preferences" json:"preferences"`
	LastActiveAt *time.Time                         `gorm:"column:last_active_at" json:"last_active_at,omitempty"`
	CreatedAt    time.Time                          `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time                          `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string { return "users" }
