package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const DefaultConversationTitle = "默认对话"

type Conversation struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID         `gorm:"type:uuid;not null;index" json:"user_id"`
	Title     string            `gorm:"size:200;not null;default:''" json:"title"`
	Meta      datatypes.JSONMap `gorm:"column:meta" json:"meta,omitempty"`
	CreatedAt time.Time         `gorm:"not null" json:"created_at"`
	// UpdatedAt orders the conversation list; the chat service touches it
	// after every successful turn.
	UpdatedAt time.Time `gorm:"not null;index" json:"updated_at"`
}

func (Conversation) TableName() string { return "conversations" }
