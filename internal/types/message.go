package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"
)

// Message rows are append-only; nothing in the backend edits one after
// creation.
type Message struct {
	ID             uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID         `gorm:"type:uuid;not null;index:idx_message_user_created,priority:1" json:"user_id"`
	ConversationID uuid.UUID         `gorm:"type:uuid;not null;index" json:"conversation_id"`
	Role           string            `gorm:"size:16;not null" json:"role"`
	Content        string            `gorm:"type:text;not null" json:"content"`
	Meta           datatypes.JSONMap `gorm:"column:meta" json:"meta,omitempty"`
	CreatedAt      time.Time         `gorm:"not null;index:idx_message_user_created,priority:2" json:"created_at"`
}

func (Message) TableName() string { return "messages" }
