package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	// MaxLongTermPatterns bounds UserProfile.LongTermPatterns; the oldest
	// entry is evicted first.
	MaxLongTermPatterns = 5
	// MaxHistorySnapshots bounds UserProfile.HistorySnapshots.
	MaxHistorySnapshots = 10
)

// TraitScore is one scored trait inside a bucket. Score stays in [0,1] and
// names are unique per bucket.
type TraitScore struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// ProfileTraits holds the three fixed trait buckets.
type ProfileTraits struct {
	Personality []TraitScore `json:"personality"`
	Abilities   []TraitScore `json:"abilities"`
	Values      []TraitScore `json:"values"`
}

// HistorySnapshot records what a single analysis run changed.
type HistorySnapshot struct {
	Date       string `json:"date"`
	KeyChanges string `json:"keyChanges"`
}

// UserProfile is 1:1 with User, created lazily and mutated only by the
// profile service.
type UserProfile struct {
	ID               uuid.UUID                             `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID                             `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Traits           datatypes.JSONType[ProfileTraits]     `gorm:"column:traits" json:"traits"`
	LongTermPatterns datatypes.JSONType[[]string]          `gorm:"column:long_term_patterns" json:"long_term_patterns"`
	HistorySnapshots datatypes.JSONType[[]HistorySnapshot] `gorm:"column:history_snapshots" json:"history_snapshots"`
	CreatedAt        time.Time                             `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time                             `gorm:"not null" json:"updated_at"`
}

func (UserProfile) TableName() string { return "user_profiles" }
