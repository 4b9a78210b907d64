package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
	PeriodCustom  = "custom"
)

// ReportQuestion is one recurring theme the analysis found in the user's
// messages.
type ReportQuestion struct {
	Topic       string `json:"topic"`
	Description string `json:"description"`
}

// ReportSummary is the structured analysis result. The four array fields
// are required; Title is derived after the analysis succeeds.
type ReportSummary struct {
	Questions    []ReportQuestion `json:"questions"`
	Strengths    []string         `json:"strengths"`
	Improvements []string         `json:"improvements"`
	KeepDoing    []string         `json:"keepDoing"`
	Title        string           `json:"title,omitempty"`
}

// AnalysisReport covers the half-open interval [StartAt, EndAt). Immutable
// once created except for deletion.
type AnalysisReport struct {
	ID           uuid.UUID                         `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID                         `gorm:"type:uuid;not null;index:idx_report_user_created,priority:1" json:"user_id"`
	PeriodType   string                            `gorm:"size:16;not null;default:'weekly'" json:"period_type"`
	StartAt      time.Time                         `gorm:"not null" json:"start_at"`
	EndAt        time.Time                         `gorm:"not null" json:"end_at"`
	Summary      datatypes.JSONType[ReportSummary] `gorm:"column:summary" json:"summary"`
	RawModelInfo datatypes.JSONMap                 `gorm:"column:raw_model_info" json:"raw_model_info,omitempty"`
	CreatedAt    time.Time                         `gorm:"not null;index:idx_report_user_created,priority:2" json:"created_at"`
}

func (AnalysisReport) TableName() string { return "analysis_reports" }
