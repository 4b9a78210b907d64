package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/dailyfocus/dailyfocus-backend/internal/logger"
	"github.com/dailyfocus/dailyfocus-backend/internal/repos"
	"github.com/dailyfocus/dailyfocus-backend/internal/types"
)

type GenerateReportInput struct {
	PeriodType string
	StartAt    *time.Time
	EndAt      *time.Time
}

type GenerateReportOutput struct {
	Report       *types.AnalysisReport
	MessageCount int
}

type ReportPage struct {
	Reports    []*types.AnalysisReport
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// AnalysisService batches a time window of user messages into one
// structured analysis report and feeds the result into the profile.
type AnalysisService interface {
	GenerateReport(ctx context.Context, userID uuid.UUID, in GenerateReportInput) (*GenerateReportOutput, error)
	GetReport(ctx context.Context, userID, reportID uuid.UUID) (*types.AnalysisReport, error)
	ListReports(ctx context.Context, userID uuid.UUID, page, limit int) (*ReportPage, error)
	DeleteReport(ctx context.Context, userID, reportID uuid.UUID) error
}

type analysisService struct {
	db         *gorm.DB
	log        *logger.Logger
	messages   repos.MessageRepo
	reports    repos.AnalysisReportRepo
	profiles   ProfileService
	prompts    *PromptBuilder
	completion CompletionClient
}

func NewAnalysisService(
	db *gorm.DB,
	log *logger.Logger,
	messages repos.MessageRepo,
	reports repos.AnalysisReportRepo,
	profiles ProfileService,
	prompts *PromptBuilder,
	completion CompletionClient,
) AnalysisService {
	return &analysisService{
		db:         db,
		log:        log.With("service", "AnalysisService"),
		messages:   messages,
		reports:    reports,
		profiles:   profiles,
		prompts:    prompts,
		completion: completion,
	}
}

func (s *analysisService) GenerateReport(ctx context.Context, userID uuid.UUID, in GenerateReportInput) (*GenerateReportOutput, error) {
	periodType := in.PeriodType
	if periodType == "" {
		periodType = types.PeriodWeekly
	}

	startAt, endAt, err := resolvePeriod(periodType, in.StartAt, in.EndAt, time.Now())
	if err != nil {
		return nil, err
	}

	messages, err := s.messages.GetUserMessagesInRange(ctx, nil, userID, startAt, endAt)
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		// No oracle call is made for an empty window.
		return nil, ErrNoMessagesInRange
	}

	transcript := buildTranscript(messages)

	result := s.completion.Complete(ctx, []ChatMessage{
		{Role: "user", Content: s.prompts.BuildAnalysisPrompt(transcript)},
	}, CompletionOptions{Temperature: 0.3, MaxTokens: 3000})
	if !result.Success {
		return nil, &CompletionError{Message: result.Error}
	}

	summary, err := parseAnalysisSummary(result.Content)
	if err != nil {
		s.log.Error("analysis response unparseable", "error", err, "content", result.Content)
		return nil, fmt.Errorf("分析结果格式错误: %w", err)
	}

	summary.Title = s.deriveTitle(ctx, summary, periodType, endAt)

	report := &types.AnalysisReport{
		ID:         uuid.New(),
		UserID:     userID,
		PeriodType: periodType,
		StartAt:    startAt,
		EndAt:      endAt,
		Summary:    datatypes.NewJSONType(summary),
		RawModelInfo: datatypes.JSONMap{
			"model":         result.Model,
			"usage":         result.Usage,
			"promptVersion": "analysis-v1",
		},
	}
	if _, err := s.reports.Create(ctx, nil, report); err != nil {
		return nil, err
	}

	// The report is the caller's answer; profile updates ride along and
	// must never fail the response.
	if err := s.profiles.ApplyAnalysis(ctx, userID, summary); err != nil {
		s.log.Error("profile update failed after report", "user_id", userID, "error", err)
	}

	return &GenerateReportOutput{
		Report:       report,
		MessageCount: len(messages),
	}, nil
}

// resolvePeriod derives the half-open [start, end) analysis window.
func resolvePeriod(periodType string, startAt, endAt *time.Time, now time.Time) (time.Time, time.Time, error) {
	if startAt != nil && endAt != nil {
		return *startAt, *endAt, nil
	}

	switch periodType {
	case types.PeriodWeekly:
		return now.AddDate(0, 0, -7), now, nil
	case types.PeriodMonthly:
		return now.AddDate(0, 0, -30), now, nil
	default:
		return time.Time{}, time.Time{}, ErrMissingPeriodBounds
	}
}

func buildTranscript(messages []*types.Message) string {
	lines := make([]string, 0, len(messages))
	for _, msg := range messages {
		lines = append(lines, fmt.Sprintf("[%s] %s", msg.CreatedAt.Format("2006-01-02 15:04:05"), msg.Content))
	}
	return strings.Join(lines, "\n\n")
}

// parseAnalysisSummary is the two-stage parse: strict JSON first, then
// the first balanced {...} block inside the free text. All four top-level
// keys must be present; anything less is fatal for the call.
func parseAnalysisSummary(content string) (types.ReportSummary, error) {
	trimmed := strings.TrimSpace(content)

	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal([]byte(trimmed), &raw); err != nil {
		block, ok := extractJSONObject(trimmed)
		if !ok {
			return types.ReportSummary{}, fmt.Errorf("no JSON object found in response")
		}
		raw = map[string]json.RawMessage{}
		if err := json.Unmarshal([]byte(block), &raw); err != nil {
			return types.ReportSummary{}, fmt.Errorf("extracted block is not valid JSON: %w", err)
		}
		trimmed = block
	}

	for _, key := range []string{"questions", "strengths", "improvements", "keepDoing"} {
		if _, ok := raw[key]; !ok {
			return types.ReportSummary{}, fmt.Errorf("missing required field %q", key)
		}
	}

	var summary types.ReportSummary
	if err := json.Unmarshal([]byte(trimmed), &summary); err != nil {
		return types.ReportSummary{}, fmt.Errorf("summary shape mismatch: %w", err)
	}
	return summary, nil
}

// extractJSONObject finds the first balanced top-level {...} block,
// tracking strings so braces inside values don't confuse the depth count.
func extractJSONObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

// deriveTitle asks the model for a short report title; on any failure it
// falls back to a deterministic date-based one.
func (s *analysisService) deriveTitle(ctx context.Context, summary types.ReportSummary, periodType string, endAt time.Time) string {
	result := s.completion.Complete(ctx, []ChatMessage{
		{Role: "user", Content: s.prompts.BuildTitlePrompt(summary)},
	}, CompletionOptions{Temperature: 0.3, MaxTokens: 60})

	if result.Success {
		title := strings.TrimSpace(result.Content)
		title = strings.Trim(title, "\"'“”‘’「」《》")
		runes := []rune(title)
		if len(runes) > 20 {
			runes = runes[:20]
		}
		if len(runes) > 0 {
			return string(runes)
		}
	} else {
		s.log.Warn("title generation failed, using fallback", "error", result.Error)
	}

	label := "分析报告"
	switch periodType {
	case types.PeriodWeekly:
		label = "周报"
	case types.PeriodMonthly:
		label = "月报"
	}
	return fmt.Sprintf("%s·%s", endAt.Format("01/02"), label)
}

func (s *analysisService) GetReport(ctx context.Context, userID, reportID uuid.UUID) (*types.AnalysisReport, error) {
	report, err := s.reports.GetByIDForUser(ctx, nil, reportID, userID)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, ErrReportNotFound
	}
	return report, nil
}

func (s *analysisService) ListReports(ctx context.Context, userID uuid.UUID, page, limit int) (*ReportPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	reports, total, err := s.reports.ListForUser(ctx, nil, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &ReportPage{
		Reports:    reports,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

func (s *analysisService) DeleteReport(ctx context.Context, userID, reportID uuid.UUID) error {
	report, err := s.reports.GetByIDForUser(ctx, nil, reportID, userID)
	if err != nil {
		return err
	}
	if report == nil {
		return ErrReportNotFound
	}
	return s.reports.FullDeleteByID(ctx, nil, report.ID)
}
