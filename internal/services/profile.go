package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/dailyfocus/dailyfocus-backend/internal/logger"
	"github.com/dailyfocus/dailyfocus-backend/internal/repos"
	"github.com/dailyfocus/dailyfocus-backend/internal/types"
)

const (
	traitSelfReflection = "自我反思能力"
	traitExecution      = "执行力"
	traitPlanning       = "规划能力"

	incSelfReflection = 0.05
	incExecution      = 0.03
	incPlanning       = 0.03
)

type ProfileStats struct {
	TotalMessages int64      `json:"totalMessages"`
	TotalReports  int64      `json:"totalReports"`
	DaysSinceJoin int        `json:"daysSinceJoin"`
	LastMessageAt *time.Time `json:"lastMessageAt"`
}

type ProfileExport struct {
	ExportTime time.Time               `json:"exportTime"`
	User       *types.User             `json:"user"`
	Messages   []*types.Message        `json:"messages"`
	Reports    []*types.AnalysisReport `json:"reports"`
	Profile    *types.UserProfile      `json:"profile"`
}

// ProfileService owns the adaptive user profile: it is the only writer of
// trait scores, long-term patterns and history snapshots.
type ProfileService interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*types.UserProfile, error)
	// ApplyAnalysis folds one analysis summary into the profile using
	// exponential smoothing and bounded FIFO lists.
	ApplyAnalysis(ctx context.Context, userID uuid.UUID, summary types.ReportSummary) error
	UpdatePreferences(ctx context.Context, user *types.User, prefs types.Preferences) (types.Preferences, error)
	Stats(ctx context.Context, user *types.User) (*ProfileStats, error)
	Export(ctx context.Context, userID uuid.UUID) (*ProfileExport, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

type profileService struct {
	db       *gorm.DB
	log      *logger.Logger
	users    repos.UserRepo
	messages repos.MessageRepo
	reports  repos.AnalysisReportRepo
	profiles repos.UserProfileRepo
}

func NewProfileService(
	db *gorm.DB,
	log *logger.Logger,
	users repos.UserRepo,
	messages repos.MessageRepo,
	reports repos.AnalysisReportRepo,
	profiles repos.UserProfileRepo,
) ProfileService {
	return &profileService{
		db:       db,
		log:      log.With("service", "ProfileService"),
		users:    users,
		messages: messages,
		reports:  reports,
		profiles: profiles,
	}
}

func emptyProfile(userID uuid.UUID) *types.UserProfile {
	return &types.UserProfile{
		ID:     uuid.New(),
		UserID: userID,
		Traits: datatypes.NewJSONType(types.ProfileTraits{
			Personality: []types.TraitScore{},
			Abilities:   []types.TraitScore{},
			Values:      []types.TraitScore{},
		}),
		LongTermPatterns: datatypes.NewJSONType([]string{}),
		HistorySnapshots: datatypes.NewJSONType([]types.HistorySnapshot{}),
	}
}

func (s *profileService) GetOrCreate(ctx context.Context, userID uuid.UUID) (*types.UserProfile, error) {
	profile, err := s.profiles.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	if profile != nil {
		return profile, nil
	}
	return s.profiles.Create(ctx, nil, emptyProfile(userID))
}

func (s *profileService) ApplyAnalysis(ctx context.Context, userID uuid.UUID, summary types.ReportSummary) error {
	profile, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return err
	}

	traits := profile.Traits.Data()
	patterns := profile.LongTermPatterns.Data()
	snapshots := profile.HistorySnapshots.Data()

	// Three fixed ability heuristics over the summary arrays. The
	// execution rule is an absence-of-negative signal: no improvement
	// entry mentioning procrastination counts as evidence.
	if anyContains(summary.Strengths, "反思", "思考") {
		traits.Abilities = updateOrAddTrait(traits.Abilities, traitSelfReflection, incSelfReflection)
	}
	if !anyContains(summary.Improvements, "拖延", "行动") {
		traits.Abilities = updateOrAddTrait(traits.Abilities, traitExecution, incExecution)
	}
	if anyContains(summary.KeepDoing, "计划", "规划") {
		traits.Abilities = updateOrAddTrait(traits.Abilities, traitPlanning, incPlanning)
	}

	if len(summary.Questions) > 0 {
		topics := make([]string, 0, len(summary.Questions))
		for _, q := range summary.Questions {
			topics = append(topics, q.Topic)
		}
		joined := strings.Join(topics, "、")

		exists := false
		for _, p := range patterns {
			if strings.Contains(p, joined) {
				exists = true
				break
			}
		}
		if !exists {
			patterns = append(patterns, "持续关注: "+joined)
			if len(patterns) > types.MaxLongTermPatterns {
				patterns = patterns[len(patterns)-types.MaxLongTermPatterns:]
			}
		}
	}

	keyChanges := "持续成长中"
	if len(summary.Questions) > 0 {
		keyChanges = "关注: " + summary.Questions[0].Topic
	}
	snapshots = append(snapshots, types.HistorySnapshot{
		Date:       time.Now().Format("2006-01-02"),
		KeyChanges: keyChanges,
	})
	if len(snapshots) > types.MaxHistorySnapshots {
		snapshots = snapshots[len(snapshots)-types.MaxHistorySnapshots:]
	}

	profile.Traits = datatypes.NewJSONType(traits)
	profile.LongTermPatterns = datatypes.NewJSONType(patterns)
	profile.HistorySnapshots = datatypes.NewJSONType(snapshots)

	return s.profiles.Save(ctx, nil, profile)
}

func anyContains(entries []string, terms ...string) bool {
	for _, entry := range entries {
		for _, term := range terms {
			if strings.Contains(entry, term) {
				return true
			}
		}
	}
	return false
}

// updateOrAddTrait applies the smoothing step to an existing trait or
// inserts a new one. The formula 0.8*old + 0.2*(old+inc) reduces to
// old + 0.2*inc; the literal form is kept because it is the tested
// behavior.
func updateOrAddTrait(bucket []types.TraitScore, name string, increment float64) []types.TraitScore {
	for i := range bucket {
		if bucket[i].Name == name {
			bucket[i].Score = clamp01(bucket[i].Score*0.8 + (bucket[i].Score+increment)*0.2)
			return bucket
		}
	}
	return append(bucket, types.TraitScore{Name: name, Score: clamp01(0.5 + increment)})
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func (s *profileService) UpdatePreferences(ctx context.Context, user *types.User, prefs types.Preferences) (types.Preferences, error) {
	merged := user.Preferences.Data()
	if prefs.ReplyTone != "" {
		merged.ReplyTone = prefs.ReplyTone
	}
	if prefs.AnalysisFrequency != "" {
		merged.AnalysisFrequency = prefs.AnalysisFrequency
	}
	if prefs.LanguageStyle != "" {
		merged.LanguageStyle = prefs.LanguageStyle
	}
	if err := s.users.UpdatePreferences(ctx, nil, user.ID, merged); err != nil {
		return types.Preferences{}, err
	}
	return merged, nil
}

func (s *profileService) Stats(ctx context.Context, user *types.User) (*ProfileStats, error) {
	totalMessages, err := s.messages.CountForUser(ctx, nil, user.ID, types.MessageRoleUser)
	if err != nil {
		return nil, err
	}
	totalReports, err := s.reports.CountForUser(ctx, nil, user.ID)
	if err != nil {
		return nil, err
	}
	lastMessage, err := s.messages.GetLatestForUser(ctx, nil, user.ID)
	if err != nil {
		return nil, err
	}

	stats := &ProfileStats{
		TotalMessages: totalMessages,
		TotalReports:  totalReports,
		DaysSinceJoin: int(time.Since(user.CreatedAt).Hours() / 24),
	}
	if lastMessage != nil {
		stats.LastMessageAt = &lastMessage.CreatedAt
	}
	return stats, nil
}

func (s *profileService) Export(ctx context.Context, userID uuid.UUID) (*ProfileExport, error) {
	export := &ProfileExport{ExportTime: time.Now()}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		user, err := s.users.GetByID(gctx, nil, userID)
		if err != nil {
			return err
		}
		export.User = user
		return nil
	})
	g.Go(func() error {
		messages, err := s.messages.ListAllForUser(gctx, nil, userID)
		if err != nil {
			return err
		}
		export.Messages = messages
		return nil
	})
	g.Go(func() error {
		reports, err := s.reports.ListAllForUser(gctx, nil, userID)
		if err != nil {
			return err
		}
		export.Reports = reports
		return nil
	})
	g.Go(func() error {
		profile, err := s.profiles.GetByUserID(gctx, nil, userID)
		if err != nil {
			return err
		}
		export.Profile = profile
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return export, nil
}

func (s *profileService) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.messages.FullDeleteByUserID(ctx, tx, userID); err != nil {
			return err
		}
		if err := s.reports.FullDeleteByUserID(ctx, tx, userID); err != nil {
			return err
		}
		if err := s.profiles.FullDeleteByUserID(ctx, tx, userID); err != nil {
			return err
		}
		_, err := s.profiles.Create(ctx, tx, emptyProfile(userID))
		return err
	})
}
