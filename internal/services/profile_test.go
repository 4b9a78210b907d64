package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/dailyfocus/dailyfocus-backend/internal/logger"
	"github.com/dailyfocus/dailyfocus-backend/internal/types"
)

func newProfileFixture() (ProfileService, *fakeUserProfileRepo, uuid.UUID) {
	profiles := newFakeUserProfileRepo()
	service := NewProfileService(nil, logger.NewNop(), nil, newFakeMessageRepo(), newFakeAnalysisReportRepo(), profiles)
	return service, profiles, uuid.New()
}

func TestGetOrCreateBootstrapsEmptyProfile(t *testing.T) {
	service, profiles, userID := newProfileFixture()

	profile, err := service.GetOrCreate(context.Background(), userID)
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if profile.UserID != userID {
		t.Fatalf("profile bound to wrong user")
	}
	if len(profile.Traits.Data().Abilities) != 0 {
		t.Fatalf("fresh profile should have no traits")
	}
	if profiles.profiles[userID] == nil {
		t.Fatalf("profile should be persisted on first access")
	}
}

func TestApplyAnalysisInsertsTraits(t *testing.T) {
	service, profiles, userID := newProfileFixture()

	summary := types.ReportSummary{
		Questions: []types.ReportQuestion{{Topic: "职业方向", Description: "纠结转行"}},
		Strengths: []string{"善于反思自己的情绪"},
		KeepDoing: []string{"坚持做周计划"},
	}
	if err := service.ApplyAnalysis(context.Background(), userID, summary); err != nil {
		t.Fatalf("ApplyAnalysis failed: %v", err)
	}

	traits := profiles.profiles[userID].Traits.Data()
	if len(traits.Abilities) != 3 {
		t.Fatalf("all three heuristics should fire, got %d traits", len(traits.Abilities))
	}

	byName := map[string]float64{}
	for _, trait := range traits.Abilities {
		byName[trait.Name] = trait.Score
	}
	if math.Abs(byName[traitSelfReflection]-0.55) > 1e-9 {
		t.Fatalf("new reflection trait should start at 0.55, got %v", byName[traitSelfReflection])
	}
	if math.Abs(byName[traitExecution]-0.53) > 1e-9 {
		t.Fatalf("new execution trait should start at 0.53, got %v", byName[traitExecution])
	}
}

func TestApplyAnalysisSmoothsExistingTrait(t *testing.T) {
	service, profiles, userID := newProfileFixture()

	summary := types.ReportSummary{Strengths: []string{"常常反思"}, Improvements: []string{"有拖延"}}
	for i := 0; i < 2; i++ {
		if err := service.ApplyAnalysis(context.Background(), userID, summary); err != nil {
			t.Fatalf("ApplyAnalysis failed: %v", err)
		}
	}

	traits := profiles.profiles[userID].Traits.Data()
	var score float64
	for _, trait := range traits.Abilities {
		if trait.Name == traitSelfReflection {
			score = trait.Score
		}
	}
	// first pass inserts 0.55, second smooths: 0.55*0.8 + (0.55+0.05)*0.2
	if math.Abs(score-0.56) > 1e-9 {
		t.Fatalf("smoothed score should be 0.56, got %v", score)
	}
}

func TestApplyAnalysisExecutionRuleIsAbsenceBased(t *testing.T) {
	service, profiles, userID := newProfileFixture()

	summary := types.ReportSummary{Improvements: []string{"有拖延倾向"}}
	if err := service.ApplyAnalysis(context.Background(), userID, summary); err != nil {
		t.Fatalf("ApplyAnalysis failed: %v", err)
	}

	for _, trait := range profiles.profiles[userID].Traits.Data().Abilities {
		if trait.Name == traitExecution {
			t.Fatalf("procrastination mention must suppress the execution trait")
		}
	}
}

func TestApplyAnalysisPatternFIFOAndDedupe(t *testing.T) {
	service, profiles, userID := newProfileFixture()
	ctx := context.Background()

	for i := 0; i < 8; i++ {
		summary := types.ReportSummary{
			Questions: []types.ReportQuestion{{Topic: fmt.Sprintf("主题%d", i)}},
		}
		if err := service.ApplyAnalysis(ctx, userID, summary); err != nil {
			t.Fatalf("ApplyAnalysis failed: %v", err)
		}
	}

	patterns := profiles.profiles[userID].LongTermPatterns.Data()
	if len(patterns) != types.MaxLongTermPatterns {
		t.Fatalf("patterns should cap at %d, got %d", types.MaxLongTermPatterns, len(patterns))
	}
	if !strings.Contains(patterns[len(patterns)-1], "主题7") {
		t.Fatalf("newest pattern should survive the FIFO, got %v", patterns)
	}
	if strings.Contains(strings.Join(patterns, "|"), "主题0") {
		t.Fatalf("oldest pattern should be evicted, got %v", patterns)
	}

	// Re-applying the same topic must not duplicate the pattern.
	before := len(patterns)
	summary := types.ReportSummary{Questions: []types.ReportQuestion{{Topic: "主题7"}}}
	if err := service.ApplyAnalysis(ctx, userID, summary); err != nil {
		t.Fatalf("ApplyAnalysis failed: %v", err)
	}
	after := profiles.profiles[userID].LongTermPatterns.Data()
	if len(after) != before {
		t.Fatalf("duplicate topic should not grow patterns: %v", after)
	}
}

func TestApplyAnalysisSnapshotFIFO(t *testing.T) {
	service, profiles, userID := newProfileFixture()
	ctx := context.Background()

	for i := 0; i < 13; i++ {
		summary := types.ReportSummary{}
		if i%2 == 0 {
			summary.Questions = []types.ReportQuestion{{Topic: fmt.Sprintf("话题%d", i)}}
		}
		if err := service.ApplyAnalysis(ctx, userID, summary); err != nil {
			t.Fatalf("ApplyAnalysis failed: %v", err)
		}
	}

	snapshots := profiles.profiles[userID].HistorySnapshots.Data()
	if len(snapshots) != types.MaxHistorySnapshots {
		t.Fatalf("snapshots should cap at %d, got %d", types.MaxHistorySnapshots, len(snapshots))
	}
	last := snapshots[len(snapshots)-1]
	if !strings.Contains(last.KeyChanges, "话题12") {
		t.Fatalf("latest snapshot should reference the newest topic, got %q", last.KeyChanges)
	}
}

func TestUpdateOrAddTraitClamps(t *testing.T) {
	bucket := []types.TraitScore{{Name: "执行力", Score: 0.999}}
	for i := 0; i < 50; i++ {
		bucket = updateOrAddTrait(bucket, "执行力", 0.5)
	}
	if bucket[0].Score > 1 {
		t.Fatalf("score must clamp to 1, got %v", bucket[0].Score)
	}
}

func TestClamp01(t *testing.T) {
	if clamp01(-0.2) != 0 || clamp01(1.7) != 1 || clamp01(0.4) != 0.4 {
		t.Fatalf("clamp01 bounds broken")
	}
}
