package services

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dailyfocus/dailyfocus-backend/internal/search"
	"github.com/dailyfocus/dailyfocus-backend/internal/types"
)

type fakeConversationRepo struct {
	conversations map[uuid.UUID]*types.Conversation
	titleUpdates  map[uuid.UUID]string
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{
		conversations: map[uuid.UUID]*types.Conversation{},
		titleUpdates:  map[uuid.UUID]string{},
	}
}

func (r *fakeConversationRepo) Create(ctx context.Context, tx *gorm.DB, conversation *types.Conversation) (*types.Conversation, error) {
	if conversation.CreatedAt.IsZero() {
		conversation.CreatedAt = time.Now()
	}
	r.conversations[conversation.ID] = conversation
	return conversation, nil
}

func (r *fakeConversationRepo) GetByIDForUser(ctx context.Context, tx *gorm.DB, id, userID uuid.UUID) (*types.Conversation, error) {
	conversation, ok := r.conversations[id]
	if !ok || conversation.UserID != userID {
		return nil, nil
	}
	return conversation, nil
}

func (r *fakeConversationRepo) GetOldestForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.Conversation, error) {
	var oldest *types.Conversation
	for _, conversation := range r.conversations {
		if conversation.UserID != userID {
			continue
		}
		if oldest == nil || conversation.CreatedAt.Before(oldest.CreatedAt) {
			oldest = conversation
		}
	}
	return oldest, nil
}

func (r *fakeConversationRepo) ListForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Conversation, error) {
	var results []*types.Conversation
	for _, conversation := range r.conversations {
		if conversation.UserID == userID {
			results = append(results, conversation)
		}
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].UpdatedAt.After(results[j].UpdatedAt)
	})
	return results, nil
}

func (r *fakeConversationRepo) UpdateTitle(ctx context.Context, tx *gorm.DB, id uuid.UUID, title string) error {
	r.titleUpdates[id] = title
	if conversation, ok := r.conversations[id]; ok {
		conversation.Title = title
	}
	return nil
}

func (r *fakeConversationRepo) Touch(ctx context.Context, tx *gorm.DB, id uuid.UUID, at time.Time) error {
	if conversation, ok := r.conversations[id]; ok {
		conversation.UpdatedAt = at
	}
	return nil
}

func (r *fakeConversationRepo) FullDeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	delete(r.conversations, id)
	return nil
}

type fakeMessageRepo struct {
	messages []*types.Message
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{}
}

func (r *fakeMessageRepo) Create(ctx context.Context, tx *gorm.DB, message *types.Message) (*types.Message, error) {
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	r.messages = append(r.messages, message)
	return message, nil
}

func (r *fakeMessageRepo) GetRecentUpTo(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID, upTo *types.Message, limit int) ([]*types.Message, error) {
	var filtered []*types.Message
	for _, msg := range r.messages {
		if msg.ConversationID != conversationID {
			continue
		}
		if upTo != nil && msg.CreatedAt.After(upTo.CreatedAt) {
			continue
		}
		filtered = append(filtered, msg)
	}
	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})
	if len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return filtered, nil
}

func (r *fakeMessageRepo) ListForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, conversationID *uuid.UUID, limit, offset int) ([]*types.Message, int64, error) {
	var filtered []*types.Message
	for _, msg := range r.messages {
		if msg.UserID != userID {
			continue
		}
		if conversationID != nil && msg.ConversationID != *conversationID {
			continue
		}
		filtered = append(filtered, msg)
	}
	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})
	total := int64(len(filtered))
	if offset >= len(filtered) {
		return nil, total, nil
	}
	filtered = filtered[offset:]
	if len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return filtered, total, nil
}

func (r *fakeMessageRepo) GetUserMessagesInRange(ctx context.Context, tx *gorm.DB, userID uuid.UUID, startAt, endAt time.Time) ([]*types.Message, error) {
	var filtered []*types.Message
	for _, msg := range r.messages {
		if msg.UserID != userID || msg.Role != types.MessageRoleUser {
			continue
		}
		if msg.CreatedAt.Before(startAt) || !msg.CreatedAt.Before(endAt) {
			continue
		}
		filtered = append(filtered, msg)
	}
	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.Before(filtered[j].CreatedAt)
	})
	return filtered, nil
}

func (r *fakeMessageRepo) CountForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, role string) (int64, error) {
	var count int64
	for _, msg := range r.messages {
		if msg.UserID == userID && (role == "" || msg.Role == role) {
			count++
		}
	}
	return count, nil
}

func (r *fakeMessageRepo) CountForConversation(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID) (int64, error) {
	var count int64
	for _, msg := range r.messages {
		if msg.ConversationID == conversationID {
			count++
		}
	}
	return count, nil
}

func (r *fakeMessageRepo) GetLatestForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.Message, error) {
	var latest *types.Message
	for _, msg := range r.messages {
		if msg.UserID != userID {
			continue
		}
		if latest == nil || msg.CreatedAt.After(latest.CreatedAt) {
			latest = msg
		}
	}
	return latest, nil
}

func (r *fakeMessageRepo) ListAllForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Message, error) {
	var filtered []*types.Message
	for _, msg := range r.messages {
		if msg.UserID == userID {
			filtered = append(filtered, msg)
		}
	}
	return filtered, nil
}

func (r *fakeMessageRepo) FullDeleteByConversationID(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID) error {
	var kept []*types.Message
	for _, msg := range r.messages {
		if msg.ConversationID != conversationID {
			kept = append(kept, msg)
		}
	}
	r.messages = kept
	return nil
}

func (r *fakeMessageRepo) FullDeleteByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	var kept []*types.Message
	for _, msg := range r.messages {
		if msg.UserID != userID {
			kept = append(kept, msg)
		}
	}
	r.messages = kept
	return nil
}

type fakeUserProfileRepo struct {
	profiles map[uuid.UUID]*types.UserProfile
	saves    int
}

func newFakeUserProfileRepo() *fakeUserProfileRepo {
	return &fakeUserProfileRepo{profiles: map[uuid.UUID]*types.UserProfile{}}
}

func (r *fakeUserProfileRepo) Create(ctx context.Context, tx *gorm.DB, profile *types.UserProfile) (*types.UserProfile, error) {
	r.profiles[profile.UserID] = profile
	return profile, nil
}

func (r *fakeUserProfileRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.UserProfile, error) {
	return r.profiles[userID], nil
}

func (r *fakeUserProfileRepo) Save(ctx context.Context, tx *gorm.DB, profile *types.UserProfile) error {
	r.saves++
	r.profiles[profile.UserID] = profile
	return nil
}

func (r *fakeUserProfileRepo) FullDeleteByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	delete(r.profiles, userID)
	return nil
}

type fakeAnalysisReportRepo struct {
	reports []*types.AnalysisReport
}

func newFakeAnalysisReportRepo() *fakeAnalysisReportRepo {
	return &fakeAnalysisReportRepo{}
}

func (r *fakeAnalysisReportRepo) Create(ctx context.Context, tx *gorm.DB, report *types.AnalysisReport) (*types.AnalysisReport, error) {
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now()
	}
	r.reports = append(r.reports, report)
	return report, nil
}

func (r *fakeAnalysisReportRepo) GetByIDForUser(ctx context.Context, tx *gorm.DB, id, userID uuid.UUID) (*types.AnalysisReport, error) {
	for _, report := range r.reports {
		if report.ID == id && report.UserID == userID {
			return report, nil
		}
	}
	return nil, nil
}

func (r *fakeAnalysisReportRepo) ListForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit, offset int) ([]*types.AnalysisReport, int64, error) {
	var filtered []*types.AnalysisReport
	for _, report := range r.reports {
		if report.UserID == userID {
			filtered = append(filtered, report)
		}
	}
	total := int64(len(filtered))
	if offset >= len(filtered) {
		return nil, total, nil
	}
	filtered = filtered[offset:]
	if len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return filtered, total, nil
}

func (r *fakeAnalysisReportRepo) ListAllForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.AnalysisReport, error) {
	var filtered []*types.AnalysisReport
	for _, report := range r.reports {
		if report.UserID == userID {
			filtered = append(filtered, report)
		}
	}
	return filtered, nil
}

func (r *fakeAnalysisReportRepo) CountForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	var count int64
	for _, report := range r.reports {
		if report.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (r *fakeAnalysisReportRepo) FullDeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	var kept []*types.AnalysisReport
	for _, report := range r.reports {
		if report.ID != id {
			kept = append(kept, report)
		}
	}
	r.reports = kept
	return nil
}

func (r *fakeAnalysisReportRepo) FullDeleteByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	var kept []*types.AnalysisReport
	for _, report := range r.reports {
		if report.UserID != userID {
			kept = append(kept, report)
		}
	}
	r.reports = kept
	return nil
}

// fakeCompletion replays scripted results and records every prompt it was
// given.
type fakeCompletion struct {
	results []CompletionResult
	calls   [][]ChatMessage
}

func (f *fakeCompletion) Complete(ctx context.Context, messages []ChatMessage, opts CompletionOptions) CompletionResult {
	f.calls = append(f.calls, messages)
	if len(f.results) == 0 {
		return CompletionResult{Success: true, Content: "好的", Model: "deepseek-chat"}
	}
	result := f.results[0]
	if len(f.results) > 1 {
		f.results = f.results[1:]
	}
	return result
}

type fakeSearchProvider struct {
	name  string
	items []search.Item
	calls int
}

func (p *fakeSearchProvider) Name() string     { return p.name }
func (p *fakeSearchProvider) Configured() bool { return true }
func (p *fakeSearchProvider) TryFetch(ctx context.Context, query string, count int) ([]search.Item, error) {
	p.calls++
	return p.items, nil
}
