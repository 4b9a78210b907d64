package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/dailyfocus/dailyfocus-backend/internal/logger"
	"github.com/dailyfocus/dailyfocus-backend/internal/repos"
	"github.com/dailyfocus/dailyfocus-backend/internal/search"
	"github.com/dailyfocus/dailyfocus-backend/internal/types"
)

const (
	searchResultCount = 5
	maxAutoTitleRunes = 20
)

type SendMessageInput struct {
	Content         string
	ConversationID  *uuid.UUID
	EnableWebSearch bool
}

type SendMessageOutput struct {
	UserMessage      *types.Message
	AssistantMessage *types.Message
}

type HistoryPage struct {
	Messages   []*types.Message
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// ChatService orchestrates one chat turn: validate, resolve the
// conversation, persist the user message, optionally search, call the
// completion API, persist the reply.
type ChatService interface {
	SendMessage(ctx context.Context, user *types.User, in SendMessageInput) (*SendMessageOutput, error)
	GetHistory(ctx context.Context, userID uuid.UUID, conversationID *uuid.UUID, page, limit int) (*HistoryPage, error)
	ListConversations(ctx context.Context, userID uuid.UUID) ([]*types.Conversation, error)
	CreateConversation(ctx context.Context, userID uuid.UUID, title string) (*types.Conversation, error)
	DeleteConversation(ctx context.Context, userID, conversationID uuid.UUID) error
}

type chatService struct {
	db            *gorm.DB
	log           *logger.Logger
	conversations repos.ConversationRepo
	messages      repos.MessageRepo
	profiles      repos.UserProfileRepo
	trigger       *search.Trigger
	chain         *search.Chain
	prompts       *PromptBuilder
	completion    CompletionClient
}

func NewChatService(
	db *gorm.DB,
	log *logger.Logger,
	conversations repos.ConversationRepo,
	messages repos.MessageRepo,
	profiles repos.UserProfileRepo,
	trigger *search.Trigger,
	chain *search.Chain,
	prompts *PromptBuilder,
	completion CompletionClient,
) ChatService {
	return &chatService{
		db:            db,
		log:           log.With("service", "ChatService"),
		conversations: conversations,
		messages:      messages,
		profiles:      profiles,
		trigger:       trigger,
		chain:         chain,
		prompts:       prompts,
		completion:    completion,
	}
}

func (s *chatService) SendMessage(ctx context.Context, user *types.User, in SendMessageInput) (*SendMessageOutput, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	conversation, err := s.resolveConversation(ctx, user.ID, in.ConversationID)
	if err != nil {
		return nil, err
	}

	// The user message is durable before any network call; a completion
	// failure later must not roll it back.
	userMessage := &types.Message{
		ID:             uuid.New(),
		UserID:         user.ID,
		ConversationID: conversation.ID,
		Role:           types.MessageRoleUser,
		Content:        content,
		CreatedAt:      time.Now(),
	}
	if _, err := s.messages.Create(ctx, nil, userMessage); err != nil {
		return nil, err
	}

	recent, err := s.messages.GetRecentUpTo(ctx, nil, conversation.ID, userMessage, HistoryWindow)
	if err != nil {
		return nil, err
	}
	// Newest-first from the store; the prompt wants oldest-first with the
	// current turn dropped from the prior-turn window.
	history := make([]*types.Message, 0, len(recent))
	for i := len(recent) - 1; i >= 0; i-- {
		history = append(history, recent[i])
	}
	if len(history) > 0 && history[len(history)-1].ID == userMessage.ID {
		history = history[:len(history)-1]
	}

	var searchResult *search.Result
	if s.trigger.ShouldSearch(in.EnableWebSearch, content) {
		result := s.chain.Search(ctx, content, searchResultCount)
		searchResult = &result
	}

	profile, err := s.profiles.GetByUserID(ctx, nil, user.ID)
	if err != nil {
		// The digest is an enrichment; a failed lookup should not kill
		// the turn.
		s.log.Warn("profile load failed, continuing without digest", "error", err)
		profile = nil
	}

	messages := s.prompts.BuildChatMessages(profile, user.Preferences.Data(), history, searchResult, content)

	result := s.completion.Complete(ctx, messages, CompletionOptions{Temperature: 0.7, MaxTokens: 2000})
	if !result.Success {
		s.log.Warn("completion failed for turn", "conversation_id", conversation.ID, "error", result.Error)
		return nil, &CompletionError{Message: result.Error}
	}

	meta := datatypes.JSONMap{
		"model": result.Model,
		"usage": result.Usage,
	}
	if searchResult != nil {
		meta["searchSource"] = searchResult.Source
		meta["searchResultCount"] = len(searchResult.Results)
	}

	assistantMessage := &types.Message{
		ID:             uuid.New(),
		UserID:         user.ID,
		ConversationID: conversation.ID,
		Role:           types.MessageRoleAssistant,
		Content:        result.Content,
		Meta:           meta,
		CreatedAt:      time.Now(),
	}
	if _, err := s.messages.Create(ctx, nil, assistantMessage); err != nil {
		return nil, err
	}

	if err := s.conversations.Touch(ctx, nil, conversation.ID, time.Now()); err != nil {
		s.log.Warn("conversation touch failed", "conversation_id", conversation.ID, "error", err)
	}

	s.maybeAutoTitle(ctx, conversation, content)

	return &SendMessageOutput{
		UserMessage:      userMessage,
		AssistantMessage: assistantMessage,
	}, nil
}

func (s *chatService) resolveConversation(ctx context.Context, userID uuid.UUID, conversationID *uuid.UUID) (*types.Conversation, error) {
	if conversationID != nil {
		conversation, err := s.conversations.GetByIDForUser(ctx, nil, *conversationID, userID)
		if err != nil {
			return nil, err
		}
		if conversation == nil {
			return nil, ErrConversationNotFound
		}
		return conversation, nil
	}

	conversation, err := s.conversations.GetOldestForUser(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	if conversation != nil {
		return conversation, nil
	}

	return s.conversations.Create(ctx, nil, &types.Conversation{
		ID:     uuid.New(),
		UserID: userID,
		Title:  types.DefaultConversationTitle,
	})
}

// maybeAutoTitle names a still-default conversation after its first
// completed exchange, using the opening user message. Failures only log.
func (s *chatService) maybeAutoTitle(ctx context.Context, conversation *types.Conversation, content string) {
	if conversation.Title != types.DefaultConversationTitle && conversation.Title != "" {
		return
	}
	count, err := s.messages.CountForConversation(ctx, nil, conversation.ID)
	if err != nil || count > 2 {
		return
	}

	title := []rune(content)
	if len(title) > maxAutoTitleRunes {
		title = title[:maxAutoTitleRunes]
	}
	if err := s.conversations.UpdateTitle(ctx, nil, conversation.ID, string(title)); err != nil {
		s.log.Warn("auto title failed", "conversation_id", conversation.ID, "error", err)
	}
}

func (s *chatService) GetHistory(ctx context.Context, userID uuid.UUID, conversationID *uuid.UUID, page, limit int) (*HistoryPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}

	messages, total, err := s.messages.ListForUser(ctx, nil, userID, conversationID, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	// Stored newest-first for paging; clients render oldest-first.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &HistoryPage{
		Messages:   messages,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

func (s *chatService) ListConversations(ctx context.Context, userID uuid.UUID) ([]*types.Conversation, error) {
	return s.conversations.ListForUser(ctx, nil, userID)
}

func (s *chatService) CreateConversation(ctx context.Context, userID uuid.UUID, title string) (*types.Conversation, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = "新对话"
	}
	return s.conversations.Create(ctx, nil, &types.Conversation{
		ID:     uuid.New(),
		UserID: userID,
		Title:  title,
	})
}

func (s *chatService) DeleteConversation(ctx context.Context, userID, conversationID uuid.UUID) error {
	conversation, err := s.conversations.GetByIDForUser(ctx, nil, conversationID, userID)
	if err != nil {
		return err
	}
	if conversation == nil {
		return ErrConversationNotFound
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.messages.FullDeleteByConversationID(ctx, tx, conversationID); err != nil {
			return err
		}
		return s.conversations.FullDeleteByID(ctx, tx, conversationID)
	})
}
