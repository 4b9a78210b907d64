package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dailyfocus/dailyfocus-backend/internal/logger"
	"github.com/dailyfocus/dailyfocus-backend/internal/types"
)

type MessageRepo interface {
	Create(ctx context.Context, tx *gorm.DB, message *types.Message) (*types.Message, error)
	// GetRecentUpTo returns the newest messages in a conversation created at
	// or before the given message, newest-first, capped at limit.
	GetRecentUpTo(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID, upTo *types.Message, limit int) ([]*types.Message, error)
	ListForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, conversationID *uuid.UUID, limit, offset int) ([]*types.Message, int64, error)
	GetUserMessagesInRange(ctx context.Context, tx *gorm.DB, userID uuid.UUID, startAt, endAt time.Time) ([]*types.Message, error)
	CountForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, role string) (int64, error)
	CountForConversation(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID) (int64, error)
	GetLatestForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.Message, error)
	ListAllForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Message, error)
	FullDeleteByConversationID(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID) error
	FullDeleteByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
}

type messageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMessageRepo(db *gorm.DB, baseLog *logger.Logger) MessageRepo {
	repoLog := baseLog.With("repo", "MessageRepo")
	return &messageRepo{db: db, log: repoLog}
}

func (r *messageRepo) Create(ctx context.Context, tx *gorm.DB, message *types.Message) (*types.Message, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(message).Error; err != nil {
		return nil, err
	}
	return message, nil
}

func (r *messageRepo) GetRecentUpTo(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID, upTo *types.Message, limit int) ([]*types.Message, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	q := transaction.WithContext(ctx).
		Where("conversation_id = ?", conversationID)
	if upTo != nil {
		// created_at ties are broken by id so the anchor message itself is
		// always included.
		q = q.Where("created_at < ? OR (created_at = ? AND id <= ?)", upTo.CreatedAt, upTo.CreatedAt, upTo.ID)
	}

	var results []*types.Message
	if err := q.
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *messageRepo) ListForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, conversationID *uuid.UUID, limit, offset int) ([]*types.Message, int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	q := transaction.WithContext(ctx).
		Model(&types.Message{}).
		Where("user_id = ?", userID)
	if conversationID != nil {
		q = q.Where("conversation_id = ?", *conversationID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var results []*types.Message
	if err := q.
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&results).Error; err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (r *messageRepo) GetUserMessagesInRange(ctx context.Context, tx *gorm.DB, userID uuid.UUID, startAt, endAt time.Time) ([]*types.Message, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Message
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND role = ?", userID, types.MessageRoleUser).
		Where("created_at >= ? AND created_at < ?", startAt, endAt).
		Order("created_at ASC, id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *messageRepo) CountForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, role string) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	q := transaction.WithContext(ctx).
		Model(&types.Message{}).
		Where("user_id = ?", userID)
	if role != "" {
		q = q.Where("role = ?", role)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *messageRepo) CountForConversation(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Message{}).
		Where("conversation_id = ?", conversationID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *messageRepo) GetLatestForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.Message, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var message types.Message
	err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(1).
		Find(&message).Error
	if err != nil {
		return nil, err
	}
	if message.ID == uuid.Nil {
		return nil, nil
	}
	return &message, nil
}

func (r *messageRepo) ListAllForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Message, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Message
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *messageRepo) FullDeleteByConversationID(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Delete(&types.Message{}).Error
}

func (r *messageRepo) FullDeleteByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&types.Message{}).Error
}
