package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dailyfocus/dailyfocus-backend/internal/logger"
	"github.com/dailyfocus/dailyfocus-backend/internal/types"
)

type AnalysisReportRepo interface {
	Create(ctx context.Context, tx *gorm.DB, report *types.AnalysisReport) (*types.AnalysisReport, error)
	GetByIDForUser(ctx context.Context, tx *gorm.DB, id, userID uuid.UUID) (*types.AnalysisReport, error)
	ListForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit, offset int) ([]*types.AnalysisReport, int64, error)
	ListAllForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.AnalysisReport, error)
	CountForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error)
	FullDeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	FullDeleteByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
}

type analysisReportRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAnalysisReportRepo(db *gorm.DB, baseLog *logger.Logger) AnalysisReportRepo {
	repoLog := baseLog.With("repo", "AnalysisReportRepo")
	return &analysisReportRepo{db: db, log: repoLog}
}

func (r *analysisReportRepo) Create(ctx context.Context, tx *gorm.DB, report *types.AnalysisReport) (*types.AnalysisReport, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(report).Error; err != nil {
		return nil, err
	}
	return report, nil
}

func (r *analysisReportRepo) GetByIDForUser(ctx context.Context, tx *gorm.DB, id, userID uuid.UUID) (*types.AnalysisReport, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var report types.AnalysisReport
	err := transaction.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Limit(1).
		Find(&report).Error
	if err != nil {
		return nil, err
	}
	if report.ID == uuid.Nil {
		return nil, nil
	}
	return &report, nil
}

func (r *analysisReportRepo) ListForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit, offset int) ([]*types.AnalysisReport, int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	q := transaction.WithContext(ctx).
		Model(&types.AnalysisReport{}).
		Where("user_id = ?", userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var results []*types.AnalysisReport
	if err := q.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&results).Error; err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (r *analysisReportRepo) ListAllForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.AnalysisReport, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.AnalysisReport
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *analysisReportRepo) CountForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.AnalysisReport{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *analysisReportRepo) FullDeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.AnalysisReport{}).Error
}

func (r *analysisReportRepo) FullDeleteByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&types.AnalysisReport{}).Error
}
