package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wolverine5550/lexsona-backend/internal/logger"
	"github.com/wolverine5550/lexsona-backend/internal/types"
)

type PodcastFeedbackRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.PodcastFeedback) ([]*types.PodcastFeedback, error)
	GetUnprocessed(ctx context.Context, tx *gorm.DB, limit int) ([]*types.PodcastFeedback, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.PodcastFeedback, error)
	GetByPodcastID(ctx context.Context, tx *gorm.DB, podcastID uuid.UUID) ([]*types.PodcastFeedback, error)
	// MarkProcessed flips is_processed only if it is still false, so two
	// overlapping runs cannot both count the same row as newly processed.
	MarkProcessed(ctx context.Context, tx *gorm.DB, id uuid.UUID) (bool, error)
}

type podcastFeedbackRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPodcastFeedbackRepo(db *gorm.DB, baseLog *logger.Logger) PodcastFeedbackRepo {
	return &podcastFeedbackRepo{db: db, log: baseLog.With("repo", "PodcastFeedbackRepo")}
}

func (fr *podcastFeedbackRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.PodcastFeedback) ([]*types.PodcastFeedback, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}
	if len(rows) == 0 {
		return []*types.PodcastFeedback{}, nil
	}
	now := time.Now().UTC()
	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		if row.CreatedAt.IsZero() {
			row.CreatedAt = now
		}
	}
	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (fr *podcastFeedbackRepo) GetUnprocessed(ctx context.Context, tx *gorm.DB, limit int) ([]*types.PodcastFeedback, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}
	var results []*types.PodcastFeedback
	if err := transaction.WithContext(ctx).
		Where("is_processed = ?", false).
		Order("created_at asc").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (fr *podcastFeedbackRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.PodcastFeedback, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}
	var results []*types.PodcastFeedback
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at asc").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (fr *podcastFeedbackRepo) GetByPodcastID(ctx context.Context, tx *gorm.DB, podcastID uuid.UUID) ([]*types.PodcastFeedback, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}
	var results []*types.PodcastFeedback
	if err := transaction.WithContext(ctx).
		Where("podcast_id = ?", podcastID).
		Order("created_at asc").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (fr *podcastFeedbackRepo) MarkProcessed(ctx context.Context, tx *gorm.DB, id uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}
	res := transaction.WithContext(ctx).
		Model(&types.PodcastFeedback{}).
		Where("id = ? AND is_processed = ?", id, false).
		Update("is_processed", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
