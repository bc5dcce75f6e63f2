package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wolverine5550/lexsona-backend/internal/logger"
	"github.com/wolverine5550/lexsona-backend/internal/types"
)

type PodcastMetricsRepo interface {
	GetByPodcastID(ctx context.Context, tx *gorm.DB, podcastID uuid.UUID) (*types.PodcastMetrics, error)
	Upsert(ctx context.Context, tx *gorm.DB, metrics *types.PodcastMetrics) (*types.PodcastMetrics, error)
}

type podcastMetricsRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPodcastMetricsRepo(db *gorm.DB, baseLog *logger.Logger) PodcastMetricsRepo {
	return &podcastMetricsRepo{db: db, log: baseLog.With("repo", "PodcastMetricsRepo")}
}

func (mr *podcastMetricsRepo) GetByPodcastID(ctx context.Context, tx *gorm.DB, podcastID uuid.UUID) (*types.PodcastMetrics, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	var result types.PodcastMetrics
	err := transaction.WithContext(ctx).
		Where("podcast_id = ?", podcastID).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (mr *podcastMetricsRepo) Upsert(ctx context.Context, tx *gorm.DB, metrics *types.PodcastMetrics) (*types.PodcastMetrics, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	if metrics.ID == uuid.Nil {
		metrics.ID = uuid.New()
	}
	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "podcast_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"total_feedback", "likes", "dislikes", "saves", "listens", "completions",
				"average_rating", "rating_count", "updated_at",
			}),
		}).
		Create(metrics).Error; err != nil {
		return nil, err
	}
	return metrics, nil
}
