package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wolverine5550/lexsona-backend/internal/logger"
	"github.com/wolverine5550/lexsona-backend/internal/types"
)

type PodcastRepo interface {
	Create(ctx context.Context, tx *gorm.DB, podcasts []*types.Podcast) ([]*types.Podcast, error)
	GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Podcast, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Podcast, error)
	UpsertByExternalID(ctx context.Context, tx *gorm.DB, podcast *types.Podcast) (*types.Podcast, error)
}

type podcastRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPodcastRepo(db *gorm.DB, baseLog *logger.Logger) PodcastRepo {
	return &podcastRepo{db: db, log: baseLog.With("repo", "PodcastRepo")}
}

func (pr *podcastRepo) Create(ctx context.Context, tx *gorm.DB, podcasts []*types.Podcast) ([]*types.Podcast, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	if len(podcasts) == 0 {
		return []*types.Podcast{}, nil
	}
	for _, p := range podcasts {
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
	}
	if err := transaction.WithContext(ctx).Create(&podcasts).Error; err != nil {
		return nil, err
	}
	return podcasts, nil
}

func (pr *podcastRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Podcast, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var results []*types.Podcast
	if err := transaction.WithContext(ctx).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *podcastRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Podcast, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var results []*types.Podcast
	if len(ids) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *podcastRepo) UpsertByExternalID(ctx context.Context, tx *gorm.DB, podcast *types.Podcast) (*types.Podcast, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	if podcast.ID == uuid.Nil {
		podcast.ID = uuid.New()
	}
	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "external_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"title", "publisher", "description", "category", "categories",
				"language", "listener_count", "rating", "episode_count",
				"average_episode_minutes", "episodes_per_month", "updated_at",
			}),
		}).
		Create(podcast).Error; err != nil {
		return nil, err
	}

	// Re-read so callers get the surviving row's id on conflict.
	var saved types.Podcast
	if err := transaction.WithContext(ctx).
		Where("external_id = ?", podcast.ExternalID).
		First(&saved).Error; err != nil {
		return nil, err
	}
	return &saved, nil
}
