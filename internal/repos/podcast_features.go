package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wolverine5550/lexsona-backend/internal/logger"
	"github.com/wolverine5550/lexsona-backend/internal/types"
)

type PodcastFeaturesRepo interface {
	GetByPodcastID(ctx context.Context, tx *gorm.DB, podcastID uuid.UUID) (*types.PodcastFeatures, error)
	GetByPodcastIDs(ctx context.Context, tx *gorm.DB, podcastIDs []uuid.UUID) ([]*types.PodcastFeatures, error)
	// Replace removes any existing row for the podcast and writes the new one.
	Replace(ctx context.Context, tx *gorm.DB, features *types.PodcastFeatures) (*types.PodcastFeatures, error)
}

type podcastFeaturesRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPodcastFeaturesRepo(db *gorm.DB, baseLog *logger.Logger) PodcastFeaturesRepo {
	return &podcastFeaturesRepo{db: db, log: baseLog.With("repo", "PodcastFeaturesRepo")}
}

func (fr *podcastFeaturesRepo) GetByPodcastID(ctx context.Context, tx *gorm.DB, podcastID uuid.UUID) (*types.PodcastFeatures, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}
	var result types.PodcastFeatures
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

func (fr *podcastFeaturesRepo) GetByPodcastIDs(ctx context.Context, tx *gorm.DB, podcastIDs []uuid.UUID) ([]*types.PodcastFeatures, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}
	var results []*types.PodcastFeatures
	if len(podcastIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("podcast_id IN ?", podcastIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (fr *podcastFeaturesRepo) Replace(ctx context.Context, tx *gorm.DB, features *types.PodcastFeatures) (*types.PodcastFeatures, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}
	if features.ID == uuid.Nil {
		features.ID = uuid.New()
	}
	err := transaction.WithContext(ctx).Transaction(func(innerTx *gorm.DB) error {
		if err := innerTx.
			Where("podcast_id = ?", features.PodcastID).
			Delete(&types.PodcastFeatures{}).Error; err != nil {
			return err
		}
		return innerTx.Create(features).Error
	})
	if err != nil {
		return nil, err
	}
	return features, nil
}
