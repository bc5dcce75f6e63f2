package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wolverine5550/lexsona-backend/internal/logger"
	"github.com/wolverine5550/lexsona-backend/internal/types"
)

type AuthorPreferencesRepo interface {
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.AuthorPreferences, error)
	Upsert(ctx context.Context, tx *gorm.DB, prefs *types.AuthorPreferences) (*types.AuthorPreferences, error)
}

type authorPreferencesRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAuthorPreferencesRepo(db *gorm.DB, baseLog *logger.Logger) AuthorPreferencesRepo {
	return &authorPreferencesRepo{db: db, log: baseLog.With("repo", "AuthorPreferencesRepo")}
}

func (ar *authorPreferencesRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.AuthorPreferences, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	var result types.AuthorPreferences
	err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (ar *authorPreferencesRepo) Upsert(ctx context.Context, tx *gorm.DB, prefs *types.AuthorPreferences) (*types.AuthorPreferences, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	if prefs.ID == uuid.Nil {
		prefs.ID = uuid.New()
	}
	prefs.UpdatedAt = time.Now().UTC()
	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"topics", "preferred_length",
				"style_interview", "style_storytelling", "style_educational", "style_debate",
				"expertise_level", "target_audience", "updated_at",
			}),
		}).
		Create(prefs).Error; err != nil {
		return nil, err
	}
	return prefs, nil
}
