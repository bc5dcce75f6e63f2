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

type PreferenceAdjustmentRepo interface {
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.PreferenceAdjustment, error)
	Upsert(ctx context.Context, tx *gorm.DB, adjustment *types.PreferenceAdjustment) (*types.PreferenceAdjustment, error)
}

type preferenceAdjustmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPreferenceAdjustmentRepo(db *gorm.DB, baseLog *logger.Logger) PreferenceAdjustmentRepo {
	return &preferenceAdjustmentRepo{db: db, log: baseLog.With("repo", "PreferenceAdjustmentRepo")}
}

func (ar *preferenceAdjustmentRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.PreferenceAdjustment, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	var result types.PreferenceAdjustment
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

func (ar *preferenceAdjustmentRepo) Upsert(ctx context.Context, tx *gorm.DB, adjustment *types.PreferenceAdjustment) (*types.PreferenceAdjustment, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	if adjustment.ID == uuid.Nil {
		adjustment.ID = uuid.New()
	}
	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"topic_weights",
				"style_interview", "style_narrative", "style_educational", "style_debate",
				"last_adjusted",
			}),
		}).
		Create(adjustment).Error; err != nil {
		return nil, err
	}
	return adjustment, nil
}
