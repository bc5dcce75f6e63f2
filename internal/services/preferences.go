package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	redisclient "github.com/wolverine5550/lexsona-backend/internal/clients/redis"
	"github.com/wolverine5550/lexsona-backend/internal/logger"
	"github.com/wolverine5550/lexsona-backend/internal/repos"
	"github.com/wolverine5550/lexsona-backend/internal/types"
)

type PreferencesInput struct {
	UserID            uuid.UUID `json:"user_id"`
	Topics            []string  `json:"topics"`
	PreferredLength   string    `json:"preferred_length"`
	StyleInterview    bool      `json:"style_interview"`
	StyleStorytelling bool      `json:"style_storytelling"`
	StyleEducational  bool      `json:"style_educational"`
	StyleDebate       bool      `json:"style_debate"`
	ExpertiseLevel    string    `json:"expertise_level"`
	TargetAudience    string    `json:"target_audience"`
}

type PreferencesService interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*types.AuthorPreferences, error)
	Upsert(ctx context.Context, input PreferencesInput) (*types.AuthorPreferences, error)
}

type preferencesService struct {
	db  *gorm.DB
	log *logger.Logger

	prefsRepo repos.AuthorPreferencesRepo
	cache     redisclient.MatchCache
}

func NewPreferencesService(
	db *gorm.DB,
	baseLog *logger.Logger,
	prefsRepo repos.AuthorPreferencesRepo,
	cache redisclient.MatchCache,
) PreferencesService {
	return &preferencesService{
		db:        db,
		log:       baseLog.With("service", "PreferencesService"),
		prefsRepo: prefsRepo,
		cache:     cache,
	}
}

func (s *preferencesService) GetByUserID(ctx context.Context, userID uuid.UUID) (*types.AuthorPreferences, error) {
	return s.prefsRepo.GetByUserID(ctx, nil, userID)
}

func (s *preferencesService) Upsert(ctx context.Context, input PreferencesInput) (*types.AuthorPreferences, error) {
	if input.UserID == uuid.Nil {
		return nil, fmt.Errorf("user_id is required")
	}
	if len(input.Topics) == 0 || len(input.Topics) > 5 {
		return nil, fmt.Errorf("between 1 and 5 topics are required")
	}
	switch input.PreferredLength {
	case "short", "medium", "long":
	default:
		return nil, fmt.Errorf("preferred_length must be short, medium or long")
	}

	prefs := &types.AuthorPreferences{
		UserID:            input.UserID,
		Topics:            encodeJSON(input.Topics),
		PreferredLength:   input.PreferredLength,
		StyleInterview:    input.StyleInterview,
		StyleStorytelling: input.StyleStorytelling,
		StyleEducational:  input.StyleEducational,
		StyleDebate:       input.StyleDebate,
		ExpertiseLevel:    input.ExpertiseLevel,
		TargetAudience:    input.TargetAudience,
	}
	if prefs.ExpertiseLevel == "" {
		prefs.ExpertiseLevel = "intermediate"
	}
	if prefs.TargetAudience == "" {
		prefs.TargetAudience = "general"
	}

	saved, err := s.prefsRepo.Upsert(ctx, nil, prefs)
	if err != nil {
		return nil, err
	}

	// New explicit preferences invalidate any cached ranking.
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, input.UserID.String()); err != nil {
			s.log.Warn("Match cache invalidation failed", "user_id", input.UserID, "error", err)
		}
	}
	return saved, nil
}
