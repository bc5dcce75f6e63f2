package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/wolverine5550/lexsona-backend/internal/logger"
	"github.com/wolverine5550/lexsona-backend/internal/repos"
	"github.com/wolverine5550/lexsona-backend/internal/types"
	"github.com/wolverine5550/lexsona-backend/internal/utils"
)

type LocalMatcherService interface {
	// FindLocalMatches scores the cached catalogue for the user, filters out
	// matches below the viability threshold and orders by score descending.
	FindLocalMatches(ctx context.Context, userID uuid.UUID) ([]types.PodcastMatch, error)
	// ScoreCandidates runs extract+score over a candidate set. The remote
	// tier reuses this so remote results take the exact same path.
	ScoreCandidates(ctx context.Context, prefs *types.AuthorPreferences, adjustment *types.PreferenceAdjustment, candidates []*types.Podcast) []types.PodcastMatch
}

type localMatcherService struct {
	db  *gorm.DB
	log *logger.Logger

	podcastRepo repos.PodcastRepo
	prefsRepo   repos.AuthorPreferencesRepo
	adjRepo     repos.PreferenceAdjustmentRepo
	extraction  FeatureExtractionService

	weights  MatchWeights
	minScore float64
}

func NewLocalMatcherService(
	db *gorm.DB,
	baseLog *logger.Logger,
	podcastRepo repos.PodcastRepo,
	prefsRepo repos.AuthorPreferencesRepo,
	adjRepo repos.PreferenceAdjustmentRepo,
	extraction FeatureExtractionService,
	weights MatchWeights,
) LocalMatcherService {
	log := baseLog.With("service", "LocalMatcherService")
	return &localMatcherService{
		db:          db,
		log:         log,
		podcastRepo: podcastRepo,
		prefsRepo:   prefsRepo,
		adjRepo:     adjRepo,
		extraction:  extraction,
		weights:     weights,
		minScore:    utils.GetEnvAsFloat("MATCH_MIN_SCORE", 0.3, log),
	}
}

func (s *localMatcherService) FindLocalMatches(ctx context.Context, userID uuid.UUID) ([]types.PodcastMatch, error) {
	prefs, err := s.prefsRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	if prefs == nil {
		return nil, fmt.Errorf("no preferences configured for user")
	}

	adjustment, err := s.adjRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, err
	}

	catalogue, err := s.podcastRepo.GetAll(ctx, nil)
	if err != nil {
		return nil, err
	}

	matches := s.ScoreCandidates(ctx, prefs, adjustment, catalogue)

	viable := matches[:0]
	for _, m := range matches {
		if m.OverallScore >= s.minScore {
			viable = append(viable, m)
		}
	}
	sort.SliceStable(viable, func(i, j int) bool {
		return viable[i].OverallScore > viable[j].OverallScore
	})
	return viable, nil
}

func (s *localMatcherService) ScoreCandidates(ctx context.Context, prefs *types.AuthorPreferences, adjustment *types.PreferenceAdjustment, candidates []*types.Podcast) []types.PodcastMatch {
	var (
		mu      sync.Mutex
		matches []types.PodcastMatch
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, candidate := range candidates {
		candidate := candidate
		g.Go(func() error {
			features, err := s.extraction.EnsureFresh(gctx, candidate)
			if err != nil {
				// A candidate we cannot profile is skipped, not fatal.
				s.log.Warn("Skipping candidate without features",
					"podcast_id", candidate.ID, "error", err)
				return nil
			}
			match := ScoreMatch(prefs, adjustment, candidate, features, s.weights)
			mu.Lock()
			matches = append(matches, match)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].OverallScore > matches[j].OverallScore
	})
	return matches
}
