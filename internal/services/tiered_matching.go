package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	redisclient "github.com/wolverine5550/lexsona-backend/internal/clients/redis"
	"github.com/wolverine5550/lexsona-backend/internal/logger"
	"github.com/wolverine5550/lexsona-backend/internal/repos"
	"github.com/wolverine5550/lexsona-backend/internal/types"
	"github.com/wolverine5550/lexsona-backend/internal/utils"
)

// TieredMatchingService runs the local tier first and expands to the remote
// directory only when local results are too few or too weak. A matching
// request always returns a ranked list; the remote tier failing is never a
// hard failure.
type TieredMatchingService interface {
	FindMatches(ctx context.Context, userID uuid.UUID) (*ProcessedResults, error)
}

type tieredMatchingService struct {
	db  *gorm.DB
	log *logger.Logger

	local       LocalMatcherService
	search      PodcastSearchClient
	podcastRepo repos.PodcastRepo
	prefsRepo   repos.AuthorPreferencesRepo
	adjRepo     repos.PreferenceAdjustmentRepo
	cache       redisclient.MatchCache

	minResults    int
	minAvgScore   float64
	minConfidence float64
	cacheTTL      time.Duration
}

func NewTieredMatchingService(
	db *gorm.DB,
	baseLog *logger.Logger,
	local LocalMatcherService,
	search PodcastSearchClient,
	podcastRepo repos.PodcastRepo,
	prefsRepo repos.AuthorPreferencesRepo,
	adjRepo repos.PreferenceAdjustmentRepo,
	cache redisclient.MatchCache,
) TieredMatchingService {
	log := baseLog.With("service", "TieredMatchingService")
	return &tieredMatchingService{
		db:            db,
		log:           log,
		local:         local,
		search:        search,
		podcastRepo:   podcastRepo,
		prefsRepo:     prefsRepo,
		adjRepo:       adjRepo,
		cache:         cache,
		minResults:    utils.GetEnvAsInt("MATCH_MIN_RESULTS", 3, log),
		minAvgScore:   utils.GetEnvAsFloat("MATCH_MIN_AVG_SCORE", 0.5, log),
		minConfidence: utils.GetEnvAsFloat("MATCH_MIN_AVG_CONFIDENCE", 0.5, log),
		cacheTTL:      time.Duration(utils.GetEnvAsInt("MATCH_CACHE_TTL_MINUTES", 15, log)) * time.Minute,
	}
}

func (s *tieredMatchingService) FindMatches(ctx context.Context, userID uuid.UUID) (*ProcessedResults, error) {
	if s.cache != nil {
		var cached ProcessedResults
		hit, err := s.cache.Get(ctx, userID.String(), &cached)
		if err != nil {
			s.log.Warn("Match cache read failed", "user_id", userID, "error", err)
		} else if hit {
			return &cached, nil
		}
	}

	local, err := s.local.FindLocalMatches(ctx, userID)
	if err != nil {
		return nil, err
	}

	merged := local
	if !s.satisfied(local) {
		merged = s.expandRemote(ctx, userID, local)
	}

	processed, err := ProcessResults(merged)
	if err != nil {
		// Validation failures mean a scorer bug; never swallowed here.
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, userID.String(), processed, s.cacheTTL); err != nil {
			s.log.Warn("Match cache write failed", "user_id", userID, "error", err)
		}
	}
	return processed, nil
}

// satisfied reports whether the local tier alone meets the quantity and
// quality bar.
func (s *tieredMatchingService) satisfied(matches []types.PodcastMatch) bool {
	if len(matches) < s.minResults {
		return false
	}
	top := matches
	if len(top) > s.minResults {
		top = top[:s.minResults]
	}
	var scoreSum, confSum float64
	for _, m := range top {
		scoreSum += m.OverallScore
		confSum += m.Confidence
	}
	n := float64(len(top))
	return scoreSum/n >= s.minAvgScore && confSum/n >= s.minConfidence
}

// expandRemote queries the search directory once, scores the candidates
// through the same path as local ones, and merges with local-first
// deduplication. Any remote failure falls back to the local results.
func (s *tieredMatchingService) expandRemote(ctx context.Context, userID uuid.UUID, local []types.PodcastMatch) []types.PodcastMatch {
	prefs, err := s.prefsRepo.GetByUserID(ctx, nil, userID)
	if err != nil || prefs == nil {
		s.log.Warn("Remote tier skipped, preferences unavailable", "user_id", userID, "error", err)
		return local
	}
	adjustment, err := s.adjRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		s.log.Warn("Remote tier proceeding without adjustment", "user_id", userID, "error", err)
		adjustment = nil
	}

	query := buildSearchQuery(prefs)
	result, err := s.search.Search(ctx, query, SearchFilters{})
	if err != nil {
		s.log.Error("Remote search failed, falling back to local results",
			"user_id", userID, "kind", searchErrorKind(err), "error", err)
		return local
	}

	candidates := make([]*types.Podcast, 0, len(result.Results))
	for i := range result.Results {
		podcast, err := s.podcastRepo.UpsertByExternalID(ctx, nil, searchItemToPodcast(&result.Results[i]))
		if err != nil {
			s.log.Warn("Failed to persist remote candidate",
				"external_id", result.Results[i].ID, "error", err)
			continue
		}
		candidates = append(candidates, podcast)
	}

	remote := s.local.ScoreCandidates(ctx, prefs, adjustment, candidates)
	return mergeMatches(local, remote)
}

// mergeMatches deduplicates by podcast id; local entries come first, so they
// win any collision.
func mergeMatches(local, remote []types.PodcastMatch) []types.PodcastMatch {
	seen := make(map[uuid.UUID]bool, len(local)+len(remote))
	merged := make([]types.PodcastMatch, 0, len(local)+len(remote))
	for _, m := range local {
		if seen[m.PodcastID] {
			continue
		}
		seen[m.PodcastID] = true
		merged = append(merged, m)
	}
	for _, m := range remote {
		if seen[m.PodcastID] {
			continue
		}
		seen[m.PodcastID] = true
		merged = append(merged, m)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].OverallScore > merged[j].OverallScore
	})
	return merged
}

func buildSearchQuery(prefs *types.AuthorPreferences) string {
	topics := decodeStringSlice(prefs.Topics)
	if len(topics) == 0 {
		return "podcast"
	}
	return strings.Join(topics, " ")
}

func searchItemToPodcast(item *SearchResultItem) *types.Podcast {
	category := ""
	if len(item.Genres) > 0 {
		category = item.Genres[0]
	}
	return &types.Podcast{
		ExternalID:            item.ID,
		Title:                 item.Title,
		Publisher:             item.Publisher,
		Description:           item.Description,
		Category:              category,
		Categories:            encodeJSON(item.Genres),
		Language:              item.Language,
		ListenerCount:         item.ListenScore,
		EpisodeCount:          item.TotalEpisodes,
		AverageEpisodeMinutes: item.AvgAudioLengthSec / 60,
		EpisodesPerMonth:      episodesPerMonth(item.TotalEpisodes, item.EarliestPubDateMS, item.LatestPubDateMS),
	}
}

func episodesPerMonth(total int, earliestMS, latestMS int64) float64 {
	if total <= 0 || latestMS <= earliestMS {
		return 0
	}
	const monthMS = 30 * 24 * 60 * 60 * 1000
	months := float64(latestMS-earliestMS) / float64(monthMS)
	if months < 1 {
		months = 1
	}
	return float64(total) / months
}
