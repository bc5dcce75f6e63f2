package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/wolverine5550/lexsona-backend/internal/logger"
	"github.com/wolverine5550/lexsona-backend/internal/repos"
	"github.com/wolverine5550/lexsona-backend/internal/types"
	"github.com/wolverine5550/lexsona-backend/internal/utils"
)

// ExtractionError wraps a failed text-analysis call or an unparseable
// response. Partial responses never raise it; missing fields just default.
type ExtractionError struct {
	PodcastID string
	Err       error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("feature extraction failed for podcast %s: %v", e.PodcastID, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

type FeatureExtractionService interface {
	// ExtractFeatures derives a fresh feature profile from podcast metadata.
	ExtractFeatures(ctx context.Context, podcast *types.Podcast) (*types.PodcastFeatures, error)
	// EnsureFresh returns cached features when they are recent enough,
	// re-extracting and replacing the cache row otherwise. On extraction
	// failure a stale cached row is returned rather than the error.
	EnsureFresh(ctx context.Context, podcast *types.Podcast) (*types.PodcastFeatures, error)
}

type featureExtractionService struct {
	db  *gorm.DB
	log *logger.Logger

	featuresRepo repos.PodcastFeaturesRepo
	ai           TextAnalysisClient

	freshness time.Duration
	now       func() time.Time
}

func NewFeatureExtractionService(
	db *gorm.DB,
	baseLog *logger.Logger,
	featuresRepo repos.PodcastFeaturesRepo,
	ai TextAnalysisClient,
) FeatureExtractionService {
	log := baseLog.With("service", "FeatureExtractionService")
	freshnessHours := utils.GetEnvAsInt("FEATURE_FRESHNESS_HOURS", 24*7, log)
	return &featureExtractionService{
		db:           db,
		log:          log,
		featuresRepo: featuresRepo,
		ai:           ai,
		freshness:    time.Duration(freshnessHours) * time.Hour,
		now:          time.Now,
	}
}

const extractionSystemPrompt = `You are a podcast content analyst. Given podcast metadata, respond with a single JSON object with these fields:
- main_topics: array of up to 5 lowercase topic slugs
- content_style: object with boolean fields interview, storytelling, educational, debate
- complexity_level: one of "beginner", "intermediate", "advanced"
- production_quality: number between 0 and 1
- hosting_style: array of short lowercase tags (e.g. "interview", "panel", "solo")
- language_complexity: number between 0 and 1
Respond with JSON only.`

func (s *featureExtractionService) ExtractFeatures(ctx context.Context, podcast *types.Podcast) (*types.PodcastFeatures, error) {
	prompt := buildExtractionPrompt(podcast)

	raw, err := s.ai.AnalyzeJSON(ctx, extractionSystemPrompt, prompt)
	if err != nil {
		return nil, &ExtractionError{PodcastID: podcast.ID.String(), Err: err}
	}

	features := parseFeatures(raw)
	features.PodcastID = podcast.ID
	features.ExtractedAt = s.now().UTC()

	// Length and cadence come from catalogue metadata, overriding whatever
	// the model produced.
	features.AverageEpisodeLength = podcast.AverageEpisodeMinutes
	features.UpdateFrequency = updateFrequency(podcast.EpisodesPerMonth)

	return features, nil
}

func (s *featureExtractionService) EnsureFresh(ctx context.Context, podcast *types.Podcast) (*types.PodcastFeatures, error) {
	cached, err := s.featuresRepo.GetByPodcastID(ctx, nil, podcast.ID)
	if err != nil {
		return nil, err
	}
	if cached != nil && s.now().UTC().Sub(cached.ExtractedAt) < s.freshness {
		return cached, nil
	}

	features, err := s.ExtractFeatures(ctx, podcast)
	if err != nil {
		if cached != nil {
			s.log.Warn("Extraction failed, falling back to stale cached features",
				"podcast_id", podcast.ID, "error", err)
			return cached, nil
		}
		return nil, err
	}

	saved, err := s.featuresRepo.Replace(ctx, nil, features)
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func buildExtractionPrompt(podcast *types.Podcast) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", podcast.Title)
	if podcast.Publisher != "" {
		fmt.Fprintf(&b, "Publisher: %s\n", podcast.Publisher)
	}
	if cats := decodeStringSlice(podcast.Categories); len(cats) > 0 {
		fmt.Fprintf(&b, "Categories: %s\n", strings.Join(cats, ", "))
	} else if podcast.Category != "" {
		fmt.Fprintf(&b, "Categories: %s\n", podcast.Category)
	}
	if podcast.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", podcast.Description)
	}
	return b.String()
}

// parseFeatures maps the loosely-typed model response onto PodcastFeatures
// with a defensive default for every field. It never fails on partial data.
func parseFeatures(raw map[string]any) *types.PodcastFeatures {
	features := &types.PodcastFeatures{
		MainTopics:      encodeJSON(stringSliceField(raw, "main_topics")),
		ComplexityLevel: enumField(raw, "complexity_level", []string{"beginner", "intermediate", "advanced"}, "intermediate"),
		HostingStyle:    encodeJSON(stringSliceField(raw, "hosting_style")),
	}

	if style, ok := raw["content_style"].(map[string]any); ok {
		features.StyleInterview = boolField(style, "interview")
		features.StyleStorytelling = boolField(style, "storytelling")
		features.StyleEducational = boolField(style, "educational")
		features.StyleDebate = boolField(style, "debate")
	}

	features.ProductionQuality = clamp01(floatField(raw, "production_quality"))
	features.LanguageComplexity = clamp01(floatField(raw, "language_complexity"))

	return features
}

func updateFrequency(episodesPerMonth float64) string {
	switch {
	case episodesPerMonth >= 20:
		return "daily"
	case episodesPerMonth >= 3:
		return "weekly"
	case episodesPerMonth >= 1.5:
		return "biweekly"
	default:
		return "monthly"
	}
}

func stringSliceField(raw map[string]any, key string) []string {
	out := []string{}
	items, ok := raw[key].([]any)
	if !ok {
		return out
	}
	for _, item := range items {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}

func enumField(raw map[string]any, key string, allowed []string, fallback string) string {
	s, ok := raw[key].(string)
	if !ok {
		return fallback
	}
	s = strings.ToLower(strings.TrimSpace(s))
	for _, a := range allowed {
		if s == a {
			return s
		}
	}
	return fallback
}

func boolField(raw map[string]any, key string) bool {
	b, ok := raw[key].(bool)
	return ok && b
}

func floatField(raw map[string]any, key string) float64 {
	switch v := raw[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}
