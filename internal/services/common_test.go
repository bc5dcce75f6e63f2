package services

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wolverine5550/lexsona-backend/internal/logger"
	"github.com/wolverine5550/lexsona-backend/internal/types"
)

var (
	testLogOnce sync.Once
	testLog     *logger.Logger
)

func testLogger(tb testing.TB) *logger.Logger {
	tb.Helper()
	testLogOnce.Do(func() {
		var err error
		testLog, err = logger.New("test")
		if err != nil {
			tb.Fatalf("failed to init logger: %v", err)
		}
	})
	return testLog
}

// --- repo fakes ---

type fakePrefsRepo struct {
	prefs map[uuid.UUID]*types.AuthorPreferences
}

func (f *fakePrefsRepo) GetByUserID(_ context.Context, _ *gorm.DB, userID uuid.UUID) (*types.AuthorPreferences, error) {
	return f.prefs[userID], nil
}

func (f *fakePrefsRepo) Upsert(_ context.Context, _ *gorm.DB, prefs *types.AuthorPreferences) (*types.AuthorPreferences, error) {
	if f.prefs == nil {
		f.prefs = map[uuid.UUID]*types.AuthorPreferences{}
	}
	f.prefs[prefs.UserID] = prefs
	return prefs, nil
}

type fakeAdjRepo struct {
	adjustments map[uuid.UUID]*types.PreferenceAdjustment
	upsertErr   error
	failUser    uuid.UUID
	upserts     int
}

func (f *fakeAdjRepo) GetByUserID(_ context.Context, _ *gorm.DB, userID uuid.UUID) (*types.PreferenceAdjustment, error) {
	return f.adjustments[userID], nil
}

func (f *fakeAdjRepo) Upsert(_ context.Context, _ *gorm.DB, adj *types.PreferenceAdjustment) (*types.PreferenceAdjustment, error) {
	if f.upsertErr != nil && (f.failUser == uuid.Nil || f.failUser == adj.UserID) {
		return nil, f.upsertErr
	}
	if f.adjustments == nil {
		f.adjustments = map[uuid.UUID]*types.PreferenceAdjustment{}
	}
	f.adjustments[adj.UserID] = adj
	f.upserts++
	return adj, nil
}

type fakePodcastRepo struct {
	catalogue []*types.Podcast
}

func (f *fakePodcastRepo) Create(_ context.Context, _ *gorm.DB, podcasts []*types.Podcast) ([]*types.Podcast, error) {
	f.catalogue = append(f.catalogue, podcasts...)
	return podcasts, nil
}

func (f *fakePodcastRepo) GetAll(_ context.Context, _ *gorm.DB) ([]*types.Podcast, error) {
	return f.catalogue, nil
}

func (f *fakePodcastRepo) GetByIDs(_ context.Context, _ *gorm.DB, ids []uuid.UUID) ([]*types.Podcast, error) {
	var out []*types.Podcast
	for _, p := range f.catalogue {
		for _, id := range ids {
			if p.ID == id {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func (f *fakePodcastRepo) UpsertByExternalID(_ context.Context, _ *gorm.DB, podcast *types.Podcast) (*types.Podcast, error) {
	for _, existing := range f.catalogue {
		if existing.ExternalID == podcast.ExternalID {
			return existing, nil
		}
	}
	// Deterministic ids keep assertions stable across runs.
	podcast.ID = uuid.NewSHA1(uuid.NameSpaceOID, []byte(podcast.ExternalID))
	f.catalogue = append(f.catalogue, podcast)
	return podcast, nil
}

type fakeFeaturesRepo struct {
	byPodcast map[uuid.UUID]*types.PodcastFeatures
	replaces  int
}

func (f *fakeFeaturesRepo) GetByPodcastID(_ context.Context, _ *gorm.DB, podcastID uuid.UUID) (*types.PodcastFeatures, error) {
	return f.byPodcast[podcastID], nil
}

func (f *fakeFeaturesRepo) GetByPodcastIDs(_ context.Context, _ *gorm.DB, podcastIDs []uuid.UUID) ([]*types.PodcastFeatures, error) {
	var out []*types.PodcastFeatures
	for _, id := range podcastIDs {
		if feats, ok := f.byPodcast[id]; ok {
			out = append(out, feats)
		}
	}
	return out, nil
}

func (f *fakeFeaturesRepo) Replace(_ context.Context, _ *gorm.DB, features *types.PodcastFeatures) (*types.PodcastFeatures, error) {
	if f.byPodcast == nil {
		f.byPodcast = map[uuid.UUID]*types.PodcastFeatures{}
	}
	f.byPodcast[features.PodcastID] = features
	f.replaces++
	return features, nil
}

type fakeFeedbackRepo struct {
	rows []*types.PodcastFeedback
}

func (f *fakeFeedbackRepo) Create(_ context.Context, _ *gorm.DB, rows []*types.PodcastFeedback) ([]*types.PodcastFeedback, error) {
	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
	}
	f.rows = append(f.rows, rows...)
	return rows, nil
}

func (f *fakeFeedbackRepo) GetUnprocessed(_ context.Context, _ *gorm.DB, limit int) ([]*types.PodcastFeedback, error) {
	var out []*types.PodcastFeedback
	for _, row := range f.rows {
		if !row.IsProcessed {
			out = append(out, row)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (f *fakeFeedbackRepo) GetByUserID(_ context.Context, _ *gorm.DB, userID uuid.UUID) ([]*types.PodcastFeedback, error) {
	var out []*types.PodcastFeedback
	for _, row := range f.rows {
		if row.UserID == userID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeFeedbackRepo) GetByPodcastID(_ context.Context, _ *gorm.DB, podcastID uuid.UUID) ([]*types.PodcastFeedback, error) {
	var out []*types.PodcastFeedback
	for _, row := range f.rows {
		if row.PodcastID == podcastID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeFeedbackRepo) MarkProcessed(_ context.Context, _ *gorm.DB, id uuid.UUID) (bool, error) {
	for _, row := range f.rows {
		if row.ID == id && !row.IsProcessed {
			row.IsProcessed = true
			return true, nil
		}
	}
	return false, nil
}

type fakeMetricsRepo struct {
	byPodcast map[uuid.UUID]*types.PodcastMetrics
	upsertErr error
}

func (f *fakeMetricsRepo) GetByPodcastID(_ context.Context, _ *gorm.DB, podcastID uuid.UUID) (*types.PodcastMetrics, error) {
	return f.byPodcast[podcastID], nil
}

func (f *fakeMetricsRepo) Upsert(_ context.Context, _ *gorm.DB, metrics *types.PodcastMetrics) (*types.PodcastMetrics, error) {
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}
	if f.byPodcast == nil {
		f.byPodcast = map[uuid.UUID]*types.PodcastMetrics{}
	}
	f.byPodcast[metrics.PodcastID] = metrics
	return metrics, nil
}

// --- capability fakes ---

type fakeAnalysisClient struct {
	response map[string]any
	err      error
	calls    int
}

func (f *fakeAnalysisClient) AnalyzeJSON(_ context.Context, _ string, _ string) (map[string]any, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

type fakeSearchClient struct {
	result *SearchResult
	err    error
	calls  int
}

func (f *fakeSearchClient) Search(_ context.Context, _ string, _ SearchFilters) (*SearchResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeLocalMatcher struct {
	local  []types.PodcastMatch
	remote []types.PodcastMatch
}

func (f *fakeLocalMatcher) FindLocalMatches(_ context.Context, _ uuid.UUID) ([]types.PodcastMatch, error) {
	return f.local, nil
}

func (f *fakeLocalMatcher) ScoreCandidates(_ context.Context, _ *types.AuthorPreferences, _ *types.PreferenceAdjustment, _ []*types.Podcast) []types.PodcastMatch {
	return f.remote
}

// --- fixture helpers ---

func testPrefs(userID uuid.UUID, topics ...string) *types.AuthorPreferences {
	return &types.AuthorPreferences{
		ID:              uuid.New(),
		UserID:          userID,
		Topics:          encodeJSON(topics),
		PreferredLength: "medium",
		StyleInterview:  true,
		ExpertiseLevel:  "intermediate",
		TargetAudience:  "general",
	}
}

func testMatch(podcastID uuid.UUID, score, confidence float64, reasons ...string) types.PodcastMatch {
	return types.PodcastMatch{
		ID:           "match-" + podcastID.String(),
		PodcastID:    podcastID,
		OverallScore: score,
		Confidence:   confidence,
		Breakdown: types.MatchBreakdown{
			TopicScore:      score,
			StyleScore:      score,
			LengthScore:     score,
			ComplexityScore: score,
			ExpertiseScore:  score,
			AudienceScore:   score,
			FormatScore:     score,
			QualityScore:    score,
			Explanations:    reasons,
		},
	}
}
