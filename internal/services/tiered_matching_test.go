package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/wolverine5550/lexsona-backend/internal/types"
)

func newTieredService(t *testing.T, local LocalMatcherService, search PodcastSearchClient, prefsRepo *fakePrefsRepo, adjRepo *fakeAdjRepo, podcastRepo *fakePodcastRepo) TieredMatchingService {
	t.Helper()
	return NewTieredMatchingService(nil, testLogger(t), local, search, podcastRepo, prefsRepo, adjRepo, nil)
}

func TestFindMatchesSkipsRemoteWhenLocalSatisfies(t *testing.T) {
	userID := uuid.New()
	local := []types.PodcastMatch{
		testMatch(uuid.New(), 0.9, 0.8),
		testMatch(uuid.New(), 0.8, 0.8),
		testMatch(uuid.New(), 0.7, 0.8),
	}
	search := &fakeSearchClient{result: &SearchResult{}}
	svc := newTieredService(t,
		&fakeLocalMatcher{local: local},
		search,
		&fakePrefsRepo{prefs: map[uuid.UUID]*types.AuthorPreferences{userID: testPrefs(userID, "technology")}},
		&fakeAdjRepo{},
		&fakePodcastRepo{},
	)

	processed, err := svc.FindMatches(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if search.calls != 0 {
		t.Fatalf("remote search must not run when the local tier satisfies, got %d calls", search.calls)
	}
	if len(processed.Results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(processed.Results))
	}
}

func TestFindMatchesExpandsRemoteWhenLocalInsufficient(t *testing.T) {
	userID := uuid.New()
	localPodcast := uuid.New()
	remotePodcast := uuid.New()

	local := []types.PodcastMatch{testMatch(localPodcast, 0.6, 0.8)}
	remote := []types.PodcastMatch{testMatch(remotePodcast, 0.9, 0.8)}
	search := &fakeSearchClient{result: &SearchResult{
		Results: []SearchResultItem{{ID: "ln-1", Title: "Remote Show", Genres: []string{"Technology"}}},
		Total:   1,
		Count:   1,
	}}
	podcastRepo := &fakePodcastRepo{}
	svc := newTieredService(t,
		&fakeLocalMatcher{local: local, remote: remote},
		search,
		&fakePrefsRepo{prefs: map[uuid.UUID]*types.AuthorPreferences{userID: testPrefs(userID, "technology")}},
		&fakeAdjRepo{},
		podcastRepo,
	)

	processed, err := svc.FindMatches(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if search.calls != 1 {
		t.Fatalf("expected exactly one remote search call, got %d", search.calls)
	}
	if len(podcastRepo.catalogue) != 1 {
		t.Fatalf("remote candidate should be upserted into the catalogue, got %d", len(podcastRepo.catalogue))
	}
	if len(processed.Results) != 2 {
		t.Fatalf("expected merged local+remote results, got %d", len(processed.Results))
	}
	if processed.Results[0].PodcastID != remotePodcast || processed.Results[1].PodcastID != localPodcast {
		t.Fatalf("merged results should be ordered by score: %+v", processed.Results)
	}
}

func TestFindMatchesDeduplicatesLocalFirst(t *testing.T) {
	userID := uuid.New()
	shared := uuid.New()

	local := []types.PodcastMatch{testMatch(shared, 0.6, 0.9)}
	// Same podcast surfaces remotely with a different score; the local entry wins.
	remote := []types.PodcastMatch{testMatch(shared, 0.95, 0.3)}
	svc := newTieredService(t,
		&fakeLocalMatcher{local: local, remote: remote},
		&fakeSearchClient{result: &SearchResult{}},
		&fakePrefsRepo{prefs: map[uuid.UUID]*types.AuthorPreferences{userID: testPrefs(userID, "technology")}},
		&fakeAdjRepo{},
		&fakePodcastRepo{},
	)

	processed, err := svc.FindMatches(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(processed.Results) != 1 {
		t.Fatalf("duplicate podcast should appear once, got %d results", len(processed.Results))
	}
	if processed.Results[0].OverallScore != 0.6 {
		t.Fatalf("local entry should win the collision, got score %v", processed.Results[0].OverallScore)
	}
}

func TestFindMatchesFallsBackOnSearchFailure(t *testing.T) {
	userID := uuid.New()
	localPodcast := uuid.New()
	local := []types.PodcastMatch{testMatch(localPodcast, 0.6, 0.8)}

	for _, searchErr := range []error{ErrSearchRateLimited, ErrSearchUnauthorized, ErrSearchUnavailable} {
		search := &fakeSearchClient{err: searchErr}
		svc := newTieredService(t,
			&fakeLocalMatcher{local: local},
			search,
			&fakePrefsRepo{prefs: map[uuid.UUID]*types.AuthorPreferences{userID: testPrefs(userID, "technology")}},
			&fakeAdjRepo{},
			&fakePodcastRepo{},
		)

		processed, err := svc.FindMatches(context.Background(), userID)
		if err != nil {
			t.Fatalf("%v: remote failure must not fail the request: %v", searchErr, err)
		}
		if search.calls != 1 {
			t.Fatalf("%v: expected one search attempt, got %d", searchErr, search.calls)
		}
		if len(processed.Results) != 1 || processed.Results[0].PodcastID != localPodcast {
			t.Fatalf("%v: expected exactly the local results back, got %+v", searchErr, processed.Results)
		}
	}
}

func TestFindMatchesPropagatesInvalidMatchData(t *testing.T) {
	userID := uuid.New()
	bad := testMatch(uuid.New(), 1.5, 0.8)
	corrupted := []types.PodcastMatch{bad,
		testMatch(uuid.New(), 0.8, 0.8),
		testMatch(uuid.New(), 0.7, 0.8),
	}
	svc := newTieredService(t,
		&fakeLocalMatcher{local: corrupted},
		&fakeSearchClient{result: &SearchResult{}},
		&fakePrefsRepo{prefs: map[uuid.UUID]*types.AuthorPreferences{userID: testPrefs(userID, "technology")}},
		&fakeAdjRepo{},
		&fakePodcastRepo{},
	)

	_, err := svc.FindMatches(context.Background(), userID)
	if !errors.Is(err, ErrInvalidMatchData) {
		t.Fatalf("validation failures must propagate, got %v", err)
	}
}

func TestMergeMatchesOrdersByScore(t *testing.T) {
	a := testMatch(uuid.New(), 0.5, 0.8)
	b := testMatch(uuid.New(), 0.9, 0.8)
	c := testMatch(uuid.New(), 0.7, 0.8)

	merged := mergeMatches([]types.PodcastMatch{a}, []types.PodcastMatch{b, c})
	if len(merged) != 3 {
		t.Fatalf("expected 3 merged matches, got %d", len(merged))
	}
	for i := 1; i < len(merged); i++ {
		if merged[i-1].OverallScore < merged[i].OverallScore {
			t.Fatalf("merged matches not ordered by score: %+v", merged)
		}
	}
}

func TestBuildSearchQueryJoinsTopics(t *testing.T) {
	prefs := testPrefs(uuid.New(), "technology", "startups")
	if got := buildSearchQuery(prefs); got != "technology startups" {
		t.Fatalf("query = %q", got)
	}

	empty := testPrefs(uuid.New())
	if got := buildSearchQuery(empty); got != "podcast" {
		t.Fatalf("empty topics should fall back to a generic query, got %q", got)
	}
}

func TestEpisodesPerMonth(t *testing.T) {
	const monthMS = int64(30 * 24 * 60 * 60 * 1000)
	if got := episodesPerMonth(60, 0, 6*monthMS); got != 10 {
		t.Fatalf("60 episodes over 6 months = %v, want 10", got)
	}
	if got := episodesPerMonth(0, 0, monthMS); got != 0 {
		t.Fatalf("no episodes should yield 0, got %v", got)
	}
	if got := episodesPerMonth(5, monthMS, monthMS); got != 0 {
		t.Fatalf("degenerate date range should yield 0, got %v", got)
	}
}
