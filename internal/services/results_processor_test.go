package services

import (
	"errors"
	"reflect"
	"testing"

	"github.com/google/uuid"

	"github.com/wolverine5550/lexsona-backend/internal/types"
)

func TestProcessResultsRanksByScore(t *testing.T) {
	a := testMatch(uuid.New(), 0.4, 0.9)
	b := testMatch(uuid.New(), 0.8, 0.9)
	c := testMatch(uuid.New(), 0.6, 0.4)

	processed, err := ProcessResults([]types.PodcastMatch{a, b, c})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(processed.Results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(processed.Results))
	}

	wantOrder := []uuid.UUID{b.PodcastID, c.PodcastID, a.PodcastID}
	for i, r := range processed.Results {
		if r.PodcastID != wantOrder[i] {
			t.Fatalf("result %d: got podcast %s, want %s", i, r.PodcastID, wantOrder[i])
		}
		if r.Rank != i+1 {
			t.Fatalf("result %d: rank %d, want %d", i, r.Rank, i+1)
		}
		if r.MatchStrength != r.OverallScore {
			t.Fatalf("match strength should mirror the overall score")
		}
	}

	if processed.Results[0].QualityLevel != "high" {
		t.Fatalf("confidence 0.9 should be high quality, got %q", processed.Results[0].QualityLevel)
	}
	if processed.Results[1].QualityLevel != "low" {
		t.Fatalf("confidence 0.4 should be low quality, got %q", processed.Results[1].QualityLevel)
	}
}

func TestProcessResultsUnionsAppliedFilters(t *testing.T) {
	a := testMatch(uuid.New(), 0.9, 0.9, reasonStrongTopic, reasonStyleMatch)
	b := testMatch(uuid.New(), 0.7, 0.9, reasonStyleMatch, reasonHighQuality)
	c := testMatch(uuid.New(), 0.5, 0.9)

	processed, err := ProcessResults([]types.PodcastMatch{a, b, c})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{reasonStrongTopic, reasonStyleMatch, reasonHighQuality}
	if !reflect.DeepEqual(processed.AppliedFilters, want) {
		t.Fatalf("applied filters = %v, want deduplicated first-seen order %v", processed.AppliedFilters, want)
	}

	if !reflect.DeepEqual(processed.Results[0].DisplayReasons, a.Breakdown.Explanations) {
		t.Fatalf("display reasons should carry the match's own explanations")
	}
}

func TestProcessResultsRejectsWholeBatch(t *testing.T) {
	valid := testMatch(uuid.New(), 0.8, 0.8)

	invalid := []types.PodcastMatch{
		func() types.PodcastMatch {
			m := testMatch(uuid.New(), 0.8, 0.8)
			m.PodcastID = uuid.Nil
			return m
		}(),
		testMatch(uuid.New(), 1.2, 0.8),
		testMatch(uuid.New(), 0.8, -0.1),
		func() types.PodcastMatch {
			m := testMatch(uuid.New(), 0.8, 0.8)
			m.Breakdown.TopicScore = 2.0
			return m
		}(),
	}

	for i, bad := range invalid {
		processed, err := ProcessResults([]types.PodcastMatch{valid, bad})
		if !errors.Is(err, ErrInvalidMatchData) {
			t.Fatalf("case %d: expected ErrInvalidMatchData, got %v", i, err)
		}
		if err.Error() != "Invalid match data" {
			t.Fatalf("case %d: unexpected error message %q", i, err.Error())
		}
		if processed != nil {
			t.Fatalf("case %d: no partial results on validation failure", i)
		}
	}
}

func TestProcessResultsEmptyInput(t *testing.T) {
	processed, err := ProcessResults(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(processed.Results) != 0 || len(processed.AppliedFilters) != 0 {
		t.Fatalf("empty input should produce an empty result set, got %+v", processed)
	}
}
