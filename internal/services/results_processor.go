package services

import (
	"errors"
	"sort"

	"github.com/google/uuid"

	"github.com/wolverine5550/lexsona-backend/internal/types"
)

// ErrInvalidMatchData aborts an entire processing batch. Malformed match data
// means a bug in the scorer upstream, so no partial results are produced.
var ErrInvalidMatchData = errors.New("Invalid match data")

const highQualityConfidence = 0.7

// ProcessedResults is the presentable result set for one matching run.
// AppliedFilters is the deduplicated union of every match's reasons.
type ProcessedResults struct {
	AppliedFilters []string                     `json:"applied_filters"`
	Results        []types.ProcessedMatchResult `json:"results"`
}

// ProcessResults validates, ranks and annotates raw match scores. Any single
// invalid record fails the whole batch; feedback ingestion is resilient
// per-item, match data is not.
func ProcessResults(matches []types.PodcastMatch) (*ProcessedResults, error) {
	for i := range matches {
		if !validMatch(&matches[i]) {
			return nil, ErrInvalidMatchData
		}
	}

	ordered := make([]types.PodcastMatch, len(matches))
	copy(ordered, matches)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].OverallScore > ordered[j].OverallScore
	})

	var appliedFilters []string
	seen := make(map[string]bool)
	results := make([]types.ProcessedMatchResult, 0, len(ordered))
	for i := range ordered {
		m := ordered[i]
		for _, reason := range m.Breakdown.Explanations {
			if !seen[reason] {
				seen[reason] = true
				appliedFilters = append(appliedFilters, reason)
			}
		}

		quality := "low"
		if m.Confidence >= highQualityConfidence {
			quality = "high"
		}
		results = append(results, types.ProcessedMatchResult{
			PodcastMatch:   m,
			Rank:           i + 1,
			QualityLevel:   quality,
			MatchStrength:  m.OverallScore,
			DisplayReasons: m.Breakdown.Explanations,
		})
	}

	return &ProcessedResults{
		AppliedFilters: appliedFilters,
		Results:        results,
	}, nil
}

func validMatch(m *types.PodcastMatch) bool {
	if m.PodcastID == uuid.Nil {
		return false
	}
	if !in01(m.OverallScore) || !in01(m.Confidence) {
		return false
	}
	b := m.Breakdown
	for _, s := range []float64{
		b.TopicScore, b.ExpertiseScore, b.StyleScore, b.AudienceScore,
		b.FormatScore, b.LengthScore, b.ComplexityScore, b.QualityScore,
	} {
		if !in01(s) {
			return false
		}
	}
	return true
}

func in01(v float64) bool {
	return v >= 0 && v <= 1
}
