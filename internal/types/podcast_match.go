package types

import "github.com/google/uuid"

// MatchBreakdown carries the per-factor subscores behind an overall match
// score, plus the human-readable reasons generated for notable factors.
type MatchBreakdown struct {
	TopicScore      float64 `json:"topic_score"`
	ExpertiseScore  float64 `json:"expertise_score"`
	StyleScore      float64 `json:"style_score"`
	AudienceScore   float64 `json:"audience_score"`
	FormatScore     float64 `json:"format_score"`
	LengthScore     float64 `json:"length_score"`
	ComplexityScore float64 `json:"complexity_score"`
	QualityScore    float64 `json:"quality_score"`

	Explanations []string `json:"explanations"`
}

// PodcastSummary is the denormalized display payload attached to a match.
type PodcastSummary struct {
	Title           string  `json:"title"`
	Category        string  `json:"category"`
	Description     string  `json:"description"`
	ListenerCount   int     `json:"listener_count"`
	Rating          float64 `json:"rating"`
	UpdateFrequency string  `json:"update_frequency"`
}

// PodcastMatch is one scored author/podcast pairing. Matches are computed per
// run and cached with a TTL; they are not a persisted source of truth.
type PodcastMatch struct {
	ID        string    `json:"id"`
	PodcastID uuid.UUID `json:"podcast_id"`

	OverallScore float64 `json:"overall_score"`
	// Confidence reflects how complete the input data was, not how good the
	// match is.
	Confidence float64        `json:"confidence"`
	Breakdown  MatchBreakdown `json:"breakdown"`

	SuggestedTopics []string       `json:"suggested_topics"`
	Podcast         PodcastSummary `json:"podcast"`
}

// ProcessedMatchResult wraps a validated match with its presentation fields.
type ProcessedMatchResult struct {
	PodcastMatch

	Rank           int      `json:"rank"`
	QualityLevel   string   `json:"quality_level"`
	MatchStrength  float64  `json:"match_strength"`
	DisplayReasons []string `json:"display_reasons"`
}
