package services

import (
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wolverine5550/lexsona-backend/internal/types"
)

// MatchWeights is the fixed linear combination behind an overall score. The
// defaults are documented here and must sum to 1; scoring is deterministic
// for a given weight set.
type MatchWeights struct {
	Topic      float64 `yaml:"topic"`
	Style      float64 `yaml:"style"`
	Length     float64 `yaml:"length"`
	Complexity float64 `yaml:"complexity"`
	Expertise  float64 `yaml:"expertise"`
	Audience   float64 `yaml:"audience"`
	Format     float64 `yaml:"format"`
	Quality    float64 `yaml:"quality"`
}

// DefaultMatchWeights: topic dominates, the remaining factors share the rest.
func DefaultMatchWeights() MatchWeights {
	return MatchWeights{
		Topic:      0.25,
		Style:      0.15,
		Length:     0.10,
		Complexity: 0.10,
		Expertise:  0.10,
		Audience:   0.10,
		Format:     0.10,
		Quality:    0.10,
	}
}

func (w MatchWeights) Validate() error {
	vals := []float64{w.Topic, w.Style, w.Length, w.Complexity, w.Expertise, w.Audience, w.Format, w.Quality}
	sum := 0.0
	for _, v := range vals {
		if v < 0 {
			return fmt.Errorf("match weights must be non-negative")
		}
		sum += v
	}
	if math.Abs(sum-1.0) > 1e-6 {
		return fmt.Errorf("match weights must sum to 1, got %.6f", sum)
	}
	return nil
}

// LoadMatchWeights reads a YAML override file, falling back to the defaults
// when path is empty.
func LoadMatchWeights(path string) (MatchWeights, error) {
	if path == "" {
		return DefaultMatchWeights(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return MatchWeights{}, fmt.Errorf("read match weights: %w", err)
	}
	var w MatchWeights
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return MatchWeights{}, fmt.Errorf("parse match weights: %w", err)
	}
	if err := w.Validate(); err != nil {
		return MatchWeights{}, err
	}
	return w, nil
}

// Explanation strings surfaced per notable factor; the results processor
// unions these into the batch's applied filters.
const (
	reasonStrongTopic    = "Strong topic alignment"
	reasonTopicMatch     = "Topic match"
	reasonStyleMatch     = "Style match"
	reasonIdealLength    = "Ideal episode length"
	reasonHighQuality    = "High production quality"
	reasonExpertiseFit   = "Audience expertise fit"
	reasonHighConfidence = "High confidence match"
)

// ScoreMatch computes the compatibility between an author's preferences and
// one podcast's derived features. Pure: no I/O, no clock, no randomness.
// adjustment may be nil; when present its derived weights inform the topic
// and style factors without replacing the explicit preferences.
func ScoreMatch(
	prefs *types.AuthorPreferences,
	adjustment *types.PreferenceAdjustment,
	podcast *types.Podcast,
	features *types.PodcastFeatures,
	weights MatchWeights,
) types.PodcastMatch {
	authorTopics := decodeStringSlice(prefs.Topics)
	mainTopics := decodeStringSlice(features.MainTopics)
	hostingTags := decodeStringSlice(features.HostingStyle)

	var topicWeights map[string]float64
	if adjustment != nil {
		topicWeights = decodeFloatMap(adjustment.TopicWeights)
	}

	breakdown := types.MatchBreakdown{
		TopicScore:      topicScore(authorTopics, mainTopics, topicWeights),
		StyleScore:      styleScore(prefs, features, adjustment),
		LengthScore:     lengthScore(prefs.PreferredLength, features.AverageEpisodeLength),
		ComplexityScore: complexityScore(prefs.ExpertiseLevel, features.LanguageComplexity),
		ExpertiseScore:  expertiseScore(prefs.ExpertiseLevel, features.ComplexityLevel),
		AudienceScore:   audienceScore(prefs.TargetAudience, features.ComplexityLevel),
		FormatScore:     formatScore(prefs, hostingTags),
		QualityScore:    qualityScore(features.ProductionQuality, podcast.Rating),
	}

	overall := clamp01(
		weights.Topic*breakdown.TopicScore +
			weights.Style*breakdown.StyleScore +
			weights.Length*breakdown.LengthScore +
			weights.Complexity*breakdown.ComplexityScore +
			weights.Expertise*breakdown.ExpertiseScore +
			weights.Audience*breakdown.AudienceScore +
			weights.Format*breakdown.FormatScore +
			weights.Quality*breakdown.QualityScore,
	)

	confidence := inputConfidence(podcast, features, mainTopics, hostingTags)
	breakdown.Explanations = explain(breakdown, confidence)

	return types.PodcastMatch{
		ID:              "match-" + podcast.ID.String(),
		PodcastID:       podcast.ID,
		OverallScore:    overall,
		Confidence:      confidence,
		Breakdown:       breakdown,
		SuggestedTopics: suggestTopics(authorTopics, mainTopics),
		Podcast: types.PodcastSummary{
			Title:           podcast.Title,
			Category:        podcast.Category,
			Description:     podcast.Description,
			ListenerCount:   podcast.ListenerCount,
			Rating:          podcast.Rating,
			UpdateFrequency: features.UpdateFrequency,
		},
	}
}

func topicScore(authorTopics, mainTopics []string, adjWeights map[string]float64) float64 {
	if len(authorTopics) == 0 {
		return 0
	}
	podcastSet := make(map[string]bool, len(mainTopics))
	for _, t := range mainTopics {
		podcastSet[normalizeTopic(t)] = true
	}

	matched := 0
	weightedCoverage := 0.0
	for _, t := range authorTopics {
		if podcastSet[normalizeTopic(t)] {
			matched++
			weightedCoverage += adjWeights[normalizeTopic(t)]
		}
	}
	base := float64(matched) / float64(len(authorTopics))
	if len(adjWeights) == 0 {
		return clamp01(base)
	}
	// Blend in the feedback-derived topic weights: topics the user engaged
	// with recently count for more than the flat intersection ratio.
	return clamp01(0.7*base + 0.3*clamp01(weightedCoverage))
}

func styleScore(prefs *types.AuthorPreferences, features *types.PodcastFeatures, adjustment *types.PreferenceAdjustment) float64 {
	type stylePair struct {
		wanted bool
		has    bool
		weight float64
	}
	pairs := []stylePair{
		{prefs.StyleInterview, features.StyleInterview, 0.25},
		{prefs.StyleStorytelling, features.StyleStorytelling, 0.25},
		{prefs.StyleEducational, features.StyleEducational, 0.25},
		{prefs.StyleDebate, features.StyleDebate, 0.25},
	}
	if adjustment != nil {
		pairs[0].weight = adjustment.StyleInterview
		pairs[1].weight = adjustment.StyleNarrative
		pairs[2].weight = adjustment.StyleEducational
		pairs[3].weight = adjustment.StyleDebate
	}

	selectedWeight := 0.0
	matchedWeight := 0.0
	for _, p := range pairs {
		if !p.wanted {
			continue
		}
		selectedWeight += p.weight
		if p.has {
			matchedWeight += p.weight
		}
	}
	if selectedWeight == 0 {
		// No explicit style preference: neutral.
		return 0.5
	}
	return clamp01(matchedWeight / selectedWeight)
}

func lengthBucket(minutes int) string {
	switch {
	case minutes <= 0:
		return ""
	case minutes < 20:
		return "short"
	case minutes <= 45:
		return "medium"
	default:
		return "long"
	}
}

func lengthScore(preferred string, avgMinutes int) float64 {
	bucket := lengthBucket(avgMinutes)
	if bucket == "" || preferred == "" {
		return 0.5
	}
	order := map[string]int{"short": 0, "medium": 1, "long": 2}
	pi, ok1 := order[preferred]
	bi, ok2 := order[bucket]
	if !ok1 || !ok2 {
		return 0.5
	}
	switch abs(pi - bi) {
	case 0:
		return 1.0
	case 1:
		return 0.5
	default:
		return 0.2
	}
}

func expertiseIndex(level string) int {
	switch strings.ToLower(level) {
	case "beginner":
		return 0
	case "expert", "advanced":
		return 2
	default:
		return 1
	}
}

func complexityIndex(level string) int {
	switch strings.ToLower(level) {
	case "beginner":
		return 0
	case "advanced":
		return 2
	default:
		return 1
	}
}

// complexityScore compares the podcast's measured language complexity with
// the level implied by the author's expertise.
func complexityScore(expertise string, languageComplexity float64) float64 {
	if languageComplexity <= 0 {
		return 0.5
	}
	target := float64(expertiseIndex(expertise)) / 2.0
	return clamp01(1.0 - math.Abs(clamp01(languageComplexity)-target))
}

func expertiseScore(expertise, complexityLevel string) float64 {
	diff := abs(expertiseIndex(expertise) - complexityIndex(complexityLevel))
	switch diff {
	case 0:
		return 1.0
	case 1:
		return 0.6
	default:
		return 0.2
	}
}

func audienceScore(targetAudience, complexityLevel string) float64 {
	audience := strings.ToLower(targetAudience)
	if audience == "" || audience == "general" {
		return 0.7
	}
	diff := abs(complexityIndex(audience) - complexityIndex(complexityLevel))
	switch diff {
	case 0:
		return 1.0
	case 1:
		return 0.6
	default:
		return 0.2
	}
}

var hostingTagsByStyle = map[string][]string{
	"interview":    {"interview", "conversational", "guest"},
	"storytelling": {"narrative", "storytelling", "documentary"},
	"educational":  {"educational", "explainer", "lecture"},
	"debate":       {"debate", "panel", "roundtable"},
}

func formatScore(prefs *types.AuthorPreferences, hostingTags []string) float64 {
	if len(hostingTags) == 0 {
		return 0.5
	}
	tagSet := make(map[string]bool, len(hostingTags))
	for _, t := range hostingTags {
		tagSet[strings.ToLower(strings.TrimSpace(t))] = true
	}

	selected := 0
	supported := 0
	check := func(wanted bool, style string) {
		if !wanted {
			return
		}
		selected++
		for _, tag := range hostingTagsByStyle[style] {
			if tagSet[tag] {
				supported++
				return
			}
		}
	}
	check(prefs.StyleInterview, "interview")
	check(prefs.StyleStorytelling, "storytelling")
	check(prefs.StyleEducational, "educational")
	check(prefs.StyleDebate, "debate")

	if selected == 0 {
		return 0.5
	}
	return clamp01(float64(supported) / float64(selected))
}

func qualityScore(productionQuality, rating float64) float64 {
	pq := clamp01(productionQuality)
	if rating <= 0 {
		return pq
	}
	return clamp01(0.7*pq + 0.3*clamp01(rating/5.0))
}

// inputConfidence reflects how complete the inputs were, independent of how
// well they matched.
func inputConfidence(podcast *types.Podcast, features *types.PodcastFeatures, mainTopics, hostingTags []string) float64 {
	present := 0
	total := 8
	if len(mainTopics) > 0 {
		present++
	}
	if len(hostingTags) > 0 {
		present++
	}
	if features.ComplexityLevel != "" {
		present++
	}
	if features.AverageEpisodeLength > 0 {
		present++
	}
	if features.UpdateFrequency != "" {
		present++
	}
	if features.ProductionQuality > 0 {
		present++
	}
	if features.LanguageComplexity > 0 {
		present++
	}
	if strings.TrimSpace(podcast.Description) != "" {
		present++
	}
	return float64(present) / float64(total)
}

func explain(b types.MatchBreakdown, confidence float64) []string {
	var reasons []string
	if b.TopicScore > 0.7 {
		reasons = append(reasons, reasonStrongTopic)
	} else if b.TopicScore >= 0.5 {
		reasons = append(reasons, reasonTopicMatch)
	}
	if b.StyleScore >= 0.75 {
		reasons = append(reasons, reasonStyleMatch)
	}
	if b.LengthScore >= 0.9 {
		reasons = append(reasons, reasonIdealLength)
	}
	if b.QualityScore >= 0.8 {
		reasons = append(reasons, reasonHighQuality)
	}
	if b.ExpertiseScore >= 0.9 {
		reasons = append(reasons, reasonExpertiseFit)
	}
	if confidence >= 0.7 {
		reasons = append(reasons, reasonHighConfidence)
	}
	return reasons
}

func suggestTopics(authorTopics, mainTopics []string) []string {
	authorSet := make(map[string]bool, len(authorTopics))
	for _, t := range authorTopics {
		authorSet[normalizeTopic(t)] = true
	}
	var suggestions []string
	for _, t := range mainTopics {
		if authorSet[normalizeTopic(t)] {
			continue
		}
		suggestions = append(suggestions, t)
		if len(suggestions) == 3 {
			break
		}
	}
	return suggestions
}

func normalizeTopic(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
