package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// PodcastFeatures is the cached descriptive profile derived for one podcast.
// Rows are never mutated in place; a refresh replaces the whole row.
type PodcastFeatures struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PodcastID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"podcast_id"`

	MainTopics datatypes.JSON `gorm:"type:jsonb" json:"main_topics"`

	StyleInterview    bool `json:"style_interview"`
	StyleStorytelling bool `json:"style_storytelling"`
	StyleEducational  bool `json:"style_educational"`
	StyleDebate       bool `json:"style_debate"`

	ComplexityLevel string `gorm:"not null;default:'intermediate'" json:"complexity_level"`
	// AverageEpisodeLength (minutes) and UpdateFrequency are computed from
	// catalogue metadata, not from the text-analysis response.
	AverageEpisodeLength int    `json:"average_episode_length"`
	UpdateFrequency      string `gorm:"not null;default:'weekly'" json:"update_frequency"`

	ProductionQuality  float64        `json:"production_quality"`
	HostingStyle       datatypes.JSON `gorm:"type:jsonb" json:"hosting_style"`
	LanguageComplexity float64        `json:"language_complexity"`

	ExtractedAt time.Time `gorm:"not null;index" json:"extracted_at"`
}

func (PodcastFeatures) TableName() string { return "podcast_features" }
