package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Podcast is the locally known catalogue entry a matching run iterates.
// Rows are seeded from imports and upserted from remote search results.
type Podcast struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	// ExternalID is the id of the show in the upstream search directory.
	ExternalID  string         `gorm:"uniqueIndex" json:"external_id"`
	Title       string         `gorm:"not null" json:"title"`
	Publisher   string         `json:"publisher"`
	Description string         `json:"description"`
	Category    string         `json:"category"`
	Categories  datatypes.JSON `gorm:"type:jsonb" json:"categories"`
	Language    string         `json:"language"`

	ListenerCount int     `json:"listener_count"`
	Rating        float64 `json:"rating"`
	EpisodeCount  int     `json:"episode_count"`
	// AverageEpisodeMinutes and EpisodesPerMonth come from catalogue metadata
	// and drive the length/frequency feature fields directly.
	AverageEpisodeMinutes int     `json:"average_episode_minutes"`
	EpisodesPerMonth      float64 `json:"episodes_per_month"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Podcast) TableName() string { return "podcast" }
