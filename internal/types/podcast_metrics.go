package types

import (
	"time"

	"github.com/google/uuid"
)

// PodcastMetrics aggregates engagement counts for one podcast, recomputed
// from its full feedback history on every update.
type PodcastMetrics struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PodcastID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"podcast_id"`

	TotalFeedback int `gorm:"not null;default:0" json:"total_feedback"`
	Likes         int `gorm:"not null;default:0" json:"likes"`
	Dislikes      int `gorm:"not null;default:0" json:"dislikes"`
	Saves         int `gorm:"not null;default:0" json:"saves"`
	Listens       int `gorm:"not null;default:0" json:"listens"`
	Completions   int `gorm:"not null;default:0" json:"completions"`

	AverageRating float64 `gorm:"not null;default:0" json:"average_rating"`
	RatingCount   int     `gorm:"not null;default:0" json:"rating_count"`

	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (PodcastMetrics) TableName() string { return "podcast_metrics" }
