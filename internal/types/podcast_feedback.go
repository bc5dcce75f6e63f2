package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	FeedbackLike     = "like"
	FeedbackDislike  = "dislike"
	FeedbackSave     = "save"
	FeedbackListen   = "listen"
	FeedbackComplete = "complete"
)

// PodcastFeedback is one recorded user interaction. The log is append-only;
// the feedback processor marks rows processed but never deletes them.
type PodcastFeedback struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	PodcastID uuid.UUID `gorm:"type:uuid;not null;index" json:"podcast_id"`

	// FeedbackType is one of like/dislike/save/listen/complete.
	FeedbackType string `gorm:"not null" json:"feedback_type"`
	Rating       *int   `json:"rating,omitempty"`
	// Categories are the topic slugs the interaction counts toward.
	Categories datatypes.JSON `gorm:"type:jsonb" json:"categories,omitempty"`
	// PodcastStyle buckets style signal: interview/narrative/educational/debate.
	PodcastStyle string         `json:"podcast_style,omitempty"`
	Metadata     datatypes.JSON `gorm:"type:jsonb" json:"metadata,omitempty"`

	IsProcessed bool      `gorm:"not null;default:false;index" json:"is_processed"`
	CreatedAt   time.Time `gorm:"not null;index" json:"created_at"`
}

func (PodcastFeedback) TableName() string { return "podcast_feedback" }
