package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// PreferenceAdjustment is the advisory weight set derived from a user's full
// feedback history. It is recomputed from scratch every processing cycle, so
// rewriting it is idempotent for a given feedback log.
type PreferenceAdjustment struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`

	// TopicWeights maps topic slug to a normalized weight. Weights over the
	// observed positive topics sum to 1.
	TopicWeights datatypes.JSON `gorm:"type:jsonb" json:"topic_weights"`

	// Style weights are normalized to sum to 1; 0.25 each with no signal.
	StyleInterview   float64 `gorm:"not null;default:0.25" json:"style_interview"`
	StyleNarrative   float64 `gorm:"not null;default:0.25" json:"style_narrative"`
	StyleEducational float64 `gorm:"not null;default:0.25" json:"style_educational"`
	StyleDebate      float64 `gorm:"not null;default:0.25" json:"style_debate"`

	LastAdjusted time.Time `gorm:"not null" json:"last_adjusted"`
}

func (PreferenceAdjustment) TableName() string { return "preference_adjustment" }
