package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuthorPreferences holds the author's explicit matching preferences, set
// through the preferences form. The feedback processor never overwrites
// these; its derived weights live in PreferenceAdjustment.
type AuthorPreferences struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`

	// Topics holds 1-5 topic slugs.
	Topics datatypes.JSON `gorm:"type:jsonb;not null" json:"topics"`
	// PreferredLength is one of "short", "medium", "long".
	PreferredLength string `gorm:"not null;default:'medium'" json:"preferred_length"`

	StyleInterview    bool `json:"style_interview"`
	StyleStorytelling bool `json:"style_storytelling"`
	StyleEducational  bool `json:"style_educational"`
	StyleDebate       bool `json:"style_debate"`

	// ExpertiseLevel is one of "beginner", "intermediate", "expert".
	ExpertiseLevel string `gorm:"not null;default:'intermediate'" json:"expertise_level"`
	// TargetAudience is the audience level the author wants to reach.
	TargetAudience string `gorm:"not null;default:'general'" json:"target_audience"`

	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (AuthorPreferences) TableName() string { return "author_preferences" }
