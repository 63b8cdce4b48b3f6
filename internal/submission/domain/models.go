package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/tamedachi/tamedachi/internal/scoring"
)

// Submission is one scored URL. Rows are append-only: nothing updates or
// deletes them, and the pet's health is always recomputed from the full set.
type Submission struct {
	ID               snowflake.ID            `gorm:"primaryKey" json:"id"`
	UserID           snowflake.ID            `gorm:"not null;index" json:"user_id"`
	PetID            snowflake.ID            `gorm:"not null;index" json:"pet_id"`
	URL              string                  `gorm:"type:text;not null" json:"url"`
	CredibilityScore float64                 `gorm:"not null" json:"credibility_score"`
	QualityCategory  scoring.QualityCategory `gorm:"type:text;not null" json:"quality_category"`
	IsGoodContent    bool                    `gorm:"not null" json:"is_good_content"`
	SubmittedAt      time.Time               `gorm:"not null;default:CURRENT_TIMESTAMP;index:idx_content_submissions_user_submitted,priority:2" json:"submitted_at"`
}

// TableName sets the database table name.
func (Submission) TableName() string { return "content_submissions" }

// Stats summarizes a user's submission history.
type Stats struct {
	TotalChecks      int64   `json:"totalChecks"`
	GoodContentCount int64   `json:"goodContentCount"`
	AccuracyRate     float64 `json:"accuracyRate"`
}
