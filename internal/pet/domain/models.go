package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/tamedachi/tamedachi/internal/scoring"
)

// DefaultPetName is given to every pet at hatch time.
const DefaultPetName = "Tamedachi"

// Pet is the single virtual pet owned by a user. health_score always equals
// the ledger average for that user (or the neutral default before the first
// submission), and age_years is always good_content_count / 100. Both are
// maintained inside the same transaction that writes the ledger.
type Pet struct {
	ID               snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID           snowflake.ID `gorm:"not null;uniqueIndex:ux_pets_user" json:"user_id"`
	Name             string       `gorm:"not null;default:Tamedachi" json:"name"`
	HealthScore      float64      `gorm:"not null;default:50" json:"health_score"`
	GoodContentCount int64        `gorm:"not null;default:0" json:"good_content_count"`
	AgeYears         int64        `gorm:"not null;default:0" json:"age_years"`
	CreatedAt        time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Pet) TableName() string { return "pets" }

// View is the display-facing pet state, derived on every read.
type View struct {
	Pet
	HealthState scoring.HealthStateInfo `json:"health_state"`
	GrowthStage scoring.GrowthStage     `json:"growth_stage"`
}

// ViewOf derives the display state from the stored pet.
func ViewOf(pet Pet) View {
	return View{
		Pet:         pet,
		HealthState: scoring.CalculateHealthState(pet.HealthScore),
		GrowthStage: scoring.CalculateGrowthStage(pet.GoodContentCount),
	}
}
