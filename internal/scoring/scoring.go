// Package scoring holds the pure credibility and pet-state calculations.
// Everything here is a total function over clamped inputs; persistence and
// transport never leak in.
package scoring

// NeutralScore is both the health score of a freshly hatched pet and the
// average reported for a user with no submissions. The two must stay equal,
// so both read this constant.
const NeutralScore float64 = 50

// GoodContentThreshold marks a submission as good content. It is independent
// of the category bounds on purpose: a score of 55 is "questionable" yet
// still feeds the pet.
const GoodContentThreshold float64 = 50

// QualityCategory buckets a credibility score for display and storage.
type QualityCategory string

const (
	CategoryExcellent    QualityCategory = "excellent"
	CategoryGood         QualityCategory = "good"
	CategoryQuestionable QualityCategory = "questionable"
	CategoryPoor         QualityCategory = "poor"
)

// Valid reports whether the category is one of the stored values.
func (c QualityCategory) Valid() bool {
	switch c {
	case CategoryExcellent, CategoryGood, CategoryQuestionable, CategoryPoor:
		return true
	default:
		return false
	}
}

// Classification is the outcome of scoring a single submission.
type Classification struct {
	Category QualityCategory `json:"category"`
	Message  string          `json:"message"`
	IsGood   bool            `json:"is_good"`
}

// Classify maps a credibility score to its quality category. The caller must
// have clamped score into [0,100] already; bounds are checked descending and
// the first match wins.
func Classify(score float64) Classification {
	c := Classification{IsGood: score >= GoodContentThreshold}
	switch {
	case score >= 80:
		c.Category = CategoryExcellent
		c.Message = "Excellent source! High credibility."
	case score >= 60:
		c.Category = CategoryGood
		c.Message = "Good source. Generally reliable."
	case score >= 40:
		c.Category = CategoryQuestionable
		c.Message = "Questionable source. Be cautious."
	default:
		c.Category = CategoryPoor
		c.Message = "Poor source. Low credibility."
	}
	return c
}

// HealthState describes the pet's mood derived from its health score.
type HealthState string

const (
	StateVeryHappy HealthState = "very-happy"
	StateHealthy   HealthState = "healthy"
	StateNeutral   HealthState = "neutral"
	StateUnhappy   HealthState = "unhappy"
	StateSick      HealthState = "sick"
)

// HealthStateInfo pairs a mood state with its display message.
type HealthStateInfo struct {
	State   HealthState `json:"state"`
	Message string      `json:"message"`
}

// CalculateHealthState maps a health score in [0,100] to one of five moods.
func CalculateHealthState(score float64) HealthStateInfo {
	switch {
	case score >= 80:
		return HealthStateInfo{
			State:   StateVeryHappy,
			Message: "Your Tamedachi is thriving! Keep up the excellent media diet!",
		}
	case score >= 60:
		return HealthStateInfo{
			State:   StateHealthy,
			Message: "Your Tamedachi is doing well! Good job choosing quality content.",
		}
	case score >= 40:
		return HealthStateInfo{
			State:   StateNeutral,
			Message: "Your Tamedachi is okay, but could use better content.",
		}
	case score >= 20:
		return HealthStateInfo{
			State:   StateUnhappy,
			Message: "Your Tamedachi is struggling. Try feeding it better sources!",
		}
	default:
		return HealthStateInfo{
			State:   StateSick,
			Message: "Your Tamedachi needs help! Focus on high-quality, credible sources.",
		}
	}
}

// CalculateAge derives pet age in years from the good-content counter.
func CalculateAge(goodContentCount int64) int64 {
	return goodContentCount / 100
}

// GrowthStage is a discrete band over the good-content counter.
type GrowthStage string

const (
	StageBaby  GrowthStage = "Baby"
	StageChild GrowthStage = "Child"
	StageTeen  GrowthStage = "Teen"
	StageAdult GrowthStage = "Adult"
	StageElder GrowthStage = "Elder"
)

// CalculateGrowthStage picks the band containing the counter. Bands are
// contiguous and the top band is open-ended.
func CalculateGrowthStage(goodContentCount int64) GrowthStage {
	switch {
	case goodContentCount < 100:
		return StageBaby
	case goodContentCount < 200:
		return StageChild
	case goodContentCount < 300:
		return StageTeen
	case goodContentCount < 400:
		return StageAdult
	default:
		return StageElder
	}
}

// Clamp forces a raw score into [0,100]. Used defensively at every boundary
// where an external value enters the engine.
func Clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
