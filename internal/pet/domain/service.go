package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/tamedachi/tamedachi/internal/scoring"
	submissiondomain "github.com/tamedachi/tamedachi/internal/submission/domain"
)

// AnalysisResult is the scored outcome handed to the engine after an
// external credibility check.
type AnalysisResult struct {
	URL              string                  `json:"url"`
	CredibilityScore float64                 `json:"credibilityScore"`
	QualityCategory  scoring.QualityCategory `json:"qualityCategory"`
	IsGoodContent    bool                    `json:"isGoodContent"`
	Analysis         string                  `json:"analysis"`
}

type ApplySubmissionRequest struct {
	UserID snowflake.ID
	PetID  snowflake.ID
	Result AnalysisResult
}

// ApplySubmissionResponse carries both the appended ledger row and the pet
// state after health, counter and age were updated.
type ApplySubmissionResponse struct {
	Pet        View                        `json:"pet"`
	Submission submissiondomain.Submission `json:"submission"`
}

type Service interface {
	Create(ctx context.Context, userID snowflake.ID) (View, error)
	Get(ctx context.Context, userID snowflake.ID) (View, error)
	ApplySubmission(ctx context.Context, req ApplySubmissionRequest) (ApplySubmissionResponse, error)
}

var (
	ErrInvalidUser       = errors.New("invalid_user")
	ErrInvalidPetID      = errors.New("invalid_pet_id")
	ErrPetExists         = errors.New("pet_exists")
	ErrPetNotFound       = errors.New("pet_not_found")
	ErrInvalidSubmission = errors.New("invalid_submission")
)

// Step names the stage of submission processing that failed, so callers can
// tell the user exactly what succeeded and what did not.
type Step string

const (
	StepLedgerWrite      Step = "ledger_write"
	StepHealthUpdate     Step = "health_update"
	StepCounterIncrement Step = "counter_increment"
)

// StepError wraps a persistence failure with the step it happened in.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return string(e.Step) + ": " + e.Err.Error()
}

func (e *StepError) Unwrap() error {
	return e.Err
}
