package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/tamedachi/tamedachi/internal/scoring"
)

// RecordRequest describes one ledger append. The score must already be
// clamped by the caller; the ledger still rejects out-of-range values as a
// data-integrity error rather than storing them.
type RecordRequest struct {
	UserID           snowflake.ID
	PetID            snowflake.ID
	URL              string
	CredibilityScore float64
	QualityCategory  scoring.QualityCategory
	IsGoodContent    bool
}

type HistoryRequest struct {
	UserID snowflake.ID
	Limit  int
}

type Service interface {
	Record(ctx context.Context, req RecordRequest) (Submission, error)
	AverageScore(ctx context.Context, userID snowflake.ID) (float64, error)
	Stats(ctx context.Context, userID snowflake.ID) (Stats, error)
	History(ctx context.Context, req HistoryRequest) ([]Submission, error)
}

var (
	ErrInvalidUser     = errors.New("invalid_user")
	ErrInvalidPet      = errors.New("invalid_pet")
	ErrInvalidURL      = errors.New("invalid_url")
	ErrInvalidScore    = errors.New("invalid_score")
	ErrInvalidCategory = errors.New("invalid_category")
)
