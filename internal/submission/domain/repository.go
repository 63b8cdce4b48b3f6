package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Repository persists the append-only submission ledger. Methods take the
// database handle so callers can run them inside their own transaction.
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, submission *Submission) error
	AverageScore(ctx context.Context, db *gorm.DB, userID snowflake.ID) (float64, error)
	Stats(ctx context.Context, db *gorm.DB, userID snowflake.ID) (Stats, error)
	List(ctx context.Context, db *gorm.DB, userID snowflake.ID, limit int) ([]Submission, error)
}
