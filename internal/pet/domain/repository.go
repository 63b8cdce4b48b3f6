package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Repository persists pets. Methods take the database handle so the service
// can run the submission pipeline inside one transaction. Mutations are
// expressed at the storage layer (unique insert, in-place increment) so
// concurrent requests cannot race an application-level read-modify-write.
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, pet *Pet) error
	FindByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*Pet, error)
	FindByID(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) (*Pet, error)
	UpdateHealth(ctx context.Context, db *gorm.DB, id snowflake.ID, healthScore float64, now time.Time) error
	IncrementGoodContent(ctx context.Context, db *gorm.DB, id snowflake.ID, now time.Time) error
}
