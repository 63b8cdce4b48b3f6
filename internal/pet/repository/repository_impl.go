package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/tamedachi/tamedachi/internal/pet/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, pet *domain.Pet) error {
	// Plain insert; the ux_pets_user unique constraint is what enforces
	// one-pet-per-user, so concurrent hatches cannot both win.
	return db.WithContext(ctx).Exec(
		`INSERT INTO pets (id, user_id, name, health_score, good_content_count, age_years, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		pet.ID,
		pet.UserID,
		pet.Name,
		pet.HealthScore,
		pet.GoodContentCount,
		pet.AgeYears,
		pet.CreatedAt,
		pet.UpdatedAt,
	).Error
}

func (r *repo) FindByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*domain.Pet, error) {
	var pet domain.Pet
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, name, health_score, good_content_count, age_years, created_at, updated_at
		 FROM pets WHERE user_id = ?`,
		userID,
	).Scan(&pet).Error
	if err != nil {
		return nil, err
	}
	if pet.ID == 0 {
		return nil, nil
	}
	return &pet, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) (*domain.Pet, error) {
	var pet domain.Pet
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, name, health_score, good_content_count, age_years, created_at, updated_at
		 FROM pets WHERE user_id = ? AND id = ?`,
		userID,
		id,
	).Scan(&pet).Error
	if err != nil {
		return nil, err
	}
	if pet.ID == 0 {
		return nil, nil
	}
	return &pet, nil
}

func (r *repo) UpdateHealth(ctx context.Context, db *gorm.DB, id snowflake.ID, healthScore float64, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE pets SET health_score = ?, updated_at = ? WHERE id = ?`,
		healthScore,
		now,
		id,
	).Error
}

func (r *repo) IncrementGoodContent(ctx context.Context, db *gorm.DB, id snowflake.ID, now time.Time) error {
	// Counter and derived age move in one statement so no reader can ever
	// observe them inconsistent, and concurrent increments never lose
	// updates. Subtracting the modulus first keeps the numerator an exact
	// multiple of 100: MySQL's / is decimal division (50 / 100 rounds to 1
	// when stored into a BIGINT column), while postgres and sqlite
	// truncate, so a bare division only floors on two of the three
	// dialects. age_years stays floor(count / 100) everywhere.
	return db.WithContext(ctx).Exec(
		`UPDATE pets
		 SET age_years = (good_content_count + 1 - (good_content_count + 1) % 100) / 100,
		     good_content_count = good_content_count + 1,
		     updated_at = ?
		 WHERE id = ?`,
		now,
		id,
	).Error
}
