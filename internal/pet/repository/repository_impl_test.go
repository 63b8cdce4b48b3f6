package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	petrepo "github.com/tamedachi/tamedachi/internal/pet/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_repo_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	if err := db.Exec(`CREATE TABLE pets (
		id BIGINT PRIMARY KEY,
		user_id BIGINT NOT NULL,
		name TEXT NOT NULL DEFAULT 'Tamedachi',
		health_score DOUBLE PRECISION NOT NULL DEFAULT 50,
		good_content_count BIGINT NOT NULL DEFAULT 0,
		age_years BIGINT NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`).Error; err != nil {
		t.Fatalf("create schema: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	return db
}

// The increment statement derives age_years from the bumped counter in the
// same UPDATE. The derived value must floor on every dialect, so check the
// counts where a half-way division would land on .5 and round up: 49 good
// items plus one more is 50, still age 0, not 1.
func TestIncrementGoodContentAgeBoundaries(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := petrepo.Provide()

	cases := []struct {
		seedCount int64
		wantAge   int64
	}{
		{seedCount: 0, wantAge: 0},
		{seedCount: 49, wantAge: 0},
		{seedCount: 50, wantAge: 0},
		{seedCount: 98, wantAge: 0},
		{seedCount: 99, wantAge: 1},
		{seedCount: 100, wantAge: 1},
		{seedCount: 149, wantAge: 1},
		{seedCount: 199, wantAge: 2},
	}

	now := time.Now().UTC()
	for i, tc := range cases {
		id := snowflake.ID(9000 + i)
		userID := snowflake.ID(8000 + i)
		if err := db.Exec(
			`INSERT INTO pets (id, user_id, name, health_score, good_content_count, age_years, created_at, updated_at)
			 VALUES (?, ?, 'Tamedachi', 50, ?, ?, ?, ?)`,
			id, userID, tc.seedCount, tc.seedCount/100, now, now,
		).Error; err != nil {
			t.Fatalf("seed pet at count %d: %v", tc.seedCount, err)
		}

		if err := repo.IncrementGoodContent(ctx, db, id, now); err != nil {
			t.Fatalf("increment at count %d: %v", tc.seedCount, err)
		}

		pet, err := repo.FindByID(ctx, db, userID, id)
		if err != nil {
			t.Fatalf("reload at count %d: %v", tc.seedCount, err)
		}
		if pet.GoodContentCount != tc.seedCount+1 {
			t.Fatalf("count %d: expected counter %d, got %d", tc.seedCount, tc.seedCount+1, pet.GoodContentCount)
		}
		if pet.AgeYears != tc.wantAge {
			t.Fatalf("count %d: expected age %d, got %d", tc.seedCount, tc.wantAge, pet.AgeYears)
		}
	}
}
