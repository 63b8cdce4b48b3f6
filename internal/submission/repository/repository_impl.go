package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/tamedachi/tamedachi/internal/scoring"
	"github.com/tamedachi/tamedachi/internal/submission/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, submission *domain.Submission) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO content_submissions (id, user_id, pet_id, url, credibility_score, quality_category, is_good_content, submitted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		submission.ID,
		submission.UserID,
		submission.PetID,
		submission.URL,
		submission.CredibilityScore,
		submission.QualityCategory,
		submission.IsGoodContent,
		submission.SubmittedAt,
	).Error
}

func (r *repo) AverageScore(ctx context.Context, db *gorm.DB, userID snowflake.ID) (float64, error) {
	// COALESCE keeps the empty-ledger case equal to a freshly hatched pet.
	var avg float64
	err := db.WithContext(ctx).Raw(
		`SELECT COALESCE(AVG(credibility_score), ?)
		 FROM content_submissions WHERE user_id = ?`,
		scoring.NeutralScore,
		userID,
	).Scan(&avg).Error
	if err != nil {
		return 0, err
	}
	return avg, nil
}

func (r *repo) Stats(ctx context.Context, db *gorm.DB, userID snowflake.ID) (domain.Stats, error) {
	var row struct {
		TotalChecks      int64
		GoodContentCount int64
	}
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) AS total_checks,
		        COALESCE(SUM(CASE WHEN is_good_content THEN 1 ELSE 0 END), 0) AS good_content_count
		 FROM content_submissions WHERE user_id = ?`,
		userID,
	).Scan(&row).Error
	if err != nil {
		return domain.Stats{}, err
	}

	stats := domain.Stats{
		TotalChecks:      row.TotalChecks,
		GoodContentCount: row.GoodContentCount,
	}
	if stats.TotalChecks > 0 {
		stats.AccuracyRate = float64(stats.GoodContentCount) / float64(stats.TotalChecks) * 100
	}
	return stats, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, userID snowflake.ID, limit int) ([]domain.Submission, error) {
	var submissions []domain.Submission
	stmt := db.WithContext(ctx).
		Model(&domain.Submission{}).
		Where("user_id = ?", userID).
		Order("submitted_at desc, id desc")
	if limit > 0 {
		stmt = stmt.Limit(limit)
	}
	if err := stmt.Find(&submissions).Error; err != nil {
		return nil, err
	}
	return submissions, nil
}
