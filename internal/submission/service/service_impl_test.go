package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/tamedachi/tamedachi/internal/scoring"
	"github.com/tamedachi/tamedachi/internal/submission/domain"
	"github.com/tamedachi/tamedachi/internal/submission/repository"
	"github.com/tamedachi/tamedachi/internal/submission/service"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_sub_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	if err := db.Exec(`CREATE TABLE content_submissions (
		id BIGINT PRIMARY KEY,
		user_id BIGINT NOT NULL,
		pet_id BIGINT NOT NULL,
		url TEXT NOT NULL,
		credibility_score DOUBLE PRECISION NOT NULL,
		quality_category TEXT NOT NULL,
		is_good_content BOOLEAN NOT NULL,
		submitted_at DATETIME NOT NULL
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

func newService(t *testing.T, db *gorm.DB) domain.Service {
	t.Helper()

	node, err := snowflake.NewNode(8)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}

	return service.New(service.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
}

func record(t *testing.T, svc domain.Service, userID snowflake.ID, url string, score float64) domain.Submission {
	t.Helper()

	classification := scoring.Classify(score)
	submission, err := svc.Record(context.Background(), domain.RecordRequest{
		UserID:           userID,
		PetID:            snowflake.ID(42),
		URL:              url,
		CredibilityScore: score,
		QualityCategory:  classification.Category,
		IsGoodContent:    classification.IsGood,
	})
	if err != nil {
		t.Fatalf("record %q: %v", url, err)
	}
	return submission
}

func TestRecordRejectsInvalidRequests(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newService(t, db)

	cases := []struct {
		name string
		req  domain.RecordRequest
		want error
	}{
		{
			name: "missing user",
			req:  domain.RecordRequest{PetID: 1, URL: "https://example.com", CredibilityScore: 50, QualityCategory: scoring.CategoryGood},
			want: domain.ErrInvalidUser,
		},
		{
			name: "missing pet",
			req:  domain.RecordRequest{UserID: 1, URL: "https://example.com", CredibilityScore: 50, QualityCategory: scoring.CategoryGood},
			want: domain.ErrInvalidPet,
		},
		{
			name: "empty url",
			req:  domain.RecordRequest{UserID: 1, PetID: 1, CredibilityScore: 50, QualityCategory: scoring.CategoryGood},
			want: domain.ErrInvalidURL,
		},
		{
			name: "score out of range",
			req:  domain.RecordRequest{UserID: 1, PetID: 1, URL: "https://example.com", CredibilityScore: 120, QualityCategory: scoring.CategoryGood},
			want: domain.ErrInvalidScore,
		},
		{
			name: "bad category",
			req:  domain.RecordRequest{UserID: 1, PetID: 1, URL: "https://example.com", CredibilityScore: 50, QualityCategory: "superb"},
			want: domain.ErrInvalidCategory,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Record(ctx, tc.req); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	valid := []string{
		"https://example.com/article",
		"http://news.example.org",
		"  https://example.com/padded  ",
	}
	for _, raw := range valid {
		if err := service.ValidateURL(raw); err != nil {
			t.Fatalf("expected %q to be valid, got %v", raw, err)
		}
	}

	invalid := []string{
		"",
		"   ",
		"not-a-url",
		"ftp://example.com/file",
		"javascript:alert(1)",
		"//missing-scheme.example.com",
	}
	for _, raw := range invalid {
		if err := service.ValidateURL(raw); !errors.Is(err, domain.ErrInvalidURL) {
			t.Fatalf("expected %q to be rejected, got %v", raw, err)
		}
	}
}

func TestAverageScoreEmptyLedgerIsNeutral(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newService(t, db)

	avg, err := svc.AverageScore(ctx, snowflake.ID(501))
	if err != nil {
		t.Fatalf("average: %v", err)
	}
	if avg != scoring.NeutralScore {
		t.Fatalf("expected neutral average %v for empty ledger, got %v", scoring.NeutralScore, avg)
	}
}

func TestAverageScoreIsFullRecompute(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newService(t, db)

	userID := snowflake.ID(502)
	record(t, svc, userID, "https://example.com/a", 90)
	record(t, svc, userID, "https://example.com/b", 30)
	record(t, svc, userID, "https://example.com/c", 60)

	avg, err := svc.AverageScore(ctx, userID)
	if err != nil {
		t.Fatalf("average: %v", err)
	}
	if avg != 60 {
		t.Fatalf("expected average 60, got %v", avg)
	}

	// Another user's rows never leak into the average.
	record(t, svc, snowflake.ID(503), "https://example.com/other", 0)
	avg, err = svc.AverageScore(ctx, userID)
	if err != nil {
		t.Fatalf("average after other user: %v", err)
	}
	if avg != 60 {
		t.Fatalf("expected average unchanged at 60, got %v", avg)
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newService(t, db)

	userID := snowflake.ID(504)

	stats, err := svc.Stats(ctx, userID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalChecks != 0 || stats.GoodContentCount != 0 || stats.AccuracyRate != 0 {
		t.Fatalf("expected zero stats for empty ledger, got %+v", stats)
	}

	record(t, svc, userID, "https://example.com/a", 90)
	record(t, svc, userID, "https://example.com/b", 70)
	record(t, svc, userID, "https://example.com/c", 55)
	record(t, svc, userID, "https://example.com/d", 10)

	stats, err = svc.Stats(ctx, userID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalChecks != 4 {
		t.Fatalf("expected 4 checks, got %d", stats.TotalChecks)
	}
	if stats.GoodContentCount != 3 {
		t.Fatalf("expected 3 good items, got %d", stats.GoodContentCount)
	}
	if stats.AccuracyRate != 75 {
		t.Fatalf("expected accuracy 75, got %v", stats.AccuracyRate)
	}
}

func TestHistoryNewestFirstWithLimit(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newService(t, db)

	userID := snowflake.ID(505)
	for i := 0; i < 5; i++ {
		record(t, svc, userID, fmt.Sprintf("https://example.com/page-%d", i), 60)
	}

	history, err := svc.History(ctx, domain.HistoryRequest{UserID: userID})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(history))
	}
	if history[0].URL != "https://example.com/page-4" {
		t.Fatalf("expected newest first, got %q", history[0].URL)
	}
	for i := 1; i < len(history); i++ {
		if history[i].ID > history[i-1].ID {
			t.Fatalf("history out of order at index %d", i)
		}
	}

	limited, err := svc.History(ctx, domain.HistoryRequest{UserID: userID, Limit: 2})
	if err != nil {
		t.Fatalf("limited history: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("expected 2 rows with limit, got %d", len(limited))
	}
}
