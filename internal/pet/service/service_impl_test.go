package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	petdomain "github.com/tamedachi/tamedachi/internal/pet/domain"
	petrepo "github.com/tamedachi/tamedachi/internal/pet/repository"
	petservice "github.com/tamedachi/tamedachi/internal/pet/service"
	"github.com/tamedachi/tamedachi/internal/scoring"
	subrepo "github.com/tamedachi/tamedachi/internal/submission/repository"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	schema := []string{
		`CREATE TABLE pets (
			id BIGINT PRIMARY KEY,
			user_id BIGINT NOT NULL,
			name TEXT NOT NULL DEFAULT 'Tamedachi',
			health_score DOUBLE PRECISION NOT NULL DEFAULT 50,
			good_content_count BIGINT NOT NULL DEFAULT 0,
			age_years BIGINT NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE UNIQUE INDEX ux_pets_user ON pets(user_id)`,
		`CREATE TABLE content_submissions (
			id BIGINT PRIMARY KEY,
			user_id BIGINT NOT NULL,
			pet_id BIGINT NOT NULL,
			url TEXT NOT NULL,
			credibility_score DOUBLE PRECISION NOT NULL,
			quality_category TEXT NOT NULL,
			is_good_content BOOLEAN NOT NULL,
			submitted_at DATETIME NOT NULL
		)`,
		`CREATE INDEX ix_content_submissions_user ON content_submissions(user_id, submitted_at)`,
	}
	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	return db
}

func newService(t *testing.T, db *gorm.DB) petdomain.Service {
	t.Helper()

	node, err := snowflake.NewNode(7)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}

	return petservice.New(petservice.Params{
		DB:      db,
		Log:     zap.NewNop(),
		GenID:   node,
		Repo:    petrepo.Provide(),
		SubRepo: subrepo.Provide(),
	})
}

func goodResult(url string, score float64) petdomain.AnalysisResult {
	classification := scoring.Classify(score)
	return petdomain.AnalysisResult{
		URL:              url,
		CredibilityScore: score,
		QualityCategory:  classification.Category,
		IsGoodContent:    classification.IsGood,
		Analysis:         "test analysis",
	}
}

func TestCreateDefaults(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newService(t, db)

	userID := snowflake.ID(1001)
	view, err := svc.Create(ctx, userID)
	if err != nil {
		t.Fatalf("create pet: %v", err)
	}

	if view.Name != petdomain.DefaultPetName {
		t.Fatalf("expected default name %q, got %q", petdomain.DefaultPetName, view.Name)
	}
	if view.HealthScore != scoring.NeutralScore {
		t.Fatalf("expected neutral health %v, got %v", scoring.NeutralScore, view.HealthScore)
	}
	if view.GoodContentCount != 0 || view.AgeYears != 0 {
		t.Fatalf("expected zero counters, got count=%d age=%d", view.GoodContentCount, view.AgeYears)
	}
	if view.HealthState.State != scoring.StateNeutral {
		t.Fatalf("expected neutral state, got %s", view.HealthState.State)
	}
	if view.GrowthStage != scoring.StageBaby {
		t.Fatalf("expected baby stage, got %s", view.GrowthStage)
	}
}

func TestCreateSecondPetConflicts(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newService(t, db)

	userID := snowflake.ID(1002)
	if _, err := svc.Create(ctx, userID); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := svc.Create(ctx, userID); !errors.Is(err, petdomain.ErrPetExists) {
		t.Fatalf("expected ErrPetExists, got %v", err)
	}

	var count int64
	if err := db.Raw(`SELECT COUNT(*) FROM pets WHERE user_id = ?`, userID).Scan(&count).Error; err != nil {
		t.Fatalf("count pets: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one pet, got %d", count)
	}
}

func TestCreateConcurrentOneWinner(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newService(t, db)

	userID := snowflake.ID(1003)
	const attempts = 8

	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(ctx, userID)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var created, conflicted int
	for err := range results {
		switch {
		case err == nil:
			created++
		case errors.Is(err, petdomain.ErrPetExists):
			conflicted++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if created != 1 {
		t.Fatalf("expected exactly one successful create, got %d", created)
	}
	if conflicted != attempts-1 {
		t.Fatalf("expected %d conflicts, got %d", attempts-1, conflicted)
	}
}

func TestGetMissingPet(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newService(t, db)

	if _, err := svc.Get(ctx, snowflake.ID(9999)); !errors.Is(err, petdomain.ErrPetNotFound) {
		t.Fatalf("expected ErrPetNotFound, got %v", err)
	}
}

func TestApplySubmissionAveragesHealth(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newService(t, db)

	userID := snowflake.ID(2001)
	pet, err := svc.Create(ctx, userID)
	if err != nil {
		t.Fatalf("create pet: %v", err)
	}

	scores := []float64{80, 40}
	for i, score := range scores {
		resp, err := svc.ApplySubmission(ctx, petdomain.ApplySubmissionRequest{
			UserID: userID,
			PetID:  pet.ID,
			Result: goodResult(fmt.Sprintf("https://example.com/article-%d", i), score),
		})
		if err != nil {
			t.Fatalf("apply submission %d: %v", i, err)
		}
		if resp.Submission.CredibilityScore != score {
			t.Fatalf("submission %d recorded score %v, want %v", i, resp.Submission.CredibilityScore, score)
		}
	}

	view, err := svc.Get(ctx, userID)
	if err != nil {
		t.Fatalf("get pet: %v", err)
	}
	if view.HealthScore != 60 {
		t.Fatalf("expected health 60 after [80, 40], got %v", view.HealthScore)
	}
	if view.HealthState.State != scoring.StateHealthy {
		t.Fatalf("expected healthy state at 60, got %s", view.HealthState.State)
	}
}

func TestApplySubmissionGoodContentAdvancesCounter(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newService(t, db)

	userID := snowflake.ID(2002)
	pet, err := svc.Create(ctx, userID)
	if err != nil {
		t.Fatalf("create pet: %v", err)
	}

	resp, err := svc.ApplySubmission(ctx, petdomain.ApplySubmissionRequest{
		UserID: userID,
		PetID:  pet.ID,
		Result: goodResult("https://example.com/good", 85),
	})
	if err != nil {
		t.Fatalf("apply good submission: %v", err)
	}
	if resp.Pet.GoodContentCount != 1 {
		t.Fatalf("expected counter 1, got %d", resp.Pet.GoodContentCount)
	}
	if !resp.Submission.IsGoodContent {
		t.Fatalf("expected a good-content submission")
	}
}

func TestApplySubmissionPoorContentLeavesCounter(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newService(t, db)

	userID := snowflake.ID(2003)
	pet, err := svc.Create(ctx, userID)
	if err != nil {
		t.Fatalf("create pet: %v", err)
	}

	resp, err := svc.ApplySubmission(ctx, petdomain.ApplySubmissionRequest{
		UserID: userID,
		PetID:  pet.ID,
		Result: goodResult("https://example.com/poor", 20),
	})
	if err != nil {
		t.Fatalf("apply poor submission: %v", err)
	}
	if resp.Pet.GoodContentCount != 0 || resp.Pet.AgeYears != 0 {
		t.Fatalf("poor content must not advance counters, got count=%d age=%d",
			resp.Pet.GoodContentCount, resp.Pet.AgeYears)
	}
	if resp.Pet.HealthScore != 20 {
		t.Fatalf("expected health 20 after single submission, got %v", resp.Pet.HealthScore)
	}
}

func TestApplySubmissionConcurrentGoodContent(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newService(t, db)

	userID := snowflake.ID(2004)
	pet, err := svc.Create(ctx, userID)
	if err != nil {
		t.Fatalf("create pet: %v", err)
	}

	const submissions = 10
	var wg sync.WaitGroup
	errs := make(chan error, submissions)
	for i := 0; i < submissions; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.ApplySubmission(ctx, petdomain.ApplySubmissionRequest{
				UserID: userID,
				PetID:  pet.ID,
				Result: goodResult(fmt.Sprintf("https://example.com/concurrent-%d", i), 90),
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent submission: %v", err)
		}
	}

	view, err := svc.Get(ctx, userID)
	if err != nil {
		t.Fatalf("get pet: %v", err)
	}
	if view.GoodContentCount != submissions {
		t.Fatalf("expected counter %d, got %d", submissions, view.GoodContentCount)
	}
	if view.HealthScore != 90 {
		t.Fatalf("expected health 90, got %v", view.HealthScore)
	}
}

func TestApplySubmissionAgeAndStageProgression(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newService(t, db)

	userID := snowflake.ID(2005)
	pet, err := svc.Create(ctx, userID)
	if err != nil {
		t.Fatalf("create pet: %v", err)
	}

	var last petdomain.ApplySubmissionResponse
	for i := 0; i < 100; i++ {
		last, err = svc.ApplySubmission(ctx, petdomain.ApplySubmissionRequest{
			UserID: userID,
			PetID:  pet.ID,
			Result: goodResult(fmt.Sprintf("https://example.com/marathon-%d", i), 90),
		})
		if err != nil {
			t.Fatalf("apply submission %d: %v", i, err)
		}
		if i == 98 && last.Pet.AgeYears != 0 {
			t.Fatalf("expected age 0 at 99 good items, got %d", last.Pet.AgeYears)
		}
	}

	if last.Pet.GoodContentCount != 100 {
		t.Fatalf("expected counter 100, got %d", last.Pet.GoodContentCount)
	}
	if last.Pet.AgeYears != 1 {
		t.Fatalf("expected age 1 at 100 good items, got %d", last.Pet.AgeYears)
	}
	if last.Pet.GrowthStage != scoring.StageChild {
		t.Fatalf("expected child stage at 100 good items, got %s", last.Pet.GrowthStage)
	}
	if last.Pet.HealthScore != 90 {
		t.Fatalf("expected health 90, got %v", last.Pet.HealthScore)
	}
}

func TestApplySubmissionValidation(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newService(t, db)

	userID := snowflake.ID(2006)
	pet, err := svc.Create(ctx, userID)
	if err != nil {
		t.Fatalf("create pet: %v", err)
	}

	cases := []struct {
		name   string
		result petdomain.AnalysisResult
	}{
		{"missing url", goodResult("", 80)},
		{"non-http url", goodResult("ftp://example.com/file", 80)},
		{"score below range", goodResult("https://example.com/a", -1)},
		{"score above range", goodResult("https://example.com/a", 101)},
		{"unknown category", petdomain.AnalysisResult{
			URL:              "https://example.com/a",
			CredibilityScore: 80,
			QualityCategory:  "stellar",
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.ApplySubmission(ctx, petdomain.ApplySubmissionRequest{
				UserID: userID,
				PetID:  pet.ID,
				Result: tc.result,
			})
			if !errors.Is(err, petdomain.ErrInvalidSubmission) {
				t.Fatalf("expected ErrInvalidSubmission, got %v", err)
			}
		})
	}

	var count int64
	if err := db.Raw(`SELECT COUNT(*) FROM content_submissions WHERE user_id = ?`, userID).Scan(&count).Error; err != nil {
		t.Fatalf("count submissions: %v", err)
	}
	if count != 0 {
		t.Fatalf("rejected submissions must not reach the ledger, found %d rows", count)
	}
}

func TestApplySubmissionWrongPet(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newService(t, db)

	userID := snowflake.ID(2007)
	otherID := snowflake.ID(2008)
	pet, err := svc.Create(ctx, userID)
	if err != nil {
		t.Fatalf("create pet: %v", err)
	}

	_, err = svc.ApplySubmission(ctx, petdomain.ApplySubmissionRequest{
		UserID: otherID,
		PetID:  pet.ID,
		Result: goodResult("https://example.com/a", 80),
	})
	if !errors.Is(err, petdomain.ErrPetNotFound) {
		t.Fatalf("expected ErrPetNotFound for foreign pet, got %v", err)
	}
}
