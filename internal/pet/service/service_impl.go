package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/tamedachi/tamedachi/internal/pet/domain"
	"github.com/tamedachi/tamedachi/internal/scoring"
	submissiondomain "github.com/tamedachi/tamedachi/internal/submission/domain"
	submissionservice "github.com/tamedachi/tamedachi/internal/submission/service"
	"github.com/tamedachi/tamedachi/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Repo    domain.Repository
	SubRepo submissiondomain.Repository
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	repo    domain.Repository
	subRepo submissiondomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("pet.service"),
		genID:   p.GenID,
		repo:    p.Repo,
		subRepo: p.SubRepo,
	}
}

func (s *Service) Create(ctx context.Context, userID snowflake.ID) (domain.View, error) {
	if userID == 0 {
		return domain.View{}, domain.ErrInvalidUser
	}

	now := time.Now().UTC()
	pet := domain.Pet{
		ID:               s.genID.Generate(),
		UserID:           userID,
		Name:             domain.DefaultPetName,
		HealthScore:      scoring.NeutralScore,
		GoodContentCount: 0,
		AgeYears:         0,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.Insert(ctx, s.db, &pet); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.View{}, domain.ErrPetExists
		}
		s.log.Error("pet insert failed",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		return domain.View{}, err
	}

	s.log.Info("pet hatched",
		zap.String("user_id", userID.String()),
		zap.String("pet_id", pet.ID.String()),
	)
	return domain.ViewOf(pet), nil
}

func (s *Service) Get(ctx context.Context, userID snowflake.ID) (domain.View, error) {
	if userID == 0 {
		return domain.View{}, domain.ErrInvalidUser
	}

	pet, err := s.repo.FindByUser(ctx, s.db, userID)
	if err != nil {
		return domain.View{}, err
	}
	if pet == nil {
		return domain.View{}, domain.ErrPetNotFound
	}
	return domain.ViewOf(*pet), nil
}

// ApplySubmission runs the whole submission pipeline in one transaction:
// append the ledger row, recompute the health average over a ledger that
// includes it, and advance the good-content counter with its derived age.
// Either everything lands or nothing does.
func (s *Service) ApplySubmission(ctx context.Context, req domain.ApplySubmissionRequest) (domain.ApplySubmissionResponse, error) {
	if req.UserID == 0 {
		return domain.ApplySubmissionResponse{}, domain.ErrInvalidUser
	}
	if req.PetID == 0 {
		return domain.ApplySubmissionResponse{}, domain.ErrInvalidPetID
	}
	if err := validateResult(req.Result); err != nil {
		return domain.ApplySubmissionResponse{}, err
	}

	var resp domain.ApplySubmissionResponse
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pet, err := s.repo.FindByID(ctx, tx, req.UserID, req.PetID)
		if err != nil {
			return err
		}
		if pet == nil {
			return domain.ErrPetNotFound
		}

		now := time.Now().UTC()
		submission := submissiondomain.Submission{
			ID:               s.genID.Generate(),
			UserID:           req.UserID,
			PetID:            req.PetID,
			URL:              strings.TrimSpace(req.Result.URL),
			CredibilityScore: req.Result.CredibilityScore,
			QualityCategory:  req.Result.QualityCategory,
			IsGoodContent:    req.Result.IsGoodContent,
			SubmittedAt:      now,
		}
		if err := s.subRepo.Insert(ctx, tx, &submission); err != nil {
			return &domain.StepError{Step: domain.StepLedgerWrite, Err: err}
		}

		// The average is taken after the insert, inside the same
		// transaction, so it can never miss the row just written.
		avg, err := s.subRepo.AverageScore(ctx, tx, req.UserID)
		if err != nil {
			return &domain.StepError{Step: domain.StepHealthUpdate, Err: err}
		}
		health := scoring.Clamp(avg)
		if err := s.repo.UpdateHealth(ctx, tx, req.PetID, health, now); err != nil {
			return &domain.StepError{Step: domain.StepHealthUpdate, Err: err}
		}

		if req.Result.IsGoodContent {
			if err := s.repo.IncrementGoodContent(ctx, tx, req.PetID, now); err != nil {
				return &domain.StepError{Step: domain.StepCounterIncrement, Err: err}
			}
		}

		updated, err := s.repo.FindByID(ctx, tx, req.UserID, req.PetID)
		if err != nil {
			return err
		}
		if updated == nil {
			return domain.ErrPetNotFound
		}

		resp = domain.ApplySubmissionResponse{
			Pet:        domain.ViewOf(*updated),
			Submission: submission,
		}
		return nil
	})
	if err != nil {
		s.log.Error("apply submission failed",
			zap.String("user_id", req.UserID.String()),
			zap.String("pet_id", req.PetID.String()),
			zap.Error(err),
		)
		return domain.ApplySubmissionResponse{}, err
	}

	return resp, nil
}

func validateResult(result domain.AnalysisResult) error {
	if err := submissionservice.ValidateURL(result.URL); err != nil {
		return domain.ErrInvalidSubmission
	}
	if result.CredibilityScore < 0 || result.CredibilityScore > 100 {
		return domain.ErrInvalidSubmission
	}
	if !result.QualityCategory.Valid() {
		return domain.ErrInvalidSubmission
	}
	return nil
}
