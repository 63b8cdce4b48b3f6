package service

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/tamedachi/tamedachi/internal/submission/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("submission.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Record(ctx context.Context, req domain.RecordRequest) (domain.Submission, error) {
	if err := validateRecordRequest(req); err != nil {
		return domain.Submission{}, err
	}

	submission := domain.Submission{
		ID:               s.genID.Generate(),
		UserID:           req.UserID,
		PetID:            req.PetID,
		URL:              strings.TrimSpace(req.URL),
		CredibilityScore: req.CredibilityScore,
		QualityCategory:  req.QualityCategory,
		IsGoodContent:    req.IsGoodContent,
		SubmittedAt:      time.Now().UTC(),
	}

	if err := s.repo.Insert(ctx, s.db, &submission); err != nil {
		s.log.Error("ledger append failed",
			zap.String("user_id", req.UserID.String()),
			zap.Error(err),
		)
		return domain.Submission{}, err
	}

	return submission, nil
}

func (s *Service) AverageScore(ctx context.Context, userID snowflake.ID) (float64, error) {
	if userID == 0 {
		return 0, domain.ErrInvalidUser
	}
	return s.repo.AverageScore(ctx, s.db, userID)
}

func (s *Service) Stats(ctx context.Context, userID snowflake.ID) (domain.Stats, error) {
	if userID == 0 {
		return domain.Stats{}, domain.ErrInvalidUser
	}
	return s.repo.Stats(ctx, s.db, userID)
}

func (s *Service) History(ctx context.Context, req domain.HistoryRequest) ([]domain.Submission, error) {
	if req.UserID == 0 {
		return nil, domain.ErrInvalidUser
	}
	limit := req.Limit
	if limit < 0 {
		limit = 0
	}
	return s.repo.List(ctx, s.db, req.UserID, limit)
}

func validateRecordRequest(req domain.RecordRequest) error {
	if req.UserID == 0 {
		return domain.ErrInvalidUser
	}
	if req.PetID == 0 {
		return domain.ErrInvalidPet
	}
	if err := ValidateURL(req.URL); err != nil {
		return err
	}
	if req.CredibilityScore < 0 || req.CredibilityScore > 100 {
		return domain.ErrInvalidScore
	}
	if !req.QualityCategory.Valid() {
		return domain.ErrInvalidCategory
	}
	return nil
}

// ValidateURL accepts absolute http/https URLs only.
func ValidateURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return domain.ErrInvalidURL
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return domain.ErrInvalidURL
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return domain.ErrInvalidURL
	}
	return nil
}
