package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	petdomain "github.com/tamedachi/tamedachi/internal/pet/domain"
	"github.com/tamedachi/tamedachi/internal/scoring"
	submissiondomain "github.com/tamedachi/tamedachi/internal/submission/domain"
)

type createSubmissionRequest struct {
	URL              string  `json:"url"`
	CredibilityScore float64 `json:"credibilityScore"`
	QualityCategory  string  `json:"qualityCategory"`
	IsGoodContent    bool    `json:"isGoodContent"`
	Analysis         string  `json:"analysis"`
}

func (s *Server) CreateSubmission(c *gin.Context) {
	userID, ok := userFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req createSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	pet, err := s.petSvc.Get(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.petSvc.ApplySubmission(c.Request.Context(), petdomain.ApplySubmissionRequest{
		UserID: userID,
		PetID:  pet.ID,
		Result: petdomain.AnalysisResult{
			URL:              req.URL,
			CredibilityScore: req.CredibilityScore,
			QualityCategory:  scoring.QualityCategory(req.QualityCategory),
			IsGoodContent:    req.IsGoodContent,
			Analysis:         req.Analysis,
		},
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.obsMetrics.RecordSubmission(c.Request.Context(),
		string(resp.Submission.QualityCategory),
		resp.Submission.IsGoodContent,
	)
	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListSubmissions(c *gin.Context) {
	userID, ok := userFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var query struct {
		Limit int `form:"limit"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	history, err := s.submissionSvc.History(c.Request.Context(), submissiondomain.HistoryRequest{
		UserID: userID,
		Limit:  query.Limit,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": history})
}

func (s *Server) SubmissionStats(c *gin.Context) {
	userID, ok := userFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	stats, err := s.submissionSvc.Stats(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": stats})
}
