package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	submissionservice "github.com/tamedachi/tamedachi/internal/submission/service"
	"go.uber.org/zap"
)

type analyzeRequest struct {
	URL string `json:"url"`
}

func (s *Server) AnalyzeContent(c *gin.Context) {
	userID, ok := userFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	url := strings.TrimSpace(req.URL)
	if err := submissionservice.ValidateURL(url); err != nil {
		AbortWithError(c, newValidationError("url", "invalid_url", "url must be an absolute http or https URL"))
		return
	}

	if s.analysisCache != nil {
		if cached, ok := s.analysisCache.Get(url); ok {
			c.JSON(http.StatusOK, gin.H{"data": cached})
			return
		}
	}

	allowed, retryAfter, err := s.limiter.Allow(c.Request.Context(), userID)
	if err != nil {
		// Fail open. A broken limiter should not block analysis.
		zap.L().Warn("analyze rate limiter unavailable", zap.Error(err))
	}
	if !allowed {
		if retryAfter > 0 {
			c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
		}
		AbortWithError(c, ErrRateLimited)
		return
	}

	result, err := s.analyzerSvc.Analyze(c.Request.Context(), url)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if s.analysisCache != nil {
		s.analysisCache.Set(url, result)
	}
	c.JSON(http.StatusOK, gin.H{"data": result})
}
