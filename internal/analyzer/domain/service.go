package domain

import (
	"context"
	"errors"
)

// Result is the scored outcome of one credibility check.
type Result struct {
	URL              string   `json:"url"`
	CredibilityScore float64  `json:"credibilityScore"`
	QualityCategory  string   `json:"qualityCategory"`
	QualityMessage   string   `json:"qualityMessage"`
	IsGoodContent    bool     `json:"isGoodContent"`
	Reasons          []string `json:"reasons,omitempty"`
	Analysis         string   `json:"analysis"`
}

type Service interface {
	Analyze(ctx context.Context, url string) (Result, error)
}

var (
	ErrInvalidURL      = errors.New("invalid_url")
	ErrRateLimited     = errors.New("analyzer_rate_limited")
	ErrTimeout         = errors.New("analyzer_timeout")
	ErrUnavailable     = errors.New("analyzer_unavailable")
	ErrInvalidResponse = errors.New("analyzer_invalid_response")
)
