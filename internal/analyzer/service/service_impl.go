package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tamedachi/tamedachi/internal/analyzer/domain"
	"github.com/tamedachi/tamedachi/internal/config"
	"github.com/tamedachi/tamedachi/internal/observability/metrics"
	"github.com/tamedachi/tamedachi/internal/scoring"
	submissionservice "github.com/tamedachi/tamedachi/internal/submission/service"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NewModel builds the openai-compatible chat client used for credibility
// checks. The JSON response format keeps the model output machine-parseable.
func NewModel(cfg config.Config) (llms.Model, error) {
	opts := []openai.Option{
		openai.WithToken(cfg.OpenAIAPIKey),
		openai.WithModel(config.DefaultAnalysisConfig().Model),
		openai.WithResponseFormat(&openai.ResponseFormat{
			Type: "json_object",
		}),
	}
	if cfg.OpenAIBaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.OpenAIBaseURL))
	}

	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create analyzer client: %w", err)
	}
	return model, nil
}

type Params struct {
	fx.In

	Log     *zap.Logger
	Model   llms.Model
	Holder  *config.AnalysisConfigHolder
	Metrics *metrics.Metrics
}

type Service struct {
	log     *zap.Logger
	model   llms.Model
	holder  *config.AnalysisConfigHolder
	metrics *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		log:     p.Log.Named("analyzer.service"),
		model:   p.Model,
		holder:  p.Holder,
		metrics: p.Metrics,
	}
}

// modelResponse is the JSON shape the prompt asks for. Score arrives as a
// json.Number so a quoted number from the model still parses.
type modelResponse struct {
	Score    json.Number `json:"score"`
	Reasons  []string    `json:"reasons"`
	Analysis string      `json:"analysis"`
}

func (s *Service) Analyze(ctx context.Context, rawURL string) (domain.Result, error) {
	rawURL = strings.TrimSpace(rawURL)
	if err := submissionservice.ValidateURL(rawURL); err != nil {
		return domain.Result{}, domain.ErrInvalidURL
	}

	cfg := s.holder.Get()
	ctx, cancel := context.WithTimeout(ctx, time.Duration(cfg.TimeoutSeconds)*time.Second)
	defer cancel()

	messages := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, cfg.SystemPrompt),
		llms.TextParts(schema.ChatMessageTypeHuman, buildPrompt(rawURL)),
	}

	started := time.Now()
	response, err := s.model.GenerateContent(ctx, messages,
		llms.WithModel(cfg.Model),
		llms.WithTemperature(cfg.Temperature),
	)
	if err != nil {
		result, cerr := s.classifyCallError(rawURL, err)
		if cerr != nil {
			s.metrics.RecordAnalysisRequest(ctx, "error")
			s.log.Error("credibility check failed",
				zap.String("url", rawURL),
				zap.Duration("duration", time.Since(started)),
				zap.Error(err),
			)
			return domain.Result{}, cerr
		}
		// Policy refusals score the content, they do not fail the check.
		s.metrics.RecordAnalysisRequest(ctx, "policy_refusal")
		return result, nil
	}

	if len(response.Choices) == 0 || response.Choices[0].Content == "" {
		s.metrics.RecordAnalysisRequest(ctx, "error")
		return domain.Result{}, domain.ErrInvalidResponse
	}

	var parsed modelResponse
	if err := json.Unmarshal([]byte(response.Choices[0].Content), &parsed); err != nil {
		s.metrics.RecordAnalysisRequest(ctx, "error")
		s.log.Error("analyzer returned malformed JSON",
			zap.String("url", rawURL),
			zap.Error(err),
		)
		return domain.Result{}, domain.ErrInvalidResponse
	}

	score, err := parsed.Score.Float64()
	if err != nil {
		s.metrics.RecordAnalysisRequest(ctx, "error")
		s.log.Error("analyzer returned non-numeric score",
			zap.String("url", rawURL),
			zap.String("score", parsed.Score.String()),
		)
		return domain.Result{}, domain.ErrInvalidResponse
	}
	score = scoring.Clamp(score)

	classification := scoring.Classify(score)
	analysis := parsed.Analysis
	if analysis == "" {
		analysis = "No detailed analysis provided."
	}

	s.metrics.RecordAnalysisRequest(ctx, "ok")
	s.log.Info("credibility check completed",
		zap.String("url", rawURL),
		zap.Float64("score", score),
		zap.String("category", string(classification.Category)),
		zap.Duration("duration", time.Since(started)),
	)

	return domain.Result{
		URL:              rawURL,
		CredibilityScore: score,
		QualityCategory:  string(classification.Category),
		QualityMessage:   classification.Message,
		IsGoodContent:    classification.IsGood,
		Reasons:          parsed.Reasons,
		Analysis:         analysis,
	}, nil
}

// classifyCallError sorts an upstream failure into the caller-facing
// taxonomy. A content policy refusal yields a scored poor result instead of
// an error, everything else maps to a sentinel.
func (s *Service) classifyCallError(rawURL string, err error) (domain.Result, error) {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.Result{}, domain.ErrTimeout
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "status code: 429") || strings.Contains(msg, "rate limit"):
		return domain.Result{}, domain.ErrRateLimited
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded"):
		return domain.Result{}, domain.ErrTimeout
	case strings.Contains(msg, "content_policy") || strings.Contains(msg, "content policy"):
		s.log.Warn("content policy refusal", zap.String("url", rawURL))
		classification := scoring.Classify(0)
		return domain.Result{
			URL:              rawURL,
			CredibilityScore: 0,
			QualityCategory:  string(classification.Category),
			QualityMessage:   classification.Message,
			IsGoodContent:    false,
			Analysis:         "Content could not be analyzed due to policy restrictions.",
		}, nil
	default:
		return domain.Result{}, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
}

func buildPrompt(url string) string {
	return fmt.Sprintf(`Analyze the credibility and quality of the following URL as a media source: %s

Please evaluate based on:
- Domain reputation and authority
- Presence of fact-checking and citations
- Potential bias or sensationalism
- Author credentials (if available)
- Overall trustworthiness as a news/information source

Respond in JSON format with:
{
  "score": <number 0-100>,
  "reasons": [<array of 2-3 brief reasons for the score>],
  "analysis": "<detailed explanation of the assessment>"
}

Be fair but critical. A score of 50+ indicates generally trustworthy content.`, url)
}
