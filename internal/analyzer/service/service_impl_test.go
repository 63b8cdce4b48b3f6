package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/tamedachi/tamedachi/internal/analyzer/domain"
	"github.com/tamedachi/tamedachi/internal/analyzer/service"
	"github.com/tamedachi/tamedachi/internal/config"
	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
)

type fakeModel struct {
	content string
	err     error
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: f.content}},
	}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.content, nil
}

func newAnalyzer(t *testing.T, model llms.Model) domain.Service {
	t.Helper()

	holder, err := config.NewAnalysisConfigHolder()
	if err != nil {
		t.Fatalf("config holder: %v", err)
	}

	return service.New(service.Params{
		Log:    zap.NewNop(),
		Model:  model,
		Holder: holder,
	})
}

func TestAnalyzeParsesAndClassifies(t *testing.T) {
	svc := newAnalyzer(t, &fakeModel{
		content: `{"score": 85, "reasons": ["established outlet", "cites sources"], "analysis": "Well sourced reporting."}`,
	})

	result, err := svc.Analyze(context.Background(), "https://example.com/report")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if result.CredibilityScore != 85 {
		t.Fatalf("expected score 85, got %v", result.CredibilityScore)
	}
	if result.QualityCategory != "excellent" {
		t.Fatalf("expected excellent category, got %q", result.QualityCategory)
	}
	if result.QualityMessage != "Excellent source! High credibility." {
		t.Fatalf("unexpected message %q", result.QualityMessage)
	}
	if !result.IsGoodContent {
		t.Fatalf("score 85 must count as good content")
	}
	if result.Analysis != "Well sourced reporting." {
		t.Fatalf("unexpected analysis %q", result.Analysis)
	}
	if len(result.Reasons) != 2 {
		t.Fatalf("expected 2 reasons, got %d", len(result.Reasons))
	}
}

func TestAnalyzeClampsOutOfRangeScore(t *testing.T) {
	svc := newAnalyzer(t, &fakeModel{
		content: `{"score": 140, "analysis": "Suspiciously enthusiastic."}`,
	})

	result, err := svc.Analyze(context.Background(), "https://example.com/over")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if result.CredibilityScore != 100 {
		t.Fatalf("expected clamped score 100, got %v", result.CredibilityScore)
	}
}

func TestAnalyzeQuotedScoreStillParses(t *testing.T) {
	svc := newAnalyzer(t, &fakeModel{
		content: `{"score": "72", "analysis": "Decent source."}`,
	})

	result, err := svc.Analyze(context.Background(), "https://example.com/quoted")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if result.CredibilityScore != 72 {
		t.Fatalf("expected score 72, got %v", result.CredibilityScore)
	}
	if result.QualityCategory != "good" {
		t.Fatalf("expected good category, got %q", result.QualityCategory)
	}
}

func TestAnalyzeDefaultsMissingAnalysisText(t *testing.T) {
	svc := newAnalyzer(t, &fakeModel{content: `{"score": 42}`})

	result, err := svc.Analyze(context.Background(), "https://example.com/terse")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if result.Analysis != "No detailed analysis provided." {
		t.Fatalf("unexpected analysis %q", result.Analysis)
	}
}

func TestAnalyzeRejectsInvalidURL(t *testing.T) {
	svc := newAnalyzer(t, &fakeModel{content: `{"score": 50}`})

	for _, raw := range []string{"", "ftp://example.com", "not-a-url"} {
		if _, err := svc.Analyze(context.Background(), raw); !errors.Is(err, domain.ErrInvalidURL) {
			t.Fatalf("expected ErrInvalidURL for %q, got %v", raw, err)
		}
	}
}

func TestAnalyzeMalformedResponses(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"not json", "the model rambled instead"},
		{"non-numeric score", `{"score": "plenty", "analysis": "?"}`},
		{"empty content", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newAnalyzer(t, &fakeModel{content: tc.content})
			if _, err := svc.Analyze(context.Background(), "https://example.com/bad"); !errors.Is(err, domain.ErrInvalidResponse) {
				t.Fatalf("expected ErrInvalidResponse, got %v", err)
			}
		})
	}
}

func TestAnalyzeErrorTaxonomy(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{"rate limited", errors.New("API returned unexpected status code: 429 Too Many Requests"), domain.ErrRateLimited},
		{"deadline", context.DeadlineExceeded, domain.ErrTimeout},
		{"timeout text", errors.New("request timeout while waiting for response"), domain.ErrTimeout},
		{"generic upstream", errors.New("connection refused"), domain.ErrUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newAnalyzer(t, &fakeModel{err: tc.err})
			if _, err := svc.Analyze(context.Background(), "https://example.com/x"); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestAnalyzePolicyRefusalScoresPoor(t *testing.T) {
	svc := newAnalyzer(t, &fakeModel{err: errors.New("invalid_request_error: content_policy violation")})

	result, err := svc.Analyze(context.Background(), "https://example.com/blocked")
	if err != nil {
		t.Fatalf("policy refusal must not fail the check, got %v", err)
	}
	if result.CredibilityScore != 0 {
		t.Fatalf("expected score 0, got %v", result.CredibilityScore)
	}
	if result.QualityCategory != "poor" || result.IsGoodContent {
		t.Fatalf("expected poor non-good result, got %+v", result)
	}
	if result.Analysis != "Content could not be analyzed due to policy restrictions." {
		t.Fatalf("unexpected analysis %q", result.Analysis)
	}
}
