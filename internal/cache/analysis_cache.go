package cache

import (
	"strings"
	"time"

	analyzerdomain "github.com/tamedachi/tamedachi/internal/analyzer/domain"
)

const defaultAnalysisTTL = 10 * time.Minute

// AnalysisCache stores recent credibility results so repeat checks of the
// same URL skip the upstream model.
type AnalysisCache interface {
	Get(url string) (analyzerdomain.Result, bool)
	Set(url string, result analyzerdomain.Result)
}

type analysisCache struct {
	results Cache[string, analyzerdomain.Result]
	ttl     time.Duration
}

func NewAnalysisCache() AnalysisCache {
	return &analysisCache{
		results: NewTTLCache[string, analyzerdomain.Result](),
		ttl:     defaultAnalysisTTL,
	}
}

func (c *analysisCache) Get(url string) (analyzerdomain.Result, bool) {
	return c.results.Get(cacheKey(url))
}

func (c *analysisCache) Set(url string, result analyzerdomain.Result) {
	if result.URL == "" {
		return
	}
	c.results.Set(cacheKey(url), result, c.ttl)
}

func cacheKey(url string) string {
	return strings.ToLower(strings.TrimSpace(url))
}
