package analyzer

import (
	"github.com/tamedachi/tamedachi/internal/analyzer/service"
	"github.com/tamedachi/tamedachi/internal/cache"
	"go.uber.org/fx"
)

var Module = fx.Module("analyzer.service",
	fx.Provide(service.NewModel),
	fx.Provide(service.New),
	fx.Provide(cache.NewAnalysisCache),
)
