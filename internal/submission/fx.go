package submission

import (
	"github.com/tamedachi/tamedachi/internal/submission/repository"
	"github.com/tamedachi/tamedachi/internal/submission/service"
	"go.uber.org/fx"
)

var Module = fx.Module("submission.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
