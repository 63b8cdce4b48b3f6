package pet

import (
	"github.com/tamedachi/tamedachi/internal/pet/repository"
	"github.com/tamedachi/tamedachi/internal/pet/service"
	"go.uber.org/fx"
)

var Module = fx.Module("pet.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
