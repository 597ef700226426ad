package override

import (
	"github.com/bazaarlabs/settlement/internal/override/repository"
	"github.com/bazaarlabs/settlement/internal/override/service"
	"go.uber.org/fx"
)

var Module = fx.Module("override.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
