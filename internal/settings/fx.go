package settings

import (
	"github.com/bazaarlabs/settlement/internal/settings/repository"
	"github.com/bazaarlabs/settlement/internal/settings/service"
	"go.uber.org/fx"
)

var Module = fx.Module("settings.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewCache),
	fx.Provide(service.New),
)
