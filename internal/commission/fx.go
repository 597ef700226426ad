package commission

import (
	"github.com/bazaarlabs/settlement/internal/commission/repository"
	"github.com/bazaarlabs/settlement/internal/commission/service"
	"go.uber.org/fx"
)

var Module = fx.Module("commission.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
