package payout

import (
	"github.com/bazaarlabs/settlement/internal/payout/repository"
	"github.com/bazaarlabs/settlement/internal/payout/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payout.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
