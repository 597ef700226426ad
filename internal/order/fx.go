package order

import (
	"github.com/bazaarlabs/settlement/internal/order/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("order.readmodel",
	fx.Provide(repository.Provide),
)
