package audit

import (
	"github.com/bazaarlabs/settlement/internal/audit/repository"
	"github.com/bazaarlabs/settlement/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
