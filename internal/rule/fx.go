package rule

import (
	"github.com/bazaarlabs/settlement/internal/rule/repository"
	"github.com/bazaarlabs/settlement/internal/rule/service"
	"go.uber.org/fx"
)

var Module = fx.Module("rule.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
