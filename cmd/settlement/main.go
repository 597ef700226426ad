package main

import (
	"github.com/bazaarlabs/settlement/internal/audit"
	"github.com/bazaarlabs/settlement/internal/clock"
	"github.com/bazaarlabs/settlement/internal/commission"
	"github.com/bazaarlabs/settlement/internal/config"
	"github.com/bazaarlabs/settlement/internal/logger"
	"github.com/bazaarlabs/settlement/internal/migration"
	"github.com/bazaarlabs/settlement/internal/observability"
	"github.com/bazaarlabs/settlement/internal/order"
	"github.com/bazaarlabs/settlement/internal/override"
	"github.com/bazaarlabs/settlement/internal/payout"
	"github.com/bazaarlabs/settlement/internal/ratelimit"
	"github.com/bazaarlabs/settlement/internal/rule"
	"github.com/bazaarlabs/settlement/internal/scheduler"
	"github.com/bazaarlabs/settlement/internal/server"
	"github.com/bazaarlabs/settlement/internal/settings"
	"github.com/bazaarlabs/settlement/pkg/db"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		clock.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		observability.Module,
		migration.Module,

		settings.Module,
		rule.Module,
		override.Module,
		order.Module,
		commission.Module,
		payout.Module,
		audit.Module,
		scheduler.Module,
		ratelimit.Module,

		server.Module,
	)

	app.Run()
}

func registerSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
