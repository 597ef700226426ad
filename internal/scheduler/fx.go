package scheduler

import (
	"context"
	"os"
	"strconv"
	"time"

	"go.uber.org/fx"
)

var Module = fx.Module("scheduler",
	fx.Provide(ProvideConfig),
	fx.Provide(New),
	fx.Invoke(NewScheduler),
)

// ProvideConfig reads sweep settings from the environment. The sweep
// is off unless PAYOUT_SWEEP_ENABLED is set, so API-only deployments
// never create payouts on their own.
func ProvideConfig() Config {
	cfg := DefaultConfig()
	if v, err := strconv.ParseBool(os.Getenv("PAYOUT_SWEEP_ENABLED")); err == nil {
		cfg.Enabled = v
	}
	if v, err := time.ParseDuration(os.Getenv("PAYOUT_SWEEP_INTERVAL")); err == nil && v > 0 {
		cfg.RunInterval = v
	}
	if v, err := strconv.Atoi(os.Getenv("PAYOUT_SWEEP_BATCH_SIZE")); err == nil && v > 0 {
		cfg.BatchSize = v
	}
	if v := os.Getenv("PAYOUT_SWEEP_METHOD"); v != "" {
		cfg.PaymentMethod = v
	}
	return cfg
}

func NewScheduler(lc fx.Lifecycle, cfg Config, sched *Scheduler) {
	if !cfg.Enabled {
		return
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ctx, cancel := context.WithCancel(context.Background())

			go sched.RunForever(ctx)

			lc.Append(fx.Hook{
				OnStop: func(context.Context) error {
					cancel()
					return nil
				},
			})

			return nil
		},
	})
}
