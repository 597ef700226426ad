package server

import (
	"context"
	"net/http"
	"time"

	auditdomain "github.com/bazaarlabs/settlement/internal/audit/domain"
	commissiondomain "github.com/bazaarlabs/settlement/internal/commission/domain"
	"github.com/bazaarlabs/settlement/internal/config"
	obslogger "github.com/bazaarlabs/settlement/internal/observability/logger"
	obsmetrics "github.com/bazaarlabs/settlement/internal/observability/metrics"
	overridedomain "github.com/bazaarlabs/settlement/internal/override/domain"
	payoutdomain "github.com/bazaarlabs/settlement/internal/payout/domain"
	"github.com/bazaarlabs/settlement/internal/ratelimit"
	ruledomain "github.com/bazaarlabs/settlement/internal/rule/domain"
	settingsdomain "github.com/bazaarlabs/settlement/internal/settings/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, m *obsmetrics.Metrics, reg *prometheus.Registry, limiter *ratelimit.Limiter) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(log.Named("http"), m))
	r.Use(ratelimit.GinMiddleware(limiter, log.Named("http.ratelimit")))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	return r
}

func registerGin(log *zap.Logger, m *obsmetrics.Metrics, reg *prometheus.Registry, limiter *ratelimit.Limiter) *gin.Engine {
	return NewEngine(log, m, reg, limiter)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server starting", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	GenID         *snowflake.Node
	RuleSvc       ruledomain.Service
	OverrideSvc   overridedomain.Service
	CommissionSvc commissiondomain.Service
	PayoutSvc     payoutdomain.Service
	SettingsSvc   settingsdomain.Service
	AuditSvc      auditdomain.Service
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	genID         *snowflake.Node
	ruleSvc       ruledomain.Service
	overrideSvc   overridedomain.Service
	commissionSvc commissiondomain.Service
	payoutSvc     payoutdomain.Service
	settingsSvc   settingsdomain.Service
	auditSvc      auditdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		genID:         p.GenID,
		ruleSvc:       p.RuleSvc,
		overrideSvc:   p.OverrideSvc,
		commissionSvc: p.CommissionSvc,
		payoutSvc:     p.PayoutSvc,
		settingsSvc:   p.SettingsSvc,
		auditSvc:      p.AuditSvc,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api/v1")

	rules := api.Group("/commission-rules")
	rules.POST("", s.CreateCommissionRule)
	rules.GET("", s.ListCommissionRules)
	rules.GET("/:id", s.GetCommissionRule)
	rules.PUT("/:id", s.UpdateCommissionRule)
	rules.DELETE("/:id", s.DeleteCommissionRule)

	overrides := api.Group("/commission-overrides")
	overrides.POST("", s.CreateCommissionOverride)
	overrides.GET("", s.ListCommissionOverrides)
	overrides.GET("/:id", s.GetCommissionOverride)
	overrides.PUT("/:id", s.UpdateCommissionOverride)
	overrides.DELETE("/:id", s.DeleteCommissionOverride)

	commissions := api.Group("/commissions")
	commissions.POST("/record", s.RecordCommissions)
	commissions.GET("", s.ListCommissions)
	commissions.GET("/statistics", s.CommissionStatistics)
	commissions.GET("/top-sellers", s.TopSellers)
	commissions.GET("/recent", s.RecentCommissions)
	commissions.GET("/:id", s.GetCommission)

	api.GET("/sellers/:id/commissions", s.ListSellerCommissions)
	api.GET("/sellers/:id/commissions/summary", s.SellerCommissionSummary)
	api.POST("/orders/:id/commissions/cancel", s.CancelOrderCommissions)

	payouts := api.Group("/payouts")
	payouts.POST("", s.CreatePayout)
	payouts.GET("", s.ListPayouts)
	payouts.GET("/statistics", s.PayoutStatistics)
	payouts.GET("/:id", s.GetPayout)
	payouts.POST("/:id/process", s.ProcessPayout)
	payouts.POST("/:id/complete", s.CompletePayout)
	payouts.POST("/:id/fail", s.FailPayout)
	payouts.POST("/:id/cancel", s.CancelPayout)

	api.GET("/sellers/:id/payouts", s.ListSellerPayouts)
	api.GET("/sellers/:id/payouts/eligibility", s.PayoutEligibility)

	settings := api.Group("/settings")
	settings.GET("", s.ListSettings)
	settings.GET("/:key", s.GetSetting)
	settings.PUT("/:key", s.UpsertSetting)

	api.GET("/audit-logs", s.ListAuditLogs)
}
