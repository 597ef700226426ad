package migration

import (
	"strings"

	auditdomain "github.com/bazaarlabs/settlement/internal/audit/domain"
	commissiondomain "github.com/bazaarlabs/settlement/internal/commission/domain"
	"github.com/bazaarlabs/settlement/internal/config"
	orderdomain "github.com/bazaarlabs/settlement/internal/order/domain"
	overridedomain "github.com/bazaarlabs/settlement/internal/override/domain"
	payoutdomain "github.com/bazaarlabs/settlement/internal/payout/domain"
	ruledomain "github.com/bazaarlabs/settlement/internal/rule/domain"
	"github.com/bazaarlabs/settlement/internal/seed"
	settingsdomain "github.com/bazaarlabs/settlement/internal/settings/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		switch strings.ToLower(strings.TrimSpace(cfg.DBType)) {
		case "postgres", "postgresql":
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		default:
			if err := conn.AutoMigrate(
				&orderdomain.PaymentTransaction{},
				&orderdomain.Order{},
				&orderdomain.OrderItem{},
				&orderdomain.Product{},
				&orderdomain.Store{},
				&orderdomain.Category{},
				&ruledomain.CommissionRule{},
				&overridedomain.SellerCommissionOverride{},
				&commissiondomain.Commission{},
				&payoutdomain.Payout{},
				&settingsdomain.Setting{},
				&auditdomain.AuditLog{},
			); err != nil {
				return err
			}
		}

		return seed.EnsureDefaultSettings(conn)
	}),
)
