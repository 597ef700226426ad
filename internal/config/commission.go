package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// CommissionConfig is the hardcoded final tier of the settings fallback
// chain: stored setting, then environment variable, then these values.
type CommissionConfig struct {
	DefaultRate       decimal.Decimal `mapstructure:"defaultRate"`
	MinAmount         decimal.Decimal `mapstructure:"minAmount"`
	MaxAmount         decimal.Decimal `mapstructure:"maxAmount"`
	FixedFee          decimal.Decimal `mapstructure:"fixedFee"`
	AppliesToShipping bool            `mapstructure:"appliesToShipping"`
	MinimumPayout     decimal.Decimal `mapstructure:"minimumPayout"`
}

func DefaultCommissionConfig() CommissionConfig {
	return CommissionConfig{
		DefaultRate:       decimal.NewFromInt(10),
		MinAmount:         decimal.Zero,
		MaxAmount:         decimal.Zero, // zero means no cap
		FixedFee:          decimal.Zero,
		AppliesToShipping: false,
		MinimumPayout:     decimal.NewFromInt(50),
	}
}

type CommissionConfigHolder struct {
	current atomic.Value // holds CommissionConfig
}

func NewCommissionConfigHolder() (*CommissionConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("commission")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/settlement/config")
	v.AddConfigPath("/etc/settlement")
	v.AddConfigPath(".")

	v.SetEnvPrefix("SETTLEMENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	fileFound := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileFound = false
	}

	holder := &CommissionConfigHolder{}

	cfg := DefaultCommissionConfig()
	if fileFound {
		loaded, err := unmarshalCommissionConfig(v)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	holder.current.Store(cfg)

	if fileFound {
		v.WatchConfig()
		v.OnConfigChange(func(e fsnotify.Event) {
			updated, err := unmarshalCommissionConfig(v)
			if err != nil {
				log.Printf("[commission-config] invalid config ignored: %v", err)
				return
			}
			holder.current.Store(updated)
			log.Printf("[commission-config] reloaded from %s", e.Name)
		})
	}

	return holder, nil
}

// NewStaticCommissionHolder wraps a fixed config with no file watching.
func NewStaticCommissionHolder(cfg CommissionConfig) *CommissionConfigHolder {
	holder := &CommissionConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *CommissionConfigHolder) Get() CommissionConfig {
	return h.current.Load().(CommissionConfig)
}

func unmarshalCommissionConfig(v *viper.Viper) (CommissionConfig, error) {
	cfg := DefaultCommissionConfig()

	type raw struct {
		DefaultRate       string `mapstructure:"defaultRate"`
		MinAmount         string `mapstructure:"minAmount"`
		MaxAmount         string `mapstructure:"maxAmount"`
		FixedFee          string `mapstructure:"fixedFee"`
		AppliesToShipping *bool  `mapstructure:"appliesToShipping"`
		MinimumPayout     string `mapstructure:"minimumPayout"`
	}
	var in raw
	if err := v.UnmarshalKey("commission", &in); err != nil {
		return cfg, err
	}

	assign := func(dst *decimal.Decimal, value string) error {
		if strings.TrimSpace(value) == "" {
			return nil
		}
		parsed, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil {
			return err
		}
		*dst = parsed
		return nil
	}

	if err := assign(&cfg.DefaultRate, in.DefaultRate); err != nil {
		return cfg, err
	}
	if err := assign(&cfg.MinAmount, in.MinAmount); err != nil {
		return cfg, err
	}
	if err := assign(&cfg.MaxAmount, in.MaxAmount); err != nil {
		return cfg, err
	}
	if err := assign(&cfg.FixedFee, in.FixedFee); err != nil {
		return cfg, err
	}
	if err := assign(&cfg.MinimumPayout, in.MinimumPayout); err != nil {
		return cfg, err
	}
	if in.AppliesToShipping != nil {
		cfg.AppliesToShipping = *in.AppliesToShipping
	}

	if cfg.DefaultRate.IsNegative() {
		return cfg, errors.New("commission.defaultRate cannot be negative")
	}
	if cfg.MinimumPayout.IsNegative() {
		return cfg, errors.New("commission.minimumPayout cannot be negative")
	}

	return cfg, nil
}
