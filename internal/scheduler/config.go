package scheduler

import (
	"time"
)

// Config controls the payout sweep interval and batch size.
// PaymentMethod is stamped on every swept payout; the actual transfer
// happens outside the engine.
type Config struct {
	Enabled       bool
	RunInterval   time.Duration
	BatchSize     int
	JobTimeout    time.Duration
	PaymentMethod string
}

func DefaultConfig() Config {
	return Config{
		Enabled:       false,
		RunInterval:   time.Hour,
		BatchSize:     100,
		JobTimeout:    5 * time.Minute,
		PaymentMethod: "bank_transfer",
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.PaymentMethod == "" {
		c.PaymentMethod = defaults.PaymentMethod
	}
	if c.BatchSize <= 0 {
		c.BatchSize = defaults.BatchSize
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaults.JobTimeout
	}
	return c
}
