package processor

import (
	"time"

	"github.com/viant/fluxmesh/errs"
)

// Config represents processor configuration
type Config struct {
	// Capacity is the maximum number of items dispatched per refresh cycle
	Capacity int

	// RefreshInterval is the delay between processing cycles
	RefreshInterval time.Duration
}

// DefaultConfig returns the default processor configuration
func DefaultConfig() Config {
	return Config{
		Capacity:        10,
		RefreshInterval: time.Second,
	}
}

// Validate checks configuration
func (c Config) Validate() error {
	if c.Capacity < 1 {
		return errs.Configuration("processor capacity must be > 0, got %d", c.Capacity)
	}
	if c.RefreshInterval < 0 {
		return errs.Configuration("processor refresh interval must be >= 0, got %v", c.RefreshInterval)
	}
	return nil
}
