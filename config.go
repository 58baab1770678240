package fluxmesh

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/viant/afs"
	"github.com/viant/fluxmesh/errs"
	"github.com/viant/fluxmesh/internal/env"
	"github.com/viant/fluxmesh/logging"
	"gopkg.in/yaml.v3"
)

// Config is a serialisable representation of the service configuration. It
// can be loaded from JSON or YAML; omitted fields keep DefaultConfig values.
type Config struct {
	Processor ProcessorConfig `json:"processor" yaml:"processor"`
	Pile      PileConfig      `json:"pile" yaml:"pile"`
	Exchange  ExchangeConfig  `json:"exchange" yaml:"exchange"`
	Logging   logging.Config  `json:"logging" yaml:"logging"`
	Tracing   TracingConfig   `json:"tracing" yaml:"tracing"`
}

// ProcessorConfig controls executor capacity and refresh cycle
type ProcessorConfig struct {
	Capacity    int     `json:"capacity" yaml:"capacity"`
	RefreshTime float64 `json:"refreshTime" yaml:"refreshTime"` // seconds
}

// PileConfig constrains accepted work item types by registered type name
type PileConfig struct {
	StrictType bool     `json:"strictType,omitempty" yaml:"strictType,omitempty"`
	ItemTypes  []string `json:"itemTypes,omitempty" yaml:"itemTypes,omitempty"`
}

// ExchangeConfig controls the mail exchange loop
type ExchangeConfig struct {
	RefreshTime float64 `json:"refreshTime" yaml:"refreshTime"` // seconds
	Strict      bool    `json:"strict,omitempty" yaml:"strict,omitempty"`
}

// TracingConfig enables the stdout/file OpenTelemetry exporter
type TracingConfig struct {
	Enabled    bool   `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Service    string `json:"service,omitempty" yaml:"service,omitempty"`
	Version    string `json:"version,omitempty" yaml:"version,omitempty"`
	OutputFile string `json:"outputFile,omitempty" yaml:"outputFile,omitempty"`
}

// DefaultConfig returns a Config populated with default values. Callers may
// modify the returned struct before passing it to NewFromConfig.
func DefaultConfig() *Config {
	return &Config{
		Processor: ProcessorConfig{Capacity: 10, RefreshTime: 1},
		Exchange:  ExchangeConfig{RefreshTime: 1},
		Logging:   logging.Config{Level: "info", Format: "json", Component: "fluxmesh"},
		Tracing:   TracingConfig{Service: "fluxmesh"},
	}
}

// Validate returns aggregated error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	var errList []error
	if c.Processor.Capacity <= 0 {
		errList = append(errList, errs.Configuration("processor.capacity must be > 0, got %v", c.Processor.Capacity))
	}
	if c.Processor.RefreshTime < 0 {
		errList = append(errList, errs.Configuration("processor.refreshTime must be >= 0, got %v", c.Processor.RefreshTime))
	}
	if c.Exchange.RefreshTime < 0 {
		errList = append(errList, errs.Configuration("exchange.refreshTime must be >= 0, got %v", c.Exchange.RefreshTime))
	}
	return errors.Join(errList...)
}

// RefreshInterval returns processor refresh time as duration
func (c *ProcessorConfig) RefreshInterval() time.Duration {
	return seconds(c.RefreshTime)
}

// RefreshInterval returns exchange refresh time as duration
func (c *ExchangeConfig) RefreshInterval() time.Duration {
	return seconds(c.RefreshTime)
}

func seconds(value float64) time.Duration {
	return time.Duration(value * float64(time.Second))
}

// LoadConfig reads a YAML or JSON config from URL on top of DefaultConfig.
// ${env.KEY} expressions are expanded before decoding.
func LoadConfig(ctx context.Context, fs afs.Service, URL string) (*Config, error) {
	if fs == nil {
		fs = afs.New()
	}
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %v: %w", URL, err)
	}
	ret := DefaultConfig()
	if err = yaml.Unmarshal([]byte(env.Expand(string(data))), ret); err != nil {
		return nil, errs.Configuration("failed to decode config %v: %v", URL, err)
	}
	if err = ret.Validate(); err != nil {
		return nil, err
	}
	return ret, nil
}
