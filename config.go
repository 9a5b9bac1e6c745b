package powerflux

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/powerflux/internal/envexpr"
	"github.com/viant/powerflux/model"
	"github.com/viant/powerflux/policy"
	"gopkg.in/yaml.v3"
)

// Config is a serialisable representation of the service configuration. It
// can be populated from JSON or YAML; fields absent from the document keep
// their DefaultConfig values.
type Config struct {
	Limits  model.Limits  `json:"limits" yaml:"limits"`
	Policy  policy.Config `json:"policy" yaml:"policy"`
	Events  EventsConfig  `json:"events" yaml:"events"`
	Tracing TracingConfig `json:"tracing" yaml:"tracing"`
}

// EventsConfig controls change event publication
type EventsConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
	// Buffer is the change queue capacity; events are dropped when it is full
	Buffer int `json:"buffer" yaml:"buffer"`
}

// TracingConfig controls OpenTelemetry initialisation
type TracingConfig struct {
	Enabled        bool   `json:"enabled" yaml:"enabled"`
	ServiceName    string `json:"serviceName" yaml:"serviceName"`
	ServiceVersion string `json:"serviceVersion" yaml:"serviceVersion"`
	OutputFile     string `json:"outputFile,omitempty" yaml:"outputFile,omitempty"`
}

// DefaultConfig returns a Config populated with the default budget limits.
// Callers may modify the returned struct before passing it to WithConfig.
func DefaultConfig() *Config {
	return &Config{
		Limits: model.DefaultLimits(),
		Policy: policy.Config{Duplicate: policy.DuplicateReject},
		Events: EventsConfig{
			Enabled: true,
			Buffer:  100,
		},
		Tracing: TracingConfig{
			ServiceName:    "powerflux",
			ServiceVersion: "0.1.0",
		},
	}
}

// Validate returns aggregated error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	var errs []error
	if err := c.Limits.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("limits: %w", err))
	}
	if err := c.Policy.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("policy: %w", err))
	}
	if c.Events.Buffer < 0 {
		errs = append(errs, fmt.Errorf("events.buffer must be >= 0"))
	}
	if c.Tracing.Enabled && c.Tracing.ServiceName == "" {
		errs = append(errs, fmt.Errorf("tracing.serviceName must not be empty"))
	}
	return errors.Join(errs...)
}

// LoadConfig loads a YAML or JSON configuration from any afs supported URL
// (local path, file://, mem://, embed:// ...) on top of DefaultConfig.
// ${env.KEY} and ${env.KEY:-fallback} references are expanded before decoding.
func LoadConfig(ctx context.Context, URL string, options ...storage.Option) (*Config, error) {
	data, err := afs.New().DownloadWithURL(ctx, URL, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", URL, err)
	}
	data = envexpr.ExpandBytes(data)
	cfg := DefaultConfig()
	switch strings.ToLower(path.Ext(URL)) {
	case ".json":
		err = json.Unmarshal(data, cfg)
	default:
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", URL, err)
	}
	if err = cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", URL, err)
	}
	return cfg, nil
}
