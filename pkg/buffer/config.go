package buffer

import (
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/c360/ringbuffer/errors"
	"github.com/c360/ringbuffer/metric"
)

// Config contains configuration for buffer creation.
type Config struct {
	// Capacity is the maximum number of buffered items.
	Capacity int `json:"capacity" yaml:"capacity"`

	// OverflowPolicy is one of drop_oldest, drop_newest or block.
	OverflowPolicy OverflowPolicy `json:"overflow_policy" yaml:"overflow_policy"`

	// MetricsPrefix labels the Prometheus metrics. Empty disables metrics.
	MetricsPrefix string `json:"metrics_prefix,omitempty" yaml:"metrics_prefix,omitempty"`

	// BlockTimeout bounds how long Write waits under the block policy.
	// Zero waits indefinitely.
	BlockTimeout time.Duration `json:"block_timeout,omitempty" yaml:"block_timeout,omitempty"`
}

// DefaultConfig returns a default buffer configuration.
func DefaultConfig() Config {
	return Config{
		Capacity:       1024,
		OverflowPolicy: DropOldest,
	}
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "buffer", "Validate",
			fmt.Sprintf("capacity must be positive, got %d", c.Capacity))
	}

	switch c.OverflowPolicy {
	case DropOldest, DropNewest, Block:
	default:
		return errors.WrapInvalid(errors.ErrInvalidConfig, "buffer", "Validate",
			fmt.Sprintf("unknown overflow policy: %d", int(c.OverflowPolicy)))
	}

	if c.BlockTimeout < 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "buffer", "Validate",
			fmt.Sprintf("block_timeout must not be negative, got %v", c.BlockTimeout))
	}
	if c.BlockTimeout > 0 && c.OverflowPolicy != Block {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "buffer", "Validate",
			fmt.Sprintf("block_timeout requires the block policy, got %s", c.OverflowPolicy))
	}

	return nil
}

// UnmarshalJSON accepts block_timeout either as a duration string ("250ms")
// or as integer nanoseconds.
func (c *Config) UnmarshalJSON(data []byte) error {
	type plain Config
	aux := struct {
		*plain
		BlockTimeout any `json:"block_timeout,omitempty"`
	}{plain: (*plain)(c)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return errors.WrapInvalid(fmt.Errorf("%w: %w", errors.ErrParsingFailed, err), "buffer", "UnmarshalJSON", "decode config")
	}

	switch v := aux.BlockTimeout.(type) {
	case nil:
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.WrapInvalid(fmt.Errorf("%w: %w", errors.ErrParsingFailed, err), "buffer", "UnmarshalJSON", "parse block_timeout")
		}
		c.BlockTimeout = d
	case float64:
		c.BlockTimeout = time.Duration(v)
	default:
		return errors.WrapInvalid(errors.ErrParsingFailed, "buffer", "UnmarshalJSON",
			fmt.Sprintf("block_timeout has unsupported type %T", v))
	}
	return nil
}

// MarshalJSON writes block_timeout as a duration string.
func (c Config) MarshalJSON() ([]byte, error) {
	type plain Config
	aux := struct {
		plain
		BlockTimeout string `json:"block_timeout,omitempty"`
	}{plain: plain(c)}
	if c.BlockTimeout != 0 {
		aux.BlockTimeout = c.BlockTimeout.String()
	}
	return json.Marshal(aux)
}

// ParseConfig decodes a YAML or JSON document over DefaultConfig and validates
// the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.WrapInvalid(fmt.Errorf("%w: %w", errors.ErrParsingFailed, err), "buffer", "ParseConfig", "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// NewFromConfig creates a buffer from config. Metrics are registered with
// registry when both registry and config.MetricsPrefix are set. Options are
// applied after the config, so they win on conflict.
func NewFromConfig[T any](config Config, registry metric.MetricsRegistrar, options ...Option[T]) (Buffer[T], error) {
	if err := config.Validate(); err != nil {
		return nil, errors.WrapInvalid(err, "buffer", "NewFromConfig", "config validation failed")
	}

	base := []Option[T]{
		WithOverflowPolicy[T](config.OverflowPolicy),
		WithBlockTimeout[T](config.BlockTimeout),
		WithMetrics[T](registry, config.MetricsPrefix),
	}
	return NewCircularBuffer(config.Capacity, append(base, options...)...)
}
