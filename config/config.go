// Package config carries the tunables qcore reads at startup: shard counts,
// batch-size scaling, and post-construction chunking. It follows the
// top-level Config's TOML-tagged-struct convention, plus a functional-options
// constructor mirroring executor.go's executorOption pattern for
// programmatic overrides in tests and cmd/qcore-bench.
package config

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Config is the qcore query-execution-layer configuration.
type Config struct {
	// CPUShardCount is the number of CPU shards per store, per spec.md
	// §4.1 cpu_shard(i, n).
	CPUShardCount int `toml:"cpu-shard-count"`

	// RangeReadBatchScaleDown is the divisor package shard applies to a
	// range read's batch spec before restricting it to one shard.
	RangeReadBatchScaleDown int `toml:"range-read-batch-scale-down"`

	// PostConstruction holds post-construction engine tunables.
	PostConstruction PostConstructionConfig `toml:"post-construction"`
}

// PostConstructionConfig configures the secondary-index build engine.
type PostConstructionConfig struct {
	// MaxChunkSize bounds how many modification reports the drain loop
	// applies per iteration, per spec.md §4.5 step 3's chunk limit.
	MaxChunkSize int `toml:"max-chunk-size"`

	// BasePath is the directory post_construction_<uuid> queue files are
	// created under, per spec.md §6.
	BasePath string `toml:"base-path"`
}

// Option customizes a Config at construction time.
type Option func(*Config) error

func OptCPUShardCount(n int) Option {
	return func(c *Config) error {
		if n < 1 {
			return errors.Errorf("cpu-shard-count must be >= 1, got %d", n)
		}
		c.CPUShardCount = n
		return nil
	}
}

func OptRangeReadBatchScaleDown(n int) Option {
	return func(c *Config) error {
		if n < 1 {
			return errors.Errorf("range-read-batch-scale-down must be >= 1, got %d", n)
		}
		c.RangeReadBatchScaleDown = n
		return nil
	}
}

func OptPostConstructionMaxChunkSize(n int) Option {
	return func(c *Config) error {
		if n < 1 {
			return errors.Errorf("post-construction max-chunk-size must be >= 1, got %d", n)
		}
		c.PostConstruction.MaxChunkSize = n
		return nil
	}
}

func OptPostConstructionBasePath(path string) Option {
	return func(c *Config) error {
		c.PostConstruction.BasePath = path
		return nil
	}
}

// NewDefaultConfig returns the baseline configuration, then applies opts.
func NewDefaultConfig(opts ...Option) (*Config, error) {
	c := &Config{
		CPUShardCount:           4,
		RangeReadBatchScaleDown: 4,
		PostConstruction: PostConstructionConfig{
			MaxChunkSize: 10,
			BasePath:     ".",
		},
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Load reads a TOML config file at path, applying its values over the
// default configuration, then reapplies opts so callers can still force
// specific overrides after a file load.
func Load(path string, opts ...Option) (*Config, error) {
	c, err := NewDefaultConfig()
	if err != nil {
		return nil, err
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrap(err, "opening config file")
		}
		defer f.Close()

		if _, err := toml.NewDecoder(f).Decode(c); err != nil {
			return nil, errors.Wrap(err, "decoding config file")
		}
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}
