// Package latency provides the JSON-backed simulation configuration:
// memory geometry, cache and predictor selection, and run limits.
package latency

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sarchlab/rv32sim/timing/cache"
	"github.com/sarchlab/rv32sim/timing/predictor"
)

// SimConfig holds the knobs of one simulation run.
type SimConfig struct {
	// MemorySize is the data-memory size in bytes.
	MemorySize int `json:"memory_size"`

	// CacheEnabled selects whether data memory sits behind a cache.
	CacheEnabled bool `json:"cache_enabled"`

	// Cache is the data-cache geometry, used when CacheEnabled is set.
	Cache cache.Config `json:"cache"`

	// Predictor selects the branch predictor and its table sizes.
	Predictor predictor.Config `json:"predictor"`

	// MaxCycles bounds a run; 0 means no bound beyond program drain.
	MaxCycles uint64 `json:"max_cycles"`

	// DependencyWindow is the RAW dependency reporting window in
	// cycles.
	DependencyWindow int `json:"dependency_window"`
}

// DefaultSimConfig returns a SimConfig with a 64KB memory, the default
// 4-way cache, and a GShare predictor.
func DefaultSimConfig() *SimConfig {
	return &SimConfig{
		MemorySize:       64 * 1024,
		CacheEnabled:     true,
		Cache:            cache.DefaultConfig(),
		Predictor:        predictor.DefaultConfig(),
		MaxCycles:        1_000_000,
		DependencyWindow: 10,
	}
}

// LoadConfig reads a SimConfig from a JSON file. Fields missing from
// the file keep their defaults.
func LoadConfig(path string) (*SimConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultSimConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// SaveConfig writes the SimConfig to a JSON file.
func (c *SimConfig) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration for obvious mistakes.
func (c *SimConfig) Validate() error {
	if c.MemorySize <= 0 {
		return fmt.Errorf("memory_size must be > 0")
	}
	if c.DependencyWindow < 0 {
		return fmt.Errorf("dependency_window must be >= 0")
	}
	return nil
}
