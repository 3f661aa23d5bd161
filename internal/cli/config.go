package cli

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/ChuLiYu/newsboy-dp/internal/costmodel"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig 配置內容不合法，在任何計算開始前回報
var ErrInvalidConfig = errors.New("invalid configuration")

// Config represents the complete planner configuration structure
// Maps config file fields through YAML tags
type Config struct {
	Model struct {
		Horizon       int     `yaml:"horizon"`
		Capacity      int     `yaml:"capacity"`
		DemandMean    float64 `yaml:"demand_mean"`
		DemandSupport int     `yaml:"demand_support"` // 0 means 2 * capacity
	} `yaml:"model"`

	Cost costmodel.Rates `yaml:"cost"`

	Solver struct {
		Workers int `yaml:"workers"`
	} `yaml:"solver"`

	Simulation struct {
		Seed             int64 `yaml:"seed"`
		InitialInventory int   `yaml:"initial_inventory"`
	} `yaml:"simulation"`

	Metrics struct {
		Enabled bool `yaml:"enabled"`
		Port    int  `yaml:"port"`
	} `yaml:"metrics"`
}

// DefaultConfig returns the built-in parameters used when no file is given
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Model.Horizon = 30
	cfg.Model.Capacity = 100
	cfg.Model.DemandMean = 20
	cfg.Cost = costmodel.Rates{UnitOrder: 1, Holding: 2, Shortage: 10, FixedOrder: 0}
	cfg.Solver.Workers = 8
	cfg.Simulation.Seed = 42
	cfg.Metrics.Port = 9090
	return cfg
}

// Support returns the demand truncation bound
func (c *Config) Support() int {
	if c.Model.DemandSupport > 0 {
		return c.Model.DemandSupport
	}
	return 2 * c.Model.Capacity
}

// Validate rejects configurations the planner cannot run with
func (c *Config) Validate() error {
	m := c.Model
	switch {
	case m.Horizon < 1:
		return fmt.Errorf("%w: model.horizon must be >= 1, got %d", ErrInvalidConfig, m.Horizon)
	case m.Capacity < 0:
		return fmt.Errorf("%w: model.capacity must be >= 0, got %d", ErrInvalidConfig, m.Capacity)
	case !(m.DemandMean > 0) || math.IsInf(m.DemandMean, 0):
		return fmt.Errorf("%w: model.demand_mean must be positive, got %v", ErrInvalidConfig, m.DemandMean)
	case m.DemandSupport < 0:
		return fmt.Errorf("%w: model.demand_support must be >= 0, got %d", ErrInvalidConfig, m.DemandSupport)
	case m.DemandSupport > 0 && m.DemandSupport < m.Capacity:
		return fmt.Errorf("%w: model.demand_support %d below capacity %d", ErrInvalidConfig, m.DemandSupport, m.Capacity)
	case c.Solver.Workers < 1:
		return fmt.Errorf("%w: solver.workers must be >= 1, got %d", ErrInvalidConfig, c.Solver.Workers)
	case c.Simulation.InitialInventory < -m.Capacity || c.Simulation.InitialInventory > m.Capacity:
		return fmt.Errorf("%w: simulation.initial_inventory %d outside [-%d, %d]",
			ErrInvalidConfig, c.Simulation.InitialInventory, m.Capacity, m.Capacity)
	case c.Metrics.Enabled && (c.Metrics.Port < 1 || c.Metrics.Port > 65535):
		return fmt.Errorf("%w: metrics.port %d", ErrInvalidConfig, c.Metrics.Port)
	}

	if err := c.Cost.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// loadConfig reads path over the defaults; an empty path yields the defaults
func loadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	return cfg, nil
}
