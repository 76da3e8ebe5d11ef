package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/cascadesim/internal/cascade"
	"github.com/san-kum/cascadesim/internal/logging"
	"github.com/san-kum/cascadesim/internal/topology"
)

const (
	DefaultAlpha     = cascade.DefaultAlpha
	DefaultGenerator = string(topology.Example)
	DefaultNodes     = 10
	DefaultPlan      = "canonical"
	DefaultDataDir   = "data"
	DefaultLogLevel  = "info"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Alpha     float64        `yaml:"alpha"`
	Plan      string         `yaml:"plan"`
	Steps     []string       `yaml:"steps,omitempty"`
	Workers   int            `yaml:"workers"`
	MaxRounds int            `yaml:"max_rounds"`
	Topology  TopologyConfig `yaml:"topology"`
	Log       logging.Config `yaml:"log"`
	DataDir   string         `yaml:"data_dir"`
}

// TopologyConfig selects the initial network. File, when set, wins over
// the generator.
type TopologyConfig struct {
	Generator string `yaml:"generator"`
	Nodes     int    `yaml:"nodes"`
	Extra     int    `yaml:"extra,omitempty"`
	Seed      int64  `yaml:"seed,omitempty"`
	File      string `yaml:"file,omitempty"`
}

func (t TopologyConfig) Params() topology.Params {
	return topology.Params{Nodes: t.Nodes, Extra: t.Extra, Seed: t.Seed}
}

func DefaultConfig() *Config {
	return &Config{
		Alpha: DefaultAlpha,
		Plan:  DefaultPlan,
		Topology: TopologyConfig{
			Generator: DefaultGenerator,
			Nodes:     DefaultNodes,
		},
		Log: logging.Config{
			Level:  DefaultLogLevel,
			Format: "text",
		},
		DataDir: DefaultDataDir,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Alpha < 0 || math.IsNaN(c.Alpha) || math.IsInf(c.Alpha, 0) {
		return fmt.Errorf("%w: alpha must be finite and non-negative, got %v", ErrInvalidConfig, c.Alpha)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalidConfig, c.Workers)
	}
	if c.MaxRounds < 0 {
		return fmt.Errorf("%w: max_rounds must not be negative, got %d", ErrInvalidConfig, c.MaxRounds)
	}
	if len(c.Steps) > 0 {
		steps, err := cascade.ParseSteps(c.Steps)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		if err := cascade.ValidatePlan(steps); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	if c.Topology.File == "" && !slices.Contains(topology.Kinds(), topology.Kind(c.Topology.Generator)) {
		return fmt.Errorf("%w: unknown topology generator %q", ErrInvalidConfig, c.Topology.Generator)
	}
	return nil
}
