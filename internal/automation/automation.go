// Package automation runs scripted batches of simulations described in YAML.
package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/cascadesim/internal/cascade"
	"github.com/san-kum/cascadesim/internal/config"
	"github.com/san-kum/cascadesim/internal/experiment"
	"github.com/san-kum/cascadesim/internal/logging"
	"github.com/san-kum/cascadesim/internal/storage"
)

var ErrEmptyScenario = errors.New("automation: scenario has no runs")

// Scenario is a named list of runs executed in order.
type Scenario struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Runs        []ScenarioRun `yaml:"runs"`
}

// ScenarioRun starts from a preset (or the defaults) and overrides the
// fields that are set.
type ScenarioRun struct {
	Name      string   `yaml:"name"`
	Preset    string   `yaml:"preset"`
	Alpha     *float64 `yaml:"alpha"`
	Generator string   `yaml:"generator"`
	Nodes     int      `yaml:"nodes"`
	Extra     int      `yaml:"extra"`
	Seed      int64    `yaml:"seed"`
	File      string   `yaml:"file"`
	Plan      string   `yaml:"plan"`
	Steps     []string `yaml:"steps"`
	MaxRounds int      `yaml:"max_rounds"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("automation: parse scenario: %w", err)
	}
	if len(sc.Runs) == 0 {
		return nil, ErrEmptyScenario
	}
	return &sc, nil
}

// Config resolves the run against its preset and validates the result.
func (r ScenarioRun) Config() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if r.Preset != "" {
		if cfg = config.GetPreset(r.Preset); cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", r.Preset)
		}
	}
	if r.Alpha != nil {
		cfg.Alpha = *r.Alpha
	}
	if r.Generator != "" {
		cfg.Topology.Generator = r.Generator
		cfg.Topology.File = ""
	}
	if r.Nodes != 0 {
		cfg.Topology.Nodes = r.Nodes
	}
	if r.Extra != 0 {
		cfg.Topology.Extra = r.Extra
	}
	if r.Seed != 0 {
		cfg.Topology.Seed = r.Seed
	}
	if r.File != "" {
		cfg.Topology.File = r.File
	}
	if r.Plan != "" {
		cfg.Plan = r.Plan
		cfg.Steps = nil
	}
	if len(r.Steps) > 0 {
		cfg.Steps = r.Steps
	}
	if r.MaxRounds != 0 {
		cfg.MaxRounds = r.MaxRounds
	}
	return cfg, cfg.Validate()
}

func (r ScenarioRun) label(i int) string {
	switch {
	case r.Name != "":
		return r.Name
	case r.Preset != "":
		return r.Preset
	}
	return fmt.Sprintf("run-%d", i+1)
}

// Record is the outcome of one scenario run. RunID is empty when the
// scenario was executed without a store.
type Record struct {
	Name    string
	RunID   string
	Status  cascade.Status
	Rounds  int
	Metrics map[string]float64
}

// RunScenario executes every run in order and saves each one to st when it
// is non-nil. The first failing run stops the scenario; records of the
// runs before it are still returned.
func RunScenario(ctx context.Context, sc *Scenario, st *storage.Store, logger *slog.Logger) ([]Record, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	records := make([]Record, 0, len(sc.Runs))

	for i, run := range sc.Runs {
		name := run.label(i)
		logger.Info("scenario run", "scenario", sc.Name, "step", i+1, "of", len(sc.Runs), "run", name)

		cfg, err := run.Config()
		if err != nil {
			return records, fmt.Errorf("run %d (%s): %w", i+1, name, err)
		}

		exp := experiment.New(cfg, logger)
		if err := exp.Setup(); err != nil {
			return records, fmt.Errorf("run %d (%s) setup: %w", i+1, name, err)
		}
		res, err := exp.Run(ctx)
		if err != nil {
			return records, fmt.Errorf("run %d (%s): %w", i+1, name, err)
		}

		rec := Record{Name: name, Status: res.Status, Rounds: res.Rounds, Metrics: res.Metrics}
		if st != nil {
			if rec.RunID, err = st.Save(exp.Metadata(name, res), res.Topology, res.Rows); err != nil {
				return records, fmt.Errorf("run %d (%s) save: %w", i+1, name, err)
			}
		}
		records = append(records, rec)
	}
	return records, nil
}
